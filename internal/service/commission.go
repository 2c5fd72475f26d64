package service

import (
	"context"
	"time"

	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/shopspring/decimal"
)

type CommissionConfig struct {
	PlatformFeeRate decimal.Decimal
	CommissionRate  decimal.Decimal
	FreeWindow      time.Duration
	CreditUSDValue  decimal.Decimal
}

type CommissionService struct {
	creators CreatorStore
	cfg      CommissionConfig
	now      func() time.Time
}

func NewCommissionService(creators CreatorStore, cfg CommissionConfig) *CommissionService {
	return &CommissionService{creators: creators, cfg: cfg, now: time.Now}
}

// CalculateFees applies the flat platform fee, rounded half-up to cents.
func (s *CommissionService) CalculateFees(amount decimal.Decimal) models.Fees {
	return calculateFees(amount, s.cfg.PlatformFeeRate)
}

func calculateFees(amount, rate decimal.Decimal) models.Fees {
	fee := amount.Mul(rate).Round(2)
	if fee.IsNegative() {
		fee = decimal.Zero
	}
	return models.Fees{PlatformFee: fee, NetAmount: amount.Sub(fee)}
}

// GetCreatorCommissionRate is zero while the creator is inside the
// first-month window and the standard rate afterwards.
func (s *CommissionService) GetCreatorCommissionRate(ctx context.Context, creatorSlug string) (decimal.Decimal, error) {
	creator, err := s.creators.GetBySlug(ctx, creatorSlug)
	if err != nil {
		return decimal.Zero, notFound(err)
	}
	return s.rateFor(creator), nil
}

func (s *CommissionService) rateFor(creator *models.Creator) decimal.Decimal {
	if s.now().Sub(creator.CreatedAt) < s.cfg.FreeWindow {
		return decimal.Zero
	}
	return s.cfg.CommissionRate
}

// CreditsToUSD values spent credits for earnings.
func (s *CommissionService) CreditsToUSD(credits int64) decimal.Decimal {
	return decimal.NewFromInt(credits).Mul(s.cfg.CreditUSDValue).Round(2)
}

// Split divides gross between platform, agency, chatter and creator. The
// commission is taken from the net after fees; agency and chatter rates
// apply to the creator's share and the creator keeps the rounding residue.
func (s *CommissionService) Split(gross decimal.Decimal, source models.EarningSource, creator *models.Creator, agency *models.Agency, chatter *models.Chatter) *models.RevenueSplit {
	rate := s.rateFor(creator)
	fees := s.CalculateFees(gross)

	commission := fees.NetAmount.Mul(rate).Round(2)
	share := fees.NetAmount.Sub(commission)

	split := &models.RevenueSplit{
		Gross:          gross,
		PlatformFee:    fees.PlatformFee,
		CommissionRate: rate,
		Platform:       fees.PlatformFee.Add(commission),
		Agency:         decimal.Zero,
		Chatter:        decimal.Zero,
		Source:         source,
		CreatorID:      creator.ID,
	}

	if agency != nil && creator.AgencyID != nil && *creator.AgencyID == agency.ID {
		split.Agency = share.Mul(agency.CommissionRate).Round(2)
		split.AgencyID = &agency.ID
	}
	if chatter != nil && creator.AgencyID != nil && chatter.AgencyID == *creator.AgencyID {
		split.Chatter = share.Mul(chatter.CommissionRate).Round(2)
		split.ChatterID = &chatter.ID
	}

	split.Creator = share.Sub(split.Agency).Sub(split.Chatter)
	if split.Creator.IsNegative() {
		split.Creator = decimal.Zero
	}
	return split
}
