package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sefazor/fanvault-backend/internal/metrics"
	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PayoutService struct {
	payouts   PayoutStore
	creators  CreatorStore
	users     UserStore
	mailer    Mailer
	minAmount decimal.Decimal
	log       *zap.Logger
	now       func() time.Time
}

func NewPayoutService(payouts PayoutStore, creators CreatorStore, users UserStore, mailer Mailer, minAmount decimal.Decimal, log *zap.Logger) *PayoutService {
	return &PayoutService{
		payouts:   payouts,
		creators:  creators,
		users:     users,
		mailer:    mailer,
		minAmount: minAmount,
		log:       log,
		now:       time.Now,
	}
}

func (s *PayoutService) validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrBadInput)
	}
	if amount.LessThan(s.minAmount) {
		return fmt.Errorf("%w: minimum payout is %s", ErrBadInput, s.minAmount.StringFixed(2))
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: amount has more than two decimals", ErrBadInput)
	}
	return nil
}

func (s *PayoutService) RequestCreatorPayout(ctx context.Context, userID uint, req models.CreatePayoutRequest) (*models.PayoutRequest, error) {
	creator, err := s.creators.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.validateAmount(req.Amount); err != nil {
		return nil, err
	}

	payout := &models.PayoutRequest{
		CreatorID:   creator.ID,
		Amount:      req.Amount,
		Method:      req.Method,
		Destination: strings.TrimSpace(req.Destination),
		Status:      models.PayoutPending,
	}
	if err := s.payouts.CreateCreatorRequest(ctx, payout); err != nil {
		return nil, notFound(err)
	}
	return payout, nil
}

func (s *PayoutService) RequestAgencyPayout(ctx context.Context, userID uint, req models.CreatePayoutRequest) (*models.AgencyPayoutRequest, error) {
	agency, err := s.creators.GetAgencyByOwner(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.validateAmount(req.Amount); err != nil {
		return nil, err
	}

	payout := &models.AgencyPayoutRequest{
		AgencyID:    agency.ID,
		Amount:      req.Amount,
		Method:      req.Method,
		Destination: strings.TrimSpace(req.Destination),
		Status:      models.PayoutPending,
	}
	if err := s.payouts.CreateAgencyRequest(ctx, payout); err != nil {
		return nil, notFound(err)
	}
	return payout, nil
}

func (s *PayoutService) RequestChatterPayout(ctx context.Context, userID uint, req models.CreatePayoutRequest) (*models.ChatterPayoutRequest, error) {
	chatter, err := s.creators.GetChatterByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.validateAmount(req.Amount); err != nil {
		return nil, err
	}

	payout := &models.ChatterPayoutRequest{
		ChatterID:   chatter.ID,
		AgencyID:    chatter.AgencyID,
		Amount:      req.Amount,
		Method:      req.Method,
		Destination: strings.TrimSpace(req.Destination),
		Status:      models.PayoutPending,
	}
	if err := s.payouts.CreateChatterRequest(ctx, payout); err != nil {
		return nil, notFound(err)
	}
	return payout, nil
}

func (s *PayoutService) PayCreatorPayout(ctx context.Context, actor models.Actor, id uint, txHash string) (*models.PayoutReceipt, error) {
	if !Authorize(actor, ActionAdmin, Resource{}) {
		return nil, ErrForbidden
	}
	receipt, err := s.payouts.PayCreator(ctx, id, actor.UserID, strings.TrimSpace(txHash), s.now())
	if err != nil {
		return nil, notFound(err)
	}
	s.paid(ctx, receipt)

	if creator, err := s.creators.GetByID(ctx, receipt.OwnerID); err == nil {
		s.notify(ctx, creator.UserID, receipt)
	}
	return receipt, nil
}

func (s *PayoutService) PayAgencyPayout(ctx context.Context, actor models.Actor, id uint, txHash string) (*models.PayoutReceipt, error) {
	if !Authorize(actor, ActionAdmin, Resource{}) {
		return nil, ErrForbidden
	}
	receipt, err := s.payouts.PayAgency(ctx, id, actor.UserID, strings.TrimSpace(txHash), s.now())
	if err != nil {
		return nil, notFound(err)
	}
	s.paid(ctx, receipt)

	if agency, err := s.creators.GetAgency(ctx, receipt.OwnerID); err == nil {
		s.notify(ctx, agency.OwnerID, receipt)
	}
	return receipt, nil
}

// PayChatterPayout is allowed for admins and for the owner of the chatter's
// agency.
func (s *PayoutService) PayChatterPayout(ctx context.Context, actor models.Actor, id uint, txHash string) (*models.PayoutReceipt, error) {
	payout, err := s.payouts.GetChatterPayout(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	agency, err := s.creators.GetAgency(ctx, payout.AgencyID)
	if err != nil {
		return nil, notFound(err)
	}
	if !Authorize(actor, ActionPayChatterWork, Resource{AgencyOwnerID: agency.OwnerID}) {
		return nil, ErrForbidden
	}

	receipt, err := s.payouts.PayChatter(ctx, id, actor.UserID, strings.TrimSpace(txHash), s.now())
	if err != nil {
		return nil, notFound(err)
	}
	s.paid(ctx, receipt)

	if chatter, err := s.creators.GetChatter(ctx, receipt.OwnerID); err == nil {
		s.notify(ctx, chatter.UserID, receipt)
	}
	return receipt, nil
}

// PayAgencyCreator records and settles an agency owner paying a managed
// creator in one step.
func (s *PayoutService) PayAgencyCreator(ctx context.Context, actor models.Actor, creatorID uint, req models.AgencyCreatorPayRequest) (*models.PayoutReceipt, error) {
	creator, err := s.creators.GetByID(ctx, creatorID)
	if err != nil {
		return nil, notFound(err)
	}
	if creator.AgencyID == nil {
		return nil, ErrForbidden
	}
	agency, err := s.creators.GetAgency(ctx, *creator.AgencyID)
	if err != nil {
		return nil, notFound(err)
	}
	if !Authorize(actor, ActionManageAgency, Resource{AgencyOwnerID: agency.OwnerID}) {
		return nil, ErrForbidden
	}
	if !req.Amount.IsPositive() || !req.Amount.Equal(req.Amount.Round(2)) {
		return nil, fmt.Errorf("%w: invalid amount", ErrBadInput)
	}

	payout := &models.AgencyCreatorPayout{
		AgencyID:    agency.ID,
		CreatorID:   creator.ID,
		Amount:      req.Amount,
		Method:      req.Method,
		Destination: strings.TrimSpace(req.Destination),
		Status:      models.PayoutPending,
		TxHash:      strings.TrimSpace(req.TxHash),
	}
	receipt, err := s.payouts.PayAgencyCreator(ctx, payout, actor.UserID, s.now())
	if err != nil {
		return nil, notFound(err)
	}
	s.paid(ctx, receipt)
	s.notify(ctx, creator.UserID, receipt)
	return receipt, nil
}

func (s *PayoutService) paid(ctx context.Context, receipt *models.PayoutReceipt) {
	metrics.RecordPayout(string(receipt.Kind))
	s.log.Info("payout paid",
		zap.String("kind", string(receipt.Kind)),
		zap.Uint("payout_id", receipt.PayoutID),
		zap.Uint("owner_id", receipt.OwnerID),
		zap.String("amount", receipt.Amount.StringFixed(2)),
		zap.Int64("earnings_settled", receipt.EarningsSettled))
}

func (s *PayoutService) notify(ctx context.Context, userID uint, receipt *models.PayoutReceipt) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.log.Warn("payout notification skipped", zap.Uint("user_id", userID), zap.Error(err))
		return
	}
	if err := s.mailer.SendPayoutPaid(ctx, user.Email, user.FullName, receipt.Amount.StringFixed(2)); err != nil {
		s.log.Warn("queue payout email failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func (s *PayoutService) CreatorPayouts(ctx context.Context, userID uint) ([]models.PayoutRequest, error) {
	creator, err := s.creators.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return s.payouts.ListCreatorPayouts(ctx, creator.ID)
}

func (s *PayoutService) PendingCreatorPayouts(ctx context.Context, actor models.Actor) ([]models.PayoutRequest, error) {
	if !Authorize(actor, ActionAdmin, Resource{}) {
		return nil, ErrForbidden
	}
	return s.payouts.ListPendingCreatorPayouts(ctx)
}

func (s *PayoutService) PendingAgencyPayouts(ctx context.Context, actor models.Actor) ([]models.AgencyPayoutRequest, error) {
	if !Authorize(actor, ActionAdmin, Resource{}) {
		return nil, ErrForbidden
	}
	return s.payouts.ListPendingAgencyPayouts(ctx)
}

func (s *PayoutService) AgencyChatterPayouts(ctx context.Context, userID uint) ([]models.ChatterPayoutRequest, error) {
	agency, err := s.creators.GetAgencyByOwner(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return s.payouts.ListChatterPayoutsByAgency(ctx, agency.ID)
}
