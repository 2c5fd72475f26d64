package repository

import (
	"context"
	"time"

	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// payoutTable ties a payout table to the entity whose counters it moves and
// to that entity's earnings table. ownerCol names the owner id column in
// both the payout and the earnings table.
type payoutTable struct {
	kind     models.PayoutKind
	payout   func() interface{}
	owner    func() interface{}
	earning  func() interface{}
	ownerCol string
}

var (
	creatorPayouts = payoutTable{
		kind:     models.PayoutKindCreator,
		payout:   func() interface{} { return &models.PayoutRequest{} },
		owner:    func() interface{} { return &models.Creator{} },
		earning:  func() interface{} { return &models.CreatorEarning{} },
		ownerCol: "creator_id",
	}
	agencyPayouts = payoutTable{
		kind:     models.PayoutKindAgency,
		payout:   func() interface{} { return &models.AgencyPayoutRequest{} },
		owner:    func() interface{} { return &models.Agency{} },
		earning:  func() interface{} { return &models.AgencyEarning{} },
		ownerCol: "agency_id",
	}
	chatterPayouts = payoutTable{
		kind:     models.PayoutKindChatter,
		payout:   func() interface{} { return &models.ChatterPayoutRequest{} },
		owner:    func() interface{} { return &models.Chatter{} },
		earning:  func() interface{} { return &models.ChatterEarning{} },
		ownerCol: "chatter_id",
	}
	agencyCreatorPayouts = payoutTable{
		kind:     models.PayoutKindAgencyToCreator,
		payout:   func() interface{} { return &models.AgencyCreatorPayout{} },
		owner:    func() interface{} { return &models.Creator{} },
		earning:  func() interface{} { return &models.CreatorEarning{} },
		ownerCol: "creator_id",
	}
)

type payoutRow struct {
	ID      uint
	OwnerID uint
	Amount  decimal.Decimal
	Status  models.PayoutStatus
}

type PayoutRepository struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

func (r *PayoutRepository) CreateCreatorRequest(ctx context.Context, req *models.PayoutRequest) error {
	return r.createRequest(ctx, creatorPayouts, req.CreatorID, req.Amount, req)
}

func (r *PayoutRepository) CreateAgencyRequest(ctx context.Context, req *models.AgencyPayoutRequest) error {
	return r.createRequest(ctx, agencyPayouts, req.AgencyID, req.Amount, req)
}

func (r *PayoutRepository) CreateChatterRequest(ctx context.Context, req *models.ChatterPayoutRequest) error {
	return r.createRequest(ctx, chatterPayouts, req.ChatterID, req.Amount, req)
}

func (r *PayoutRepository) createRequest(ctx context.Context, tbl payoutTable, ownerID uint, amount decimal.Decimal, row interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pending, err := lockOwnerBalance(tx, tbl, ownerID)
		if err != nil {
			return err
		}

		var open int64
		if err := tx.Model(tbl.payout()).
			Where(tbl.ownerCol+" = ? AND status = ?", ownerID, models.PayoutPending).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrPayoutPending
		}
		if amount.GreaterThan(pending) {
			return ErrBalanceExceeded
		}
		return tx.Create(row).Error
	})
}

func lockOwnerBalance(tx *gorm.DB, tbl payoutTable, ownerID uint) (decimal.Decimal, error) {
	var owner struct {
		PendingBalance decimal.Decimal
	}
	res := tx.Model(tbl.owner()).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("pending_balance").
		Where("id = ?", ownerID).
		Limit(1).
		Find(&owner)
	if res.Error != nil {
		return decimal.Zero, res.Error
	}
	if res.RowsAffected == 0 {
		return decimal.Zero, gorm.ErrRecordNotFound
	}
	return owner.PendingBalance, nil
}

func (r *PayoutRepository) PayCreator(ctx context.Context, id, paidBy uint, txHash string, now time.Time) (*models.PayoutReceipt, error) {
	return r.pay(ctx, creatorPayouts, id, paidBy, txHash, now)
}

func (r *PayoutRepository) PayAgency(ctx context.Context, id, paidBy uint, txHash string, now time.Time) (*models.PayoutReceipt, error) {
	return r.pay(ctx, agencyPayouts, id, paidBy, txHash, now)
}

func (r *PayoutRepository) PayChatter(ctx context.Context, id, paidBy uint, txHash string, now time.Time) (*models.PayoutReceipt, error) {
	return r.pay(ctx, chatterPayouts, id, paidBy, txHash, now)
}

func (r *PayoutRepository) pay(ctx context.Context, tbl payoutTable, id, paidBy uint, txHash string, now time.Time) (*models.PayoutReceipt, error) {
	var receipt *models.PayoutReceipt
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		receipt, err = payLocked(tx, tbl, id, paidBy, txHash, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// payLocked runs the PENDING -> PAID transition inside tx: the payout row,
// the owner's counters and the owner's pending earnings move together.
func payLocked(tx *gorm.DB, tbl payoutTable, id, paidBy uint, txHash string, now time.Time) (*models.PayoutReceipt, error) {
	var row payoutRow
	res := tx.Model(tbl.payout()).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", tbl.ownerCol+" AS owner_id", "amount", "status").
		Where("id = ?", id).
		Limit(1).
		Find(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	if row.Status == models.PayoutPaid {
		return nil, ErrPayoutAlreadyPaid
	}

	upd := tx.Model(tbl.payout()).
		Where("id = ? AND status = ?", id, models.PayoutPending).
		Updates(map[string]interface{}{
			"status":  models.PayoutPaid,
			"paid_at": now,
			"paid_by": paidBy,
			"tx_hash": txHash,
		})
	if upd.Error != nil {
		return nil, upd.Error
	}
	if upd.RowsAffected == 0 {
		return nil, ErrPayoutAlreadyPaid
	}

	owner := tx.Model(tbl.owner()).
		Where("id = ?", row.OwnerID).
		Updates(map[string]interface{}{
			"pending_balance": gorm.Expr("pending_balance - ?", row.Amount),
			"total_paid":      gorm.Expr("total_paid + ?", row.Amount),
		})
	if owner.Error != nil {
		return nil, owner.Error
	}
	if owner.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	flip := tx.Model(tbl.earning()).
		Where(tbl.ownerCol+" = ? AND status = ?", row.OwnerID, models.EarningPending).
		Updates(map[string]interface{}{
			"status":    models.EarningPaid,
			"payout_id": id,
		})
	if flip.Error != nil {
		return nil, flip.Error
	}

	return &models.PayoutReceipt{
		Kind:            tbl.kind,
		PayoutID:        id,
		OwnerID:         row.OwnerID,
		Amount:          row.Amount,
		TxHash:          txHash,
		PaidAt:          now,
		EarningsSettled: flip.RowsAffected,
	}, nil
}

// PayAgencyCreator records and settles an agency owner's payout to one of
// the agency's creators in a single transaction.
func (r *PayoutRepository) PayAgencyCreator(ctx context.Context, payout *models.AgencyCreatorPayout, paidBy uint, now time.Time) (*models.PayoutReceipt, error) {
	var receipt *models.PayoutReceipt
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pending, err := lockOwnerBalance(tx, agencyCreatorPayouts, payout.CreatorID)
		if err != nil {
			return err
		}
		if payout.Amount.GreaterThan(pending) {
			return ErrBalanceExceeded
		}

		payout.Status = models.PayoutPending
		if err := tx.Create(payout).Error; err != nil {
			return err
		}
		receipt, err = payLocked(tx, agencyCreatorPayouts, payout.ID, paidBy, payout.TxHash, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (r *PayoutRepository) GetCreatorPayout(ctx context.Context, id uint) (*models.PayoutRequest, error) {
	var p models.PayoutRequest
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PayoutRepository) GetAgencyPayout(ctx context.Context, id uint) (*models.AgencyPayoutRequest, error) {
	var p models.AgencyPayoutRequest
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PayoutRepository) GetChatterPayout(ctx context.Context, id uint) (*models.ChatterPayoutRequest, error) {
	var p models.ChatterPayoutRequest
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PayoutRepository) ListCreatorPayouts(ctx context.Context, creatorID uint) ([]models.PayoutRequest, error) {
	var payouts []models.PayoutRequest
	err := r.db.WithContext(ctx).Where("creator_id = ?", creatorID).Order("created_at DESC").Find(&payouts).Error
	return payouts, err
}

func (r *PayoutRepository) ListPendingCreatorPayouts(ctx context.Context) ([]models.PayoutRequest, error) {
	var payouts []models.PayoutRequest
	err := r.db.WithContext(ctx).Where("status = ?", models.PayoutPending).Order("created_at ASC").Find(&payouts).Error
	return payouts, err
}

func (r *PayoutRepository) ListPendingAgencyPayouts(ctx context.Context) ([]models.AgencyPayoutRequest, error) {
	var payouts []models.AgencyPayoutRequest
	err := r.db.WithContext(ctx).Where("status = ?", models.PayoutPending).Order("created_at ASC").Find(&payouts).Error
	return payouts, err
}

func (r *PayoutRepository) ListChatterPayoutsByAgency(ctx context.Context, agencyID uint) ([]models.ChatterPayoutRequest, error) {
	var payouts []models.ChatterPayoutRequest
	err := r.db.WithContext(ctx).Where("agency_id = ?", agencyID).Order("created_at DESC").Find(&payouts).Error
	return payouts, err
}
