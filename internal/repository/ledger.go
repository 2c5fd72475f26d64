package repository

import (
	"fmt"
	"sort"
	"time"

	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GrantParams describes one positive ledger entry.
type GrantParams struct {
	Amount     int64
	Type       models.CreditTxType
	CreditType models.CreditType
	ExpiresAt  *time.Time
	Reference  string
}

// Draw is the part of a grant consumed by a spend. A zero TxID means the
// credits came from the counter without a matching grant row.
type Draw struct {
	TxID       uint
	CreditType models.CreditType
	Amount     int64
}

type Allocation struct {
	Paid  int64
	Bonus int64
	Draws []Draw
}

// AllocateSpend decides which credits pay for amount. Bonus credits go
// first, then paid ones; inside a type the grant expiring soonest is used
// first and grants without expiry last.
func AllocateSpend(grants []models.CreditTransaction, paidAvail, bonusAvail, amount int64) (Allocation, error) {
	if amount <= 0 {
		return Allocation{}, fmt.Errorf("spend amount must be positive, got %d", amount)
	}
	if paidAvail+bonusAvail < amount {
		return Allocation{}, ErrInsufficientCredits
	}

	alloc := Allocation{}
	alloc.Bonus = min(amount, bonusAvail)
	alloc.Paid = amount - alloc.Bonus

	ordered := make([]models.CreditTransaction, len(grants))
	copy(ordered, grants)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.CreditType != b.CreditType {
			return a.CreditType == models.CreditBonus
		}
		switch {
		case a.ExpiresAt == nil && b.ExpiresAt != nil:
			return false
		case a.ExpiresAt != nil && b.ExpiresAt == nil:
			return true
		case a.ExpiresAt != nil && b.ExpiresAt != nil && !a.ExpiresAt.Equal(*b.ExpiresAt):
			return a.ExpiresAt.Before(*b.ExpiresAt)
		}
		return a.ID < b.ID
	})

	need := map[models.CreditType]int64{
		models.CreditBonus: alloc.Bonus,
		models.CreditPaid:  alloc.Paid,
	}
	for _, g := range ordered {
		left := need[g.CreditType]
		if left == 0 || g.Remaining <= 0 {
			continue
		}
		take := min(left, g.Remaining)
		alloc.Draws = append(alloc.Draws, Draw{TxID: g.ID, CreditType: g.CreditType, Amount: take})
		need[g.CreditType] = left - take
	}
	for _, ct := range []models.CreditType{models.CreditBonus, models.CreditPaid} {
		if need[ct] > 0 {
			alloc.Draws = append(alloc.Draws, Draw{CreditType: ct, Amount: need[ct]})
		}
	}
	return alloc, nil
}

// SumExpired totals the unspent part of grants that expired before now.
func SumExpired(grants []models.CreditTransaction, now time.Time) (paid, bonus int64) {
	for _, g := range grants {
		if g.ExpiresAt == nil || !g.ExpiresAt.Before(now) || g.Remaining <= 0 {
			continue
		}
		if g.CreditType == models.CreditBonus {
			bonus += g.Remaining
		} else {
			paid += g.Remaining
		}
	}
	return paid, bonus
}

func lockUser(tx *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func saveCounters(tx *gorm.DB, user *models.User) error {
	user.CreditBalance = user.PaidCredits + user.BonusCredits
	return tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"paid_credits":   user.PaidCredits,
		"bonus_credits":  user.BonusCredits,
		"credit_balance": user.CreditBalance,
	}).Error
}

// grantCredits expects user to be locked by the caller's transaction.
func grantCredits(tx *gorm.DB, user *models.User, g GrantParams) (*models.CreditTransaction, error) {
	if g.Amount <= 0 {
		return nil, fmt.Errorf("grant amount must be positive, got %d", g.Amount)
	}
	if g.CreditType == models.CreditBonus {
		user.BonusCredits += g.Amount
	} else {
		user.PaidCredits += g.Amount
	}
	if err := saveCounters(tx, user); err != nil {
		return nil, err
	}

	entry := &models.CreditTransaction{
		UserID:       user.ID,
		Amount:       g.Amount,
		BalanceAfter: user.CreditBalance,
		Type:         g.Type,
		CreditType:   g.CreditType,
		Remaining:    g.Amount,
		ExpiresAt:    g.ExpiresAt,
		Reference:    g.Reference,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// expireUserCredits zeroes every grant of user that expired before now and
// writes one EXPIRE entry per grant. user must be locked.
func expireUserCredits(tx *gorm.DB, user *models.User, now time.Time) (int64, error) {
	var grants []models.CreditTransaction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND remaining > 0 AND expires_at IS NOT NULL AND expires_at < ?", user.ID, now).
		Order("expires_at ASC, id ASC").
		Find(&grants).Error
	if err != nil {
		return 0, err
	}
	if len(grants) == 0 {
		return 0, nil
	}

	var expired int64
	for _, g := range grants {
		amount := g.Remaining
		if g.CreditType == models.CreditBonus {
			amount = min(amount, user.BonusCredits)
			user.BonusCredits -= amount
		} else {
			amount = min(amount, user.PaidCredits)
			user.PaidCredits -= amount
		}

		if err := tx.Model(&models.CreditTransaction{}).Where("id = ?", g.ID).Update("remaining", 0).Error; err != nil {
			return 0, err
		}
		if amount == 0 {
			continue
		}
		entry := &models.CreditTransaction{
			UserID:       user.ID,
			Amount:       -amount,
			BalanceAfter: user.PaidCredits + user.BonusCredits,
			Type:         models.CreditTxExpire,
			CreditType:   g.CreditType,
			Reference:    fmt.Sprintf("grant:%d", g.ID),
		}
		if err := tx.Create(entry).Error; err != nil {
			return 0, err
		}
		expired += amount
	}

	if err := saveCounters(tx, user); err != nil {
		return 0, err
	}
	return expired, nil
}

// spendCredits expires stale grants first so the counters only hold
// spendable credits, then consumes amount. user must be locked.
func spendCredits(tx *gorm.DB, user *models.User, amount int64, reference string, now time.Time) (models.SpendResult, error) {
	if _, err := expireUserCredits(tx, user, now); err != nil {
		return models.SpendResult{}, err
	}

	var grants []models.CreditTransaction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND remaining > 0", user.ID).
		Find(&grants).Error
	if err != nil {
		return models.SpendResult{}, err
	}

	alloc, err := AllocateSpend(grants, user.PaidCredits, user.BonusCredits, amount)
	if err != nil {
		return models.SpendResult{}, err
	}

	for _, d := range alloc.Draws {
		if d.TxID == 0 {
			continue
		}
		if err := tx.Model(&models.CreditTransaction{}).
			Where("id = ?", d.TxID).
			Update("remaining", gorm.Expr("remaining - ?", d.Amount)).Error; err != nil {
			return models.SpendResult{}, err
		}
	}

	user.BonusCredits -= alloc.Bonus
	user.PaidCredits -= alloc.Paid
	if err := saveCounters(tx, user); err != nil {
		return models.SpendResult{}, err
	}

	// One SPEND entry per credit type touched, bonus first.
	for _, part := range []struct {
		ct     models.CreditType
		amount int64
	}{{models.CreditBonus, alloc.Bonus}, {models.CreditPaid, alloc.Paid}} {
		if part.amount == 0 {
			continue
		}
		balance := user.CreditBalance
		if part.ct == models.CreditBonus {
			balance += alloc.Paid
		}
		entry := &models.CreditTransaction{
			UserID:       user.ID,
			Amount:       -part.amount,
			BalanceAfter: balance,
			Type:         models.CreditTxSpend,
			CreditType:   part.ct,
			Reference:    reference,
		}
		if err := tx.Create(entry).Error; err != nil {
			return models.SpendResult{}, err
		}
	}

	return models.SpendResult{Paid: alloc.Paid, Bonus: alloc.Bonus, BalanceAfter: user.CreditBalance}, nil
}

// recordEarnings writes the earning rows of a split and moves the owners'
// pending and total counters in the caller's transaction.
func recordEarnings(tx *gorm.DB, split *models.RevenueSplit, paymentID *uint) error {
	if split == nil {
		return nil
	}

	if split.Creator.IsPositive() {
		earning := &models.CreatorEarning{
			CreatorID:  split.CreatorID,
			PaymentID:  paymentID,
			SourceType: split.Source,
			Gross:      split.Gross,
			Amount:     split.Creator,
			Status:     models.EarningPending,
		}
		if err := tx.Create(earning).Error; err != nil {
			return err
		}
		if err := creditOwner(tx, &models.Creator{}, split.CreatorID, split.Creator); err != nil {
			return err
		}
	}

	if split.AgencyID != nil && split.Agency.IsPositive() {
		earning := &models.AgencyEarning{
			AgencyID:   *split.AgencyID,
			CreatorID:  split.CreatorID,
			PaymentID:  paymentID,
			SourceType: split.Source,
			Gross:      split.Gross,
			Amount:     split.Agency,
			Status:     models.EarningPending,
		}
		if err := tx.Create(earning).Error; err != nil {
			return err
		}
		if err := creditOwner(tx, &models.Agency{}, *split.AgencyID, split.Agency); err != nil {
			return err
		}
	}

	if split.ChatterID != nil && split.Chatter.IsPositive() {
		earning := &models.ChatterEarning{
			ChatterID:  *split.ChatterID,
			CreatorID:  split.CreatorID,
			PaymentID:  paymentID,
			SourceType: split.Source,
			Gross:      split.Gross,
			Amount:     split.Chatter,
			Status:     models.EarningPending,
		}
		if err := tx.Create(earning).Error; err != nil {
			return err
		}
		if err := creditOwner(tx, &models.Chatter{}, *split.ChatterID, split.Chatter); err != nil {
			return err
		}
	}
	return nil
}

func creditOwner(tx *gorm.DB, owner interface{}, id uint, amount decimal.Decimal) error {
	res := tx.Model(owner).Where("id = ?", id).Updates(map[string]interface{}{
		"pending_balance": gorm.Expr("pending_balance + ?", amount),
		"total_earned":    gorm.Expr("total_earned + ?", amount),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
