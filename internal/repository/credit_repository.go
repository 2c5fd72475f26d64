package repository

import (
	"context"
	"time"

	"github.com/sefazor/fanvault-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

func (r *CreditRepository) Balances(ctx context.Context, userID uint) (models.CreditBalances, error) {
	var user models.User
	err := r.db.WithContext(ctx).Select("id", "paid_credits", "bonus_credits").First(&user, userID).Error
	if err != nil {
		return models.CreditBalances{}, err
	}
	return models.CreditBalances{
		Paid:  user.PaidCredits,
		Bonus: user.BonusCredits,
		Total: user.PaidCredits + user.BonusCredits,
	}, nil
}

func (r *CreditRepository) History(ctx context.Context, userID uint, limit, offset int) ([]models.CreditTransaction, error) {
	var txs []models.CreditTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	return txs, err
}

func (r *CreditRepository) Grant(ctx context.Context, userID uint, g GrantParams) (*models.CreditTransaction, error) {
	var entry *models.CreditTransaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		entry, err = grantCredits(tx, user, g)
		return err
	})
	return entry, err
}

func (r *CreditRepository) Spend(ctx context.Context, userID uint, amount int64, reference string, now time.Time) (models.SpendResult, error) {
	var result models.SpendResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		result, err = spendCredits(tx, user, amount, reference, now)
		return err
	})
	return result, err
}

// UsersWithExpiredCredits returns up to limit user ids above afterID that
// still hold unspent credits past their expiry, in id order.
func (r *CreditRepository) UsersWithExpiredCredits(ctx context.Context, now time.Time, afterID uint, limit int) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.CreditTransaction{}).
		Distinct("user_id").
		Where("remaining > 0 AND expires_at IS NOT NULL AND expires_at < ?", now).
		Where("user_id > ?", afterID).
		Order("user_id").
		Limit(limit).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *CreditRepository) ExpireUser(ctx context.Context, userID uint, now time.Time) (int64, error) {
	var expired int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		expired, err = expireUserCredits(tx, user, now)
		return err
	})
	return expired, err
}

// DueRecurringGrants lists live subscriptions whose plan grants credits and
// whose last grant is older than the plan's credit interval.
func (r *CreditRepository) DueRecurringGrants(ctx context.Context, now time.Time, limit int) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Joins("JOIN subscription_plans ON subscription_plans.id = subscriptions.plan_id").
		Where("subscriptions.status IN ?", []models.SubscriptionStatus{models.SubscriptionActive, models.SubscriptionTrialing}).
		Where("subscriptions.current_period_end > ?", now).
		Where("subscription_plans.recurring_credits > 0").
		Where("subscriptions.last_credit_grant_at IS NULL OR subscriptions.last_credit_grant_at + make_interval(days => subscription_plans.credit_interval_days) <= ?", now).
		Preload("Plan").
		Order("subscriptions.id").
		Limit(limit).
		Find(&subs).Error
	return subs, err
}

// GrantRecurring issues one RECURRING bonus grant for the subscription. It
// returns false when another run already granted for this interval.
func (r *CreditRepository) GrantRecurring(ctx context.Context, subscriptionID uint, g GrantParams, interval time.Duration, now time.Time) (bool, error) {
	granted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub models.Subscription
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sub, subscriptionID).Error; err != nil {
			return err
		}
		if sub.LastCreditGrantAt != nil && now.Sub(*sub.LastCreditGrantAt) < interval {
			return nil
		}

		user, err := lockUser(tx, sub.UserID)
		if err != nil {
			return err
		}
		if _, err := grantCredits(tx, user, g); err != nil {
			return err
		}
		if err := tx.Model(&models.Subscription{}).Where("id = ?", sub.ID).Update("last_credit_grant_at", now).Error; err != nil {
			return err
		}
		granted = true
		return nil
	})
	return granted, err
}
