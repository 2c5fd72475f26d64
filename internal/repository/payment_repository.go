package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sefazor/fanvault-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionActivation upserts the fan's subscription row when a
// SUBSCRIPTION payment completes.
type SubscriptionActivation struct {
	CreatorID uint
	PlanID    uint
	Interval  models.BillingInterval
	TrialDays int
}

// Settlement is everything a completed payment changes. It is applied in the
// same transaction as the status flip.
type Settlement struct {
	Grants        []GrantParams
	Subscription  *SubscriptionActivation
	MediaPurchase *models.MediaPurchase
	Split         *models.RevenueSplit
}

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetByProviderTx(ctx context.Context, provider models.PaymentProvider, providerTxID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_tx_id = ?", provider, providerTxID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&payments).Error
	return payments, err
}

// AttachSession stores what the provider returned for a pending payment.
func (r *PaymentRepository) AttachSession(ctx context.Context, id uint, providerTxID, paymentURL, payAddress string, extra map[string]interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, id).Error; err != nil {
			return err
		}
		meta := payment.Metadata
		if meta == nil {
			meta = datatypes.JSONMap{}
		}
		for k, v := range extra {
			meta[k] = v
		}

		updates := map[string]interface{}{
			"payment_url": paymentURL,
			"pay_address": payAddress,
			"metadata":    meta,
		}
		if providerTxID != "" {
			updates["provider_tx_id"] = providerTxID
		}
		return tx.Model(&models.Payment{}).Where("id = ?", id).Updates(updates).Error
	})
}

// Fail moves a PENDING payment to FAILED. It returns false when the payment
// had already reached a terminal state.
func (r *PaymentRepository) Fail(ctx context.Context, id uint, reason string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.PaymentPending).
		Updates(map[string]interface{}{
			"status":     models.PaymentFailed,
			"updated_at": now,
			"metadata":   gorm.Expr("COALESCE(metadata, '{}'::jsonb) || jsonb_build_object('failure_reason', ?::text)", reason),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Complete moves a PENDING payment to COMPLETED and applies its settlement
// atomically. A payment that is already terminal is left untouched and
// false is returned, so duplicate deliveries never apply twice.
func (r *PaymentRepository) Complete(ctx context.Context, id uint, s Settlement, now time.Time) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, id).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", id, models.PaymentPending).
			Updates(map[string]interface{}{
				"status":       models.PaymentCompleted,
				"completed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if len(s.Grants) > 0 {
			user, err := lockUser(tx, payment.UserID)
			if err != nil {
				return err
			}
			for _, g := range s.Grants {
				if _, err := grantCredits(tx, user, g); err != nil {
					return err
				}
			}
		}

		if s.Subscription != nil {
			if err := activateSubscription(tx, payment.UserID, s.Subscription, now); err != nil {
				return err
			}
		}

		if s.MediaPurchase != nil {
			purchase := *s.MediaPurchase
			purchase.UserID = payment.UserID
			purchase.PaymentID = &payment.ID
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&purchase).Error; err != nil {
				return err
			}
		}

		if err := recordEarnings(tx, s.Split, &payment.ID); err != nil {
			return err
		}

		applied = true
		return nil
	})
	return applied, err
}

func activateSubscription(tx *gorm.DB, userID uint, a *SubscriptionActivation, now time.Time) error {
	var sub models.Subscription
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND creator_id = ?", userID, a.CreatorID).
		First(&sub).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	isNew := errors.Is(err, gorm.ErrRecordNotFound)

	currentEnd := sub.CurrentPeriodEnd
	if sub.Status == models.SubscriptionCanceled {
		currentEnd = time.Time{}
	}
	start, end := models.NextPeriod(a.Interval, currentEnd, now)

	status := models.SubscriptionActive
	if isNew && a.TrialDays > 0 {
		status = models.SubscriptionTrialing
		end = end.AddDate(0, 0, a.TrialDays)
	}

	if isNew {
		sub = models.Subscription{
			UserID:             userID,
			CreatorID:          a.CreatorID,
			PlanID:             a.PlanID,
			Status:             status,
			Interval:           a.Interval,
			CurrentPeriodStart: start,
			CurrentPeriodEnd:   end,
		}
		return tx.Create(&sub).Error
	}

	return tx.Model(&models.Subscription{}).Where("id = ?", sub.ID).Updates(map[string]interface{}{
		"plan_id":              a.PlanID,
		"status":               status,
		"interval":             a.Interval,
		"current_period_start": start,
		"current_period_end":   end,
		"canceled_at":          nil,
	}).Error
}

// RecordWebhookEvent stores a provider event once. It returns false when the
// same (provider, event id) was already seen.
func (r *PaymentRepository) RecordWebhookEvent(ctx context.Context, event *models.WebhookEvent) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "provider_event_id"}},
			DoNothing: true,
		}).
		Create(event)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// MarkWebhookProcessed stamps the event. note is kept for events that were
// accepted but did not change any payment.
func (r *PaymentRepository) MarkWebhookProcessed(ctx context.Context, id uint, note string, now time.Time) error {
	updates := map[string]interface{}{"processed_at": now}
	if note != "" {
		updates["error"] = note
	}
	return r.db.WithContext(ctx).Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

// ForgetWebhookEvent removes a stored event whose processing failed, so the
// provider's retry is handled again.
func (r *PaymentRepository) ForgetWebhookEvent(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.WebhookEvent{}, id).Error
}
