package repository

import (
	"context"
	"time"

	"github.com/sefazor/fanvault-backend/internal/models"
	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) CreatePlan(ctx context.Context, plan *models.SubscriptionPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *SubscriptionRepository) GetPlan(ctx context.Context, id uint) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *SubscriptionRepository) PlansByCreator(ctx context.Context, creatorID uint) ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := r.db.WithContext(ctx).
		Where("creator_id = ? AND is_active = ?", creatorID, true).
		Order("price ASC").
		Find(&plans).Error
	return plans, err
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id uint) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).Preload("Plan").First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) GetByUserCreator(ctx context.Context, userID, creatorID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).Where("user_id = ? AND creator_id = ?", userID, creatorID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).Preload("Plan").Where("user_id = ?", userID).Order("created_at DESC").Find(&subs).Error
	return subs, err
}

// Cancel returns false when the subscription was already canceled.
func (r *SubscriptionRepository) Cancel(ctx context.Context, id uint, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ? AND status <> ?", id, models.SubscriptionCanceled).
		Updates(map[string]interface{}{
			"status":      models.SubscriptionCanceled,
			"canceled_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
