package repository

import (
	"context"

	"github.com/sefazor/fanvault-backend/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("LOWER(email) = LOWER(?)", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uint, fullName string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("full_name", fullName).Error
}

func (r *UserRepository) SetRole(ctx context.Context, id uint, role models.Role) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepository) Stats(ctx context.Context, id uint) (*models.UserStats, error) {
	db := r.db.WithContext(ctx)
	stats := &models.UserStats{}

	var user models.User
	if err := db.Select("credit_balance").First(&user, id).Error; err != nil {
		return nil, err
	}
	stats.CreditBalance = user.CreditBalance

	if err := db.Model(&models.Subscription{}).
		Where("user_id = ? AND status IN ?", id, []models.SubscriptionStatus{models.SubscriptionActive, models.SubscriptionTrialing}).
		Count(&stats.ActiveSubscription).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.MediaPurchase{}).Where("user_id = ?", id).Count(&stats.UnlockedMedia).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Payment{}).
		Where("user_id = ? AND status = ?", id, models.PaymentCompleted).
		Count(&stats.TotalPayments).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
