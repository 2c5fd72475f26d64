package repository

import (
	"context"

	"github.com/sefazor/fanvault-backend/internal/models"
	"gorm.io/gorm"
)

// TokenRepository stores the one-time email verification and password
// reset tokens.
type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) CreateVerification(ctx context.Context, token *models.VerificationToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *TokenRepository) FindVerification(ctx context.Context, token string) (*models.VerificationToken, error) {
	var t models.VerificationToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TokenRepository) DeleteVerification(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.VerificationToken{}, id).Error
}

// ConsumeVerification marks the user verified and drops all of their
// verification tokens.
func (r *TokenRepository) ConsumeVerification(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("is_verified", true).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.VerificationToken{}).Error
	})
}

func (r *TokenRepository) CreateReset(ctx context.Context, token *models.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *TokenRepository) FindReset(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TokenRepository) DeleteReset(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.PasswordResetToken{}, id).Error
}

// ResetPassword stores the new hash and removes every reset token of the user.
func (r *TokenRepository) ResetPassword(ctx context.Context, userID uint, passwordHash string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", userID).Update("password", passwordHash)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("user_id = ?", userID).Delete(&models.PasswordResetToken{}).Error
	})
}
