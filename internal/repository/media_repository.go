package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sefazor/fanvault-backend/internal/models"
	"gorm.io/gorm"
)

type MediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) Create(ctx context.Context, media *models.Media) error {
	return r.db.WithContext(ctx).Create(media).Error
}

func (r *MediaRepository) GetByID(ctx context.Context, id uint) (*models.Media, error) {
	var media models.Media
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&media, id).Error; err != nil {
		return nil, err
	}
	return &media, nil
}

func (r *MediaRepository) ListByCreator(ctx context.Context, creatorID uint, limit, offset int) ([]models.Media, error) {
	var media []models.Media
	err := r.db.WithContext(ctx).
		Where("creator_id = ? AND is_active = ?", creatorID, true).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&media).Error
	return media, err
}

func (r *MediaRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Media{}).Where("id = ?", id).Update("is_active", false).Error
}

func (r *MediaRepository) HasPurchase(ctx context.Context, userID, mediaID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MediaPurchase{}).
		Where("user_id = ? AND media_id = ?", userID, mediaID).
		Count(&count).Error
	return count > 0, err
}

// ActiveFlashSale returns nil without error when the media has no running sale.
func (r *MediaRepository) ActiveFlashSale(ctx context.Context, mediaID uint, now time.Time) (*models.FlashSale, error) {
	var sale models.FlashSale
	err := r.db.WithContext(ctx).
		Where("media_id = ? AND is_active = ? AND ends_at > ?", mediaID, true, now).
		Order("discount_percent DESC").
		First(&sale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *MediaRepository) CreateFlashSale(ctx context.Context, sale *models.FlashSale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

// Unlock spends price credits from the fan and records the purchase and the
// resulting earnings. A second unlock of the same media fails with
// ErrAlreadyUnlocked and spends nothing.
func (r *MediaRepository) Unlock(ctx context.Context, userID uint, media *models.Media, price int64, split *models.RevenueSplit, now time.Time) (*models.UnlockResult, error) {
	var result *models.UnlockResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.MediaPurchase{}).
			Where("user_id = ? AND media_id = ?", userID, media.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyUnlocked
		}

		spent, err := spendCredits(tx, user, price, fmt.Sprintf("media:%d", media.ID), now)
		if err != nil {
			return err
		}

		purchase := models.MediaPurchase{
			UserID:    userID,
			MediaID:   media.ID,
			CreatorID: media.CreatorID,
			Credits:   price,
		}
		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}
		if err := recordEarnings(tx, split, nil); err != nil {
			return err
		}

		result = &models.UnlockResult{Purchase: purchase, Spent: spent}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Tip moves credits from a fan to a creator and leaves a message in their
// thread when one was given.
func (r *MediaRepository) Tip(ctx context.Context, userID, creatorID uint, credits int64, note string, split *models.RevenueSplit, now time.Time) (models.SpendResult, error) {
	var spent models.SpendResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		spent, err = spendCredits(tx, user, credits, fmt.Sprintf("tip:creator:%d", creatorID), now)
		if err != nil {
			return err
		}
		if err := recordEarnings(tx, split, nil); err != nil {
			return err
		}
		if note == "" {
			return nil
		}
		return tx.Create(&models.Message{
			CreatorID: creatorID,
			FanID:     userID,
			SenderID:  userID,
			Body:      note,
		}).Error
	})
	return spent, err
}
