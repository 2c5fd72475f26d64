package repository

import (
	"context"

	"github.com/sefazor/fanvault-backend/internal/models"
	"gorm.io/gorm"
)

// CreatorRepository covers creators, agencies and chatters: the three
// entities that hold earnings.
type CreatorRepository struct {
	db *gorm.DB
}

func NewCreatorRepository(db *gorm.DB) *CreatorRepository {
	return &CreatorRepository{db: db}
}

// Create stores the profile and flags the owning user as a creator.
func (r *CreatorRepository) Create(ctx context.Context, creator *models.Creator) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(creator).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", creator.UserID).Update("is_creator", true).Error
	})
}

func (r *CreatorRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Creator{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *CreatorRepository) GetByID(ctx context.Context, id uint) (*models.Creator, error) {
	var creator models.Creator
	if err := r.db.WithContext(ctx).First(&creator, id).Error; err != nil {
		return nil, err
	}
	return &creator, nil
}

func (r *CreatorRepository) GetBySlug(ctx context.Context, slug string) (*models.Creator, error) {
	var creator models.Creator
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&creator).Error; err != nil {
		return nil, err
	}
	return &creator, nil
}

func (r *CreatorRepository) GetByUserID(ctx context.Context, userID uint) (*models.Creator, error) {
	var creator models.Creator
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&creator).Error; err != nil {
		return nil, err
	}
	return &creator, nil
}

func (r *CreatorRepository) GetAgency(ctx context.Context, id uint) (*models.Agency, error) {
	var agency models.Agency
	if err := r.db.WithContext(ctx).First(&agency, id).Error; err != nil {
		return nil, err
	}
	return &agency, nil
}

func (r *CreatorRepository) GetAgencyByOwner(ctx context.Context, ownerID uint) (*models.Agency, error) {
	var agency models.Agency
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").First(&agency).Error; err != nil {
		return nil, err
	}
	return &agency, nil
}

func (r *CreatorRepository) AgencyCreators(ctx context.Context, agencyID uint) ([]models.Creator, error) {
	var creators []models.Creator
	err := r.db.WithContext(ctx).Where("agency_id = ?", agencyID).Order("id").Find(&creators).Error
	return creators, err
}

func (r *CreatorRepository) GetChatter(ctx context.Context, id uint) (*models.Chatter, error) {
	var chatter models.Chatter
	if err := r.db.WithContext(ctx).First(&chatter, id).Error; err != nil {
		return nil, err
	}
	return &chatter, nil
}

func (r *CreatorRepository) GetChatterByUserID(ctx context.Context, userID uint) (*models.Chatter, error) {
	var chatter models.Chatter
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&chatter).Error; err != nil {
		return nil, err
	}
	return &chatter, nil
}

func (r *CreatorRepository) CreatorEarnings(ctx context.Context, creatorID uint, limit, offset int) ([]models.CreatorEarning, error) {
	var earnings []models.CreatorEarning
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&earnings).Error
	return earnings, err
}
