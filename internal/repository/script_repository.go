package repository

import (
	"context"

	"github.com/sefazor/fanvault-backend/internal/models"
	"gorm.io/gorm"
)

type ScriptRepository struct {
	db *gorm.DB
}

func NewScriptRepository(db *gorm.DB) *ScriptRepository {
	return &ScriptRepository{db: db}
}

func (r *ScriptRepository) Create(ctx context.Context, script *models.Script) error {
	return r.db.WithContext(ctx).Create(script).Error
}

func (r *ScriptRepository) GetByID(ctx context.Context, id uint) (*models.Script, error) {
	var script models.Script
	if err := r.db.WithContext(ctx).First(&script, id).Error; err != nil {
		return nil, err
	}
	return &script, nil
}

func (r *ScriptRepository) ActiveByAgency(ctx context.Context, agencyID uint) ([]models.Script, error) {
	var scripts []models.Script
	err := r.db.WithContext(ctx).
		Where("agency_id = ? AND is_active = ?", agencyID, true).
		Order("id").
		Find(&scripts).Error
	return scripts, err
}

func (r *ScriptRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Script{}).Where("id = ?", id).Update("is_active", false).Error
}
