package repository

import (
	"context"

	"github.com/sefazor/fanvault-backend/internal/models"
	"gorm.io/gorm"
)

type CreditPackageRepository struct {
	db *gorm.DB
}

func NewCreditPackageRepository(db *gorm.DB) *CreditPackageRepository {
	return &CreditPackageRepository{
		db: db,
	}
}

func (r *CreditPackageRepository) GetByID(ctx context.Context, id uint) (*models.CreditPackage, error) {
	var creditPackage models.CreditPackage
	err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&creditPackage, id).Error
	if err != nil {
		return nil, err
	}
	return &creditPackage, nil
}

func (r *CreditPackageRepository) GetAll(ctx context.Context) ([]models.CreditPackage, error) {
	var packages []models.CreditPackage
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("price ASC").Find(&packages).Error
	return packages, err
}
