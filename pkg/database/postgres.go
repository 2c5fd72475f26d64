package database

import (
	"fmt"
	"time"

	"github.com/sefazor/fanvault-backend/internal/config"
	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	level := logger.Warn
	if !cfg.IsProduction() {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	if err := SeedCreditPackages(db); err != nil {
		return nil, err
	}

	log.Info("database ready", zap.Bool("production", cfg.IsProduction()))
	return db, nil
}

// Models lists every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.VerificationToken{},
		&models.PasswordResetToken{},
		&models.CreditPackage{},
		&models.CreditTransaction{},
		&models.Agency{},
		&models.Creator{},
		&models.Chatter{},
		&models.SubscriptionPlan{},
		&models.Subscription{},
		&models.Payment{},
		&models.WebhookEvent{},
		&models.CreatorEarning{},
		&models.AgencyEarning{},
		&models.ChatterEarning{},
		&models.PayoutRequest{},
		&models.AgencyPayoutRequest{},
		&models.ChatterPayoutRequest{},
		&models.AgencyCreatorPayout{},
		&models.Media{},
		&models.MediaPurchase{},
		&models.FlashSale{},
		&models.Message{},
		&models.BumpMessage{},
		&models.RetargetingCampaign{},
		&models.CampaignRecipient{},
		&models.ChatterMemory{},
		&models.Script{},
	}
}

func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// Örnek paketleri ekle (eğer yoksa)
func SeedCreditPackages(db *gorm.DB) error {
	packages := []models.CreditPackage{
		{Name: "100 Credits", Description: "Starter pack", Credits: 100, Price: decimal.RequireFromString("9.99"), IsActive: true},
		{Name: "550 Credits", Description: "500 credits + 50 bonus", Credits: 500, BonusCredits: 50, Price: decimal.RequireFromString("49.99"), IsActive: true},
		{Name: "1200 Credits", Description: "1000 credits + 200 bonus", Credits: 1000, BonusCredits: 200, Price: decimal.RequireFromString("99.99"), IsActive: true},
		{Name: "3000 Credits", Description: "2400 credits + 600 bonus", Credits: 2400, BonusCredits: 600, Price: decimal.RequireFromString("239.99"), IsActive: true},
	}

	for _, pkg := range packages {
		pkg := pkg
		if err := db.Where(models.CreditPackage{Name: pkg.Name}).FirstOrCreate(&pkg).Error; err != nil {
			return fmt.Errorf("seed credit package %q: %w", pkg.Name, err)
		}
	}
	return nil
}
