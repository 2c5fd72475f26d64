package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Creator, Agency and Chatter carry three running counters that move together
// with earnings and payouts: totalEarned = totalPaid + pendingBalance.
type Creator struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	UserID         uint            `json:"user_id" gorm:"uniqueIndex;not null"`
	Slug           string          `json:"slug" gorm:"size:64;uniqueIndex;not null"`
	DisplayName    string          `json:"display_name" gorm:"not null"`
	Bio            string          `json:"bio"`
	AgencyID       *uint           `json:"agency_id,omitempty" gorm:"index"`
	PendingBalance decimal.Decimal `json:"pending_balance" gorm:"type:numeric(14,2);not null;default:0"`
	TotalEarned    decimal.Decimal `json:"total_earned" gorm:"type:numeric(14,2);not null;default:0"`
	TotalPaid      decimal.Decimal `json:"total_paid" gorm:"type:numeric(14,2);not null;default:0"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type Agency struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	OwnerID        uint            `json:"owner_id" gorm:"not null;index"`
	Name           string          `json:"name" gorm:"not null"`
	CommissionRate decimal.Decimal `json:"commission_rate" gorm:"type:numeric(5,4);not null;default:0"`
	PendingBalance decimal.Decimal `json:"pending_balance" gorm:"type:numeric(14,2);not null;default:0"`
	TotalEarned    decimal.Decimal `json:"total_earned" gorm:"type:numeric(14,2);not null;default:0"`
	TotalPaid      decimal.Decimal `json:"total_paid" gorm:"type:numeric(14,2);not null;default:0"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type Chatter struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	UserID         uint            `json:"user_id" gorm:"uniqueIndex;not null"`
	AgencyID       uint            `json:"agency_id" gorm:"not null;index"`
	CommissionRate decimal.Decimal `json:"commission_rate" gorm:"type:numeric(5,4);not null;default:0"`
	PendingBalance decimal.Decimal `json:"pending_balance" gorm:"type:numeric(14,2);not null;default:0"`
	TotalEarned    decimal.Decimal `json:"total_earned" gorm:"type:numeric(14,2);not null;default:0"`
	TotalPaid      decimal.Decimal `json:"total_paid" gorm:"type:numeric(14,2);not null;default:0"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type CreateCreatorRequest struct {
	Slug        string `json:"slug" validate:"required,min=3,max=64,alphanum"`
	DisplayName string `json:"display_name" validate:"required"`
	Bio         string `json:"bio" validate:"max=500"`
}

type CreatePlanRequest struct {
	Name               string          `json:"name" validate:"required"`
	Price              decimal.Decimal `json:"price"`
	Interval           BillingInterval `json:"interval" validate:"required,oneof=MONTH QUARTER YEAR"`
	TrialDays          int             `json:"trial_days" validate:"gte=0,lte=90"`
	RecurringCredits   int64           `json:"recurring_credits" validate:"gte=0"`
	CreditIntervalDays int             `json:"credit_interval_days" validate:"gte=0"`
}
