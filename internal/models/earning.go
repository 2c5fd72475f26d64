package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EarningStatus string

const (
	EarningPending EarningStatus = "PENDING"
	EarningPaid    EarningStatus = "PAID"
)

type EarningSource string

const (
	SourceSubscription EarningSource = "SUBSCRIPTION"
	SourcePPV          EarningSource = "PPV"
	SourceTip          EarningSource = "TIP"
	SourceMessage      EarningSource = "MESSAGE"
)

type CreatorEarning struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	CreatorID  uint            `json:"creator_id" gorm:"not null;index:idx_creator_earning_status,priority:1"`
	PaymentID  *uint           `json:"payment_id,omitempty" gorm:"index"`
	SourceType EarningSource   `json:"source_type" gorm:"type:varchar(16);not null"`
	Gross      decimal.Decimal `json:"gross" gorm:"type:numeric(14,2);not null"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	Status     EarningStatus   `json:"status" gorm:"type:varchar(8);not null;default:'PENDING';index:idx_creator_earning_status,priority:2"`
	PayoutID   *uint           `json:"payout_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type AgencyEarning struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	AgencyID   uint            `json:"agency_id" gorm:"not null;index:idx_agency_earning_status,priority:1"`
	CreatorID  uint            `json:"creator_id" gorm:"not null"`
	PaymentID  *uint           `json:"payment_id,omitempty" gorm:"index"`
	SourceType EarningSource   `json:"source_type" gorm:"type:varchar(16);not null"`
	Gross      decimal.Decimal `json:"gross" gorm:"type:numeric(14,2);not null"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	Status     EarningStatus   `json:"status" gorm:"type:varchar(8);not null;default:'PENDING';index:idx_agency_earning_status,priority:2"`
	PayoutID   *uint           `json:"payout_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type ChatterEarning struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	ChatterID  uint            `json:"chatter_id" gorm:"not null;index:idx_chatter_earning_status,priority:1"`
	CreatorID  uint            `json:"creator_id" gorm:"not null"`
	PaymentID  *uint           `json:"payment_id,omitempty" gorm:"index"`
	SourceType EarningSource   `json:"source_type" gorm:"type:varchar(16);not null"`
	Gross      decimal.Decimal `json:"gross" gorm:"type:numeric(14,2);not null"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	Status     EarningStatus   `json:"status" gorm:"type:varchar(8);not null;default:'PENDING';index:idx_chatter_earning_status,priority:2"`
	PayoutID   *uint           `json:"payout_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type Fees struct {
	PlatformFee decimal.Decimal `json:"platform_fee"`
	NetAmount   decimal.Decimal `json:"net_amount"`
}

// RevenueSplit is the outcome of dividing one gross amount. Platform holds
// the processing fee plus commission.
type RevenueSplit struct {
	Gross          decimal.Decimal `json:"gross"`
	PlatformFee    decimal.Decimal `json:"platform_fee"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	Platform       decimal.Decimal `json:"platform"`
	Agency         decimal.Decimal `json:"agency"`
	Chatter        decimal.Decimal `json:"chatter"`
	Creator        decimal.Decimal `json:"creator"`

	Source    EarningSource `json:"source"`
	CreatorID uint          `json:"creator_id"`
	AgencyID  *uint         `json:"agency_id,omitempty"`
	ChatterID *uint         `json:"chatter_id,omitempty"`
}
