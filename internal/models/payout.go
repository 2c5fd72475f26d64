package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PayoutStatus string

const (
	PayoutPending PayoutStatus = "PENDING"
	PayoutPaid    PayoutStatus = "PAID"
)

type PayoutMethod string

const (
	PayoutCrypto PayoutMethod = "CRYPTO"
	PayoutBank   PayoutMethod = "BANK"
	PayoutPayPal PayoutMethod = "PAYPAL"
)

// PayoutRequest is a creator asking the platform to be paid.
type PayoutRequest struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	CreatorID   uint            `json:"creator_id" gorm:"not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	Method      PayoutMethod    `json:"method" gorm:"type:varchar(16);not null"`
	Destination string          `json:"destination" gorm:"not null"`
	Status      PayoutStatus    `json:"status" gorm:"type:varchar(8);not null;default:'PENDING';index"`
	TxHash      string          `json:"tx_hash,omitempty"`
	PaidBy      *uint           `json:"paid_by,omitempty"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AgencyPayoutRequest is an agency asking the platform to be paid.
type AgencyPayoutRequest struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	AgencyID    uint            `json:"agency_id" gorm:"not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	Method      PayoutMethod    `json:"method" gorm:"type:varchar(16);not null"`
	Destination string          `json:"destination" gorm:"not null"`
	Status      PayoutStatus    `json:"status" gorm:"type:varchar(8);not null;default:'PENDING';index"`
	TxHash      string          `json:"tx_hash,omitempty"`
	PaidBy      *uint           `json:"paid_by,omitempty"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ChatterPayoutRequest is settled by the chatter's agency owner or an admin.
type ChatterPayoutRequest struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	ChatterID   uint            `json:"chatter_id" gorm:"not null;index"`
	AgencyID    uint            `json:"agency_id" gorm:"not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	Method      PayoutMethod    `json:"method" gorm:"type:varchar(16);not null"`
	Destination string          `json:"destination" gorm:"not null"`
	Status      PayoutStatus    `json:"status" gorm:"type:varchar(8);not null;default:'PENDING';index"`
	TxHash      string          `json:"tx_hash,omitempty"`
	PaidBy      *uint           `json:"paid_by,omitempty"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AgencyCreatorPayout records an agency owner paying one of its managed
// creators out of the creator's pending balance.
type AgencyCreatorPayout struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	AgencyID    uint            `json:"agency_id" gorm:"not null;index"`
	CreatorID   uint            `json:"creator_id" gorm:"not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	Method      PayoutMethod    `json:"method" gorm:"type:varchar(16);not null"`
	Destination string          `json:"destination"`
	Status      PayoutStatus    `json:"status" gorm:"type:varchar(8);not null;default:'PENDING';index"`
	TxHash      string          `json:"tx_hash,omitempty"`
	PaidBy      *uint           `json:"paid_by,omitempty"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type PayoutKind string

const (
	PayoutKindCreator         PayoutKind = "creator"
	PayoutKindAgency          PayoutKind = "agency"
	PayoutKindChatter         PayoutKind = "chatter"
	PayoutKindAgencyToCreator PayoutKind = "agency_creator"
)

type CreatePayoutRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Method      PayoutMethod    `json:"method" validate:"required,oneof=CRYPTO BANK PAYPAL"`
	Destination string          `json:"destination" validate:"required,max=255"`
}

type PayPayoutRequest struct {
	TxHash string `json:"tx_hash" validate:"max=128"`
}

type AgencyCreatorPayRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Method      PayoutMethod    `json:"method" validate:"required,oneof=CRYPTO BANK PAYPAL"`
	Destination string          `json:"destination" validate:"max=255"`
	TxHash      string          `json:"tx_hash" validate:"max=128"`
}

// PayoutReceipt is returned by every pay call.
type PayoutReceipt struct {
	Kind            PayoutKind      `json:"kind"`
	PayoutID        uint            `json:"payout_id"`
	OwnerID         uint            `json:"owner_id"`
	Amount          decimal.Decimal `json:"amount"`
	TxHash          string          `json:"tx_hash,omitempty"`
	PaidAt          time.Time       `json:"paid_at"`
	EarningsSettled int64           `json:"earnings_settled"`
}
