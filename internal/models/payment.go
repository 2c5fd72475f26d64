package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PaymentProvider string

const (
	ProviderStripe     PaymentProvider = "STRIPE"
	ProviderChangeHero PaymentProvider = "CHANGEHERO"
	ProviderGuardarian PaymentProvider = "GUARDARIAN"
	ProviderMidtrans   PaymentProvider = "MIDTRANS"
	ProviderPayGate    PaymentProvider = "PAYGATE"
	ProviderManual     PaymentProvider = "MANUAL"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

type PaymentType string

const (
	PaymentSubscription  PaymentType = "SUBSCRIPTION"
	PaymentMediaPurchase PaymentType = "MEDIA_PURCHASE"
	PaymentPPVUnlock     PaymentType = "PPV_UNLOCK"
	PaymentTip           PaymentType = "TIP"
	PaymentCredits       PaymentType = "CREDITS"
	PaymentOther         PaymentType = "OTHER"
)

// Payment is one external payment attempt. ProviderTxID is nullable so that
// attempts recorded before the provider answers do not collide on the
// (provider, provider_tx_id) unique index.
type Payment struct {
	ID           uint              `json:"id" gorm:"primaryKey"`
	Reference    string            `json:"reference" gorm:"size:36;uniqueIndex;not null"`
	Provider     PaymentProvider   `json:"provider" gorm:"type:varchar(16);not null;uniqueIndex:idx_payment_provider_tx,priority:1"`
	ProviderTxID *string           `json:"provider_tx_id,omitempty" gorm:"uniqueIndex:idx_payment_provider_tx,priority:2"`
	Status       PaymentStatus     `json:"status" gorm:"type:varchar(16);not null;default:'PENDING';index"`
	Type         PaymentType       `json:"type" gorm:"type:varchar(16);not null"`
	Amount       decimal.Decimal   `json:"amount" gorm:"type:numeric(14,2);not null"`
	Currency     string            `json:"currency" gorm:"size:8;not null;default:'USD'"`
	UserID       uint              `json:"user_id" gorm:"not null;index"`
	CreatorID    *uint             `json:"creator_id,omitempty" gorm:"index"`
	Metadata     datatypes.JSONMap `json:"metadata,omitempty"`
	PaymentURL   string            `json:"payment_url,omitempty"`
	PayAddress   string            `json:"pay_address,omitempty"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentCompleted || p.Status == PaymentFailed
}

// MetaUint reads a numeric id out of the metadata blob. JSON numbers come
// back as float64 after a round-trip through the database.
func (p *Payment) MetaUint(key string) (uint, bool) {
	if p.Metadata == nil {
		return 0, false
	}
	switch v := p.Metadata[key].(type) {
	case float64:
		return uint(v), v > 0
	case int:
		return uint(v), v > 0
	case uint:
		return v, v > 0
	case int64:
		return uint(v), v > 0
	}
	return 0, false
}

type WebhookEvent struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	Provider        string         `json:"provider" gorm:"size:16;not null;uniqueIndex:idx_webhook_provider_event,priority:1"`
	ProviderEventID string         `json:"provider_event_id" gorm:"not null;uniqueIndex:idx_webhook_provider_event,priority:2"`
	EventType       string         `json:"event_type" gorm:"not null"`
	Payload         datatypes.JSON `json:"-"`
	ProcessedAt     *time.Time     `json:"processed_at,omitempty"`
	Error           string         `json:"error,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

type CheckoutRequest struct {
	Provider  PaymentProvider `json:"provider" validate:"required,oneof=STRIPE CHANGEHERO GUARDARIAN MIDTRANS PAYGATE MANUAL"`
	Type      PaymentType     `json:"type" validate:"required,oneof=SUBSCRIPTION MEDIA_PURCHASE PPV_UNLOCK TIP CREDITS OTHER"`
	PackageID uint            `json:"package_id" validate:"required_if=Type CREDITS"`
	PlanID    uint            `json:"plan_id" validate:"required_if=Type SUBSCRIPTION"`
	MediaID   uint            `json:"media_id"`
	CreatorID uint            `json:"creator_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency" validate:"omitempty,len=3"`
}

type CheckoutSession struct {
	PaymentID  uint          `json:"payment_id"`
	Reference  string        `json:"reference"`
	Provider   string        `json:"provider"`
	Status     PaymentStatus `json:"status"`
	URL        string        `json:"url,omitempty"`
	PayAddress string        `json:"pay_address,omitempty"`
	PayAmount  string        `json:"pay_amount,omitempty"`
	PayQRCode  string        `json:"pay_qr_code,omitempty"`
}
