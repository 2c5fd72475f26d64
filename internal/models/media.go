package models

import (
	"time"
)

// Media is a stored photo or video. PriceCredits of zero means the item is
// only visible to subscribers.
type Media struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	CreatorID    uint      `json:"creator_id" gorm:"not null;index"`
	Title        string    `json:"title" gorm:"not null"`
	Description  string    `json:"description"`
	StorageKey   string    `json:"-" gorm:"not null;uniqueIndex"`
	URL          string    `json:"url,omitempty" gorm:"-"`
	FileName     string    `json:"file_name" gorm:"not null"`
	MimeType     string    `json:"mime_type" gorm:"not null"`
	FileSize     int64     `json:"file_size" gorm:"not null"`
	PriceCredits int64     `json:"price_credits" gorm:"not null;default:0"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (m *Media) IsPPV() bool {
	return m.PriceCredits > 0
}

type MediaPurchase struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_media_purchase_user_media,priority:1"`
	MediaID       uint      `json:"media_id" gorm:"not null;uniqueIndex:idx_media_purchase_user_media,priority:2"`
	CreatorID     uint      `json:"creator_id" gorm:"not null;index"`
	Credits       int64     `json:"credits" gorm:"not null"`
	PaymentID     *uint     `json:"payment_id,omitempty"`
	TransactionID *uint     `json:"transaction_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type FlashSale struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	CreatorID       uint      `json:"creator_id" gorm:"not null;index"`
	MediaID         uint      `json:"media_id" gorm:"not null;index"`
	DiscountPercent int       `json:"discount_percent" gorm:"not null"`
	EndsAt          time.Time `json:"ends_at" gorm:"not null;index"`
	IsActive        bool      `json:"is_active" gorm:"default:true;index"`
	CreatedAt       time.Time `json:"created_at"`
}

// Apply returns the discounted price, never below one credit.
func (f *FlashSale) Apply(price int64) int64 {
	if f == nil || !f.IsActive || f.DiscountPercent <= 0 {
		return price
	}
	discounted := price * int64(100-f.DiscountPercent) / 100
	if discounted < 1 {
		return 1
	}
	return discounted
}

type UploadMediaRequest struct {
	Title        string `form:"title" validate:"required,max=200"`
	Description  string `form:"description" validate:"max=2000"`
	PriceCredits int64  `form:"price_credits" validate:"gte=0"`
	MimeType     string `validate:"required,supported_media"`
}

type CreateFlashSaleRequest struct {
	MediaID         uint      `json:"media_id" validate:"required"`
	DiscountPercent int       `json:"discount_percent" validate:"required,gte=1,lte=90"`
	EndsAt          time.Time `json:"ends_at" validate:"required"`
}

type TipRequest struct {
	Credits int64  `json:"credits" validate:"required,gt=0"`
	Message string `json:"message" validate:"max=500"`
}

type UnlockResult struct {
	Purchase MediaPurchase `json:"purchase"`
	Spent    SpendResult   `json:"spent"`
}

type UnlockRequest struct {
	MessageID *uint `json:"message_id"`
}
