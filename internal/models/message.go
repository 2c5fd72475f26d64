package models

import "time"

type Message struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	CreatorID    uint      `json:"creator_id" gorm:"not null;index:idx_message_thread,priority:1"`
	FanID        uint      `json:"fan_id" gorm:"not null;index:idx_message_thread,priority:2"`
	SenderID     uint      `json:"sender_id" gorm:"not null"`
	Body         string    `json:"body" gorm:"type:text;not null"`
	MediaID      *uint     `json:"media_id,omitempty"`
	PriceCredits int64     `json:"price_credits" gorm:"not null;default:0"`
	IsBump       bool      `json:"is_bump" gorm:"default:false"`
	CampaignID   *uint     `json:"campaign_id,omitempty"`
	CreatedAt    time.Time `json:"created_at" gorm:"index:idx_message_thread,priority:3"`
}

type BumpStatus string

const (
	BumpPending BumpStatus = "PENDING"
	BumpSent    BumpStatus = "SENT"
	BumpSkipped BumpStatus = "SKIPPED"
	BumpFailed  BumpStatus = "FAILED"
)

// BumpMessage is a scheduled PPV reminder for one fan.
type BumpMessage struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	CreatorID uint       `json:"creator_id" gorm:"not null;index"`
	FanID     uint       `json:"fan_id" gorm:"not null"`
	MediaID   *uint      `json:"media_id,omitempty"`
	Body      string     `json:"body" gorm:"type:text;not null"`
	SendAt    time.Time  `json:"send_at" gorm:"not null;index:idx_bump_due,priority:2"`
	Status    BumpStatus `json:"status" gorm:"type:varchar(8);not null;default:'PENDING';index:idx_bump_due,priority:1"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type CampaignStatus string

const (
	CampaignScheduled CampaignStatus = "SCHEDULED"
	CampaignSending   CampaignStatus = "SENDING"
	CampaignCompleted CampaignStatus = "COMPLETED"
)

type RetargetingCampaign struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	CreatorID    uint           `json:"creator_id" gorm:"not null;index"`
	Name         string         `json:"name" gorm:"not null"`
	Body         string         `json:"body" gorm:"type:text;not null"`
	MediaID      *uint          `json:"media_id,omitempty"`
	InactiveDays int            `json:"inactive_days" gorm:"not null;default:14"`
	Status       CampaignStatus `json:"status" gorm:"type:varchar(12);not null;default:'SCHEDULED';index"`
	ScheduledAt  time.Time      `json:"scheduled_at" gorm:"not null"`
	SentCount    int            `json:"sent_count" gorm:"not null;default:0"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type CampaignRecipient struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CampaignID uint      `json:"campaign_id" gorm:"not null;uniqueIndex:idx_campaign_fan,priority:1"`
	FanID      uint      `json:"fan_id" gorm:"not null;uniqueIndex:idx_campaign_fan,priority:2"`
	MessageID  uint      `json:"message_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type MemoryKind string

const (
	MemoryNote    MemoryKind = "MEMORY"
	MemoryHandoff MemoryKind = "HANDOFF"
)

// ChatterMemory is a note a chatter keeps about a fan. HANDOFF notes are
// meant for the next shift and expire quickly.
type ChatterMemory struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	ChatterID uint       `json:"chatter_id" gorm:"not null;index:idx_memory_chatter_fan,priority:1"`
	FanID     uint       `json:"fan_id" gorm:"not null;index:idx_memory_chatter_fan,priority:2"`
	Kind      MemoryKind `json:"kind" gorm:"type:varchar(8);not null;index"`
	Note      string     `json:"note" gorm:"type:text;not null"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
}

type SendMessageRequest struct {
	FanID        uint   `json:"fan_id"`
	Body         string `json:"body" validate:"required,max=4000"`
	MediaID      *uint  `json:"media_id"`
	PriceCredits int64  `json:"price_credits" validate:"gte=0"`
}

type ScheduleBumpRequest struct {
	FanID   uint      `json:"fan_id" validate:"required"`
	MediaID *uint     `json:"media_id"`
	Body    string    `json:"body" validate:"required,max=4000"`
	SendAt  time.Time `json:"send_at" validate:"required"`
}

type CreateCampaignRequest struct {
	Name         string    `json:"name" validate:"required,max=120"`
	Body         string    `json:"body" validate:"required,max=4000"`
	MediaID      *uint     `json:"media_id"`
	InactiveDays int       `json:"inactive_days" validate:"gte=1,lte=365"`
	ScheduledAt  time.Time `json:"scheduled_at" validate:"required"`
}

type CreateMemoryRequest struct {
	FanID uint       `json:"fan_id" validate:"required"`
	Kind  MemoryKind `json:"kind" validate:"required,oneof=MEMORY HANDOFF"`
	Note  string     `json:"note" validate:"required,max=2000"`
}

type SweepResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

type CleanupResult struct {
	Handoffs int64 `json:"handoffs"`
	Memories int64 `json:"memories"`
}

type FanMessageRequest struct {
	Body string `json:"body" validate:"required,max=4000"`
}
