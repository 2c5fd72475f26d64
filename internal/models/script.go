package models

import (
	"time"

	"gorm.io/datatypes"
)

type FanStage string

const (
	StageNew     FanStage = "NEW"
	StageEngaged FanStage = "ENGAGED"
	StageBuyer   FanStage = "BUYER"
	StageWhale   FanStage = "WHALE"
	StageAny     FanStage = "ANY"
)

type Intent string

const (
	IntentNone      Intent = ""
	IntentPurchase  Intent = "purchase"
	IntentGreeting  Intent = "greeting"
	IntentObjection Intent = "objection"
	IntentPrice     Intent = "price"
	IntentFarewell  Intent = "farewell"
)

type Script struct {
	ID         uint                        `json:"id" gorm:"primaryKey"`
	AgencyID   uint                        `json:"agency_id" gorm:"not null;index"`
	Title      string                      `json:"title" gorm:"not null"`
	Body       string                      `json:"body" gorm:"type:text;not null"`
	Keywords   datatypes.JSONSlice[string] `json:"keywords"`
	Intent     Intent                      `json:"intent" gorm:"type:varchar(16)"`
	FanStage   FanStage                    `json:"fan_stage" gorm:"type:varchar(8);not null;default:'ANY'"`
	MinCredits int64                       `json:"min_credits" gorm:"not null;default:0"`
	Language   string                      `json:"language" gorm:"size:8;not null;default:'en'"`
	IsActive   bool                        `json:"is_active" gorm:"default:true"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}

type ConversationContext struct {
	Message  string   `json:"message" validate:"required,max=4000"`
	FanStage FanStage `json:"fan_stage" validate:"omitempty,oneof=NEW ENGAGED BUYER WHALE"`
	Credits  int64    `json:"credits" validate:"gte=0"`
	Language string   `json:"language" validate:"omitempty,max=8"`
}

type ScriptMatch struct {
	Script     Script  `json:"script"`
	Confidence float64 `json:"confidence"`
	Intent     Intent  `json:"intent"`
}

type SuggestRequest struct {
	FanID   uint                `json:"fan_id" validate:"required"`
	Context ConversationContext `json:"context"`
}

type SuggestionSource string

const (
	SuggestionScript   SuggestionSource = "script"
	SuggestionAI       SuggestionSource = "ai"
	SuggestionFallback SuggestionSource = "fallback"
)

type Suggestion struct {
	Reply      string           `json:"reply"`
	Source     SuggestionSource `json:"source"`
	Confidence float64          `json:"confidence"`
	ScriptID   *uint            `json:"script_id,omitempty"`
	Intent     Intent           `json:"intent"`
}

type CreateScriptRequest struct {
	Title      string   `json:"title" validate:"required,max=120"`
	Body       string   `json:"body" validate:"required,max=4000"`
	Keywords   []string `json:"keywords" validate:"max=30,dive,min=1,max=40"`
	Intent     Intent   `json:"intent" validate:"omitempty,oneof=purchase greeting objection price farewell"`
	FanStage   FanStage `json:"fan_stage" validate:"omitempty,oneof=NEW ENGAGED BUYER WHALE ANY"`
	MinCredits int64    `json:"min_credits" validate:"gte=0"`
	Language   string   `json:"language" validate:"omitempty,max=8"`
}
