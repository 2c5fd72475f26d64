package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BillingInterval string

const (
	IntervalMonth   BillingInterval = "MONTH"
	IntervalQuarter BillingInterval = "QUARTER"
	IntervalYear    BillingInterval = "YEAR"
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
	SubscriptionTrialing SubscriptionStatus = "TRIALING"
	SubscriptionCanceled SubscriptionStatus = "CANCELED"
)

type SubscriptionPlan struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	CreatorID          uint            `json:"creator_id" gorm:"not null;index"`
	Name               string          `json:"name" gorm:"not null"`
	Price              decimal.Decimal `json:"price" gorm:"type:numeric(14,2);not null"`
	Currency           string          `json:"currency" gorm:"size:8;not null;default:'USD'"`
	Interval           BillingInterval `json:"interval" gorm:"type:varchar(8);not null;default:'MONTH'"`
	TrialDays          int             `json:"trial_days" gorm:"not null;default:0"`
	RecurringCredits   int64           `json:"recurring_credits" gorm:"not null;default:0"`
	CreditIntervalDays int             `json:"credit_interval_days" gorm:"not null;default:30"`
	IsActive           bool            `json:"is_active" gorm:"default:true"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// Subscription is the single "current access" row for a fan and a creator.
// Renewals and cancellations mutate it in place.
type Subscription struct {
	ID                 uint               `json:"id" gorm:"primaryKey"`
	UserID             uint               `json:"user_id" gorm:"not null;uniqueIndex:idx_subscription_user_creator,priority:1"`
	CreatorID          uint               `json:"creator_id" gorm:"not null;uniqueIndex:idx_subscription_user_creator,priority:2"`
	PlanID             uint               `json:"plan_id" gorm:"not null"`
	Plan               *SubscriptionPlan  `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
	Status             SubscriptionStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	Interval           BillingInterval    `json:"interval" gorm:"type:varchar(8);not null"`
	CurrentPeriodStart time.Time          `json:"current_period_start"`
	CurrentPeriodEnd   time.Time          `json:"current_period_end"`
	LastCreditGrantAt  *time.Time         `json:"last_credit_grant_at,omitempty"`
	CanceledAt         *time.Time         `json:"canceled_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

func (s *Subscription) IsLive(now time.Time) bool {
	if s.Status == SubscriptionCanceled {
		return false
	}
	return now.Before(s.CurrentPeriodEnd)
}

// NextPeriod returns the billing window that starts at from. A period that is
// still running is extended from its end instead.
func NextPeriod(interval BillingInterval, currentEnd, from time.Time) (time.Time, time.Time) {
	start := from
	if currentEnd.After(from) {
		start = currentEnd
	}
	switch interval {
	case IntervalQuarter:
		return start, start.AddDate(0, 3, 0)
	case IntervalYear:
		return start, start.AddDate(1, 0, 0)
	default:
		return start, start.AddDate(0, 1, 0)
	}
}

type SubscribeRequest struct {
	PlanID   uint            `json:"plan_id" validate:"required"`
	Provider PaymentProvider `json:"provider" validate:"required,oneof=STRIPE CHANGEHERO GUARDARIAN MIDTRANS PAYGATE MANUAL"`
}
