package models

import (
	"time"
)

type Role string

const (
	RoleUser    Role = "USER"
	RoleAdmin   Role = "ADMIN"
	RoleChatter Role = "CHATTER"
)

type User struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	FullName      string    `json:"full_name" gorm:"not null"`
	Email         string    `json:"email" gorm:"unique;not null"`
	Password      string    `json:"-" gorm:"not null"`
	Role          Role      `json:"role" gorm:"type:varchar(16);not null;default:'USER'"`
	PaidCredits   int64     `json:"paid_credits" gorm:"not null;default:0"`
	BonusCredits  int64     `json:"bonus_credits" gorm:"not null;default:0"`
	CreditBalance int64     `json:"credit_balance" gorm:"not null;default:0"`
	IsCreator     bool      `json:"is_creator" gorm:"not null;default:false"`
	IsVerified    bool      `json:"is_verified" gorm:"not null;default:false"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Actor is the authenticated caller as seen by the authorization policy.
type Actor struct {
	UserID uint
	Role   Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type UserStats struct {
	CreditBalance      int64 `json:"credit_balance"`
	ActiveSubscription int64 `json:"active_subscriptions"`
	UnlockedMedia      int64 `json:"unlocked_media"`
	TotalPayments      int64 `json:"total_payments"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"required,max=120"`
}

type SetRoleRequest struct {
	Role Role `json:"role" validate:"required,oneof=USER ADMIN CHATTER"`
}
