package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreditTxType string

const (
	CreditTxPurchase  CreditTxType = "PURCHASE"
	CreditTxSpend     CreditTxType = "SPEND"
	CreditTxExpire    CreditTxType = "EXPIRE"
	CreditTxBonus     CreditTxType = "BONUS"
	CreditTxRecurring CreditTxType = "RECURRING"
	CreditTxRefund    CreditTxType = "REFUND"
)

type CreditType string

const (
	CreditPaid  CreditType = "PAID"
	CreditBonus CreditType = "BONUS"
)

type CreditPackage struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	Name         string          `json:"name" gorm:"unique;not null"`
	Description  string          `json:"description"`
	Credits      int64           `json:"credits" gorm:"not null"`
	BonusCredits int64           `json:"bonus_credits" gorm:"not null;default:0"`
	Price        decimal.Decimal `json:"price" gorm:"type:numeric(14,2);not null"`
	IsActive     bool            `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreditTransaction rows are append-only. Remaining is the unspent part of a
// positive grant and is the only column that changes after insert.
type CreditTransaction struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	UserID       uint         `json:"user_id" gorm:"not null;index:idx_credit_tx_user_expiry,priority:1"`
	Amount       int64        `json:"amount" gorm:"not null"`
	BalanceAfter int64        `json:"balance_after" gorm:"not null"`
	Type         CreditTxType `json:"type" gorm:"type:varchar(16);not null"`
	CreditType   CreditType   `json:"credit_type" gorm:"type:varchar(8);not null"`
	Remaining    int64        `json:"remaining" gorm:"not null;default:0"`
	ExpiresAt    *time.Time   `json:"expires_at,omitempty" gorm:"index:idx_credit_tx_user_expiry,priority:2"`
	Reference    string       `json:"reference,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

type CreditBalances struct {
	Paid  int64 `json:"paid"`
	Bonus int64 `json:"bonus"`
	Total int64 `json:"total"`
}

// SpendResult reports how a spend was split across credit types.
type SpendResult struct {
	Paid         int64 `json:"paid"`
	Bonus        int64 `json:"bonus"`
	BalanceAfter int64 `json:"balance_after"`
}

func (s SpendResult) Total() int64 {
	return s.Paid + s.Bonus
}

type ExpireResult struct {
	Users   int   `json:"users"`
	Credits int64 `json:"credits"`
}

type RecurringResult struct {
	Subscriptions int   `json:"subscriptions"`
	Credits       int64 `json:"credits"`
}

type CreditSweepResult struct {
	Expired   ExpireResult    `json:"expired"`
	Recurring RecurringResult `json:"recurring"`
}
