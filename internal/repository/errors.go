package repository

import "errors"

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrAlreadyUnlocked     = errors.New("media already unlocked")
	ErrPayoutAlreadyPaid   = errors.New("payout already paid")
	ErrPayoutPending       = errors.New("a payout request is already pending")
	ErrBalanceExceeded     = errors.New("amount exceeds pending balance")
)
