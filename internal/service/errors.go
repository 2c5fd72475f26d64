package service

import (
	"errors"

	"github.com/sefazor/fanvault-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrBadInput       = errors.New("bad input")
	ErrUserExists     = errors.New("User already exists")
	ErrInvalidLogin   = errors.New("invalid email or password")
	ErrTokenInvalid   = errors.New("invalid or expired token")
	ErrTokenExpired   = errors.New("token expired")
	ErrSweepLocked    = errors.New("sweep already running")
	ErrProviderFailed = errors.New("payment provider error")
	ErrNotSubscribed  = errors.New("subscription required")

	ErrInsufficientCredits = repository.ErrInsufficientCredits
	ErrAlreadyUnlocked     = repository.ErrAlreadyUnlocked
	ErrPayoutAlreadyPaid   = repository.ErrPayoutAlreadyPaid
	ErrPayoutPending       = repository.ErrPayoutPending
	ErrBalanceExceeded     = repository.ErrBalanceExceeded
)

// notFound maps a missing row to ErrNotFound and leaves other errors alone.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
