package service

import (
	"context"
	"strings"

	"github.com/sefazor/fanvault-backend/internal/models"
)

type UserService struct {
	users    UserStore
	payments PaymentStore
	credits  CreditStore
}

func NewUserService(users UserStore, payments PaymentStore, credits CreditStore) *UserService {
	return &UserService{users: users, payments: payments, credits: credits}
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	return user, notFound(err)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, fullName string) (*models.User, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, ErrBadInput
	}
	if err := s.users.UpdateProfile(ctx, userID, fullName); err != nil {
		return nil, notFound(err)
	}
	return s.GetProfile(ctx, userID)
}

func (s *UserService) Stats(ctx context.Context, userID uint) (*models.UserStats, error) {
	stats, err := s.users.Stats(ctx, userID)
	return stats, notFound(err)
}

// Billing lists the user's payment attempts, newest first.
func (s *UserService) Billing(ctx context.Context, userID uint, limit, offset int) ([]models.Payment, error) {
	return s.payments.ListByUser(ctx, userID, clampLimit(limit), max(offset, 0))
}

// SetRole is an admin operation.
func (s *UserService) SetRole(ctx context.Context, actor models.Actor, userID uint, role models.Role) error {
	if !Authorize(actor, ActionAdmin, Resource{}) {
		return ErrForbidden
	}
	switch role {
	case models.RoleUser, models.RoleAdmin, models.RoleChatter:
	default:
		return ErrBadInput
	}
	return notFound(s.users.SetRole(ctx, userID, role))
}
