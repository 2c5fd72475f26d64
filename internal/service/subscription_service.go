package service

import (
	"context"
	"errors"
	"time"

	"github.com/sefazor/fanvault-backend/internal/models"
	"gorm.io/gorm"
)

type SubscriptionService struct {
	subs     SubscriptionStore
	payments *PaymentService
	now      func() time.Time
}

func NewSubscriptionService(subs SubscriptionStore, payments *PaymentService) *SubscriptionService {
	return &SubscriptionService{subs: subs, payments: payments, now: time.Now}
}

// Subscribe opens a checkout; the subscription row is written when the
// payment completes.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID uint, req models.SubscribeRequest) (*models.CheckoutSession, error) {
	return s.payments.CreateCheckout(ctx, userID, models.CheckoutRequest{
		Provider: req.Provider,
		Type:     models.PaymentSubscription,
		PlanID:   req.PlanID,
	})
}

func (s *SubscriptionService) Cancel(ctx context.Context, actor models.Actor, id uint) (*models.Subscription, error) {
	sub, err := s.subs.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !Authorize(actor, ActionOwnResource, Resource{OwnerID: sub.UserID}) {
		return nil, ErrForbidden
	}

	changed, err := s.subs.Cancel(ctx, id, s.now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrBadInput
	}
	sub, err = s.subs.GetByID(ctx, id)
	return sub, notFound(err)
}

func (s *SubscriptionService) Mine(ctx context.Context, userID uint) ([]models.Subscription, error) {
	return s.subs.ListByUser(ctx, userID)
}

// IsSubscribed is true while the fan's row is ACTIVE or TRIALING and inside
// its period.
func (s *SubscriptionService) IsSubscribed(ctx context.Context, userID, creatorID uint) (bool, error) {
	sub, err := s.subs.GetByUserCreator(ctx, userID, creatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return sub.IsLive(s.now()), nil
}
