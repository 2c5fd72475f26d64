package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/sefazor/fanvault-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreditService_Spend_RejectsNonPositive(t *testing.T) {
	store := &mockCreditStore{}
	svc := NewCreditService(store, nil, zap.NewNop())

	_, err := svc.Spend(context.Background(), 1, 0, "test")
	assert.ErrorIs(t, err, ErrBadInput)
	store.AssertNotCalled(t, "Spend")
}

func TestCreditService_ExpireCredits(t *testing.T) {
	store := &mockCreditStore{}
	svc := NewCreditService(store, nil, zap.NewNop())
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	store.On("UsersWithExpiredCredits", ctx, now, uint(0), expireBatchSize).Return([]uint{1, 2}, nil).Once()
	store.On("ExpireUser", ctx, uint(1), now).Return(int64(40), nil).Once()
	store.On("ExpireUser", ctx, uint(2), now).Return(int64(10), nil).Once()

	res, err := svc.ExpireCredits(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ExpireResult{Users: 2, Credits: 50}, res)

	// A second run finds nothing left to expire.
	store.On("UsersWithExpiredCredits", ctx, now, uint(0), expireBatchSize).Return([]uint{}, nil).Once()
	res, err = svc.ExpireCredits(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Users)
	store.AssertExpectations(t)
}

func TestCreditService_ExpireCredits_SkipsFailingUser(t *testing.T) {
	store := &mockCreditStore{}
	svc := NewCreditService(store, nil, zap.NewNop())
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	// Two full batches of users whose expiry keeps failing, then one
	// healthy user on the third page.
	first := make([]uint, expireBatchSize)
	second := make([]uint, expireBatchSize)
	for i := range first {
		first[i] = uint(i + 1)
		second[i] = uint(expireBatchSize + i + 1)
	}
	healthy := uint(2*expireBatchSize + 1)

	store.On("UsersWithExpiredCredits", ctx, now, uint(0), expireBatchSize).Return(first, nil).Once()
	store.On("UsersWithExpiredCredits", ctx, now, uint(expireBatchSize), expireBatchSize).Return(second, nil).Once()
	store.On("UsersWithExpiredCredits", ctx, now, uint(2*expireBatchSize), expireBatchSize).Return([]uint{healthy}, nil).Once()
	store.On("ExpireUser", ctx, healthy, now).Return(int64(30), nil).Once()
	store.On("ExpireUser", ctx, mock.AnythingOfType("uint"), now).Return(int64(0), errors.New("deadlock"))

	res, err := svc.ExpireCredits(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ExpireResult{Users: 1, Credits: 30}, res)
	store.AssertNumberOfCalls(t, "UsersWithExpiredCredits", 3)
	store.AssertNumberOfCalls(t, "ExpireUser", 2*expireBatchSize+1)
}

func TestCreditService_GrantRecurringCredits(t *testing.T) {
	store := &mockCreditStore{}
	svc := NewCreditService(store, nil, zap.NewNop())
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	subs := []models.Subscription{
		{ID: 7, Plan: &models.SubscriptionPlan{RecurringCredits: 50}},
		{ID: 8, Plan: &models.SubscriptionPlan{RecurringCredits: 0}},
		{ID: 9, Plan: &models.SubscriptionPlan{RecurringCredits: 20, CreditIntervalDays: 7}},
	}
	store.On("DueRecurringGrants", ctx, now, recurringBatchSize).Return(subs, nil)

	month := 30 * 24 * time.Hour
	store.On("GrantRecurring", ctx, uint(7), mock.MatchedBy(func(g repository.GrantParams) bool {
		return g.Amount == 50 && g.Type == models.CreditTxRecurring && g.CreditType == models.CreditBonus &&
			g.Reference == "subscription:7" && g.ExpiresAt != nil && g.ExpiresAt.Equal(now.Add(month))
	}), month, now).Return(true, nil)
	store.On("GrantRecurring", ctx, uint(9), mock.Anything, 7*24*time.Hour, now).Return(false, nil)

	res, err := svc.GrantRecurringCredits(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RecurringResult{Subscriptions: 1, Credits: 50}, res)
	store.AssertExpectations(t)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, clampLimit(0))
	assert.Equal(t, 20, clampLimit(-3))
	assert.Equal(t, 50, clampLimit(50))
	assert.Equal(t, 100, clampLimit(500))
}
