package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sefazor/fanvault-backend/internal/metrics"
	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/sefazor/fanvault-backend/internal/repository"
	"go.uber.org/zap"
)

const (
	expireBatchSize    = 100
	recurringBatchSize = 100
)

type CreditService struct {
	credits  CreditStore
	packages PackageStore
	log      *zap.Logger
	now      func() time.Time
}

func NewCreditService(credits CreditStore, packages PackageStore, log *zap.Logger) *CreditService {
	return &CreditService{credits: credits, packages: packages, log: log, now: time.Now}
}

func (s *CreditService) GetCreditBalances(ctx context.Context, userID uint) (models.CreditBalances, error) {
	b, err := s.credits.Balances(ctx, userID)
	return b, notFound(err)
}

func (s *CreditService) History(ctx context.Context, userID uint, limit, offset int) ([]models.CreditTransaction, error) {
	return s.credits.History(ctx, userID, clampLimit(limit), max(offset, 0))
}

func (s *CreditService) Packages(ctx context.Context) ([]models.CreditPackage, error) {
	return s.packages.GetAll(ctx)
}

func (s *CreditService) Spend(ctx context.Context, userID uint, amount int64, reference string) (models.SpendResult, error) {
	if amount <= 0 {
		return models.SpendResult{}, ErrBadInput
	}
	res, err := s.credits.Spend(ctx, userID, amount, reference, s.now())
	if err != nil {
		return res, err
	}
	metrics.RecordCredits(string(models.CreditTxSpend), amount)
	return res, nil
}

// ExpireCredits zeroes every grant past its expiry. Users are processed
// one transaction each; a failing user is logged and left for the next run.
func (s *CreditService) ExpireCredits(ctx context.Context) (models.ExpireResult, error) {
	now := s.now()
	var result models.ExpireResult
	var cursor uint

	for {
		users, err := s.credits.UsersWithExpiredCredits(ctx, now, cursor, expireBatchSize)
		if err != nil {
			return result, fmt.Errorf("list expired credits: %w", err)
		}

		for _, userID := range users {
			cursor = userID
			expired, err := s.credits.ExpireUser(ctx, userID, now)
			if err != nil {
				s.log.Error("credit expiry failed", zap.Uint("user_id", userID), zap.Error(err))
				continue
			}
			if expired > 0 {
				result.Users++
				result.Credits += expired
			}
		}

		if len(users) < expireBatchSize {
			break
		}
	}

	metrics.RecordCredits(string(models.CreditTxExpire), result.Credits)
	if result.Users > 0 {
		s.log.Info("credits expired", zap.Int("users", result.Users), zap.Int64("credits", result.Credits))
	}
	return result, nil
}

// GrantRecurringCredits hands out plan credits to live subscriptions whose
// last grant is at least one credit interval old.
func (s *CreditService) GrantRecurringCredits(ctx context.Context) (models.RecurringResult, error) {
	now := s.now()
	var result models.RecurringResult

	subs, err := s.credits.DueRecurringGrants(ctx, now, recurringBatchSize)
	if err != nil {
		return result, fmt.Errorf("list recurring grants: %w", err)
	}

	for _, sub := range subs {
		if sub.Plan == nil || sub.Plan.RecurringCredits <= 0 {
			continue
		}

		days := sub.Plan.CreditIntervalDays
		if days <= 0 {
			days = 30
		}
		interval := time.Duration(days) * 24 * time.Hour
		expires := now.Add(interval)

		granted, err := s.credits.GrantRecurring(ctx, sub.ID, repository.GrantParams{
			Amount:     sub.Plan.RecurringCredits,
			Type:       models.CreditTxRecurring,
			CreditType: models.CreditBonus,
			ExpiresAt:  &expires,
			Reference:  fmt.Sprintf("subscription:%d", sub.ID),
		}, interval, now)
		if err != nil {
			s.log.Error("recurring grant failed", zap.Uint("subscription_id", sub.ID), zap.Error(err))
			continue
		}
		if granted {
			result.Subscriptions++
			result.Credits += sub.Plan.RecurringCredits
		}
	}

	metrics.RecordCredits(string(models.CreditTxRecurring), result.Credits)
	if result.Subscriptions > 0 {
		s.log.Info("recurring credits granted", zap.Int("subscriptions", result.Subscriptions), zap.Int64("credits", result.Credits))
	}
	return result, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	return min(limit, 100)
}
