package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sefazor/fanvault-backend/internal/metrics"
	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/sefazor/fanvault-backend/pkg/lock"
	"go.uber.org/zap"
)

const (
	bumpBatchSize      = 50
	campaignBatchSize  = 10
	recipientBatchSize = 100

	handoffRetention = 7 * 24 * time.Hour
	memoryRetention  = 90 * 24 * time.Hour
)

type CronService struct {
	credits  *CreditService
	messages MessageStore
	creators CreatorStore
	locker   Locker
	lockTTL  time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewCronService(credits *CreditService, messages MessageStore, creators CreatorStore, locker Locker, lockTTL time.Duration, log *zap.Logger) *CronService {
	return &CronService{
		credits:  credits,
		messages: messages,
		creators: creators,
		locker:   locker,
		lockTTL:  lockTTL,
		log:      log,
		now:      time.Now,
	}
}

// exclusive runs fn while holding the sweep's lock.
func (s *CronService) exclusive(ctx context.Context, sweep string, fn func() error) error {
	release, err := s.locker.Obtain(ctx, "cron:"+sweep, s.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotObtained) {
			return ErrSweepLocked
		}
		return fmt.Errorf("obtain %s lock: %w", sweep, err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("release sweep lock", zap.String("sweep", sweep), zap.Error(err))
		}
	}()
	return fn()
}

func (s *CronService) RunCredits(ctx context.Context) (models.CreditSweepResult, error) {
	var result models.CreditSweepResult
	start := time.Now()

	err := s.exclusive(ctx, "credits", func() error {
		var err error
		if result.Expired, err = s.credits.ExpireCredits(ctx); err != nil {
			return err
		}
		result.Recurring, err = s.credits.GrantRecurringCredits(ctx)
		return err
	})

	metrics.RecordSweep("credits", time.Since(start).Seconds(), result.Expired.Users+result.Recurring.Subscriptions, 0)
	return result, err
}

// ProcessBumps delivers due PPV reminders. A fan who already bought the
// attached media is skipped.
func (s *CronService) ProcessBumps(ctx context.Context) (models.SweepResult, error) {
	var result models.SweepResult
	start := time.Now()

	err := s.exclusive(ctx, "bumps", func() error {
		now := s.now()
		bumps, err := s.messages.DueBumps(ctx, now, bumpBatchSize)
		if err != nil {
			return fmt.Errorf("list due bumps: %w", err)
		}

		senders := map[uint]uint{}
		for i := range bumps {
			bump := &bumps[i]
			result.Processed++

			if bump.MediaID != nil {
				bought, err := s.messages.HasPurchased(ctx, bump.FanID, *bump.MediaID)
				if err != nil {
					result.Failed++
					s.log.Error("bump purchase check failed", zap.Uint("bump_id", bump.ID), zap.Error(err))
					continue
				}
				if bought {
					if err := s.messages.SetBumpStatus(ctx, bump.ID, models.BumpSkipped); err != nil {
						result.Failed++
						s.log.Error("skip bump failed", zap.Uint("bump_id", bump.ID), zap.Error(err))
						continue
					}
					result.Skipped++
					continue
				}
			}

			sender, err := s.senderFor(ctx, senders, bump.CreatorID)
			if err != nil {
				result.Failed++
				s.log.Error("bump sender lookup failed", zap.Uint("bump_id", bump.ID), zap.Error(err))
				if err := s.messages.SetBumpStatus(ctx, bump.ID, models.BumpFailed); err != nil {
					s.log.Error("mark bump failed", zap.Uint("bump_id", bump.ID), zap.Error(err))
				}
				continue
			}

			sent, err := s.messages.DeliverBump(ctx, bump, sender, now)
			if err != nil {
				result.Failed++
				s.log.Error("deliver bump failed", zap.Uint("bump_id", bump.ID), zap.Error(err))
				continue
			}
			if sent {
				result.Sent++
			}
		}
		return nil
	})

	metrics.RecordSweep("bumps", time.Since(start).Seconds(), result.Processed, result.Failed)
	return result, err
}

// ProcessRetargeting sends due campaigns in slices of recipients. A
// campaign is completed once no eligible fan is left.
func (s *CronService) ProcessRetargeting(ctx context.Context) (models.SweepResult, error) {
	var result models.SweepResult
	start := time.Now()

	err := s.exclusive(ctx, "retargeting", func() error {
		now := s.now()
		campaigns, err := s.messages.DueCampaigns(ctx, now, campaignBatchSize)
		if err != nil {
			return fmt.Errorf("list due campaigns: %w", err)
		}

		senders := map[uint]uint{}
		for i := range campaigns {
			c := &campaigns[i]
			result.Processed++
			log := s.log.With(zap.Uint("campaign_id", c.ID))

			if c.Status == models.CampaignScheduled {
				if err := s.messages.MarkCampaignSending(ctx, c.ID); err != nil {
					result.Failed++
					log.Error("mark campaign sending failed", zap.Error(err))
					continue
				}
			}

			sender, err := s.senderFor(ctx, senders, c.CreatorID)
			if err != nil {
				result.Failed++
				log.Error("campaign sender lookup failed", zap.Error(err))
				continue
			}

			fans, err := s.messages.CampaignTargets(ctx, c, now, recipientBatchSize)
			if err != nil {
				result.Failed++
				log.Error("campaign targets failed", zap.Error(err))
				continue
			}

			for _, fanID := range fans {
				sent, err := s.messages.SendCampaignMessage(ctx, c, fanID, sender)
				if err != nil {
					result.Failed++
					log.Error("campaign message failed", zap.Uint("fan_id", fanID), zap.Error(err))
					continue
				}
				if sent {
					result.Sent++
				} else {
					result.Skipped++
				}
			}

			if len(fans) < recipientBatchSize {
				if err := s.messages.CompleteCampaign(ctx, c.ID, now); err != nil {
					log.Error("complete campaign failed", zap.Error(err))
				}
			}
		}
		return nil
	})

	metrics.RecordSweep("retargeting", time.Since(start).Seconds(), result.Processed, result.Failed)
	return result, err
}

func (s *CronService) ExpireFlashSales(ctx context.Context) (int64, error) {
	var expired int64
	start := time.Now()

	err := s.exclusive(ctx, "flash-sales", func() error {
		var err error
		expired, err = s.messages.ExpireFlashSales(ctx, s.now())
		return err
	})

	metrics.RecordSweep("flash-sales", time.Since(start).Seconds(), int(expired), 0)
	return expired, err
}

// Cleanup drops HANDOFF notes after a week and MEMORY notes after 90 days.
func (s *CronService) Cleanup(ctx context.Context) (models.CleanupResult, error) {
	var result models.CleanupResult
	start := time.Now()

	err := s.exclusive(ctx, "cleanup", func() error {
		now := s.now()
		var err error
		if result.Handoffs, err = s.messages.DeleteMemories(ctx, models.MemoryHandoff, now.Add(-handoffRetention)); err != nil {
			return fmt.Errorf("delete handoffs: %w", err)
		}
		if result.Memories, err = s.messages.DeleteMemories(ctx, models.MemoryNote, now.Add(-memoryRetention)); err != nil {
			return fmt.Errorf("delete memories: %w", err)
		}
		return nil
	})

	metrics.RecordSweep("cleanup", time.Since(start).Seconds(), int(result.Handoffs+result.Memories), 0)
	return result, err
}

// senderFor resolves the creator's user id; sweep messages are sent as the
// creator.
func (s *CronService) senderFor(ctx context.Context, cache map[uint]uint, creatorID uint) (uint, error) {
	if id, ok := cache[creatorID]; ok {
		return id, nil
	}
	creator, err := s.creators.GetByID(ctx, creatorID)
	if err != nil {
		return 0, err
	}
	cache[creatorID] = creator.UserID
	return creator.UserID, nil
}
