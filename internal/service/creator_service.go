package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/sefazor/fanvault-backend/pkg/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreatorService struct {
	creators   CreatorStore
	subs       SubscriptionStore
	commission *CommissionService
}

func NewCreatorService(creators CreatorStore, subs SubscriptionStore, commission *CommissionService) *CreatorService {
	return &CreatorService{creators: creators, subs: subs, commission: commission}
}

func (s *CreatorService) BecomeCreator(ctx context.Context, userID uint, req models.CreateCreatorRequest) (*models.Creator, error) {
	if _, err := s.creators.GetByUserID(ctx, userID); err == nil {
		return nil, fmt.Errorf("%w: user already has a creator profile", ErrBadInput)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	slug := utils.Slugify(req.Slug)
	taken, err := s.creators.SlugExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if taken || slug == "" {
		return nil, fmt.Errorf("%w: slug is not available", ErrBadInput)
	}

	creator := &models.Creator{
		UserID:         userID,
		Slug:           slug,
		DisplayName:    strings.TrimSpace(req.DisplayName),
		Bio:            req.Bio,
		PendingBalance: decimal.Zero,
		TotalEarned:    decimal.Zero,
		TotalPaid:      decimal.Zero,
	}
	if err := s.creators.Create(ctx, creator); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: slug is not available", ErrBadInput)
		}
		return nil, err
	}
	return creator, nil
}

func (s *CreatorService) GetBySlug(ctx context.Context, slug string) (*models.Creator, error) {
	creator, err := s.creators.GetBySlug(ctx, strings.ToLower(slug))
	return creator, notFound(err)
}

func (s *CreatorService) Mine(ctx context.Context, userID uint) (*models.Creator, error) {
	creator, err := s.creators.GetByUserID(ctx, userID)
	return creator, notFound(err)
}

func (s *CreatorService) CommissionRate(ctx context.Context, slug string) (decimal.Decimal, error) {
	return s.commission.GetCreatorCommissionRate(ctx, strings.ToLower(slug))
}

func (s *CreatorService) CreatePlan(ctx context.Context, userID uint, req models.CreatePlanRequest) (*models.SubscriptionPlan, error) {
	creator, err := s.creators.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	if !req.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive", ErrBadInput)
	}

	interval := req.CreditIntervalDays
	if interval == 0 {
		interval = 30
	}
	plan := &models.SubscriptionPlan{
		CreatorID:          creator.ID,
		Name:               strings.TrimSpace(req.Name),
		Price:              req.Price.Round(2),
		Currency:           "USD",
		Interval:           req.Interval,
		TrialDays:          req.TrialDays,
		RecurringCredits:   req.RecurringCredits,
		CreditIntervalDays: interval,
		IsActive:           true,
	}
	if err := s.subs.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *CreatorService) Plans(ctx context.Context, slug string) ([]models.SubscriptionPlan, error) {
	creator, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.subs.PlansByCreator(ctx, creator.ID)
}

func (s *CreatorService) Earnings(ctx context.Context, userID uint, limit, offset int) ([]models.CreatorEarning, error) {
	creator, err := s.creators.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return s.creators.CreatorEarnings(ctx, creator.ID, clampLimit(limit), max(offset, 0))
}

func (s *CreatorService) Agency(ctx context.Context, userID uint) (*models.Agency, []models.Creator, error) {
	agency, err := s.creators.GetAgencyByOwner(ctx, userID)
	if err != nil {
		return nil, nil, notFound(err)
	}
	creators, err := s.creators.AgencyCreators(ctx, agency.ID)
	if err != nil {
		return nil, nil, err
	}
	return agency, creators, nil
}

// canActFor reports whether actor may operate the creator's inbox: the
// creator, a chatter of the creator's agency, or an admin.
func canActFor(ctx context.Context, creators CreatorStore, actor models.Actor, creator *models.Creator) (*models.Chatter, bool) {
	if Authorize(actor, ActionManageCreator, Resource{OwnerID: creator.UserID}) {
		return nil, true
	}
	if !Authorize(actor, ActionChatterWork, Resource{}) || creator.AgencyID == nil {
		return nil, false
	}
	chatter, err := creators.GetChatterByUserID(ctx, actor.UserID)
	if err != nil || chatter.AgencyID != *creator.AgencyID {
		return nil, false
	}
	return chatter, true
}
