package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sefazor/fanvault-backend/internal/models"
)

type MessageService struct {
	messages MessageStore
	creators CreatorStore
	now      func() time.Time
}

func NewMessageService(messages MessageStore, creators CreatorStore) *MessageService {
	return &MessageService{messages: messages, creators: creators, now: time.Now}
}

// FanSend posts a fan's message into their thread with the creator.
func (s *MessageService) FanSend(ctx context.Context, userID uint, slug, body string) (*models.Message, error) {
	creator, err := s.creators.GetBySlug(ctx, strings.ToLower(slug))
	if err != nil {
		return nil, notFound(err)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrBadInput
	}

	msg := &models.Message{CreatorID: creator.ID, FanID: userID, SenderID: userID, Body: body}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// CreatorSend is used by the creator or one of the agency's chatters.
func (s *MessageService) CreatorSend(ctx context.Context, actor models.Actor, creatorID uint, req models.SendMessageRequest) (*models.Message, error) {
	creator, err := s.creators.GetByID(ctx, creatorID)
	if err != nil {
		return nil, notFound(err)
	}
	if _, ok := canActFor(ctx, s.creators, actor, creator); !ok {
		return nil, ErrForbidden
	}
	if req.FanID == 0 {
		return nil, fmt.Errorf("%w: fan_id is required", ErrBadInput)
	}
	if req.PriceCredits > 0 && req.MediaID == nil {
		return nil, fmt.Errorf("%w: priced messages need media", ErrBadInput)
	}

	msg := &models.Message{
		CreatorID:    creator.ID,
		FanID:        req.FanID,
		SenderID:     actor.UserID,
		Body:         strings.TrimSpace(req.Body),
		MediaID:      req.MediaID,
		PriceCredits: req.PriceCredits,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *MessageService) Thread(ctx context.Context, actor models.Actor, creatorID, fanID uint, limit, offset int) ([]models.Message, error) {
	creator, err := s.creators.GetByID(ctx, creatorID)
	if err != nil {
		return nil, notFound(err)
	}
	if actor.UserID != fanID {
		if _, ok := canActFor(ctx, s.creators, actor, creator); !ok {
			return nil, ErrForbidden
		}
	}
	return s.messages.Thread(ctx, creator.ID, fanID, clampLimit(limit), max(offset, 0))
}

func (s *MessageService) ScheduleBump(ctx context.Context, actor models.Actor, creatorID uint, req models.ScheduleBumpRequest) (*models.BumpMessage, error) {
	creator, err := s.creators.GetByID(ctx, creatorID)
	if err != nil {
		return nil, notFound(err)
	}
	if _, ok := canActFor(ctx, s.creators, actor, creator); !ok {
		return nil, ErrForbidden
	}
	if req.SendAt.Before(s.now().Add(-time.Minute)) {
		return nil, fmt.Errorf("%w: send_at is in the past", ErrBadInput)
	}

	bump := &models.BumpMessage{
		CreatorID: creator.ID,
		FanID:     req.FanID,
		MediaID:   req.MediaID,
		Body:      strings.TrimSpace(req.Body),
		SendAt:    req.SendAt,
		Status:    models.BumpPending,
	}
	if err := s.messages.CreateBump(ctx, bump); err != nil {
		return nil, err
	}
	return bump, nil
}

func (s *MessageService) CreateCampaign(ctx context.Context, actor models.Actor, creatorID uint, req models.CreateCampaignRequest) (*models.RetargetingCampaign, error) {
	creator, err := s.creators.GetByID(ctx, creatorID)
	if err != nil {
		return nil, notFound(err)
	}
	if _, ok := canActFor(ctx, s.creators, actor, creator); !ok {
		return nil, ErrForbidden
	}

	days := req.InactiveDays
	if days == 0 {
		days = 14
	}
	c := &models.RetargetingCampaign{
		CreatorID:    creator.ID,
		Name:         strings.TrimSpace(req.Name),
		Body:         strings.TrimSpace(req.Body),
		MediaID:      req.MediaID,
		InactiveDays: days,
		Status:       models.CampaignScheduled,
		ScheduledAt:  req.ScheduledAt,
	}
	if err := s.messages.CreateCampaign(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *MessageService) AddMemory(ctx context.Context, userID uint, req models.CreateMemoryRequest) (*models.ChatterMemory, error) {
	chatter, err := s.creators.GetChatterByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	m := &models.ChatterMemory{
		ChatterID: chatter.ID,
		FanID:     req.FanID,
		Kind:      req.Kind,
		Note:      strings.TrimSpace(req.Note),
	}
	if err := s.messages.CreateMemory(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MessageService) Memories(ctx context.Context, userID, fanID uint) ([]models.ChatterMemory, error) {
	chatter, err := s.creators.GetChatterByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return s.messages.Memories(ctx, chatter.ID, fanID, 50)
}
