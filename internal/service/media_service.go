package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sefazor/fanvault-backend/internal/metrics"
	"github.com/sefazor/fanvault-backend/internal/models"
	"go.uber.org/zap"
)

const presignTTL = time.Hour

type MediaService struct {
	media      MediaStore
	creators   CreatorStore
	messages   MessageStore
	subs       *SubscriptionService
	storage    ObjectStorage
	commission *CommissionService
	log        *zap.Logger
	now        func() time.Time
}

func NewMediaService(media MediaStore, creators CreatorStore, messages MessageStore, subs *SubscriptionService, storage ObjectStorage, commission *CommissionService, log *zap.Logger) *MediaService {
	return &MediaService{
		media:      media,
		creators:   creators,
		messages:   messages,
		subs:       subs,
		storage:    storage,
		commission: commission,
		log:        log,
		now:        time.Now,
	}
}

// Upload stores the file under a fresh uuid key and records it. The object
// is removed again when the row cannot be written.
func (s *MediaService) Upload(ctx context.Context, userID uint, req models.UploadMediaRequest, fileName string, size int64, body io.Reader) (*models.Media, error) {
	creator, err := s.creators.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: empty file", ErrBadInput)
	}

	key := fmt.Sprintf("media/%d/%s%s", creator.ID, uuid.NewString(), strings.ToLower(path.Ext(fileName)))
	if err := s.storage.Upload(ctx, key, req.MimeType, body, size); err != nil {
		return nil, fmt.Errorf("upload media: %w", err)
	}

	media := &models.Media{
		CreatorID:    creator.ID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		StorageKey:   key,
		FileName:     fileName,
		MimeType:     req.MimeType,
		FileSize:     size,
		PriceCredits: req.PriceCredits,
		IsActive:     true,
	}
	if err := s.media.Create(ctx, media); err != nil {
		if derr := s.storage.Delete(ctx, key); derr != nil {
			s.log.Error("orphaned media object", zap.String("key", key), zap.Error(derr))
		}
		return nil, err
	}

	s.sign(ctx, media)
	return media, nil
}

func (s *MediaService) sign(ctx context.Context, m *models.Media) {
	url, err := s.storage.PresignGet(ctx, m.StorageKey, presignTTL)
	if err != nil {
		s.log.Warn("presign media failed", zap.Uint("media_id", m.ID), zap.Error(err))
		return
	}
	m.URL = url
}

// canView decides whether viewer gets a URL: owners always, PPV buyers,
// and live subscribers for subscriber-only media.
func (s *MediaService) canView(ctx context.Context, viewerID uint, creator *models.Creator, m *models.Media) (bool, error) {
	if viewerID == 0 {
		return false, nil
	}
	if viewerID == creator.UserID {
		return true, nil
	}
	if m.IsPPV() {
		return s.media.HasPurchase(ctx, viewerID, m.ID)
	}
	return s.subs.IsSubscribed(ctx, viewerID, creator.ID)
}

func (s *MediaService) ListByCreator(ctx context.Context, viewerID uint, slug string, limit, offset int) ([]models.Media, error) {
	creator, err := s.creators.GetBySlug(ctx, strings.ToLower(slug))
	if err != nil {
		return nil, notFound(err)
	}
	items, err := s.media.ListByCreator(ctx, creator.ID, clampLimit(limit), max(offset, 0))
	if err != nil {
		return nil, err
	}

	for i := range items {
		ok, err := s.canView(ctx, viewerID, creator, &items[i])
		if err != nil {
			return nil, err
		}
		if ok {
			s.sign(ctx, &items[i])
		}
	}
	return items, nil
}

func (s *MediaService) Get(ctx context.Context, viewerID, id uint) (*models.Media, error) {
	m, err := s.media.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	creator, err := s.creators.GetByID(ctx, m.CreatorID)
	if err != nil {
		return nil, notFound(err)
	}
	ok, err := s.canView(ctx, viewerID, creator, m)
	if err != nil {
		return nil, err
	}
	if ok {
		s.sign(ctx, m)
	}
	return m, nil
}

// Unlock buys a PPV item with credits. When the fan unlocks from a PPV
// message sent by a chatter, that chatter shares the earnings.
func (s *MediaService) Unlock(ctx context.Context, userID, mediaID uint, messageID *uint) (*models.UnlockResult, *models.Media, error) {
	m, err := s.media.GetByID(ctx, mediaID)
	if err != nil {
		return nil, nil, notFound(err)
	}
	if !m.IsPPV() {
		return nil, nil, fmt.Errorf("%w: media is not pay-per-view", ErrBadInput)
	}
	creator, err := s.creators.GetByID(ctx, m.CreatorID)
	if err != nil {
		return nil, nil, notFound(err)
	}
	if creator.UserID == userID {
		return nil, nil, fmt.Errorf("%w: creators cannot unlock their own media", ErrBadInput)
	}

	now := s.now()
	sale, err := s.media.ActiveFlashSale(ctx, m.ID, now)
	if err != nil {
		return nil, nil, err
	}
	price := sale.Apply(m.PriceCredits)

	var agency *models.Agency
	if creator.AgencyID != nil {
		if agency, err = s.creators.GetAgency(ctx, *creator.AgencyID); err != nil {
			return nil, nil, notFound(err)
		}
	}
	chatter := s.attributedChatter(ctx, userID, creator, m.ID, messageID)

	split := s.commission.Split(s.commission.CreditsToUSD(price), models.SourcePPV, creator, agency, chatter)
	result, err := s.media.Unlock(ctx, userID, m, price, split, now)
	if err != nil {
		return nil, nil, notFound(err)
	}
	metrics.RecordCredits(string(models.CreditTxSpend), price)

	s.sign(ctx, m)
	return result, m, nil
}

// attributedChatter returns the chatter credited for an unlock: the sender
// of a PPV message in this creator's thread with the fan, who must work
// for the agency managing the creator.
func (s *MediaService) attributedChatter(ctx context.Context, fanID uint, creator *models.Creator, mediaID uint, messageID *uint) *models.Chatter {
	if messageID == nil || creator.AgencyID == nil {
		return nil
	}
	msg, err := s.messages.GetByID(ctx, *messageID)
	if err != nil || msg.FanID != fanID || msg.CreatorID != creator.ID || msg.MediaID == nil || *msg.MediaID != mediaID {
		return nil
	}
	chatter, err := s.creators.GetChatterByUserID(ctx, msg.SenderID)
	if err != nil || chatter.AgencyID != *creator.AgencyID {
		return nil
	}
	return chatter
}

func (s *MediaService) Tip(ctx context.Context, userID uint, slug string, req models.TipRequest) (models.SpendResult, error) {
	creator, err := s.creators.GetBySlug(ctx, strings.ToLower(slug))
	if err != nil {
		return models.SpendResult{}, notFound(err)
	}
	if creator.UserID == userID {
		return models.SpendResult{}, fmt.Errorf("%w: cannot tip yourself", ErrBadInput)
	}
	if req.Credits <= 0 {
		return models.SpendResult{}, ErrBadInput
	}

	var agency *models.Agency
	if creator.AgencyID != nil {
		if agency, err = s.creators.GetAgency(ctx, *creator.AgencyID); err != nil {
			return models.SpendResult{}, notFound(err)
		}
	}

	split := s.commission.Split(s.commission.CreditsToUSD(req.Credits), models.SourceTip, creator, agency, nil)
	spent, err := s.media.Tip(ctx, userID, creator.ID, req.Credits, strings.TrimSpace(req.Message), split, s.now())
	if err != nil {
		return spent, notFound(err)
	}
	metrics.RecordCredits(string(models.CreditTxSpend), req.Credits)
	return spent, nil
}

func (s *MediaService) CreateFlashSale(ctx context.Context, userID uint, req models.CreateFlashSaleRequest) (*models.FlashSale, error) {
	creator, err := s.creators.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	m, err := s.media.GetByID(ctx, req.MediaID)
	if err != nil {
		return nil, notFound(err)
	}
	if m.CreatorID != creator.ID {
		return nil, ErrForbidden
	}
	if !m.IsPPV() {
		return nil, fmt.Errorf("%w: only pay-per-view media can go on sale", ErrBadInput)
	}
	if !req.EndsAt.After(s.now()) {
		return nil, fmt.Errorf("%w: sale must end in the future", ErrBadInput)
	}

	sale := &models.FlashSale{
		CreatorID:       creator.ID,
		MediaID:         m.ID,
		DiscountPercent: req.DiscountPercent,
		EndsAt:          req.EndsAt,
		IsActive:        true,
	}
	if err := s.media.CreateFlashSale(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *MediaService) Deactivate(ctx context.Context, actor models.Actor, id uint) error {
	m, err := s.media.GetByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	creator, err := s.creators.GetByID(ctx, m.CreatorID)
	if err != nil {
		return notFound(err)
	}
	if !Authorize(actor, ActionManageCreator, Resource{OwnerID: creator.UserID}) {
		return ErrForbidden
	}
	return s.media.Deactivate(ctx, id)
}
