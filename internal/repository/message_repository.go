package repository

import (
	"context"
	"time"

	"github.com/sefazor/fanvault-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageRepository owns messages and the scheduled work built on them:
// bumps, retargeting campaigns, flash sales and chatter notes.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *MessageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	if err := r.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *MessageRepository) Thread(ctx context.Context, creatorID, fanID uint, limit, offset int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Where("creator_id = ? AND fan_id = ?", creatorID, fanID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error
	return msgs, err
}

func (r *MessageRepository) CreateBump(ctx context.Context, bump *models.BumpMessage) error {
	return r.db.WithContext(ctx).Create(bump).Error
}

func (r *MessageRepository) DueBumps(ctx context.Context, now time.Time, limit int) ([]models.BumpMessage, error) {
	var bumps []models.BumpMessage
	err := r.db.WithContext(ctx).
		Where("status = ? AND send_at <= ?", models.BumpPending, now).
		Order("send_at ASC, id ASC").
		Limit(limit).
		Find(&bumps).Error
	return bumps, err
}

func (r *MessageRepository) HasPurchased(ctx context.Context, fanID, mediaID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MediaPurchase{}).
		Where("user_id = ? AND media_id = ?", fanID, mediaID).
		Count(&count).Error
	return count > 0, err
}

// DeliverBump turns a pending bump into a message. It returns false when the
// bump was already handled by another run.
func (r *MessageRepository) DeliverBump(ctx context.Context, bump *models.BumpMessage, sentBy uint, now time.Time) (bool, error) {
	delivered := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.BumpMessage{}).
			Where("id = ? AND status = ?", bump.ID, models.BumpPending).
			Updates(map[string]interface{}{"status": models.BumpSent, "sent_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		msg := &models.Message{
			CreatorID: bump.CreatorID,
			FanID:     bump.FanID,
			SenderID:  sentBy,
			Body:      bump.Body,
			MediaID:   bump.MediaID,
			IsBump:    true,
		}
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		delivered = true
		return nil
	})
	return delivered, err
}

func (r *MessageRepository) SetBumpStatus(ctx context.Context, id uint, status models.BumpStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.BumpMessage{}).
		Where("id = ? AND status = ?", id, models.BumpPending).
		Update("status", status).Error
}

func (r *MessageRepository) CreateCampaign(ctx context.Context, c *models.RetargetingCampaign) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// DueCampaigns includes SENDING campaigns so an interrupted run is resumed.
func (r *MessageRepository) DueCampaigns(ctx context.Context, now time.Time, limit int) ([]models.RetargetingCampaign, error) {
	var campaigns []models.RetargetingCampaign
	err := r.db.WithContext(ctx).
		Where("status IN ? AND scheduled_at <= ?", []models.CampaignStatus{models.CampaignScheduled, models.CampaignSending}, now).
		Order("scheduled_at ASC, id ASC").
		Limit(limit).
		Find(&campaigns).Error
	return campaigns, err
}

func (r *MessageRepository) MarkCampaignSending(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.RetargetingCampaign{}).
		Where("id = ? AND status = ?", id, models.CampaignScheduled).
		Update("status", models.CampaignSending).Error
}

func (r *MessageRepository) CompleteCampaign(ctx context.Context, id uint, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.RetargetingCampaign{}).
		Where("id = ? AND status = ?", id, models.CampaignSending).
		Updates(map[string]interface{}{"status": models.CampaignCompleted, "completed_at": now}).Error
}

// CampaignTargets returns fans with a message thread with the campaign's
// creator who have not bought anything from them within InactiveDays and
// have not been messaged by this campaign yet.
func (r *MessageRepository) CampaignTargets(ctx context.Context, c *models.RetargetingCampaign, now time.Time, limit int) ([]uint, error) {
	since := now.AddDate(0, 0, -c.InactiveDays)

	threads := r.db.Model(&models.Message{}).Select("fan_id AS user_id").Where("creator_id = ?", c.CreatorID).
		Group("fan_id")

	var ids []uint
	err := r.db.WithContext(ctx).
		Table("(?) AS fans", threads).
		Select("fans.user_id").
		Where("NOT EXISTS (SELECT 1 FROM media_purchases mp WHERE mp.user_id = fans.user_id AND mp.creator_id = ? AND mp.created_at > ?)", c.CreatorID, since).
		Where("NOT EXISTS (SELECT 1 FROM campaign_recipients cr WHERE cr.campaign_id = ? AND cr.fan_id = fans.user_id)", c.ID).
		Order("fans.user_id").
		Limit(limit).
		Pluck("fans.user_id", &ids).Error
	return ids, err
}

// SendCampaignMessage claims the (campaign, fan) recipient row and writes the
// message. It returns false when the fan was already claimed.
func (r *MessageRepository) SendCampaignMessage(ctx context.Context, c *models.RetargetingCampaign, fanID, sentBy uint) (bool, error) {
	sent := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipient := &models.CampaignRecipient{CampaignID: c.ID, FanID: fanID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(recipient)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		msg := &models.Message{
			CreatorID:  c.CreatorID,
			FanID:      fanID,
			SenderID:   sentBy,
			Body:       c.Body,
			MediaID:    c.MediaID,
			CampaignID: &c.ID,
		}
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		if err := tx.Model(recipient).Update("message_id", msg.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.RetargetingCampaign{}).Where("id = ?", c.ID).
			Update("sent_count", gorm.Expr("sent_count + 1")).Error; err != nil {
			return err
		}
		sent = true
		return nil
	})
	return sent, err
}

func (r *MessageRepository) ExpireFlashSales(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.FlashSale{}).
		Where("is_active = ? AND ends_at < ?", true, now).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

func (r *MessageRepository) CreateMemory(ctx context.Context, m *models.ChatterMemory) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MessageRepository) Memories(ctx context.Context, chatterID, fanID uint, limit int) ([]models.ChatterMemory, error) {
	var notes []models.ChatterMemory
	err := r.db.WithContext(ctx).
		Where("chatter_id = ? AND fan_id = ?", chatterID, fanID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notes).Error
	return notes, err
}

func (r *MessageRepository) DeleteMemories(ctx context.Context, kind models.MemoryKind, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("kind = ? AND created_at < ?", kind, before).
		Delete(&models.ChatterMemory{})
	return res.RowsAffected, res.Error
}
