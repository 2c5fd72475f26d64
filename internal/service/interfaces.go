package service

import (
	"context"
	"io"
	"time"

	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/sefazor/fanvault-backend/internal/repository"
)

// The stores below are implemented by the gorm repositories in
// internal/repository. Services only see these interfaces.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id uint, fullName string) error
	SetRole(ctx context.Context, id uint, role models.Role) error
	Stats(ctx context.Context, id uint) (*models.UserStats, error)
}

type TokenStore interface {
	CreateVerification(ctx context.Context, token *models.VerificationToken) error
	FindVerification(ctx context.Context, token string) (*models.VerificationToken, error)
	DeleteVerification(ctx context.Context, id uint) error
	ConsumeVerification(ctx context.Context, userID uint) error
	CreateReset(ctx context.Context, token *models.PasswordResetToken) error
	FindReset(ctx context.Context, token string) (*models.PasswordResetToken, error)
	DeleteReset(ctx context.Context, id uint) error
	ResetPassword(ctx context.Context, userID uint, passwordHash string) error
}

type PackageStore interface {
	GetByID(ctx context.Context, id uint) (*models.CreditPackage, error)
	GetAll(ctx context.Context) ([]models.CreditPackage, error)
}

type CreditStore interface {
	Balances(ctx context.Context, userID uint) (models.CreditBalances, error)
	History(ctx context.Context, userID uint, limit, offset int) ([]models.CreditTransaction, error)
	Grant(ctx context.Context, userID uint, g repository.GrantParams) (*models.CreditTransaction, error)
	Spend(ctx context.Context, userID uint, amount int64, reference string, now time.Time) (models.SpendResult, error)
	UsersWithExpiredCredits(ctx context.Context, now time.Time, afterID uint, limit int) ([]uint, error)
	ExpireUser(ctx context.Context, userID uint, now time.Time) (int64, error)
	DueRecurringGrants(ctx context.Context, now time.Time, limit int) ([]models.Subscription, error)
	GrantRecurring(ctx context.Context, subscriptionID uint, g repository.GrantParams, interval time.Duration, now time.Time) (bool, error)
}

type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	GetByReference(ctx context.Context, reference string) (*models.Payment, error)
	GetByProviderTx(ctx context.Context, provider models.PaymentProvider, providerTxID string) (*models.Payment, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Payment, error)
	AttachSession(ctx context.Context, id uint, providerTxID, paymentURL, payAddress string, extra map[string]interface{}) error
	Fail(ctx context.Context, id uint, reason string, now time.Time) (bool, error)
	Complete(ctx context.Context, id uint, s repository.Settlement, now time.Time) (bool, error)
	RecordWebhookEvent(ctx context.Context, event *models.WebhookEvent) (bool, error)
	MarkWebhookProcessed(ctx context.Context, id uint, note string, now time.Time) error
	ForgetWebhookEvent(ctx context.Context, id uint) error
}

type SubscriptionStore interface {
	CreatePlan(ctx context.Context, plan *models.SubscriptionPlan) error
	GetPlan(ctx context.Context, id uint) (*models.SubscriptionPlan, error)
	PlansByCreator(ctx context.Context, creatorID uint) ([]models.SubscriptionPlan, error)
	GetByID(ctx context.Context, id uint) (*models.Subscription, error)
	GetByUserCreator(ctx context.Context, userID, creatorID uint) (*models.Subscription, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Subscription, error)
	Cancel(ctx context.Context, id uint, now time.Time) (bool, error)
}

type CreatorStore interface {
	Create(ctx context.Context, creator *models.Creator) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.Creator, error)
	GetBySlug(ctx context.Context, slug string) (*models.Creator, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Creator, error)
	GetAgency(ctx context.Context, id uint) (*models.Agency, error)
	GetAgencyByOwner(ctx context.Context, ownerID uint) (*models.Agency, error)
	AgencyCreators(ctx context.Context, agencyID uint) ([]models.Creator, error)
	GetChatter(ctx context.Context, id uint) (*models.Chatter, error)
	GetChatterByUserID(ctx context.Context, userID uint) (*models.Chatter, error)
	CreatorEarnings(ctx context.Context, creatorID uint, limit, offset int) ([]models.CreatorEarning, error)
}

type PayoutStore interface {
	CreateCreatorRequest(ctx context.Context, req *models.PayoutRequest) error
	CreateAgencyRequest(ctx context.Context, req *models.AgencyPayoutRequest) error
	CreateChatterRequest(ctx context.Context, req *models.ChatterPayoutRequest) error
	PayCreator(ctx context.Context, id, paidBy uint, txHash string, now time.Time) (*models.PayoutReceipt, error)
	PayAgency(ctx context.Context, id, paidBy uint, txHash string, now time.Time) (*models.PayoutReceipt, error)
	PayChatter(ctx context.Context, id, paidBy uint, txHash string, now time.Time) (*models.PayoutReceipt, error)
	PayAgencyCreator(ctx context.Context, payout *models.AgencyCreatorPayout, paidBy uint, now time.Time) (*models.PayoutReceipt, error)
	GetCreatorPayout(ctx context.Context, id uint) (*models.PayoutRequest, error)
	GetAgencyPayout(ctx context.Context, id uint) (*models.AgencyPayoutRequest, error)
	GetChatterPayout(ctx context.Context, id uint) (*models.ChatterPayoutRequest, error)
	ListCreatorPayouts(ctx context.Context, creatorID uint) ([]models.PayoutRequest, error)
	ListPendingCreatorPayouts(ctx context.Context) ([]models.PayoutRequest, error)
	ListPendingAgencyPayouts(ctx context.Context) ([]models.AgencyPayoutRequest, error)
	ListChatterPayoutsByAgency(ctx context.Context, agencyID uint) ([]models.ChatterPayoutRequest, error)
}

type MediaStore interface {
	Create(ctx context.Context, media *models.Media) error
	GetByID(ctx context.Context, id uint) (*models.Media, error)
	ListByCreator(ctx context.Context, creatorID uint, limit, offset int) ([]models.Media, error)
	Deactivate(ctx context.Context, id uint) error
	HasPurchase(ctx context.Context, userID, mediaID uint) (bool, error)
	ActiveFlashSale(ctx context.Context, mediaID uint, now time.Time) (*models.FlashSale, error)
	CreateFlashSale(ctx context.Context, sale *models.FlashSale) error
	Unlock(ctx context.Context, userID uint, media *models.Media, price int64, split *models.RevenueSplit, now time.Time) (*models.UnlockResult, error)
	Tip(ctx context.Context, userID, creatorID uint, credits int64, note string, split *models.RevenueSplit, now time.Time) (models.SpendResult, error)
}

type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	Thread(ctx context.Context, creatorID, fanID uint, limit, offset int) ([]models.Message, error)
	CreateBump(ctx context.Context, bump *models.BumpMessage) error
	DueBumps(ctx context.Context, now time.Time, limit int) ([]models.BumpMessage, error)
	HasPurchased(ctx context.Context, fanID, mediaID uint) (bool, error)
	DeliverBump(ctx context.Context, bump *models.BumpMessage, sentBy uint, now time.Time) (bool, error)
	SetBumpStatus(ctx context.Context, id uint, status models.BumpStatus) error
	CreateCampaign(ctx context.Context, c *models.RetargetingCampaign) error
	DueCampaigns(ctx context.Context, now time.Time, limit int) ([]models.RetargetingCampaign, error)
	MarkCampaignSending(ctx context.Context, id uint) error
	CompleteCampaign(ctx context.Context, id uint, now time.Time) error
	CampaignTargets(ctx context.Context, c *models.RetargetingCampaign, now time.Time, limit int) ([]uint, error)
	SendCampaignMessage(ctx context.Context, c *models.RetargetingCampaign, fanID, sentBy uint) (bool, error)
	ExpireFlashSales(ctx context.Context, now time.Time) (int64, error)
	CreateMemory(ctx context.Context, m *models.ChatterMemory) error
	Memories(ctx context.Context, chatterID, fanID uint, limit int) ([]models.ChatterMemory, error)
	DeleteMemories(ctx context.Context, kind models.MemoryKind, before time.Time) (int64, error)
}

type ScriptStore interface {
	Create(ctx context.Context, script *models.Script) error
	GetByID(ctx context.Context, id uint) (*models.Script, error)
	ActiveByAgency(ctx context.Context, agencyID uint) ([]models.Script, error)
	Deactivate(ctx context.Context, id uint) error
}

// Mailer queues transactional email.
type Mailer interface {
	SendVerification(ctx context.Context, to, name, token string) error
	SendPasswordReset(ctx context.Context, to, token string) error
	SendWelcome(ctx context.Context, to, name string) error
	SendPayoutPaid(ctx context.Context, to, name, amount string) error
}

// Locker guards sweeps against overlapping runs.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ReplyGenerator produces a free-form chat reply from a system prompt and
// the recent conversation.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, system string, notes []string, message string) (string, error)
}

type TokenIssuer interface {
	GenerateToken(userID uint, email, role string) (string, error)
}

type QRGenerator interface {
	DataURI(content string) (string, error)
}
