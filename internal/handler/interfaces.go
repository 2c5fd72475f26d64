package handler

import (
	"context"
	"io"

	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/shopspring/decimal"
)

// The interfaces below are implemented by the services in internal/service.

type AuthAPI interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error
}

type UserAPI interface {
	GetProfile(ctx context.Context, userID uint) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uint, fullName string) (*models.User, error)
	Stats(ctx context.Context, userID uint) (*models.UserStats, error)
	Billing(ctx context.Context, userID uint, limit, offset int) ([]models.Payment, error)
	SetRole(ctx context.Context, actor models.Actor, userID uint, role models.Role) error
}

type CreditAPI interface {
	GetCreditBalances(ctx context.Context, userID uint) (models.CreditBalances, error)
	History(ctx context.Context, userID uint, limit, offset int) ([]models.CreditTransaction, error)
	Packages(ctx context.Context) ([]models.CreditPackage, error)
}

type PaymentAPI interface {
	CreateCheckout(ctx context.Context, userID uint, req models.CheckoutRequest) (*models.CheckoutSession, error)
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error
	HandleMidtransNotification(ctx context.Context, orderID string) error
	GetPayment(ctx context.Context, actor models.Actor, paymentID uint) (*models.Payment, error)
	PollStatus(ctx context.Context, actor models.Actor, paymentID uint) (*models.Payment, error)
	AdminConfirm(ctx context.Context, actor models.Actor, paymentID uint) (*models.Payment, error)
}

type PayoutAPI interface {
	RequestCreatorPayout(ctx context.Context, userID uint, req models.CreatePayoutRequest) (*models.PayoutRequest, error)
	RequestAgencyPayout(ctx context.Context, userID uint, req models.CreatePayoutRequest) (*models.AgencyPayoutRequest, error)
	RequestChatterPayout(ctx context.Context, userID uint, req models.CreatePayoutRequest) (*models.ChatterPayoutRequest, error)
	PayCreatorPayout(ctx context.Context, actor models.Actor, id uint, txHash string) (*models.PayoutReceipt, error)
	PayAgencyPayout(ctx context.Context, actor models.Actor, id uint, txHash string) (*models.PayoutReceipt, error)
	PayChatterPayout(ctx context.Context, actor models.Actor, id uint, txHash string) (*models.PayoutReceipt, error)
	PayAgencyCreator(ctx context.Context, actor models.Actor, creatorID uint, req models.AgencyCreatorPayRequest) (*models.PayoutReceipt, error)
	CreatorPayouts(ctx context.Context, userID uint) ([]models.PayoutRequest, error)
	PendingCreatorPayouts(ctx context.Context, actor models.Actor) ([]models.PayoutRequest, error)
	PendingAgencyPayouts(ctx context.Context, actor models.Actor) ([]models.AgencyPayoutRequest, error)
	AgencyChatterPayouts(ctx context.Context, userID uint) ([]models.ChatterPayoutRequest, error)
}

type CronAPI interface {
	RunCredits(ctx context.Context) (models.CreditSweepResult, error)
	ProcessBumps(ctx context.Context) (models.SweepResult, error)
	ProcessRetargeting(ctx context.Context) (models.SweepResult, error)
	ExpireFlashSales(ctx context.Context) (int64, error)
	Cleanup(ctx context.Context) (models.CleanupResult, error)
}

type CreatorAPI interface {
	BecomeCreator(ctx context.Context, userID uint, req models.CreateCreatorRequest) (*models.Creator, error)
	GetBySlug(ctx context.Context, slug string) (*models.Creator, error)
	Mine(ctx context.Context, userID uint) (*models.Creator, error)
	CommissionRate(ctx context.Context, slug string) (decimal.Decimal, error)
	CreatePlan(ctx context.Context, userID uint, req models.CreatePlanRequest) (*models.SubscriptionPlan, error)
	Plans(ctx context.Context, slug string) ([]models.SubscriptionPlan, error)
	Earnings(ctx context.Context, userID uint, limit, offset int) ([]models.CreatorEarning, error)
	Agency(ctx context.Context, userID uint) (*models.Agency, []models.Creator, error)
}

type SubscriptionAPI interface {
	Subscribe(ctx context.Context, userID uint, req models.SubscribeRequest) (*models.CheckoutSession, error)
	Cancel(ctx context.Context, actor models.Actor, id uint) (*models.Subscription, error)
	Mine(ctx context.Context, userID uint) ([]models.Subscription, error)
}

type MediaAPI interface {
	Upload(ctx context.Context, userID uint, req models.UploadMediaRequest, fileName string, size int64, body io.Reader) (*models.Media, error)
	ListByCreator(ctx context.Context, viewerID uint, slug string, limit, offset int) ([]models.Media, error)
	Get(ctx context.Context, viewerID, id uint) (*models.Media, error)
	Unlock(ctx context.Context, userID, mediaID uint, messageID *uint) (*models.UnlockResult, *models.Media, error)
	Tip(ctx context.Context, userID uint, slug string, req models.TipRequest) (models.SpendResult, error)
	CreateFlashSale(ctx context.Context, userID uint, req models.CreateFlashSaleRequest) (*models.FlashSale, error)
	Deactivate(ctx context.Context, actor models.Actor, id uint) error
}

type MessageAPI interface {
	FanSend(ctx context.Context, userID uint, slug, body string) (*models.Message, error)
	CreatorSend(ctx context.Context, actor models.Actor, creatorID uint, req models.SendMessageRequest) (*models.Message, error)
	Thread(ctx context.Context, actor models.Actor, creatorID, fanID uint, limit, offset int) ([]models.Message, error)
	ScheduleBump(ctx context.Context, actor models.Actor, creatorID uint, req models.ScheduleBumpRequest) (*models.BumpMessage, error)
	CreateCampaign(ctx context.Context, actor models.Actor, creatorID uint, req models.CreateCampaignRequest) (*models.RetargetingCampaign, error)
	AddMemory(ctx context.Context, userID uint, req models.CreateMemoryRequest) (*models.ChatterMemory, error)
	Memories(ctx context.Context, userID, fanID uint) ([]models.ChatterMemory, error)
}

type ScriptAPI interface {
	Suggest(ctx context.Context, userID uint, req models.SuggestRequest) (*models.Suggestion, error)
	CreateScript(ctx context.Context, userID uint, req models.CreateScriptRequest) (*models.Script, error)
	AgencyScripts(ctx context.Context, userID uint) ([]models.Script, error)
	DeactivateScript(ctx context.Context, actor models.Actor, id uint) error
}
