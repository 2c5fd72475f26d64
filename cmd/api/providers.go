package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sefazor/fanvault-backend/internal/config"
	"github.com/sefazor/fanvault-backend/internal/server"
	"github.com/sefazor/fanvault-backend/internal/service"
	"github.com/sefazor/fanvault-backend/pkg/ai"
	"github.com/sefazor/fanvault-backend/pkg/email"
	"github.com/sefazor/fanvault-backend/pkg/jwt"
	"github.com/sefazor/fanvault-backend/pkg/payment"
	"github.com/sefazor/fanvault-backend/pkg/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type application struct {
	app    *fiber.App
	worker *email.Worker
}

func newApplication(app *fiber.App, worker *email.Worker) *application {
	return &application{app: app, worker: worker}
}

func provideRedis(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, err
	}
	return client, func() { client.Close() }, nil
}

func provideJWT(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWTSecret)
}

func provideEmailConfig(cfg *config.Config) email.Config {
	return email.Config{
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		FrontendURL: cfg.FrontendURL,
	}
}

func provideEmailWorker(rdb redis.Cmdable, cfg *config.Config, emailCfg email.Config, log *zap.Logger) *email.Worker {
	return email.NewWorker(rdb, email.ResendSender(cfg.ResendAPIKey), emailCfg, log.Named("email"))
}

func provideStorage(ctx context.Context, cfg *config.Config) (*storage.R2Storage, error) {
	return storage.NewR2Storage(ctx, cfg.R2)
}

// provideReplyGenerator returns a nil generator when Vertex AI is not
// configured; suggestions then fall back to scripts and canned replies.
func provideReplyGenerator(ctx context.Context, cfg *config.Config, log *zap.Logger) (service.ReplyGenerator, func(), error) {
	if cfg.GoogleCloudProject == "" {
		log.Warn("GOOGLE_CLOUD_PROJECT not set, AI suggestions disabled")
		return nil, func() {}, nil
	}
	gemini, err := ai.NewGeminiService(ctx, ai.Config{
		ProjectID:       cfg.GoogleCloudProject,
		Location:        cfg.GoogleCloudLocation,
		CredentialsFile: cfg.GoogleCredentialsFile,
		Model:           cfg.GeminiModel,
	})
	if err != nil {
		return nil, nil, err
	}
	return gemini, func() { gemini.Close() }, nil
}

func provideCommissionConfig(cfg *config.Config) service.CommissionConfig {
	return service.CommissionConfig{
		PlatformFeeRate: decimal.NewFromFloat(cfg.PlatformFeeRate),
		CommissionRate:  decimal.NewFromFloat(cfg.CommissionRate),
		FreeWindow:      time.Duration(cfg.FreeWindowDays) * 24 * time.Hour,
		CreditUSDValue:  decimal.NewFromFloat(cfg.CreditUSDValue),
	}
}

func providePaymentConfig(cfg *config.Config) service.PaymentConfig {
	return service.PaymentConfig{
		FrontendURL:     cfg.FrontendURL,
		CreditExpiry:    time.Duration(cfg.CreditExpiryDays) * 24 * time.Hour,
		ProviderTimeout: cfg.ProviderTimeout,
	}
}

// paymentProviders holds the gateways that have credentials. Stripe is kept
// separately because it also verifies webhooks.
type paymentProviders struct {
	list   []payment.Provider
	stripe service.StripeWebhooks
}

func providePaymentProviders(cfg *config.Config, log *zap.Logger) paymentProviders {
	var out paymentProviders
	if cfg.StripeSecretKey != "" {
		stripe := payment.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
		out.list = append(out.list, stripe)
		out.stripe = stripe
	}
	if cfg.ChangeHeroAPIKey != "" {
		out.list = append(out.list, payment.NewChangeHeroService(cfg.ChangeHeroAPIKey, cfg.ChangeHeroPayoutAddress, cfg.ChangeHeroPayoutCoin, cfg.ProviderTimeout))
	}
	if cfg.GuardarianAPIKey != "" {
		out.list = append(out.list, payment.NewGuardarianService(cfg.GuardarianAPIKey, cfg.GuardarianPayoutAddress, cfg.GuardarianPayoutCoin, cfg.ProviderTimeout))
	}
	if cfg.MidtransServerKey != "" {
		out.list = append(out.list, payment.NewMidtransService(cfg.MidtransServerKey, cfg.MidtransProduction, decimal.NewFromFloat(cfg.MidtransUSDRate)))
	}

	names := make([]string, 0, len(out.list))
	for _, p := range out.list {
		names = append(names, p.Name())
	}
	log.Info("payment providers", zap.Strings("enabled", names))
	return out
}

type paymentStores struct {
	Payments service.PaymentStore
	Packages service.PackageStore
	Subs     service.SubscriptionStore
	Media    service.MediaStore
	Creators service.CreatorStore
	Users    service.UserStore
}

func providePaymentService(stores paymentStores, commission *service.CommissionService, providers paymentProviders, qr service.QRGenerator, cfg service.PaymentConfig, log *zap.Logger) *service.PaymentService {
	return service.NewPaymentService(service.PaymentDeps{
		Payments:   stores.Payments,
		Packages:   stores.Packages,
		Subs:       stores.Subs,
		Media:      stores.Media,
		Creators:   stores.Creators,
		Users:      stores.Users,
		Commission: commission,
		Providers:  providers.list,
		Stripe:     providers.stripe,
		QR:         qr,
	}, cfg, log.Named("payments"))
}

func providePayoutService(payouts service.PayoutStore, creators service.CreatorStore, users service.UserStore, mailer service.Mailer, cfg *config.Config, log *zap.Logger) *service.PayoutService {
	return service.NewPayoutService(payouts, creators, users, mailer, decimal.NewFromFloat(cfg.MinPayoutAmount), log.Named("payouts"))
}

func provideCronService(credits *service.CreditService, messages service.MessageStore, creators service.CreatorStore, locker service.Locker, cfg *config.Config, log *zap.Logger) *service.CronService {
	return service.NewCronService(credits, messages, creators, locker, cfg.SweepLockTTL, log.Named("cron"))
}

func provideServerConfig(cfg *config.Config) server.Config {
	return server.Config{
		AllowOrigins: cfg.AllowOrigins,
		CronSecret:   cfg.CronSecret,
		RateLimit:    cfg.RateLimit,
	}
}

func provideRouter(cfg server.Config, tokens *jwt.Manager, h server.Handlers) *fiber.App {
	return server.New(cfg, tokens, h)
}
