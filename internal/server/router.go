package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sefazor/fanvault-backend/internal/handler"
	"github.com/sefazor/fanvault-backend/internal/middleware"
	"github.com/sefazor/fanvault-backend/internal/models"
)

type Config struct {
	AllowOrigins string
	CronSecret   string
	// RateLimit is requests per minute per IP on /api. Zero disables it.
	RateLimit int
}

type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Credit  *handler.CreditHandler
	Payment *handler.PaymentHandler
	Payout  *handler.PayoutHandler
	Cron    *handler.CronHandler
	Creator *handler.CreatorHandler
	Media   *handler.MediaHandler
	Message *handler.MessageHandler
	Script  *handler.ScriptHandler
}

func New(cfg Config, tokens middleware.TokenValidator, h Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 256 << 20,
	})

	// Global Middleware'ler önce tanımlanmalı
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE",
		AllowCredentials: true,
	}))
	app.Use(logger.New())
	app.Use(middleware.Metrics())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(models.SuccessResponse(fiber.Map{"status": "ok"}, ""))
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Cron routes use their own secret, not a user token
	cron := api.Group("/cron", middleware.CronAuth(cfg.CronSecret))
	cron.Get("/credits", h.Cron.Credits)
	cron.Get("/process-bumps", h.Cron.ProcessBumps)
	cron.Get("/retargeting", h.Cron.Retargeting)
	cron.Get("/flash-sales", h.Cron.FlashSales)
	cron.Get("/cleanup", h.Cron.Cleanup)

	// Provider callbacks (public, verified inside the service)
	api.Post("/payments/stripe/webhook", h.Payment.HandleStripeWebhook)
	api.Post("/payments/midtrans/notification", h.Payment.HandleMidtransNotification)

	if cfg.RateLimit > 0 {
		api.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
		}))
	}

	// Public routes
	auth := api.Group("/auth")
	auth.Post("/register", h.Auth.Register)
	auth.Post("/verify", h.Auth.VerifyEmail)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/forgot-password", h.Auth.ForgotPassword)
	auth.Post("/reset-password", h.Auth.ResetPassword)

	api.Get("/credits/packages", h.Credit.GetAllPackages)
	api.Get("/creators/:slug", h.Creator.GetCreator)
	api.Get("/creators/:slug/plans", h.Creator.GetPlans)
	api.Get("/creators/:slug/commission", h.Creator.GetCommissionRate)

	// Protected routes
	api.Use(middleware.AuthMiddleware(tokens))
	{
		user := api.Group("/user")
		user.Get("/profile", h.User.GetMyProfile)
		user.Put("/profile", h.User.UpdateProfile)
		user.Get("/stats", h.User.GetStats)
		user.Get("/billing", h.User.GetBilling)

		credits := api.Group("/credits")
		credits.Get("/", h.Credit.GetBalances)
		credits.Get("/history", h.Credit.GetHistory)

		payments := api.Group("/payments")
		payments.Post("/checkout", h.Payment.CreateCheckoutSession)
		payments.Get("/:id", h.Payment.GetPayment)
		payments.Get("/:id/status", h.Payment.PollStatus)

		subs := api.Group("/subscriptions")
		subs.Get("/", h.Creator.MySubscriptions)
		subs.Post("/", h.Creator.Subscribe)
		subs.Post("/:id/cancel", h.Creator.CancelSubscription)

		creators := api.Group("/creators")
		creators.Get("/:slug/media", h.Media.ListByCreator)
		creators.Post("/:slug/tip", h.Media.Tip)
		creators.Post("/:slug/messages", h.Message.FanSend)

		media := api.Group("/media")
		media.Get("/:id", h.Media.Get)
		media.Post("/:id/unlock", h.Media.Unlock)

		creator := api.Group("/creator")
		creator.Post("/", h.Creator.BecomeCreator)
		creator.Get("/", h.Creator.GetMyCreator)
		creator.Post("/plans", h.Creator.CreatePlan)
		creator.Get("/earnings", h.Creator.GetEarnings)
		creator.Post("/media", h.Media.Upload)
		creator.Delete("/media/:id", h.Media.Deactivate)
		creator.Post("/flash-sales", h.Media.CreateFlashSale)
		creator.Get("/payouts", h.Payout.MyCreatorPayouts)
		creator.Post("/payouts", h.Payout.RequestCreatorPayout)

		// Creator owners and their agency's chatters share the inbox
		inbox := api.Group("/creator-inbox/:creatorId")
		inbox.Post("/messages", h.Message.CreatorSend)
		inbox.Get("/threads/:fanId", h.Message.Thread)
		inbox.Post("/bumps", h.Message.ScheduleBump)
		inbox.Post("/campaigns", h.Message.CreateCampaign)

		agency := api.Group("/agency")
		agency.Get("/", h.Creator.GetAgency)
		agency.Post("/payouts", h.Payout.RequestAgencyPayout)
		agency.Get("/chatter-payouts", h.Payout.AgencyChatterPayouts)
		agency.Post("/chatter-payouts/:id/pay", h.Payout.PayChatterPayout)
		agency.Post("/payouts/creator/:id/pay", h.Payout.PayAgencyCreator)
		agency.Get("/scripts", h.Script.ListScripts)
		agency.Post("/scripts", h.Script.CreateScript)
		agency.Delete("/scripts/:id", h.Script.DeactivateScript)

		chatter := api.Group("/chatter", middleware.RequireRole(models.RoleChatter))
		chatter.Post("/suggestions", h.Script.Suggest)
		chatter.Post("/payouts", h.Payout.RequestChatterPayout)
		chatter.Post("/memories", h.Message.AddMemory)
		chatter.Get("/memories/:fanId", h.Message.Memories)

		admin := api.Group("/admin", middleware.RequireRole(models.RoleAdmin))
		admin.Post("/payments/:id/confirm", h.Payment.AdminConfirm)
		admin.Get("/payouts", h.Payout.PendingCreatorPayouts)
		admin.Post("/payouts/:id/pay", h.Payout.PayCreatorPayout)
		admin.Get("/agency-payouts", h.Payout.PendingAgencyPayouts)
		admin.Post("/agency-payouts/:id/pay", h.Payout.PayAgencyPayout)
		admin.Post("/chatter-payouts/:id/pay", h.Payout.PayChatterPayout)
		admin.Put("/users/:id/role", h.User.SetRole)
	}

	return app
}
