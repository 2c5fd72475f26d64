//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"github.com/sefazor/fanvault-backend/internal/config"
	"github.com/sefazor/fanvault-backend/internal/handler"
	"github.com/sefazor/fanvault-backend/internal/repository"
	"github.com/sefazor/fanvault-backend/internal/server"
	"github.com/sefazor/fanvault-backend/internal/service"
	"github.com/sefazor/fanvault-backend/pkg/database"
	"github.com/sefazor/fanvault-backend/pkg/email"
	"github.com/sefazor/fanvault-backend/pkg/jwt"
	"github.com/sefazor/fanvault-backend/pkg/lock"
	"github.com/sefazor/fanvault-backend/pkg/qrcode"
	"github.com/sefazor/fanvault-backend/pkg/storage"
	"github.com/sefazor/fanvault-backend/pkg/utils"
	"go.uber.org/zap"
)

var infraSet = wire.NewSet(
	database.NewDatabase,
	provideRedis,
	wire.Bind(new(redis.Cmdable), new(*redis.Client)),
	provideJWT,
	wire.Bind(new(service.TokenIssuer), new(*jwt.Manager)),
	provideEmailConfig,
	email.NewEmailService,
	wire.Bind(new(service.Mailer), new(*email.EmailService)),
	provideEmailWorker,
	lock.NewRedisLocker,
	wire.Bind(new(service.Locker), new(*lock.RedisLocker)),
	provideStorage,
	wire.Bind(new(service.ObjectStorage), new(*storage.R2Storage)),
	provideReplyGenerator,
	qrcode.NewQRService,
	wire.Bind(new(service.QRGenerator), new(*qrcode.QRService)),
	providePaymentProviders,
)

var repositorySet = wire.NewSet(
	repository.NewUserRepository,
	wire.Bind(new(service.UserStore), new(*repository.UserRepository)),
	repository.NewTokenRepository,
	wire.Bind(new(service.TokenStore), new(*repository.TokenRepository)),
	repository.NewCreditPackageRepository,
	wire.Bind(new(service.PackageStore), new(*repository.CreditPackageRepository)),
	repository.NewCreditRepository,
	wire.Bind(new(service.CreditStore), new(*repository.CreditRepository)),
	repository.NewPaymentRepository,
	wire.Bind(new(service.PaymentStore), new(*repository.PaymentRepository)),
	repository.NewSubscriptionRepository,
	wire.Bind(new(service.SubscriptionStore), new(*repository.SubscriptionRepository)),
	repository.NewCreatorRepository,
	wire.Bind(new(service.CreatorStore), new(*repository.CreatorRepository)),
	repository.NewPayoutRepository,
	wire.Bind(new(service.PayoutStore), new(*repository.PayoutRepository)),
	repository.NewMediaRepository,
	wire.Bind(new(service.MediaStore), new(*repository.MediaRepository)),
	repository.NewMessageRepository,
	wire.Bind(new(service.MessageStore), new(*repository.MessageRepository)),
	repository.NewScriptRepository,
	wire.Bind(new(service.ScriptStore), new(*repository.ScriptRepository)),
	wire.Struct(new(paymentStores), "*"),
)

var serviceSet = wire.NewSet(
	provideCommissionConfig,
	service.NewCommissionService,
	providePaymentConfig,
	providePaymentService,
	service.NewAuthService,
	service.NewUserService,
	service.NewCreditService,
	service.NewCreatorService,
	service.NewSubscriptionService,
	service.NewMediaService,
	service.NewMessageService,
	service.NewScriptService,
	providePayoutService,
	provideCronService,
)

var handlerSet = wire.NewSet(
	utils.NewValidator,
	handler.NewAuthHandler,
	wire.Bind(new(handler.AuthAPI), new(*service.AuthService)),
	handler.NewUserHandler,
	wire.Bind(new(handler.UserAPI), new(*service.UserService)),
	handler.NewCreditHandler,
	wire.Bind(new(handler.CreditAPI), new(*service.CreditService)),
	handler.NewPaymentHandler,
	wire.Bind(new(handler.PaymentAPI), new(*service.PaymentService)),
	handler.NewPayoutHandler,
	wire.Bind(new(handler.PayoutAPI), new(*service.PayoutService)),
	handler.NewCronHandler,
	wire.Bind(new(handler.CronAPI), new(*service.CronService)),
	handler.NewCreatorHandler,
	wire.Bind(new(handler.CreatorAPI), new(*service.CreatorService)),
	wire.Bind(new(handler.SubscriptionAPI), new(*service.SubscriptionService)),
	handler.NewMediaHandler,
	wire.Bind(new(handler.MediaAPI), new(*service.MediaService)),
	handler.NewMessageHandler,
	wire.Bind(new(handler.MessageAPI), new(*service.MessageService)),
	handler.NewScriptHandler,
	wire.Bind(new(handler.ScriptAPI), new(*service.ScriptService)),
	wire.Struct(new(server.Handlers), "*"),
	provideServerConfig,
	provideRouter,
)

func initializeApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*application, func(), error) {
	wire.Build(infraSet, repositorySet, serviceSet, handlerSet, newApplication)
	return nil, nil, nil
}
