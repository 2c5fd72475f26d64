package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type R2Config struct {
	AccountID       string `mapstructure:"R2_ACCOUNT_ID"`
	AccessKeyID     string `mapstructure:"R2_ACCESS_KEY_ID"`
	SecretAccessKey string `mapstructure:"R2_SECRET_ACCESS_KEY"`
	Bucket          string `mapstructure:"R2_BUCKET"`
	PublicURL       string `mapstructure:"R2_PUBLIC_URL"`
}

type Config struct {
	Env          string `mapstructure:"APP_ENV"`
	Port         string `mapstructure:"PORT"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	RedisAddr    string `mapstructure:"REDIS_ADDR"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`
	CronSecret   string `mapstructure:"CRON_SECRET"`
	FrontendURL  string `mapstructure:"FRONTEND_URL"`
	AllowOrigins string `mapstructure:"ALLOW_ORIGINS"`
	RateLimit    int    `mapstructure:"RATE_LIMIT"`

	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`

	ChangeHeroAPIKey        string `mapstructure:"CHANGEHERO_API_KEY"`
	ChangeHeroPayoutAddress string `mapstructure:"CHANGEHERO_PAYOUT_ADDRESS"`
	ChangeHeroPayoutCoin    string `mapstructure:"CHANGEHERO_PAYOUT_COIN"`

	GuardarianAPIKey        string `mapstructure:"GUARDARIAN_API_KEY"`
	GuardarianPayoutAddress string `mapstructure:"GUARDARIAN_PAYOUT_ADDRESS"`
	GuardarianPayoutCoin    string `mapstructure:"GUARDARIAN_PAYOUT_COIN"`

	MidtransServerKey  string  `mapstructure:"MIDTRANS_SERVER_KEY"`
	MidtransProduction bool    `mapstructure:"MIDTRANS_PRODUCTION"`
	MidtransUSDRate    float64 `mapstructure:"MIDTRANS_USD_IDR_RATE"`

	ResendAPIKey     string `mapstructure:"RESEND_API_KEY"`
	EmailFromAddress string `mapstructure:"EMAIL_FROM_ADDRESS"`
	EmailFromName    string `mapstructure:"EMAIL_FROM_NAME"`

	R2 R2Config `mapstructure:",squash"`

	GoogleCloudProject    string `mapstructure:"GOOGLE_CLOUD_PROJECT"`
	GoogleCloudLocation   string `mapstructure:"GOOGLE_CLOUD_LOCATION"`
	GoogleCredentialsFile string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	GeminiModel           string `mapstructure:"GEMINI_MODEL"`

	PlatformFeeRate  float64 `mapstructure:"PLATFORM_FEE_RATE"`
	CommissionRate   float64 `mapstructure:"COMMISSION_RATE"`
	FreeWindowDays   int     `mapstructure:"COMMISSION_FREE_DAYS"`
	CreditUSDValue   float64 `mapstructure:"CREDIT_USD_VALUE"`
	CreditExpiryDays int     `mapstructure:"CREDIT_EXPIRY_DAYS"`
	MinPayoutAmount  float64 `mapstructure:"MIN_PAYOUT_AMOUNT"`

	ProviderTimeout time.Duration `mapstructure:"PROVIDER_TIMEOUT"`
	SweepLockTTL    time.Duration `mapstructure:"SWEEP_LOCK_TTL"`
}

var defaults = map[string]any{
	"APP_ENV":                        "development",
	"PORT":                           "8080",
	"DATABASE_URL":                   "",
	"REDIS_ADDR":                     "localhost:6379",
	"JWT_SECRET":                     "",
	"CRON_SECRET":                    "",
	"FRONTEND_URL":                   "http://localhost:5173",
	"ALLOW_ORIGINS":                  "http://localhost:5173",
	"RATE_LIMIT":                     60,
	"STRIPE_SECRET_KEY":              "",
	"STRIPE_WEBHOOK_SECRET":          "",
	"CHANGEHERO_API_KEY":             "",
	"CHANGEHERO_PAYOUT_ADDRESS":      "",
	"CHANGEHERO_PAYOUT_COIN":         "usdterc20",
	"GUARDARIAN_API_KEY":             "",
	"GUARDARIAN_PAYOUT_ADDRESS":      "",
	"GUARDARIAN_PAYOUT_COIN":         "USDT",
	"MIDTRANS_SERVER_KEY":            "",
	"MIDTRANS_PRODUCTION":            false,
	"MIDTRANS_USD_IDR_RATE":          16000.0,
	"RESEND_API_KEY":                 "",
	"EMAIL_FROM_ADDRESS":             "noreply@fanvault.app",
	"EMAIL_FROM_NAME":                "FanVault",
	"R2_ACCOUNT_ID":                  "",
	"R2_ACCESS_KEY_ID":               "",
	"R2_SECRET_ACCESS_KEY":           "",
	"R2_BUCKET":                      "",
	"R2_PUBLIC_URL":                  "",
	"GOOGLE_CLOUD_PROJECT":           "",
	"GOOGLE_CLOUD_LOCATION":          "us-central1",
	"GOOGLE_APPLICATION_CREDENTIALS": "",
	"GEMINI_MODEL":                   "gemini-2.0-flash-001",
	"PLATFORM_FEE_RATE":              0.03,
	"COMMISSION_RATE":                0.20,
	"COMMISSION_FREE_DAYS":           30,
	"CREDIT_USD_VALUE":               0.10,
	"CREDIT_EXPIRY_DAYS":             365,
	"MIN_PAYOUT_AMOUNT":              50.0,
	"PROVIDER_TIMEOUT":               "15s",
	"SWEEP_LOCK_TTL":                 "5m",
}

// Load reads .env (if present), an optional config.env next to the binary and
// the process environment, in increasing priority.
func Load() (*Config, error) {
	v, err := newViper(defaults)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper(values map[string]any) (*viper.Viper, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	for key, value := range values {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return v, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if c.CronSecret == "" {
		return errors.New("CRON_SECRET is not set")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DeployConfig drives cmd/deploy-webhook.
type DeployConfig struct {
	Env     string        `mapstructure:"APP_ENV"`
	Port    string        `mapstructure:"DEPLOY_PORT"`
	Secret  string        `mapstructure:"DEPLOY_WEBHOOK_SECRET"`
	Script  string        `mapstructure:"DEPLOY_SCRIPT"`
	Ref     string        `mapstructure:"DEPLOY_REF"`
	Timeout time.Duration `mapstructure:"DEPLOY_TIMEOUT"`
}

var deployDefaults = map[string]any{
	"APP_ENV":               "development",
	"DEPLOY_PORT":           "9000",
	"DEPLOY_WEBHOOK_SECRET": "",
	"DEPLOY_SCRIPT":         "./deploy.sh",
	"DEPLOY_REF":            "refs/heads/main",
	"DEPLOY_TIMEOUT":        "10m",
}

func LoadDeploy() (*DeployConfig, error) {
	v, err := newViper(deployDefaults)
	if err != nil {
		return nil, err
	}

	cfg := &DeployConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Secret == "" {
		return nil, errors.New("DEPLOY_WEBHOOK_SECRET is not set")
	}
	return cfg, nil
}
