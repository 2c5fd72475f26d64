package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/resendlabs/resend-go"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	TypeVerification = "verification"
	TypeReset        = "password_reset"
	TypeWelcome      = "welcome"
	TypePayoutPaid   = "payout_paid"
)

// SendFunc delivers one rendered email and returns the provider message id.
type SendFunc func(req *resend.SendEmailRequest) (string, error)

// ResendSender sends through the Resend API.
func ResendSender(apiKey string) SendFunc {
	client := resend.NewClient(apiKey)
	return func(req *resend.SendEmailRequest) (string, error) {
		resp, err := client.Emails.Send(req)
		if err != nil {
			return "", err
		}
		return resp.Id, nil
	}
}

type Config struct {
	FromAddress string
	FromName    string
	FrontendURL string
}

// EmailService renders templates and puts the result on the Redis queue.
// The Worker drains the queue.
type EmailService struct {
	redis     redis.Cmdable
	cfg       Config
	templates *template.Template
	log       *zap.Logger
	now       func() time.Time
}

func NewEmailService(rdb redis.Cmdable, cfg Config, log *zap.Logger) (*EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &EmailService{redis: rdb, cfg: cfg, templates: tmpl, log: log, now: time.Now}, nil
}

func (s *EmailService) from() string {
	if s.cfg.FromName == "" {
		return s.cfg.FromAddress
	}
	return s.cfg.FromName + " <" + s.cfg.FromAddress + ">"
}

func (s *EmailService) render(name string, data map[string]interface{}) (string, error) {
	data["Year"] = s.now().Year()
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (s *EmailService) queue(ctx context.Context, kind, to, subject, tmpl string, data map[string]interface{}) error {
	data["Email"] = to
	html, err := s.render(tmpl, data)
	if err != nil {
		return err
	}
	return s.Enqueue(ctx, Job{Type: kind, To: to, Subject: subject, HTML: html, Created: s.now()})
}

func (s *EmailService) SendVerification(ctx context.Context, to, name, token string) error {
	return s.queue(ctx, TypeVerification, to, "Verify your email - FanVault", "verify-email.html", map[string]interface{}{
		"FullName": name,
		"Link":     s.cfg.FrontendURL + "/verify-email?token=" + token,
	})
}

func (s *EmailService) SendPasswordReset(ctx context.Context, to, token string) error {
	return s.queue(ctx, TypeReset, to, "Reset your password - FanVault", "reset-password.html", map[string]interface{}{
		"Link": s.cfg.FrontendURL + "/reset-password?token=" + token,
	})
}

func (s *EmailService) SendWelcome(ctx context.Context, to, name string) error {
	return s.queue(ctx, TypeWelcome, to, "Welcome to FanVault!", "welcome.html", map[string]interface{}{
		"FullName": name,
		"Link":     s.cfg.FrontendURL,
	})
}

func (s *EmailService) SendPayoutPaid(ctx context.Context, to, name, amount string) error {
	return s.queue(ctx, TypePayoutPaid, to, "Your payout is on its way", "payout-paid.html", map[string]interface{}{
		"FullName": name,
		"Amount":   amount,
		"Link":     s.cfg.FrontendURL + "/dashboard/payouts",
	})
}
