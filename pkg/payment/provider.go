package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNotConfigured       = errors.New("payment provider not configured")
	ErrUnsupportedCurrency = errors.New("currency not supported by provider")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type CheckoutParams struct {
	Reference     string
	Amount        decimal.Decimal
	Currency      string
	Description   string
	CustomerEmail string
	CustomerName  string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// Session is what a provider hands back for a new checkout. URL is set for
// redirect flows, PayAddress for crypto pay-ins.
type Session struct {
	ProviderTxID string
	URL          string
	PayAddress   string
	PayAmount    string
	PayCurrency  string
	Extra        map[string]interface{}
}

type Provider interface {
	Name() string
	CreateCheckout(ctx context.Context, p CheckoutParams) (*Session, error)
}

// StatusChecker is implemented by providers whose payments can be polled.
type StatusChecker interface {
	CheckStatus(ctx context.Context, providerTxID string) (Status, error)
}
