package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
)

type MidtransService struct {
	configured bool
	usdToIDR   decimal.Decimal
	snap       snap.Client
	core       coreapi.Client
}

// NewMidtransService charges in IDR. USD amounts are converted with
// usdToIDR; a non-positive rate leaves only IDR checkouts usable.
func NewMidtransService(serverKey string, production bool, usdToIDR decimal.Decimal) *MidtransService {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	m := &MidtransService{configured: serverKey != "", usdToIDR: usdToIDR}
	m.snap.New(serverKey, env)
	m.core.New(serverKey, env)
	return m
}

func (m *MidtransService) Name() string { return "MIDTRANS" }

// CreateCheckout opens a Snap transaction. The reference doubles as the
// Midtrans order id.
func (m *MidtransService) CreateCheckout(ctx context.Context, p CheckoutParams) (*Session, error) {
	if !m.configured {
		return nil, ErrNotConfigured
	}

	req, err := m.snapRequest(p)
	if err != nil {
		return nil, err
	}

	resp, merr := m.snap.CreateTransaction(req)
	if merr != nil {
		return nil, fmt.Errorf("midtrans snap: %w", merr)
	}
	if resp == nil || resp.RedirectURL == "" {
		return nil, fmt.Errorf("midtrans snap: empty response")
	}

	return &Session{
		ProviderTxID: p.Reference,
		URL:          resp.RedirectURL,
		Extra:        map[string]interface{}{"snap_token": resp.Token},
	}, nil
}

func (m *MidtransService) snapRequest(p CheckoutParams) (*snap.Request, error) {
	gross, err := m.grossIDR(p.Amount, p.Currency)
	if err != nil {
		return nil, err
	}
	return &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  p.Reference,
			GrossAmt: gross,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: p.CustomerName,
			Email: p.CustomerEmail,
		},
		Callbacks: &snap.Callbacks{Finish: p.SuccessURL},
	}, nil
}

// grossIDR returns the whole-rupiah amount Midtrans should charge.
func (m *MidtransService) grossIDR(amount decimal.Decimal, currency string) (int64, error) {
	var idr decimal.Decimal
	switch strings.ToUpper(currency) {
	case "IDR":
		idr = amount
	case "USD", "":
		if !m.usdToIDR.IsPositive() {
			return 0, fmt.Errorf("%w: no USD rate configured for midtrans", ErrUnsupportedCurrency)
		}
		idr = amount.Mul(m.usdToIDR)
	default:
		return 0, fmt.Errorf("%w: midtrans cannot charge %s", ErrUnsupportedCurrency, currency)
	}
	gross := idr.Round(0).IntPart()
	if gross <= 0 {
		return 0, fmt.Errorf("midtrans: amount %s %s rounds to zero rupiah", amount, currency)
	}
	return gross, nil
}

// CheckStatus asks Midtrans for the order state. Notifications are never
// trusted on their own; they only trigger this lookup.
func (m *MidtransService) CheckStatus(ctx context.Context, orderID string) (Status, error) {
	if !m.configured {
		return StatusPending, ErrNotConfigured
	}

	resp, merr := m.core.CheckTransaction(orderID)
	if merr != nil {
		return StatusPending, fmt.Errorf("midtrans status: %w", merr)
	}
	return midtransStatus(resp.TransactionStatus, resp.FraudStatus), nil
}

func midtransStatus(transactionStatus, fraudStatus string) Status {
	switch transactionStatus {
	case "settlement":
		return StatusCompleted
	case "capture":
		if fraudStatus == "" || fraudStatus == "accept" {
			return StatusCompleted
		}
		return StatusPending
	case "deny", "cancel", "expire", "failure":
		return StatusFailed
	}
	return StatusPending
}
