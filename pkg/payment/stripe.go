package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	"github.com/stripe/stripe-go/v74/webhook"
)

type StripeService struct {
	secretKey     string
	webhookSecret string
}

func NewStripeService(secretKey, webhookSecret string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
	}
}

func (s *StripeService) Name() string { return "STRIPE" }

func (s *StripeService) CreateCheckout(ctx context.Context, p CheckoutParams) (*Session, error) {
	if s.secretKey == "" {
		return nil, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		CustomerEmail: stripe.String(p.CustomerEmail),
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(p.Reference),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(p.Currency)),
					UnitAmount: stripe.Int64(p.Amount.Shift(2).Round(0).IntPart()),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(p.SuccessURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(p.CancelURL),
	}
	params.Context = ctx

	params.AddMetadata("reference", p.Reference)
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout: %w", err)
	}

	return &Session{ProviderTxID: sess.ID, URL: sess.URL}, nil
}

func (s *StripeService) CheckStatus(ctx context.Context, sessionID string) (Status, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := session.Get(sessionID, params)
	if err != nil {
		return StatusPending, fmt.Errorf("stripe session: %w", err)
	}
	return stripeSessionStatus(sess), nil
}

func stripeSessionStatus(sess *stripe.CheckoutSession) Status {
	switch {
	case sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		return StatusCompleted
	case sess.Status == stripe.CheckoutSessionStatusExpired:
		return StatusFailed
	}
	return StatusPending
}

// StripeEvent is the part of a verified webhook the payment flow needs.
type StripeEvent struct {
	ID        string
	Type      string
	SessionID string
	Reference string
	Status    Status
}

var ErrInvalidSignature = errors.New("invalid webhook signature")

// ParseWebhook verifies the Stripe-Signature header over the raw payload and
// decodes checkout session events. Other event types come back with an empty
// SessionID.
func (s *StripeService) ParseWebhook(payload []byte, signature string) (*StripeEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &StripeEvent{ID: event.ID, Type: string(event.Type), Status: StatusPending}

	switch out.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded",
		"checkout.session.expired", "checkout.session.async_payment_failed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.SessionID = sess.ID
		out.Reference = sess.ClientReferenceID
		if out.Reference == "" {
			out.Reference = sess.Metadata["reference"]
		}

		switch out.Type {
		case "checkout.session.expired", "checkout.session.async_payment_failed":
			out.Status = StatusFailed
		default:
			// completed fires before async methods settle
			if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusUnpaid {
				out.Status = StatusCompleted
			}
		}
	}

	return out, nil
}
