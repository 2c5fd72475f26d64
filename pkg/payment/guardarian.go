package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const guardarianURL = "https://api-payments.guardarian.com/v1"

// GuardarianService is the fiat on-ramp: the fan pays by card on the
// Guardarian page and crypto is delivered to the platform wallet.
type GuardarianService struct {
	apiKey     string
	payoutAddr string
	payoutCoin string
	baseURL    string
	client     *http.Client
}

func NewGuardarianService(apiKey, payoutAddr, payoutCoin string, timeout time.Duration) *GuardarianService {
	return &GuardarianService{
		apiKey:     apiKey,
		payoutAddr: payoutAddr,
		payoutCoin: payoutCoin,
		baseURL:    guardarianURL,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *GuardarianService) Name() string { return "GUARDARIAN" }

func (s *GuardarianService) do(ctx context.Context, method, path string, body, out interface{}) error {
	if s.apiKey == "" {
		return ErrNotConfigured
	}

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("guardarian %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("guardarian %s failed: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *GuardarianService) CreateCheckout(ctx context.Context, p CheckoutParams) (*Session, error) {
	body := map[string]interface{}{
		"from_amount":              p.Amount.InexactFloat64(),
		"from_currency":            p.Currency,
		"to_currency":              s.payoutCoin,
		"external_partner_link_id": p.Reference,
		"payout_info": map[string]string{
			"payout_address": s.payoutAddr,
		},
		"redirects": map[string]string{
			"successful": p.SuccessURL,
			"cancelled":  p.CancelURL,
			"failed":     p.CancelURL,
		},
		"customer": map[string]interface{}{
			"contact_info": map[string]string{"email": p.CustomerEmail},
		},
	}

	var out struct {
		ID          json.Number `json:"id"`
		RedirectURL string      `json:"redirect_url"`
	}
	if err := s.do(ctx, http.MethodPost, "/transaction", body, &out); err != nil {
		return nil, err
	}
	if out.ID == "" || out.RedirectURL == "" {
		return nil, errors.New("guardarian: empty transaction")
	}

	return &Session{ProviderTxID: out.ID.String(), URL: out.RedirectURL}, nil
}

func (s *GuardarianService) CheckStatus(ctx context.Context, id string) (Status, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := s.do(ctx, http.MethodGet, "/transaction/"+id, nil, &out); err != nil {
		return StatusPending, err
	}
	return guardarianStatus(out.Status), nil
}

func guardarianStatus(status string) Status {
	switch status {
	case "finished":
		return StatusCompleted
	case "failed", "refunded", "expired", "cancelled":
		return StatusFailed
	}
	return StatusPending
}
