package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const changeHeroURL = "https://api.changehero.io/v2/"

// ChangeHeroService creates fixed-destination exchanges: the fan sends any
// supported coin to the pay-in address and ChangeHero forwards the payout
// coin to the platform wallet.
type ChangeHeroService struct {
	apiKey     string
	payoutAddr string
	payoutCoin string
	baseURL    string
	client     *http.Client
}

func NewChangeHeroService(apiKey, payoutAddr, payoutCoin string, timeout time.Duration) *ChangeHeroService {
	return &ChangeHeroService{
		apiKey:     apiKey,
		payoutAddr: payoutAddr,
		payoutCoin: payoutCoin,
		baseURL:    changeHeroURL,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *ChangeHeroService) Name() string { return "CHANGEHERO" }

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s *ChangeHeroService) call(ctx context.Context, method string, params, out interface{}) error {
	if s.apiKey == "" {
		return ErrNotConfigured
	}

	b, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: method, Method: method, Params: params})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("changehero %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("changehero %s failed: %s", method, resp.Status)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("changehero %s: decode: %w", method, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("changehero %s: %s", method, envelope.Error.Message)
	}
	return json.Unmarshal(envelope.Result, out)
}

func (s *ChangeHeroService) CreateCheckout(ctx context.Context, p CheckoutParams) (*Session, error) {
	from := strings.ToLower(p.Metadata["pay_currency"])
	if from == "" {
		from = "btc"
	}

	var estimate string
	err := s.call(ctx, "getExchangeAmount", map[string]string{
		"from":   s.payoutCoin,
		"to":     from,
		"amount": p.Amount.String(),
	}, &estimate)
	if err != nil {
		return nil, err
	}

	var out struct {
		ID                 string `json:"id"`
		PayinAddress       string `json:"payinAddress"`
		PayinExtraID       string `json:"payinExtraId"`
		AmountExpectedFrom string `json:"amountExpectedFrom"`
		CurrencyFrom       string `json:"currencyFrom"`
	}
	err = s.call(ctx, "createTransaction", map[string]string{
		"from":          from,
		"to":            s.payoutCoin,
		"address":       s.payoutAddr,
		"amount":        estimate,
		"refundAddress": p.Metadata["refund_address"],
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.ID == "" || out.PayinAddress == "" {
		return nil, errors.New("changehero: empty transaction")
	}

	amount := out.AmountExpectedFrom
	if amount == "" {
		amount = estimate
	}
	session := &Session{
		ProviderTxID: out.ID,
		PayAddress:   out.PayinAddress,
		PayAmount:    amount,
		PayCurrency:  from,
		Extra:        map[string]interface{}{"pay_currency": from, "pay_amount": amount},
	}
	if out.PayinExtraID != "" {
		session.Extra["payin_extra_id"] = out.PayinExtraID
	}
	return session, nil
}

func (s *ChangeHeroService) CheckStatus(ctx context.Context, id string) (Status, error) {
	var status string
	if err := s.call(ctx, "getStatus", map[string]string{"id": id}, &status); err != nil {
		return StatusPending, err
	}
	return changeHeroStatus(status), nil
}

func changeHeroStatus(status string) Status {
	switch status {
	case "finished":
		return StatusCompleted
	case "failed", "refunded", "expired", "overdue":
		return StatusFailed
	}
	return StatusPending
}
