package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeHero_CreateCheckout(t *testing.T) {
	var methods []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("api-key"))

		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		methods = append(methods, req.Method)

		switch req.Method {
		case "getExchangeAmount":
			w.Write([]byte(`{"jsonrpc":"2.0","id":"x","result":"0.0004"}`))
		case "createTransaction":
			w.Write([]byte(`{"jsonrpc":"2.0","id":"x","result":{"id":"ex1","payinAddress":"bc1qaddr","amountExpectedFrom":"0.00041"}}`))
		}
	}))
	defer srv.Close()

	s := NewChangeHeroService("key", "0xplatform", "usdterc20", time.Second)
	s.baseURL = srv.URL

	sess, err := s.CreateCheckout(context.Background(), CheckoutParams{
		Reference: "ref",
		Amount:    decimal.NewFromInt(25),
		Metadata:  map[string]string{"pay_currency": "BTC"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"getExchangeAmount", "createTransaction"}, methods)
	assert.Equal(t, "ex1", sess.ProviderTxID)
	assert.Equal(t, "bc1qaddr", sess.PayAddress)
	assert.Equal(t, "0.00041", sess.PayAmount)
	assert.Equal(t, "btc", sess.PayCurrency)
}

func TestChangeHero_RPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":"x","error":{"code":-32600,"message":"invalid pair"}}`))
	}))
	defer srv.Close()

	s := NewChangeHeroService("key", "0xplatform", "usdterc20", time.Second)
	s.baseURL = srv.URL

	_, err := s.CheckStatus(context.Background(), "ex1")
	assert.EqualError(t, err, "changehero getStatus: invalid pair")
}

func TestGuardarian_CreateAndCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/transaction":
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "ref-1", body["external_partner_link_id"])
			w.Write([]byte(`{"id":4815,"redirect_url":"https://guardarian.com/pay/4815"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/transaction/4815":
			w.Write([]byte(`{"status":"finished"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s := NewGuardarianService("key", "0xplatform", "USDT", time.Second)
	s.baseURL = srv.URL

	sess, err := s.CreateCheckout(context.Background(), CheckoutParams{Reference: "ref-1", Amount: decimal.NewFromInt(50), Currency: "EUR"})
	require.NoError(t, err)
	assert.Equal(t, "4815", sess.ProviderTxID)
	assert.Equal(t, "https://guardarian.com/pay/4815", sess.URL)

	status, err := s.CheckStatus(context.Background(), "4815")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)
}

func TestNotConfigured(t *testing.T) {
	_, err := NewGuardarianService("", "", "", time.Second).CreateCheckout(context.Background(), CheckoutParams{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewChangeHeroService("", "", "", time.Second).CheckStatus(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewMidtransService("", false, decimal.Zero).CreateCheckout(context.Background(), CheckoutParams{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestStatusMapping(t *testing.T) {
	assert.Equal(t, StatusCompleted, midtransStatus("settlement", ""))
	assert.Equal(t, StatusCompleted, midtransStatus("capture", "accept"))
	assert.Equal(t, StatusPending, midtransStatus("capture", "challenge"))
	assert.Equal(t, StatusFailed, midtransStatus("expire", ""))
	assert.Equal(t, StatusPending, midtransStatus("pending", ""))

	assert.Equal(t, StatusCompleted, changeHeroStatus("finished"))
	assert.Equal(t, StatusPending, changeHeroStatus("exchanging"))
	assert.Equal(t, StatusFailed, changeHeroStatus("refunded"))

	assert.Equal(t, StatusFailed, guardarianStatus("expired"))
	assert.Equal(t, StatusPending, guardarianStatus("waiting"))
}

func TestStripe_ParseWebhookRejectsBadSignature(t *testing.T) {
	s := NewStripeService("sk_test", "whsec_test")
	_, err := s.ParseWebhook([]byte(`{"id":"evt_1"}`), "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestMidtrans_SnapRequestChargesRupiah(t *testing.T) {
	m := NewMidtransService("server-key", false, decimal.NewFromInt(16000))

	req, err := m.snapRequest(CheckoutParams{Reference: "ref-1", Amount: decimal.RequireFromString("9.99"), Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, "ref-1", req.TransactionDetails.OrderID)
	assert.Equal(t, int64(159840), req.TransactionDetails.GrossAmt)

	req, err = m.snapRequest(CheckoutParams{Reference: "ref-2", Amount: decimal.NewFromInt(150000), Currency: "idr"})
	require.NoError(t, err)
	assert.Equal(t, int64(150000), req.TransactionDetails.GrossAmt)

	_, err = m.snapRequest(CheckoutParams{Amount: decimal.NewFromInt(10), Currency: "EUR"})
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)
}

func TestMidtrans_NoRateRejectsUSD(t *testing.T) {
	m := NewMidtransService("server-key", false, decimal.Zero)
	_, err := m.snapRequest(CheckoutParams{Amount: decimal.RequireFromString("9.99"), Currency: "USD"})
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)
}
