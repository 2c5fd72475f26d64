package server

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/fanvault-backend/internal/handler"
	"github.com/sefazor/fanvault-backend/pkg/jwt"
	"github.com/sefazor/fanvault-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// None of the requests below reach a service, so the handlers are built
// without one.
func newTestRouter(t *testing.T) (*fiber.App, *jwt.Manager) {
	t.Helper()
	log := zap.NewNop()
	v := utils.NewValidator()
	tokens := jwt.NewManager("secret")

	app := New(Config{AllowOrigins: "*", CronSecret: "cron"}, tokens, Handlers{
		Auth:    handler.NewAuthHandler(nil, v, log),
		User:    handler.NewUserHandler(nil, v, log),
		Credit:  handler.NewCreditHandler(nil, log),
		Payment: handler.NewPaymentHandler(nil, v, log),
		Payout:  handler.NewPayoutHandler(nil, v, log),
		Cron:    handler.NewCronHandler(nil, log),
		Creator: handler.NewCreatorHandler(nil, nil, v, log),
		Media:   handler.NewMediaHandler(nil, v, log),
		Message: handler.NewMessageHandler(nil, v, log),
		Script:  handler.NewScriptHandler(nil, v, log),
	})
	return app, tokens
}

func TestRouter_Health(t *testing.T) {
	app, _ := newTestRouter(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRouter_Metrics(t *testing.T) {
	app, _ := newTestRouter(t)

	_, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "fanvault_http_requests_total")
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	app, _ := newTestRouter(t)

	for _, route := range [][2]string{
		{"GET", "/api/user/profile"},
		{"POST", "/api/payments/checkout"},
		{"POST", "/api/media/1/unlock"},
		{"POST", "/api/admin/payouts/1/pay"},
		{"POST", "/api/chatter/suggestions"},
	} {
		resp, err := app.Test(httptest.NewRequest(route[0], route[1], nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, route[1])
	}
}

func TestRouter_CronNeedsSecret(t *testing.T) {
	app, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/cron/process-bumps", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_RoleGroups(t *testing.T) {
	app, tokens := newTestRouter(t)
	token, err := tokens.GenerateToken(3, "fan@example.com", "USER")
	require.NoError(t, err)

	for _, path := range []string{"/api/admin/payouts/1/pay", "/api/chatter/suggestions"} {
		req := httptest.NewRequest("POST", path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, path)
	}
}
