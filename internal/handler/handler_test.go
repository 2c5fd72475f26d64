package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/sefazor/fanvault-backend/internal/service"
	"github.com/sefazor/fanvault-backend/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// testApp stands in for AuthMiddleware and authenticates every request as
// the given actor.
func testApp(actor models.Actor) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", actor.UserID)
		c.Locals("role", actor.Role)
		return c.Next()
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, models.Response) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out models.Response
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{service.ErrNotFound, fiber.StatusNotFound},
		{fmt.Errorf("get creator: %w", service.ErrNotFound), fiber.StatusNotFound},
		{service.ErrForbidden, fiber.StatusForbidden},
		{service.ErrUnauthorized, fiber.StatusUnauthorized},
		{service.ErrInvalidLogin, fiber.StatusUnauthorized},
		{service.ErrSweepLocked, fiber.StatusConflict},
		{service.ErrProviderFailed, fiber.StatusBadGateway},
		{service.ErrUserExists, fiber.StatusBadRequest},
		{service.ErrTokenExpired, fiber.StatusBadRequest},
		{service.ErrPayoutAlreadyPaid, fiber.StatusBadRequest},
		{service.ErrInsufficientCredits, fiber.StatusBadRequest},
		{service.ErrAlreadyUnlocked, fiber.StatusBadRequest},
		{errors.New("connection reset"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, statusFor(tt.err), tt.err.Error())
	}
}

func TestFail_HidesInternalErrors(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fail(c, zap.New(core), errors.New("pq: relation does not exist"))
	})

	status, body := doJSON(t, app, "GET", "/boom", nil)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error", body.Error)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "/boom", logs.All()[0].ContextMap()["path"])
}

// auth

type mockAuth struct{ mock.Mock }

func (m *mockAuth) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.AuthResponse)
	return resp, args.Error(1)
}

func (m *mockAuth) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.AuthResponse)
	return resp, args.Error(1)
}

func (m *mockAuth) VerifyEmail(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockAuth) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuth) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	return m.Called(ctx, req).Error(0)
}

func authApp(auth AuthAPI) *fiber.App {
	h := NewAuthHandler(auth, utils.NewValidator(), zap.NewNop())
	app := fiber.New()
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)
	app.Post("/verify", h.VerifyEmail)
	app.Post("/forgot-password", h.ForgotPassword)
	app.Post("/reset-password", h.ResetPassword)
	return app
}

func TestAuthHandler_Register(t *testing.T) {
	auth := new(mockAuth)
	req := models.RegisterRequest{FullName: "Luna", Email: "luna@example.com", Password: "password123"}
	auth.On("Register", mock.Anything, req).
		Return(&models.AuthResponse{Token: "jwt", User: models.User{ID: 1, Email: req.Email}}, nil)

	status, body := doJSON(t, authApp(auth), "POST", "/register", req)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.True(t, body.Success)
	auth.AssertExpectations(t)
}

func TestAuthHandler_RegisterDuplicate(t *testing.T) {
	auth := new(mockAuth)
	auth.On("Register", mock.Anything, mock.Anything).Return(nil, service.ErrUserExists)

	status, body := doJSON(t, authApp(auth), "POST", "/register",
		models.RegisterRequest{FullName: "Luna", Email: "luna@example.com", Password: "password123"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "User already exists", body.Error)
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	auth := new(mockAuth)
	app := authApp(auth)

	status, _ := doJSON(t, app, "POST", "/register", `{not json`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, "POST", "/register", models.RegisterRequest{FullName: "Luna", Email: "nope", Password: "short"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestAuthHandler_Login(t *testing.T) {
	auth := new(mockAuth)
	auth.On("Login", mock.Anything, models.LoginRequest{Email: "a@b.co", Password: "wrong"}).
		Return(nil, service.ErrInvalidLogin)

	status, body := doJSON(t, authApp(auth), "POST", "/login", models.LoginRequest{Email: "a@b.co", Password: "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.False(t, body.Success)
}

func TestAuthHandler_ForgotPasswordAlwaysOK(t *testing.T) {
	auth := new(mockAuth)
	auth.On("ForgotPassword", mock.Anything, "ghost@example.com").Return(nil)

	status, body := doJSON(t, authApp(auth), "POST", "/forgot-password", models.ForgotPasswordRequest{Email: "ghost@example.com"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, body.Success)
}

func TestAuthHandler_ResetPasswordExpired(t *testing.T) {
	auth := new(mockAuth)
	token := "ab12ab12ab12ab12ab12ab12ab12ab12ab12ab12ab12ab12ab12ab12ab12ab12"
	auth.On("ResetPassword", mock.Anything, models.ResetPasswordRequest{Token: token, NewPassword: "newpassword"}).
		Return(service.ErrTokenInvalid)

	status, _ := doJSON(t, authApp(auth), "POST", "/reset-password",
		models.ResetPasswordRequest{Token: token, NewPassword: "newpassword"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

// payouts

type mockPayouts struct {
	mock.Mock
	PayoutAPI
}

func (m *mockPayouts) PayCreatorPayout(ctx context.Context, actor models.Actor, id uint, txHash string) (*models.PayoutReceipt, error) {
	args := m.Called(ctx, actor, id, txHash)
	r, _ := args.Get(0).(*models.PayoutReceipt)
	return r, args.Error(1)
}

func (m *mockPayouts) RequestCreatorPayout(ctx context.Context, userID uint, req models.CreatePayoutRequest) (*models.PayoutRequest, error) {
	args := m.Called(ctx, userID, req)
	r, _ := args.Get(0).(*models.PayoutRequest)
	return r, args.Error(1)
}

func TestPayoutHandler_PayTwice(t *testing.T) {
	payouts := new(mockPayouts)
	admin := models.Actor{UserID: 1, Role: models.RoleAdmin}
	payouts.On("PayCreatorPayout", mock.Anything, admin, uint(9), "0xabc").
		Return(&models.PayoutReceipt{Kind: models.PayoutKindCreator, PayoutID: 9, Amount: decimal.NewFromInt(75)}, nil).Once()
	payouts.On("PayCreatorPayout", mock.Anything, admin, uint(9), "0xabc").
		Return(nil, service.ErrPayoutAlreadyPaid).Once()

	h := NewPayoutHandler(payouts, utils.NewValidator(), zap.NewNop())
	app := testApp(admin)
	app.Post("/admin/payouts/:id/pay", h.PayCreatorPayout)

	status, body := doJSON(t, app, "POST", "/admin/payouts/9/pay", models.PayPayoutRequest{TxHash: "0xabc"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, body.Success)

	status, body = doJSON(t, app, "POST", "/admin/payouts/9/pay", models.PayPayoutRequest{TxHash: "0xabc"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, service.ErrPayoutAlreadyPaid.Error(), body.Error)
	payouts.AssertExpectations(t)
}

func TestPayoutHandler_PayWithoutBody(t *testing.T) {
	payouts := new(mockPayouts)
	admin := models.Actor{UserID: 1, Role: models.RoleAdmin}
	payouts.On("PayCreatorPayout", mock.Anything, admin, uint(3), "").
		Return(&models.PayoutReceipt{PayoutID: 3}, nil)

	h := NewPayoutHandler(payouts, utils.NewValidator(), zap.NewNop())
	app := testApp(admin)
	app.Post("/admin/payouts/:id/pay", h.PayCreatorPayout)

	status, _ := doJSON(t, app, "POST", "/admin/payouts/3/pay", nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = doJSON(t, app, "POST", "/admin/payouts/abc/pay", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestPayoutHandler_RequestCreatorPayout(t *testing.T) {
	payouts := new(mockPayouts)
	req := models.CreatePayoutRequest{Amount: decimal.NewFromInt(60), Method: models.PayoutMethod("CRYPTO"), Destination: "0xwallet"}
	payouts.On("RequestCreatorPayout", mock.Anything, uint(5), mock.MatchedBy(func(r models.CreatePayoutRequest) bool {
		return r.Amount.Equal(req.Amount) && r.Destination == req.Destination
	})).Return(&models.PayoutRequest{ID: 1}, nil)

	h := NewPayoutHandler(payouts, utils.NewValidator(), zap.NewNop())
	app := testApp(models.Actor{UserID: 5, Role: models.RoleUser})
	app.Post("/creator/payouts", h.RequestCreatorPayout)

	status, _ := doJSON(t, app, "POST", "/creator/payouts", req)
	assert.Equal(t, fiber.StatusCreated, status)

	status, _ = doJSON(t, app, "POST", "/creator/payouts", map[string]string{"method": "CHEQUE", "destination": "x"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

// cron

type mockCron struct{ mock.Mock }

func (m *mockCron) RunCredits(ctx context.Context) (models.CreditSweepResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.CreditSweepResult), args.Error(1)
}

func (m *mockCron) ProcessBumps(ctx context.Context) (models.SweepResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.SweepResult), args.Error(1)
}

func (m *mockCron) ProcessRetargeting(ctx context.Context) (models.SweepResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.SweepResult), args.Error(1)
}

func (m *mockCron) ExpireFlashSales(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCron) Cleanup(ctx context.Context) (models.CleanupResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.CleanupResult), args.Error(1)
}

func TestCronHandler(t *testing.T) {
	cron := new(mockCron)
	cron.On("ProcessBumps", mock.Anything).Return(models.SweepResult{Processed: 3, Sent: 2, Skipped: 1}, nil)
	cron.On("ExpireFlashSales", mock.Anything).Return(int64(4), nil)
	cron.On("Cleanup", mock.Anything).Return(models.CleanupResult{}, service.ErrSweepLocked)

	h := NewCronHandler(cron, zap.NewNop())
	app := fiber.New()
	app.Get("/process-bumps", h.ProcessBumps)
	app.Get("/flash-sales", h.FlashSales)
	app.Get("/cleanup", h.Cleanup)

	status, body := doJSON(t, app, "GET", "/process-bumps", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, map[string]interface{}{"processed": float64(3), "sent": float64(2), "skipped": float64(1), "failed": float64(0)}, body.Data)

	status, body = doJSON(t, app, "GET", "/flash-sales", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, map[string]interface{}{"expired": float64(4)}, body.Data)

	status, _ = doJSON(t, app, "GET", "/cleanup", nil)
	assert.Equal(t, fiber.StatusConflict, status)
}

// payments

type mockPayments struct {
	mock.Mock
	PaymentAPI
}

func (m *mockPayments) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	return m.Called(ctx, string(payload), signature).Error(0)
}

func (m *mockPayments) HandleMidtransNotification(ctx context.Context, orderID string) error {
	return m.Called(ctx, orderID).Error(0)
}

func (m *mockPayments) CreateCheckout(ctx context.Context, userID uint, req models.CheckoutRequest) (*models.CheckoutSession, error) {
	args := m.Called(ctx, userID, req)
	s, _ := args.Get(0).(*models.CheckoutSession)
	return s, args.Error(1)
}

func TestPaymentHandler_StripeWebhookRawBody(t *testing.T) {
	payments := new(mockPayments)
	raw := `{"id":"evt_1","type":"checkout.session.completed"}`
	payments.On("HandleStripeWebhook", mock.Anything, raw, "t=1,v1=abc").Return(nil)
	payments.On("HandleStripeWebhook", mock.Anything, raw, "t=1,v1=bad").Return(fmt.Errorf("%w: signature", service.ErrBadInput))

	h := NewPaymentHandler(payments, utils.NewValidator(), zap.NewNop())
	app := fiber.New()
	app.Post("/webhook", h.HandleStripeWebhook)

	send := func(sig string) int {
		req := httptest.NewRequest("POST", "/webhook", bytes.NewBufferString(raw))
		if sig != "" {
			req.Header.Set("Stripe-Signature", sig)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, send("t=1,v1=abc"))
	assert.Equal(t, fiber.StatusBadRequest, send("t=1,v1=bad"))
	assert.Equal(t, fiber.StatusBadRequest, send(""))
}

func TestPaymentHandler_MidtransNotification(t *testing.T) {
	payments := new(mockPayments)
	payments.On("HandleMidtransNotification", mock.Anything, "FV-123").Return(nil)

	h := NewPaymentHandler(payments, utils.NewValidator(), zap.NewNop())
	app := fiber.New()
	app.Post("/notification", h.HandleMidtransNotification)

	status, _ := doJSON(t, app, "POST", "/notification", map[string]string{"order_id": "FV-123", "transaction_status": "settlement"})
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = doJSON(t, app, "POST", "/notification", map[string]string{"transaction_status": "settlement"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	payments.AssertNumberOfCalls(t, "HandleMidtransNotification", 1)
}

func TestPaymentHandler_Checkout(t *testing.T) {
	payments := new(mockPayments)
	payments.On("CreateCheckout", mock.Anything, uint(4), mock.MatchedBy(func(r models.CheckoutRequest) bool {
		return r.Provider == models.PaymentProvider("STRIPE") && r.PackageID == 2
	})).Return(&models.CheckoutSession{PaymentID: 11, URL: "https://checkout.stripe.com/c/pay"}, nil)

	h := NewPaymentHandler(payments, utils.NewValidator(), zap.NewNop())
	app := testApp(models.Actor{UserID: 4, Role: models.RoleUser})
	app.Post("/checkout", h.CreateCheckoutSession)

	status, body := doJSON(t, app, "POST", "/checkout", map[string]interface{}{"provider": "STRIPE", "type": "CREDITS", "package_id": 2})
	assert.Equal(t, fiber.StatusCreated, status)
	assert.True(t, body.Success)

	// CREDITS without a package fails validation
	status, _ = doJSON(t, app, "POST", "/checkout", map[string]interface{}{"provider": "STRIPE", "type": "CREDITS"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

// media

type mockMedia struct {
	mock.Mock
	MediaAPI
}

func (m *mockMedia) Unlock(ctx context.Context, userID, mediaID uint, messageID *uint) (*models.UnlockResult, *models.Media, error) {
	args := m.Called(ctx, userID, mediaID, messageID)
	r, _ := args.Get(0).(*models.UnlockResult)
	media, _ := args.Get(1).(*models.Media)
	return r, media, args.Error(2)
}

func (m *mockMedia) Upload(ctx context.Context, userID uint, req models.UploadMediaRequest, fileName string, size int64, body io.Reader) (*models.Media, error) {
	data, _ := io.ReadAll(body)
	args := m.Called(ctx, userID, req, fileName, size, string(data))
	media, _ := args.Get(0).(*models.Media)
	return media, args.Error(1)
}

func TestMediaHandler_Unlock(t *testing.T) {
	media := new(mockMedia)
	msgID := uint(44)
	media.On("Unlock", mock.Anything, uint(5), uint(8), &msgID).
		Return(&models.UnlockResult{Spent: models.SpendResult{Paid: 30, BalanceAfter: 70}}, &models.Media{ID: 8}, nil)
	media.On("Unlock", mock.Anything, uint(5), uint(9), (*uint)(nil)).
		Return(nil, nil, service.ErrAlreadyUnlocked)

	h := NewMediaHandler(media, utils.NewValidator(), zap.NewNop())
	app := testApp(models.Actor{UserID: 5, Role: models.RoleUser})
	app.Post("/media/:id/unlock", h.Unlock)

	status, body := doJSON(t, app, "POST", "/media/8/unlock", map[string]uint{"message_id": 44})
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, body.Success)

	status, _ = doJSON(t, app, "POST", "/media/9/unlock", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestMediaHandler_Upload(t *testing.T) {
	media := new(mockMedia)
	media.On("Upload", mock.Anything, uint(5), models.UploadMediaRequest{Title: "Beach", PriceCredits: 25, MimeType: "image/png"},
		"beach.png", int64(4), "\x89PNG").Return(&models.Media{ID: 1, Title: "Beach"}, nil)

	h := NewMediaHandler(media, utils.NewValidator(), zap.NewNop())
	app := testApp(models.Actor{UserID: 5, Role: models.RoleUser})
	app.Post("/creator/media", h.Upload)

	upload := func(contentType string) int {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		require.NoError(t, w.WriteField("title", "Beach"))
		require.NoError(t, w.WriteField("price_credits", "25"))
		part, err := w.CreatePart(textproto.MIMEHeader{
			"Content-Disposition": {`form-data; name="file"; filename="beach.png"`},
			"Content-Type":        {contentType},
		})
		require.NoError(t, err)
		_, _ = part.Write([]byte("\x89PNG"))
		require.NoError(t, w.Close())

		req := httptest.NewRequest("POST", "/creator/media", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusCreated, upload("image/png"))
	assert.Equal(t, fiber.StatusBadRequest, upload("application/pdf"))
	media.AssertNumberOfCalls(t, "Upload", 1)
}

func TestMediaHandler_UploadWithoutFile(t *testing.T) {
	h := NewMediaHandler(new(mockMedia), utils.NewValidator(), zap.NewNop())
	app := testApp(models.Actor{UserID: 5})
	app.Post("/creator/media", h.Upload)

	req := httptest.NewRequest("POST", "/creator/media", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
