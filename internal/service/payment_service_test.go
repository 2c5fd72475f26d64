package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/sefazor/fanvault-backend/internal/repository"
	"github.com/sefazor/fanvault-backend/pkg/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakePaymentStore struct {
	payments    map[uint]*models.Payment
	events      map[string]*models.WebhookEvent
	settlements []repository.Settlement
	forgotten   []uint
	completeErr error
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: map[uint]*models.Payment{}, events: map[string]*models.WebhookEvent{}}
}

func (f *fakePaymentStore) Create(ctx context.Context, p *models.Payment) error {
	p.ID = uint(len(f.payments) + 1)
	f.payments[p.ID] = p
	return nil
}

func (f *fakePaymentStore) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	if p, ok := f.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePaymentStore) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	for _, p := range f.payments {
		if p.Reference == reference {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePaymentStore) GetByProviderTx(ctx context.Context, provider models.PaymentProvider, txID string) (*models.Payment, error) {
	for _, p := range f.payments {
		if p.Provider == provider && p.ProviderTxID != nil && *p.ProviderTxID == txID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePaymentStore) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Payment, error) {
	return nil, nil
}

func (f *fakePaymentStore) AttachSession(ctx context.Context, id uint, txID, url, addr string, extra map[string]interface{}) error {
	p := f.payments[id]
	p.ProviderTxID = &txID
	p.PaymentURL = url
	p.PayAddress = addr
	return nil
}

func (f *fakePaymentStore) Fail(ctx context.Context, id uint, reason string, now time.Time) (bool, error) {
	p := f.payments[id]
	if p.Status != models.PaymentPending {
		return false, nil
	}
	p.Status = models.PaymentFailed
	return true, nil
}

func (f *fakePaymentStore) Complete(ctx context.Context, id uint, s repository.Settlement, now time.Time) (bool, error) {
	if f.completeErr != nil {
		return false, f.completeErr
	}
	p := f.payments[id]
	if p.Status != models.PaymentPending {
		return false, nil
	}
	p.Status = models.PaymentCompleted
	p.CompletedAt = &now
	f.settlements = append(f.settlements, s)
	return true, nil
}

func (f *fakePaymentStore) RecordWebhookEvent(ctx context.Context, ev *models.WebhookEvent) (bool, error) {
	key := ev.Provider + ":" + ev.ProviderEventID
	if _, ok := f.events[key]; ok {
		return false, nil
	}
	ev.ID = uint(len(f.events) + 1)
	f.events[key] = ev
	return true, nil
}

func (f *fakePaymentStore) MarkWebhookProcessed(ctx context.Context, id uint, note string, now time.Time) error {
	for _, ev := range f.events {
		if ev.ID == id {
			ev.ProcessedAt = &now
		}
	}
	return nil
}

func (f *fakePaymentStore) ForgetWebhookEvent(ctx context.Context, id uint) error {
	f.forgotten = append(f.forgotten, id)
	for k, ev := range f.events {
		if ev.ID == id {
			delete(f.events, k)
		}
	}
	return nil
}

type fakePackageStore struct {
	packages map[uint]*models.CreditPackage
}

func (f *fakePackageStore) GetByID(ctx context.Context, id uint) (*models.CreditPackage, error) {
	if p, ok := f.packages[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePackageStore) GetAll(ctx context.Context) ([]models.CreditPackage, error) {
	var out []models.CreditPackage
	for _, p := range f.packages {
		out = append(out, *p)
	}
	return out, nil
}

type fakeProvider struct {
	name   string
	sess   *payment.Session
	err    error
	status payment.Status
	params payment.CheckoutParams
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) CreateCheckout(ctx context.Context, p payment.CheckoutParams) (*payment.Session, error) {
	f.params = p
	return f.sess, f.err
}

func (f *fakeProvider) CheckStatus(ctx context.Context, providerTxID string) (payment.Status, error) {
	return f.status, nil
}

type fakeStripeParser struct {
	event *payment.StripeEvent
	err   error
}

func (f *fakeStripeParser) ParseWebhook(payload []byte, signature string) (*payment.StripeEvent, error) {
	return f.event, f.err
}

type fakeQR struct{}

func (fakeQR) DataURI(content string) (string, error) {
	return "data:image/png;base64,QR", nil
}

type paymentFixture struct {
	svc      *PaymentService
	payments *fakePaymentStore
	stripe   *fakeProvider
	crypto   *fakeProvider
	parser   *fakeStripeParser
}

func newPaymentFixture() *paymentFixture {
	users := newFakeUserStore()
	users.users[5] = &models.User{ID: 5, Email: "fan@example.com", FullName: "Fan"}

	f := &paymentFixture{
		payments: newFakePaymentStore(),
		stripe:   &fakeProvider{name: "STRIPE", sess: &payment.Session{ProviderTxID: "cs_1", URL: "https://checkout.stripe.test/cs_1"}},
		crypto:   &fakeProvider{name: "CHANGEHERO", sess: &payment.Session{ProviderTxID: "ch_1", PayAddress: "bc1qxyz", PayAmount: "0.0004", PayCurrency: "btc"}, status: payment.StatusCompleted},
		parser:   &fakeStripeParser{},
	}
	creators := newFakeCreatorStore()
	f.svc = NewPaymentService(PaymentDeps{
		Payments: f.payments,
		Packages: &fakePackageStore{packages: map[uint]*models.CreditPackage{
			2: {ID: 2, Name: "550 Credits", Credits: 500, BonusCredits: 50, Price: d("49.99")},
		}},
		Creators:   creators,
		Users:      users,
		Commission: NewCommissionService(creators, testCommissionConfig()),
		Providers:  []payment.Provider{f.stripe, f.crypto},
		Stripe:     f.parser,
		QR:         fakeQR{},
	}, PaymentConfig{FrontendURL: "https://fanvault.test", CreditExpiry: 365 * 24 * time.Hour}, zap.NewNop())
	return f
}

func creditsCheckout(provider models.PaymentProvider) models.CheckoutRequest {
	return models.CheckoutRequest{Provider: provider, Type: models.PaymentCredits, PackageID: 2}
}

func TestCreateCheckout_Stripe(t *testing.T) {
	f := newPaymentFixture()

	sess, err := f.svc.CreateCheckout(context.Background(), 5, creditsCheckout(models.ProviderStripe))
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.stripe.test/cs_1", sess.URL)
	assert.Equal(t, models.PaymentPending, sess.Status)
	assert.True(t, f.stripe.params.Amount.Equal(d("49.99")))
	assert.Equal(t, sess.Reference, f.stripe.params.Reference)
	assert.Equal(t, "https://fanvault.test/payment/success", f.stripe.params.SuccessURL)

	p := f.payments.payments[sess.PaymentID]
	require.NotNil(t, p.ProviderTxID)
	assert.Equal(t, "cs_1", *p.ProviderTxID)
	id, ok := p.MetaUint("package_id")
	assert.True(t, ok)
	assert.Equal(t, uint(2), id)
}

func TestCreateCheckout_CryptoGetsQRCode(t *testing.T) {
	f := newPaymentFixture()

	sess, err := f.svc.CreateCheckout(context.Background(), 5, creditsCheckout(models.ProviderChangeHero))
	require.NoError(t, err)
	assert.Equal(t, "bc1qxyz", sess.PayAddress)
	assert.Equal(t, "data:image/png;base64,QR", sess.PayQRCode)
}

func TestCreateCheckout_ProviderFailureMarksPaymentFailed(t *testing.T) {
	f := newPaymentFixture()
	f.stripe.err = errors.New("card declined")

	_, err := f.svc.CreateCheckout(context.Background(), 5, creditsCheckout(models.ProviderStripe))
	assert.ErrorIs(t, err, ErrProviderFailed)
	require.Len(t, f.payments.payments, 1)
	assert.Equal(t, models.PaymentFailed, f.payments.payments[1].Status)
}

func TestCreateCheckout_UnknownProvider(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.CreateCheckout(context.Background(), 5, creditsCheckout(models.ProviderGuardarian))
	assert.ErrorIs(t, err, ErrBadInput)
	assert.Empty(t, f.payments.payments)
}

func TestCreateCheckout_ManualHasNoSession(t *testing.T) {
	f := newPaymentFixture()

	sess, err := f.svc.CreateCheckout(context.Background(), 5, creditsCheckout(models.ProviderManual))
	require.NoError(t, err)
	assert.Empty(t, sess.URL)
	assert.Nil(t, f.payments.payments[sess.PaymentID].ProviderTxID)
}

func TestHandleStripeWebhook_CompletesOnce(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	sess, err := f.svc.CreateCheckout(ctx, 5, creditsCheckout(models.ProviderStripe))
	require.NoError(t, err)

	f.parser.event = &payment.StripeEvent{ID: "evt_1", Type: "checkout.session.completed", SessionID: "cs_1", Status: payment.StatusCompleted}
	require.NoError(t, f.svc.HandleStripeWebhook(ctx, []byte(`{}`), "sig"))
	require.NoError(t, f.svc.HandleStripeWebhook(ctx, []byte(`{}`), "sig"))

	assert.Equal(t, models.PaymentCompleted, f.payments.payments[sess.PaymentID].Status)
	require.Len(t, f.payments.settlements, 1)

	grants := f.payments.settlements[0].Grants
	require.Len(t, grants, 2)
	assert.Equal(t, int64(500), grants[0].Amount)
	assert.Equal(t, models.CreditPaid, grants[0].CreditType)
	assert.Equal(t, int64(50), grants[1].Amount)
	assert.Equal(t, models.CreditBonus, grants[1].CreditType)
	assert.Equal(t, "payment:"+sess.Reference, grants[0].Reference)
}

func TestHandleStripeWebhook_ErrorForgetsEvent(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	_, err := f.svc.CreateCheckout(ctx, 5, creditsCheckout(models.ProviderStripe))
	require.NoError(t, err)

	f.payments.completeErr = errors.New("connection reset")
	f.parser.event = &payment.StripeEvent{ID: "evt_2", SessionID: "cs_1", Status: payment.StatusCompleted}
	assert.Error(t, f.svc.HandleStripeWebhook(ctx, []byte(`{}`), "sig"))
	assert.Equal(t, []uint{1}, f.payments.forgotten)

	// The retried delivery is processed.
	f.payments.completeErr = nil
	require.NoError(t, f.svc.HandleStripeWebhook(ctx, []byte(`{}`), "sig"))
	assert.Len(t, f.payments.settlements, 1)
}

func TestHandleStripeWebhook_BadSignature(t *testing.T) {
	f := newPaymentFixture()
	f.parser.err = payment.ErrInvalidSignature

	err := f.svc.HandleStripeWebhook(context.Background(), []byte(`{}`), "bad")
	assert.ErrorIs(t, err, ErrBadInput)
	assert.Empty(t, f.payments.events)
}

func TestPollStatus(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	owner := models.Actor{UserID: 5, Role: models.RoleUser}

	sess, err := f.svc.CreateCheckout(ctx, 5, creditsCheckout(models.ProviderChangeHero))
	require.NoError(t, err)

	_, err = f.svc.PollStatus(ctx, models.Actor{UserID: 6, Role: models.RoleUser}, sess.PaymentID)
	assert.ErrorIs(t, err, ErrForbidden)

	p, err := f.svc.PollStatus(ctx, owner, sess.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, p.Status)
}

func TestAdminConfirm(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	manual, err := f.svc.CreateCheckout(ctx, 5, creditsCheckout(models.ProviderManual))
	require.NoError(t, err)
	stripe, err := f.svc.CreateCheckout(ctx, 5, creditsCheckout(models.ProviderStripe))
	require.NoError(t, err)

	_, err = f.svc.AdminConfirm(ctx, models.Actor{UserID: 5, Role: models.RoleUser}, manual.PaymentID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.AdminConfirm(ctx, admin, stripe.PaymentID)
	assert.ErrorIs(t, err, ErrBadInput)

	p, err := f.svc.AdminConfirm(ctx, admin, manual.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, p.Status)
}

func TestHandleMidtransNotification_ReadsStatusFromProvider(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	midtrans := &fakeProvider{name: "MIDTRANS", sess: &payment.Session{ProviderTxID: "order-1", URL: "https://app.midtrans.test/snap"}, status: payment.StatusFailed}
	f.svc.providers[models.ProviderMidtrans] = midtrans

	sess, err := f.svc.CreateCheckout(ctx, 5, creditsCheckout(models.ProviderMidtrans))
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.HandleMidtransNotification(ctx, ""), ErrBadInput)
	assert.ErrorIs(t, f.svc.HandleMidtransNotification(ctx, "unknown"), ErrNotFound)

	require.NoError(t, f.svc.HandleMidtransNotification(ctx, sess.Reference))
	assert.Equal(t, models.PaymentFailed, f.payments.payments[sess.PaymentID].Status)

	// terminal rows are not re-read
	midtrans.status = payment.StatusCompleted
	require.NoError(t, f.svc.HandleMidtransNotification(ctx, sess.Reference))
	assert.Equal(t, models.PaymentFailed, f.payments.payments[sess.PaymentID].Status)
}

func TestHandleMidtransNotification_WrongProvider(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	sess, err := f.svc.CreateCheckout(ctx, 5, creditsCheckout(models.ProviderStripe))
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.HandleMidtransNotification(ctx, sess.Reference), ErrBadInput)
}

func TestCreateCheckout_ServerPricedCurrencyIsFixed(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	req := creditsCheckout(models.ProviderStripe)
	req.Currency = "mxn"
	_, err := f.svc.CreateCheckout(ctx, 5, req)
	assert.ErrorIs(t, err, ErrBadInput)
	assert.Empty(t, f.payments.payments)

	req.Currency = "usd"
	sess, err := f.svc.CreateCheckout(ctx, 5, req)
	require.NoError(t, err)
	assert.Equal(t, "USD", f.stripe.params.Currency)
	assert.Equal(t, "USD", f.payments.payments[sess.PaymentID].Currency)
}

func TestCreateCheckout_TipTakesClientCurrency(t *testing.T) {
	f := newPaymentFixture()
	creators := f.svc.creators.(*fakeCreatorStore)
	creators.creators[3] = &models.Creator{ID: 3, UserID: 30, Slug: "nova", DisplayName: "Nova"}

	_, err := f.svc.CreateCheckout(context.Background(), 5, models.CheckoutRequest{
		Provider: models.ProviderStripe, Type: models.PaymentTip, CreatorID: 3, Amount: d("5"), Currency: "eur",
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR", f.stripe.params.Currency)
}
