package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sefazor/fanvault-backend/internal/metrics"
	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/sefazor/fanvault-backend/internal/repository"
	"github.com/sefazor/fanvault-backend/pkg/payment"
	"github.com/sefazor/fanvault-backend/pkg/qrcode"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type PaymentConfig struct {
	FrontendURL     string
	CreditExpiry    time.Duration
	ProviderTimeout time.Duration
}

// StripeWebhooks verifies and decodes Stripe webhook deliveries.
type StripeWebhooks interface {
	ParseWebhook(payload []byte, signature string) (*payment.StripeEvent, error)
}

type PaymentService struct {
	payments   PaymentStore
	packages   PackageStore
	subs       SubscriptionStore
	media      MediaStore
	creators   CreatorStore
	users      UserStore
	commission *CommissionService
	providers  map[models.PaymentProvider]payment.Provider
	stripe     StripeWebhooks
	qr         QRGenerator
	cfg        PaymentConfig
	log        *zap.Logger
	now        func() time.Time
}

type PaymentDeps struct {
	Payments   PaymentStore
	Packages   PackageStore
	Subs       SubscriptionStore
	Media      MediaStore
	Creators   CreatorStore
	Users      UserStore
	Commission *CommissionService
	Providers  []payment.Provider
	Stripe     StripeWebhooks
	QR         QRGenerator
}

func NewPaymentService(deps PaymentDeps, cfg PaymentConfig, log *zap.Logger) *PaymentService {
	providers := make(map[models.PaymentProvider]payment.Provider, len(deps.Providers))
	for _, p := range deps.Providers {
		providers[models.PaymentProvider(p.Name())] = p
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 15 * time.Second
	}
	return &PaymentService{
		payments:   deps.Payments,
		packages:   deps.Packages,
		subs:       deps.Subs,
		media:      deps.Media,
		creators:   deps.Creators,
		users:      deps.Users,
		commission: deps.Commission,
		providers:  providers,
		stripe:     deps.Stripe,
		qr:         deps.QR,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

type pricedCheckout struct {
	amount      decimal.Decimal
	currency    string
	description string
	creatorID   *uint
	metadata    map[string]interface{}
}

func (s *PaymentService) price(ctx context.Context, userID uint, req models.CheckoutRequest) (*pricedCheckout, error) {
	out := &pricedCheckout{currency: "USD", metadata: map[string]interface{}{}}

	switch req.Type {
	case models.PaymentCredits:
		pkg, err := s.packages.GetByID(ctx, req.PackageID)
		if err != nil {
			return nil, notFound(err)
		}
		out.amount = pkg.Price
		out.description = fmt.Sprintf("%s (%d credits)", pkg.Name, pkg.Credits+pkg.BonusCredits)
		out.metadata["package_id"] = pkg.ID

	case models.PaymentSubscription:
		plan, err := s.subs.GetPlan(ctx, req.PlanID)
		if err != nil {
			return nil, notFound(err)
		}
		out.amount = plan.Price
		out.currency = plan.Currency
		out.description = plan.Name
		out.creatorID = &plan.CreatorID
		out.metadata["plan_id"] = plan.ID

	case models.PaymentMediaPurchase, models.PaymentPPVUnlock:
		media, err := s.media.GetByID(ctx, req.MediaID)
		if err != nil {
			return nil, notFound(err)
		}
		if !media.IsPPV() {
			return nil, fmt.Errorf("%w: media is not for sale", ErrBadInput)
		}
		owned, err := s.media.HasPurchase(ctx, userID, media.ID)
		if err != nil {
			return nil, err
		}
		if owned {
			return nil, ErrAlreadyUnlocked
		}
		sale, err := s.media.ActiveFlashSale(ctx, media.ID, s.now())
		if err != nil {
			return nil, err
		}
		credits := sale.Apply(media.PriceCredits)
		out.amount = s.commission.CreditsToUSD(credits)
		out.description = media.Title
		out.creatorID = &media.CreatorID
		out.metadata["media_id"] = media.ID
		out.metadata["credits"] = credits

	case models.PaymentTip:
		if req.CreatorID == 0 || !req.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: tip needs a creator and an amount", ErrBadInput)
		}
		creator, err := s.creators.GetByID(ctx, req.CreatorID)
		if err != nil {
			return nil, notFound(err)
		}
		out.amount = req.Amount.Round(2)
		out.description = "Tip for " + creator.DisplayName
		out.creatorID = &creator.ID
		out.metadata["creator_id"] = creator.ID

	default:
		if !req.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: amount must be positive", ErrBadInput)
		}
		out.amount = req.Amount.Round(2)
		out.description = "FanVault payment"
	}

	if req.Currency == "" {
		return out, nil
	}
	currency := strings.ToUpper(req.Currency)
	switch req.Type {
	case models.PaymentTip, models.PaymentOther:
		out.currency = currency
	default:
		// packages, plans and media carry their own currency
		if currency != strings.ToUpper(out.currency) {
			return nil, fmt.Errorf("%w: %s checkouts are priced in %s", ErrBadInput, req.Type, out.currency)
		}
	}
	return out, nil
}

// CreateCheckout records a PENDING payment and opens the provider session.
// MANUAL and PAYGATE payments have no session; an admin confirms them.
func (s *PaymentService) CreateCheckout(ctx context.Context, userID uint, req models.CheckoutRequest) (*models.CheckoutSession, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}

	manual := req.Provider == models.ProviderManual || req.Provider == models.ProviderPayGate
	provider, ok := s.providers[req.Provider]
	if !manual && !ok {
		return nil, fmt.Errorf("%w: provider %s is not available", ErrBadInput, req.Provider)
	}

	priced, err := s.price(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	p := &models.Payment{
		Reference: uuid.NewString(),
		Provider:  req.Provider,
		Status:    models.PaymentPending,
		Type:      req.Type,
		Amount:    priced.amount,
		Currency:  priced.currency,
		UserID:    user.ID,
		CreatorID: priced.creatorID,
		Metadata:  datatypes.JSONMap(priced.metadata),
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	metrics.RecordPayment(string(p.Provider), string(models.PaymentPending))

	out := &models.CheckoutSession{
		PaymentID: p.ID,
		Reference: p.Reference,
		Provider:  string(p.Provider),
		Status:    p.Status,
	}
	if manual {
		return out, nil
	}

	pctx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()

	sess, err := provider.CreateCheckout(pctx, payment.CheckoutParams{
		Reference:     p.Reference,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Description:   priced.description,
		CustomerEmail: user.Email,
		CustomerName:  user.FullName,
		SuccessURL:    s.cfg.FrontendURL + "/payment/success",
		CancelURL:     s.cfg.FrontendURL + "/payment/cancel",
		Metadata: map[string]string{
			"user_id":      strconv.FormatUint(uint64(user.ID), 10),
			"payment_type": string(p.Type),
		},
	})
	if err != nil {
		s.log.Error("provider checkout failed",
			zap.String("provider", string(p.Provider)),
			zap.Uint("payment_id", p.ID),
			zap.Error(err))
		if _, ferr := s.payments.Fail(ctx, p.ID, err.Error(), s.now()); ferr != nil {
			s.log.Error("mark payment failed", zap.Uint("payment_id", p.ID), zap.Error(ferr))
		}
		metrics.RecordPayment(string(p.Provider), string(models.PaymentFailed))
		if errors.Is(err, payment.ErrUnsupportedCurrency) {
			return nil, fmt.Errorf("%w: %v", ErrBadInput, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	if err := s.payments.AttachSession(ctx, p.ID, sess.ProviderTxID, sess.URL, sess.PayAddress, sess.Extra); err != nil {
		return nil, fmt.Errorf("attach session: %w", err)
	}

	out.URL = sess.URL
	out.PayAddress = sess.PayAddress
	out.PayAmount = sess.PayAmount
	if sess.PayAddress != "" && s.qr != nil {
		uri, err := s.qr.DataURI(qrcode.PayURI(sess.PayCurrency, sess.PayAddress, sess.PayAmount))
		if err != nil {
			s.log.Warn("qr code generation failed", zap.Uint("payment_id", p.ID), zap.Error(err))
		} else {
			out.PayQRCode = uri
		}
	}
	return out, nil
}

// settlement builds the side effects of a completed payment from its type
// and metadata.
func (s *PaymentService) settlement(ctx context.Context, p *models.Payment) (repository.Settlement, error) {
	var st repository.Settlement
	reference := "payment:" + p.Reference

	switch p.Type {
	case models.PaymentCredits:
		id, ok := p.MetaUint("package_id")
		if !ok {
			return st, fmt.Errorf("payment %d: missing package_id", p.ID)
		}
		pkg, err := s.packages.GetByID(ctx, id)
		if err != nil {
			return st, fmt.Errorf("load package %d: %w", id, err)
		}
		expires := s.now().Add(s.cfg.CreditExpiry)
		st.Grants = append(st.Grants, repository.GrantParams{
			Amount:     pkg.Credits,
			Type:       models.CreditTxPurchase,
			CreditType: models.CreditPaid,
			ExpiresAt:  &expires,
			Reference:  reference,
		})
		if pkg.BonusCredits > 0 {
			st.Grants = append(st.Grants, repository.GrantParams{
				Amount:     pkg.BonusCredits,
				Type:       models.CreditTxBonus,
				CreditType: models.CreditBonus,
				ExpiresAt:  &expires,
				Reference:  reference,
			})
		}

	case models.PaymentSubscription:
		id, ok := p.MetaUint("plan_id")
		if !ok {
			return st, fmt.Errorf("payment %d: missing plan_id", p.ID)
		}
		plan, err := s.subs.GetPlan(ctx, id)
		if err != nil {
			return st, fmt.Errorf("load plan %d: %w", id, err)
		}
		st.Subscription = &repository.SubscriptionActivation{
			CreatorID: plan.CreatorID,
			PlanID:    plan.ID,
			Interval:  plan.Interval,
			TrialDays: plan.TrialDays,
		}
		split, err := s.splitFor(ctx, plan.CreatorID, p.Amount, models.SourceSubscription, nil)
		if err != nil {
			return st, err
		}
		st.Split = split

	case models.PaymentMediaPurchase, models.PaymentPPVUnlock:
		id, ok := p.MetaUint("media_id")
		if !ok {
			return st, fmt.Errorf("payment %d: missing media_id", p.ID)
		}
		media, err := s.media.GetByID(ctx, id)
		if err != nil {
			return st, fmt.Errorf("load media %d: %w", id, err)
		}
		credits, _ := p.MetaUint("credits")
		st.MediaPurchase = &models.MediaPurchase{
			MediaID:   media.ID,
			CreatorID: media.CreatorID,
			Credits:   int64(credits),
		}
		split, err := s.splitFor(ctx, media.CreatorID, p.Amount, models.SourcePPV, nil)
		if err != nil {
			return st, err
		}
		st.Split = split

	case models.PaymentTip:
		id, ok := p.MetaUint("creator_id")
		if !ok {
			return st, fmt.Errorf("payment %d: missing creator_id", p.ID)
		}
		split, err := s.splitFor(ctx, id, p.Amount, models.SourceTip, nil)
		if err != nil {
			return st, err
		}
		st.Split = split
	}

	return st, nil
}

func (s *PaymentService) splitFor(ctx context.Context, creatorID uint, gross decimal.Decimal, source models.EarningSource, chatter *models.Chatter) (*models.RevenueSplit, error) {
	creator, err := s.creators.GetByID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("load creator %d: %w", creatorID, err)
	}
	var agency *models.Agency
	if creator.AgencyID != nil {
		agency, err = s.creators.GetAgency(ctx, *creator.AgencyID)
		if err != nil {
			return nil, fmt.Errorf("load agency %d: %w", *creator.AgencyID, err)
		}
	}
	return s.commission.Split(gross, source, creator, agency, chatter), nil
}

func (s *PaymentService) complete(ctx context.Context, p *models.Payment) error {
	st, err := s.settlement(ctx, p)
	if err != nil {
		return err
	}
	applied, err := s.payments.Complete(ctx, p.ID, st, s.now())
	if err != nil {
		return fmt.Errorf("complete payment %d: %w", p.ID, err)
	}
	if applied {
		metrics.RecordPayment(string(p.Provider), string(models.PaymentCompleted))
		for _, g := range st.Grants {
			metrics.RecordCredits(string(g.Type), g.Amount)
		}
		s.log.Info("payment completed",
			zap.Uint("payment_id", p.ID),
			zap.String("provider", string(p.Provider)),
			zap.String("type", string(p.Type)))
	}
	return nil
}

func (s *PaymentService) fail(ctx context.Context, p *models.Payment, reason string) error {
	applied, err := s.payments.Fail(ctx, p.ID, reason, s.now())
	if err != nil {
		return fmt.Errorf("fail payment %d: %w", p.ID, err)
	}
	if applied {
		metrics.RecordPayment(string(p.Provider), string(models.PaymentFailed))
		s.log.Info("payment failed", zap.Uint("payment_id", p.ID), zap.String("reason", reason))
	}
	return nil
}

func (s *PaymentService) apply(ctx context.Context, p *models.Payment, status payment.Status, reason string) error {
	if p.IsTerminal() {
		return nil
	}
	switch status {
	case payment.StatusCompleted:
		return s.complete(ctx, p)
	case payment.StatusFailed:
		return s.fail(ctx, p, reason)
	}
	return nil
}

// HandleStripeWebhook verifies, deduplicates and applies a Stripe delivery.
// A processing error forgets the event so Stripe's retry is handled again.
func (s *PaymentService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.stripe == nil {
		return payment.ErrNotConfigured
	}
	ev, err := s.stripe.ParseWebhook(payload, signature)
	if err != nil {
		metrics.RecordWebhook(string(models.ProviderStripe), "invalid")
		return fmt.Errorf("%w: %v", ErrBadInput, err)
	}
	if ev.SessionID == "" {
		metrics.RecordWebhook(string(models.ProviderStripe), "ignored")
		return nil
	}

	event := &models.WebhookEvent{
		Provider:        string(models.ProviderStripe),
		ProviderEventID: ev.ID,
		EventType:       ev.Type,
		Payload:         datatypes.JSON(payload),
	}
	fresh, err := s.payments.RecordWebhookEvent(ctx, event)
	if err != nil {
		return fmt.Errorf("record webhook event: %w", err)
	}
	if !fresh {
		metrics.RecordWebhook(string(models.ProviderStripe), "duplicate")
		return nil
	}

	if err := s.applyStripeEvent(ctx, ev); err != nil {
		metrics.RecordWebhook(string(models.ProviderStripe), "error")
		if ferr := s.payments.ForgetWebhookEvent(ctx, event.ID); ferr != nil {
			s.log.Error("forget webhook event", zap.Uint("event_id", event.ID), zap.Error(ferr))
		}
		return err
	}

	metrics.RecordWebhook(string(models.ProviderStripe), "processed")
	return s.payments.MarkWebhookProcessed(ctx, event.ID, "", s.now())
}

func (s *PaymentService) applyStripeEvent(ctx context.Context, ev *payment.StripeEvent) error {
	p, err := s.payments.GetByProviderTx(ctx, models.ProviderStripe, ev.SessionID)
	if err != nil && ev.Reference != "" {
		p, err = s.payments.GetByReference(ctx, ev.Reference)
	}
	if err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			s.log.Warn("stripe event for unknown session", zap.String("session_id", ev.SessionID))
			return nil
		}
		return err
	}
	return s.apply(ctx, p, ev.Status, ev.Type)
}

// HandleMidtransNotification re-reads the order from Midtrans instead of
// trusting the notification body.
func (s *PaymentService) HandleMidtransNotification(ctx context.Context, orderID string) error {
	if orderID == "" {
		return ErrBadInput
	}
	p, err := s.payments.GetByReference(ctx, orderID)
	if err != nil {
		return notFound(err)
	}
	if p.Provider != models.ProviderMidtrans {
		return ErrBadInput
	}
	if err := s.refresh(ctx, p); err != nil {
		metrics.RecordWebhook(string(models.ProviderMidtrans), "error")
		return err
	}
	metrics.RecordWebhook(string(models.ProviderMidtrans), "processed")
	return nil
}

func (s *PaymentService) refresh(ctx context.Context, p *models.Payment) error {
	if p.IsTerminal() || p.ProviderTxID == nil {
		return nil
	}
	checker, ok := s.providers[p.Provider].(payment.StatusChecker)
	if !ok {
		return nil
	}

	pctx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()

	status, err := checker.CheckStatus(pctx, *p.ProviderTxID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	return s.apply(ctx, p, status, "provider reported "+string(status))
}

// PollStatus refreshes a PENDING payment from its provider and returns the
// current row.
func (s *PaymentService) PollStatus(ctx context.Context, actor models.Actor, paymentID uint) (*models.Payment, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, notFound(err)
	}
	if !Authorize(actor, ActionOwnResource, Resource{OwnerID: p.UserID}) {
		return nil, ErrForbidden
	}

	if err := s.refresh(ctx, p); err != nil {
		s.log.Warn("payment status poll failed", zap.Uint("payment_id", p.ID), zap.Error(err))
		return p, nil
	}
	p, err = s.payments.GetByID(ctx, paymentID)
	return p, notFound(err)
}

// AdminConfirm completes a MANUAL or PAYGATE payment.
func (s *PaymentService) AdminConfirm(ctx context.Context, actor models.Actor, paymentID uint) (*models.Payment, error) {
	if !Authorize(actor, ActionAdmin, Resource{}) {
		return nil, ErrForbidden
	}
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, notFound(err)
	}
	if p.Provider != models.ProviderManual && p.Provider != models.ProviderPayGate {
		return nil, fmt.Errorf("%w: %s payments are confirmed by the provider", ErrBadInput, p.Provider)
	}
	if p.Status == models.PaymentFailed {
		return nil, fmt.Errorf("%w: payment already failed", ErrBadInput)
	}
	if err := s.complete(ctx, p); err != nil {
		return nil, err
	}
	p, err = s.payments.GetByID(ctx, paymentID)
	return p, notFound(err)
}

func (s *PaymentService) GetPayment(ctx context.Context, actor models.Actor, paymentID uint) (*models.Payment, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, notFound(err)
	}
	if !Authorize(actor, ActionOwnResource, Resource{OwnerID: p.UserID}) {
		return nil, ErrForbidden
	}
	return p, nil
}
