package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	"edu-subscription-platform/internal/domain"
	"edu-subscription-platform/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*StripeGateway)(nil)

// sessionPlaceholder is expanded by Stripe when it redirects back.
const sessionPlaceholder = "{CHECKOUT_SESSION_ID}"

// StripeGateway implements adapter.PaymentGateway with Stripe Checkout in
// payment mode: one-off charges with inline price data.
type StripeGateway struct {
	sessions      session.Client
	webhookSecret string
}

func NewStripeGateway(apiKey, webhookSecret string) (*StripeGateway, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: stripe api key empty", domain.ErrUnconfigured)
	}
	return &StripeGateway{
		sessions:      session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: apiKey},
		webhookSecret: webhookSecret,
	}, nil
}

func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) CreateSession(ctx context.Context, req adapter.SessionRequest) (adapter.Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(withSessionPlaceholder(req.SuccessURL)),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(req.Currency)),
				UnitAmount: stripe.Int64(req.Amount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.ProductName),
				},
			},
		}},
		Metadata: req.Metadata,
	}
	params.Context = ctx

	s, err := g.sessions.New(params)
	if err != nil {
		return adapter.Session{}, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return adapter.Session{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) GetStatus(ctx context.Context, sessionID string) (adapter.SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := g.sessions.Get(sessionID, params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.HTTPStatusCode == 404 {
			return adapter.SessionStatus{}, fmt.Errorf("%w: stripe session %s", domain.ErrNotFound, sessionID)
		}
		return adapter.SessionStatus{}, fmt.Errorf("stripe: get checkout session: %w", err)
	}
	return adapter.SessionStatus{
		PaymentStatus: normalizeStatus(s),
		PaymentRef:    paymentRef(s),
		Amount:        s.AmountTotal,
		Currency:      string(s.Currency),
		Metadata:      s.Metadata,
	}, nil
}

// VerifyWebhook checks the Stripe-Signature header. Events pinned to another
// API version are still accepted since only checkout session fields are read.
func (g *StripeGateway) VerifyWebhook(rawBody []byte, signature string) (adapter.WebhookEvent, error) {
	if g.webhookSecret == "" {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: webhook secret not set", domain.ErrInvalidWebhook)
	}
	ev, err := webhook.ConstructEventWithOptions(rawBody, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: %v", domain.ErrInvalidWebhook, err)
	}

	out := adapter.WebhookEvent{ID: ev.ID, Type: string(ev.Type)}
	if !strings.HasPrefix(out.Type, "checkout.session.") || ev.Data == nil {
		return out, nil
	}
	var s stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: decode checkout session: %v", domain.ErrInvalidWebhook, err)
	}
	out.SessionID = s.ID
	out.PaymentStatus = normalizeStatus(&s)
	out.PaymentRef = paymentRef(&s)
	out.Metadata = s.Metadata
	return out, nil
}

func normalizeStatus(s *stripe.CheckoutSession) string {
	switch {
	case s.Status == stripe.CheckoutSessionStatusExpired:
		return adapter.ProcessorExpired
	case s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		s.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return adapter.ProcessorPaid
	}
	return adapter.ProcessorUnpaid
}

func paymentRef(s *stripe.CheckoutSession) string {
	if s.PaymentIntent != nil {
		return s.PaymentIntent.ID
	}
	return ""
}

func withSessionPlaceholder(u string) string {
	if u == "" || strings.Contains(u, sessionPlaceholder) {
		return u
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + "session_id=" + sessionPlaceholder
}
