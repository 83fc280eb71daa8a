package adapter

import "context"

// Normalized processor payment states returned by GetStatus.
const (
	ProcessorPaid    = "paid"
	ProcessorUnpaid  = "unpaid"
	ProcessorExpired = "expired"
)

// Webhook event types the reconciler acts on.
const (
	EventCheckoutCompleted      = "checkout.session.completed"
	EventCheckoutAsyncSucceeded = "checkout.session.async_payment_succeeded"
	EventCheckoutAsyncFailed    = "checkout.session.async_payment_failed"
	EventCheckoutExpired        = "checkout.session.expired"
)

type SessionRequest struct {
	Amount      int64 // minor units
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

type Session struct {
	ID  string
	URL string
}

// SessionStatus is the processor's view of a checkout session.
type SessionStatus struct {
	PaymentStatus string // paid | unpaid | expired
	PaymentRef    string
	Amount        int64
	Currency      string
	Metadata      map[string]string
}

// WebhookEvent is an authenticated, parsed processor notification.
type WebhookEvent struct {
	ID            string            `json:"id"`
	Type          string            `json:"type"`
	SessionID     string            `json:"session_id"`
	PaymentStatus string            `json:"payment_status"`
	PaymentRef    string            `json:"payment_ref,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// PaymentGateway is the hex port for the external payment processor. The core
// never speaks the processor's wire protocol itself.
type PaymentGateway interface {
	Name() string
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
	GetStatus(ctx context.Context, sessionID string) (SessionStatus, error)
	// VerifyWebhook authenticates rawBody against signature and parses it.
	VerifyWebhook(rawBody []byte, signature string) (WebhookEvent, error)
}
