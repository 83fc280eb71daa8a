package payment

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"edu-subscription-platform/internal/domain"
	"edu-subscription-platform/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is an in-memory processor for tests and local runs.
// Sessions start unpaid; MarkPaid and MarkExpired play the customer's part.
// Webhooks are JSON-encoded adapter.WebhookEvent bodies signed with Sign.
type NoopPaymentGateway struct {
	mu       sync.Mutex
	seq      int64
	secret   []byte
	sessions map[string]*noopSession

	// FailCreate makes CreateSession return this error.
	FailCreate error
}

type noopSession struct {
	req    adapter.SessionRequest
	status string
	ref    string
}

// NewNoopPaymentGateway signs webhooks with secret. An empty secret is
// replaced by a random one, readable through Secret, so webhooks cannot be
// forged with an empty key.
func NewNoopPaymentGateway(secret string) *NoopPaymentGateway {
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			panic(fmt.Sprintf("noop gateway: random secret: %v", err))
		}
		secret = hex.EncodeToString(buf)
	}
	return &NoopPaymentGateway{
		secret:   []byte(secret),
		sessions: make(map[string]*noopSession),
	}
}

func (g *NoopPaymentGateway) Secret() string { return string(g.secret) }

func (g *NoopPaymentGateway) Name() string { return "noop" }

func (g *NoopPaymentGateway) CreateSession(ctx context.Context, req adapter.SessionRequest) (adapter.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailCreate != nil {
		return adapter.Session{}, g.FailCreate
	}
	g.seq++
	id := fmt.Sprintf("cs_noop_%d", g.seq)
	meta := make(map[string]string, len(req.Metadata))
	for k, v := range req.Metadata {
		meta[k] = v
	}
	req.Metadata = meta
	g.sessions[id] = &noopSession{req: req, status: adapter.ProcessorUnpaid}
	return adapter.Session{ID: id, URL: "https://pay.example.test/" + id}, nil
}

func (g *NoopPaymentGateway) GetStatus(ctx context.Context, sessionID string) (adapter.SessionStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[sessionID]
	if !ok {
		return adapter.SessionStatus{}, fmt.Errorf("%w: noop session %s", domain.ErrNotFound, sessionID)
	}
	return adapter.SessionStatus{
		PaymentStatus: s.status,
		PaymentRef:    s.ref,
		Amount:        s.req.Amount,
		Currency:      s.req.Currency,
		Metadata:      s.req.Metadata,
	}, nil
}

func (g *NoopPaymentGateway) VerifyWebhook(rawBody []byte, signature string) (adapter.WebhookEvent, error) {
	if !hmac.Equal([]byte(g.Sign(rawBody)), []byte(signature)) {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: bad signature", domain.ErrInvalidWebhook)
	}
	var ev adapter.WebhookEvent
	if err := json.Unmarshal(rawBody, &ev); err != nil {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: %v", domain.ErrInvalidWebhook, err)
	}
	return ev, nil
}

// Sign returns the hex HMAC-SHA256 of body under the gateway secret.
func (g *NoopPaymentGateway) Sign(body []byte) string {
	m := hmac.New(sha256.New, g.secret)
	m.Write(body)
	return hex.EncodeToString(m.Sum(nil))
}

func (g *NoopPaymentGateway) MarkPaid(sessionID, ref string) bool {
	return g.set(sessionID, adapter.ProcessorPaid, ref)
}

func (g *NoopPaymentGateway) MarkExpired(sessionID string) bool {
	return g.set(sessionID, adapter.ProcessorExpired, "")
}

// Session returns the request a session was created with.
func (g *NoopPaymentGateway) Session(sessionID string) (adapter.SessionRequest, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[sessionID]
	if !ok {
		return adapter.SessionRequest{}, false
	}
	return s.req, true
}

func (g *NoopPaymentGateway) set(sessionID, status, ref string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[sessionID]
	if !ok {
		return false
	}
	s.status, s.ref = status, ref
	return true
}
