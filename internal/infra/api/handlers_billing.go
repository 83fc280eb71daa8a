package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"edu-subscription-platform/internal/domain"
	"edu-subscription-platform/internal/domain/model"
	"edu-subscription-platform/internal/infra/logging"
	"edu-subscription-platform/internal/infra/metrics"
	"edu-subscription-platform/internal/usecase"
)

const maxWebhookBody = 64 << 10

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Plans())
}

func (s *Server) handleFramework(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Framework())
}

type checkoutBody struct {
	SubscriptionType string `json:"subscription_type" validate:"required,oneof=monthly quarterly annual"`
	AgeGroup         string `json:"age_group" validate:"required"`
	SuccessURL       string `json:"success_url" validate:"required,url"`
	CancelURL        string `json:"cancel_url" validate:"required,url"`
}

// handleCheckout reports a missing gateway before looking at the body.
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if !s.checkout.Configured() {
		s.writeError(w, r, domain.ErrUnconfigured)
		return
	}
	var body checkoutBody
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	cycle, _ := model.ParseCycle(body.SubscriptionType)
	res, err := s.checkout.StartCheckout(r.Context(), userFrom(r.Context()), usecase.CheckoutRequest{
		Tier:       model.AgeTier(body.AgeGroup),
		Cycle:      cycle,
		SuccessURL: body.SuccessURL,
		CancelURL:  body.CancelURL,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePaymentStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	ctx := logging.WithSessionID(r.Context(), sessionID)
	view, err := s.payments.CheckStatus(ctx, userFrom(ctx).ID, sessionID)
	if err != nil {
		s.writeError(w, r.WithContext(ctx), err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			writeDetail(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	txns, err := s.payments.History(r.Context(), userFrom(r.Context()).ID, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if txns == nil {
		txns = []*model.PaymentTransaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

func (s *Server) handleMySubscription(w http.ResponseWriter, r *http.Request) {
	view, err := s.users.Subscription(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleStripeWebhook answers 2xx only once the event is durably applied or
// deliberately ignored; anything else makes the processor redeliver.
func (s *Server) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result, reason := "ok", ""
	defer func() {
		metrics.WebhookRequests.WithLabelValues(result, reason).Inc()
		metrics.WebhookDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		result, reason = "fail", "read_body"
		writeDetail(w, http.StatusBadRequest, "invalid payload")
		return
	}

	err = s.payments.HandleWebhook(r.Context(), body, r.Header.Get("Stripe-Signature"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	case errors.Is(err, domain.ErrInvalidWebhook):
		result, reason = "fail", "bad_signature"
		writeDetail(w, http.StatusBadRequest, "invalid signature")
	case errors.Is(err, domain.ErrNotFound):
		result, reason = "fail", "unknown_session"
		s.writeError(w, r, err)
	default:
		result, reason = "fail", "apply_error"
		s.writeError(w, r, err)
	}
}
