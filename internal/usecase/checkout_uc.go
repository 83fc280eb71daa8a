package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"edu-subscription-platform/internal/domain"
	"edu-subscription-platform/internal/domain/model"
	"edu-subscription-platform/internal/domain/ports/adapter"
	"edu-subscription-platform/internal/domain/ports/repository"
	"edu-subscription-platform/internal/infra/logging"
	"edu-subscription-platform/internal/infra/metrics"
	red "edu-subscription-platform/internal/infra/redis"
)

// Limiter is a per-key request budget, see redis.RateLimiter.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type CheckoutRequest struct {
	Tier       model.AgeTier
	Cycle      model.BillingCycle
	SuccessURL string
	CancelURL  string
}

type CheckoutResult struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

var _ CheckoutUseCase = (*checkoutUC)(nil)

type CheckoutUseCase interface {
	// Configured reports whether a payment gateway is wired.
	Configured() bool
	StartCheckout(ctx context.Context, user *model.User, req CheckoutRequest) (*CheckoutResult, error)
}

type checkoutUC struct {
	payments repository.PaymentRepository
	plans    PlanResolver
	gateway  adapter.PaymentGateway // nil when payments are not configured
	limiter  Limiter                // optional
	limit    int
	window   time.Duration
	now      func() time.Time
	log      *zerolog.Logger
}

func NewCheckoutUseCase(
	payments repository.PaymentRepository,
	plans PlanResolver,
	gateway adapter.PaymentGateway,
	limiter Limiter,
	limit int,
	window time.Duration,
	logger *zerolog.Logger,
) *checkoutUC {
	if logger == nil {
		logger = logging.Nop()
	}
	return &checkoutUC{
		payments: payments,
		plans:    plans,
		gateway:  gateway,
		limiter:  limiter,
		limit:    limit,
		window:   window,
		now:      time.Now,
		log:      logger,
	}
}

func (u *checkoutUC) Configured() bool { return u.gateway != nil }

// StartCheckout opens a processor session for the plan and records it in the
// ledger before handing the checkout URL back.
func (u *checkoutUC) StartCheckout(ctx context.Context, user *model.User, req CheckoutRequest) (*CheckoutResult, error) {
	defer logging.TraceDuration(u.log, "CheckoutUC.StartCheckout")()

	tier, cycle := string(req.Tier), string(req.Cycle)
	if u.gateway == nil {
		metrics.IncCheckout(tier, cycle, "unconfigured")
		return nil, domain.ErrUnconfigured
	}
	if user.IsZero() {
		return nil, domain.ErrUnauthorized
	}
	ctx = logging.WithUserID(ctx, user.ID)
	log := logging.With(ctx, u.log)

	if u.limiter != nil && u.limit > 0 {
		ok, err := u.limiter.Allow(ctx, red.UserActionKey(user.ID, "checkout"), u.limit, u.window)
		if err != nil {
			// Limiter outages must not block purchases.
			log.Warn().Err(err).Msg("checkout rate limiter unavailable")
		} else if !ok {
			metrics.IncCheckout(tier, cycle, "rate_limited")
			return nil, domain.ErrRateLimited
		}
	}

	plan, err := u.plans.Resolve(req.Tier, req.Cycle)
	if err != nil {
		metrics.IncCheckout(tier, cycle, "invalid_plan")
		return nil, err
	}

	meta := map[string]string{
		model.MetaUserID:    user.ID,
		model.MetaUserEmail: user.Email,
		model.MetaTier:      string(plan.Tier),
		model.MetaCycle:     string(plan.Cycle),
		model.MetaPlanName:  plan.Name,
	}
	sess, err := u.gateway.CreateSession(ctx, adapter.SessionRequest{
		Amount:      plan.ChargeAmount(),
		Currency:    plan.Currency,
		ProductName: plan.Name,
		SuccessURL:  req.SuccessURL,
		CancelURL:   req.CancelURL,
		Metadata:    meta,
	})
	if err != nil {
		metrics.IncCheckout(tier, cycle, "gateway_error")
		log.Error().Err(err).Str("gateway", u.gateway.Name()).Msg("create checkout session")
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}

	now := u.now()
	p := &model.PaymentTransaction{
		ID:        ulid.Make().String(),
		UserID:    user.ID,
		SessionID: sess.ID,
		Amount:    plan.ChargeAmount(),
		Currency:  plan.Currency,
		Tier:      plan.Tier,
		Cycle:     plan.Cycle,
		Status:    model.PaymentStatusInitiated,
		CreatedAt: now,
		UpdatedAt: now,
		Meta:      meta,
	}
	// created == false means a webhook already rebuilt this row.
	if _, err := u.payments.Insert(ctx, repository.NoTX, p); err != nil {
		metrics.IncCheckout(tier, cycle, "ledger_error")
		metrics.IncReconciliationGap("checkout")
		log.Error().Err(err).Str("session_id", logging.RedactID(sess.ID)).Msg("orphan checkout session: ledger insert failed")
		return nil, err
	}

	metrics.IncCheckout(tier, cycle, "ok")
	log.Info().Str("session_id", logging.RedactID(sess.ID)).Int64("amount", p.Amount).Str("cycle", cycle).Msg("checkout started")
	return &CheckoutResult{CheckoutURL: sess.URL, SessionID: sess.ID}, nil
}
