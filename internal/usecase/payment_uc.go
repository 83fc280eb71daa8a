package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"edu-subscription-platform/internal/domain"
	"edu-subscription-platform/internal/domain/model"
	"edu-subscription-platform/internal/domain/ports/adapter"
	"edu-subscription-platform/internal/domain/ports/repository"
	"edu-subscription-platform/internal/infra/logging"
	"edu-subscription-platform/internal/infra/metrics"
)

// PlanResolver is the read side of the pricing catalog.
type PlanResolver interface {
	Resolve(tier model.AgeTier, cycle model.BillingCycle) (model.PricingPlan, error)
}

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// PaymentUseCase reconciles the ledger with the payment processor. Polling
// and webhooks both end in ApplyConfirmedPayment, which is idempotent.
type PaymentUseCase interface {
	ApplyConfirmedPayment(ctx context.Context, sessionID string, reported model.PaymentStatus, externalRef string) (*model.PaymentTransaction, error)
	// CheckStatus asks the processor about a session owned by userID.
	CheckStatus(ctx context.Context, userID, sessionID string) (*PaymentStatusView, error)
	// HandleWebhook authenticates and applies one processor notification.
	HandleWebhook(ctx context.Context, rawBody []byte, signature string) error
	History(ctx context.Context, userID string, limit int) ([]*model.PaymentTransaction, error)
}

// PaymentStatusView is what the status endpoint reports.
type PaymentStatusView struct {
	SessionID     string              `json:"session_id"`
	Status        model.PaymentStatus `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	Amount        int64               `json:"amount_total"`
	Currency      string              `json:"currency"`
	Tier          model.AgeTier       `json:"age_group"`
	Cycle         model.BillingCycle  `json:"subscription_type"`
	CompletedAt   *time.Time          `json:"completed_at,omitempty"`
}

type paymentUC struct {
	payments repository.PaymentRepository
	users    repository.UserRepository
	tm       repository.TransactionManager
	plans    PlanResolver
	gateway  adapter.PaymentGateway // nil when payments are not configured
	expiry   ExpiryPolicy
	now      func() time.Time
	log      *zerolog.Logger
}

func NewPaymentUseCase(
	payments repository.PaymentRepository,
	users repository.UserRepository,
	tm repository.TransactionManager,
	plans PlanResolver,
	gateway adapter.PaymentGateway,
	expiry ExpiryPolicy,
	logger *zerolog.Logger,
) *paymentUC {
	if expiry == nil {
		expiry = OverwriteExpiry
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &paymentUC{
		payments: payments,
		users:    users,
		tm:       tm,
		plans:    plans,
		gateway:  gateway,
		expiry:   expiry,
		now:      time.Now,
		log:      logger,
	}
}

// ApplyConfirmedPayment moves a ledger row to a terminal status and, when
// that status is completed, grants the subscription. Only the caller whose
// compare-and-set wins performs the grant; everyone else gets the current
// row back unchanged.
func (u *paymentUC) ApplyConfirmedPayment(ctx context.Context, sessionID string, reported model.PaymentStatus, externalRef string) (*model.PaymentTransaction, error) {
	var (
		out     *model.PaymentTransaction
		moved   bool
		grantTo *time.Time
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.payments.FindBySessionID(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		out = p

		if p.Status == model.PaymentStatusCompleted {
			if externalRef != "" && p.ExternalRef == nil {
				if err := u.payments.SetExternalRef(ctx, tx, p.ID, externalRef); err != nil {
					return err
				}
				ref := externalRef
				p.ExternalRef = &ref
			}
			return nil
		}
		if p.Status.Terminal() || !reported.Terminal() {
			return nil
		}

		now := u.now()
		var (
			ref         *string
			completedAt *time.Time
		)
		if externalRef != "" {
			ref = &externalRef
		}
		if reported == model.PaymentStatusCompleted {
			completedAt = &now
		}
		ok, err := u.payments.UpdateStatusIfOpen(ctx, tx, p.ID, reported, ref, completedAt)
		if err != nil {
			return err
		}
		if !ok {
			cur, err := u.payments.FindBySessionID(ctx, tx, sessionID)
			if err != nil {
				return err
			}
			out = cur
			return nil
		}

		moved = true
		p.Status = reported
		p.UpdatedAt = now
		p.CompletedAt = completedAt
		if ref != nil {
			p.ExternalRef = ref
		}
		if reported != model.PaymentStatusCompleted {
			return nil
		}
		exp, err := u.grant(ctx, tx, p, now)
		if err != nil {
			return err
		}
		grantTo = &exp
		return nil
	})
	if err != nil {
		return nil, err
	}

	log := logging.With(logging.WithSessionID(ctx, sessionID), u.log)
	if moved {
		metrics.IncPayment(string(out.Status))
		log.Info().Str("status", string(out.Status)).Msg("payment transition applied")
	}
	if grantTo != nil {
		metrics.AddPaymentRevenue(out.Currency, out.Amount)
		metrics.IncSubscriptionGranted(out.Cycle, out.Tier)
		log.Info().Str("user_id", out.UserID).Str("cycle", string(out.Cycle)).Time("expires", *grantTo).Msg("subscription granted")
	}
	return out, nil
}

func (u *paymentUC) grant(ctx context.Context, tx repository.Tx, p *model.PaymentTransaction, now time.Time) (time.Time, error) {
	plan, err := u.plans.Resolve(p.Tier, p.Cycle)
	if err != nil {
		return time.Time{}, err
	}
	user, err := u.users.FindByID(ctx, tx, p.UserID)
	if err != nil {
		return time.Time{}, err
	}
	exp := u.expiry(user.Subscription, now, plan.DurationDays)
	if err := u.users.SetSubscription(ctx, tx, p.UserID, p.Cycle, &exp); err != nil {
		return time.Time{}, err
	}
	return exp, nil
}

func (u *paymentUC) CheckStatus(ctx context.Context, userID, sessionID string) (*PaymentStatusView, error) {
	p, err := u.payments.FindBySessionID(ctx, repository.NoTX, sessionID)
	if err != nil {
		return nil, err
	}
	// Someone else's session looks exactly like a missing one.
	if p.UserID != userID {
		return nil, domain.ErrNotFound
	}
	if u.gateway == nil {
		return nil, domain.ErrUnconfigured
	}

	st, err := u.gateway.GetStatus(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}
	metrics.StatusPolls.WithLabelValues(st.PaymentStatus).Inc()

	if target, ok := statusFromProcessor(st.PaymentStatus); ok {
		if p, err = u.ApplyConfirmedPayment(ctx, sessionID, target, st.PaymentRef); err != nil {
			return nil, err
		}
	}
	return &PaymentStatusView{
		SessionID:     p.SessionID,
		Status:        p.Status,
		PaymentStatus: st.PaymentStatus,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Tier:          p.Tier,
		Cycle:         p.Cycle,
		CompletedAt:   p.CompletedAt,
	}, nil
}

func (u *paymentUC) HandleWebhook(ctx context.Context, rawBody []byte, signature string) error {
	defer logging.TraceDuration(u.log, "PaymentUC.HandleWebhook")()
	if u.gateway == nil {
		return domain.ErrUnconfigured
	}
	ev, err := u.gateway.VerifyWebhook(rawBody, signature)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidWebhook) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidWebhook, err)
	}

	ctx = logging.WithSessionID(ctx, ev.SessionID)
	log := logging.With(ctx, u.log)

	var target model.PaymentStatus
	switch ev.Type {
	case adapter.EventCheckoutCompleted, adapter.EventCheckoutAsyncSucceeded:
		// A completed session with a delayed payment method is still unpaid;
		// the async_payment_succeeded event follows.
		if ev.PaymentStatus != adapter.ProcessorPaid {
			log.Debug().Str("event", ev.Type).Msg("checkout completed without payment; waiting")
			return nil
		}
		target = model.PaymentStatusCompleted
	case adapter.EventCheckoutAsyncFailed:
		target = model.PaymentStatusFailed
	case adapter.EventCheckoutExpired:
		target = model.PaymentStatusExpired
	default:
		log.Debug().Str("event", ev.Type).Msg("webhook event ignored")
		return nil
	}
	if ev.SessionID == "" {
		return fmt.Errorf("%w: event without session id", domain.ErrInvalidWebhook)
	}

	_, err = u.ApplyConfirmedPayment(ctx, ev.SessionID, target, ev.PaymentRef)
	if errors.Is(err, domain.ErrNotFound) {
		if rerr := u.reconstruct(ctx, ev); rerr != nil {
			log.Error().Err(rerr).Str("event", ev.Type).Msg("webhook for unknown session")
			return err
		}
		_, err = u.ApplyConfirmedPayment(ctx, ev.SessionID, target, ev.PaymentRef)
	}
	if err != nil {
		log.Error().Err(err).Str("event", ev.Type).Msg("apply webhook")
		return err
	}
	return nil
}

// reconstruct inserts the ledger row for a session that reached the
// processor but never made it into the ledger, using the checkout metadata
// that travels with the session.
func (u *paymentUC) reconstruct(ctx context.Context, ev adapter.WebhookEvent) error {
	userID := ev.Metadata[model.MetaUserID]
	tier := model.AgeTier(ev.Metadata[model.MetaTier])
	cycle, ok := model.ParseCycle(ev.Metadata[model.MetaCycle])
	if userID == "" || !ok {
		return fmt.Errorf("%w: metadata cannot rebuild the transaction", domain.ErrInvalidArgument)
	}
	plan, err := u.plans.Resolve(tier, cycle)
	if err != nil {
		return err
	}

	now := u.now()
	meta := make(map[string]string, len(ev.Metadata))
	for k, v := range ev.Metadata {
		meta[k] = v
	}
	created, err := u.payments.Insert(ctx, repository.NoTX, &model.PaymentTransaction{
		ID:        ulid.Make().String(),
		UserID:    userID,
		SessionID: ev.SessionID,
		Amount:    plan.ChargeAmount(),
		Currency:  plan.Currency,
		Tier:      tier,
		Cycle:     cycle,
		Status:    model.PaymentStatusInitiated,
		CreatedAt: now,
		UpdatedAt: now,
		Meta:      meta,
	})
	if err != nil {
		return err
	}
	if created {
		metrics.IncReconciliationGap("webhook")
		logging.With(ctx, u.log).Warn().
			Str("user_id", userID).
			Str("email", logging.RedactID(ev.Metadata[model.MetaUserEmail])).
			Msg("ledger row rebuilt from webhook metadata")
	}
	return nil
}

func (u *paymentUC) History(ctx context.Context, userID string, limit int) ([]*model.PaymentTransaction, error) {
	return u.payments.ListByUser(ctx, repository.NoTX, userID, limit)
}

// statusFromProcessor maps a processor payment status onto the ledger status
// it confirms. Unpaid sessions confirm nothing.
func statusFromProcessor(ps string) (model.PaymentStatus, bool) {
	switch ps {
	case adapter.ProcessorPaid:
		return model.PaymentStatusCompleted, true
	case adapter.ProcessorExpired:
		return model.PaymentStatusExpired, true
	}
	return "", false
}
