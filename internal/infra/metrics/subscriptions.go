package metrics

import (
	"edu-subscription-platform/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		subscriptionsGrantedTotal,
		accessDecisionsTotal,
	)
}

var (
	subscriptionsGrantedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_granted_total",
			Help: "Subscriptions granted by reconciliation, by cycle and tier.",
		},
		[]string{"cycle", "tier"},
	)

	// checkpoint: list|get|stream; decision: allow|deny
	accessDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "premium_access_decisions_total",
			Help: "Premium content access decisions by checkpoint.",
		},
		[]string{"checkpoint", "decision"},
	)
)

func IncSubscriptionGranted(cycle model.BillingCycle, tier model.AgeTier) {
	subscriptionsGrantedTotal.WithLabelValues(string(cycle), string(tier)).Inc()
}

func IncAccessDecision(checkpoint string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	accessDecisionsTotal.WithLabelValues(norm(checkpoint), decision).Inc()
}
