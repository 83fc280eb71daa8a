package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		paymentsRevenueTotal,
		reconciliationGapsTotal,
		checkoutsTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Ledger transitions by resulting status.",
		},
		[]string{"status"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_minor_total",
			Help: "Completed payment volume in minor currency units, by currency.",
		},
		[]string{"currency"},
	)

	// source: checkout (session created, ledger insert failed) | webhook (event for a session with no ledger row)
	reconciliationGapsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_reconciliation_gaps_total",
			Help: "External checkout sessions that were missing a local ledger row when observed.",
		},
		[]string{"source"},
	)

	// result: ok|invalid_plan|unconfigured|gateway_error|ledger_error|rate_limited
	checkoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkouts_total",
			Help: "Checkout attempts by tier, cycle and result.",
		},
		[]string{"tier", "cycle", "result"},
	)
)

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func AddPaymentRevenue(currency string, amount int64) {
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(float64(amount))
}

func IncReconciliationGap(source string) {
	reconciliationGapsTotal.WithLabelValues(norm(source)).Inc()
}

func IncCheckout(tier, cycle, result string) {
	checkoutsTotal.WithLabelValues(norm(tier), norm(cycle), norm(result)).Inc()
}
