package metrics

import "github.com/prometheus/client_golang/prometheus"

// PoolStat is the subset of pool statistics exported on scrape.
type PoolStat struct {
	Total, Idle, InUse int32
}

// RegisterDBPool exports connection-pool gauges that read stat on every
// scrape, so nothing has to poll the pool in the background.
func RegisterDBPool(reg prometheus.Registerer, stat func() PoolStat) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gauge := func(state string, pick func(PoolStat) int32) prometheus.Collector {
		return prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name:        "db_pool_connections",
				Help:        "Current state of the database connection pool.",
				ConstLabels: prometheus.Labels{"state": state},
			},
			func() float64 { return float64(pick(stat())) },
		)
	}
	reg.MustRegister(
		gauge("total", func(s PoolStat) int32 { return s.Total }),
		gauge("idle", func(s PoolStat) int32 { return s.Idle }),
		gauge("in_use", func(s PoolStat) int32 { return s.InUse }),
	)
}
