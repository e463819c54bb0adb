package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// TransfersTotal counts transfer attempts by mode and final outcome.
	TransfersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "token_transfer",
		Name:      "transfers_total",
		Help:      "Transfer submissions by token mode and outcome.",
	}, []string{"mode", "outcome"})

	// BalanceLookupsTotal counts per-token balance lookups by source and result.
	BalanceLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "token_transfer",
		Name:      "balance_lookups_total",
		Help:      "Token balance lookups by source (rpc, api) and result (ok, error).",
	}, []string{"source", "result"})

	// CatalogFetchesTotal counts token catalog fetches by result.
	CatalogFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "token_transfer",
		Name:      "catalog_fetches_total",
		Help:      "Token catalog fetches by result.",
	}, []string{"result"})

	// BalanceRefreshSeconds observes the duration of a full balance refresh.
	BalanceRefreshSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "token_transfer",
		Name:      "balance_refresh_seconds",
		Help:      "Duration of a full balance aggregation.",
		Buckets:   prometheus.DefBuckets,
	})

	registerOnce sync.Once
)

// MustRegisterMetrics registers the collectors with the default registry. Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(TransfersTotal, BalanceLookupsTotal, CatalogFetchesTotal, BalanceRefreshSeconds)
	})
}
