package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransactionsBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cardabot_transactions_built_total",
		Help: "Unsigned transactions successfully built",
	})

	TransactionsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardabot_transactions_submitted_total",
		Help: "Transactions submitted to the ledger, by outcome",
	}, []string{"outcome"})

	ClaimsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardabot_claims_processed_total",
		Help: "Escrow claims processed, by outcome",
	}, []string{"outcome"})

	TokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cardabot_link_tokens_issued_total",
		Help: "Linking tokens issued",
	})

	TokensSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cardabot_link_tokens_swept_total",
		Help: "Linking tokens cleared by the periodic sweep",
	})

	LedgerRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cardabot_ledger_request_duration_seconds",
		Help:    "Latency of ledger query and submission calls",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"method"})
)
