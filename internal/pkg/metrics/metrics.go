package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DepositsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yieldgate_deposits_total",
		Help: "The total number of deposits recorded",
	})

	WithdrawalsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yieldgate_withdrawals_total",
		Help: "The total number of withdrawals recorded",
	})

	DistributionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yieldgate_distributions_total",
		Help: "The total number of yield distributions applied",
	}, []string{"mode"}) // single | batch | venue

	DistributionRejects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yieldgate_distribution_rejects_total",
		Help: "Total distribution attempts rejected before any mutation",
	}, []string{"reason"})

	DustRetained = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yieldgate_dust_retained_total",
		Help: "Total yield base units retained as unassigned dust",
	})

	VenueHealthChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yieldgate_venue_health_checks_total",
		Help: "Venue health probe results",
	}, []string{"venue", "healthy"})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yieldgate_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)
