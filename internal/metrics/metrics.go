package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_decisions_total",
			Help: "Market decisions taken, by outcome",
		},
		[]string{"decision"},
	)

	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_total",
			Help: "Limit orders by direction, reason and result",
		},
		[]string{"direction", "reason", "result"},
	)

	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_cycles_total",
			Help: "Trading cycles by result",
		},
		[]string{"result"},
	)

	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bot_cycle_duration_seconds",
			Help:    "Duration of one full trading cycle",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	GatewayCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "bot_gateway_call_duration_seconds",
			Help: "Exchange call latency excluding throttle wait",
		},
		[]string{"operation"},
	)

	GatewayErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_gateway_errors_total",
			Help: "Failed exchange calls",
		},
		[]string{"operation"},
	)
)
