package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OrdersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intervalbot_orders_submitted_total",
			Help: "Total number of market orders submitted (by instrument).",
		},
		[]string{"instrument"},
	)

	OrdersFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intervalbot_orders_failed_total",
			Help: "Total number of rejected order submissions (by instrument).",
		},
		[]string{"instrument"},
	)

	GuardTriggers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "intervalbot_guard_triggers_total",
			Help: "Total number of equity-guard trailing stop triggers.",
		},
	)

	PositionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "intervalbot_positions_open",
			Help: "Current number of open positions in the engine.",
		},
	)

	EquityGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "intervalbot_equity",
			Help: "Current account equity.",
		},
	)
)

func init() {
	prometheus.MustRegister(OrdersSubmitted, OrdersFailed, GuardTriggers, PositionsOpen, EquityGauge)
}
