package metrics

import (
	"FinSim/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	decisions   *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	orders      *prometheus.CounterVec
	cancels     *prometheus.CounterVec
	filled      *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	marketPrice *prometheus.GaugeVec
	fundamental *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder registered on reg; nil means the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		decisions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsim_decisions_total",
				Help: "Agent decisions per market by outcome (order, idle, skipped)",
			},
			[]string{"market", "outcome"},
		),
		skipped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsim_skipped_ticks_total",
				Help: "Ticks on which an agent emitted no order because of an error",
			},
			[]string{"reason"},
		),
		orders: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsim_orders_total",
				Help: "Limit orders emitted",
			},
			[]string{"market", "side"},
		),
		cancels: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsim_cancels_total",
				Help: "Cancel intents emitted",
			},
			[]string{"market"},
		),
		filled: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsim_filled_volume_total",
				Help: "Volume executed against agent orders",
			},
			[]string{"market"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsim_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		marketPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finsim_market_price",
				Help: "Last market price",
			},
			[]string{"market"},
		),
		fundamental: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finsim_fundamental_price",
				Help: "Current fundamental price",
			},
			[]string{"market"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finsim_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"operation"},
		),
	}
}

// RecordDecision counts one agent/market decision.
func (r *Recorder) RecordDecision(marketID, outcome string) {
	r.decisions.WithLabelValues(marketID, outcome).Inc()
}

// RecordSkip counts a skipped tick by error class.
func (r *Recorder) RecordSkip(reason string) {
	r.skipped.WithLabelValues(reason).Inc()
}

func (r *Recorder) RecordOrder(marketID string, side models.Side) {
	r.orders.WithLabelValues(marketID, string(side)).Inc()
}

func (r *Recorder) RecordCancels(marketID string, n int) {
	if n <= 0 {
		return
	}
	r.cancels.WithLabelValues(marketID).Add(float64(n))
}

func (r *Recorder) RecordFill(marketID string, volume int) {
	r.filled.WithLabelValues(marketID).Add(float64(volume))
}

// RecordMarket sets the price gauges after a tick.
func (r *Recorder) RecordMarket(marketID string, price, fundamental float64) {
	r.marketPrice.WithLabelValues(marketID).Set(price)
	r.fundamental.WithLabelValues(marketID).Set(fundamental)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
