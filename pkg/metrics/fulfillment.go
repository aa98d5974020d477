package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FulfillmentMetrics records stock, payout and outbox activity.
type FulfillmentMetrics struct {
	reservations *prometheus.CounterVec
	releases     *prometheus.CounterVec
	payouts      *prometheus.CounterVec
	outbox       *prometheus.CounterVec
	publishLag   prometheus.Histogram
}

// NewFulfillmentMetrics registers the fulfillment metrics on the provided registerer.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	reservations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_reservations_total",
		Help: "Stock reservation attempts by tier and outcome.",
	}, []string{"tier", "outcome"})
	releases := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_releases_total",
		Help: "Stock releases by tier.",
	}, []string{"tier"})
	payouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_finalizations_total",
		Help: "Payout finalizations by beneficiary role and outcome.",
	}, []string{"role", "outcome"})
	outbox := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_publishes_total",
		Help: "Outbox publish attempts by outcome.",
	}, []string{"outcome"})
	publishLag := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_publish_lag_seconds",
		Help:    "Time between event creation and successful publish.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(reservations, releases, payouts, outbox, publishLag)
	return &FulfillmentMetrics{
		reservations: reservations,
		releases:     releases,
		payouts:      payouts,
		outbox:       outbox,
		publishLag:   publishLag,
	}
}

// IncReservation counts one reservation attempt for a tier.
func (m *FulfillmentMetrics) IncReservation(tier, outcome string) {
	if m == nil || m.reservations == nil {
		return
	}
	m.reservations.WithLabelValues(normalizeLabel(tier), normalizeLabel(outcome)).Inc()
}

// IncRelease counts one stock release for a tier.
func (m *FulfillmentMetrics) IncRelease(tier string) {
	if m == nil || m.releases == nil {
		return
	}
	m.releases.WithLabelValues(normalizeLabel(tier)).Inc()
}

// IncPayout counts one payout finalization for a beneficiary role.
func (m *FulfillmentMetrics) IncPayout(role, outcome string) {
	if m == nil || m.payouts == nil {
		return
	}
	m.payouts.WithLabelValues(normalizeLabel(role), normalizeLabel(outcome)).Inc()
}

// IncOutboxPublish counts one outbox publish attempt.
func (m *FulfillmentMetrics) IncOutboxPublish(outcome string) {
	if m == nil || m.outbox == nil {
		return
	}
	m.outbox.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObservePublishLag records the delay between event creation and publish.
func (m *FulfillmentMetrics) ObservePublishLag(lag time.Duration) {
	if m == nil || m.publishLag == nil {
		return
	}
	m.publishLag.Observe(lag.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
