package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "amglow"

// Checkout outcomes.
const (
	OutcomeWritten  = "written"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomeBusy     = "busy"
)

// CartMetrics tracks cart mutations and snapshot health. A nil *CartMetrics is
// valid and records nothing.
type CartMetrics struct {
	mutations        *prometheus.CounterVec
	snapshotRejected prometheus.Counter
	persistFailures  prometheus.Counter
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Cart mutations applied, by operation.",
	}, []string{"op"})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_snapshot_rejected_total",
		Help:      "Stored cart snapshots discarded as malformed.",
	})
	persist := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_persist_failures_total",
		Help:      "Cart snapshot writes that failed.",
	})
	reg.MustRegister(mutations, rejected, persist)
	return &CartMetrics{mutations: mutations, snapshotRejected: rejected, persistFailures: persist}
}

func (c *CartMetrics) IncMutation(op string) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

func (c *CartMetrics) IncSnapshotRejected() {
	if c == nil || c.snapshotRejected == nil {
		return
	}
	c.snapshotRejected.Inc()
}

func (c *CartMetrics) IncPersistFailure() {
	if c == nil || c.persistFailures == nil {
		return
	}
	c.persistFailures.Inc()
}

// CheckoutMetrics tracks order submissions. A nil *CheckoutMetrics is valid.
type CheckoutMetrics struct {
	submissions   *prometheus.CounterVec
	writeDuration prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_submissions_total",
		Help:      "Order submissions, by outcome.",
	}, []string{"outcome"})
	writeDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "checkout_write_duration_seconds",
		Help:      "Time spent writing the order record.",
		Buckets:   prometheus.DefBuckets,
	})
	reg.MustRegister(submissions, writeDuration)
	return &CheckoutMetrics{submissions: submissions, writeDuration: writeDuration}
}

func (c *CheckoutMetrics) IncOutcome(outcome string) {
	if c == nil || c.submissions == nil {
		return
	}
	c.submissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (c *CheckoutMetrics) ObserveWrite(d time.Duration) {
	if c == nil || c.writeDuration == nil {
		return
	}
	c.writeDuration.Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
