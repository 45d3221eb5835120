package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "orderflow"

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds the RED instruments shared by services, the reconciler and
// gateways. A nil *Metrics records nothing.
type Metrics struct {
	usecaseRequests   *prometheus.CounterVec
	usecaseDuration   *prometheus.HistogramVec
	reconcileOutcomes *prometheus.CounterVec
	gatewayRequests   *prometheus.CounterVec
	gatewayDuration   *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		usecaseRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "usecase_requests_total",
			Help:      "Use case invocations by outcome.",
		}, []string{"usecase", "outcome"}),
		usecaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "usecase_duration_seconds",
			Help:      "Use case latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"usecase"}),
		reconcileOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_outcomes_total",
			Help:      "Finished payment reconciliations by outcome.",
		}, []string{"outcome"}),
		gatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Payment gateway calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		gatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "Payment gateway call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	reg.MustRegister(
		m.usecaseRequests,
		m.usecaseDuration,
		m.reconcileOutcomes,
		m.gatewayRequests,
		m.gatewayDuration,
	)

	return m
}

func (m *Metrics) ObserveUsecase(usecase string, start time.Time, err error) {
	if m == nil {
		return
	}

	m.usecaseRequests.WithLabelValues(usecase, outcome(err)).Inc()
	m.usecaseDuration.WithLabelValues(usecase).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveReconcile(outcome string) {
	if m == nil {
		return
	}

	m.reconcileOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveGateway(operation string, start time.Time, err error) {
	if m == nil {
		return
	}

	m.gatewayRequests.WithLabelValues(operation, outcome(err)).Inc()
	m.gatewayDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
