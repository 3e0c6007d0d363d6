// Package metrics exposes prometheus collectors for contract invocations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "invoker"

// Service holds the collectors of one process on a private registry.
type Service struct {
	Registry *prometheus.Registry

	invocations  *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	remoteCalls  *prometheus.CounterVec
	pollAttempts *prometheus.CounterVec
	feeEstimates *prometheus.CounterVec
}

func New() (*Service, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}

	factory := promauto.With(reg)

	return &Service{
		Registry: reg,
		invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_total",
			Help:      "Contract invocations by outcome.",
		}, []string{"outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invocation_duration_seconds",
			Help:      "End to end duration of contract invocations.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"outcome"}),
		remoteCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_calls_total",
			Help:      "Ledger RPC calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		pollAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_attempts_total",
			Help:      "Confirmation status queries by observed status.",
		}, []string{"status"}),
		feeEstimates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fee_estimates_total",
			Help:      "Fee estimates by inclusion fee source.",
		}, []string{"source"}),
	}, nil
}

func (s *Service) ObserveInvocation(outcome string, d time.Duration) {
	s.invocations.WithLabelValues(outcome).Inc()
	s.duration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (s *Service) RemoteCall(operation string, outcome string) {
	s.remoteCalls.WithLabelValues(operation, outcome).Inc()
}

func (s *Service) PollAttempt(status string) {
	s.pollAttempts.WithLabelValues(status).Inc()
}

func (s *Service) FeeEstimate(source string) {
	s.feeEstimates.WithLabelValues(source).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{Registry: s.Registry})
}
