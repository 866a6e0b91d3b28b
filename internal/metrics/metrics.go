// Package metrics exposes wizard activity as Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// Metrics owns a private registry so several servers can run in one process.
type Metrics struct {
	registry *prometheus.Registry

	Sessions           prometheus.Counter
	StepTransitions    *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	Submissions        prometheus.Counter
	Requests           *prometheus.CounterVec
}

// New registers the formwizard collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "formwizard_sessions_started_total",
			Help: "Wizard sessions started.",
		}),
		StepTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formwizard_step_transitions_total",
				Help: "Step changes by origin and destination step.",
			},
			[]string{"from", "to"},
		),
		ValidationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formwizard_validation_failures_total",
				Help: "Rejected Next requests by step.",
			},
			[]string{"step"},
		),
		Submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "formwizard_submissions_total",
			Help: "Completed submissions.",
		}),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formwizard_http_requests_total",
				Help: "HTTP requests by method and status code.",
			},
			[]string{"method", "code"},
		),
	}
	m.registry.MustRegister(m.Sessions, m.StepTransitions, m.ValidationFailures, m.Submissions, m.Requests)
	return m
}

// Registry returns the registry backing Handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument counts requests passing through next.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerCounter(m.Requests, next)
}

// Hooks records controller events.
func (m *Metrics) Hooks() wizard.Hooks {
	return wizard.Hooks{
		OnStepChange: func(from, to int) {
			m.StepTransitions.WithLabelValues(strconv.Itoa(from), strconv.Itoa(to)).Inc()
		},
		OnValidationFailed: func(verr *wizard.ValidationError) {
			m.ValidationFailures.WithLabelValues(strconv.Itoa(verr.Step)).Inc()
		},
		OnSubmit: func(wizard.Submission) {
			m.Submissions.Inc()
		},
	}
}
