package metrics

import (
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK              = "ok"
	OutcomeNotFound        = "not_found"
	OutcomeForbidden       = "forbidden"
	OutcomeBadRequest      = "bad_request"
	OutcomeRateLimited     = "rate_limited"
	OutcomeError           = "error"
	SettingsSourceFile     = "file"
	SettingsSourceDefaults = "defaults"
)

// Config labels every series with the running service.
type Config struct {
	ServiceName string
	Environment string
}

// Metrics exposes the invoice print counters.
type Metrics struct {
	invoiceRender *prometheus.CounterVec
	renderLatency *prometheus.HistogramVec
	publicVerify  *prometheus.CounterVec
	settingsLoad  *prometheus.CounterVec
}

// New registers the counters on registerer. Passing nil uses the default registerer.
func New(cfg Config, registerer prometheus.Registerer) (*Metrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "repairdesk"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &Metrics{
		invoiceRender: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "repairdesk_invoice_render_total",
			Help:        "Invoice documents rendered by format and outcome.",
			ConstLabels: constLabels,
		}, []string{"format", "outcome"}),
		renderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "repairdesk_invoice_render_duration_seconds",
			Help:        "Time spent loading and rendering an invoice document.",
			Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			ConstLabels: constLabels,
		}, []string{"format"}),
		publicVerify: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "repairdesk_public_verify_total",
			Help:        "Public phone and repair id verifications by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		settingsLoad: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "repairdesk_settings_load_total",
			Help:        "Print settings loads by source.",
			ConstLabels: constLabels,
		}, []string{"source"}),
	}

	var err error
	if m.invoiceRender, err = register(registerer, m.invoiceRender); err != nil {
		return nil, err
	}
	if m.renderLatency, err = register(registerer, m.renderLatency); err != nil {
		return nil, err
	}
	if m.publicVerify, err = register(registerer, m.publicVerify); err != nil {
		return nil, err
	}
	if m.settingsLoad, err = register(registerer, m.settingsLoad); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordInvoiceRender counts one document build attempt.
func (m *Metrics) RecordInvoiceRender(format, outcome string, seconds float64) {
	if m == nil {
		return
	}
	format = normalizeLabel(format)
	m.invoiceRender.WithLabelValues(format, normalizeLabel(outcome)).Inc()
	if seconds >= 0 {
		m.renderLatency.WithLabelValues(format).Observe(seconds)
	}
}

func (m *Metrics) RecordPublicVerify(outcome string) {
	if m == nil {
		return
	}
	m.publicVerify.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *Metrics) RecordSettingsLoad(source string) {
	if m == nil {
		return
	}
	m.settingsLoad.WithLabelValues(normalizeLabel(source)).Inc()
}

// register returns the collector already registered under the same descriptor, if any.
func register[C prometheus.Collector](registerer prometheus.Registerer, c C) (C, error) {
	if err := registerer.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func normalizeLabel(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "unknown"
	}
	return value
}
