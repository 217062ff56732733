package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HistogramBuckets are request latency buckets in milliseconds.
var HistogramBuckets = []float64{
	5, 10, 25, 50, 75, 100, 150, 200, 300, 500,
	750, 1000, 1500, 2000, 3000, 5000, 10000,
}

// Metric is a definition for the name, description, type, ID, and
// prometheus.Collector type (i.e. CounterVec, Summary, etc) of each metric
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric associates prometheus.Collector based on Metric.Type
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	switch m.Type {
	case "counter_vec":
		return prometheus.NewCounterVec(prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	case "counter":
		return prometheus.NewCounter(prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description})
	case "gauge_vec":
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	case "histogram_vec":
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets}, m.Args)
	case "summary_vec":
		return prometheus.NewSummaryVec(prometheus.SummaryOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	}
	return nil
}

var (
	// LicenseAPICalls counts license API dispatches by endpoint and outcome.
	LicenseAPICalls = &Metric{
		ID:          "apiCalls",
		Name:        "api_calls_total",
		Description: "License API calls, partitioned by endpoint and result.",
		Type:        "counter_vec",
		Args:        []string{"endpoint", "result"},
	}
	// Activations counts activation attempts by result.
	Activations = &Metric{
		ID:          "activations",
		Name:        "activations_total",
		Description: "Activation attempts, partitioned by result.",
		Type:        "counter_vec",
		Args:        []string{"result"},
	}
	KeyEvents = &Metric{
		ID:          "keyEvents",
		Name:        "key_events_total",
		Description: "License key lifecycle events such as renewals and expirations.",
		Type:        "counter_vec",
		Args:        []string{"event"},
	}
	BillingEvents = &Metric{
		ID:          "billingEvents",
		Name:        "billing_events_total",
		Description: "Billing webhook events, partitioned by type and result.",
		Type:        "counter_vec",
		Args:        []string{"type", "result"},
	}
)

// DomainMetrics are registered next to the HTTP metrics.
var DomainMetrics = []*Metric{LicenseAPICalls, Activations, KeyEvents, BillingEvents}

// Inc increments a counter_vec metric once it has been registered.
// Unregistered metrics are ignored so services work without a Prometheus instance.
func Inc(m *Metric, labels ...string) {
	if cv, ok := m.MetricCollector.(*prometheus.CounterVec); ok {
		cv.WithLabelValues(labels...).Inc()
	}
}

func Add(m *Metric, v float64, labels ...string) {
	if cv, ok := m.MetricCollector.(*prometheus.CounterVec); ok {
		cv.WithLabelValues(labels...).Add(v)
	}
}
