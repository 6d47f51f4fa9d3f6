package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "envwatch"

// Metrics holds the Prometheus counters, histograms, and gauges for the monitor.
type Metrics struct {
	ReadingsGenerated prometheus.Counter
	RiskScore         prometheus.Histogram
	Alerts            *prometheus.CounterVec // labels: rule
	SamplerRunning    prometheus.Gauge

	// Weather lookup metrics.
	WeatherLookups     *prometheus.CounterVec // labels: outcome={applied,not_configured,failed}
	WeatherCache       *prometheus.CounterVec // labels: result={hit,miss}
	WeatherAPIDuration prometheus.Histogram
	WeatherEnabled     prometheus.Gauge

	// Sensor enrichment cache.
	SensorCache *prometheus.CounterVec // labels: result={hit,miss}

	// Sinks.
	HistoryWrites     *prometheus.CounterVec // labels: outcome={success,error}
	ReadingsPublished prometheus.Counter
	PublishErrors     prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.ReadingsGenerated,
		m.RiskScore,
		m.Alerts,
		m.SamplerRunning,
		m.WeatherLookups,
		m.WeatherCache,
		m.WeatherAPIDuration,
		m.WeatherEnabled,
		m.SensorCache,
		m.HistoryWrites,
		m.ReadingsPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ReadingsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_generated_total",
			Help:      "Total readings assembled and scored.",
		}),
		RiskScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "risk_score",
			Help:      "Distribution of clamped risk scores.",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		Alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Alerts raised by rule.",
		}, []string{"rule"}),
		SamplerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sampler_running",
			Help:      "1 when the background sampler is active, 0 otherwise.",
		}),
		WeatherLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_lookups_total",
			Help:      "Weather overlay outcomes per reading.",
		}, []string{"outcome"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "weather_api_duration_seconds",
			Help:      "Weather API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		WeatherEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "weather_enabled",
			Help:      "1 when the weather overlay is enabled, 0 otherwise.",
		}),
		SensorCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_cache_total",
			Help:      "Sensor enrichment requests by cache result.",
		}, []string{"result"}),
		HistoryWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_writes_total",
			Help:      "History rows appended by outcome.",
		}, []string{"outcome"}),
		ReadingsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_published_total",
			Help:      "Assessments written to the readings topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed writes to the readings topic.",
		}),
	}
}
