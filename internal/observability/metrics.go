package observability

import (
	"net/http"
	"time"

	"github.com/conantteo/gitlab-pipeline-app/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes counters and gauges for the watch loop. All methods are
// nil-safe so callers can run without a registry.
type Metrics struct {
	pipelines       *prometheus.GaugeVec
	failedProjects  prometheus.Gauge
	refreshes       prometheus.Counter
	refreshFailures prometheus.Counter
	refreshSeconds  prometheus.Histogram
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		pipelines: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dashboard_pipelines",
			Help: "Pipelines in the current snapshot by status bucket.",
		}, []string{"status"}),
		failedProjects: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_failed_projects",
			Help: "Projects whose pipeline fetch errored in the current snapshot.",
		}),
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_refreshes_total",
			Help: "Completed aggregation cycles.",
		}),
		refreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_refresh_failures_total",
			Help: "Aggregation cycles that failed before producing a snapshot.",
		}),
		refreshSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_refresh_duration_seconds",
			Help:    "Wall time of one aggregation cycle.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	registerer.MustRegister(m.pipelines, m.failedProjects, m.refreshes, m.refreshFailures, m.refreshSeconds)
	return m
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) ObserveSnapshot(s domain.Snapshot, took time.Duration) {
	if m == nil {
		return
	}
	c := s.Counts()
	m.pipelines.WithLabelValues("succeeded").Set(float64(c.Succeeded))
	m.pipelines.WithLabelValues("failed").Set(float64(c.Failed))
	m.pipelines.WithLabelValues("running").Set(float64(c.Running))
	m.pipelines.WithLabelValues("pending").Set(float64(c.Pending))
	m.failedProjects.Set(float64(len(s.FailedProjects)))
	m.refreshes.Inc()
	m.refreshSeconds.Observe(took.Seconds())
}

func (m *Metrics) IncRefreshFailure() {
	if m == nil || m.refreshFailures == nil {
		return
	}
	m.refreshFailures.Inc()
}
