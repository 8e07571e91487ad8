package provisioning

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/imamik/swiftsetup/internal/remote"
)

const metricsNamespace = "swiftsetup"

// Metrics collects deployment metrics in a dedicated registry so a run can
// export them without a long-lived endpoint. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	hostResults   *prometheus.CounterVec
	runsTotal     *prometheus.CounterVec
	lastRun       *prometheus.GaugeVec
}

// NewMetrics creates and registers the deployment metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "deploy",
				Name:      "stage_duration_seconds",
				Help:      "Duration of deployment stages in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12), // 0.5s to ~17min
			},
			[]string{"role", "stage", "result"},
		),
		hostResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "deploy",
				Name:      "host_results_total",
				Help:      "Per-host stage outcomes by result",
			},
			[]string{"role", "stage", "result"},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "deploy",
				Name:      "runs_total",
				Help:      "Total number of role deployments by result",
			},
			[]string{"role", "result"},
		),
		lastRun: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: "deploy",
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time of the last deployment by role",
			},
			[]string{"role"},
		),
	}
	m.registry.MustRegister(m.stageDuration, m.hostResults, m.runsTotal, m.lastRun)
	return m
}

// Registry returns the registry holding the deployment metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveStage records the duration and outcome of one stage.
func (m *Metrics) ObserveStage(role, stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(role, stage, resultLabel(err == nil)).Observe(d.Seconds())
}

// RecordHosts counts the per-host outcomes of one stage.
func (m *Metrics) RecordHosts(role, stage string, results remote.Results) {
	if m == nil {
		return
	}
	for _, r := range results {
		m.hostResults.WithLabelValues(role, stage, resultLabel(r.OK)).Inc()
	}
}

// RecordRun counts a finished deployment.
func (m *Metrics) RecordRun(role string, ok bool) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(role, resultLabel(ok)).Inc()
	m.lastRun.WithLabelValues(role).SetToCurrentTime()
}

// WriteTextfile writes every metric to path in the node exporter textfile
// format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
