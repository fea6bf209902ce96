package palette

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records one run on a private registry so repeated runs in a
// process (tests) never collide.
type Metrics struct {
	Registry *prometheus.Registry

	Rounds     prometheus.Counter
	Iterations prometheus.Gauge
	Converged  prometheus.Gauge
	Samples    prometheus.Gauge
	Clusters   prometheus.Gauge
	Inertia    prometheus.Gauge
	EmptyTotal prometheus.Counter
	Duration   *prometheus.GaugeVec
}

// NewMetrics registers the run metrics on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Rounds: factory.NewCounter(prometheus.CounterOpts{
			Name: "kpalette_rounds_total",
			Help: "Assignment and aggregation rounds executed",
		}),
		Iterations: factory.NewGauge(prometheus.GaugeOpts{
			Name: "kpalette_iterations",
			Help: "Non-converged iterations counted by the driver",
		}),
		Converged: factory.NewGauge(prometheus.GaugeOpts{
			Name: "kpalette_converged",
			Help: "1 if the run converged, 0 if it stopped at the iteration cap",
		}),
		Samples: factory.NewGauge(prometheus.GaugeOpts{
			Name: "kpalette_samples",
			Help: "Number of pixels clustered",
		}),
		Clusters: factory.NewGauge(prometheus.GaugeOpts{
			Name: "kpalette_clusters",
			Help: "Palette size k",
		}),
		Inertia: factory.NewGauge(prometheus.GaugeOpts{
			Name: "kpalette_inertia",
			Help: "Sum of squared distances to the assigned centroid in the last round",
		}),
		EmptyTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "kpalette_empty_clusters_total",
			Help: "Clusters that received no samples, summed over rounds",
		}),
		Duration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kpalette_stage_duration_seconds",
			Help: "Wall time spent per pipeline stage",
		}, []string{"stage"}),
	}
}

// ObserveRound is an Options.Observer
func (m *Metrics) ObserveRound(stats RoundStats) {
	m.Rounds.Inc()
	m.Inertia.Set(stats.Inertia)
	for _, n := range stats.Counts {
		if n == 0 {
			m.EmptyTotal.Inc()
		}
	}
}

// ObserveResult records the terminal state of a run
func (m *Metrics) ObserveResult(samples int, res *Result) {
	m.Samples.Set(float64(samples))
	m.Clusters.Set(float64(len(res.Centroids)))
	m.Iterations.Set(float64(res.Iterations))
	if res.Converged() {
		m.Converged.Set(1)
	} else {
		m.Converged.Set(0)
	}
}

// Time records how long stage took since start
func (m *Metrics) Time(stage string, start time.Time) {
	m.Duration.WithLabelValues(stage).Set(time.Since(start).Seconds())
}

// WriteTextfile exports all metrics in the Prometheus text format
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
