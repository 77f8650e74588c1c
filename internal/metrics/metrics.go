// Package metrics provides Prometheus metrics for clustering runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pkmeans"

// Recorder owns a private registry so several runs in one process do not
// share counters.
type Recorder struct {
	registry *prometheus.Registry

	iterations    prometheus.Counter
	flips         prometheus.Counter
	flipsPerIter  prometheus.Histogram
	phaseDuration *prometheus.HistogramVec
	workers       prometheus.Gauge
	converged     prometheus.Gauge
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,

		// Iterations counts tallies, including the final converging one.
		iterations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "iterations_total",
			Help:      "Total tally steps executed",
		}),

		flips: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flips_total",
			Help:      "Total point reassignments across all iterations",
		}),

		flipsPerIter: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "iteration_flips",
			Help:      "Point reassignments per iteration",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),

		phaseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "phase_duration_seconds",
				Help:      "Duration of a worker phase as seen by the leader",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
			},
			[]string{"phase"}, // assign/tally/local_reduce/global_reduce
		),

		workers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workers",
			Help:      "Number of workers in the current run",
		}),

		converged: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "converged",
			Help:      "1 if the last run reached a fixed point, 0 otherwise",
		}),
	}
}

// ObserveIteration records one tally with the given global flip total.
func (r *Recorder) ObserveIteration(flips int) {
	r.iterations.Inc()
	r.flips.Add(float64(flips))
	r.flipsPerIter.Observe(float64(flips))
}

// ObservePhase records how long a phase took.
func (r *Recorder) ObservePhase(phase string, d time.Duration) {
	r.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// SetWorkers records the worker count.
func (r *Recorder) SetWorkers(n int) {
	r.workers.Set(float64(n))
}

// SetConverged records whether the run converged.
func (r *Recorder) SetConverged(ok bool) {
	if ok {
		r.converged.Set(1)
		return
	}
	r.converged.Set(0)
}

// WriteTextfile writes the current metrics in the text exposition format to
// path, for pickup by the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
