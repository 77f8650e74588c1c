package kmeans

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aryankumar/pkmeans/internal/partition"
	"github.com/aryankumar/pkmeans/internal/trace"
	"github.com/aryankumar/pkmeans/internal/util"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// leader is the worker that performs the serial bookkeeping steps.
const leader = 0

// Metrics receives run measurements. *metrics.Recorder implements it.
type Metrics interface {
	ObserveIteration(flips int)
	ObservePhase(phase string, d time.Duration)
	SetWorkers(n int)
	SetConverged(ok bool)
}

type nopMetrics struct{}

func (nopMetrics) ObserveIteration(int)               {}
func (nopMetrics) ObservePhase(string, time.Duration) {}
func (nopMetrics) SetWorkers(int)                     {}
func (nopMetrics) SetConverged(bool)                  {}

// Result is the outcome of a run.
type Result struct {
	// RunID identifies the run in trace output.
	RunID string

	// Means holds the final mean of every cluster.
	Means []Point

	// Assignment holds the cluster index of every point.
	Assignment []int

	// Iterations is the number of assignment passes, including the final
	// one that found no reassignment.
	Iterations int

	// Converged is false if the run stopped at the iteration bound.
	Converged bool

	// Flips holds the global reassignment count of every iteration.
	Flips []int

	// Workers is the number of workers that ran.
	Workers int

	// Partitions holds the point range owned by each worker.
	Partitions partition.Table
}

// Engine runs parallel k-means with a fixed number of workers.
// An Engine may be reused for several runs, one at a time or concurrently.
type Engine struct {
	workers       int
	maxIterations int
	runID         string

	logger  *slog.Logger
	sink    trace.Sink
	metrics Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for run level messages.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTrace sets the sink that receives phase transition events.
func WithTrace(sink trace.Sink) Option {
	return func(e *Engine) {
		if sink != nil {
			e.sink = sink
		}
	}
}

// WithMetrics sets the metrics receiver.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithMaxIterations bounds the number of mean updates. Zero, the default,
// means no bound.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		e.maxIterations = n
	}
}

// WithRunID sets the run identifier. By default every run gets a new UUID.
func WithRunID(id string) Option {
	return func(e *Engine) {
		e.runID = id
	}
}

// New creates an engine with the given number of workers.
func New(workers int, opts ...Option) (*Engine, error) {
	e := &Engine{
		workers: workers,
		logger:  slog.Default(),
		sink:    trace.Nop{},
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.workers <= 0 {
		return nil, util.NewValidationError("workers", workers, "must be greater than 0")
	}
	if e.maxIterations < 0 {
		return nil, util.NewValidationError("max-iterations", e.maxIterations, "must not be negative")
	}

	return e, nil
}

// Workers returns the configured worker count.
func (e *Engine) Workers() int {
	return e.workers
}

// Run clusters points starting from the given means. Neither input slice is
// modified.
//
// Run returns an error before starting any worker if the input is invalid,
// and returns ctx.Err() without a result if ctx is cancelled mid run.
func (e *Engine) Run(ctx context.Context, means, points []Point) (*Result, error) {
	if len(means) == 0 {
		return nil, ErrNoMeans
	}

	table, err := partition.New(len(points), e.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to partition %d points: %w", len(points), err)
	}

	runID := e.runID
	if runID == "" {
		runID = uuid.NewString()
	}

	r, err := e.newRun(ctx, runID, means, points, table)
	if err != nil {
		return nil, err
	}

	logger := e.logger.With("run_id", runID)
	logger.Debug("starting clustering run",
		"workers", e.workers,
		"clusters", len(means),
		"points", len(points))
	e.metrics.SetWorkers(e.workers)
	r.sink.Record(trace.Event{Kind: trace.KindRunStart, Worker: -1, End: len(points)})

	startTime := time.Now()

	var g errgroup.Group
	for _, w := range r.workers {
		w := w
		g.Go(func() error {
			return r.work(w)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Warn("clustering run stopped", "error", err, "iterations", len(r.st.history))
		return nil, err
	}

	converged := r.st.stop == stopConverged
	e.metrics.SetConverged(converged)
	r.sink.Record(trace.Event{Kind: trace.KindRunDone, Iteration: len(r.st.history), Worker: -1, Flips: r.st.flips})

	logger.Debug("clustering run completed",
		"iterations", len(r.st.history),
		"converged", converged,
		"duration", time.Since(startTime))

	return &Result{
		RunID:      runID,
		Means:      r.st.means,
		Assignment: r.st.assignment,
		Iterations: len(r.st.history),
		Converged:  converged,
		Flips:      r.st.history,
		Workers:    e.workers,
		Partitions: table,
	}, nil
}
