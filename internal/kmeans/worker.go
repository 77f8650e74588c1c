package kmeans

import (
	"context"
	"fmt"
	"time"

	"github.com/aryankumar/pkmeans/internal/barrier"
	"github.com/aryankumar/pkmeans/internal/partition"
	"github.com/aryankumar/pkmeans/internal/trace"
	"github.com/aryankumar/pkmeans/internal/util"
)

// Barrier rendezvous per iteration.
const barriersPerIteration = 4

type stopReason int

const (
	stopNone stopReason = iota
	stopConverged
	stopMaxIterations
	stopCancelled
)

func (s stopReason) String() string {
	switch s {
	case stopConverged:
		return "converged"
	case stopMaxIterations:
		return "max_iterations"
	case stopCancelled:
		return "cancelled"
	default:
		return "running"
	}
}

// state is shared by all workers of a run.
//
// points is read-only. assignment is written by each worker on its own
// partition range only. means, sum, count, flips, stop and history are
// written by the leader alone while every other worker is parked at a
// barrier.
type state struct {
	points     []Point
	means      []Point
	assignment []int

	sum   []Point
	count []int

	flips   int
	stop    stopReason
	history []int
}

// worker owns a partition range and private accumulators.
type worker struct {
	id  int
	rng partition.Range

	sumLocal   []Point
	countLocal []int
	flips      int
}

// run ties one invocation of Engine.Run to its shared state.
type run struct {
	ctx           context.Context
	st            *state
	workers       []*worker
	bar           *barrier.Barrier
	sink          trace.Sink
	metrics       Metrics
	maxIterations int

	// Set by the leader, read by the leader only.
	phaseStart time.Time
}

func (e *Engine) newRun(ctx context.Context, runID string, means, points []Point, table partition.Table) (*run, error) {
	k, n := len(means), len(points)

	st := &state{
		points:     points,
		means:      make([]Point, k),
		assignment: make([]int, n),
		sum:        make([]Point, k),
		count:      make([]int, k),
		// Nothing has been tallied yet; every point counts as unsettled.
		flips: n,
	}
	copy(st.means, means)

	workers := make([]*worker, len(table))
	for i, rng := range table {
		w, err := newWorker(i, rng, k)
		if err != nil {
			return nil, util.WrapWorkerError(i, err)
		}
		workers[i] = w
	}

	sink := e.sink
	if sl, ok := sink.(*trace.SlogSink); ok {
		sink = sl.With("run_id", runID)
	}

	var opts []barrier.Option
	if _, nop := sink.(trace.Nop); !nop {
		opts = append(opts, barrier.WithObserver(barrierTrace{sink: sink}))
	}

	bar, err := barrier.New(len(workers), opts...)
	if err != nil {
		return nil, err
	}

	return &run{
		ctx:           ctx,
		st:            st,
		workers:       workers,
		bar:           bar,
		sink:          sink,
		metrics:       e.metrics,
		maxIterations: e.maxIterations,
	}, nil
}

func newWorker(id int, rng partition.Range, k int) (*worker, error) {
	if rng.Len() < 0 || k <= 0 {
		return nil, fmt.Errorf("cannot allocate accumulators for range %s and %d clusters", rng, k)
	}
	return &worker{
		id:         id,
		rng:        rng,
		sumLocal:   make([]Point, k),
		countLocal: make([]int, k),
	}, nil
}

// work runs the per-iteration state machine for w until the leader
// publishes a stop reason.
func (r *run) work(w *worker) error {
	for iter := 0; ; iter++ {
		if w.id == leader {
			r.phaseStart = time.Now()
		}
		r.sink.Record(trace.Event{Kind: trace.KindPhaseStart, Iteration: iter, Worker: w.id,
			Phase: trace.PhaseAssign, Start: w.rng.Start, End: w.rng.End})

		r.assign(w)

		r.sink.Record(trace.Event{Kind: trace.KindPhaseDone, Iteration: iter, Worker: w.id,
			Phase: trace.PhaseAssign, Flips: w.flips})
		if w.id == leader {
			r.metrics.ObservePhase(string(trace.PhaseAssign), time.Since(r.phaseStart))
		}

		// Barriers 1 and 2 around the tally.
		r.bar.Serial(w.id, leader, func() { r.tally(iter) })

		if r.st.stop != stopNone {
			return r.err()
		}

		if w.id == leader {
			r.phaseStart = time.Now()
		}
		r.sink.Record(trace.Event{Kind: trace.KindPhaseStart, Iteration: iter, Worker: w.id,
			Phase: trace.PhaseLocalReduce})

		r.localReduce(w)

		r.sink.Record(trace.Event{Kind: trace.KindPhaseDone, Iteration: iter, Worker: w.id,
			Phase: trace.PhaseLocalReduce})
		if w.id == leader {
			r.metrics.ObservePhase(string(trace.PhaseLocalReduce), time.Since(r.phaseStart))
		}

		// Barriers 3 and 4 around the global reduction.
		r.bar.Serial(w.id, leader, func() { r.reduce(iter) })
	}
}

// assign moves every point of w's range to its nearest mean and counts the
// points that changed cluster.
func (r *run) assign(w *worker) {
	st := r.st
	w.flips = 0
	for i := w.rng.Start; i < w.rng.End; i++ {
		c := Nearest(st.points[i], st.means)
		if st.assignment[i] != c {
			st.assignment[i] = c
			w.flips++
		}
	}
}

// tally is the leader's first serial step: sum the local flip counts and
// decide whether the run goes on.
func (r *run) tally(iter int) {
	start := time.Now()
	r.sink.Record(trace.Event{Kind: trace.KindPhaseStart, Iteration: iter, Worker: leader, Phase: trace.PhaseTally})

	st := r.st
	total := 0
	for _, w := range r.workers {
		total += w.flips
	}
	st.flips = total
	st.history = append(st.history, total)
	r.metrics.ObserveIteration(total)

	switch {
	case total == 0:
		st.stop = stopConverged
	case r.ctx.Err() != nil:
		st.stop = stopCancelled
	case r.maxIterations > 0 && iter >= r.maxIterations:
		st.stop = stopMaxIterations
	default:
		for c := range st.sum {
			st.sum[c] = Point{}
			st.count[c] = 0
		}
	}

	r.sink.Record(trace.Event{Kind: trace.KindPhaseDone, Iteration: iter, Worker: leader, Phase: trace.PhaseTally, Flips: total})
	switch st.stop {
	case stopConverged:
		r.sink.Record(trace.Event{Kind: trace.KindConverged, Iteration: iter, Worker: -1, Flips: total})
	case stopNone:
	default:
		r.sink.Record(trace.Event{Kind: trace.KindStopped, Iteration: iter, Worker: -1, Flips: total, Reason: st.stop.String()})
	}
	r.metrics.ObservePhase(string(trace.PhaseTally), time.Since(start))
}

// localReduce sums w's points into its private accumulators.
func (r *run) localReduce(w *worker) {
	st := r.st
	for c := range w.sumLocal {
		w.sumLocal[c] = Point{}
		w.countLocal[c] = 0
	}

	for i := w.rng.Start; i < w.rng.End; i++ {
		c := st.assignment[i]
		w.countLocal[c]++
		for j := 0; j < Dim; j++ {
			w.sumLocal[c][j] += st.points[i][j]
		}
	}
}

// reduce is the leader's second serial step: merge every worker's partial
// sums and recompute the means. A cluster without points keeps its mean.
func (r *run) reduce(iter int) {
	start := time.Now()
	r.sink.Record(trace.Event{Kind: trace.KindPhaseStart, Iteration: iter, Worker: leader, Phase: trace.PhaseGlobalReduce})

	st := r.st
	for _, w := range r.workers {
		for c := range w.countLocal {
			if w.countLocal[c] == 0 {
				continue
			}
			st.count[c] += w.countLocal[c]
			for j := 0; j < Dim; j++ {
				st.sum[c][j] += w.sumLocal[c][j]
			}
		}
	}

	for c := range st.means {
		if st.count[c] == 0 {
			continue
		}
		for j := 0; j < Dim; j++ {
			st.means[c][j] = st.sum[c][j] / float64(st.count[c])
		}
	}

	r.sink.Record(trace.Event{Kind: trace.KindPhaseDone, Iteration: iter, Worker: leader, Phase: trace.PhaseGlobalReduce})
	r.metrics.ObservePhase(string(trace.PhaseGlobalReduce), time.Since(start))
}

// err maps the published stop reason to the value work returns.
func (r *run) err() error {
	if r.st.stop == stopCancelled {
		return fmt.Errorf("clustering interrupted after %d iterations: %w", len(r.st.history), r.ctx.Err())
	}
	return nil
}

// barrierTrace reports barrier traffic as trace events. Every iteration
// passes exactly four rendezvous, so the generation identifies both the
// iteration and the barrier within it.
type barrierTrace struct {
	sink trace.Sink
}

func (b barrierTrace) Arrive(participant int, gen uint64) {
	b.sink.Record(trace.Event{
		Kind:      trace.KindBarrierArrive,
		Iteration: int(gen / barriersPerIteration),
		Worker:    participant,
		Barrier:   int(gen%barriersPerIteration) + 1,
	})
}

func (b barrierTrace) Depart(participant int, gen uint64) {
	b.sink.Record(trace.Event{
		Kind:      trace.KindBarrierDepart,
		Iteration: int(gen / barriersPerIteration),
		Worker:    participant,
		Barrier:   int(gen%barriersPerIteration) + 1,
	})
}
