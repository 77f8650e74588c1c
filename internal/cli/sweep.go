package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aryankumar/pkmeans/internal/executor"
	"github.com/aryankumar/pkmeans/internal/kmeans"
	"github.com/aryankumar/pkmeans/internal/util"
	"github.com/spf13/cobra"
)

// Means further apart than this between two thread counts are reported.
const deviationTolerance = 1e-9

// How long an interrupted sweep waits for its runs to wind down.
const sweepShutdownTimeout = 5 * time.Second

// sweepRun is the summary of one run of a sweep.
type sweepRun struct {
	RunID        string  `json:"run_id" yaml:"run_id"`
	Workers      int     `json:"workers" yaml:"workers"`
	Iterations   int     `json:"iterations" yaml:"iterations"`
	Converged    bool    `json:"converged" yaml:"converged"`
	MaxDeviation float64 `json:"max_deviation" yaml:"max_deviation"`

	means []kmeans.Point
}

func (s *sweepRun) String() string {
	return fmt.Sprintf("workers=%d iterations=%d converged=%t deviation=%.3g",
		s.Workers, s.Iterations, s.Converged, s.MaxDeviation)
}

func newSweepCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the same dataset under several thread counts",
		Long: `Run the dataset once per thread count and compare the runs.

Every run starts from the same initial means, so all runs should need the
same number of iterations and agree on the final means up to floating point
summation order. The deviation column is the largest coordinate difference
from the first run.`,
		Example: `  pkmeans sweep --threads 1,2,4,8 -i input.txt
  pkmeans sweep --threads 1,16 --parallel 1 -o json < input.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSweep(cmd)
		},
	}

	cmd.Flags().IntSlice("threads", nil, "thread counts to compare (default from config, else 1,2,4,8)")
	cmd.Flags().IntP("parallel", "p", 0, "number of runs in flight at once (default from config, else 2)")

	return cmd
}

func (a *app) runSweep(cmd *cobra.Command) (err error) {
	threads := a.cfg.Sweep.Threads
	if cmd.Flags().Changed("threads") {
		threads, _ = cmd.Flags().GetIntSlice("threads")
	}
	parallel := a.cfg.Sweep.Parallel
	if cmd.Flags().Changed("parallel") {
		parallel, _ = cmd.Flags().GetInt("parallel")
	}

	if len(threads) == 0 {
		return util.NewValidationError("threads", threads, "at least one thread count is required")
	}
	for _, t := range threads {
		if t <= 0 {
			return util.NewValidationError("threads", t, "must be a positive integer")
		}
	}
	if parallel <= 0 {
		return util.NewValidationError("parallel", parallel, "must be a positive integer")
	}

	formatter, err := a.formatter()
	if err != nil {
		return err
	}

	ds, err := a.loadDataset(cmd)
	if err != nil {
		return err
	}

	sink, closeTrace, err := openTrace(a.cfg.Trace.File)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeTrace(); cerr != nil {
			err = util.CombineErrors(err, cerr)
		}
	}()

	pool := executor.NewPool(parallel, a.logger)
	// An interrupt stops the pool from taking or starting further runs.
	stopShutdown := context.AfterFunc(cmd.Context(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepShutdownTimeout)
		defer cancel()
		if err := pool.Shutdown(ctx); err != nil {
			a.logger.Warn("sweep runs did not stop in time", "error", err)
		}
	})
	defer stopShutdown()

	for _, t := range threads {
		engine, err := a.newEngine(t, kmeans.WithTrace(sink))
		if err != nil {
			return err
		}
		err = pool.Submit(executor.Task{
			Name: fmt.Sprintf("threads=%d", t),
			Execute: func(ctx context.Context) (interface{}, error) {
				res, err := engine.Run(ctx, ds.Means, ds.Points)
				if err != nil {
					return nil, err
				}
				return &sweepRun{
					RunID:      res.RunID,
					Workers:    res.Workers,
					Iterations: res.Iterations,
					Converged:  res.Converged,
					means:      res.Means,
				}, nil
			},
		})
		if errors.Is(err, util.ErrShutdown) {
			return fmt.Errorf("sweep interrupted: %w: %w", util.ErrCancelled, err)
		}
		if err != nil {
			return err
		}
	}

	results := pool.ExecuteWithProgress(cmd.Context(), func(completed, total int) {
		a.logger.Info("sweep progress", "completed", completed, "total", total)
	})
	a.compareRuns(results)

	if err := formatter.FormatRuns(cmd.OutOrStdout(), results); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	if executor.HasErrors(results) {
		failed := executor.FilterFailed(results)
		return fmt.Errorf("%d of %d runs failed: %w", len(failed), len(results),
			util.CombineErrors(executor.GetErrors(failed)...))
	}
	return nil
}

// compareRuns fills in each run's deviation from the first successful run
// and warns about runs that disagree with it.
func (a *app) compareRuns(results []executor.Result) {
	var base *sweepRun
	for _, r := range executor.FilterSuccessful(results) {
		run, ok := r.Data.(*sweepRun)
		if !ok {
			continue
		}
		if base == nil {
			base = run
			continue
		}

		run.MaxDeviation = kmeans.MaxDeviation(base.means, run.means)
		if run.MaxDeviation > deviationTolerance || run.Iterations != base.Iterations {
			a.logger.Warn("run disagrees with the first run",
				"run", r.Name,
				"iterations", run.Iterations,
				"base_iterations", base.Iterations,
				"max_deviation", run.MaxDeviation)
		}
	}
}
