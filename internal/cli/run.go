package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/aryankumar/pkmeans/internal/dataset"
	"github.com/aryankumar/pkmeans/internal/kmeans"
	"github.com/aryankumar/pkmeans/internal/metrics"
	"github.com/aryankumar/pkmeans/internal/timing"
	"github.com/aryankumar/pkmeans/internal/trace"
	"github.com/aryankumar/pkmeans/internal/util"
	"github.com/spf13/cobra"
)

// runCluster reads the dataset, runs the engine with threads workers and
// writes the final means.
func (a *app) runCluster(cmd *cobra.Command, threads int) (err error) {
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

	opts := []kmeans.Option{kmeans.WithTrace(sink)}
	var rec *metrics.Recorder
	if a.cfg.Metrics.File != "" {
		rec = metrics.New()
		opts = append(opts, kmeans.WithMetrics(rec))
	}

	engine, err := a.newEngine(threads, opts...)
	if err != nil {
		return err
	}

	a.logger.Info("starting k-means", "threads", threads, "clusters", ds.K(), "points", ds.N())

	sw := timing.Start()
	res, err := engine.Run(cmd.Context(), ds.Means, ds.Points)
	elapsed := sw.Stop()
	if err != nil {
		return err
	}

	if err := formatter.FormatResult(cmd.OutOrStdout(), res); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	a.logger.Info("k-means finished",
		"run_id", res.RunID,
		"iterations", res.Iterations,
		"converged", res.Converged,
		"wall_seconds", elapsed.Wall.Seconds(),
		"cpu_seconds", elapsed.CPU.Seconds())
	if !res.Converged {
		a.logger.Warn("stopped at the iteration limit before convergence",
			"max_iterations", a.cfg.Run.MaxIterations,
			"last_flips", res.Flips[len(res.Flips)-1])
	}

	if rec != nil {
		if err := rec.WriteTextfile(a.cfg.Metrics.File); err != nil {
			return err
		}
		a.logger.Debug("wrote metrics", "file", a.cfg.Metrics.File)
	}
	return nil
}

// newEngine builds an engine from the loaded configuration.
func (a *app) newEngine(threads int, opts ...kmeans.Option) (*kmeans.Engine, error) {
	base := []kmeans.Option{
		kmeans.WithLogger(a.logger),
		kmeans.WithMaxIterations(a.cfg.Run.MaxIterations),
	}
	return kmeans.New(threads, append(base, opts...)...)
}

// loadDataset reads the configured input file, or stdin when none is set.
func (a *app) loadDataset(cmd *cobra.Command) (*dataset.Dataset, error) {
	var r io.Reader = cmd.InOrStdin()
	name := "stdin"

	if path := a.cfg.Run.Input; path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r, name = f, path
	}

	ds, err := dataset.Read(r)
	if err != nil {
		return nil, util.WrapErrorf(err, "failed to read dataset from %s", name)
	}
	a.logger.Debug("loaded dataset", "source", name, "clusters", ds.K(), "points", ds.N())
	return ds, nil
}

// openTrace returns the sink for path and a function closing it. An empty
// path disables tracing. The close function reports write errors the sink
// ran into as well as the close error itself.
func openTrace(path string) (trace.Sink, func() error, error) {
	if path == "" {
		return trace.Nop{}, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	sink := trace.NewJSON(f)
	return sink, func() error {
		werr := util.WrapErrorf(sink.Err(), "failed to write trace file %s", path)
		cerr := util.WrapErrorf(f.Close(), "failed to close trace file %s", path)
		return util.CombineErrors(werr, cerr)
	}, nil
}
