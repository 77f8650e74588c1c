package cli

import (
	"fmt"

	"github.com/aryankumar/pkmeans/internal/kmeans"
	"github.com/spf13/cobra"
)

// verifyReport is the outcome of the verify command.
type verifyReport struct {
	RunID      string `json:"run_id" yaml:"run_id"`
	Workers    int    `json:"workers" yaml:"workers"`
	Iterations int    `json:"iterations" yaml:"iterations"`
	Converged  bool   `json:"converged" yaml:"converged"`
	Residual   int    `json:"residual_flips" yaml:"residual_flips"`
	FixedPoint bool   `json:"fixed_point" yaml:"fixed_point"`
}

func (r verifyReport) String() string {
	return fmt.Sprintf("run %s: %d iterations with %d workers, converged=%t, residual flips=%d, fixed point=%t",
		r.RunID, r.Iterations, r.Workers, r.Converged, r.Residual, r.FixedPoint)
}

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <threads>",
		Short: "Check that a run ends at a fixed point",
		Long: `Run the dataset with the given number of threads, then repeat the
assignment step once, serially, against the returned means. A converged run
must not move any point.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			threads, err := parseThreads(args[0])
			if err != nil {
				return err
			}
			return a.runVerify(cmd, threads)
		},
	}
}

func (a *app) runVerify(cmd *cobra.Command, threads int) error {
	formatter, err := a.formatter()
	if err != nil {
		return err
	}

	ds, err := a.loadDataset(cmd)
	if err != nil {
		return err
	}

	engine, err := a.newEngine(threads)
	if err != nil {
		return err
	}

	res, err := engine.Run(cmd.Context(), ds.Means, ds.Points)
	if err != nil {
		return err
	}

	assignment := make([]int, len(res.Assignment))
	copy(assignment, res.Assignment)
	residual := kmeans.Assign(ds.Points, res.Means, assignment)

	report := verifyReport{
		RunID:      res.RunID,
		Workers:    res.Workers,
		Iterations: res.Iterations,
		Converged:  res.Converged,
		Residual:   residual,
		FixedPoint: residual == 0,
	}
	if err := formatter.Format(cmd.OutOrStdout(), report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if res.Converged && residual != 0 {
		return fmt.Errorf("run %s converged but %d points move on reassignment", res.RunID, residual)
	}
	return nil
}
