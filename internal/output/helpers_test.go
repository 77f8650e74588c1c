package output

import (
	"errors"
	"fmt"
	"time"

	"github.com/aryankumar/pkmeans/internal/executor"
	"github.com/aryankumar/pkmeans/internal/kmeans"
	"github.com/aryankumar/pkmeans/internal/partition"
)

func sampleResult() *kmeans.Result {
	return &kmeans.Result{
		RunID:      "run-1",
		Means:      []kmeans.Point{{1.5, 1.5, 1.5}, {10, 10, 10}},
		Assignment: []int{0, 0, 1, 1, 1},
		Iterations: 2,
		Converged:  true,
		Flips:      []int{3, 0},
		Workers:    2,
		Partitions: partition.Table{{Start: 0, End: 2}, {Start: 2, End: 5}},
	}
}

type sweepRow struct {
	Workers    int `json:"workers" yaml:"workers"`
	Iterations int `json:"iterations" yaml:"iterations"`
}

func sampleRuns() []executor.Result {
	return []executor.Result{
		{Name: "threads=1", Data: sweepRow{Workers: 1, Iterations: 4}, Duration: 15 * time.Millisecond},
		{Name: "threads=8", Error: errors.New("interrupted"), Duration: 5 * time.Millisecond},
	}
}

func typeName(v interface{}) string {
	return fmt.Sprintf("%T", v)
}
