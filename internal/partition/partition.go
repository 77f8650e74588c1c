// Package partition splits an index space [0, n) into contiguous,
// disjoint ranges, one per worker.
package partition

import (
	"fmt"

	"github.com/aryankumar/pkmeans/internal/util"
)

// Range is the half-open index interval [Start, End) owned by one worker.
type Range struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// String implements fmt.Stringer.
func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// Table maps worker index to the range it owns.
type Table []Range

// New builds the static partition table for n items and t workers.
//
// Every worker gets n/t items; the last one also takes the remainder. With
// t > n the leading workers receive empty ranges.
func New(n, t int) (Table, error) {
	if t <= 0 {
		return nil, util.NewValidationError("workers", t, "must be greater than 0")
	}
	if n < 0 {
		return nil, util.NewValidationError("points", n, "must not be negative")
	}

	chunk := n / t
	table := make(Table, t)
	for i := 0; i < t; i++ {
		start := i * chunk
		end := start + chunk
		if i == t-1 {
			end = n
		}
		table[i] = Range{Start: start, End: end}
	}

	if err := table.Validate(n); err != nil {
		return nil, err
	}

	return table, nil
}

// Validate checks that the ranges are well formed, pairwise disjoint and
// cover [0, n) exactly once, in worker order.
func (t Table) Validate(n int) error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty partition table", util.ErrInvalidConfig)
	}

	next := 0
	for i, r := range t {
		if r.Start > r.End {
			return fmt.Errorf("%w: worker %d has inverted range %s", util.ErrInvalidConfig, i, r)
		}
		if r.Start != next {
			return fmt.Errorf("%w: worker %d range %s does not start at %d", util.ErrInvalidConfig, i, r, next)
		}
		next = r.End
	}

	if next != n {
		return fmt.Errorf("%w: partition table covers [0, %d), want [0, %d)", util.ErrInvalidConfig, next, n)
	}

	return nil
}
