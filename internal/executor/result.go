package executor

import (
	"fmt"
	"strings"
	"time"
)

// CountSuccessful returns the number of results without an error.
func CountSuccessful(results []Result) int {
	count := 0
	for _, r := range results {
		if r.Error == nil {
			count++
		}
	}
	return count
}

// CountFailed returns the number of results carrying an error.
func CountFailed(results []Result) int {
	return len(results) - CountSuccessful(results)
}

// FilterSuccessful returns the results without an error.
func FilterSuccessful(results []Result) []Result {
	return filter(results, func(r Result) bool { return r.Error == nil })
}

// FilterFailed returns the results carrying an error.
func FilterFailed(results []Result) []Result {
	return filter(results, func(r Result) bool { return r.Error != nil })
}

func filter(results []Result, keep func(Result) bool) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// GetErrors returns the errors of failed results.
func GetErrors(results []Result) []error {
	errs := make([]error, 0)
	for _, r := range results {
		if r.Error != nil {
			errs = append(errs, r.Error)
		}
	}
	return errs
}

// HasErrors reports whether any result failed.
func HasErrors(results []Result) bool {
	for _, r := range results {
		if r.Error != nil {
			return true
		}
	}
	return false
}

// SuccessRate returns the share of successful results as a percentage.
func SuccessRate(results []Result) float64 {
	if len(results) == 0 {
		return 0.0
	}
	return float64(CountSuccessful(results)) / float64(len(results)) * 100.0
}

// Summary aggregates a batch of results.
type Summary struct {
	Total       int
	Successful  int
	Failed      int
	AvgDuration time.Duration
	MaxDuration time.Duration
	MinDuration time.Duration
}

// Summarize builds a Summary of results.
func Summarize(results []Result) Summary {
	s := Summary{
		Total:      len(results),
		Successful: CountSuccessful(results),
	}
	s.Failed = s.Total - s.Successful
	if s.Total == 0 {
		return s
	}

	var sum time.Duration
	s.MinDuration = results[0].Duration
	for _, r := range results {
		sum += r.Duration
		s.MaxDuration = max(s.MaxDuration, r.Duration)
		s.MinDuration = min(s.MinDuration, r.Duration)
	}
	s.AvgDuration = sum / time.Duration(s.Total)
	return s
}

// String renders the summary on one line.
func (s Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total: %d, Successful: %d, Failed: %d", s.Total, s.Successful, s.Failed)
	if s.Total > 0 {
		fmt.Fprintf(&sb, ", Avg: %s, Max: %s, Min: %s",
			s.AvgDuration.Round(time.Millisecond),
			s.MaxDuration.Round(time.Millisecond),
			s.MinDuration.Round(time.Millisecond))
	}
	return sb.String()
}
