// Package timing measures wall clock and process CPU time of a run.
package timing

import (
	"fmt"
	"time"
)

// Stopwatch captures wall and CPU time from the moment it is started.
type Stopwatch struct {
	wallStart time.Time
	cpuStart  time.Duration
}

// Report is the elapsed time between Start and Stop.
type Report struct {
	Wall time.Duration `json:"wall" yaml:"wall"`
	CPU  time.Duration `json:"cpu" yaml:"cpu"`
}

// Start returns a running stopwatch.
func Start() *Stopwatch {
	return &Stopwatch{
		wallStart: time.Now(),
		cpuStart:  processCPUTime(),
	}
}

// Stop returns the time elapsed since Start. It may be called repeatedly.
func (s *Stopwatch) Stop() Report {
	return Report{
		Wall: time.Since(s.wallStart),
		CPU:  processCPUTime() - s.cpuStart,
	}
}

// String implements fmt.Stringer.
func (r Report) String() string {
	return fmt.Sprintf("wall=%.6fs cpu=%.6fs", r.Wall.Seconds(), r.CPU.Seconds())
}
