package config

// Config is the pkmeans configuration file structure.
type Config struct {
	// Run controls the clustering engine
	Run RunConfig `yaml:"run,omitempty" json:"run,omitempty"`

	// Output controls how results are rendered
	Output OutputConfig `yaml:"output,omitempty" json:"output,omitempty"`

	// Trace configures the per-phase event log
	Trace TraceConfig `yaml:"trace,omitempty" json:"trace,omitempty"`

	// Metrics configures the Prometheus textfile export
	Metrics MetricsConfig `yaml:"metrics,omitempty" json:"metrics,omitempty"`

	// Sweep holds defaults for the sweep command
	Sweep SweepConfig `yaml:"sweep,omitempty" json:"sweep,omitempty"`
}

// RunConfig contains engine settings
type RunConfig struct {
	// Input is the dataset path; empty or "-" reads stdin
	Input string `yaml:"input,omitempty" json:"input,omitempty"`

	// MaxIterations bounds the number of mean updates; 0 means unbounded
	MaxIterations int `yaml:"maxIterations,omitempty" json:"maxIterations,omitempty"`
}

// OutputConfig contains rendering settings
type OutputConfig struct {
	// Format is one of text, table, json, yaml
	Format string `yaml:"format,omitempty" json:"format,omitempty"`

	// NoColor disables colored output
	NoColor bool `yaml:"noColor,omitempty" json:"noColor,omitempty"`

	// Wide adds the assignment and partition table
	Wide bool `yaml:"wide,omitempty" json:"wide,omitempty"`

	// NoHeaders omits table headers
	NoHeaders bool `yaml:"noHeaders,omitempty" json:"noHeaders,omitempty"`
}

// TraceConfig contains trace settings
type TraceConfig struct {
	// File receives one JSON event per line; empty disables tracing
	File string `yaml:"file,omitempty" json:"file,omitempty"`
}

// MetricsConfig contains metrics settings
type MetricsConfig struct {
	// File is written in the Prometheus text format after the run
	File string `yaml:"file,omitempty" json:"file,omitempty"`
}

// SweepConfig contains sweep command defaults
type SweepConfig struct {
	// Threads lists the worker counts to compare
	Threads []int `yaml:"threads,omitempty" json:"threads,omitempty"`

	// Parallel is the number of runs in flight at once
	Parallel int `yaml:"parallel,omitempty" json:"parallel,omitempty"`
}
