package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/aryankumar/pkmeans/internal/executor"
	"github.com/aryankumar/pkmeans/internal/kmeans"
	"github.com/aryankumar/pkmeans/internal/partition"
)

// Format names an output format.
type Format string

const (
	// FormatText writes the means only, one line per cluster.
	FormatText Format = "text"
	// FormatTable writes borderless tables.
	FormatTable Format = "table"
	// FormatJSON writes indented JSON.
	FormatJSON Format = "json"
	// FormatYAML writes YAML.
	FormatYAML Format = "yaml"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatTable, FormatJSON, FormatYAML}

// ParseFormat resolves a user supplied format name. The empty string maps
// to FormatText.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatText, nil
	}
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want one of text, table, json, yaml)", s)
}

// Formatter renders command results.
type Formatter interface {
	// Format writes an arbitrary value.
	Format(w io.Writer, data interface{}) error

	// FormatResult writes the outcome of one clustering run.
	FormatResult(w io.Writer, res *kmeans.Result) error

	// FormatRuns writes the outcomes of several runs.
	FormatRuns(w io.Writer, results []executor.Result) error
}

// Option is a functional option for configuring formatters
type Option func(*Options)

// Options holds configuration for formatters
type Options struct {
	// NoColor disables color output
	NoColor bool

	// NoHeaders disables table headers
	NoHeaders bool

	// Wide adds the per-point assignment and the partition table.
	Wide bool
}

// WithNoColor disables color output
func WithNoColor(noColor bool) Option {
	return func(o *Options) {
		o.NoColor = noColor
	}
}

// WithNoHeaders disables table headers
func WithNoHeaders(noHeaders bool) Option {
	return func(o *Options) {
		o.NoHeaders = noHeaders
	}
}

// WithWide enables wide output
func WithWide(wide bool) Option {
	return func(o *Options) {
		o.Wide = wide
	}
}

// NewFormatter creates a formatter for format. Unknown formats fall back
// to text.
func NewFormatter(format Format, opts ...Option) Formatter {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	switch format {
	case FormatTable:
		return NewTableFormatter(options)
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	default:
		return NewTextFormatter(options)
	}
}

// MeanView is one cluster of a run as exposed by the structured formats.
type MeanView struct {
	Cluster int          `json:"cluster" yaml:"cluster"`
	Mean    kmeans.Point `json:"mean" yaml:"mean,flow"`
	Points  int          `json:"points" yaml:"points"`
}

// ResultView is the structured form of a kmeans.Result.
type ResultView struct {
	RunID      string          `json:"run_id" yaml:"run_id"`
	Workers    int             `json:"workers" yaml:"workers"`
	Iterations int             `json:"iterations" yaml:"iterations"`
	Converged  bool            `json:"converged" yaml:"converged"`
	Flips      []int           `json:"flips" yaml:"flips,flow"`
	Means      []MeanView      `json:"means" yaml:"means"`
	Assignment []int           `json:"assignment,omitempty" yaml:"assignment,omitempty,flow"`
	Partitions partition.Table `json:"partitions,omitempty" yaml:"partitions,omitempty"`
}

// NewResultView converts res. The assignment and the partition table are
// only included when wide is set.
func NewResultView(res *kmeans.Result, wide bool) ResultView {
	sizes := ClusterSizes(res)
	v := ResultView{
		RunID:      res.RunID,
		Workers:    res.Workers,
		Iterations: res.Iterations,
		Converged:  res.Converged,
		Flips:      res.Flips,
		Means:      make([]MeanView, len(res.Means)),
	}
	for c, m := range res.Means {
		v.Means[c] = MeanView{Cluster: c, Mean: m, Points: sizes[c]}
	}
	if wide {
		v.Assignment = res.Assignment
		v.Partitions = res.Partitions
	}
	return v
}

// ClusterSizes counts the points assigned to each cluster of res.
func ClusterSizes(res *kmeans.Result) []int {
	sizes := make([]int, len(res.Means))
	for _, c := range res.Assignment {
		if c >= 0 && c < len(sizes) {
			sizes[c]++
		}
	}
	return sizes
}

// RunView is the structured form of one executor.Result.
type RunView struct {
	Name     string      `json:"name" yaml:"name"`
	Status   string      `json:"status" yaml:"status"`
	Duration string      `json:"duration" yaml:"duration"`
	Error    string      `json:"error,omitempty" yaml:"error,omitempty"`
	Data     interface{} `json:"data,omitempty" yaml:"data,omitempty"`
}

// NewRunViews converts results in order.
func NewRunViews(results []executor.Result) []RunView {
	views := make([]RunView, len(results))
	for i, r := range results {
		views[i] = RunView{
			Name:     r.Name,
			Status:   "success",
			Duration: r.Duration.String(),
		}
		if r.Error != nil {
			views[i].Status = "failed"
			views[i].Error = r.Error.Error()
		} else {
			views[i].Data = r.Data
		}
	}
	return views
}
