package output

import (
	"io"

	"github.com/aryankumar/pkmeans/internal/executor"
	"github.com/aryankumar/pkmeans/internal/kmeans"
	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	options *Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(opts *Options) *YAMLFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &YAMLFormatter{
		options: opts,
	}
}

// Format outputs a single data item as YAML
func (f *YAMLFormatter) Format(w io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	return encoder.Encode(data)
}

// FormatResult outputs a run as a ResultView.
func (f *YAMLFormatter) FormatResult(w io.Writer, res *kmeans.Result) error {
	return f.Format(w, NewResultView(res, f.options.Wide))
}

// FormatRuns outputs runs as a list of RunView.
func (f *YAMLFormatter) FormatRuns(w io.Writer, results []executor.Result) error {
	return f.Format(w, NewRunViews(results))
}
