package output

import (
	"encoding/json"
	"io"

	"github.com/aryankumar/pkmeans/internal/executor"
	"github.com/aryankumar/pkmeans/internal/kmeans"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	options *Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(opts *Options) *JSONFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &JSONFormatter{
		options: opts,
	}
}

// Format outputs a single data item as JSON
func (f *JSONFormatter) Format(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// FormatResult outputs a run as a ResultView.
func (f *JSONFormatter) FormatResult(w io.Writer, res *kmeans.Result) error {
	return f.Format(w, NewResultView(res, f.options.Wide))
}

// FormatRuns outputs runs as a list of RunView.
func (f *JSONFormatter) FormatRuns(w io.Writer, results []executor.Result) error {
	return f.Format(w, NewRunViews(results))
}
