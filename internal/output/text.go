package output

import (
	"fmt"
	"io"

	"github.com/aryankumar/pkmeans/internal/dataset"
	"github.com/aryankumar/pkmeans/internal/executor"
	"github.com/aryankumar/pkmeans/internal/kmeans"
)

// TextFormatter writes plain lines with no decoration. Its result output
// is exactly the means listing other tools expect on stdout.
type TextFormatter struct {
	options *Options
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(opts *Options) *TextFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &TextFormatter{options: opts}
}

// Format prints data with its default formatting.
func (f *TextFormatter) Format(w io.Writer, data interface{}) error {
	if s, ok := data.(fmt.Stringer); ok {
		_, err := fmt.Fprintln(w, s.String())
		return err
	}
	_, err := fmt.Fprintln(w, data)
	return err
}

// FormatResult writes one "%5.2f " formatted line per mean.
func (f *TextFormatter) FormatResult(w io.Writer, res *kmeans.Result) error {
	return dataset.WriteMeans(w, res.Means)
}

// FormatRuns writes one tab separated line per run.
func (f *TextFormatter) FormatRuns(w io.Writer, results []executor.Result) error {
	for _, r := range results {
		var err error
		if r.Error != nil {
			_, err = fmt.Fprintf(w, "%s\tfailed\t%s\t%v\n", r.Name, r.Duration, r.Error)
		} else {
			_, err = fmt.Fprintf(w, "%s\tok\t%s\t%v\n", r.Name, r.Duration, r.Data)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
