package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/aryankumar/pkmeans/internal/executor"
	"github.com/aryankumar/pkmeans/internal/kmeans"
	"github.com/olekukonko/tablewriter"
)

// Longest data cell printed in a runs table.
const maxDataWidth = 80

// TableFormatter formats output as borderless tables.
type TableFormatter struct {
	options *Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(opts *Options) *TableFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &TableFormatter{
		options: opts,
	}
}

// Format outputs a single data item as a table. Maps become KEY/VALUE rows;
// anything else is printed as is.
func (f *TableFormatter) Format(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case map[string]interface{}:
		return f.formatMap(w, v)
	case map[string]string:
		m := make(map[string]interface{}, len(v))
		for k, s := range v {
			m[k] = s
		}
		return f.formatMap(w, m)
	default:
		_, err := fmt.Fprintln(w, v)
		return err
	}
}

// FormatResult writes a status line followed by one row per cluster.
func (f *TableFormatter) FormatResult(w io.Writer, res *kmeans.Result) error {
	colors := NewColorScheme(w, f.options.NoColor)

	status := "converged"
	if !res.Converged {
		status = "stopped"
	}
	fmt.Fprintf(w, "Run %s: %s after %d iterations with %d workers\n\n",
		res.RunID, colors.ConvergedColor(res.Converged)(status), res.Iterations, res.Workers)

	table := f.createTable(w)
	f.setHeader(table, colors, "CLUSTER", "X", "Y", "Z", "POINTS")

	sizes := ClusterSizes(res)
	for c, m := range res.Means {
		row := []string{colors.Cluster("%d", c)}
		for j := 0; j < kmeans.Dim; j++ {
			row = append(row, strconv.FormatFloat(m[j], 'f', 6, 64))
		}
		row = append(row, strconv.Itoa(sizes[c]))
		table.Append(row)
	}
	table.Render()

	if !f.options.Wide {
		return nil
	}

	fmt.Fprintln(w)
	parts := f.createTable(w)
	f.setHeader(parts, colors, "WORKER", "START", "END", "POINTS")
	for i, r := range res.Partitions {
		parts.Append([]string{strconv.Itoa(i), strconv.Itoa(r.Start), strconv.Itoa(r.End), strconv.Itoa(r.Len())})
	}
	parts.Render()
	return nil
}

// FormatRuns writes one row per run and a summary line.
func (f *TableFormatter) FormatRuns(w io.Writer, results []executor.Result) error {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results")
		return nil
	}

	colors := NewColorScheme(w, f.options.NoColor)
	table := f.createTable(w)
	f.setHeader(table, colors, "RUN", "STATUS", "DURATION", "DETAILS")

	for _, r := range results {
		status := "Success"
		details := ""
		if r.Error != nil {
			status = "Failed"
			details = r.Error.Error()
		} else if r.Data != nil {
			details = fmt.Sprintf("%v", r.Data)
		}
		if len(details) > maxDataWidth && !f.options.Wide {
			details = details[:maxDataWidth-3] + "..."
		}

		table.Append([]string{
			colors.Cluster("%s", r.Name),
			colors.StatusColor(r.Error != nil)("%s", status),
			colors.Duration("%s", r.Duration.Round(1000)),
			details,
		})
	}
	table.Render()

	f.printSummary(w, results, colors)
	return nil
}

func (f *TableFormatter) formatMap(w io.Writer, data map[string]interface{}) error {
	table := f.createTable(w)
	colors := NewColorScheme(w, f.options.NoColor)
	f.setHeader(table, colors, "KEY", "VALUE")

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		table.Append([]string{k, fmt.Sprintf("%v", data[k])})
	}
	table.Render()
	return nil
}

func (f *TableFormatter) setHeader(table *tablewriter.Table, colors *ColorScheme, headers ...string) {
	if f.options.NoHeaders {
		return
	}
	if colors.Disabled {
		table.SetHeader(headers)
		return
	}
	colored := make([]string, len(headers))
	for i, h := range headers {
		colored[i] = colors.Header("%s", h)
	}
	table.SetHeader(colored)
}

// createTable creates a borderless, tab padded table.
func (f *TableFormatter) createTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	return table
}

func (f *TableFormatter) printSummary(w io.Writer, results []executor.Result, colors *ColorScheme) {
	summary := executor.Summarize(results)

	failed := fmt.Sprintf("%d failed", summary.Failed)
	if summary.Failed > 0 {
		failed = colors.Error("%s", failed)
	}

	fmt.Fprintf(w, "\nSummary: %s, %s, %.0f%% success rate, %s\n",
		colors.Success("%d successful", summary.Successful),
		failed,
		executor.SuccessRate(results),
		colors.Duration("avg=%s", summary.AvgDuration.Round(1000)))
}
