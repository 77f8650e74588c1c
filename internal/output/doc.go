// Package output renders clustering results for the terminal and for
// scripts.
//
// Four formats are supported:
//
//   - text: the means only, one "%5.2f " formatted line per cluster. This is
//     the default and is what downstream tools parse.
//   - table: a status line and a borderless table with cluster sizes. Wide
//     mode adds the partition table.
//   - json and yaml: a ResultView document. Wide mode adds the per-point
//     assignment and the partition table.
//
// Results from the sweep command are a list of executor.Result and are
// rendered with FormatRuns.
//
//	formatter := output.NewFormatter(output.FormatTable, output.WithNoColor(true))
//	formatter.FormatResult(os.Stdout, res)
//
// Colors are applied only when writing to a terminal and never when
// WithNoColor is set.
package output
