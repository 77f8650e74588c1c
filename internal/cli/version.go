package cli

import (
	"github.com/aryankumar/pkmeans/internal/output"
	"github.com/aryankumar/pkmeans/pkg/version"
	"github.com/spf13/cobra"
)

// newVersionCmd creates the version command
func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Display detailed version information for pkmeans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runVersion(cmd)
		},
	}
}

func (a *app) runVersion(cmd *cobra.Command) error {
	info := version.Get()

	formatter, err := a.formatter()
	if err != nil {
		return err
	}

	// Tables read better as key/value rows than as the struct.
	if _, ok := formatter.(*output.TableFormatter); ok {
		return formatter.Format(cmd.OutOrStdout(), info.Map())
	}
	return formatter.Format(cmd.OutOrStdout(), info)
}
