package cli

import (
	"fmt"

	"github.com/aryankumar/pkmeans/internal/output"
	"github.com/spf13/cobra"
)

// newConfigCmd creates the config command
func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or save pkmeans settings",
		Long: `Show or save the effective pkmeans settings.

Settings come from the config file, PKMEANS_* environment variables and
command line flags, in increasing order of precedence.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "view",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigView(cmd)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "save",
		Short: "Write the effective configuration to the config file",
		Example: `  # Make table output and a bound of 50 the defaults
  pkmeans config save -o table --max-iterations 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigSave(cmd)
		},
	})

	return cmd
}

func (a *app) runConfigView(cmd *cobra.Command) error {
	formatter, err := a.formatter()
	if err != nil {
		return err
	}

	// The configuration is a nested document; text and table show it as YAML.
	switch formatter.(type) {
	case *output.TextFormatter, *output.TableFormatter:
		formatter = output.NewFormatter(output.FormatYAML)
	}
	return formatter.Format(cmd.OutOrStdout(), a.manager.GetConfig())
}

func (a *app) runConfigSave(cmd *cobra.Command) error {
	path, err := a.manager.Path()
	if err != nil {
		return err
	}
	if err := a.manager.Save(); err != nil {
		return err
	}

	a.logger.Info("saved configuration", "file", path)
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", path)
	return nil
}
