package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aryankumar/pkmeans/internal/cli"
	"github.com/aryankumar/pkmeans/internal/util"
)

func main() {
	// Cancel the run on SIGINT/SIGTERM
	ctx, stop := util.SetupSignalHandler(slog.Default())

	err := cli.Execute(ctx)
	stop()

	switch {
	case err == nil:
		return
	case util.IsCancelled(err):
		slog.Warn("run interrupted", "error", err)
		fmt.Fprintln(os.Stderr, util.FriendlyError(err))
		os.Exit(130)
	default:
		slog.Error("command failed", "error", err)
		fmt.Fprintln(os.Stderr, util.FriendlyError(err))
		if util.IsValidation(err) {
			fmt.Fprintln(os.Stderr, "Run 'pkmeans --help' for usage.")
		}
		os.Exit(1)
	}
}
