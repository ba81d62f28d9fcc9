// Package main implements the pomo CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pomo",
	Short: "Pomodoro timer with task tracking and focus statistics",
	Long: `pomo runs a Pomodoro timer from the command line.

The timer lives in a state file, so "pomo start" in one shell and
"pomo status" in another see the same session. Finished focus sessions
are logged and credited to the focused task; "pomo stats" summarizes them.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.SetErrPrefix("pomo:")
}

func printWarnings(warnings []string) {
	for _, warning := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
}
