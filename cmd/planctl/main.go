// Command planctl plans delivery routes locally or against a running
// planner service.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rickgao/delivery-planner/internal/version"
)

const defaultServer = "http://localhost:8080"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "planctl",
		Short:         "plan and inspect delivery routes",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "log planner activity to stderr")

	root.AddCommand(
		newPlanCommand(),
		newGetCommand(),
		newWatchCommand(),
		newDemoCommand(),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the planctl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// serverURL returns the --server flag, then $PLANNER_URL, then the local
// default.
func serverURL(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv("PLANNER_URL"); env != "" {
		return env
	}
	return defaultServer
}

// commandLogger writes text logs to the command's stderr when --verbose is
// set and discards them otherwise.
func commandLogger(cmd *cobra.Command) *slog.Logger {
	w := io.Discard
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		w = cmd.ErrOrStderr()
	}
	return slog.New(slog.NewTextHandler(w, nil))
}
