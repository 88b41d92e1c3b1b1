package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func ExecuteContext(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

type rootOptions struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "wl",
		Short:         "Watchlist CLI (wl): keep a list of titles to watch",
		Long:          "wl keeps a personal watchlist in durable local storage, records every change in an event log, follows changes made by other wl processes sharing the same storage, and browses popular titles from a TMDB-compatible catalog.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log storage and event diagnostics to stderr")

	rootCmd.AddCommand(
		newVersionCmd(),
		newAddCmd(opts),
		newListCmd(opts),
		newToggleCmd(opts),
		newEditCmd(opts),
		newRemoveCmd(opts),
		newClearCompletedCmd(opts),
		newFilterCmd(opts),
		newStatsCmd(opts),
		newPopularCmd(opts),
		newLogCmd(opts),
		newWatchCmd(opts),
		newConfigCmd(),
		newCredentialCmd(),
	)

	return rootCmd
}

// withApp wires a context for the duration of one command and flushes its
// pending writes afterwards.
func withApp(cmd *cobra.Command, opts *rootOptions, run func(*app) error) (err error) {
	a, err := wireApp(cmd.Context(), wireOptions{verbose: opts.verbose, stderr: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return run(a)
}
