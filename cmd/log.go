package cmd

import (
	"fmt"

	watchlistview "github.com/bnema/watchlist-cli/internal/adapters/render/watchlist"
	"github.com/spf13/cobra"
)

func newLogCmd(opts *rootOptions) *cobra.Command {
	var limit int
	var asJSON bool

	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Show the event log, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit cannot be negative")
			}

			return withApp(cmd, opts, func(a *app) error {
				entries := a.events.Entries(cmd.Context())
				if limit > 0 && len(entries) > limit {
					entries = entries[:limit]
				}

				if asJSON {
					return writeJSON(cmd, entries)
				}

				rendered, err := watchlistview.RenderEvents(entries)
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
				return err
			})
		},
	}

	logCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Show at most this many entries (0 shows all)")
	logCmd.Flags().BoolVar(&asJSON, "json", false, "Output entries as JSON")

	logCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every event log entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				a.events.Clear(cmd.Context())

				_, err := fmt.Fprintln(cmd.OutOrStdout(), "event log cleared")
				return err
			})
		},
	})

	return logCmd
}
