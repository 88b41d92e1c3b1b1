package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	watchlistview "github.com/bnema/watchlist-cli/internal/adapters/render/watchlist"
	"github.com/bnema/watchlist-cli/internal/application"
	"github.com/bnema/watchlist-cli/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

type popularOutput struct {
	State     application.CatalogState `json:"state"`
	Entries   []domain.CatalogEntry    `json:"entries"`
	FetchedAt *time.Time               `json:"fetchedAt,omitempty"`
	FromCache bool                     `json:"fromCache"`
	Stale     bool                     `json:"stale"`
	Message   string                   `json:"message,omitempty"`
}

func newPopularCmd(opts *rootOptions) *cobra.Command {
	var refresh bool
	var asJSON bool
	var posters bool

	popularCmd := &cobra.Command{
		Use:   "popular",
		Short: "Browse popular titles, served from cache while it is fresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				return runPopular(cmd, a, refresh, asJSON, posters)
			})
		},
	}

	popularCmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore the cache and fetch again")
	popularCmd.Flags().BoolVar(&asJSON, "json", false, "Output the catalog state as JSON")
	popularCmd.Flags().BoolVar(&posters, "posters", false, "Show poster URLs")

	return popularCmd
}

func runPopular(cmd *cobra.Command, a *app, refresh, asJSON, posters bool) error {
	load := func(ctx context.Context) application.CatalogSnapshot {
		if refresh {
			return a.catalog.Refresh(ctx)
		}
		return a.catalog.Enter(ctx)
	}

	var snapshot application.CatalogSnapshot
	if asJSON {
		snapshot = load(cmd.Context())
	} else {
		var err error
		snapshot, err = runCatalogSpinner(cmd.Context(), cmd.ErrOrStderr(), a.catalog, load)
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, context.Canceled) {
			return err
		}
	}

	if cmd.Context().Err() != nil {
		return cmd.Context().Err()
	}

	if asJSON {
		return writeJSON(cmd, toPopularOutput(snapshot))
	}

	rendered, err := watchlistview.RenderCatalog(snapshot, watchlistview.CatalogOptions{
		Now:          a.now(),
		ImageBaseURL: a.cfg.Catalog.ImageBaseURL,
		ShowPosters:  posters,
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func toPopularOutput(snapshot application.CatalogSnapshot) popularOutput {
	output := popularOutput{
		State:     snapshot.State,
		Entries:   snapshot.Entries,
		FromCache: snapshot.FromCache,
		Stale:     snapshot.Stale,
		Message:   snapshot.Message,
	}
	if !snapshot.FetchedAt.IsZero() {
		fetchedAt := snapshot.FetchedAt.UTC()
		output.FetchedAt = &fetchedAt
	}

	return output
}
