package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	watchlistview "github.com/bnema/watchlist-cli/internal/adapters/render/watchlist"
	"github.com/bnema/watchlist-cli/internal/domain"
	"github.com/spf13/cobra"
)

var errEmptyTitle = errors.New("title cannot be empty")

func newAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>",
		Short: "Add a title to the watchlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				item, ok := a.list.Add(cmd.Context(), strings.Join(args, " "))
				if !ok {
					return errEmptyTitle
				}

				_, err := fmt.Fprintf(cmd.OutOrStdout(), "added %s  %s\n", watchlistview.ShortID(item.ID), item.Title)
				return err
			})
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var filter string
	var asJSON bool

	listCmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List titles, using the saved filter unless --filter is given",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				mode := a.list.Filter()
				if cmd.Flags().Changed("filter") {
					parsed, err := parseFilterMode(filter)
					if err != nil {
						return err
					}
					mode = parsed
				}

				items := a.list.Filtered(mode)
				if asJSON {
					return writeJSON(cmd, items)
				}

				rendered, err := watchlistview.RenderList(watchlistview.ListView{
					Items:  items,
					Filter: mode,
					Stats:  a.list.Stats(),
				})
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
				return err
			})
		},
	}

	listCmd.Flags().StringVar(&filter, "filter", "", "Show all, active or completed titles without saving the mode")
	listCmd.Flags().BoolVar(&asJSON, "json", false, "Output titles as JSON")

	return listCmd
}

func newToggleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Mark a title watched or unwatched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				id, err := resolveItemID(a.list.Items(), args[0])
				if err != nil {
					return err
				}
				if !a.list.Toggle(cmd.Context(), id) {
					return fmt.Errorf("toggle %s: %w", args[0], domain.ErrItemNotFound)
				}

				item, _ := findItem(a.list.Items(), id)
				state := "active"
				if item.Completed {
					state = "completed"
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s is %s\n", watchlistview.ShortID(id), item.Title, state)
				return err
			})
		},
	}
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <new title>",
		Short: "Rename a title; a blank title discards the edit",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				id, err := resolveItemID(a.list.Items(), args[0])
				if err != nil {
					return err
				}

				if !a.list.StartEdit(cmd.Context(), id) {
					return fmt.Errorf("edit %s: %w", args[0], domain.ErrItemNotFound)
				}
				a.list.SetEditDraft(strings.Join(args[1:], " "))

				if !a.list.SaveEdit(cmd.Context()) {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), "edit discarded")
					return err
				}

				item, _ := findItem(a.list.Items(), id)
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "renamed %s  %s\n", watchlistview.ShortID(id), item.Title)
				return err
			})
		},
	}
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a title",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				id, err := resolveItemID(a.list.Items(), args[0])
				if err != nil {
					return err
				}

				item, _ := findItem(a.list.Items(), id)
				if !a.list.Remove(cmd.Context(), id) {
					return fmt.Errorf("remove %s: %w", args[0], domain.ErrItemNotFound)
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %s  %s\n", watchlistview.ShortID(id), item.Title)
				return err
			})
		},
	}
}

func newClearCompletedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-completed",
		Short: "Remove every completed title",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				titles := a.list.ClearCompleted(cmd.Context())
				if len(titles) == 0 {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "nothing to clear")
					return err
				}

				_, err := fmt.Fprintf(cmd.OutOrStdout(), "cleared %d: %s\n", len(titles), strings.Join(titles, ", "))
				return err
			})
		},
	}
}

func newFilterCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "filter [all|active|completed]",
		Short:     "Show or save the list filter",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(domain.FilterAll), string(domain.FilterActive), string(domain.FilterCompleted)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if len(args) == 0 {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), a.list.Filter())
					return err
				}

				mode, err := parseFilterMode(args[0])
				if err != nil {
					return err
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "filter: %s\n", a.list.SetFilter(cmd.Context(), mode))
				return err
			})
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show total, done and left counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				stats := a.list.Stats()
				if asJSON {
					return writeJSON(cmd, stats)
				}

				rendered, err := watchlistview.RenderStats(stats)
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
				return err
			})
		},
	}

	statsCmd.Flags().BoolVar(&asJSON, "json", false, "Output stats as JSON")

	return statsCmd
}

func parseFilterMode(value string) (domain.FilterMode, error) {
	mode := domain.FilterMode(strings.ToLower(strings.TrimSpace(value)))
	if !mode.Valid() {
		return "", fmt.Errorf("unknown filter %q (want all, active or completed)", value)
	}

	return mode, nil
}

// resolveItemID accepts a full id or an unambiguous prefix of one.
func resolveItemID(items []domain.ListItem, arg string) (domain.ItemID, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("item id cannot be empty")
	}

	var matches []domain.ItemID
	for _, item := range items {
		if string(item.ID) == arg {
			return item.ID, nil
		}
		if strings.HasPrefix(string(item.ID), arg) {
			matches = append(matches, item.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("item %q: %w", arg, domain.ErrItemNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("item id prefix %q is ambiguous (%d matches)", arg, len(matches))
	}
}

func findItem(items []domain.ListItem, id domain.ItemID) (domain.ListItem, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}

	return domain.ListItem{}, false
}

func writeJSON(cmd *cobra.Command, value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json output: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return err
}
