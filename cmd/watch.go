package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bnema/watchlist-cli/internal/application"
	"github.com/bnema/watchlist-cli/internal/crosstab"
	"github.com/bnema/watchlist-cli/internal/ports"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	watchItemsColor  = color.New(color.FgCyan)
	watchFilterColor = color.New(color.FgYellow)
	watchMetaColor   = color.New(color.Faint)
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var duration time.Duration

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow watchlist changes made by other wl processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				return runWatch(cmd, a, duration)
			})
		},
	}

	watchCmd.Flags().DurationVar(&duration, "duration", 0, "Stop after this long (default: until interrupted)")

	return watchCmd
}

func runWatch(cmd *cobra.Command, a *app, duration time.Duration) error {
	printer := &changePrinter{out: cmd.OutOrStdout(), list: a.list, now: a.now}

	watchMetaColor.Fprintf(printer.out, "watching area %q, press ctrl-c to stop\n", a.backend.Area())

	notifier := crosstab.New(a.backend.Area(), a.backend,
		crosstab.WithOrigin(a.origin),
		crosstab.WithOnApply(printer.print),
		crosstab.WithLogger(a.logger),
	)
	watch, err := notifier.Watch(cmd.Context(), a.list.Targets()...)
	if err != nil {
		return err
	}
	defer watch.Close()

	var timeout <-chan time.Time
	if duration > 0 {
		timer := time.NewTimer(duration)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-cmd.Context().Done():
	case <-watch.Done():
	case <-timeout:
	}

	return nil
}

type changePrinter struct {
	mu   sync.Mutex
	out  io.Writer
	list *application.ListService
	now  func() time.Time
}

func (p *changePrinter) print(change ports.Change) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stamp := p.now().Format("15:04:05")
	switch change.Name {
	case application.ItemsSlot:
		stats := p.list.Stats()
		watchItemsColor.Fprintf(p.out, "%s items changed: total %d, done %d, left %d\n", stamp, stats.Total, stats.Done, stats.Left)
	case application.FilterSlot:
		watchFilterColor.Fprintf(p.out, "%s filter changed: %s\n", stamp, p.list.Filter())
	default:
		fmt.Fprintf(p.out, "%s %s changed\n", stamp, change.Name)
	}
}
