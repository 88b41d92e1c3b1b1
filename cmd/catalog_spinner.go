package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/watchlist-cli/internal/application"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// catalogStateMsg forwards a catalog transition observed while loading.
type catalogStateMsg struct {
	state application.CatalogState
}

type catalogLoadedMsg struct {
	snapshot application.CatalogSnapshot
}

// catalogSpinnerModel follows the catalog state machine: it checks the cache
// first and only says it is fetching once the service enters Loading.
type catalogSpinnerModel struct {
	spinner spinner.Model
	state   application.CatalogState
	load    tea.Cmd
	result  *application.CatalogSnapshot
}

func newCatalogSpinnerModel(load tea.Cmd) catalogSpinnerModel {
	return catalogSpinnerModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
		state: application.CatalogIdle,
		load:  load,
	}
}

func (m catalogSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load)
}

func (m catalogSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case catalogStateMsg:
		m.state = msg.state
		return m, nil
	case catalogLoadedMsg:
		snapshot := msg.snapshot
		m.state = snapshot.State
		m.result = &snapshot
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m catalogSpinnerModel) View() string {
	if m.result != nil {
		if summary := catalogSummary(*m.result); summary != "" {
			return summary + "\n"
		}
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label())
}

func (m catalogSpinnerModel) label() string {
	if m.state == application.CatalogLoading {
		return "Fetching popular titles..."
	}

	return "Checking cached titles..."
}

func catalogSummary(snapshot application.CatalogSnapshot) string {
	switch {
	case snapshot.State == application.CatalogReady && snapshot.FromCache:
		return fmt.Sprintf("%d titles from cache", len(snapshot.Entries))
	case snapshot.State == application.CatalogReady:
		return fmt.Sprintf("fetched %d titles", len(snapshot.Entries))
	case snapshot.State == application.CatalogError && snapshot.IsMissingCredential():
		return "no catalog api key"
	case snapshot.State == application.CatalogError:
		return "catalog request failed"
	default:
		return ""
	}
}

// runCatalogSpinner runs load behind a spinner on output and returns the
// snapshot load produced. If the program ends before load does, it returns
// the service's current snapshot.
func runCatalogSpinner(ctx context.Context, output io.Writer, catalog *application.CatalogService, load func(context.Context) application.CatalogSnapshot) (application.CatalogSnapshot, error) {
	loadCmd := func() tea.Msg {
		return catalogLoadedMsg{snapshot: load(ctx)}
	}

	p := tea.NewProgram(
		newCatalogSpinnerModel(loadCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	unsubscribe := catalog.Subscribe(func(snapshot application.CatalogSnapshot) {
		p.Send(catalogStateMsg{state: snapshot.State})
	})
	defer unsubscribe()

	finalModel, err := p.Run()
	if err != nil {
		return catalog.Snapshot(), err
	}

	model, ok := finalModel.(catalogSpinnerModel)
	if !ok {
		return catalog.Snapshot(), fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}
	if model.result == nil {
		return catalog.Snapshot(), nil
	}

	return *model.result, nil
}
