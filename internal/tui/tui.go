package tui

import (
	"ralphx-cli/internal/api"
	"ralphx-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// Deps carries everything the TUI needs; the caller owns the cache handle.
type Deps struct {
	Client *api.Client
	Cache  *store.Cache
	Dir    string
	Server string
	Log    zerolog.Logger
}

func Run(deps Deps) error {
	applyColorProfilePreference()
	applyThemePreference()

	m := newAppModel(deps)
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if fm, ok := final.(appModel); ok {
		fm.teardown()
	}
	return err
}
