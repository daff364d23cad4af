package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run blocks until the user quits.
func Run(deps Deps) error {
	p := tea.NewProgram(NewModel(deps), tea.WithAltScreen())
	_, err := p.Run()
	if err != nil {
		deps.Logger.Error().
			Err(err).
			Msg("failed to run tui")
		return err
	}
	return nil
}
