package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/callebtc/bitchat-simulator-sub000/internal/engine"
)

// Run starts the dashboard, polling eng until the user quits.
func Run(eng *engine.Engine) error {
	model := New(eng)
	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return nil
}
