// Package tui provides the terminal dashboard for a running simulation.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/callebtc/bitchat-simulator-sub000/internal/engine"
	"github.com/callebtc/bitchat-simulator-sub000/internal/logmgr"
)

// MaxLogLines is the maximum number of log entries to display.
const MaxLogLines = 200

// Model represents the TUI state.
type Model struct {
	eng *engine.Engine

	width    int
	height   int
	ready    bool
	quitting bool

	spinner  spinner.Model
	viewport viewport.Model

	stats     engine.Stats
	logLines  []logmgr.Entry
	startTime time.Time
	lastPoll  time.Time
}

// New creates a new TUI model watching eng.
func New(eng *engine.Engine) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return Model{
		eng:       eng,
		spinner:   s,
		startTime: time.Now(),
	}
}

// Init initializes the model.
//
//nolint:gocritic // hugeParam: Model must be value receiver to implement tea.Model interface
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tickCmd(),
	)
}

// tickMsg is sent periodically to refresh the dashboard from the engine.
type tickMsg time.Time

// tickCmd returns a command that sends a tick a few times a second.
func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
