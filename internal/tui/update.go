package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/callebtc/bitchat-simulator-sub000/internal/logmgr"
)

// Update handles messages and updates the model.
//
//nolint:gocritic // hugeParam: Model must be value receiver to implement tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "c":
			m.logLines = nil
			m.viewport.SetContent(m.renderLog())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 6 // Title + stats
		footerHeight := 3 // Help text
		verticalMargins := headerHeight + footerHeight

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-verticalMargins)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - verticalMargins
		}
		m.viewport.SetContent(m.renderLog())

	case tickMsg:
		if m.eng != nil {
			m.lastPoll = time.Time(msg)
			m.stats = m.eng.Snapshot()
			m.logLines = m.eng.Log.Tail(MaxLogLines)
			m.viewport.SetContent(m.renderLog())
			m.viewport.GotoBottom()
		}
		cmds = append(cmds, tickCmd())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) renderLog() string {
	var b []byte
	for _, e := range m.logLines {
		b = append(b, []byte(formatLogEntry(e))...)
		b = append(b, '\n')
	}
	if len(b) == 0 {
		return "waiting for simulation events..."
	}
	return string(b)
}

func formatLogEntry(e logmgr.Entry) string {
	return messageTimeStyle.Render(formatTimestamp(e.Timestamp)) + " " +
		messageTypeStyle.Render("["+string(e.Category)+"]") + " " +
		messageFromStyle.Render(e.EntityID) + " " +
		messageContentStyle.Render(e.Message)
}
