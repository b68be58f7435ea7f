package tui

import (
	"fmt"
	"strings"
	"time"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if !m.ready {
		return fmt.Sprintf("%s Initializing...\n", m.spinner.View())
	}

	var b strings.Builder

	title := titleStyle.Render("bitchat simulator")
	b.WriteString(title)
	b.WriteString("\n")

	b.WriteString(m.renderStats())
	b.WriteString("\n")

	logBox := boxStyle.Width(m.width - 4).Render(m.viewport.View())
	b.WriteString(logBox)
	b.WriteString("\n")

	help := helpStyle.Render("q: quit • c: clear log • ↑/↓: scroll")
	b.WriteString(help)

	return b.String()
}

func (m Model) renderStats() string {
	tick := statLabelStyle.Render("Tick: ") + statValueStyle.Render(fmt.Sprintf("%d", m.stats.Tick))
	now := statLabelStyle.Render(" | Sim time: ") + statValueStyle.Render(fmt.Sprintf("%.1fs", m.stats.Now))
	agents := statLabelStyle.Render(" | Agents: ") + statValueStyle.Render(fmt.Sprintf("%d", m.stats.AgentCount))
	links := statLabelStyle.Render(" | Links: ") + statValueStyle.Render(fmt.Sprintf("%d", m.stats.LinkCount))
	edges := statLabelStyle.Render(" | Confirmed edges: ") + statValueStyle.Render(fmt.Sprintf("%d", m.stats.ConfirmedEdge))
	uptime := statLabelStyle.Render(" | Uptime: ") + statValueStyle.Render(time.Since(m.startTime).Round(time.Second).String())

	return tick + now + agents + links + edges + uptime
}

func formatTimestamp(t float64) string {
	return fmt.Sprintf("%8.2fs", t)
}
