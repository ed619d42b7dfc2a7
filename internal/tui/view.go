package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/martinsuchenak/lanwatch/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF7DB")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Margin(0, 1)

	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5F87")).
			Margin(0, 1)
)

func (m WatchModel) View() string {
	title := titleStyle.Render(fmt.Sprintf("lanwatch - %s (%s) top by %s", m.link.Name, m.link.Interface, m.metric))

	status := "Waiting for data..."
	if !m.updated.IsZero() {
		status = fmt.Sprintf("Devices: %d  Updated: %s  Refresh: %s", len(m.devices), m.updated.Format("15:04:05"), m.interval)
	}

	var alert string
	switch {
	case m.err != nil:
		alert = alertStyle.Render("Error: " + m.err.Error())
	case m.down:
		alert = alertStyle.Render(model.InterfaceDownMessage)
	}

	body := lipgloss.JoinVertical(lipgloss.Left, title, infoStyle.Render(status))
	if alert != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, alert)
	}
	body = lipgloss.JoinVertical(lipgloss.Left, body, infoStyle.Render(m.table.View()))

	return body + "\nPress r to refresh, q to quit."
}
