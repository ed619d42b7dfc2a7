package tui

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/martinsuchenak/lanwatch/internal/report"
)

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if !m.fetching {
				m.fetching = true
				return m, m.fetchCmd()
			}
			return m, nil
		}

	// The tick loop is the only thing that reschedules itself; fetch results
	// never start a new one.
	case TickMsg:
		if m.fetching {
			return m, m.tickCmd()
		}
		m.fetching = true
		return m, tea.Batch(m.fetchCmd(), m.tickCmd())

	case devicesMsg:
		m.fetching = false
		m.updated = msg.at
		m.err = msg.err
		m.down = msg.err == nil && msg.result.Unavailable
		m.devices = nil
		if msg.err == nil && !msg.result.Unavailable {
			m.devices = msg.result.Data
		}

		views := report.Devices(m.devices)
		rows := make([]table.Row, len(views))
		for i, d := range views {
			rows[i] = table.Row{d.IP, d.Name, d.MAC, d.In, d.Out, d.Total, d.LastSeen}
		}
		m.table.SetRows(rows)

		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}
