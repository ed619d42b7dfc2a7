package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/martinsuchenak/lanwatch/internal/model"
)

// FetchFunc returns the current top devices of the watched link
type FetchFunc func(ctx context.Context) (model.Result[[]model.DeviceRecord], error)

type TickMsg time.Time

// devicesMsg carries the outcome of one fetch
type devicesMsg struct {
	result model.Result[[]model.DeviceRecord]
	err    error
	at     time.Time
}

type WatchModel struct {
	fetch    FetchFunc
	link     model.Link
	metric   model.Metric
	interval time.Duration

	table    table.Model
	devices  []model.DeviceRecord
	down     bool
	err      error
	updated  time.Time
	fetching bool
}

func NewWatchModel(fetch FetchFunc, link model.Link, metric model.Metric, interval time.Duration) WatchModel {
	columns := []table.Column{
		{Title: "IP", Width: 16},
		{Title: "Name", Width: 20},
		{Title: "MAC", Width: 18},
		{Title: "In", Width: 12},
		{Title: "Out", Width: 12},
		{Title: "Total", Width: 12},
		{Title: "Last seen", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return WatchModel{
		fetch:    fetch,
		link:     link,
		metric:   metric,
		interval: interval,
		table:    t,
		fetching: true, // Init fetches immediately
	}
}

func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), m.tickCmd())
}

func (m WatchModel) fetchCmd() tea.Cmd {
	fetch := m.fetch
	timeout := m.interval
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := fetch(ctx)
		return devicesMsg{result: res, err: err, at: time.Now()}
	}
}

func (m WatchModel) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
