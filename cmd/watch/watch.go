package watch

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/martinsuchenak/lanwatch/internal/config"
	"github.com/martinsuchenak/lanwatch/internal/log"
	"github.com/martinsuchenak/lanwatch/internal/model"
	"github.com/martinsuchenak/lanwatch/internal/pipeline"
	"github.com/martinsuchenak/lanwatch/internal/report"
	"github.com/martinsuchenak/lanwatch/internal/tui"
	"github.com/paularlott/cli"
)

var (
	metric  string
	refresh int
	limit   int
)

func Command() *cli.Command {
	flags := append(config.GetFlags(),
		&cli.StringFlag{
			Name:         "metric",
			Usage:        "Ranking metric (in, out, total)",
			DefaultValue: string(model.MetricTotal),
			AssignTo:     &metric,
		},
		&cli.IntFlag{
			Name:         "refresh",
			Usage:        "Refresh interval in seconds",
			DefaultValue: 5,
			AssignTo:     &refresh,
		},
		&cli.IntFlag{
			Name:         "limit",
			Usage:        "Number of devices shown",
			DefaultValue: report.TopSummary,
			AssignTo:     &limit,
		},
	)

	return &cli.Command{
		Name:        "watch",
		Usage:       "Live view of the busiest devices on a link",
		Description: "Show a terminal table of the top devices of a link, refreshed on an interval",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "link", Required: true},
		},
		Flags: flags,
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// stdout belongs to the dashboard
			log.ConfigureWriter(cfg.LogLevel, cfg.LogFormat, os.Stderr)

			link, ok := model.FindLink(cfg.Links, cmd.GetStringArg("link"))
			if !ok {
				return fmt.Errorf("unknown link %q", cmd.GetStringArg("link"))
			}
			m, err := model.ParseMetric(metric)
			if err != nil {
				return err
			}
			if refresh <= 0 {
				return fmt.Errorf("refresh must be positive")
			}

			p := pipeline.NewFromConfig(cfg)
			fetch := func(ctx context.Context) (model.Result[[]model.DeviceRecord], error) {
				return p.Top(ctx, link, m, limit)
			}

			program := tea.NewProgram(tui.NewWatchModel(fetch, link, m, time.Duration(refresh)*time.Second), tea.WithContext(ctx))
			_, err = program.Run()
			return err
		},
	}
}
