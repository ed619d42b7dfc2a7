package poll

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/martinsuchenak/lanwatch/internal/config"
	"github.com/martinsuchenak/lanwatch/internal/log"
	"github.com/martinsuchenak/lanwatch/internal/model"
	"github.com/martinsuchenak/lanwatch/internal/pipeline"
	"github.com/martinsuchenak/lanwatch/internal/poller"
	"github.com/martinsuchenak/lanwatch/internal/sink"
	"github.com/paularlott/cli"
)

var (
	once   bool
	metric string
)

func Command() *cli.Command {
	flags := append(config.GetFlags(),
		&cli.BoolFlag{
			Name:     "once",
			Usage:    "Run a single cycle and exit",
			AssignTo: &once,
		},
		&cli.StringFlag{
			Name:         "metric",
			Usage:        "Ranking metric (in, out, total)",
			DefaultValue: string(model.MetricTotal),
			AssignTo:     &metric,
		},
	)

	return &cli.Command{
		Name:        "poll",
		Usage:       "Collect snapshots on a fixed period",
		Description: "Write a snapshot of the top devices of every link each polling period",
		Flags:       flags,
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				log.Error("Invalid configuration", "error", err)
				return err
			}
			log.Configure(cfg.LogLevel, cfg.LogFormat)

			m, err := model.ParseMetric(metric)
			if err != nil {
				return err
			}

			sinks, _, err := sink.Open(cfg)
			if err != nil {
				log.Error("Failed to initialize sinks", "error", err)
				return err
			}
			defer sinks.Close()

			pl := poller.New(pipeline.NewFromConfig(cfg), sinks, poller.Config{
				Links:  cfg.Links,
				Metric: m,
				TopN:   cfg.TopN,
				Period: cfg.PollInterval,
			})

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if once {
				pl.RunOnce(ctx)
				return nil
			}
			return pl.Run(ctx)
		},
	}
}
