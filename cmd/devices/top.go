package devices

import (
	"context"

	"github.com/martinsuchenak/lanwatch/internal/log"
	"github.com/martinsuchenak/lanwatch/internal/model"
	"github.com/martinsuchenak/lanwatch/internal/report"
	"github.com/paularlott/cli"
)

func TopCommand() *cli.Command {
	return &cli.Command{
		Name:        "top",
		Usage:       "Show the busiest devices on a link",
		Description: "Show the top devices of a link ranked by bytes in, out or total",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "link", Required: true},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "metric", Usage: "Ranking metric (in, out, total)", DefaultValue: string(model.MetricTotal)},
			serverFlag(),
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			link := cmd.GetStringArg("link")
			metric, err := model.ParseMetric(cmd.GetString("metric"))
			if err != nil {
				return err
			}

			var devices []report.DeviceView
			if err := getJSON(linkURL(cmd, link, "top_"+string(metric)), &devices); err != nil {
				return err
			}

			log.Info("Ranked devices", "link", link, "metric", string(metric), "count", len(devices))
			printDevices(devices)
			return nil
		},
	}
}
