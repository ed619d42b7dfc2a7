package devices

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/martinsuchenak/lanwatch/internal/log"
	"github.com/martinsuchenak/lanwatch/internal/model"
	"github.com/martinsuchenak/lanwatch/internal/report"
	"github.com/paularlott/cli"
)

func DetailsCommand() *cli.Command {
	return &cli.Command{
		Name:        "details",
		Usage:       "Show port and protocol details of the busiest devices",
		Description: "Fetch the detail pages of the top devices of a link",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "link", Required: true},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "metric", Usage: "Ranking metric (in, out, total)", DefaultValue: string(model.MetricTotal)},
			&cli.IntFlag{Name: "limit", Usage: "Number of devices", DefaultValue: report.TopDetailed},
			serverFlag(),
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			link := cmd.GetStringArg("link")
			metric, err := model.ParseMetric(cmd.GetString("metric"))
			if err != nil {
				return err
			}

			q := url.Values{}
			q.Set("metric", string(metric))
			q.Set("limit", strconv.Itoa(cmd.GetInt("limit")))

			var batch model.DetailBatch
			if err := getJSON(linkURL(cmd, link, "details?"+q.Encode()), &batch); err != nil {
				return err
			}

			log.Info("Fetched device details", "link", link, "devices", len(batch.Devices), "failures", len(batch.Failures))
			for i := range batch.Devices {
				printDetail(&batch.Devices[i])
			}
			for _, f := range batch.Failures {
				fmt.Printf("! %s: %s\n", f.IP, f.Error)
			}
			return nil
		},
	}
}
