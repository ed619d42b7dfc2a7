package devices

import (
	"context"
	"fmt"

	"github.com/martinsuchenak/lanwatch/internal/log"
	"github.com/martinsuchenak/lanwatch/internal/model"
	"github.com/martinsuchenak/lanwatch/internal/report"
	"github.com/paularlott/cli"
)

func SeriesCommand() *cli.Command {
	return &cli.Command{
		Name:        "series",
		Usage:       "Show link traffic over time",
		Description: "Show the minutes, hours or days traffic series of a link",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "link", Required: true},
			&cli.StringArg{Name: "kind", Required: true},
		},
		Flags: []cli.Flag{serverFlag()},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			link := cmd.GetStringArg("link")
			kind := model.SeriesKind(cmd.GetStringArg("kind"))
			switch kind {
			case model.SeriesMinutes, model.SeriesHours, model.SeriesDays:
			default:
				return fmt.Errorf("unknown series %q: expected minutes, hours or days", kind)
			}

			var buckets []report.BucketView
			if err := getJSON(linkURL(cmd, link, string(kind)), &buckets); err != nil {
				return err
			}

			log.Debug("Fetched series", "link", link, "kind", string(kind), "buckets", len(buckets))
			printBuckets(buckets)
			return nil
		},
	}
}
