package devices

import (
	"context"

	"github.com/martinsuchenak/lanwatch/internal/model"
	"github.com/paularlott/cli"
)

func LatestCommand() *cli.Command {
	return &cli.Command{
		Name:        "latest",
		Usage:       "Show the newest snapshot of a link",
		Description: "Show the most recent snapshot written by the poller",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "link", Required: true},
		},
		Flags: []cli.Flag{serverFlag()},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			var snap model.Snapshot
			if err := getJSON(linkURL(cmd, cmd.GetStringArg("link"), "snapshots/latest"), &snap); err != nil {
				return err
			}
			printSnapshot(&snap)
			return nil
		},
	}
}
