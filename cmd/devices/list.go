package devices

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/martinsuchenak/lanwatch/internal/log"
	"github.com/martinsuchenak/lanwatch/internal/model"
	"github.com/martinsuchenak/lanwatch/internal/report"
	"github.com/paularlott/cli"
)

func ListCommand() *cli.Command {
	return &cli.Command{
		Name:        "list",
		Usage:       "List all devices on a link",
		Description: "List every in-subnet device the monitor reports for a link",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "link", Required: true},
		},
		Flags: []cli.Flag{serverFlag()},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			link := cmd.GetStringArg("link")
			log.Debug("Listing devices", "link", link, "server", cmd.GetString("server"))

			var devices []report.DeviceView
			if err := getJSON(linkURL(cmd, link, "all_devices"), &devices); err != nil {
				return err
			}

			log.Info("Listed devices successfully", "link", link, "count", len(devices))
			printDevices(devices)
			return nil
		},
	}
}

func LinksCommand() *cli.Command {
	return &cli.Command{
		Name:        "links",
		Usage:       "List monitored links",
		Description: "List the links the server is configured with",
		Flags:       []cli.Flag{serverFlag()},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			var links []model.Link
			if err := getJSON(cmd.GetString("server")+"/api/links", &links); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tINTERFACE\tPORT")
			for _, l := range links {
				fmt.Fprintf(w, "%s\t%s\t%d\n", l.Name, l.Interface, l.Port)
			}
			return w.Flush()
		},
	}
}
