package main

import (
	"context"
	"fmt"
	"os"

	"github.com/martinsuchenak/lanwatch/cmd/devices"
	"github.com/martinsuchenak/lanwatch/cmd/poll"
	"github.com/martinsuchenak/lanwatch/cmd/server"
	"github.com/martinsuchenak/lanwatch/cmd/watch"
	"github.com/martinsuchenak/lanwatch/internal/config"
	"github.com/paularlott/cli"
)

func main() {
	config.LoadDotEnv()

	cmd := &cli.Command{
		Name:        "lanwatch",
		Usage:       "Per-device bandwidth statistics from darkstat monitors",
		Description: "Scrape darkstat instances watching local links and serve device rankings, details and traffic series",
		Commands: []*cli.Command{
			server.Command(),
			poll.Command(),
			watch.Command(),
			{
				Name:        "devices",
				Usage:       "Query a running lanwatch server",
				Description: "Inspect devices, series and snapshots through the lanwatch API",
				Commands:    devices.Commands(),
			},
		},
	}

	if err := cmd.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
