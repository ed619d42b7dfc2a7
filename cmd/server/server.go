package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/martinsuchenak/lanwatch/internal/api"
	"github.com/martinsuchenak/lanwatch/internal/config"
	"github.com/martinsuchenak/lanwatch/internal/log"
	"github.com/martinsuchenak/lanwatch/internal/model"
	"github.com/martinsuchenak/lanwatch/internal/pipeline"
	"github.com/martinsuchenak/lanwatch/internal/poller"
	"github.com/martinsuchenak/lanwatch/internal/sink"
	"github.com/paularlott/cli"
)

var poll bool

func Command() *cli.Command {
	flags := append(config.GetFlags(), &cli.BoolFlag{
		Name:     "poll",
		Usage:    "Also run the snapshot poller in the background",
		EnvVars:  []string{"LANWATCH_POLL"},
		AssignTo: &poll,
	})

	return &cli.Command{
		Name:        "server",
		Usage:       "Start the lanwatch API server",
		Description: "Serve per-link device rankings, details and time series over HTTP",
		Flags:       flags,
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				log.Error("Invalid configuration", "error", err)
				return err
			}
			log.Configure(cfg.LogLevel, cfg.LogFormat)

			log.Info("Configuration loaded", "data_dir", cfg.DataDir, "listen_addr", cfg.ListenAddr, "links", len(cfg.Links))

			sinks, snapshots, err := sink.Open(cfg)
			if err != nil {
				log.Error("Failed to initialize sinks", "error", err)
				return err
			}
			defer sinks.Close()

			p := pipeline.NewFromConfig(cfg)

			// Create API handler
			apiHandler := api.NewHandler(p, cfg.Links, snapshots)

			// Setup HTTP routes
			mux := http.NewServeMux()
			apiHandler.RegisterRoutes(mux)

			// Apply middleware
			var handler http.Handler = mux
			handler = api.LoggingMiddleware(handler)
			handler = api.SecurityHeadersMiddleware(handler)

			server := &http.Server{
				Addr:    cfg.ListenAddr,
				Handler: handler,
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			// Handle shutdown gracefully
			go func() {
				sigChan := make(chan os.Signal, 1)
				signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
				select {
				case <-sigChan:
				case <-ctx.Done():
				}
				log.Info("Shutting down server...")
				cancel()
				server.Close()
			}()

			var wg sync.WaitGroup
			if poll {
				pl := poller.New(p, sinks, poller.Config{
					Links:  cfg.Links,
					Metric: model.MetricTotal,
					TopN:   cfg.TopN,
					Period: cfg.PollInterval,
				})
				wg.Add(1)
				go func() {
					defer wg.Done()
					pl.Run(ctx)
				}()
			}

			for _, l := range cfg.Links {
				log.Info("Monitoring link", "link", l.Name, "interface", l.Interface, "port", l.Port)
			}
			log.Info("Starting lanwatch server", "addr", cfg.ListenAddr)
			log.Info("API available", "url", config.ServerURL()+"/api/")

			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("Server error", "error", err)
				cancel()
				wg.Wait()
				return err
			}

			wg.Wait()
			log.Info("Server stopped")
			return nil
		},
	}
}
