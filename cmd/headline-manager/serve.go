// cmd/headline-manager/serve.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"headline-generator/internal/api"
	"headline-generator/pkg/catalog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the worker loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		deps := api.Deps{
			Generator:    a.orchestrator,
			Templates:    a.templates,
			Keywords:     a.keywords,
			EnhanceRatio: cfg.Worker.EnhanceRatio,
			Checks: map[string]api.CheckFunc{
				"templates": func(context.Context) error {
					if a.templates.Count() == 0 {
						return errors.New("no templates loaded")
					}
					return nil
				},
			},
		}
		if a.headlines != nil {
			deps.Store = a.headlines
			deps.Checks["postgres"] = a.db.PingContext
		}
		if a.queue != nil {
			deps.Queue = a.queue
			deps.Checks["redis"] = func(ctx context.Context) error { return a.rdb.Ping(ctx).Err() }
		}
		if a.worker != nil {
			deps.Worker = a.worker
		}

		if cfg.Generator.WatchTemplates && cfg.Generator.TemplatesFile != "" {
			go func() {
				if err := catalog.Watch(ctx, cfg.Generator.TemplatesFile, a.templates, log); err != nil {
					log.Error("catalog watcher failed", map[string]interface{}{"error": err.Error()})
				}
			}()
		}

		if a.worker != nil && cfg.Worker.Enabled {
			if err := a.worker.Start(); err != nil {
				return err
			}
		}

		srv := &http.Server{
			Addr:              cfg.HTTP.Address(),
			Handler:           api.NewRouter(deps, log),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("HTTP server listening", map[string]interface{}{"addr": srv.Addr})
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case <-ctx.Done():
			log.Info("Shutdown signal received, stopping...", nil)
		case err := <-errCh:
			return err
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown failed", map[string]interface{}{"error": err.Error()})
		}

		log.Info("headline manager stopped gracefully", nil)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
