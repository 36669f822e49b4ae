package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/paularlott/cli"

	"github.com/martinsuchenak/fqdngen/internal/api"
	"github.com/martinsuchenak/fqdngen/internal/batch"
	"github.com/martinsuchenak/fqdngen/internal/config"
	"github.com/martinsuchenak/fqdngen/internal/log"
	"github.com/martinsuchenak/fqdngen/internal/resolve"
	"github.com/martinsuchenak/fqdngen/internal/storage"
)

func Command() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "data-dir", Usage: "Data directory path", EnvVars: []string{"FQDNGEN_DATA_DIR"}, DefaultValue: filepath.Join(".", "data")},
		&cli.StringFlag{Name: "addr", Usage: "Server listen address", EnvVars: []string{"FQDNGEN_LISTEN_ADDR"}, DefaultValue: ":8080"},
		&cli.StringFlag{Name: "api-token", Usage: "API bearer token", EnvVars: []string{"FQDNGEN_API_TOKEN"}},
	}
	flags = append(flags, config.GetFlags()...)

	return &cli.Command{
		Name:        "server",
		Usage:       "Start the fqdngen server",
		Description: "Start the HTTP API for running checks and browsing run history",
		Flags:       flags,
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Load()
			log.Configure(cfg.LogLevel, cfg.LogFormat)

			settings, err := cfg.Settings()
			if err != nil {
				return err
			}

			dataDir := cmd.GetString("data-dir")
			store, err := storage.Open(filepath.Join(dataDir, "fqdngen.db"))
			if err != nil {
				log.Error("Failed to initialize storage", "error", err)
				return err
			}
			defer store.Close()
			log.Info("Storage initialized", "backend", "SQLite", "path", dataDir)

			coordinator := batch.New(resolve.SystemResolver(), nil, settings)
			apiHandler := api.NewHandler(store, coordinator)

			mux := http.NewServeMux()
			apiHandler.RegisterRoutes(mux)

			apiToken := cmd.GetString("api-token")
			var handler http.Handler = mux
			if apiToken != "" {
				handler = api.AuthMiddleware(apiToken, handler)
			}
			handler = api.SecurityHeadersMiddleware(handler)

			addr := cmd.GetString("addr")
			server := &http.Server{
				Addr:    addr,
				Handler: handler,
			}

			// Handle shutdown gracefully
			go func() {
				sigChan := make(chan os.Signal, 1)
				signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
				<-sigChan
				log.Info("Shutting down server...")
				server.Close()
			}()

			log.Info("Starting fqdngen server", "addr", addr)
			log.Info("API available", "url", "http://localhost"+addr+"/api/")
			if apiToken != "" {
				log.Info("API authentication enabled")
			}

			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("Server error", "error", err)
				return err
			}

			log.Info("Server stopped")
			return nil
		},
	}
}
