package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/career-recommender/internal/catalog"
	"github.com/jonathan/career-recommender/internal/server"
	"github.com/jonathan/career-recommender/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var (
	servePort  int
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes role recommendations, learning roadmaps and catalog lookups as JSON endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, 8080)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload the catalog when the file changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, false, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	port := a.cfg.Port
	if servePort > 0 {
		port = servePort
	}

	cfg := server.Config{
		Port:      port,
		Engine:    a.engine,
		RateLimit: ratelimit.LoadConfig(os.Getenv),
		Log:       a.log,
	}
	if a.cache != nil {
		cfg.Cache = a.cache
	}

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}

	if serveWatch || a.cfg.WatchCatalog {
		go func() {
			if err := catalog.Watch(ctx, a.store, catalog.DefaultDebounce); err != nil && ctx.Err() == nil {
				a.log.Error("catalog watcher stopped", "error", err)
			}
		}()
	}

	return srv.Start(ctx)
}
