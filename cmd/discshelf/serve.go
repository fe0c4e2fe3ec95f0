package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vmunix/discshelf/internal/server"
	"github.com/vmunix/discshelf/internal/web"
)

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web interface",
		Long:  "Applies pending migrations and serves the catalog until interrupted.",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	var meta web.Metadata
	if a.tmdb.Configured() {
		meta = a.metadata
	} else {
		a.logger.Warn("TMDB API key not set; search and TMDB adds are disabled")
	}
	srv, err := web.New(a.movies, meta, a.posters, web.Config{
		SearchRateLimit: a.cfg.Server.SearchRateLimit,
		PosterSize:      "w185",
	}, a.logger.With("component", "http"))
	if err != nil {
		return err
	}

	a.logger.Info("server starting",
		"addr", a.cfg.Server.Addr(),
		"database", a.cfg.Database.Path,
		"posters", a.cfg.Posters.Dir,
		"tmdb", a.tmdb.Configured(),
		"log_level", a.cfg.Server.LogLevel,
	)

	runner := server.NewRunner(srv.Handler(), server.Config{Addr: a.cfg.Server.Addr()}, a.logger.With("component", "server"))
	return runner.Run(ctx)
}
