package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/vmunix/discshelf/internal/catalog"
	"github.com/vmunix/discshelf/internal/collection"
	"github.com/vmunix/discshelf/internal/config"
	"github.com/vmunix/discshelf/internal/metadata"
	"github.com/vmunix/discshelf/internal/migrations"
	"github.com/vmunix/discshelf/internal/posters"
	"github.com/vmunix/discshelf/internal/tmdb"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}

// quietLogger sends warnings and errors to stderr for one-shot commands.
func quietLogger(cmd *cobra.Command) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// loadConfig loads the --config file, or the discovered one, or defaults
// when no file exists. The result is validated.
func loadConfig() (*config.Config, string, error) {
	path := configPath
	if path == "" {
		found, err := config.Discover()
		switch {
		case errors.Is(err, config.ErrNotFound):
			return config.Default(), "", nil
		case err != nil:
			return nil, "", err
		}
		path = found
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, path, &config.ConfigError{Path: path, Errors: errs}
	}
	return cfg, path, nil
}

// sqliteDSN builds a modernc.org/sqlite DSN with the pragmas every
// connection needs.
func sqliteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	return "file:" + path + "?" + q.Encode()
}

// openDB opens the database and applies pending migrations.
func openDB(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	version, err := migrations.Apply(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Debug("database ready", "path", path, "schema_version", version)
	return db, nil
}

// app holds the wired services shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *sql.DB
	store    *catalog.Store
	posters  *posters.Store
	tmdb     *tmdb.Client
	metadata *metadata.Service
	movies   *collection.Service
}

// newApp wires config, database, TMDB and the services. logger may be nil,
// in which case one is built from the config.
func newApp(ctx context.Context, logger *slog.Logger) (*app, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = newLogger(cfg.Server.LogLevel)
	}

	db, err := openDB(ctx, cfg.Database.Path, logger)
	if err != nil {
		return nil, err
	}

	posterStore, err := posters.NewStore(cfg.Posters.Dir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var opts []tmdb.Option
	if cfg.TMDB.BaseURL != "" {
		opts = append(opts, tmdb.WithBaseURL(cfg.TMDB.BaseURL))
	}
	if cfg.TMDB.ImageBaseURL != "" {
		opts = append(opts, tmdb.WithImageBaseURL(cfg.TMDB.ImageBaseURL))
	}
	opts = append(opts, tmdb.WithTimeout(cfg.TMDB.Timeout))
	client := tmdb.NewClient(cfg.TMDB.APIKey, opts...)

	meta := metadata.NewService(client, metadata.NewCache[int64, metadata.Entry](nil), metadata.Config{
		TTL:         cfg.TMDB.CacheTTL,
		EnrichLimit: cfg.TMDB.Enrich(),
	}, logger.With("component", "metadata"))

	store := catalog.NewStore(db)
	movies := collection.New(store, posterStore, meta, client, collection.Config{
		PosterSize: cfg.TMDB.PosterSize,
	}, logger.With("component", "collection"))

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		store:    store,
		posters:  posterStore,
		tmdb:     client,
		metadata: meta,
		movies:   movies,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
