package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/discshelf/internal/tmdb"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_source.go -package=mocks

// Source is the outbound metadata API.
type Source interface {
	GetMovie(ctx context.Context, tmdbID int64) (*tmdb.Movie, error)
	SearchMovies(ctx context.Context, query string, year int) ([]tmdb.Movie, error)
}

// Entry is a cached payload. Search results only carry part of the fields;
// Full is set once the details endpoint has been fetched.
type Entry struct {
	Movie tmdb.Movie
	Full  bool
}

// Config tunes the Service.
type Config struct {
	TTL         time.Duration // lifetime of cached entries
	EnrichLimit int           // search results enriched with full details; 0 disables
	Concurrency int           // parallel detail fetches while enriching
}

const (
	defaultTTL         = time.Hour
	defaultConcurrency = 4
)

// Service answers metadata lookups from the cache when it can and from the
// Source otherwise. Outbound failures are returned as-is; nothing is retried.
type Service struct {
	source Source
	cache  *Cache[int64, Entry]
	cfg    Config
	logger *slog.Logger
}

// NewService creates a metadata service. A nil cache creates a private one.
func NewService(source Source, cache *Cache[int64, Entry], cfg Config, logger *slog.Logger) *Service {
	if cache == nil {
		cache = NewCache[int64, Entry](nil)
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, cache: cache, cfg: cfg, logger: logger}
}

// Details returns full metadata for a TMDB id.
func (s *Service) Details(ctx context.Context, tmdbID int64) (*tmdb.Movie, error) {
	if e, ok := s.cache.Get(tmdbID); ok && e.Full {
		s.logger.Debug("metadata cache hit", "tmdb_id", tmdbID)
		m := e.Movie
		return &m, nil
	}

	m, err := s.source.GetMovie(ctx, tmdbID)
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			// Gone upstream; a partial entry from an earlier search is stale.
			s.cache.Delete(tmdbID)
		}
		return nil, fmt.Errorf("movie details %d: %w", tmdbID, err)
	}
	s.cache.Set(tmdbID, Entry{Movie: *m, Full: true}, s.cfg.TTL)
	s.logger.Debug("metadata cached", "tmdb_id", tmdbID, "title", m.Title)
	return m, nil
}

// Search queries the Source, remembers each result as a partial cache entry
// and enriches the first EnrichLimit results with runtime and genres.
// Any failure fails the whole search.
func (s *Service) Search(ctx context.Context, query string, year int) ([]tmdb.Movie, error) {
	results, err := s.source.SearchMovies(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	for _, r := range results {
		if e, ok := s.cache.Get(r.ID); ok && e.Full {
			continue
		}
		s.cache.Set(r.ID, Entry{Movie: r}, s.cfg.TTL)
	}

	n := min(s.cfg.EnrichLimit, len(results))
	if n <= 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i := range n {
		g.Go(func() error {
			full, err := s.Details(gctx, results[i].ID)
			if err != nil {
				return err
			}
			enrich(&results[i], full)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return results, nil
}

// Peek returns a cached entry without calling the Source. Pages use it to
// show what a search already fetched when Details fails.
func (s *Service) Peek(tmdbID int64) (Entry, bool) {
	return s.cache.Get(tmdbID)
}

func enrich(dst *tmdb.Movie, full *tmdb.Movie) {
	dst.Runtime = full.Runtime
	dst.Genres = full.Genres
	dst.Tagline = full.Tagline
	dst.IMDBID = full.IMDBID
	if dst.Overview == "" {
		dst.Overview = full.Overview
	}
}
