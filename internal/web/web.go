// Package web is the HTTP transport: server-rendered pages and a small JSON API
// over the collection and metadata services.
package web

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/vmunix/discshelf/internal/collection"
	"github.com/vmunix/discshelf/internal/metadata"
	"github.com/vmunix/discshelf/internal/posters"
	"github.com/vmunix/discshelf/internal/tmdb"
)

//go:generate mockgen -source=web.go -destination=mocks/mock_web.go -package=mocks

// Metadata is the cache-backed TMDB lookup used by search and detail pages.
type Metadata interface {
	Search(ctx context.Context, query string, year int) ([]tmdb.Movie, error)
	Details(ctx context.Context, tmdbID int64) (*tmdb.Movie, error)
	Peek(tmdbID int64) (metadata.Entry, bool)
}

// Config holds transport settings.
type Config struct {
	// SearchRateLimit is requests per minute per client on TMDB-backed routes; 0 disables.
	SearchRateLimit int
	// PosterSize is the TMDB size used for remote poster thumbnails in search results.
	PosterSize string
}

// Server serves the web UI and JSON API.
type Server struct {
	movies  *collection.Service
	meta    Metadata
	posters *posters.Store
	cfg     Config
	pages   map[string]*template.Template
	logger  *slog.Logger
}

// New creates a Server. meta may be nil; TMDB routes then report a missing API key.
func New(movies *collection.Service, meta Metadata, posterStore *posters.Store, cfg Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PosterSize == "" {
		cfg.PosterSize = "w185"
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &Server{
		movies:  movies,
		meta:    meta,
		posters: posterStore,
		cfg:     cfg,
		pages:   pages,
		logger:  logger,
	}, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logRequests(s.logger))
	r.Use(middleware.Recoverer)

	limit := s.searchLimiter()

	r.Get("/healthz", s.healthz)

	// Pages
	r.Get("/", s.index)
	r.Get("/movies/new", s.newMovieForm)
	r.Post("/movies", s.createMovie)
	r.With(limit).Get("/search", s.searchPage)
	r.With(limit).Post("/movies/tmdb", s.createFromTMDB)
	r.Get("/movies/{id}", s.moviePage)
	r.Post("/movies/{id}/watched", s.toggleWatchedForm)
	r.Post("/movies/{id}/delete", s.deleteMovieForm)
	r.Get("/posters/{name}", s.poster)

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Get("/movies", s.apiListMovies)
		r.Post("/movies", s.apiCreateMovie)
		r.Get("/movies/{id}", s.apiGetMovie)
		r.Post("/movies/{id}/watched", s.apiToggleWatched)
		r.Delete("/movies/{id}", s.apiDeleteMovie)
		r.With(limit).Get("/movies/{id}/details", s.apiMovieDetails)
		r.With(limit).Get("/search", s.apiSearch)
	})

	return r
}

func (s *Server) searchLimiter() func(http.Handler) http.Handler {
	if s.cfg.SearchRateLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		s.cfg.SearchRateLimit,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many search requests, slow down")
		}),
	)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
