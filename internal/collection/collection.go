// Package collection implements the catalog operations offered to users:
// adding copies manually or from TMDB, toggling watched, deleting with the
// poster file, and fuzzy listing.
package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/vmunix/discshelf/internal/catalog"
	"github.com/vmunix/discshelf/internal/posters"
	"github.com/vmunix/discshelf/internal/tmdb"
	"github.com/vmunix/discshelf/pkg/titles"
)

//go:generate mockgen -source=collection.go -destination=mocks/mock_collection.go -package=mocks

// Metadata provides full movie details (cache-backed in production).
type Metadata interface {
	Details(ctx context.Context, tmdbID int64) (*tmdb.Movie, error)
}

// PosterFetcher downloads poster images.
type PosterFetcher interface {
	FetchPoster(ctx context.Context, posterPath, size string) ([]byte, string, error)
}

// ErrInvalidEntry is returned when a title or format is missing.
var ErrInvalidEntry = errors.New("invalid entry")

// DuplicateError reports an add that collided with an existing copy.
// It unwraps to catalog.ErrDuplicateTMDB or catalog.ErrDuplicateManual.
type DuplicateError struct {
	Existing *catalog.Movie // nil if the colliding row could not be loaded
	Err      error
}

func (e *DuplicateError) Error() string {
	if e.Existing != nil {
		return fmt.Sprintf("%q is already in the collection (id %d): %v", e.Existing.Title, e.Existing.ID, e.Err)
	}
	return e.Err.Error()
}

func (e *DuplicateError) Unwrap() error { return e.Err }

// Config holds collection settings.
type Config struct {
	PosterSize string // TMDB image size, e.g. "w342"
}

// Service coordinates the catalog store, poster files and metadata.
type Service struct {
	store   *catalog.Store
	posters *posters.Store
	meta    Metadata
	fetcher PosterFetcher
	cfg     Config
	logger  *slog.Logger
}

// New creates a collection service. meta and fetcher may be nil when TMDB is
// not wired; AddFromTMDB then fails with tmdb.ErrMissingAPIKey.
func New(store *catalog.Store, posterStore *posters.Store, meta Metadata, fetcher PosterFetcher, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PosterSize == "" {
		cfg.PosterSize = "w342"
	}
	return &Service{
		store:   store,
		posters: posterStore,
		meta:    meta,
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger,
	}
}

// ManualEntry is a copy typed in by the user.
type ManualEntry struct {
	Title   string
	Year    *int
	Formats []string
}

// AddManual inserts a copy without a TMDB id.
// A copy with the same title, year and format yields a *DuplicateError
// wrapping catalog.ErrDuplicateManual.
func (s *Service) AddManual(ctx context.Context, e ManualEntry) (*catalog.Movie, error) {
	m := &catalog.Movie{
		Title:  strings.TrimSpace(e.Title),
		Format: catalog.JoinFormats(e.Formats...),
		Year:   e.Year,
	}
	if m.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidEntry)
	}
	if m.Format == "" {
		return nil, fmt.Errorf("%w: at least one format is required", ErrInvalidEntry)
	}

	if err := s.store.AddMovie(m); err != nil {
		if errors.Is(err, catalog.ErrDuplicate) {
			return nil, s.duplicate(m, err)
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "movie added", "id", m.ID, "title", m.Title, "format", m.Format, "source", "manual")
	return m, nil
}

// AddFromTMDB looks up tmdbID, inserts the copy and stores its poster.
// A copy already carrying tmdbID yields a *DuplicateError wrapping
// catalog.ErrDuplicateTMDB. Poster failures are logged and the copy kept.
func (s *Service) AddFromTMDB(ctx context.Context, tmdbID int64, formats []string) (*catalog.Movie, error) {
	format := catalog.JoinFormats(formats...)
	if format == "" {
		return nil, fmt.Errorf("%w: at least one format is required", ErrInvalidEntry)
	}
	if s.meta == nil {
		return nil, tmdb.ErrMissingAPIKey
	}

	details, err := s.meta.Details(ctx, tmdbID)
	if err != nil {
		return nil, err
	}

	m := &catalog.Movie{
		Title:  details.Title,
		Format: format,
		TMDBID: &tmdbID,
	}
	if y := details.Year(); y > 0 {
		m.Year = &y
	}
	if details.VoteCount > 0 || details.VoteAverage > 0 {
		vote := details.VoteAverage
		m.Vote = &vote
	}

	var img poster
	if details.PosterPath != "" && s.fetcher != nil && s.posters != nil {
		data, contentType, err := s.fetcher.FetchPoster(ctx, details.PosterPath, s.cfg.PosterSize)
		if err != nil {
			s.logger.WarnContext(ctx, "poster download failed", "tmdb_id", tmdbID, "error", err)
		} else {
			img = poster{data: data, name: posters.FileName(tmdbID, contentType, details.PosterPath)}
		}
	}

	if err := s.insert(ctx, m, img); err != nil {
		if errors.Is(err, catalog.ErrDuplicate) {
			return nil, s.duplicate(m, err)
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "movie added", "id", m.ID, "title", m.Title, "tmdb_id", tmdbID,
		"poster", m.HasPoster(), "source", "tmdb")
	return m, nil
}

// poster is a downloaded image waiting to be stored.
type poster struct {
	data []byte
	name string
}

// insert adds m and records img as its poster in one transaction. The poster
// file is written only once the row is in place.
func (s *Service) insert(ctx context.Context, m *catalog.Movie, img poster) (err error) {
	tx, err := s.store.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = tx.AddMovie(m); err != nil {
		return err
	}

	saved := ""
	if len(img.data) > 0 {
		if serr := s.posters.Save(img.name, img.data); serr != nil {
			s.logger.WarnContext(ctx, "poster save failed", "id", m.ID, "error", serr)
		} else {
			if err = tx.SetPoster(m.ID, &img.name); err != nil {
				_ = s.posters.Remove(img.name)
				return err
			}
			saved = img.name
		}
	}

	if err = tx.Commit(); err != nil {
		if saved != "" {
			_ = s.posters.Remove(saved)
		}
		return fmt.Errorf("commit movie %q: %w", m.Title, err)
	}
	if saved != "" {
		m.PosterFile = &saved
	}
	return nil
}

// duplicate builds a DuplicateError, loading the colliding row when possible.
func (s *Service) duplicate(m *catalog.Movie, err error) error {
	dup := &DuplicateError{Err: err}
	var existing *catalog.Movie
	var lookupErr error
	if errors.Is(err, catalog.ErrDuplicateTMDB) && m.TMDBID != nil {
		existing, lookupErr = s.store.GetByTMDBID(*m.TMDBID)
	} else {
		existing, lookupErr = s.store.GetByKey(m.Title, m.Year, m.Format)
	}
	if lookupErr == nil {
		dup.Existing = existing
	}
	return dup
}

// Get returns a copy by id.
func (s *Service) Get(id int64) (*catalog.Movie, error) {
	return s.store.GetMovie(id)
}

// ToggleWatched flips the watched flag and returns the new value.
func (s *Service) ToggleWatched(id int64) (bool, error) {
	return s.store.ToggleWatched(id)
}

// Delete removes a copy and its poster file, if any. The row is only
// committed as deleted once the file is gone; a file already missing is fine.
// Returns catalog.ErrNotFound for unknown ids.
func (s *Service) Delete(ctx context.Context, id int64) error {
	tx, err := s.store.Begin()
	if err != nil {
		return err
	}
	posterFile, err := tx.DeleteMovie(id)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if posterFile != nil && *posterFile != "" && s.posters != nil {
		if err := s.posters.Remove(*posterFile); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete movie %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete movie %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "movie deleted", "id", id, "poster", posterFile != nil)
	return nil
}

// ListOptions selects and orders the listing.
type ListOptions struct {
	Query   string // fuzzy title match; empty lists everything
	Watched *bool
	Format  *string
	Sort    catalog.SortKey // empty with a Query orders by relevance
	Desc    bool
}

// List returns copies matching opts.
func (s *Service) List(opts ListOptions) ([]*catalog.Movie, error) {
	movies, _, err := s.store.ListMovies(catalog.MovieFilter{
		Watched: opts.Watched,
		Format:  opts.Format,
		Sort:    opts.Sort,
		Desc:    opts.Desc,
	})
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(opts.Query)
	if query == "" {
		return movies, nil
	}

	type scored struct {
		movie *catalog.Movie
		score float64
	}
	var hits []scored
	for _, m := range movies {
		if score := titles.Score(query, m.Title); score >= titles.MatchThreshold {
			hits = append(hits, scored{m, score})
		}
	}
	if opts.Sort == "" {
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	}

	out := make([]*catalog.Movie, len(hits))
	for i, h := range hits {
		out[i] = h.movie
	}
	return out, nil
}

// Stats returns collection totals.
func (s *Service) Stats() (*catalog.Stats, error) {
	return s.store.Stats()
}
