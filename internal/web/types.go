package web

import (
	"net/url"
	"time"

	"github.com/vmunix/discshelf/internal/catalog"
	"github.com/vmunix/discshelf/internal/tmdb"
)

type movieResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Format    string    `json:"format"`
	Formats   []string  `json:"formats"`
	Year      *int      `json:"year"`
	TMDBID    *int64    `json:"tmdb_id"`
	PosterURL string    `json:"poster_url,omitempty"`
	Vote      *float64  `json:"vote"`
	Watched   bool      `json:"watched"`
	AddedAt   time.Time `json:"added_at"`
}

func toMovieResponse(m *catalog.Movie) movieResponse {
	return movieResponse{
		ID:        m.ID,
		Title:     m.Title,
		Format:    m.Format,
		Formats:   m.Formats(),
		Year:      m.Year,
		TMDBID:    m.TMDBID,
		PosterURL: localPosterURL(m),
		Vote:      m.Vote,
		Watched:   m.Watched,
		AddedAt:   m.AddedAt,
	}
}

type listMoviesResponse struct {
	Movies []movieResponse `json:"movies"`
	Total  int             `json:"total"`
}

type createMovieRequest struct {
	Title   string   `json:"title"`
	Format  string   `json:"format"`  // comma-separated
	Formats []string `json:"formats"` // alternative to Format
	Year    *int     `json:"year"`
	TMDBID  *int64   `json:"tmdb_id"` // when set, title and year come from TMDB
}

type watchedResponse struct {
	ID      int64 `json:"id"`
	Watched bool  `json:"watched"`
}

// metadataResponse is TMDB data for a movie.
type metadataResponse struct {
	TMDBID      int64    `json:"tmdb_id"`
	IMDBID      string   `json:"imdb_id,omitempty"`
	Title       string   `json:"title"`
	Year        int      `json:"year,omitempty"`
	Overview    string   `json:"overview"`
	Tagline     string   `json:"tagline,omitempty"`
	Runtime     int      `json:"runtime,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	VoteAverage float64  `json:"vote_average"`
	VoteCount   int      `json:"vote_count"`
	PosterURL   string   `json:"poster_url,omitempty"`
	Partial     bool     `json:"partial,omitempty"` // search data only; full details unavailable
}

func toMetadataResponse(m *tmdb.Movie, posterSize string) metadataResponse {
	return metadataResponse{
		TMDBID:      m.ID,
		IMDBID:      m.IMDBID,
		Title:       m.Title,
		Year:        m.Year(),
		Overview:    m.Overview,
		Tagline:     m.Tagline,
		Runtime:     m.Runtime,
		Genres:      m.GenreNames(),
		VoteAverage: m.VoteAverage,
		VoteCount:   m.VoteCount,
		PosterURL:   m.PosterURL(posterSize),
	}
}

type movieDetailsResponse struct {
	Movie    movieResponse     `json:"movie"`
	Metadata *metadataResponse `json:"metadata"`
}

type searchResponse struct {
	Query   string             `json:"query"`
	Year    int                `json:"year,omitempty"`
	Results []metadataResponse `json:"results"`
}

// localPosterURL is the path the poster is served from, or "" without one.
func localPosterURL(m *catalog.Movie) string {
	if !m.HasPoster() {
		return ""
	}
	return "/posters/" + url.PathEscape(*m.PosterFile)
}
