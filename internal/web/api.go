package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vmunix/discshelf/internal/catalog"
	"github.com/vmunix/discshelf/internal/collection"
	"github.com/vmunix/discshelf/internal/tmdb"
)

const maxBodyBytes = 1 << 20

func (s *Server) apiListMovies(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	movies, err := s.movies.List(opts)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp := listMoviesResponse{Movies: make([]movieResponse, 0, len(movies)), Total: len(movies)}
	for _, m := range movies {
		resp.Movies = append(resp.Movies, toMovieResponse(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) apiCreateMovie(w http.ResponseWriter, r *http.Request) {
	var req createMovieRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body")
		return
	}
	formats := catalog.SplitFormats(catalog.JoinFormats(append(req.Formats, req.Format)...))

	var (
		m   *catalog.Movie
		err error
	)
	if req.TMDBID != nil {
		form := tmdbForm{TMDBID: *req.TMDBID, Formats: formats}
		if verr := validateForm(form); verr != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error())
			return
		}
		m, err = s.movies.AddFromTMDB(r.Context(), form.TMDBID, form.Formats)
	} else {
		form := manualForm{Title: strings.TrimSpace(req.Title), Year: req.Year, Formats: formats}
		if verr := validateForm(form); verr != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error())
			return
		}
		m, err = s.movies.AddManual(r.Context(), collection.ManualEntry{
			Title:   form.Title,
			Year:    form.Year,
			Formats: form.Formats,
		})
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMovieResponse(m))
}

func (s *Server) apiGetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	m, err := s.movies.Get(id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMovieResponse(m))
}

func (s *Server) apiToggleWatched(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	watched, err := s.movies.ToggleWatched(id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, watchedResponse{ID: id, Watched: watched})
}

func (s *Server) apiDeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if err := s.movies.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiMovieDetails(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	m, err := s.movies.Get(id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp := movieDetailsResponse{Movie: toMovieResponse(m)}
	if m.TMDBID == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if s.meta == nil {
		s.writeServiceError(w, r, tmdb.ErrMissingAPIKey)
		return
	}
	details, partial, err := s.details(r, *m.TMDBID)
	if details == nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err != nil {
		s.logger.WarnContext(r.Context(), "serving cached search data", "tmdb_id", *m.TMDBID, "error", err)
	}
	md := toMetadataResponse(details, s.cfg.PosterSize)
	md.Partial = partial
	resp.Metadata = &md
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) apiSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "q is required")
		return
	}
	year, err := queryYear(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	results, err := s.search(r, query, year)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp := searchResponse{Query: query, Year: year, Results: make([]metadataResponse, 0, len(results))}
	for i := range results {
		resp.Results = append(resp.Results, toMetadataResponse(&results[i], s.cfg.PosterSize))
	}
	writeJSON(w, http.StatusOK, resp)
}

// details fetches full metadata. When that fails but an earlier search left a
// cached entry, the entry is returned with partial set alongside the error.
func (s *Server) details(r *http.Request, tmdbID int64) (*tmdb.Movie, bool, error) {
	m, err := s.meta.Details(r.Context(), tmdbID)
	if err == nil {
		return m, false, nil
	}
	if e, ok := s.meta.Peek(tmdbID); ok {
		cached := e.Movie
		return &cached, !e.Full, err
	}
	return nil, false, err
}

func (s *Server) search(r *http.Request, query string, year int) ([]tmdb.Movie, error) {
	if s.meta == nil {
		return nil, tmdb.ErrMissingAPIKey
	}
	return s.meta.Search(r.Context(), query, year)
}

// parseListOptions reads q, sort, order, watched and format.
func parseListOptions(r *http.Request) (collection.ListOptions, error) {
	q := r.URL.Query()
	opts := collection.ListOptions{Query: strings.TrimSpace(q.Get("q"))}

	if sort := q.Get("sort"); sort != "" {
		key := catalog.SortKey(sort)
		if !catalog.ValidSortKey(key) {
			return opts, errors.New("sort must be one of title, year, added, vote, watched")
		}
		opts.Sort = key
	}
	switch strings.ToLower(q.Get("order")) {
	case "", "asc":
	case "desc":
		opts.Desc = true
	default:
		return opts, errors.New("order must be asc or desc")
	}
	switch strings.ToLower(q.Get("watched")) {
	case "":
	case "yes", "true", "1":
		opts.Watched = ptrTo(true)
	case "no", "false", "0":
		opts.Watched = ptrTo(false)
	default:
		return opts, errors.New("watched must be yes or no")
	}
	if f := strings.TrimSpace(q.Get("format")); f != "" {
		opts.Format = &f
	}
	return opts, nil
}

func ptrTo[T any](v T) *T { return &v }
