package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vmunix/discshelf/internal/catalog"
	"github.com/vmunix/discshelf/internal/collection"
	"github.com/vmunix/discshelf/internal/tmdb"
)

// Error response
type errorResponse struct {
	Error    string         `json:"error"`
	Code     string         `json:"code"`
	Existing *movieResponse `json:"existing,omitempty"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	writeJSON(w, code, errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// classify maps a service error to an HTTP status and API error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, catalog.ErrDuplicateTMDB):
		return http.StatusConflict, "DUPLICATE_TMDB"
	case errors.Is(err, catalog.ErrDuplicateManual):
		return http.StatusConflict, "DUPLICATE"
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, tmdb.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, tmdb.ErrMissingAPIKey):
		return http.StatusServiceUnavailable, "MISSING_API_KEY"
	case errors.Is(err, tmdb.ErrUpstream):
		return http.StatusBadGateway, "UPSTREAM_ERROR"
	case errors.Is(err, collection.ErrInvalidEntry), errors.Is(err, catalog.ErrConstraint):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// userMessage is the text shown to users for err.
func userMessage(err error) string {
	var dup *collection.DuplicateError
	switch {
	case errors.As(err, &dup) && dup.Existing != nil:
		return fmt.Sprintf("%q (%s) is already in your collection.", dup.Existing.Title, dup.Existing.Format)
	case errors.Is(err, catalog.ErrDuplicateTMDB):
		return "That movie is already in your collection."
	case errors.Is(err, catalog.ErrDuplicateManual):
		return "A copy with the same title, year and format is already in your collection."
	case errors.Is(err, catalog.ErrNotFound):
		return "Movie not found."
	case errors.Is(err, tmdb.ErrNotFound):
		return "TMDB has no movie with that id."
	case errors.Is(err, tmdb.ErrMissingAPIKey):
		return "TMDB is not configured: set an API key to search and add from TMDB."
	case errors.Is(err, tmdb.ErrUpstream):
		return "TMDB could not be reached. Try again later."
	case errors.Is(err, collection.ErrInvalidEntry), errors.Is(err, catalog.ErrConstraint):
		return err.Error()
	default:
		return "Something went wrong."
	}
}

// writeServiceError writes the JSON error for err, logging unexpected ones.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= 500 {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	resp := errorResponse{Error: userMessage(err), Code: code}
	var dup *collection.DuplicateError
	if errors.As(err, &dup) && dup.Existing != nil {
		existing := toMovieResponse(dup.Existing)
		resp.Existing = &existing
	}
	writeJSON(w, status, resp)
}

// pathID extracts an integer ID from the URL path.
func pathID(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	if idStr == "" {
		return 0, fmt.Errorf("missing path parameter: %s", name)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, idStr)
	}
	return id, nil
}

// queryYear parses an optional year parameter; 0 means none.
func queryYear(r *http.Request) (int, error) {
	val := r.URL.Query().Get("year")
	if val == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(val)
	if err != nil || year < minYear || year > maxYear {
		return 0, fmt.Errorf("invalid year: %q", val)
	}
	return year, nil
}
