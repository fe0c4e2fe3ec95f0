package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vmunix/discshelf/internal/catalog"
	"github.com/vmunix/discshelf/internal/collection"
	"github.com/vmunix/discshelf/internal/tmdb"
)

var notices = map[string]string{
	"added":   "Movie added.",
	"deleted": "Movie deleted.",
	"exists":  "This movie is already in your collection.",
}

func (s *Server) pageWithNotice(r *http.Request, title string) page {
	p := s.basePage(title)
	p.Notice = notices[r.URL.Query().Get("notice")]
	return p
}

type indexPage struct {
	page
	Movies  []*catalog.Movie
	Stats   *catalog.Stats
	Query   string
	Sort    string
	Order   string
	Watched string
	Format  string
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	p := indexPage{page: s.pageWithNotice(r, "My movies")}
	q := r.URL.Query()
	p.Query, p.Sort, p.Order, p.Watched, p.Format = q.Get("q"), q.Get("sort"), q.Get("order"), q.Get("watched"), q.Get("format")

	opts, err := parseListOptions(r)
	if err != nil {
		p.Error = err.Error()
		opts = collection.ListOptions{Query: strings.TrimSpace(p.Query)}
	}
	if p.Movies, err = s.movies.List(opts); err != nil {
		s.pageError(w, r, err)
		return
	}
	if p.Stats, err = s.movies.Stats(); err != nil {
		s.pageError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "index", p)
}

type newPage struct {
	page
	Values  formValues
	Formats []string
}

func (s *Server) newMovieForm(w http.ResponseWriter, r *http.Request) {
	p := newPage{page: s.basePage("Add a movie"), Formats: commonFormats}
	p.Values.Title = r.URL.Query().Get("title")
	s.render(w, r, http.StatusOK, "new", p)
}

func (s *Server) createMovie(w http.ResponseWriter, r *http.Request) {
	form, vals, err := parseManualForm(r)
	p := newPage{page: s.basePage("Add a movie"), Values: vals, Formats: commonFormats}
	if err != nil {
		p.Error = err.Error()
		s.render(w, r, http.StatusBadRequest, "new", p)
		return
	}

	m, err := s.movies.AddManual(r.Context(), collection.ManualEntry{
		Title:   form.Title,
		Year:    form.Year,
		Formats: form.Formats,
	})
	if err != nil {
		status, _ := classify(err)
		if status >= 500 {
			s.logger.ErrorContext(r.Context(), "add movie failed", "error", err)
		}
		p.Error = userMessage(err)
		s.render(w, r, status, "new", p)
		return
	}
	http.Redirect(w, r, movieURL(m.ID)+"?notice=added", http.StatusSeeOther)
}

type searchResult struct {
	tmdb.Movie
	Poster string
}

type searchPage struct {
	page
	Query    string
	Year     string
	Results  []searchResult
	Formats  []string
	Searched bool
}

func (s *Server) searchPage(w http.ResponseWriter, r *http.Request) {
	p := searchPage{
		page:    s.basePage("Search TMDB"),
		Query:   strings.TrimSpace(r.URL.Query().Get("q")),
		Year:    r.URL.Query().Get("year"),
		Formats: commonFormats,
	}
	if p.Query == "" {
		s.render(w, r, http.StatusOK, "search", p)
		return
	}
	year, err := queryYear(r)
	if err != nil {
		p.Error = "Year must be a number between 1870 and 2100."
		s.render(w, r, http.StatusBadRequest, "search", p)
		return
	}

	results, err := s.search(r, p.Query, year)
	p.Searched = true
	if err != nil {
		status, _ := classify(err)
		if status >= 500 {
			s.logger.WarnContext(r.Context(), "tmdb search failed", "query", p.Query, "error", err)
		}
		p.Error = userMessage(err)
		s.render(w, r, status, "search", p)
		return
	}
	for _, m := range results {
		p.Results = append(p.Results, searchResult{Movie: m, Poster: m.PosterURL(s.cfg.PosterSize)})
	}
	s.render(w, r, http.StatusOK, "search", p)
}

func (s *Server) createFromTMDB(w http.ResponseWriter, r *http.Request) {
	form, err := parseTMDBForm(r)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	m, err := s.movies.AddFromTMDB(r.Context(), form.TMDBID, form.Formats)
	if errors.Is(err, catalog.ErrDuplicateTMDB) {
		// Not a failure: point at the copy already on the shelf.
		target := "/?notice=exists"
		var dup *collection.DuplicateError
		if errors.As(err, &dup) && dup.Existing != nil {
			target = movieURL(dup.Existing.ID) + "?notice=exists"
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	if err != nil {
		status, _ := classify(err)
		if status >= 500 {
			s.logger.WarnContext(r.Context(), "add from tmdb failed", "tmdb_id", form.TMDBID, "error", err)
		}
		s.renderError(w, r, status, userMessage(err))
		return
	}
	http.Redirect(w, r, movieURL(m.ID)+"?notice=added", http.StatusSeeOther)
}

type moviePage struct {
	page
	Movie          *catalog.Movie
	Details        *tmdb.Movie
	DetailsPartial bool // Details holds search data only
	DetailsError   string
	RemotePoster   string
}

func (s *Server) moviePage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, "Movie not found.")
		return
	}
	m, err := s.movies.Get(id)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	p := moviePage{page: s.pageWithNotice(r, m.Title), Movie: m}
	if m.TMDBID != nil && s.meta != nil {
		details, partial, err := s.details(r, *m.TMDBID)
		if err != nil {
			s.logger.WarnContext(r.Context(), "movie details unavailable", "id", id, "tmdb_id", *m.TMDBID, "error", err)
			p.DetailsError = userMessage(err)
		}
		if details != nil {
			p.Details, p.DetailsPartial = details, partial
			if !m.HasPoster() {
				p.RemotePoster = details.PosterURL(s.cfg.PosterSize)
			}
		}
	}
	s.render(w, r, http.StatusOK, "movie", p)
}

func (s *Server) toggleWatchedForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, "Movie not found.")
		return
	}
	if _, err := s.movies.ToggleWatched(id); err != nil {
		s.pageError(w, r, err)
		return
	}
	http.Redirect(w, r, safeRedirect(r.PostFormValue("next"), movieURL(id)), http.StatusSeeOther)
}

func (s *Server) deleteMovieForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, "Movie not found.")
		return
	}
	if err := s.movies.Delete(r.Context(), id); err != nil {
		s.pageError(w, r, err)
		return
	}
	http.Redirect(w, r, "/?notice=deleted", http.StatusSeeOther)
}

func (s *Server) poster(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if s.posters == nil || !s.posters.Exists(name) {
		http.NotFound(w, r)
		return
	}
	path, err := s.posters.Path(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, path)
}

// pageError renders err as an HTML error page.
func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	status, _ := classify(err)
	if status >= 500 {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	s.renderError(w, r, status, userMessage(err))
}

func movieURL(id int64) string {
	return "/movies/" + strconv.FormatInt(id, 10)
}

// safeRedirect returns next when it is a local path, fallback otherwise.
func safeRedirect(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return next
}

// sortLink builds the index URL that sorts by key, flipping the order when
// key is already the active sort.
func sortLink(p indexPage, key string) string {
	v := url.Values{}
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	if p.Watched != "" {
		v.Set("watched", p.Watched)
	}
	if p.Format != "" {
		v.Set("format", p.Format)
	}
	v.Set("sort", key)
	if p.Sort == key && p.Order != "desc" {
		v.Set("order", "desc")
	}
	return "/?" + v.Encode()
}
