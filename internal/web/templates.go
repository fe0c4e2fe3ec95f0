package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"index", "new", "search", "movie", "error"}

var funcs = template.FuncMap{
	"year": func(y *int) string {
		if y == nil {
			return ""
		}
		return strconv.Itoa(*y)
	},
	"rating": func(v *float64) string {
		if v == nil {
			return "–"
		}
		return strconv.FormatFloat(*v, 'f', 1, 64)
	},
	"poster": localPosterURL,
	"checked": func(set map[string]bool, key string) bool {
		return set[key]
	},
	"sortLink": sortLink,
}

// parsePages parses each page together with the shared layout.
func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// page carries the fields every template reads.
type page struct {
	Title       string
	Notice      string
	Error       string
	TMDBEnabled bool
}

func (s *Server) basePage(title string) page {
	return page{Title: title, TMDBEnabled: s.meta != nil}
}

// render executes a page into a buffer so template errors never produce a
// half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	t, ok := s.pages[name]
	if !ok {
		s.logger.ErrorContext(r.Context(), "unknown template", "template", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "render failed", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorPage struct {
	page
	Status int
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	p := errorPage{page: s.basePage(http.StatusText(status)), Status: status}
	p.Error = message
	s.render(w, r, status, "error", p)
}
