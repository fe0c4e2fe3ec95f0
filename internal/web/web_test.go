package web_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	_ "modernc.org/sqlite"

	"github.com/vmunix/discshelf/internal/catalog"
	"github.com/vmunix/discshelf/internal/collection"
	"github.com/vmunix/discshelf/internal/metadata"
	"github.com/vmunix/discshelf/internal/migrations"
	"github.com/vmunix/discshelf/internal/posters"
	"github.com/vmunix/discshelf/internal/tmdb"
	"github.com/vmunix/discshelf/internal/web"
	"github.com/vmunix/discshelf/internal/web/mocks"
)

type testServer struct {
	handler http.Handler
	store   *catalog.Store
	posters *posters.Store
	meta    *mocks.MockMetadata
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = migrations.Apply(context.Background(), db)
	require.NoError(t, err)
	return db
}

func newTestServer(t *testing.T, cfg web.Config) *testServer {
	t.Helper()
	ps, err := posters.NewStore(t.TempDir())
	require.NoError(t, err)

	ts := &testServer{
		store:   catalog.NewStore(openDB(t)),
		posters: ps,
		meta:    mocks.NewMockMetadata(gomock.NewController(t)),
	}
	coll := collection.New(ts.store, ps, ts.meta, nil, collection.Config{}, testLogger())
	srv, err := web.New(coll, ts.meta, ps, cfg, testLogger())
	require.NoError(t, err)
	ts.handler = srv.Handler()
	return ts
}

// newOfflineServer has no TMDB wiring at all.
func newOfflineServer(t *testing.T) *testServer {
	t.Helper()
	ps, err := posters.NewStore(t.TempDir())
	require.NoError(t, err)
	ts := &testServer{store: catalog.NewStore(openDB(t)), posters: ps}
	coll := collection.New(ts.store, ps, nil, nil, collection.Config{}, testLogger())
	srv, err := web.New(coll, nil, ps, web.Config{}, testLogger())
	require.NoError(t, err)
	ts.handler = srv.Handler()
	return ts
}

func (ts *testServer) do(t *testing.T, method, target, body, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func (ts *testServer) postJSON(t *testing.T, target, body string) *httptest.ResponseRecorder {
	return ts.do(t, http.MethodPost, target, body, "application/json")
}

func (ts *testServer) postForm(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	return ts.do(t, http.MethodPost, target, form.Encode(), "application/x-www-form-urlencoded")
}

func (ts *testServer) addMovie(t *testing.T, m *catalog.Movie) *catalog.Movie {
	t.Helper()
	require.NoError(t, ts.store.AddMovie(m))
	return m
}

type apiError struct {
	Error    string         `json:"error"`
	Code     string         `json:"code"`
	Existing map[string]any `json:"existing"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func ptr[T any](v T) *T { return &v }

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, web.Config{})
	w := ts.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAPI_CreateManual(t *testing.T) {
	ts := newTestServer(t, web.Config{})

	w := ts.postJSON(t, "/api/movies", `{"title":"Alien","format":"VHS, DVD","year":1979}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	got := decode[map[string]any](t, w)
	assert.Equal(t, "Alien", got["title"])
	assert.Equal(t, "VHS, DVD", got["format"])
	assert.Equal(t, []any{"VHS", "DVD"}, got["formats"])
	assert.EqualValues(t, 1979, got["year"])
	assert.Nil(t, got["tmdb_id"])
	assert.Equal(t, false, got["watched"])
}

func TestAPI_CreateManual_Duplicate(t *testing.T) {
	ts := newTestServer(t, web.Config{})

	require.Equal(t, http.StatusCreated, ts.postJSON(t, "/api/movies", `{"title":"Alien","format":"VHS"}`).Code)
	w := ts.postJSON(t, "/api/movies", `{"title":"Alien","formats":["VHS"]}`)
	require.Equal(t, http.StatusConflict, w.Code)

	e := decode[apiError](t, w)
	assert.Equal(t, "DUPLICATE", e.Code)
	require.NotNil(t, e.Existing)
	assert.Equal(t, "Alien", e.Existing["title"])
}

func TestAPI_CreateFromTMDB(t *testing.T) {
	ts := newTestServer(t, web.Config{})
	ts.meta.EXPECT().
		Details(gomock.Any(), int64(550)).
		Return(&tmdb.Movie{ID: 550, Title: "Fight Club", ReleaseDate: "1999-10-15", VoteAverage: 8.4, VoteCount: 100}, nil).
		Times(2)

	w := ts.postJSON(t, "/api/movies", `{"tmdb_id":550,"format":"Blu-ray"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	got := decode[map[string]any](t, w)
	assert.Equal(t, "Fight Club", got["title"])
	assert.EqualValues(t, 550, got["tmdb_id"])
	assert.EqualValues(t, 1999, got["year"])

	w = ts.postJSON(t, "/api/movies", `{"tmdb_id":550,"format":"DVD"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	e := decode[apiError](t, w)
	assert.Equal(t, "DUPLICATE_TMDB", e.Code)

	st, err := ts.store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, st.Total)
}

func TestAPI_CreateFromTMDB_NotConfigured(t *testing.T) {
	ts := newOfflineServer(t)

	w := ts.postJSON(t, "/api/movies", `{"tmdb_id":550,"format":"DVD"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "MISSING_API_KEY", decode[apiError](t, w).Code)

	// Manual entry keeps working without a key.
	w = ts.postJSON(t, "/api/movies", `{"title":"Heat","format":"DVD"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAPI_CreateValidation(t *testing.T) {
	ts := newTestServer(t, web.Config{})

	tests := []struct {
		name string
		body string
		code string
	}{
		{"missing title", `{"format":"DVD"}`, "VALIDATION_ERROR"},
		{"missing format", `{"title":"Heat"}`, "VALIDATION_ERROR"},
		{"blank format", `{"title":"Heat","format":" , "}`, "VALIDATION_ERROR"},
		{"bad year", `{"title":"Heat","format":"DVD","year":12}`, "VALIDATION_ERROR"},
		{"bad tmdb id", `{"tmdb_id":0,"format":"DVD"}`, "VALIDATION_ERROR"},
		{"bad json", `{"title":`, "INVALID_JSON"},
		{"unknown field", `{"title":"Heat","format":"DVD","rating":5}`, "INVALID_JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.postJSON(t, "/api/movies", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, decode[apiError](t, w).Code)
		})
	}
}

func TestAPI_GetMovie(t *testing.T) {
	ts := newTestServer(t, web.Config{})
	m := ts.addMovie(t, &catalog.Movie{Title: "Heat", Format: "DVD", PosterFile: ptr("949.jpg")})

	w := ts.do(t, http.MethodGet, fmt.Sprintf("/api/movies/%d", m.ID), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string]any](t, w)
	assert.Equal(t, "Heat", got["title"])
	assert.Equal(t, "/posters/949.jpg", got["poster_url"])

	w = ts.do(t, http.MethodGet, "/api/movies/999", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode[apiError](t, w).Code)

	w = ts.do(t, http.MethodGet, "/api/movies/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[apiError](t, w).Code)
}

func TestAPI_ToggleWatched(t *testing.T) {
	ts := newTestServer(t, web.Config{})
	m := ts.addMovie(t, &catalog.Movie{Title: "Heat", Format: "DVD"})
	path := fmt.Sprintf("/api/movies/%d/watched", m.ID)

	w := ts.do(t, http.MethodPost, path, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"watched":true}`, m.ID), w.Body.String())

	w = ts.do(t, http.MethodPost, path, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"watched":false}`, m.ID), w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/movies/999/watched", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_DeleteMovie(t *testing.T) {
	ts := newTestServer(t, web.Config{})
	require.NoError(t, ts.posters.Save("949.jpg", []byte("jpeg")))
	m := ts.addMovie(t, &catalog.Movie{Title: "Heat", Format: "DVD", PosterFile: ptr("949.jpg")})
	path := fmt.Sprintf("/api/movies/%d", m.ID)

	w := ts.do(t, http.MethodDelete, path, "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, ts.posters.Exists("949.jpg"))

	w = ts.do(t, http.MethodDelete, path, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_ListMovies(t *testing.T) {
	ts := newTestServer(t, web.Config{})
	ts.addMovie(t, &catalog.Movie{Title: "Heat", Format: "DVD", Year: ptr(1995)})
	ts.addMovie(t, &catalog.Movie{Title: "Alien", Format: "VHS", Year: ptr(1979), Watched: true})
	ts.addMovie(t, &catalog.Movie{Title: "Blade Runner", Format: "Blu-ray, DVD", Year: ptr(1982)})

	type list struct {
		Movies []struct {
			Title string `json:"title"`
		} `json:"movies"`
		Total int `json:"total"`
	}
	titlesOf := func(l list) []string {
		var out []string
		for _, m := range l.Movies {
			out = append(out, m.Title)
		}
		return out
	}

	w := ts.do(t, http.MethodGet, "/api/movies", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	l := decode[list](t, w)
	assert.Equal(t, 3, l.Total)
	assert.Equal(t, []string{"Alien", "Blade Runner", "Heat"}, titlesOf(l))

	w = ts.do(t, http.MethodGet, "/api/movies?sort=year&order=desc", "", "")
	assert.Equal(t, []string{"Heat", "Blade Runner", "Alien"}, titlesOf(decode[list](t, w)))

	w = ts.do(t, http.MethodGet, "/api/movies?watched=no", "", "")
	assert.Equal(t, []string{"Blade Runner", "Heat"}, titlesOf(decode[list](t, w)))

	w = ts.do(t, http.MethodGet, "/api/movies?format=DVD", "", "")
	assert.Equal(t, []string{"Blade Runner", "Heat"}, titlesOf(decode[list](t, w)))

	w = ts.do(t, http.MethodGet, "/api/movies?q=blade+runer", "", "")
	assert.Equal(t, []string{"Blade Runner"}, titlesOf(decode[list](t, w)))

	for _, bad := range []string{"sort=rating", "order=up", "watched=maybe"} {
		w = ts.do(t, http.MethodGet, "/api/movies?"+bad, "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
		assert.Equal(t, "VALIDATION_ERROR", decode[apiError](t, w).Code, bad)
	}
}

func TestAPI_Search(t *testing.T) {
	ts := newTestServer(t, web.Config{PosterSize: "w185"})
	ts.meta.EXPECT().
		Search(gomock.Any(), "heat", 1995).
		Return([]tmdb.Movie{{ID: 949, Title: "Heat", ReleaseDate: "1995-12-15", PosterPath: "/h.jpg", Runtime: 170}}, nil)

	w := ts.do(t, http.MethodGet, "/api/search?q=heat&year=1995", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got struct {
		Query   string `json:"query"`
		Results []struct {
			TMDBID    int64  `json:"tmdb_id"`
			Title     string `json:"title"`
			Year      int    `json:"year"`
			Runtime   int    `json:"runtime"`
			PosterURL string `json:"poster_url"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "heat", got.Query)
	require.Len(t, got.Results, 1)
	assert.Equal(t, int64(949), got.Results[0].TMDBID)
	assert.Equal(t, 1995, got.Results[0].Year)
	assert.Equal(t, 170, got.Results[0].Runtime)
	assert.Equal(t, "https://image.tmdb.org/t/p/w185/h.jpg", got.Results[0].PosterURL)
}

func TestAPI_Search_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"missing key", tmdb.ErrMissingAPIKey, http.StatusServiceUnavailable, "MISSING_API_KEY"},
		{"upstream", fmt.Errorf("search %q: %w", "heat", fmt.Errorf("%w: status 500", tmdb.ErrUpstream)), http.StatusBadGateway, "UPSTREAM_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, web.Config{})
			ts.meta.EXPECT().Search(gomock.Any(), "heat", 0).Return(nil, tt.err)

			w := ts.do(t, http.MethodGet, "/api/search?q=heat", "", "")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode[apiError](t, w).Code)
		})
	}

	ts := newTestServer(t, web.Config{})
	w := ts.do(t, http.MethodGet, "/api/search", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[apiError](t, w).Code)
	w = ts.do(t, http.MethodGet, "/api/search?q=heat&year=nineteen", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[apiError](t, w).Code)

	offline := newOfflineServer(t)
	w = offline.do(t, http.MethodGet, "/api/search?q=heat", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAPI_MovieDetails(t *testing.T) {
	ts := newTestServer(t, web.Config{})
	manual := ts.addMovie(t, &catalog.Movie{Title: "Home Video", Format: "VHS"})
	linked := ts.addMovie(t, &catalog.Movie{Title: "Heat", Format: "DVD", TMDBID: ptr(int64(949))})

	w := ts.do(t, http.MethodGet, fmt.Sprintf("/api/movies/%d/details", manual.ID), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string]any](t, w)
	assert.Nil(t, got["metadata"])

	ts.meta.EXPECT().
		Details(gomock.Any(), int64(949)).
		Return(&tmdb.Movie{ID: 949, Title: "Heat", Runtime: 170, Genres: []tmdb.Genre{{ID: 80, Name: "Crime"}}}, nil)
	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/movies/%d/details", linked.ID), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	got = decode[map[string]any](t, w)
	md, ok := got["metadata"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 170, md["runtime"])
	assert.Equal(t, []any{"Crime"}, md["genres"])

	ts.meta.EXPECT().Details(gomock.Any(), int64(949)).Return(nil, tmdb.ErrUpstream)
	ts.meta.EXPECT().Peek(int64(949)).Return(metadata.Entry{}, false)
	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/movies/%d/details", linked.ID), "", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestAPI_MovieDetails_FallsBackToSearchData(t *testing.T) {
	ts := newTestServer(t, web.Config{})
	linked := ts.addMovie(t, &catalog.Movie{Title: "Heat", Format: "DVD", TMDBID: ptr(int64(949))})

	ts.meta.EXPECT().Details(gomock.Any(), int64(949)).Return(nil, tmdb.ErrUpstream)
	ts.meta.EXPECT().
		Peek(int64(949)).
		Return(metadata.Entry{Movie: tmdb.Movie{ID: 949, Title: "Heat", Overview: "A heist."}}, true)

	w := ts.do(t, http.MethodGet, fmt.Sprintf("/api/movies/%d/details", linked.ID), "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[map[string]any](t, w)
	md, ok := got["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "A heist.", md["overview"])
	assert.Equal(t, true, md["partial"])
}

func TestAPI_SearchRateLimited(t *testing.T) {
	ts := newTestServer(t, web.Config{SearchRateLimit: 1})
	ts.meta.EXPECT().Search(gomock.Any(), "heat", 0).Return(nil, nil).Times(1)

	w := ts.do(t, http.MethodGet, "/api/search?q=heat", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodGet, "/api/search?q=heat", "", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", decode[apiError](t, w).Code)

	// Catalog routes are not limited.
	w = ts.do(t, http.MethodGet, "/api/movies", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPage_Index(t *testing.T) {
	ts := newTestServer(t, web.Config{})
	ts.addMovie(t, &catalog.Movie{Title: "Heat", Format: "DVD", Year: ptr(1995), Vote: ptr(7.9)})
	ts.addMovie(t, &catalog.Movie{Title: "Alien", Format: "VHS", Watched: true})

	w := ts.do(t, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	body := w.Body.String()
	assert.Contains(t, body, "Heat")
	assert.Contains(t, body, "Alien")
	assert.Contains(t, body, "7.9")
	assert.Contains(t, body, "2 movies, 1 watched.")

	w = ts.do(t, http.MethodGet, "/?watched=yes", "", "")
	assert.NotContains(t, w.Body.String(), ">Heat<")
	assert.Contains(t, w.Body.String(), ">Alien<")

	w = ts.do(t, http.MethodGet, "/?sort=bogus", "", "")
	assert.Equal(t, http.StatusOK, w.Code, "bad sort falls back with a message")
	assert.Contains(t, w.Body.String(), "sort must be one of")
}

func TestPage_CreateMovie(t *testing.T) {
	ts := newTestServer(t, web.Config{})

	w := ts.do(t, http.MethodGet, "/movies/new", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="title"`)

	form := url.Values{"title": {"Alien"}, "year": {"1979"}, "format": {"VHS", "DVD"}}
	w = ts.postForm(t, "/movies", form)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Regexp(t, `^/movies/\d+\?notice=added$`, w.Header().Get("Location"))

	w = ts.postForm(t, "/movies", form)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already in your collection")
	assert.Contains(t, w.Body.String(), `value="Alien"`, "form keeps the submitted values")
}

func TestPage_CreateMovie_Invalid(t *testing.T) {
	ts := newTestServer(t, web.Config{})

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"no title", url.Values{"format": {"DVD"}}, "Title is required."},
		{"no format", url.Values{"title": {"Heat"}}, "Pick at least one format."},
		{"bad year", url.Values{"title": {"Heat"}, "format": {"DVD"}, "year": {"soon"}}, "Year must be a number."},
		{"year out of range", url.Values{"title": {"Heat"}, "format": {"DVD"}, "year": {"1200"}}, "Year must be between"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.postForm(t, "/movies", tt.form)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}

	st, err := ts.store.Stats()
	require.NoError(t, err)
	assert.Zero(t, st.Total)
}

func TestPage_CreateMovie_OtherFormat(t *testing.T) {
	ts := newTestServer(t, web.Config{})

	w := ts.postForm(t, "/movies", url.Values{"title": {"Tron"}, "format_other": {"LaserDisc"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	movies, _, err := ts.store.ListMovies(catalog.MovieFilter{})
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "LaserDisc", movies[0].Format)
}

func TestPage_Search(t *testing.T) {
	ts := newTestServer(t, web.Config{})

	w := ts.do(t, http.MethodGet, "/search", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	ts.meta.EXPECT().
		Search(gomock.Any(), "heat", 0).
		Return([]tmdb.Movie{{ID: 949, Title: "Heat", ReleaseDate: "1995-12-15", Overview: "A heist."}}, nil)
	w = ts.do(t, http.MethodGet, "/search?q=heat", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Heat")
	assert.Contains(t, w.Body.String(), "(1995)")
	assert.Contains(t, w.Body.String(), `name="tmdb_id" value="949"`)

	ts.meta.EXPECT().Search(gomock.Any(), "alien", 0).Return(nil, tmdb.ErrMissingAPIKey)
	w = ts.do(t, http.MethodGet, "/search?q=alien", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "TMDB is not configured")
}

func TestPage_CreateFromTMDB(t *testing.T) {
	ts := newTestServer(t, web.Config{})
	ts.meta.EXPECT().
		Details(gomock.Any(), int64(949)).
		Return(&tmdb.Movie{ID: 949, Title: "Heat", ReleaseDate: "1995-12-15"}, nil).
		Times(2)

	form := url.Values{"tmdb_id": {"949"}, "format": {"DVD"}}
	w := ts.postForm(t, "/movies/tmdb", form)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())

	first := w.Header().Get("Location")
	require.Regexp(t, `^/movies/\d+\?notice=added$`, first)

	w = ts.postForm(t, "/movies/tmdb", form)
	require.Equal(t, http.StatusSeeOther, w.Code, "a duplicate is not an error")
	loc := w.Header().Get("Location")
	assert.Equal(t, strings.TrimSuffix(first, "added")+"exists", loc)

	ts.meta.EXPECT().Details(gomock.Any(), int64(949)).Return(nil, tmdb.ErrUpstream)
	ts.meta.EXPECT().Peek(int64(949)).Return(metadata.Entry{}, false)
	w = ts.do(t, http.MethodGet, loc, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already in your collection")
	assert.NotContains(t, w.Body.String(), "Conflict")

	w = ts.postForm(t, "/movies/tmdb", url.Values{"tmdb_id": {"949"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPage_Movie(t *testing.T) {
	ts := newTestServer(t, web.Config{})
	m := ts.addMovie(t, &catalog.Movie{Title: "Heat", Format: "DVD", TMDBID: ptr(int64(949))})

	ts.meta.EXPECT().
		Details(gomock.Any(), int64(949)).
		Return(&tmdb.Movie{ID: 949, Title: "Heat", Overview: "A heist.", Runtime: 170}, nil)
	w := ts.do(t, http.MethodGet, fmt.Sprintf("/movies/%d?notice=added", m.ID), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "A heist.")
	assert.Contains(t, w.Body.String(), "170 min")
	assert.Contains(t, w.Body.String(), "Movie added.")

	ts.meta.EXPECT().Details(gomock.Any(), int64(949)).Return(nil, tmdb.ErrUpstream)
	ts.meta.EXPECT().Peek(int64(949)).Return(metadata.Entry{}, false)
	w = ts.do(t, http.MethodGet, fmt.Sprintf("/movies/%d", m.ID), "", "")
	assert.Equal(t, http.StatusOK, w.Code, "record still shown without metadata")
	assert.Contains(t, w.Body.String(), "TMDB could not be reached")

	ts.meta.EXPECT().Details(gomock.Any(), int64(949)).Return(nil, tmdb.ErrUpstream)
	ts.meta.EXPECT().
		Peek(int64(949)).
		Return(metadata.Entry{Movie: tmdb.Movie{ID: 949, Title: "Heat", Overview: "Cached overview."}}, true)
	w = ts.do(t, http.MethodGet, fmt.Sprintf("/movies/%d", m.ID), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cached overview.")
	assert.Contains(t, w.Body.String(), "showing what an earlier search returned")
	assert.NotContains(t, w.Body.String(), "TMDB could not be reached")

	w = ts.do(t, http.MethodGet, "/movies/999", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPage_ToggleAndDelete(t *testing.T) {
	ts := newTestServer(t, web.Config{})
	m := ts.addMovie(t, &catalog.Movie{Title: "Heat", Format: "DVD"})

	w := ts.postForm(t, fmt.Sprintf("/movies/%d/watched", m.ID), url.Values{"next": {"/?watched=no"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?watched=no", w.Header().Get("Location"))

	w = ts.postForm(t, fmt.Sprintf("/movies/%d/watched", m.ID), url.Values{"next": {"https://evil.example/"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, fmt.Sprintf("/movies/%d", m.ID), w.Header().Get("Location"))

	got, err := ts.store.GetMovie(m.ID)
	require.NoError(t, err)
	assert.False(t, got.Watched, "toggled twice")

	w = ts.postForm(t, fmt.Sprintf("/movies/%d/delete", m.ID), nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?notice=deleted", w.Header().Get("Location"))

	w = ts.postForm(t, fmt.Sprintf("/movies/%d/delete", m.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPoster(t *testing.T) {
	ts := newTestServer(t, web.Config{})
	require.NoError(t, ts.posters.Save("949.jpg", []byte("\xff\xd8\xff\xe0jpeg")))

	w := ts.do(t, http.MethodGet, "/posters/949.jpg", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "\xff\xd8\xff\xe0jpeg", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("Cache-Control"))

	w = ts.do(t, http.MethodGet, "/posters/missing.jpg", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/posters/..%2Fmovies.db", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
