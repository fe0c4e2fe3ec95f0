package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const movieColumns = "id, title, format, year, tmdb_id, poster_file, vote, added_at, watched"

// mapSQLiteError converts SQLite errors to catalog error values.
func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	// modernc.org/sqlite wraps errors; check error message for constraint violations
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "UNIQUE constraint failed"):
		if strings.Contains(errStr, "tmdb_id") {
			return ErrDuplicateTMDB
		}
		return ErrDuplicateManual
	case strings.Contains(errStr, "PRIMARY KEY constraint failed"):
		return ErrDuplicate
	case strings.Contains(errStr, "CHECK constraint failed"),
		strings.Contains(errStr, "NOT NULL constraint failed"):
		return ErrConstraint
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMovie(row scanner) (*Movie, error) {
	m := &Movie{}
	err := row.Scan(&m.ID, &m.Title, &m.Format, &m.Year, &m.TMDBID, &m.PosterFile, &m.Vote, &m.AddedAt, &m.Watched)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func addMovie(q querier, m *Movie) error {
	now := time.Now().UTC().Truncate(time.Second)
	result, err := q.Exec(`
		INSERT INTO movies (title, format, year, tmdb_id, poster_file, vote, added_at, watched)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Title, m.Format, m.Year, m.TMDBID, m.PosterFile, m.Vote, now, m.Watched,
	)
	if err != nil {
		return fmt.Errorf("insert movie %q: %w", m.Title, mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	m.ID = id
	m.AddedAt = now
	return nil
}

// AddMovie inserts a new movie. Sets ID and AddedAt on the struct.
// A collision on the TMDB id returns ErrDuplicateTMDB; a collision on
// (title, year, format) returns ErrDuplicateManual. Both match ErrDuplicate.
func (s *Store) AddMovie(m *Movie) error { return addMovie(s.db, m) }

// AddMovie inserts a new movie within a transaction.
func (t *Tx) AddMovie(m *Movie) error { return addMovie(t.tx, m) }

func getMovie(q querier, id int64) (*Movie, error) {
	m, err := scanMovie(q.QueryRow("SELECT "+movieColumns+" FROM movies WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("get movie %d: %w", id, mapSQLiteError(err))
	}
	return m, nil
}

// GetMovie retrieves a movie by ID.
// Returns ErrNotFound if the movie does not exist.
func (s *Store) GetMovie(id int64) (*Movie, error) { return getMovie(s.db, id) }

// GetByTMDBID finds the movie carrying the given TMDB id.
// Returns ErrNotFound if none does.
func (s *Store) GetByTMDBID(tmdbID int64) (*Movie, error) {
	m, err := scanMovie(s.db.QueryRow("SELECT "+movieColumns+" FROM movies WHERE tmdb_id = ?", tmdbID))
	if err != nil {
		return nil, fmt.Errorf("get movie by tmdb id %d: %w", tmdbID, mapSQLiteError(err))
	}
	return m, nil
}

// GetByKey finds the movie with the given manual key.
// Returns ErrNotFound if none does.
func (s *Store) GetByKey(title string, year *int, format string) (*Movie, error) {
	y := 0
	if year != nil {
		y = *year
	}
	m, err := scanMovie(s.db.QueryRow(
		"SELECT "+movieColumns+" FROM movies WHERE title = ? AND COALESCE(year, 0) = ? AND format = ?",
		title, y, format,
	))
	if err != nil {
		return nil, fmt.Errorf("get movie %q: %w", title, mapSQLiteError(err))
	}
	return m, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func orderClause(f MovieFilter) string {
	key := f.Sort
	if key == "" {
		key = SortTitle
	}
	col, ok := sortColumns[key]
	if !ok {
		col = sortColumns[SortTitle]
	}
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	// Unknown years and votes sort last in either direction.
	nullsLast := ""
	if key == SortYear || key == SortVote {
		nullsLast = col + " IS NULL, "
	}
	return fmt.Sprintf(" ORDER BY %s%s %s, id %s", nullsLast, col, dir, dir)
}

func listMovies(q querier, f MovieFilter) ([]*Movie, int, error) {
	var conditions []string
	var args []any

	if f.Watched != nil {
		conditions = append(conditions, "watched = ?")
		args = append(args, *f.Watched)
	}
	if f.Format != nil {
		conditions = append(conditions, `(', ' || format || ',') LIKE ? ESCAPE '\'`)
		args = append(args, "%, "+escapeLike(strings.TrimSpace(*f.Format))+",%")
	}
	if f.TMDBID != nil {
		conditions = append(conditions, "tmdb_id = ?")
		args = append(args, *f.TMDBID)
	}
	if f.Title != nil {
		conditions = append(conditions, "title = ?")
		args = append(args, *f.Title)
	}
	if f.TitleContains != nil {
		conditions = append(conditions, `title LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(*f.TitleContains)+"%")
	}
	if f.Year != nil {
		conditions = append(conditions, "year = ?")
		args = append(args, *f.Year)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := q.QueryRow("SELECT COUNT(*) FROM movies "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movies: %w", err)
	}

	query := "SELECT " + movieColumns + " FROM movies " + whereClause + orderClause(f)
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan movie: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate movies: %w", err)
	}

	return results, total, nil
}

// ListMovies returns movies matching the filter with pagination.
// Returns (results, totalCount, error).
func (s *Store) ListMovies(f MovieFilter) ([]*Movie, int, error) { return listMovies(s.db, f) }

func setPoster(q querier, id int64, posterFile *string) error {
	result, err := q.Exec("UPDATE movies SET poster_file = ? WHERE id = ?", posterFile, id)
	if err != nil {
		return fmt.Errorf("set poster %d: %w", id, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set poster %d: %w", id, ErrNotFound)
	}
	return nil
}

// SetPoster records (or clears, with nil) the poster file of a movie.
// Returns ErrNotFound if the movie does not exist.
func (s *Store) SetPoster(id int64, posterFile *string) error { return setPoster(s.db, id, posterFile) }

// SetPoster records the poster file of a movie within a transaction.
func (t *Tx) SetPoster(id int64, posterFile *string) error { return setPoster(t.tx, id, posterFile) }

// ToggleWatched flips the watched flag in a single statement and returns the new value.
// Concurrent toggles are last-write-wins.
// Returns ErrNotFound if the movie does not exist.
func (s *Store) ToggleWatched(id int64) (bool, error) {
	var watched bool
	err := s.db.QueryRow("UPDATE movies SET watched = NOT watched WHERE id = ? RETURNING watched", id).Scan(&watched)
	if err != nil {
		return false, fmt.Errorf("toggle watched %d: %w", id, mapSQLiteError(err))
	}
	return watched, nil
}

func deleteMovie(q querier, id int64) (*string, error) {
	var posterFile *string
	err := q.QueryRow("DELETE FROM movies WHERE id = ? RETURNING poster_file", id).Scan(&posterFile)
	if err != nil {
		return nil, fmt.Errorf("delete movie %d: %w", id, mapSQLiteError(err))
	}
	return posterFile, nil
}

// DeleteMovie removes a movie and returns the poster file it referenced, if any.
// Returns ErrNotFound if the movie does not exist.
func (s *Store) DeleteMovie(id int64) (*string, error) { return deleteMovie(s.db, id) }

// DeleteMovie removes a movie within a transaction; the row stays until Commit.
func (t *Tx) DeleteMovie(id int64) (*string, error) { return deleteMovie(t.tx, id) }

// Stats returns collection totals. Multi-format copies count once per format.
func (s *Store) Stats() (*Stats, error) {
	st := &Stats{ByFormat: make(map[string]int)}
	if err := s.db.QueryRow("SELECT COUNT(*), COALESCE(SUM(watched), 0) FROM movies").Scan(&st.Total, &st.Watched); err != nil {
		return nil, fmt.Errorf("movie stats: %w", err)
	}

	rows, err := s.db.Query("SELECT format FROM movies")
	if err != nil {
		return nil, fmt.Errorf("format stats: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var format string
		if err := rows.Scan(&format); err != nil {
			return nil, fmt.Errorf("scan format: %w", err)
		}
		for _, f := range SplitFormats(format) {
			st.ByFormat[f]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate formats: %w", err)
	}
	return st, nil
}
