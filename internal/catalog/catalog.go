// Package catalog stores the movie collection: one row per owned physical copy.
package catalog

import (
	"strings"
	"time"
)

// Movie is a single catalogued copy.
type Movie struct {
	ID         int64
	Title      string
	Format     string   // one or more formats joined with ", "
	Year       *int     // nil when unknown
	TMDBID     *int64   // nil for manual entries
	PosterFile *string  // file name inside the poster directory
	Vote       *float64 // TMDB vote average
	AddedAt    time.Time
	Watched    bool
}

// Formats returns the individual formats of the copy.
func (m *Movie) Formats() []string {
	return SplitFormats(m.Format)
}

// HasPoster reports whether a poster file is recorded.
func (m *Movie) HasPoster() bool {
	return m.PosterFile != nil && *m.PosterFile != ""
}

// Stats summarizes the collection.
type Stats struct {
	Total    int
	Watched  int
	ByFormat map[string]int
}

const formatSep = ", "

// JoinFormats normalizes formats into the stored representation.
// Blank entries are dropped; duplicates are removed case-insensitively,
// keeping the first spelling and the original order.
func JoinFormats(formats ...string) string {
	seen := make(map[string]bool, len(formats))
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		for _, part := range strings.Split(f, ",") {
			part = strings.Join(strings.Fields(part), " ")
			if part == "" {
				continue
			}
			key := strings.ToLower(part)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, part)
		}
	}
	return strings.Join(out, formatSep)
}

// SplitFormats is the inverse of JoinFormats.
func SplitFormats(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
