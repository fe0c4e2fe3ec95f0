package catalog

// SortKey selects the ordering of ListMovies.
type SortKey string

const (
	SortTitle   SortKey = "title"
	SortYear    SortKey = "year"
	SortAdded   SortKey = "added"
	SortVote    SortKey = "vote"
	SortWatched SortKey = "watched"
)

var sortColumns = map[SortKey]string{
	SortTitle:   "title COLLATE NOCASE",
	SortYear:    "year",
	SortAdded:   "added_at",
	SortVote:    "vote",
	SortWatched: "watched",
}

// ValidSortKey reports whether k is a known sort key.
func ValidSortKey(k SortKey) bool {
	_, ok := sortColumns[k]
	return ok
}

// MovieFilter specifies criteria for listing movies.
type MovieFilter struct {
	Watched       *bool
	Format        *string // matches one entry of the comma-joined format list
	TMDBID        *int64
	Title         *string // exact title
	TitleContains *string // case-insensitive substring
	Year          *int
	Sort          SortKey // default SortTitle
	Desc          bool
	Limit         int // 0 = no limit
	Offset        int
}
