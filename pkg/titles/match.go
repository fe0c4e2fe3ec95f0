package titles

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// MatchThreshold is the minimum Score for a fuzzy match.
const MatchThreshold = 0.85

// Score rates how well title answers query. A cleaned substring hit scores 1;
// otherwise the best Jaro-Winkler similarity against the whole title or any
// same-length run of its words is used, so "runner" finds "Blade Runner".
func Score(query, title string) float64 {
	q, t := Clean(query), Clean(title)
	if q == "" || t == "" {
		return 0
	}
	if strings.Contains(t, q) {
		return 1
	}

	best := similarity(q, t)
	qWords := len(strings.Fields(q))
	tWords := strings.Fields(t)
	for i := 0; i+qWords <= len(tWords); i++ {
		if s := similarity(q, strings.Join(tWords[i:i+qWords], " ")); s > best {
			best = s
		}
	}
	return best
}

func similarity(a, b string) float64 {
	return float64(edlib.JaroWinklerSimilarity(a, b))
}
