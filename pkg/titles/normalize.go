// Package titles normalizes and compares movie titles for searching a collection.
package titles

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// trailingYear matches a release year typed after the title: "Alien (1979)".
var trailingYear = regexp.MustCompile(`\s*[(\[]\s*(18|19|20)\d{2}\s*[)\]]\s*$`)

// Only II-IX and never as the first word: "I, Robot", "American History X"
// and "VII Days" keep their letters.
var romanNumerals = map[string]string{
	"ii": "2", "iii": "3", "iv": "4", "v": "5",
	"vi": "6", "vii": "7", "viii": "8", "ix": "9",
}

var articles = map[string]bool{"the": true, "a": true, "an": true}

// connectors are dropped entirely so "Fast & Furious", "Fast and Furious"
// and "fast furious" produce the same words for Score's windows.
var connectors = map[string]bool{"and": true}

// editionSuffixes are copied off the box along with the title. They are
// removed from the end of a title until none applies.
var editionSuffixes = [][]string{
	{"criterion", "collection"},
	{"directors", "cut"},
	{"extended", "cut"},
	{"theatrical", "cut"},
	{"anniversary", "edition"},
	{"collectors", "edition"},
	{"extended", "edition"},
	{"limited", "edition"},
	{"special", "edition"},
	{"ultimate", "edition"},
	{"blu", "ray"},
	{"4k", "uhd"},
	{"bluray"},
	{"4k"},
	{"uhd"},
	{"hd"},
	{"dvd"},
	{"vhs"},
	{"remastered"},
	{"unrated"},
	{"widescreen"},
	{"steelbook"},
}

// Clean normalizes a title for matching. It lowercases, removes accents and
// punctuation, drops a trailing year, edition and format words, connectors
// and the leading article of each colon-separated part, and converts Roman
// numerals. The result is space-separated words, or "" when nothing is left.
func Clean(title string) string {
	s := trailingYear.ReplaceAllString(title, "")
	s = removeAccents(strings.ToLower(s))
	s = strings.NewReplacer("'", "", "’", "").Replace(s)

	var words []string
	for _, part := range strings.Split(s, ":") {
		w := splitWords(part)
		if len(w) > 1 && articles[w[0]] {
			w = w[1:]
		}
		words = append(words, w...)
	}

	words = slices.DeleteFunc(words, func(w string) bool { return connectors[w] })
	words = trimEditionSuffixes(words)
	for i := 1; i < len(words); i++ {
		if arabic, ok := romanNumerals[words[i]]; ok {
			words[i] = arabic
		}
	}
	return strings.Join(words, " ")
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// trimEditionSuffixes strips edition and format words from the end of words,
// always keeping at least one word.
func trimEditionSuffixes(words []string) []string {
	for {
		trimmed := false
		for _, suffix := range editionSuffixes {
			n := len(suffix)
			if len(words) > n && slices.Equal(words[len(words)-n:], suffix) {
				words = words[:len(words)-n]
				trimmed = true
				break
			}
		}
		if !trimmed {
			return words
		}
	}
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}
