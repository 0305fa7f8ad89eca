// Package match scores free-text names against candidate titles.
package match

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Threshold is the minimum score a candidate needs to be considered a match.
const Threshold = 0.3

// Score rates how well query names candidate, from 0 to 1.
//
//	1.0  equal, ignoring case
//	0.9  one contains the other
//	0.5 + 0.4*matched/len(queryWords) when any query word matches
//	0.3 + 0.15*typos/len(queryWords) when no word matches but some are typos
//	0    otherwise
//
// A word matches when either word contains the other. A typo is a word of at
// least four letters one edit away from a candidate word; typos only count
// when nothing matched outright, so they rank below every real overlap.
func Score(query, candidate string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	c := strings.ToLower(strings.TrimSpace(candidate))
	if q == "" || c == "" {
		return 0
	}
	if q == c {
		return 1.0
	}
	if strings.Contains(c, q) || strings.Contains(q, c) {
		return 0.9
	}
	qw, cw := words(q), words(c)
	if len(qw) == 0 {
		return 0
	}
	matched, typos := 0, 0
	for _, w := range qw {
		switch {
		case anyWord(cw, w, wordMatch):
			matched++
		case anyWord(cw, w, typo):
			typos++
		}
	}
	n := float64(len(qw))
	switch {
	case matched > 0:
		return 0.5 + 0.4*float64(matched)/n
	case typos > 0:
		return 0.3 + 0.15*float64(typos)/n
	}
	return 0
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func anyWord(list []string, w string, eq func(a, b string) bool) bool {
	for _, x := range list {
		if eq(w, x) {
			return true
		}
	}
	return false
}

func wordMatch(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func typo(a, b string) bool {
	if utf8.RuneCountInString(a) < 4 || utf8.RuneCountInString(b) < 4 {
		return false
	}
	return levenshtein.ComputeDistance(a, b) <= 1
}

// Scored pairs a candidate with its score.
type Scored[T any] struct {
	Item  T
	Score float64
}

// Rank returns the items scoring above Threshold, best first. Items with
// equal scores keep their input order.
func Rank[T any](query string, items []T, name func(T) string) []Scored[T] {
	var out []Scored[T]
	for _, it := range items {
		if s := Score(query, name(it)); s > Threshold {
			out = append(out, Scored[T]{Item: it, Score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Best returns the highest ranked item.
func Best[T any](query string, items []T, name func(T) string) (T, float64, bool) {
	ranked := Rank(query, items, name)
	if len(ranked) == 0 {
		var zero T
		return zero, 0, false
	}
	return ranked[0].Item, ranked[0].Score, true
}

// Nearest returns up to n items ordered by score regardless of Threshold,
// for suggesting alternatives when nothing matched.
func Nearest[T any](query string, items []T, name func(T) string, n int) []T {
	scored := make([]Scored[T], len(items))
	for i, it := range items {
		scored[i] = Scored[T]{Item: it, Score: Score(query, name(it))}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	out := make([]T, len(scored))
	for i, s := range scored {
		out[i] = s.Item
	}
	return out
}
