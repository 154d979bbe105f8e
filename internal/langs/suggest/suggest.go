// Package suggest answers "did you mean" on an empty index_resolve:
// given the name that matched nothing and every name a symindex.Index
// actually holds, it ranks the closest ones by Jaro-Winkler similarity.
// It is never consulted by a fuzzy search itself — only by the resolve
// path, once a search has already come back empty.
package suggest

import (
	"sort"

	edlib "github.com/hbollon/go-edlib"

	"github.com/fast-ide/symindex/internal/types"
)

// DefaultThreshold is the minimum similarity score a candidate needs to
// surface as a suggestion.
const DefaultThreshold = 0.80

// Match is one suggested name, ranked by Score descending.
type Match struct {
	Name  string
	Score float64
}

// Matcher ranks candidate names against a query name by Jaro-Winkler
// similarity, the same algorithm the teacher's fuzzy matcher defaults
// to for typo-tolerant lookups.
type Matcher struct {
	threshold float64
}

// New returns a Matcher using threshold as its minimum similarity
// score. A threshold outside [0,1] falls back to DefaultThreshold.
func New(threshold float64) Matcher {
	if threshold < 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return Matcher{threshold: threshold}
}

// Similarity returns the Jaro-Winkler similarity of a and b, in [0,1].
// An edlib failure (only possible on pathological input) scores 0.
func (m Matcher) Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	score, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	if err != nil {
		return 0.0
	}
	return float64(score)
}

// Suggest ranks every name in candidates against query, keeping only
// those scoring at least the Matcher's threshold, highest first. Ties
// break lexicographically so results are deterministic.
func (m Matcher) Suggest(query string, candidates []string) []Match {
	var out []Match
	for _, c := range candidates {
		if score := m.Similarity(query, c); score >= m.threshold {
			out = append(out, Match{Name: c, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SuggestFromSymbols is Suggest over an index's own symbol names,
// de-duplicating repeated names (overloaded functions, multiple impl
// blocks of the same type, ...) before ranking.
func (m Matcher) SuggestFromSymbols(query string, symbols []types.FileSymbol) []Match {
	seen := make(map[string]struct{}, len(symbols))
	names := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := seen[s.Name]; ok {
			continue
		}
		seen[s.Name] = struct{}{}
		names = append(names, s.Name)
	}
	return m.Suggest(query, names)
}
