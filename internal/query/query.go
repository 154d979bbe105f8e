// Package query implements fuzzy subsequence search over one or more
// symindex.Index values: build a Query, tune it with its builder methods,
// then call Search against the granules to scan.
package query

import (
	"bytes"
	"errors"
	"math"
	"strings"

	"github.com/blevesearch/vellum"

	"github.com/fast-ide/symindex/internal/symindex"
	"github.com/fast-ide/symindex/internal/types"
)

const defaultLimit = math.MaxInt

// Query describes one fuzzy symbol-name lookup.
type Query struct {
	raw           string
	lowered       []byte
	onlyTypes     bool
	libs          bool
	exact         bool
	caseSensitive bool
	limit         int
}

// New starts a query for name, matched as a case-folded subsequence
// unless tightened by the builder methods below.
func New(name string) Query {
	return Query{
		raw:     name,
		lowered: asciiLower(name),
		limit:   defaultLimit,
	}
}

// asciiLower folds only ASCII letters, matching the index's own
// ascii-only case-folding contract rather than Unicode's.
func asciiLower(s string) []byte {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return out
}

// OnlyTypes restricts results to type-introducing declarations (struct,
// enum, union, trait, type alias).
func (q Query) OnlyTypes() Query { q.onlyTypes = true; return q }

// Libs allows this query to be run against library granules, not just
// workspace ones. The caller decides which granules to pass to Search;
// this flag only documents intent and is consulted by internal/workspace
// when selecting which indices to scan.
func (q Query) Libs() Query { q.libs = true; return q }

// Exact requires the matched symbol's name to equal the query literally,
// on top of passing the fuzzy subsequence prefilter.
func (q Query) Exact() Query { q.exact = true; return q }

// CaseSensitive requires every character of the query, in its original
// case, to occur somewhere in the matched symbol's name (in any order),
// on top of the (always case-folded) subsequence prefilter.
func (q Query) CaseSensitive() Query { q.caseSensitive = true; return q }

// Limit caps the number of results Search returns. n <= 0 leaves the
// default in place, which is no limit.
func (q Query) Limit(n int) Query {
	if n > 0 {
		q.limit = n
	}
	return q
}

// WantsLibs reports whether this query was built with Libs().
func (q Query) WantsLibs() bool { return q.libs }

// cursor tracks one index's live FST iterator alongside the key/value it
// is currently parked on, so Search can compare cursors against each
// other without re-reading the iterator.
type cursor struct {
	idx *symindex.Index
	it  vellum.Iterator
	key []byte
	val uint64
}

// Search merges every index's matches into a single stream ordered by
// lowercased name, then by the index's position in indices, then by
// table position within that index's batch, and returns up to q.limit
// symbols from the front of that stream. The merge advances whichever
// index's iterator currently holds the lexicographically smallest key,
// rather than draining one index before moving to the next, so a limit
// truncates the same way a single combined index would.
func (q Query) Search(indices []*symindex.Index) ([]types.FileSymbol, error) {
	aut := newSubsequence(q.lowered)

	cursors := make([]*cursor, 0, len(indices))
	for _, idx := range indices {
		if idx == nil {
			continue
		}
		it, err := idx.FST().Search(aut, nil, nil)
		if err != nil {
			if errors.Is(err, vellum.ErrIteratorDone) {
				continue
			}
			return nil, err
		}
		key, val := it.Current()
		cursors = append(cursors, &cursor{idx: idx, it: it, key: key, val: val})
	}

	var out []types.FileSymbol
	for len(cursors) > 0 {
		best := 0
		for i := 1; i < len(cursors); i++ {
			if bytes.Compare(cursors[i].key, cursors[best].key) < 0 {
				best = i
			}
		}
		c := cursors[best]
		for _, sym := range c.idx.RangeAt(c.val) {
			if !q.accepts(sym) {
				continue
			}
			out = append(out, sym)
			if len(out) >= q.limit {
				return out, nil
			}
		}

		if err := c.it.Next(); err != nil {
			if !errors.Is(err, vellum.ErrIteratorDone) {
				return out, err
			}
			cursors = append(cursors[:best], cursors[best+1:]...)
			continue
		}
		c.key, c.val = c.it.Current()
	}
	return out, nil
}

func (q Query) accepts(sym types.FileSymbol) bool {
	if q.onlyTypes && !sym.Kind.IsType() {
		return false
	}
	if q.exact && sym.Name != q.raw {
		return false
	}
	if q.caseSensitive && !containsEveryByte(sym.Name, q.raw) {
		return false
	}
	return true
}

// containsEveryByte reports whether every byte of needle occurs
// somewhere in haystack, in any order. This is the case_sensitive
// refinement's actual contract: character presence, not an ordered
// substring match.
func containsEveryByte(haystack, needle string) bool {
	for i := 0; i < len(needle); i++ {
		if strings.IndexByte(haystack, needle[i]) < 0 {
			return false
		}
	}
	return true
}
