package query

import "github.com/blevesearch/vellum"

// subsequence is a vellum.Automaton that accepts any key containing the
// needle's bytes in order, not necessarily contiguous — the notion of
// match the fuzzy search tests in query_test.go check: "widget" matches
// a key containing w, then i, then d, then g,
// then e, then t somewhere later. States are the count of needle bytes
// matched so far; len(needle) is the single accepting state and, once
// reached, every further byte keeps accepting (there is nothing left to
// match), so WillAlwaysMatch fires there.
type subsequence struct {
	needle []byte
}

// newSubsequence builds the automaton for needle, which must already be
// folded to the case the index's keys were folded to.
func newSubsequence(needle []byte) *subsequence {
	return &subsequence{needle: needle}
}

func (s *subsequence) Start() int { return 0 }

func (s *subsequence) IsMatch(state int) bool { return state >= len(s.needle) }

func (s *subsequence) CanMatch(state int) bool { return state <= len(s.needle) }

func (s *subsequence) WillAlwaysMatch(state int) bool { return state >= len(s.needle) }

func (s *subsequence) Accept(state int, b byte) int {
	if state >= len(s.needle) {
		return state
	}
	if s.needle[state] == b {
		return state + 1
	}
	return state
}

var _ vellum.Automaton = (*subsequence)(nil)
