package query

import (
	"testing"

	"github.com/fast-ide/symindex/internal/symindex"
	"github.com/fast-ide/symindex/internal/types"
)

func buildIndex(t *testing.T, names ...string) *symindex.Index {
	t.Helper()
	syms := make([]types.FileSymbol, len(names))
	for i, n := range names {
		kind := types.SymbolFunction
		if i%2 == 0 {
			kind = types.SymbolStruct
		}
		syms[i] = types.FileSymbol{Name: n, Kind: kind}
	}
	idx, err := symindex.New(syms)
	if err != nil {
		t.Fatalf("symindex.New: %v", err)
	}
	return idx
}

func names(syms []types.FileSymbol) []string {
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = s.Name
	}
	return out
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func TestSearchFuzzySubsequence(t *testing.T) {
	idx := buildIndex(t, "WorkspaceSymbols", "Widget", "apple")
	res, err := New("wdgt").Search([]*symindex.Index{idx})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	got := names(res)
	if !contains(got, "Widget") {
		t.Fatalf("expected Widget in %v", got)
	}
	if contains(got, "apple") {
		t.Fatalf("did not expect apple in %v", got)
	}
}

func TestSearchIsCaseInsensitiveByDefault(t *testing.T) {
	idx := buildIndex(t, "Widget")
	res, err := New("widget").Search([]*symindex.Index{idx})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 1 || res[0].Name != "Widget" {
		t.Fatalf("got %v, want [Widget]", names(res))
	}
}

func TestSearchExact(t *testing.T) {
	idx := buildIndex(t, "Widget", "WidgetFactory")
	res, err := New("Widget").Exact().Search([]*symindex.Index{idx})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 1 || res[0].Name != "Widget" {
		t.Fatalf("got %v, want exactly [Widget]", names(res))
	}
}

func TestSearchOnlyTypes(t *testing.T) {
	idx := buildIndex(t, "Widget", "widgetize")
	res, err := New("widget").OnlyTypes().Search([]*symindex.Index{idx})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, s := range res {
		if !s.Kind.IsType() {
			t.Fatalf("OnlyTypes() returned a non-type symbol: %+v", s)
		}
	}
}

func TestSearchLimit(t *testing.T) {
	idx := buildIndex(t, "a1", "a2", "a3", "a4")
	res, err := New("a").Limit(2).Search([]*symindex.Index{idx})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("Limit(2) returned %d results", len(res))
	}
}

func TestSearchAcrossMultipleIndices(t *testing.T) {
	a := buildIndex(t, "Widget")
	b := buildIndex(t, "Widgetron")
	res, err := New("widget").Search([]*symindex.Index{a, b})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("got %d results across two indices, want 2: %v", len(res), names(res))
	}
}

func TestSearchNoMatch(t *testing.T) {
	idx := buildIndex(t, "Widget")
	res, err := New("zzz").Search([]*symindex.Index{idx})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 0 {
		t.Fatalf("got %v, want no results", names(res))
	}
}

// CaseSensitive's refinement is character presence, not an ordered
// substring: "FB" must match "FooBar" even though "FB" never occurs
// contiguously in it.
func TestSearchCaseSensitiveIsCharacterContainmentNotSubstring(t *testing.T) {
	idx := buildIndex(t, "FooBar")
	res, err := New("FB").CaseSensitive().Search([]*symindex.Index{idx})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 1 || res[0].Name != "FooBar" {
		t.Fatalf("got %v, want [FooBar]", names(res))
	}
}

func TestSearchCaseSensitiveRejectsMissingCharacter(t *testing.T) {
	idx := buildIndex(t, "FooBar")
	res, err := New("FZ").CaseSensitive().Search([]*symindex.Index{idx})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 0 {
		t.Fatalf("got %v, want no results", names(res))
	}
}

// Search must merge per-index streams in lexicographic key order, not
// drain one index before moving to the next, so a limit keeps the
// globally-smallest keys regardless of which index holds them.
func TestSearchMergesAcrossIndicesInKeyOrderUnderLimit(t *testing.T) {
	first := buildIndex(t, "Widgetzzz")
	second := buildIndex(t, "Widgetaaa")

	res, err := New("widget").Limit(1).Search([]*symindex.Index{first, second})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 1 || res[0].Name != "Widgetaaa" {
		t.Fatalf("got %v, want the lexicographically smallest key [Widgetaaa], even though it lives in the second index", names(res))
	}
}
