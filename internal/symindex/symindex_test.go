package symindex

import (
	"testing"

	"github.com/fast-ide/symindex/internal/types"
)

func sym(name string, kind types.SymbolKind) types.FileSymbol {
	return types.FileSymbol{Name: name, Kind: kind}
}

func TestNewSortsAndGroupsByFoldedName(t *testing.T) {
	idx, err := New([]types.FileSymbol{
		sym("Widget", types.SymbolStruct),
		sym("widget", types.SymbolFunction),
		sym("Apple", types.SymbolConst),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if idx.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", idx.Len())
	}

	got := idx.Symbols()
	if got[0].Name != "Apple" {
		t.Fatalf("Symbols()[0].Name = %q, want Apple", got[0].Name)
	}
	// "Widget" and "widget" fold to the same key and sort adjacently,
	// ordered by their original (case-sensitive) spelling as a tiebreak.
	if got[1].Name != "Widget" || got[2].Name != "widget" {
		t.Fatalf("unexpected fold-grouped order: %v, %v", got[1].Name, got[2].Name)
	}
}

func TestNewGroupsCaseCollidingNamesIntoOneBatch(t *testing.T) {
	idx, err := New([]types.FileSymbol{
		sym("Foo", types.SymbolStruct),
		sym("foo", types.SymbolFunction),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	value, exists, err := idx.fst.Get([]byte("foo"))
	if err != nil {
		t.Fatalf("fst.Get: %v", err)
	}
	if !exists {
		t.Fatalf("fst.Get(%q) found nothing", "foo")
	}

	matches := idx.RangeAt(value)
	if len(matches) != 2 {
		t.Fatalf("RangeAt(%q) = %d symbols, want 2 (both Foo and foo)", "foo", len(matches))
	}
}

func TestMemorySizeGrowsWithSymbolCount(t *testing.T) {
	empty, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil): %v", err)
	}
	full, err := New([]types.FileSymbol{sym("a", types.SymbolConst), sym("b", types.SymbolConst)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if full.MemorySize() <= empty.MemorySize() {
		t.Fatalf("MemorySize() did not grow: empty=%d full=%d", empty.MemorySize(), full.MemorySize())
	}
}

func TestForFiles(t *testing.T) {
	idx, err := New([]types.FileSymbol{
		{Name: "a", Loc: types.DeclarationLocation{HirFile: 1}},
		{Name: "b", Loc: types.DeclarationLocation{HirFile: 2}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !idx.ForFiles(map[types.HirFileID]struct{}{2: {}}) {
		t.Fatalf("ForFiles(2) = false, want true")
	}
	if idx.ForFiles(map[types.HirFileID]struct{}{99: {}}) {
		t.Fatalf("ForFiles(99) = true, want false")
	}
}

func TestRangeAtRoundTrips(t *testing.T) {
	start, end := 3, 17
	v := rangeToValue(start, end)
	gotStart, gotEnd := valueToRange(v)
	if gotStart != start || gotEnd != end {
		t.Fatalf("valueToRange(rangeToValue(%d, %d)) = (%d, %d)", start, end, gotStart, gotEnd)
	}
}
