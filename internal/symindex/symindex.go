// Package symindex builds and holds one granule's worth of fuzzy-searchable
// symbol catalog: a finite-state transducer keyed by ascii-lowercased
// symbol name, mapping each distinct key to the contiguous run of matching
// FileSymbol records it owns.
package symindex

import (
	"bytes"
	"fmt"
	"sort"
	"unsafe"

	"github.com/blevesearch/vellum"

	"github.com/fast-ide/symindex/internal/types"
)

// Index is one granule's symbol catalog: a sorted symbol table plus an FST
// that maps ascii-lowercased names to ranges into that table. Immutable
// once built; safe for concurrent readers.
type Index struct {
	symbols  []types.FileSymbol
	fst      *vellum.FST
	fstBytes int
}

// lowerKey returns the ascii-lowercased sort/lookup key for name. Only
// ASCII letters fold; every other byte (including multi-byte UTF-8
// sequences) passes through unchanged, matching the spec's ascii-only
// case-folding contract rather than Unicode's.
func lowerKey(name string) []byte {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return out
}

// cmpFold orders two symbols by their lowercased name, breaking ties by
// the original name so case variants of one name sort in a fixed order.
// Symbols with identical names compare equal; New's sort is not stable,
// so their relative order is not defined.
func cmpFold(a, b types.FileSymbol) int {
	ak, bk := lowerKey(a.Name), lowerKey(b.Name)
	if c := bytes.Compare(ak, bk); c != 0 {
		return c
	}
	if a.Name != b.Name {
		if a.Name < b.Name {
			return -1
		}
		return 1
	}
	return 0
}

// New builds an Index over symbols. Symbols are copied and sorted by
// lowercased name; construction fails only if the FST builder itself
// fails, which should not happen for well-formed input.
func New(symbols []types.FileSymbol) (*Index, error) {
	sorted := make([]types.FileSymbol, len(symbols))
	copy(sorted, symbols)
	sort.Slice(sorted, func(i, j int) bool { return cmpFold(sorted[i], sorted[j]) < 0 })

	var buf bytes.Buffer
	builder, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, err
	}

	batchStart := 0
	for idx := range sorted {
		sameAsNext := idx+1 < len(sorted) && bytes.Equal(lowerKey(sorted[batchStart].Name), lowerKey(sorted[idx+1].Name))
		if sameAsNext {
			continue
		}
		start, end := batchStart, idx+1
		batchStart = end
		key := lowerKey(sorted[start].Name)
		if err := builder.Insert(key, rangeToValue(start, end)); err != nil {
			return nil, err
		}
	}
	if err := builder.Close(); err != nil {
		return nil, err
	}

	fstBytes := buf.Bytes()
	fst, err := vellum.Load(fstBytes)
	if err != nil {
		return nil, err
	}
	return &Index{symbols: sorted, fst: fst, fstBytes: len(fstBytes)}, nil
}

// Len returns the number of indexed symbols.
func (x *Index) Len() int { return len(x.symbols) }

// FST exposes the underlying transducer for internal/query's search
// evaluation; not meant for direct use outside this module.
func (x *Index) FST() *vellum.FST { return x.fst }

// RangeAt returns the symbol slice a matched FST value decodes to.
func (x *Index) RangeAt(value uint64) []types.FileSymbol {
	start, end := valueToRange(value)
	return x.symbols[start:end]
}

// Symbols returns the full, lowercase-name-sorted symbol table. Callers
// must not mutate the returned slice.
func (x *Index) Symbols() []types.FileSymbol { return x.symbols }

// MemorySize estimates the index's resident footprint: the serialized FST
// plus the symbol table. It is a diagnostic figure; the memoizing cache
// above this package does not evict and does not consult it.
func (x *Index) MemorySize() int {
	size := len(x.symbols)*int(unsafe.Sizeof(types.FileSymbol{})) + x.fstBytes
	for _, s := range x.symbols {
		size += len(s.Name) + len(s.ContainerName)
	}
	return size
}

// ForFiles reports whether the index contains any symbol belonging to one
// of the given files. The memoizing cache does not call it: it invalidates
// granules by the on-disk paths each build reported.
func (x *Index) ForFiles(files map[types.HirFileID]struct{}) bool {
	for _, s := range x.symbols {
		if _, ok := files[s.Loc.HirFile]; ok {
			return true
		}
	}
	return false
}

// rangeToValue packs a [start, end) index range into the FST's 64-bit
// value space: start in the high 32 bits, end in the low 32 bits.
func rangeToValue(start, end int) uint64 {
	if start >= 1<<32 || end >= 1<<32 {
		panic(fmt.Sprintf("symindex: range [%d, %d) exceeds the 32-bit offset space", start, end))
	}
	return (uint64(uint32(start)) << 32) | uint64(uint32(end))
}

// valueToRange is rangeToValue's inverse.
func valueToRange(value uint64) (start, end int) {
	return int(uint32(value >> 32)), int(uint32(value))
}
