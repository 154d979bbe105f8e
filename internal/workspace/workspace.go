// Package workspace is the facade every caller above the index actually
// talks to: given a Database, it enumerates a crate's modules, builds
// (and memoizes) one symbol granule per crate, and answers fuzzy lookups
// across the whole workspace or a single crate.
package workspace

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/fast-ide/symindex/internal/collector"
	"github.com/fast-ide/symindex/internal/langs/suggest"
	"github.com/fast-ide/symindex/internal/langs/syntax"
	"github.com/fast-ide/symindex/internal/memo"
	"github.com/fast-ide/symindex/internal/query"
	"github.com/fast-ide/symindex/internal/semdb"
	"github.com/fast-ide/symindex/internal/symindex"
	"github.com/fast-ide/symindex/internal/types"
)

// Host is the long-lived object a CLI, an MCP server, or an editor
// integration holds onto: a Database plus the memoizing cache of crate
// granules built from it.
type Host struct {
	db    semdb.Database
	cache *memo.Cache

	// libMu/libCache/libGroup memoize library-root granules. Unlike
	// local crates these are never watched for changes — a library
	// root is cached once, for the life of the Host, and only dropped
	// by an explicit InvalidateLibrary call.
	libMu    sync.RWMutex
	libCache map[types.SourceRootID]*symindex.Index
	libGroup singleflight.Group
}

// NewHost builds a Host over db. The returned Host owns a memo.Cache;
// call Close when done with it.
func NewHost(db semdb.Database) (*Host, error) {
	h := &Host{db: db, libCache: make(map[types.SourceRootID]*symindex.Index)}
	cache, err := memo.New(h.buildCrateIndex)
	if err != nil {
		return nil, err
	}
	h.cache = cache
	return h, nil
}

// Close releases the underlying file watcher.
func (h *Host) Close() error { return h.cache.Close() }

// ModuleIDsForCrate enumerates every module crate's def map declares.
func (h *Host) ModuleIDsForCrate(crate types.CrateID) ([]types.ModuleID, error) {
	defMap, err := h.db.CrateDefMap(crate)
	if err != nil {
		return nil, err
	}
	locals := defMap.Modules()
	out := make([]types.ModuleID, len(locals))
	for i, local := range locals {
		out[i] = defMap.ModuleID(local)
	}
	return out, nil
}

// CrateIndex returns (building and caching if necessary) the symbol
// index covering every module of crate.
func (h *Host) CrateIndex(ctx context.Context, crate types.CrateID) (*symindex.Index, error) {
	return h.cache.Get(ctx, crate)
}

// buildCrateIndex is the memo.BuildFunc: collect every module of crate
// and union the results into one granule, tracking every source file
// touched so the cache can watch them for changes.
func (h *Host) buildCrateIndex(ctx context.Context, crate types.CrateID) (*symindex.Index, map[string]struct{}, error) {
	moduleIDs, err := h.ModuleIDsForCrate(crate)
	if err != nil {
		return nil, nil, err
	}

	var all []types.FileSymbol
	seenFiles := map[types.HirFileID]struct{}{}
	for _, mid := range moduleIDs {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		syms, err := collector.Collect(h.db, mid.Crate, mid.Local)
		if err != nil {
			return nil, nil, err
		}
		for _, s := range syms {
			all = append(all, s)
			seenFiles[s.Loc.HirFile] = struct{}{}
		}
	}

	idx, err := symindex.New(all)
	if err != nil {
		return nil, nil, err
	}

	paths := map[string]struct{}{}
	root, err := h.db.CrateRoot(crate)
	if err == nil {
		if files, err := h.db.SourceRoot(root); err == nil {
			for _, f := range files {
				if path, ok := h.db.FilePath(f); ok {
					paths[path] = struct{}{}
				}
			}
		}
	}
	return idx, paths, nil
}

// LibraryIndex returns the syntax-only symbol index for the source tree
// rooted at dir, tagging it with root so later calls for the same root
// hit the cache instead of re-walking and re-parsing the tree. Unlike
// CrateIndex this index is never invalidated by file changes: library
// roots are expected to be immutable for the life of the Host.
func (h *Host) LibraryIndex(root types.SourceRootID, dir string) (*symindex.Index, error) {
	h.libMu.RLock()
	if idx, ok := h.libCache[root]; ok {
		h.libMu.RUnlock()
		return idx, nil
	}
	h.libMu.RUnlock()

	v, err, _ := h.libGroup.Do(libraryKey(root), func() (interface{}, error) {
		symbols, _, err := syntax.Collect(dir)
		if err != nil {
			return nil, err
		}
		idx, err := symindex.New(symbols)
		if err != nil {
			return nil, err
		}
		h.libMu.Lock()
		h.libCache[root] = idx
		h.libMu.Unlock()
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*symindex.Index), nil
}

// InvalidateLibrary drops a cached library granule, forcing the next
// LibraryIndex call for root to re-walk and re-parse its tree.
func (h *Host) InvalidateLibrary(root types.SourceRootID) {
	h.libMu.Lock()
	delete(h.libCache, root)
	h.libMu.Unlock()
}

func libraryKey(root types.SourceRootID) string {
	return fmt.Sprintf("lib:%d", root)
}

// CrateSymbols runs q against a single crate's granule.
func (h *Host) CrateSymbols(ctx context.Context, crate types.CrateID, q query.Query) ([]types.FileSymbol, error) {
	idx, err := h.CrateIndex(ctx, crate)
	if err != nil {
		return nil, err
	}
	return q.Search([]*symindex.Index{idx})
}

// WorldSymbols runs q against every given crate's granule, then — only
// if q.WantsLibs() — against every given library root's syntax-only
// granule too. libraries maps a library root id to the directory
// LibraryIndex should (lazily, and only once) walk for it.
func (h *Host) WorldSymbols(ctx context.Context, crates []types.CrateID, libraries map[types.SourceRootID]string, q query.Query) ([]types.FileSymbol, error) {
	indices, err := h.cache.GetAll(ctx, crates)
	if err != nil {
		return nil, err
	}

	if q.WantsLibs() {
		for root, dir := range libraries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			idx, err := h.LibraryIndex(root, dir)
			if err != nil {
				return nil, err
			}
			indices = append(indices, idx)
		}
	}

	return q.Search(indices)
}

// IndexResolve returns the first of results, used for go-to-symbol
// style navigation where the caller wants exactly one declaration.
func IndexResolve(results []types.FileSymbol) (types.FileSymbol, bool) {
	if len(results) == 0 {
		return types.FileSymbol{}, false
	}
	return results[0], true
}

// ResolveResult is IndexResolve's answer, enriched with "did you mean"
// suggestions when nothing matched.
type ResolveResult struct {
	Symbol      types.FileSymbol
	Found       bool
	Suggestions []suggest.Match
}

// ResolveInCrate runs name as an exact index_resolve against crate. On
// a miss it consults suggest against every name the crate's granule
// actually holds — this never changes what search or resolve consider
// a match, only what gets offered back on a miss.
func (h *Host) ResolveInCrate(ctx context.Context, crate types.CrateID, name string) (ResolveResult, error) {
	idx, err := h.CrateIndex(ctx, crate)
	if err != nil {
		return ResolveResult{}, err
	}

	q := query.New(name).Exact()
	results, err := q.Search([]*symindex.Index{idx})
	if err != nil {
		return ResolveResult{}, err
	}
	if sym, ok := IndexResolve(results); ok {
		return ResolveResult{Symbol: sym, Found: true}, nil
	}

	matcher := suggest.New(suggest.DefaultThreshold)
	return ResolveResult{Suggestions: matcher.SuggestFromSymbols(name, idx.Symbols())}, nil
}
