// Package memo memoizes one symindex.Index per crate, de-duplicating
// concurrent rebuild requests for the same crate and invalidating cached
// granules when their files change on disk. It stands in for the
// semantic database's own incremental recomputation: from this package's
// perspective each crate is a "granule" that is either cached and fresh
// or needs recomputing from scratch via a caller-supplied BuildFunc.
package memo

import (
	"context"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/fast-ide/symindex/internal/symindex"
	"github.com/fast-ide/symindex/internal/types"
)

// BuildFunc computes the symbol index for one crate from scratch, along
// with the set of files it consulted — the latter lets the cache know
// which fsnotify events should invalidate this granule.
type BuildFunc func(ctx context.Context, crate types.CrateID) (*symindex.Index, map[string]struct{}, error)

type granule struct {
	index *symindex.Index
	files map[string]struct{}
}

// Cache holds one granule per crate and rebuilds them on demand.
type Cache struct {
	build BuildFunc

	mu      sync.RWMutex
	entries map[types.CrateID]*granule

	group singleflight.Group

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
	// watched maps a hashed, cleaned file path to every crate whose last
	// build consulted that path, so a single fsnotify event can
	// invalidate every affected granule without a linear scan.
	watched map[uint64][]types.CrateID
}

// New creates a Cache that calls build to materialize a granule on a
// cache miss. The returned Cache owns an fsnotify watcher; call Close
// when done with it.
func New(build BuildFunc) (*Cache, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("memo: creating file watcher: %w", err)
	}
	c := &Cache{
		build:   build,
		entries: make(map[types.CrateID]*granule),
		watcher: watcher,
		watched: make(map[uint64][]types.CrateID),
	}
	go c.watchLoop()
	return c, nil
}

// Get returns the cached index for crate, building it if absent.
// Concurrent Get calls for the same crate share a single in-flight build
// via singleflight, so a burst of queries against a cold crate triggers
// exactly one collection pass.
func (c *Cache) Get(ctx context.Context, crate types.CrateID) (*symindex.Index, error) {
	if g := c.lookup(crate); g != nil {
		return g.index, nil
	}

	key := fmt.Sprintf("crate:%d", crate)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		idx, files, err := c.build(ctx, crate)
		if err != nil {
			return nil, err
		}
		c.store(crate, idx, files)
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*symindex.Index), nil
}

// GetAll resolves every crate concurrently, stopping at the first error
// (errgroup's default behavior) and cancelling the others' contexts.
func (c *Cache) GetAll(ctx context.Context, crates []types.CrateID) ([]*symindex.Index, error) {
	out := make([]*symindex.Index, len(crates))
	g, gctx := errgroup.WithContext(ctx)
	for i, crate := range crates {
		i, crate := i, crate
		g.Go(func() error {
			idx, err := c.Get(gctx, crate)
			if err != nil {
				return err
			}
			out[i] = idx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Invalidate drops crate's cached granule and stops watching the files
// it last depended on. The next Get rebuilds it.
func (c *Cache) Invalidate(crate types.CrateID) {
	c.mu.Lock()
	g, ok := c.entries[crate]
	delete(c.entries, crate)
	c.mu.Unlock()
	if !ok {
		return
	}

	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	for path := range g.files {
		h := pathHash(path)
		c.watched[h] = removeCrate(c.watched[h], crate)
		if len(c.watched[h]) == 0 {
			delete(c.watched, h)
			_ = c.watcher.Remove(path)
		}
	}
}

// Close shuts down the underlying file watcher.
func (c *Cache) Close() error {
	return c.watcher.Close()
}

func (c *Cache) lookup(crate types.CrateID) *granule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[crate]
}

func (c *Cache) store(crate types.CrateID, idx *symindex.Index, files map[string]struct{}) {
	g := &granule{index: idx, files: files}

	c.mu.Lock()
	c.entries[crate] = g
	c.mu.Unlock()

	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	for path := range files {
		if err := c.watcher.Add(path); err != nil {
			continue
		}
		h := pathHash(path)
		c.watched[h] = appendCrateOnce(c.watched[h], crate)
	}
}

func (c *Cache) watchLoop() {
	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				c.invalidatePath(event.Name)
			}
		case _, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (c *Cache) invalidatePath(path string) {
	c.watchMu.Lock()
	crates := append([]types.CrateID(nil), c.watched[pathHash(path)]...)
	c.watchMu.Unlock()
	for _, crate := range crates {
		c.Invalidate(crate)
	}
}

func pathHash(path string) uint64 {
	return xxhash.Sum64String(path)
}

func removeCrate(list []types.CrateID, crate types.CrateID) []types.CrateID {
	out := list[:0]
	for _, c := range list {
		if c != crate {
			out = append(out, c)
		}
	}
	return out
}

func appendCrateOnce(list []types.CrateID, crate types.CrateID) []types.CrateID {
	for _, c := range list {
		if c == crate {
			return list
		}
	}
	return append(list, crate)
}
