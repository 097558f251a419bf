package aggregate

import (
	"context"
	"sync"

	"github.com/techcarrot/defectdash/internal/model"
)

// Cache owns the current snapshot per project filter. Handlers read
// through it; the scheduler invalidates it after every extraction cycle
// so the next read re-loads from disk. There is no TTL; staleness is
// bounded by the refresh interval.
type Cache struct {
	loader *Loader

	mu        sync.RWMutex
	snapshots map[string]*model.Snapshot
}

func NewCache(loader *Loader) *Cache {
	return &Cache{
		loader:    loader,
		snapshots: make(map[string]*model.Snapshot),
	}
}

// Get returns the cached snapshot for the filter, loading it on first
// use after an invalidation.
func (c *Cache) Get(ctx context.Context, projectFilter string) *model.Snapshot {
	c.mu.RLock()
	snapshot, ok := c.snapshots[projectFilter]
	c.mu.RUnlock()
	if ok {
		return snapshot
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if snapshot, ok := c.snapshots[projectFilter]; ok {
		return snapshot
	}
	snapshot = c.loader.Load(ctx, projectFilter)
	c.snapshots[projectFilter] = snapshot
	return snapshot
}

// Invalidate drops every cached snapshot.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots = make(map[string]*model.Snapshot)
}

// Projects exposes the loader's project names for the UI selector.
func (c *Cache) Projects() []string {
	return c.loader.Projects()
}
