package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shafin-dev/localhub/backend/internal/models"
)

const memoryCacheSize = 500

type memoryEntry struct {
	forest    []*models.CommentNode
	expiresAt time.Time
}

// MemoryTreeCache is an in-process TreeCache on an LRU with per-entry
// TTL. Used in development and tests when Redis is not configured.
// Entries are deep-copied on both Put and Get so callers can mutate
// (e.g. overlay viewer flags) without corrupting the cached forest.
type MemoryTreeCache struct {
	lruCache *lru.Cache[string, memoryEntry]
	now      func() time.Time
}

// NewMemoryTreeCache creates a new MemoryTreeCache
func NewMemoryTreeCache() *MemoryTreeCache {
	l, err := lru.New[string, memoryEntry](memoryCacheSize)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &MemoryTreeCache{lruCache: l, now: time.Now}
}

// GetForest returns a deep copy of the cached forest, or a miss when
// absent or expired.
func (c *MemoryTreeCache) GetForest(_ context.Context, postID string) ([]*models.CommentNode, bool) {
	entry, ok := c.lruCache.Get(postID)
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.lruCache.Remove(postID)
		return nil, false
	}
	return models.CloneForest(entry.forest), true
}

// PutForest stores a deep copy of the forest with a TTL.
func (c *MemoryTreeCache) PutForest(_ context.Context, postID string, forest []*models.CommentNode, ttl time.Duration) {
	c.lruCache.Add(postID, memoryEntry{
		forest:    models.CloneForest(forest),
		expiresAt: c.now().Add(ttl),
	})
}

// Invalidate removes the cached forest for a post.
func (c *MemoryTreeCache) Invalidate(_ context.Context, postID string) {
	c.lruCache.Remove(postID)
}
