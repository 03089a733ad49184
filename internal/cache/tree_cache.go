// Package cache provides the read cache for enriched comment forests.
//
// The cache stores the tree builder's exact nested return value, keyed
// by post id. No flattening, re-keying or field dropping happens
// between builder output and cache storage: a cached read must be
// structurally identical to a cold rebuild. Viewer-specific reaction
// flags are overlaid after retrieval and are never written here.
//
// Cache failures are never fatal. A broken or unreachable backend
// degrades every Get to a miss, so reads fall back to rebuilding from
// the source of truth.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shafin-dev/localhub/backend/internal/models"
	"go.uber.org/zap"
)

// TreeCache caches enriched comment forests per post with a TTL.
type TreeCache interface {
	GetForest(ctx context.Context, postID string) ([]*models.CommentNode, bool)
	PutForest(ctx context.Context, postID string, forest []*models.CommentNode, ttl time.Duration)
	Invalidate(ctx context.Context, postID string)
}

const forestKeyPrefix = "comments:forest:"

// RedisTreeCache implements TreeCache on Redis with JSON values.
type RedisTreeCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisTreeCache creates a new RedisTreeCache
func NewRedisTreeCache(client *redis.Client, logger *zap.Logger) *RedisTreeCache {
	return &RedisTreeCache{client: client, logger: logger}
}

// GetForest returns the cached forest for a post, or a miss.
func (c *RedisTreeCache) GetForest(ctx context.Context, postID string) ([]*models.CommentNode, bool) {
	data, err := c.client.Get(ctx, forestKeyPrefix+postID).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("comment forest cache read failed, treating as miss",
				zap.String("post_id", postID), zap.Error(err))
		}
		return nil, false
	}

	var forest []*models.CommentNode
	if err := json.Unmarshal(data, &forest); err != nil {
		c.logger.Warn("comment forest cache entry corrupt, treating as miss",
			zap.String("post_id", postID), zap.Error(err))
		return nil, false
	}
	return forest, true
}

// PutForest stores the forest exactly as built, with a TTL.
func (c *RedisTreeCache) PutForest(ctx context.Context, postID string, forest []*models.CommentNode, ttl time.Duration) {
	data, err := json.Marshal(forest)
	if err != nil {
		c.logger.Error("failed to marshal comment forest for cache",
			zap.String("post_id", postID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, forestKeyPrefix+postID, data, ttl).Err(); err != nil {
		c.logger.Warn("comment forest cache write failed",
			zap.String("post_id", postID), zap.Error(err))
	}
}

// Invalidate removes the cached forest for a post.
func (c *RedisTreeCache) Invalidate(ctx context.Context, postID string) {
	if err := c.client.Del(ctx, forestKeyPrefix+postID).Err(); err != nil {
		c.logger.Warn("comment forest cache invalidation failed",
			zap.String("post_id", postID), zap.Error(err))
	}
}
