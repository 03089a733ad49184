package cache

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shafin-dev/localhub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleForest() []*models.CommentNode {
	root := &models.CommentNode{
		Comment:  models.Comment{ID: primitive.NewObjectID(), Content: "top", Depth: 1},
		CanReply: true,
		Replies: []*models.CommentNode{
			{
				Comment: models.Comment{ID: primitive.NewObjectID(), Content: "reply", Depth: 2},
				Replies: []*models.CommentNode{
					{
						Comment: models.Comment{ID: primitive.NewObjectID(), Content: "nested", Depth: 3},
						Replies: []*models.CommentNode{},
					},
				},
			},
		},
	}
	return []*models.CommentNode{root}
}

func TestMemoryCacheRoundTripKeepsStructure(t *testing.T) {
	c := NewMemoryTreeCache()
	ctx := context.Background()
	forest := sampleForest()

	c.PutForest(ctx, "post-1", forest, time.Minute)

	got, ok := c.GetForest(ctx, "post-1")
	require.True(t, ok)
	assert.Equal(t, models.CountForestNodes(forest), models.CountForestNodes(got))
	require.Len(t, got, 1)
	require.Len(t, got[0].Replies, 1)
	require.Len(t, got[0].Replies[0].Replies, 1, "nested replies must survive the cache intact")
	assert.Equal(t, forest[0].Replies[0].Replies[0].ID, got[0].Replies[0].Replies[0].ID)
}

func TestMemoryCacheIsolatesCallersFromEachOther(t *testing.T) {
	c := NewMemoryTreeCache()
	ctx := context.Background()
	forest := sampleForest()

	c.PutForest(ctx, "post-1", forest, time.Minute)

	// mutating the original after Put must not leak into the cache
	forest[0].Content = "mutated"
	forest[0].Replies = nil

	got, ok := c.GetForest(ctx, "post-1")
	require.True(t, ok)
	assert.Equal(t, "top", got[0].Content)
	require.Len(t, got[0].Replies, 1)

	// mutating a retrieved copy must not corrupt later reads
	got[0].Viewer = &models.ViewerReaction{Liked: true}
	got[0].Replies = nil

	again, ok := c.GetForest(ctx, "post-1")
	require.True(t, ok)
	assert.Nil(t, again[0].Viewer)
	assert.Len(t, again[0].Replies, 1)
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	c := NewMemoryTreeCache()
	ctx := context.Background()

	current := time.Now()
	c.now = func() time.Time { return current }

	c.PutForest(ctx, "post-1", sampleForest(), 30*time.Second)

	_, ok := c.GetForest(ctx, "post-1")
	assert.True(t, ok)

	current = current.Add(31 * time.Second)
	_, ok = c.GetForest(ctx, "post-1")
	assert.False(t, ok, "expired entries read as misses")
}

func TestMemoryCacheInvalidate(t *testing.T) {
	c := NewMemoryTreeCache()
	ctx := context.Background()

	c.PutForest(ctx, "post-1", sampleForest(), time.Minute)
	c.PutForest(ctx, "post-2", sampleForest(), time.Minute)

	c.Invalidate(ctx, "post-1")

	_, ok := c.GetForest(ctx, "post-1")
	assert.False(t, ok)
	_, ok = c.GetForest(ctx, "post-2")
	assert.True(t, ok)
}

func TestMemoryCacheMissOnUnknownPost(t *testing.T) {
	c := NewMemoryTreeCache()
	_, ok := c.GetForest(context.Background(), "never-stored")
	assert.False(t, ok)
}

// forestFromShape builds a forest from a sequence of depth hints: 0
// starts a new top-level comment, any other value nests under the
// rightmost node one level up, capped by the current rightmost path.
func forestFromShape(shape []int) []*models.CommentNode {
	var forest []*models.CommentNode
	var path []*models.CommentNode

	newNode := func(depth int) *models.CommentNode {
		return &models.CommentNode{
			Comment: models.Comment{ID: primitive.NewObjectID(), Depth: depth},
			Replies: []*models.CommentNode{},
		}
	}

	for _, hint := range shape {
		depth := hint
		if depth > len(path) {
			depth = len(path)
		}
		node := newNode(depth + 1)
		if depth == 0 {
			forest = append(forest, node)
			path = []*models.CommentNode{node}
			continue
		}
		parent := path[depth-1]
		parent.Replies = append(parent.Replies, node)
		path = append(path[:depth], node)
	}
	return forest
}

func sameStructure(a, b []*models.CommentNode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Depth != b[i].Depth {
			return false
		}
		if !sameStructure(a[i].Replies, b[i].Replies) {
			return false
		}
	}
	return true
}

// Storing then fetching any forest must hand back the exact nested
// structure: same node set, same nesting, nothing flattened or dropped.
func TestMemoryCacheRoundTripProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("Put followed by Get is structurally identical", prop.ForAll(
		func(shape []int) bool {
			forest := forestFromShape(shape)
			c := NewMemoryTreeCache()
			ctx := context.Background()

			c.PutForest(ctx, "post", forest, time.Minute)
			got, ok := c.GetForest(ctx, "post")
			if len(forest) == 0 {
				return ok && len(got) == 0
			}
			return ok && sameStructure(forest, got) &&
				models.CountForestNodes(forest) == models.CountForestNodes(got)
		},
		gen.SliceOf(gen.IntRange(0, 4)),
	))

	properties.TestingRun(t)
}
