package services

import (
	"context"

	"github.com/shafin-dev/localhub/backend/internal/models"
	"github.com/shafin-dev/localhub/backend/internal/repositories"
	"go.uber.org/zap"
)

// DeletedContentPlaceholder replaces the body of soft-deleted comments
// in the rendered forest. The placeholder node keeps its slot so the
// replies underneath stay visible.
const DeletedContentPlaceholder = "[deleted]"

// TreeBuilder assembles the enriched comment forest for a post: the
// nested reply structure bounded by maxDepth, author profiles resolved
// in one batched directory call, and optionally the viewer's own
// reaction flags fetched in one batched reaction lookup.
type TreeBuilder struct {
	comments  repositories.CommentRepository
	posts     repositories.PostRepository
	users     repositories.UserRepository
	reactions repositories.ReactionRepository
	logger    *zap.Logger
	maxDepth  int
}

// NewTreeBuilder creates a new TreeBuilder
func NewTreeBuilder(
	comments repositories.CommentRepository,
	posts repositories.PostRepository,
	users repositories.UserRepository,
	reactions repositories.ReactionRepository,
	logger *zap.Logger,
	maxDepth int,
) *TreeBuilder {
	return &TreeBuilder{
		comments:  comments,
		posts:     posts,
		users:     users,
		reactions: reactions,
		logger:    logger,
		maxDepth:  maxDepth,
	}
}

// MaxDepth returns the configured nesting limit.
func (b *TreeBuilder) MaxDepth() int {
	return b.maxDepth
}

// BuildForest builds the full comment forest for a post. Fails with
// NotFound when the post does not exist. The returned structure is the
// canonical cacheable shape: nested replies, resolved authors, stored
// counters, no viewer-specific state.
func (b *TreeBuilder) BuildForest(ctx context.Context, postID string) ([]*models.CommentNode, error) {
	if _, err := b.posts.GetPostByID(ctx, postID); err != nil {
		return nil, mapStoreError(err)
	}

	comments, err := b.comments.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	// Flat arena keyed by id plus an adjacency index from parent id.
	// The nested view is materialized from these in one recursive
	// pass, so no pointer cycles ever exist.
	arena := make(map[string]*models.Comment, len(comments))
	for i := range comments {
		arena[comments[i].ID.Hex()] = &comments[i]
	}

	childrenOf := make(map[string][]*models.Comment)
	var roots []*models.Comment
	for i := range comments {
		c := &comments[i]
		if c.ParentCommentID == nil {
			roots = append(roots, c)
			continue
		}
		parentHex := c.ParentCommentID.Hex()
		if _, ok := arena[parentHex]; !ok {
			// Parent document is gone entirely (not a soft-deleted
			// placeholder). Dropping the comment also drops its
			// descendants, which key under this comment's id and are
			// never visited.
			b.logger.Warn("dropping orphaned comment with missing parent",
				zap.String("post_id", postID),
				zap.String("comment_id", c.ID.Hex()),
				zap.String("parent_comment_id", parentHex))
			continue
		}
		childrenOf[parentHex] = append(childrenOf[parentHex], c)
	}

	forest := b.assemble(roots, childrenOf, 1)

	if err := b.enrichAuthors(ctx, forest); err != nil {
		return nil, err
	}
	return forest, nil
}

// assemble materializes the nested view level by level. depth counts
// from 1 at top level; nodes at maxDepth are included but closed for
// replies, and anything nested deeper is dropped with a warning.
func (b *TreeBuilder) assemble(comments []*models.Comment, childrenOf map[string][]*models.Comment, depth int) []*models.CommentNode {
	nodes := make([]*models.CommentNode, 0, len(comments))
	for _, c := range comments {
		node := &models.CommentNode{
			Comment:  *c,
			CanReply: depth < b.maxDepth && !c.IsDeleted(),
			Replies:  []*models.CommentNode{},
		}
		node.Depth = depth
		if c.IsDeleted() {
			node.Content = DeletedContentPlaceholder
			node.AuthorID = 0
		}

		children := childrenOf[c.ID.Hex()]
		if depth < b.maxDepth {
			node.Replies = b.assemble(children, childrenOf, depth+1)
		} else if len(children) > 0 {
			// Can happen when the configured limit shrank after the
			// replies were written.
			b.logger.Warn("dropping replies nested beyond the depth limit",
				zap.String("comment_id", c.ID.Hex()),
				zap.Int("dropped", len(children)))
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// enrichAuthors resolves every author in the forest through a single
// batched directory call and attaches the public profiles.
func (b *TreeBuilder) enrichAuthors(ctx context.Context, forest []*models.CommentNode) error {
	idSet := make(map[uint]struct{})
	walkForest(forest, func(n *models.CommentNode) {
		if n.AuthorID != 0 {
			idSet[n.AuthorID] = struct{}{}
		}
	})

	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	authors, err := b.users.GetUsersByIDs(ids)
	if err != nil {
		return mapStoreError(err)
	}

	walkForest(forest, func(n *models.CommentNode) {
		n.Author = authors[n.AuthorID]
	})
	return nil
}

// OverlayViewer attaches the requesting user's reaction flags to every
// node, fetched in one batched call across all comment ids in the
// forest. It mutates the given forest, which is why cached forests are
// cloned before the overlay.
func (b *TreeBuilder) OverlayViewer(ctx context.Context, forest []*models.CommentNode, userID uint) error {
	var ids []string
	walkForest(forest, func(n *models.CommentNode) {
		ids = append(ids, n.ID.Hex())
	})

	reactions, err := b.reactions.GetReactionsForTargets(ctx, userID, models.TargetTypeComment, ids)
	if err != nil {
		return mapStoreError(err)
	}

	walkForest(forest, func(n *models.CommentNode) {
		viewer := &models.ViewerReaction{}
		if reaction, ok := reactions[n.ID.Hex()]; ok {
			viewer.Liked = reaction.State == models.StateLiked
			viewer.Disliked = reaction.State == models.StateDisliked
			viewer.Bookmarked = reaction.Bookmarked
		}
		n.Viewer = viewer
	})
	return nil
}

func walkForest(forest []*models.CommentNode, visit func(*models.CommentNode)) {
	for _, n := range forest {
		visit(n)
		walkForest(n.Replies, visit)
	}
}
