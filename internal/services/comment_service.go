package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shafin-dev/localhub/backend/internal/apperrors"
	"github.com/shafin-dev/localhub/backend/internal/cache"
	"github.com/shafin-dev/localhub/backend/internal/models"
	"github.com/shafin-dev/localhub/backend/internal/repositories"
	"go.uber.org/zap"
)

const maxContentLength = 2000

// CommentService owns the comment lifecycle and the cached read path.
// Every mutation invalidates the post's cached forest before reporting
// success, so a subsequent read always rebuilds from the source of
// truth.
type CommentService struct {
	comments      repositories.CommentRepository
	posts         repositories.PostRepository
	notifications repositories.NotificationRepository
	builder       *TreeBuilder
	treeCache     cache.TreeCache
	logger        *zap.Logger
	cacheTTL      time.Duration
}

// NewCommentService creates a new CommentService. notifications may be
// nil; notification delivery is best-effort.
func NewCommentService(
	comments repositories.CommentRepository,
	posts repositories.PostRepository,
	notifications repositories.NotificationRepository,
	builder *TreeBuilder,
	treeCache cache.TreeCache,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *CommentService {
	return &CommentService{
		comments:      comments,
		posts:         posts,
		notifications: notifications,
		builder:       builder,
		treeCache:     treeCache,
		logger:        logger,
		cacheTTL:      cacheTTL,
	}
}

// GetForest returns the enriched comment forest for a post, serving
// from the cache when possible. The cached value is the builder's
// exact nested output; it is never flattened or re-shaped on either
// side of the cache. Viewer reaction flags are overlaid after
// retrieval and never cached. viewerID 0 means anonymous.
func (s *CommentService) GetForest(ctx context.Context, postID string, viewerID uint) ([]*models.CommentNode, error) {
	forest, hit := s.treeCache.GetForest(ctx, postID)
	if !hit {
		var err error
		forest, err = s.builder.BuildForest(ctx, postID)
		if err != nil {
			return nil, err
		}
		// A cancelled build must not leave a partial entry behind.
		if ctx.Err() == nil {
			s.treeCache.PutForest(ctx, postID, forest, s.cacheTTL)
		}
	}

	if viewerID != 0 {
		if err := s.builder.OverlayViewer(ctx, forest, viewerID); err != nil {
			return nil, err
		}
	}
	return forest, nil
}

// CreateComment creates a top-level comment or a reply. Replies deeper
// than the configured limit are rejected with DepthExceeded; the
// parent's reply counter and the post's comment counter move through
// atomic increments.
func (s *CommentService) CreateComment(ctx context.Context, postID string, authorID uint, parentCommentID, content string) (*models.Comment, error) {
	content, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	depth := 1
	var parent *models.Comment
	if parentCommentID != "" {
		parent, err = s.comments.GetCommentByID(ctx, parentCommentID)
		if err != nil {
			return nil, mapStoreError(err)
		}
		if parent.PostID.Hex() != postID || parent.IsDeleted() {
			return nil, apperrors.NotFoundf("parent comment %q", parentCommentID)
		}
		if parent.Depth >= s.builder.MaxDepth() {
			return nil, fmt.Errorf("%w: replies are limited to %d levels, start a new top-level comment instead",
				apperrors.ErrDepthExceeded, s.builder.MaxDepth())
		}
		depth = parent.Depth + 1
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: authorID,
		Depth:    depth,
		Content:  content,
	}
	if parent != nil {
		parentID := parent.ID
		comment.ParentCommentID = &parentID
	}

	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, mapStoreError(err)
	}

	if parent != nil {
		if err := s.comments.AddReplyCount(ctx, parent.ID.Hex(), 1); err != nil {
			return nil, mapStoreError(err)
		}
	}
	if err := s.posts.AddCommentsCount(ctx, postID, 1); err != nil {
		return nil, mapStoreError(err)
	}

	s.treeCache.Invalidate(ctx, postID)
	s.notifyNewComment(authorID, post, parent, comment)

	return comment, nil
}

// UpdateComment replaces the content of the caller's own comment.
func (s *CommentService) UpdateComment(ctx context.Context, commentID string, editorID uint, content string) (*models.Comment, error) {
	content, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if comment.IsDeleted() {
		return nil, apperrors.NotFoundf("comment %q", commentID)
	}
	if comment.AuthorID != editorID {
		return nil, fmt.Errorf("%w: not the comment owner", apperrors.ErrForbidden)
	}

	if err := s.comments.UpdateContent(ctx, commentID, content); err != nil {
		return nil, mapStoreError(err)
	}

	s.treeCache.Invalidate(ctx, comment.PostID.Hex())

	comment.Content = content
	comment.UpdatedAt = time.Now()
	return comment, nil
}

// DeleteComment soft-deletes the caller's own comment. The record
// stays as a placeholder so existing replies keep their position;
// counters are left untouched.
func (s *CommentService) DeleteComment(ctx context.Context, commentID string, requesterID uint) error {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return mapStoreError(err)
	}
	if comment.IsDeleted() {
		return apperrors.NotFoundf("comment %q", commentID)
	}
	if comment.AuthorID != requesterID {
		return fmt.Errorf("%w: not the comment owner", apperrors.ErrForbidden)
	}

	if err := s.comments.SoftDeleteComment(ctx, commentID); err != nil {
		return mapStoreError(err)
	}

	s.treeCache.Invalidate(ctx, comment.PostID.Hex())
	return nil
}

func (s *CommentService) notifyNewComment(actorID uint, post *models.Post, parent *models.Comment, comment *models.Comment) {
	if s.notifications == nil {
		return
	}

	recipientID := post.AuthorID
	targetType := string(models.TargetTypePost)
	targetID := post.ID.Hex()
	message := "Someone commented on your post"
	if parent != nil {
		recipientID = parent.AuthorID
		targetType = string(models.TargetTypeComment)
		targetID = parent.ID.Hex()
		message = "Someone replied to your comment"
	}
	if recipientID == actorID {
		return
	}

	notification := &models.Notification{
		Type:        "reply",
		ActorID:     actorID,
		RecipientID: recipientID,
		TargetID:    targetID,
		TargetType:  targetType,
		Message:     message,
	}
	if err := s.notifications.CreateNotification(notification); err != nil {
		s.logger.Warn("failed to create comment notification",
			zap.Uint("recipient_id", recipientID),
			zap.String("comment_id", comment.ID.Hex()),
			zap.Error(err))
	}
}

func normalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: content must not be empty", apperrors.ErrValidation)
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return "", fmt.Errorf("%w: content exceeds %d characters", apperrors.ErrValidation, maxContentLength)
	}
	return content, nil
}
