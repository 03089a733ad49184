package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shafin-dev/localhub/backend/internal/apperrors"
	"github.com/shafin-dev/localhub/backend/internal/models"
	"github.com/shafin-dev/localhub/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type commentServiceFixture struct {
	*forestFixture
	commentsRepo  *mockCommentRepository
	postsRepo     *mockPostRepository
	notifications *mockNotificationRepository
	treeCache     *mockTreeCache
	buildCalls    int
	replyCounts   map[string]int
	commentCounts int
}

func newCommentServiceFixture(t *testing.T, maxDepth int) (*commentServiceFixture, *CommentService) {
	t.Helper()
	f := &commentServiceFixture{
		forestFixture: newForestFixture(),
		notifications: &mockNotificationRepository{},
		treeCache:     newMockTreeCache(),
		replyCounts:   make(map[string]int),
	}

	f.postsRepo = &mockPostRepository{
		GetPostByIDFunc: func(ctx context.Context, id string) (*models.Post, error) {
			if id != f.postID.Hex() {
				return nil, apperrors.NotFoundf("post %q", id)
			}
			return f.post, nil
		},
		AddCommentsCountFunc: func(ctx context.Context, postID string, delta int) error {
			f.commentCounts += delta
			return nil
		},
	}
	f.commentsRepo = &mockCommentRepository{
		GetCommentsByPostIDFunc: func(ctx context.Context, postID string) ([]models.Comment, error) {
			f.buildCalls++
			out := make([]models.Comment, len(f.comments))
			copy(out, f.comments)
			return out, nil
		},
		GetCommentByIDFunc: func(ctx context.Context, id string) (*models.Comment, error) {
			for i := range f.comments {
				if f.comments[i].ID.Hex() == id {
					c := f.comments[i]
					return &c, nil
				}
			}
			return nil, repositories.ErrCommentNotFound
		},
		CreateCommentFunc: func(ctx context.Context, comment *models.Comment) error {
			comment.ID = primitive.NewObjectID()
			comment.Status = models.CommentStatusActive
			comment.CreatedAt = time.Now()
			comment.UpdatedAt = comment.CreatedAt
			f.comments = append(f.comments, *comment)
			return nil
		},
		AddReplyCountFunc: func(ctx context.Context, id string, delta int) error {
			f.replyCounts[id] += delta
			return nil
		},
	}

	builder := NewTreeBuilder(f.commentsRepo, f.postsRepo, &mockUserRepository{}, &mockReactionRepository{}, zap.NewNop(), maxDepth)
	service := NewCommentService(f.commentsRepo, f.postsRepo, f.notifications, builder, f.treeCache, zap.NewNop(), time.Minute)
	return f, service
}

func TestCreateTopLevelComment(t *testing.T) {
	f, service := newCommentServiceFixture(t, 3)

	comment, err := service.CreateComment(context.Background(), f.postID.Hex(), 7, "", "hello neighbors")
	require.NoError(t, err)
	assert.Equal(t, 1, comment.Depth)
	assert.Nil(t, comment.ParentCommentID)
	assert.Equal(t, 1, f.commentCounts)
	assert.Contains(t, f.treeCache.invalidated, f.postID.Hex())

	// the post author hears about it
	require.Len(t, f.notifications.created, 1)
	assert.Equal(t, f.post.AuthorID, f.notifications.created[0].RecipientID)
}

func TestCreateReplyIncrementsParentCounter(t *testing.T) {
	f, service := newCommentServiceFixture(t, 3)
	parent := f.addComment(1, nil, "parent")

	reply, err := service.CreateComment(context.Background(), f.postID.Hex(), 2, parent.ID.Hex(), "a reply")
	require.NoError(t, err)
	assert.Equal(t, 2, reply.Depth)
	require.NotNil(t, reply.ParentCommentID)
	assert.Equal(t, parent.ID, *reply.ParentCommentID)
	assert.Equal(t, 1, f.replyCounts[parent.ID.Hex()])

	// reply notifies the parent's author, not the post's
	require.Len(t, f.notifications.created, 1)
	assert.Equal(t, uint(1), f.notifications.created[0].RecipientID)
}

func TestCreateReplyBeyondDepthLimit(t *testing.T) {
	f, service := newCommentServiceFixture(t, 3)
	c1 := f.addComment(1, nil, "depth 1")
	c2 := f.addComment(1, c1, "depth 2")
	c3 := f.addComment(1, c2, "depth 3")

	_, err := service.CreateComment(context.Background(), f.postID.Hex(), 2, c3.ID.Hex(), "too deep")
	assert.ErrorIs(t, err, apperrors.ErrDepthExceeded)

	// boundary itself still accepts: replying to depth 2 yields depth 3
	reply, err := service.CreateComment(context.Background(), f.postID.Hex(), 2, c2.ID.Hex(), "at the limit")
	require.NoError(t, err)
	assert.Equal(t, 3, reply.Depth)
}

func TestCreateCommentValidation(t *testing.T) {
	f, service := newCommentServiceFixture(t, 3)

	_, err := service.CreateComment(context.Background(), f.postID.Hex(), 1, "", "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = service.CreateComment(context.Background(), f.postID.Hex(), 1, "", strings.Repeat("x", maxContentLength+1))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// trimmed content at the limit is fine
	_, err = service.CreateComment(context.Background(), f.postID.Hex(), 1, "", "  "+strings.Repeat("x", maxContentLength)+"  ")
	assert.NoError(t, err)
}

func TestCreateCommentRejectsForeignOrDeletedParent(t *testing.T) {
	f, service := newCommentServiceFixture(t, 3)

	deleted := f.addComment(1, nil, "gone")
	deleted.Status = models.CommentStatusDeleted
	_, err := service.CreateComment(context.Background(), f.postID.Hex(), 2, deleted.ID.Hex(), "reply")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = service.CreateComment(context.Background(), f.postID.Hex(), 2, primitive.NewObjectID().Hex(), "reply")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetForestServesExactStructureFromCache(t *testing.T) {
	f, service := newCommentServiceFixture(t, 3)
	c1 := f.addComment(1, nil, "top")
	r1 := f.addComment(2, c1, "reply")
	f.addComment(3, r1, "nested")

	cold, err := service.GetForest(context.Background(), f.postID.Hex(), 0)
	require.NoError(t, err)
	require.Equal(t, 1, f.buildCalls)

	warm, err := service.GetForest(context.Background(), f.postID.Hex(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, f.buildCalls, "second read must come from the cache")

	// the cached forest keeps the full nested shape
	assert.Equal(t, models.CountForestNodes(cold), models.CountForestNodes(warm))
	require.Len(t, warm, 1)
	require.Len(t, warm[0].Replies, 1)
	require.Len(t, warm[0].Replies[0].Replies, 1)
	assert.Equal(t, cold[0].Replies[0].Replies[0].ID, warm[0].Replies[0].Replies[0].ID)
}

func TestGetForestOverlaysViewerWithoutCachingFlags(t *testing.T) {
	f, service := newCommentServiceFixture(t, 3)
	f.addComment(1, nil, "top")

	// warm the cache anonymously
	forest, err := service.GetForest(context.Background(), f.postID.Hex(), 0)
	require.NoError(t, err)
	assert.Nil(t, forest[0].Viewer)

	// signed-in read gets flags
	forest, err = service.GetForest(context.Background(), f.postID.Hex(), 7)
	require.NoError(t, err)
	require.NotNil(t, forest[0].Viewer)

	// the cached copy stays neutral
	cached, ok := f.treeCache.GetForest(context.Background(), f.postID.Hex())
	require.True(t, ok)
	assert.Nil(t, cached[0].Viewer)
}

func TestGetForestSkipsCacheWriteOnCancelledContext(t *testing.T) {
	f, service := newCommentServiceFixture(t, 3)
	f.addComment(1, nil, "top")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.GetForest(ctx, f.postID.Hex(), 0)
	require.NoError(t, err)
	assert.Zero(t, f.treeCache.puts, "a cancelled build must not leave a cache entry")
}

func TestUpdateCommentInvalidatesCache(t *testing.T) {
	f, service := newCommentServiceFixture(t, 3)
	c1 := f.addComment(7, nil, "original")

	updated, err := service.UpdateComment(context.Background(), c1.ID.Hex(), 7, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.Contains(t, f.treeCache.invalidated, f.postID.Hex())
}

func TestUpdateCommentOwnerOnly(t *testing.T) {
	f, service := newCommentServiceFixture(t, 3)
	c1 := f.addComment(7, nil, "original")

	_, err := service.UpdateComment(context.Background(), c1.ID.Hex(), 8, "hijacked")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestDeleteCommentInvalidatesCache(t *testing.T) {
	f, service := newCommentServiceFixture(t, 3)
	c1 := f.addComment(7, nil, "bye")
	f.commentsRepo.SoftDeleteCommentFunc = func(ctx context.Context, id string) error {
		for i := range f.comments {
			if f.comments[i].ID.Hex() == id {
				f.comments[i].Status = models.CommentStatusDeleted
				return nil
			}
		}
		return repositories.ErrCommentNotFound
	}

	require.NoError(t, service.DeleteComment(context.Background(), c1.ID.Hex(), 7))
	assert.Contains(t, f.treeCache.invalidated, f.postID.Hex())

	// a second delete sees the placeholder and reports not found
	err := service.DeleteComment(context.Background(), c1.ID.Hex(), 7)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteCommentOwnerOnly(t *testing.T) {
	f, service := newCommentServiceFixture(t, 3)
	c1 := f.addComment(7, nil, "mine")

	err := service.DeleteComment(context.Background(), c1.ID.Hex(), 8)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCommentOperationsOnUnknownPost(t *testing.T) {
	_, service := newCommentServiceFixture(t, 3)
	unknown := primitive.NewObjectID().Hex()

	_, err := service.GetForest(context.Background(), unknown, 0)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = service.CreateComment(context.Background(), unknown, 1, "", "hello")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
