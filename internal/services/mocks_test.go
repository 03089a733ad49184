package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shafin-dev/localhub/backend/internal/apperrors"
	"github.com/shafin-dev/localhub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Func-field mocks for the repository interfaces. Unset funcs return
// harmless zero values so each test only wires what it asserts on.

type mockCommentRepository struct {
	CreateCommentFunc       func(ctx context.Context, comment *models.Comment) error
	GetCommentByIDFunc      func(ctx context.Context, id string) (*models.Comment, error)
	GetCommentsByPostIDFunc func(ctx context.Context, postID string) ([]models.Comment, error)
	UpdateContentFunc       func(ctx context.Context, id string, content string) error
	SoftDeleteCommentFunc   func(ctx context.Context, id string) error
	AddReplyCountFunc       func(ctx context.Context, id string, delta int) error
	ApplyReactionDeltasFunc func(ctx context.Context, id string, likeDelta, dislikeDelta, bookmarkDelta int) (*models.TargetCounts, error)
}

func (m *mockCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if m.CreateCommentFunc != nil {
		return m.CreateCommentFunc(ctx, comment)
	}
	comment.ID = primitive.NewObjectID()
	comment.Status = models.CommentStatusActive
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	return nil
}

func (m *mockCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	if m.GetCommentByIDFunc != nil {
		return m.GetCommentByIDFunc(ctx, id)
	}
	return nil, apperrors.NotFoundf("comment %q", id)
}

func (m *mockCommentRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	if m.GetCommentsByPostIDFunc != nil {
		return m.GetCommentsByPostIDFunc(ctx, postID)
	}
	return nil, nil
}

func (m *mockCommentRepository) UpdateContent(ctx context.Context, id, content string) error {
	if m.UpdateContentFunc != nil {
		return m.UpdateContentFunc(ctx, id, content)
	}
	return nil
}

func (m *mockCommentRepository) SoftDeleteComment(ctx context.Context, id string) error {
	if m.SoftDeleteCommentFunc != nil {
		return m.SoftDeleteCommentFunc(ctx, id)
	}
	return nil
}

func (m *mockCommentRepository) AddReplyCount(ctx context.Context, id string, delta int) error {
	if m.AddReplyCountFunc != nil {
		return m.AddReplyCountFunc(ctx, id, delta)
	}
	return nil
}

func (m *mockCommentRepository) ApplyReactionDeltas(ctx context.Context, id string, likeDelta, dislikeDelta, bookmarkDelta int) (*models.TargetCounts, error) {
	if m.ApplyReactionDeltasFunc != nil {
		return m.ApplyReactionDeltasFunc(ctx, id, likeDelta, dislikeDelta, bookmarkDelta)
	}
	return &models.TargetCounts{}, nil
}

type mockPostRepository struct {
	CreatePostFunc          func(ctx context.Context, post *models.Post) error
	GetPostByIDFunc         func(ctx context.Context, id string) (*models.Post, error)
	GetPostsByUserIDFunc    func(ctx context.Context, userID uint, skip, limit int64) ([]models.Post, error)
	GetAllPostsFunc         func(ctx context.Context, skip, limit int64) ([]models.Post, error)
	UpdatePostFunc          func(ctx context.Context, id string, post *models.Post) error
	DeletePostFunc          func(ctx context.Context, id string) error
	AddCommentsCountFunc    func(ctx context.Context, postID string, delta int) error
	ApplyReactionDeltasFunc func(ctx context.Context, postID string, likeDelta, dislikeDelta, bookmarkDelta int) (*models.TargetCounts, error)
}

func (m *mockPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if m.CreatePostFunc != nil {
		return m.CreatePostFunc(ctx, post)
	}
	return nil
}

func (m *mockPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	if m.GetPostByIDFunc != nil {
		return m.GetPostByIDFunc(ctx, id)
	}
	return nil, apperrors.NotFoundf("post %q", id)
}

func (m *mockPostRepository) GetPostsByUserID(ctx context.Context, userID uint, skip, limit int64) ([]models.Post, error) {
	if m.GetPostsByUserIDFunc != nil {
		return m.GetPostsByUserIDFunc(ctx, userID, skip, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	if m.GetAllPostsFunc != nil {
		return m.GetAllPostsFunc(ctx, skip, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) UpdatePost(ctx context.Context, id string, post *models.Post) error {
	if m.UpdatePostFunc != nil {
		return m.UpdatePostFunc(ctx, id, post)
	}
	return nil
}

func (m *mockPostRepository) DeletePost(ctx context.Context, id string) error {
	if m.DeletePostFunc != nil {
		return m.DeletePostFunc(ctx, id)
	}
	return nil
}

func (m *mockPostRepository) AddCommentsCount(ctx context.Context, postID string, delta int) error {
	if m.AddCommentsCountFunc != nil {
		return m.AddCommentsCountFunc(ctx, postID, delta)
	}
	return nil
}

func (m *mockPostRepository) ApplyReactionDeltas(ctx context.Context, postID string, likeDelta, dislikeDelta, bookmarkDelta int) (*models.TargetCounts, error) {
	if m.ApplyReactionDeltasFunc != nil {
		return m.ApplyReactionDeltasFunc(ctx, postID, likeDelta, dislikeDelta, bookmarkDelta)
	}
	return &models.TargetCounts{}, nil
}

type mockUserRepository struct {
	GetUsersByIDsFunc func(ids []uint) (map[uint]models.UserCompact, error)
}

func (m *mockUserRepository) CreateUser(user *models.User) error  { return nil }
func (m *mockUserRepository) GetUserByID(id uint) (*models.User, error) {
	return nil, apperrors.NotFoundf("user %d", id)
}
func (m *mockUserRepository) GetUserByEmail(email string) (*models.User, error) {
	return nil, apperrors.NotFoundf("user %q", email)
}
func (m *mockUserRepository) GetUserByFirebaseUID(uid string) (*models.User, error) {
	return nil, apperrors.NotFoundf("user %q", uid)
}
func (m *mockUserRepository) GetUsersByIDs(ids []uint) (map[uint]models.UserCompact, error) {
	if m.GetUsersByIDsFunc != nil {
		return m.GetUsersByIDsFunc(ids)
	}
	return map[uint]models.UserCompact{}, nil
}
func (m *mockUserRepository) UpdateUser(user *models.User) error { return nil }
func (m *mockUserRepository) DeleteUser(id uint) error           { return nil }
func (m *mockUserRepository) SearchUsers(query string) ([]models.User, error) {
	return nil, nil
}

type mockReactionRepository struct {
	GetReactionFunc            func(ctx context.Context, userID uint, targetType models.TargetType, targetID string) (*models.Reaction, error)
	GetReactionsForTargetsFunc func(ctx context.Context, userID uint, targetType models.TargetType, targetIDs []string) (map[string]models.Reaction, error)
	TransitionLikeStateFunc    func(ctx context.Context, userID uint, targetType models.TargetType, targetID string, from, to models.LikeState) error
	TransitionBookmarkFunc     func(ctx context.Context, userID uint, targetType models.TargetType, targetID string, from, to bool) error
}

func (m *mockReactionRepository) GetReaction(ctx context.Context, userID uint, targetType models.TargetType, targetID string) (*models.Reaction, error) {
	if m.GetReactionFunc != nil {
		return m.GetReactionFunc(ctx, userID, targetType, targetID)
	}
	return nil, nil
}

func (m *mockReactionRepository) GetReactionsForTargets(ctx context.Context, userID uint, targetType models.TargetType, targetIDs []string) (map[string]models.Reaction, error) {
	if m.GetReactionsForTargetsFunc != nil {
		return m.GetReactionsForTargetsFunc(ctx, userID, targetType, targetIDs)
	}
	return map[string]models.Reaction{}, nil
}

func (m *mockReactionRepository) TransitionLikeState(ctx context.Context, userID uint, targetType models.TargetType, targetID string, from, to models.LikeState) error {
	if m.TransitionLikeStateFunc != nil {
		return m.TransitionLikeStateFunc(ctx, userID, targetType, targetID, from, to)
	}
	return nil
}

func (m *mockReactionRepository) TransitionBookmark(ctx context.Context, userID uint, targetType models.TargetType, targetID string, from, to bool) error {
	if m.TransitionBookmarkFunc != nil {
		return m.TransitionBookmarkFunc(ctx, userID, targetType, targetID, from, to)
	}
	return nil
}

type mockNotificationRepository struct {
	mu      sync.Mutex
	created []models.Notification
}

func (m *mockNotificationRepository) CreateNotification(n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, *n)
	return nil
}

func (m *mockNotificationRepository) GetByRecipientID(recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	return nil, 0, nil
}
func (m *mockNotificationRepository) GetUnreadCount(recipientID uint) (int64, error) { return 0, nil }
func (m *mockNotificationRepository) MarkAsRead(notificationID uint) error           { return nil }
func (m *mockNotificationRepository) MarkAllAsRead(recipientID uint) error           { return nil }

// mockTreeCache records invalidations and serves a fixed forest.
type mockTreeCache struct {
	mu          sync.Mutex
	stored      map[string][]*models.CommentNode
	puts        int
	invalidated []string
}

func newMockTreeCache() *mockTreeCache {
	return &mockTreeCache{stored: make(map[string][]*models.CommentNode)}
}

func (c *mockTreeCache) GetForest(_ context.Context, postID string) ([]*models.CommentNode, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	forest, ok := c.stored[postID]
	if !ok {
		return nil, false
	}
	return models.CloneForest(forest), true
}

func (c *mockTreeCache) PutForest(_ context.Context, postID string, forest []*models.CommentNode, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.stored[postID] = models.CloneForest(forest)
}

func (c *mockTreeCache) Invalidate(_ context.Context, postID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, postID)
	delete(c.stored, postID)
}

// fakeReactionStore is an in-memory ReactionRepository with real
// compare-and-set semantics, for exercising concurrent toggles.
type fakeReactionStore struct {
	mu      sync.Mutex
	records map[string]*models.Reaction
}

func newFakeReactionStore() *fakeReactionStore {
	return &fakeReactionStore{records: make(map[string]*models.Reaction)}
}

func reactionKey(userID uint, targetType models.TargetType, targetID string) string {
	return fmt.Sprintf("%d/%s/%s", userID, targetType, targetID)
}

func (s *fakeReactionStore) GetReaction(_ context.Context, userID uint, targetType models.TargetType, targetID string) (*models.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[reactionKey(userID, targetType, targetID)]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (s *fakeReactionStore) GetReactionsForTargets(ctx context.Context, userID uint, targetType models.TargetType, targetIDs []string) (map[string]models.Reaction, error) {
	result := make(map[string]models.Reaction)
	for _, id := range targetIDs {
		if r, _ := s.GetReaction(ctx, userID, targetType, id); r != nil {
			result[id] = *r
		}
	}
	return result, nil
}

func (s *fakeReactionStore) TransitionLikeState(_ context.Context, userID uint, targetType models.TargetType, targetID string, from, to models.LikeState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := reactionKey(userID, targetType, targetID)
	r, ok := s.records[key]
	if !ok {
		if from != models.StateNone {
			return apperrors.ErrConcurrencyConflict
		}
		s.records[key] = &models.Reaction{UserID: userID, TargetType: targetType, State: to}
		return nil
	}
	if r.State != from {
		return apperrors.ErrConcurrencyConflict
	}
	r.State = to
	return nil
}

func (s *fakeReactionStore) TransitionBookmark(_ context.Context, userID uint, targetType models.TargetType, targetID string, from, to bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := reactionKey(userID, targetType, targetID)
	r, ok := s.records[key]
	if !ok {
		if from {
			return apperrors.ErrConcurrencyConflict
		}
		s.records[key] = &models.Reaction{UserID: userID, TargetType: targetType, State: models.StateNone, Bookmarked: to}
		return nil
	}
	if r.Bookmarked != from {
		return apperrors.ErrConcurrencyConflict
	}
	r.Bookmarked = to
	return nil
}
