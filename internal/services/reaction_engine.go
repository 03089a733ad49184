package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shafin-dev/localhub/backend/internal/apperrors"
	"github.com/shafin-dev/localhub/backend/internal/cache"
	"github.com/shafin-dev/localhub/backend/internal/models"
	"github.com/shafin-dev/localhub/backend/internal/repositories"
	"go.uber.org/zap"
)

// ReactionEngine drives the toggle state machine and the atomic
// counter maintenance on the target entity. The reaction-record
// transition is a compare-and-set guarded by the previous state, and
// the counter deltas are applied through the store's atomic $inc, so
// concurrent toggles never lose updates and no read can observe a
// transitioned record without its counter delta once Toggle returns.
type ReactionEngine struct {
	reactions     repositories.ReactionRepository
	posts         repositories.PostRepository
	comments      repositories.CommentRepository
	notifications repositories.NotificationRepository
	treeCache     cache.TreeCache
	logger        *zap.Logger
}

// NewReactionEngine creates a new ReactionEngine. notifications may be
// nil; notification delivery is best-effort.
func NewReactionEngine(
	reactions repositories.ReactionRepository,
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	notifications repositories.NotificationRepository,
	treeCache cache.TreeCache,
	logger *zap.Logger,
) *ReactionEngine {
	return &ReactionEngine{
		reactions:     reactions,
		posts:         posts,
		comments:      comments,
		notifications: notifications,
		treeCache:     treeCache,
		logger:        logger,
	}
}

// ToggleResult is the outcome of a reaction toggle: the user's new
// reaction state and the target's fresh counters.
type ToggleResult struct {
	State      models.LikeState `json:"state"`
	Bookmarked bool             `json:"bookmarked"`
	models.TargetCounts
}

// Toggle applies one reaction action for one user on one target.
// A transition that loses its compare-and-set race is retried once,
// transparently, against the re-read state before the conflict
// surfaces to the caller.
func (e *ReactionEngine) Toggle(ctx context.Context, userID uint, targetType models.TargetType, targetID string, action Action) (*ToggleResult, error) {
	target, err := e.resolveTarget(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}

	newState, newBookmarked, deltas, err := e.transition(ctx, userID, targetType, targetID, action)
	if errors.Is(err, apperrors.ErrConcurrencyConflict) {
		e.logger.Debug("reaction transition lost a race, retrying",
			zap.Uint("user_id", userID),
			zap.String("target_type", string(targetType)),
			zap.String("target_id", targetID))
		newState, newBookmarked, deltas, err = e.transition(ctx, userID, targetType, targetID, action)
	}
	if err != nil {
		return nil, err
	}

	counts, err := e.applyDeltas(ctx, targetType, targetID, deltas)
	if err != nil {
		return nil, err
	}

	// The cache entry for this post is stale the moment the counters
	// moved; drop it before reporting success.
	e.treeCache.Invalidate(ctx, target.postID)

	e.notify(userID, target, targetType, targetID, action, deltas)

	return &ToggleResult{
		State:        newState,
		Bookmarked:   newBookmarked,
		TargetCounts: *counts,
	}, nil
}

// toggleTarget is a resolved reaction target: the post whose cached
// forest must be invalidated, and the author to notify.
type toggleTarget struct {
	postID   string
	authorID uint
}

func (e *ReactionEngine) resolveTarget(ctx context.Context, targetType models.TargetType, targetID string) (*toggleTarget, error) {
	switch targetType {
	case models.TargetTypePost:
		post, err := e.posts.GetPostByID(ctx, targetID)
		if err != nil {
			return nil, mapStoreError(err)
		}
		return &toggleTarget{postID: targetID, authorID: post.AuthorID}, nil
	case models.TargetTypeComment:
		comment, err := e.comments.GetCommentByID(ctx, targetID)
		if err != nil {
			return nil, mapStoreError(err)
		}
		if comment.IsDeleted() {
			return nil, apperrors.NotFoundf("comment %q", targetID)
		}
		return &toggleTarget{postID: comment.PostID.Hex(), authorID: comment.AuthorID}, nil
	default:
		return nil, fmt.Errorf("%w: target type %q", apperrors.ErrInvalidAction, targetType)
	}
}

// transition reads the current record, computes the pure state-machine
// step, and applies it with a compare-and-set on the previous state.
func (e *ReactionEngine) transition(ctx context.Context, userID uint, targetType models.TargetType, targetID string, action Action) (models.LikeState, bool, CounterDeltas, error) {
	current, err := e.reactions.GetReaction(ctx, userID, targetType, targetID)
	if err != nil {
		return "", false, CounterDeltas{}, mapStoreError(err)
	}

	curState := models.StateNone
	curBookmarked := false
	if current != nil {
		curState = current.State
		curBookmarked = current.Bookmarked
	}

	if action == ActionBookmark {
		next, deltas := TransitionBookmark(curBookmarked)
		if err := e.reactions.TransitionBookmark(ctx, userID, targetType, targetID, curBookmarked, next); err != nil {
			return "", false, CounterDeltas{}, mapStoreError(err)
		}
		return curState, next, deltas, nil
	}

	next, deltas, err := TransitionLike(curState, action)
	if err != nil {
		return "", false, CounterDeltas{}, err
	}
	if err := e.reactions.TransitionLikeState(ctx, userID, targetType, targetID, curState, next); err != nil {
		return "", false, CounterDeltas{}, mapStoreError(err)
	}
	return next, curBookmarked, deltas, nil
}

func (e *ReactionEngine) applyDeltas(ctx context.Context, targetType models.TargetType, targetID string, deltas CounterDeltas) (*models.TargetCounts, error) {
	var counts *models.TargetCounts
	var err error
	switch targetType {
	case models.TargetTypePost:
		counts, err = e.posts.ApplyReactionDeltas(ctx, targetID, deltas.Like, deltas.Dislike, deltas.Bookmark)
	case models.TargetTypeComment:
		counts, err = e.comments.ApplyReactionDeltas(ctx, targetID, deltas.Like, deltas.Dislike, deltas.Bookmark)
	}
	if err != nil {
		return nil, mapStoreError(err)
	}
	return counts, nil
}

// notify records a notification for freshly applied likes and
// bookmarks. Failures are logged, never surfaced.
func (e *ReactionEngine) notify(actorID uint, target *toggleTarget, targetType models.TargetType, targetID string, action Action, deltas CounterDeltas) {
	if e.notifications == nil || actorID == target.authorID {
		return
	}
	if deltas.Like <= 0 && deltas.Bookmark <= 0 {
		return
	}
	notification := &models.Notification{
		Type:        string(action),
		ActorID:     actorID,
		RecipientID: target.authorID,
		TargetID:    targetID,
		TargetType:  string(targetType),
		Message:     fmt.Sprintf("Someone reacted to your %s", targetType),
	}
	if err := e.notifications.CreateNotification(notification); err != nil {
		e.logger.Warn("failed to create reaction notification",
			zap.Uint("recipient_id", target.authorID), zap.Error(err))
	}
}
