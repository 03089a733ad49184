package services

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shafin-dev/localhub/backend/internal/apperrors"
	"github.com/shafin-dev/localhub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	for _, raw := range []string{"like", "dislike", "bookmark"} {
		action, err := ParseAction(raw)
		require.NoError(t, err)
		assert.Equal(t, Action(raw), action)
	}

	_, err := ParseAction("upvote")
	assert.ErrorIs(t, err, apperrors.ErrInvalidAction)
	_, err = ParseAction("")
	assert.ErrorIs(t, err, apperrors.ErrInvalidAction)
}

func TestTransitionLike(t *testing.T) {
	tests := []struct {
		name       string
		current    models.LikeState
		action     Action
		wantState  models.LikeState
		wantDeltas CounterDeltas
	}{
		{"like from none", models.StateNone, ActionLike, models.StateLiked, CounterDeltas{Like: 1}},
		{"like withdraws like", models.StateLiked, ActionLike, models.StateNone, CounterDeltas{Like: -1}},
		{"like replaces dislike", models.StateDisliked, ActionLike, models.StateLiked, CounterDeltas{Like: 1, Dislike: -1}},
		{"dislike from none", models.StateNone, ActionDislike, models.StateDisliked, CounterDeltas{Dislike: 1}},
		{"dislike replaces like", models.StateLiked, ActionDislike, models.StateDisliked, CounterDeltas{Like: -1, Dislike: 1}},
		{"dislike withdraws dislike", models.StateDisliked, ActionDislike, models.StateNone, CounterDeltas{Dislike: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, deltas, err := TransitionLike(tt.current, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, next)
			assert.Equal(t, tt.wantDeltas, deltas)
		})
	}
}

func TestTransitionLikeRejectsBookmark(t *testing.T) {
	_, _, err := TransitionLike(models.StateNone, ActionBookmark)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAction)
}

func TestTransitionBookmark(t *testing.T) {
	next, deltas := TransitionBookmark(false)
	assert.True(t, next)
	assert.Equal(t, CounterDeltas{Bookmark: 1}, deltas)

	next, deltas = TransitionBookmark(true)
	assert.False(t, next)
	assert.Equal(t, CounterDeltas{Bookmark: -1}, deltas)
}

func TestTransitionBookmarkDoubleToggleIsIdentity(t *testing.T) {
	mid, d1 := TransitionBookmark(false)
	final, d2 := TransitionBookmark(mid)
	assert.False(t, final)
	assert.Zero(t, d1.Bookmark+d2.Bookmark)
}

// Any sequence of like/dislike actions, applied to a single user and
// target, must keep the accumulated counter contribution of that user
// in {(0,0),(1,0),(0,1)} and consistent with the final state.
func TestTransitionLikeSequenceProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("counters track state across any action sequence", prop.ForAll(
		func(actions []Action) bool {
			state := models.StateNone
			likes, dislikes := 0, 0
			for _, action := range actions {
				next, deltas, err := TransitionLike(state, action)
				if err != nil {
					return false
				}
				state = next
				likes += deltas.Like
				dislikes += deltas.Dislike
			}
			switch state {
			case models.StateNone:
				return likes == 0 && dislikes == 0
			case models.StateLiked:
				return likes == 1 && dislikes == 0
			case models.StateDisliked:
				return likes == 0 && dislikes == 1
			}
			return false
		},
		gen.SliceOf(gen.OneConstOf(ActionLike, ActionDislike)),
	))

	properties.TestingRun(t)
}
