package services

import (
	"fmt"

	"github.com/shafin-dev/localhub/backend/internal/apperrors"
	"github.com/shafin-dev/localhub/backend/internal/models"
)

// Action is a requested reaction input.
type Action string

const (
	ActionLike     Action = "like"
	ActionDislike  Action = "dislike"
	ActionBookmark Action = "bookmark"
)

// ParseAction validates a raw action string.
func ParseAction(raw string) (Action, error) {
	switch Action(raw) {
	case ActionLike, ActionDislike, ActionBookmark:
		return Action(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidAction, raw)
	}
}

// CounterDeltas are the counter adjustments a state transition
// produces on the target entity.
type CounterDeltas struct {
	Like     int
	Dislike  int
	Bookmark int
}

// TransitionLike is the like-axis state machine: a pure function from
// (current state, action) to (next state, counter deltas). Repeating
// an action withdraws it; switching actions moves both counters in one
// step so liked and disliked can never hold simultaneously.
func TransitionLike(current models.LikeState, action Action) (models.LikeState, CounterDeltas, error) {
	switch action {
	case ActionLike:
		switch current {
		case models.StateNone:
			return models.StateLiked, CounterDeltas{Like: 1}, nil
		case models.StateLiked:
			return models.StateNone, CounterDeltas{Like: -1}, nil
		case models.StateDisliked:
			return models.StateLiked, CounterDeltas{Like: 1, Dislike: -1}, nil
		}
	case ActionDislike:
		switch current {
		case models.StateNone:
			return models.StateDisliked, CounterDeltas{Dislike: 1}, nil
		case models.StateLiked:
			return models.StateDisliked, CounterDeltas{Like: -1, Dislike: 1}, nil
		case models.StateDisliked:
			return models.StateNone, CounterDeltas{Dislike: -1}, nil
		}
	}
	return "", CounterDeltas{}, fmt.Errorf("%w: %q on state %q", apperrors.ErrInvalidAction, action, current)
}

// TransitionBookmark toggles the bookmark flag. Always valid.
func TransitionBookmark(current bool) (bool, CounterDeltas) {
	if current {
		return false, CounterDeltas{Bookmark: -1}
	}
	return true, CounterDeltas{Bookmark: 1}
}
