package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TargetType identifies the kind of entity a reaction is attached to.
type TargetType string

const (
	TargetTypePost    TargetType = "post"
	TargetTypeComment TargetType = "comment"
)

// LikeState is the like-axis of a reaction. Liked and disliked are
// mutually exclusive; absence of either is StateNone, never a missing
// record, so toggles always have a stable row to compare against.
type LikeState string

const (
	StateNone     LikeState = "none"
	StateLiked    LikeState = "liked"
	StateDisliked LikeState = "disliked"
)

// Reaction holds one user's reaction to one target. At most one record
// exists per (user_id, target_type, target_id), enforced by a unique
// index. The bookmark flag is independent of the like-axis but shares
// the record for locality.
type Reaction struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID     uint               `json:"user_id" bson:"user_id"`
	TargetType TargetType         `json:"target_type" bson:"target_type"`
	TargetID   primitive.ObjectID `json:"target_id" bson:"target_id"`
	State      LikeState          `json:"state" bson:"state"`
	Bookmarked bool               `json:"bookmarked" bson:"bookmarked"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

// TargetCounts are the reaction counters of a target entity after an
// atomic delta has been applied.
type TargetCounts struct {
	LikeCount     int `json:"like_count"`
	DislikeCount  int `json:"dislike_count"`
	BookmarkCount int `json:"bookmark_count"`
}

// ToggleReactionRequest defines the request body for toggling a reaction
type ToggleReactionRequest struct {
	TargetType string `json:"target_type" validate:"required,oneof=post comment"`
	TargetID   string `json:"target_id" validate:"required,len=24,hexadecimal"`
	Action     string `json:"action" validate:"required,oneof=like dislike bookmark"`
}
