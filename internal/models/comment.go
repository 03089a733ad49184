package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentStatus marks whether a comment is visible or soft-deleted.
// Deleted comments stay in the collection as placeholders so their
// reply subtree remains addressable.
type CommentStatus string

const (
	CommentStatusActive  CommentStatus = "active"
	CommentStatusDeleted CommentStatus = "deleted"
)

// Comment represents a comment stored in MongoDB. Top-level comments
// have a nil ParentCommentID and Depth 1. The counters are only ever
// mutated through atomic $inc operations, never read-modify-write.
type Comment struct {
	ID              primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	PostID          primitive.ObjectID  `json:"post_id" bson:"post_id"`
	AuthorID        uint                `json:"author_id" bson:"author_id"`
	ParentCommentID *primitive.ObjectID `json:"parent_comment_id,omitempty" bson:"parent_comment_id,omitempty"`
	Depth           int                 `json:"depth" bson:"depth"`
	Content         string              `json:"content" bson:"content"`
	Status          CommentStatus       `json:"status" bson:"status"`
	LikeCount       int                 `json:"like_count" bson:"like_count"`
	DislikeCount    int                 `json:"dislike_count" bson:"dislike_count"`
	BookmarkCount   int                 `json:"bookmark_count" bson:"bookmark_count"`
	ReplyCount      int                 `json:"reply_count" bson:"reply_count"`
	CreatedAt       time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" bson:"updated_at"`
}

// IsDeleted reports whether the comment is a soft-deleted placeholder.
func (c *Comment) IsDeleted() bool {
	return c.Status == CommentStatusDeleted
}

// CreateCommentRequest defines the request body for creating a comment
// or a reply on a post
type CreateCommentRequest struct {
	ParentCommentID string `json:"parent_comment_id,omitempty" validate:"omitempty,len=24,hexadecimal"`
	Content         string `json:"content" validate:"required,min=1,max=2000"`
}

// UpdateCommentRequest defines the request body for editing a comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}
