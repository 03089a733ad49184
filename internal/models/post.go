package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a community post stored in MongoDB. The counters are
// maintained exclusively through atomic $inc operations alongside the
// reaction and comment writes that cause them.
type Post struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID      uint               `json:"author_id" bson:"author_id"`
	Title         string             `json:"title" bson:"title"`
	Content       string             `json:"content" bson:"content"`
	ImageURLs     []string           `json:"image_urls,omitempty" bson:"image_urls,omitempty"`
	LikeCount     int                `json:"like_count" bson:"like_count"`
	DislikeCount  int                `json:"dislike_count" bson:"dislike_count"`
	BookmarkCount int                `json:"bookmark_count" bson:"bookmark_count"`
	CommentsCount int                `json:"comments_count" bson:"comments_count"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title     string   `json:"title" validate:"required,min=1,max=200"`
	Content   string   `json:"content" validate:"required,min=1,max=10000"`
	ImageURLs []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Title     string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content   string   `json:"content,omitempty" validate:"omitempty,min=1,max=10000"`
	ImageURLs []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
}

// EnrichedPost is a post with author info and the viewer's reaction flags
type EnrichedPost struct {
	Post
	Author UserCompact     `json:"author"`
	Viewer *ViewerReaction `json:"viewer,omitempty"`
}
