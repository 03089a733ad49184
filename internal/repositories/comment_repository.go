package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/shafin-dev/localhub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// CommentRepository defines the interface for comment data operations.
// GetCommentsByPostID returns every comment of the post regardless of
// status, sorted by creation time ascending, so the tree builder can
// keep soft-deleted placeholders in the structure.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error)
	UpdateContent(ctx context.Context, id string, content string) error
	SoftDeleteComment(ctx context.Context, id string) error
	AddReplyCount(ctx context.Context, id string, delta int) error
	ApplyReactionDeltas(ctx context.Context, id string, likeDelta, dislikeDelta, bookmarkDelta int) (*models.TargetCounts, error)
}

// ErrCommentNotFound is returned when a comment lookup matches no document.
var ErrCommentNotFound = fmt.Errorf("comment not found")

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database, logger *zap.Logger) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments"), logger: logger}
}

// CreateComment inserts a new comment into MongoDB
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.Status = models.CommentStatusActive
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

// GetCommentByID retrieves a comment by ID from MongoDB
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrCommentNotFound
	}

	var comment models.Comment
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByPostID retrieves all comments of a post, every status,
// sorted by creation time ascending. The (post_id, parent_comment_id)
// index backs this query.
func (r *MongoCommentRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, ErrPostNotFound
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"post_id": objID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// UpdateContent replaces the text body of an active comment
func (r *MongoCommentRepository) UpdateContent(ctx context.Context, id string, content string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrCommentNotFound
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "status": models.CommentStatusActive},
		bson.M{"$set": bson.M{"content": content, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// SoftDeleteComment flips the status flag to deleted. The document and
// its counters stay in place so the reply tree keeps its shape.
func (r *MongoCommentRepository) SoftDeleteComment(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrCommentNotFound
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "status": models.CommentStatusActive},
		bson.M{"$set": bson.M{"status": models.CommentStatusDeleted, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// AddReplyCount atomically adjusts the reply counter of a comment
func (r *MongoCommentRepository) AddReplyCount(ctx context.Context, id string, delta int) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrCommentNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var comment models.Comment
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID},
		bson.M{"$inc": bson.M{"reply_count": delta}}, opts).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrCommentNotFound
		}
		return err
	}
	clampNonNegative(ctx, r.collection, objID, r.logger, map[string]*int{
		"reply_count": &comment.ReplyCount,
	})
	return nil
}

// ApplyReactionDeltas atomically applies like/dislike/bookmark counter
// deltas to a comment in a single $inc and returns the resulting
// counts. Counts that would go negative are clamped to zero.
func (r *MongoCommentRepository) ApplyReactionDeltas(ctx context.Context, id string, likeDelta, dislikeDelta, bookmarkDelta int) (*models.TargetCounts, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrCommentNotFound
	}

	inc := bson.M{}
	if likeDelta != 0 {
		inc["like_count"] = likeDelta
	}
	if dislikeDelta != 0 {
		inc["dislike_count"] = dislikeDelta
	}
	if bookmarkDelta != 0 {
		inc["bookmark_count"] = bookmarkDelta
	}

	var comment models.Comment
	if len(inc) == 0 {
		if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&comment); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, ErrCommentNotFound
			}
			return nil, err
		}
	} else {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$inc": inc}, opts).Decode(&comment)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, ErrCommentNotFound
			}
			return nil, err
		}
	}

	clampNonNegative(ctx, r.collection, objID, r.logger, map[string]*int{
		"like_count":     &comment.LikeCount,
		"dislike_count":  &comment.DislikeCount,
		"bookmark_count": &comment.BookmarkCount,
	})

	return &models.TargetCounts{
		LikeCount:     comment.LikeCount,
		DislikeCount:  comment.DislikeCount,
		BookmarkCount: comment.BookmarkCount,
	}, nil
}
