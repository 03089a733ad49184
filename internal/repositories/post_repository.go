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

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByUserID(ctx context.Context, userID uint, skip, limit int64) ([]models.Post, error)
	GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error)
	UpdatePost(ctx context.Context, id string, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
	AddCommentsCount(ctx context.Context, postID string, delta int) error
	ApplyReactionDeltas(ctx context.Context, postID string, likeDelta, dislikeDelta, bookmarkDelta int) (*models.TargetCounts, error)
}

// ErrPostNotFound is returned when a post lookup matches no document.
var ErrPostNotFound = fmt.Errorf("post not found")

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database, logger *zap.Logger) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts"), logger: logger}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetPostsByUserID retrieves posts by a specific user from MongoDB
func (r *MongoPostRepository) GetPostsByUserID(ctx context.Context, userID uint, skip, limit int64) ([]models.Post, error) {
	return r.findPosts(ctx, bson.M{"author_id": userID}, skip, limit)
}

// GetAllPosts retrieves all posts from MongoDB with pagination
func (r *MongoPostRepository) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	return r.findPosts(ctx, bson.M{}, skip, limit)
}

func (r *MongoPostRepository) findPosts(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Post, error) {
	var posts []models.Post
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost updates the editable fields of a post in MongoDB
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id string, post *models.Post) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrPostNotFound
	}

	post.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"title":      post.Title,
			"content":    post.Content,
			"image_urls": post.ImageURLs,
			"updated_at": post.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrPostNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// AddCommentsCount atomically adjusts the comments counter of a post
func (r *MongoPostRepository) AddCommentsCount(ctx context.Context, postID string, delta int) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return ErrPostNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID},
		bson.M{"$inc": bson.M{"comments_count": delta}}, opts).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrPostNotFound
		}
		return err
	}
	clampNonNegative(ctx, r.collection, objID, r.logger, map[string]*int{
		"comments_count": &post.CommentsCount,
	})
	return nil
}

// ApplyReactionDeltas atomically applies like/dislike/bookmark counter
// deltas to a post in a single $inc and returns the resulting counts.
// Counts that would go negative are clamped to zero.
func (r *MongoPostRepository) ApplyReactionDeltas(ctx context.Context, postID string, likeDelta, dislikeDelta, bookmarkDelta int) (*models.TargetCounts, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, ErrPostNotFound
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

	var post models.Post
	if len(inc) == 0 {
		if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, ErrPostNotFound
			}
			return nil, err
		}
	} else {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$inc": inc}, opts).Decode(&post)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, ErrPostNotFound
			}
			return nil, err
		}
	}

	clampNonNegative(ctx, r.collection, objID, r.logger, map[string]*int{
		"like_count":     &post.LikeCount,
		"dislike_count":  &post.DislikeCount,
		"bookmark_count": &post.BookmarkCount,
	})

	return &models.TargetCounts{
		LikeCount:     post.LikeCount,
		DislikeCount:  post.DislikeCount,
		BookmarkCount: post.BookmarkCount,
	}, nil
}
