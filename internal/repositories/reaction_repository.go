package repositories

import (
	"context"
	"time"

	"github.com/shafin-dev/localhub/backend/internal/apperrors"
	"github.com/shafin-dev/localhub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReactionRepository defines the interface for reaction records.
//
// The two Transition methods are compare-and-set: they only apply when
// the record still holds the expected previous value, and report
// apperrors.ErrConcurrencyConflict when a concurrent toggle got there
// first. Reaction records are never deleted; a withdrawn like is
// state "none", which keeps an anchor row for future CAS transitions.
type ReactionRepository interface {
	GetReaction(ctx context.Context, userID uint, targetType models.TargetType, targetID string) (*models.Reaction, error)
	GetReactionsForTargets(ctx context.Context, userID uint, targetType models.TargetType, targetIDs []string) (map[string]models.Reaction, error)
	TransitionLikeState(ctx context.Context, userID uint, targetType models.TargetType, targetID string, from, to models.LikeState) error
	TransitionBookmark(ctx context.Context, userID uint, targetType models.TargetType, targetID string, from, to bool) error
}

// MongoReactionRepository implements ReactionRepository for MongoDB
type MongoReactionRepository struct {
	collection *mongo.Collection
}

// NewMongoReactionRepository creates a new MongoReactionRepository
func NewMongoReactionRepository(db *mongo.Database) *MongoReactionRepository {
	return &MongoReactionRepository{collection: db.Collection("reactions")}
}

// GetReaction retrieves one user's reaction record for a target.
// Returns (nil, nil) when no record exists yet.
func (r *MongoReactionRepository) GetReaction(ctx context.Context, userID uint, targetType models.TargetType, targetID string) (*models.Reaction, error) {
	objID, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return nil, apperrors.NotFoundf("target %q", targetID)
	}

	var reaction models.Reaction
	err = r.collection.FindOne(ctx, bson.M{
		"user_id":     userID,
		"target_type": targetType,
		"target_id":   objID,
	}).Decode(&reaction)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &reaction, nil
}

// GetReactionsForTargets fetches one user's reactions across many
// targets in a single query, keyed by target ID hex. Targets without a
// record are absent from the map.
func (r *MongoReactionRepository) GetReactionsForTargets(ctx context.Context, userID uint, targetType models.TargetType, targetIDs []string) (map[string]models.Reaction, error) {
	result := make(map[string]models.Reaction)
	if len(targetIDs) == 0 {
		return result, nil
	}

	objIDs := make([]primitive.ObjectID, 0, len(targetIDs))
	for _, id := range targetIDs {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objIDs = append(objIDs, objID)
	}

	cursor, err := r.collection.Find(ctx, bson.M{
		"user_id":     userID,
		"target_type": targetType,
		"target_id":   bson.M{"$in": objIDs},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reactions []models.Reaction
	if err = cursor.All(ctx, &reactions); err != nil {
		return nil, err
	}
	for _, reaction := range reactions {
		result[reaction.TargetID.Hex()] = reaction
	}
	return result, nil
}

// TransitionLikeState moves the like-axis from one state to another,
// guarded by the previous state. The record is upserted only when
// transitioning from "none" (first reaction); in every other case a
// missing match means a concurrent toggle won the race.
func (r *MongoReactionRepository) TransitionLikeState(ctx context.Context, userID uint, targetType models.TargetType, targetID string, from, to models.LikeState) error {
	objID, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return apperrors.NotFoundf("target %q", targetID)
	}

	now := time.Now()
	filter := bson.M{
		"user_id":     userID,
		"target_type": targetType,
		"target_id":   objID,
		"state":       from,
	}
	update := bson.M{
		"$set":         bson.M{"state": to, "updated_at": now},
		"$setOnInsert": bson.M{"bookmarked": false, "created_at": now},
	}
	opts := options.Update().SetUpsert(from == models.StateNone)

	res, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		// The unique (user, target_type, target_id) index rejects the
		// upsert when a record already exists in a different state.
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrConcurrencyConflict
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return apperrors.ErrConcurrencyConflict
	}
	return nil
}

// TransitionBookmark flips the bookmark flag, guarded by its previous
// value. Upserts only on the first bookmark of a target.
func (r *MongoReactionRepository) TransitionBookmark(ctx context.Context, userID uint, targetType models.TargetType, targetID string, from, to bool) error {
	objID, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return apperrors.NotFoundf("target %q", targetID)
	}

	now := time.Now()
	filter := bson.M{
		"user_id":     userID,
		"target_type": targetType,
		"target_id":   objID,
		"bookmarked":  from,
	}
	update := bson.M{
		"$set":         bson.M{"bookmarked": to, "updated_at": now},
		"$setOnInsert": bson.M{"state": models.StateNone, "created_at": now},
	}
	opts := options.Update().SetUpsert(!from)

	res, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrConcurrencyConflict
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return apperrors.ErrConcurrencyConflict
	}
	return nil
}
