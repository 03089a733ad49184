package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureMongoIndexes creates the secondary indexes the repositories
// rely on: comment lookup by (post_id, parent_comment_id) and the
// unique reaction identity (user_id, target_type, target_id).
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("comments").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "parent_comment_id", Value: 1}}},
		{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create comment indexes: %w", err)
	}

	_, err = db.Collection("reactions").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "target_type", Value: 1},
			{Key: "target_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create reaction index: %w", err)
	}
	return nil
}

// clampNonNegative repairs counter fields that went below zero. The
// repair uses $max so it stays atomic with respect to concurrent $inc
// writers; the in-memory values are zeroed so callers never see a
// negative count.
func clampNonNegative(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, logger *zap.Logger, counts map[string]*int) {
	fix := bson.M{}
	for field, value := range counts {
		if *value < 0 {
			logger.Warn("counter underflow clamped to zero",
				zap.String("collection", coll.Name()),
				zap.String("id", id.Hex()),
				zap.String("field", field),
				zap.Int("value", *value))
			fix[field] = 0
			*value = 0
		}
	}
	if len(fix) == 0 {
		return
	}
	if _, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$max": fix}); err != nil {
		logger.Error("failed to repair clamped counter",
			zap.String("collection", coll.Name()),
			zap.String("id", id.Hex()),
			zap.Error(err))
	}
}
