package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on. The unique
// ones back the one-user-per-email, one-session-per-token and
// one-progress-row-per-(user, item) rules.
// Called on startup from main after Mongo has connected.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("uniq_email").SetUnique(true),
			},
		},
		SessionsCollection: {
			{
				Keys:    bson.D{{Key: "session_token", Value: 1}},
				Options: options.Index().SetName("uniq_session_token").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}},
				Options: options.Index().SetName("idx_user_id"),
			},
		},
		ProgressCollection: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "item_id", Value: 1}},
				Options: options.Index().SetName("uniq_user_item").SetUnique(true),
			},
		},
		TopicsCollection: {
			{
				Keys:    bson.D{{Key: "order", Value: 1}},
				Options: options.Index().SetName("idx_order"),
			},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}
	return nil
}
