package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/datapath-backend/internal/models"
)

// maxProgressRows bounds a single listing.
const maxProgressRows = 1000

type ProgressRepository struct {
	col *mongo.Collection
}

func NewProgressRepository(db *mongo.Database) *ProgressRepository {
	return &ProgressRepository{col: db.Collection(ProgressCollection)}
}

func (r *ProgressRepository) FindByUserAndItem(ctx context.Context, userID, itemID string) (*models.UserProgress, error) {
	var p models.UserProgress
	err := r.col.FindOne(ctx, bson.M{"user_id": userID, "item_id": itemID}).Decode(&p)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return &p, nil
}

// Insert fails with ErrDuplicate when a row for (user_id, item_id) exists.
func (r *ProgressRepository) Insert(ctx context.Context, p *models.UserProgress) error {
	_, err := r.col.InsertOne(ctx, p)
	return mapWriteErr(err)
}

// Apply updates a row and returns it. The timestamps go through $ifNull so
// a value already stored is kept even when another writer set it first.
// Client strings are wrapped in $literal since the update is a pipeline.
func (r *ProgressRepository) Apply(ctx context.Context, id string, patch models.ProgressPatch) (*models.UserProgress, error) {
	set := bson.D{
		{Key: "status", Value: bson.M{"$literal": patch.Status}},
		{Key: "progress_percentage", Value: patch.ProgressPercentage},
		{Key: "notes", Value: bson.M{"$literal": patch.Notes}},
		{Key: "updated_at", Value: patch.UpdatedAt},
	}
	if patch.StartedAt != nil {
		set = append(set, bson.E{Key: "started_at", Value: bson.M{"$ifNull": bson.A{"$started_at", *patch.StartedAt}}})
	}
	if patch.CompletedAt != nil {
		set = append(set, bson.E{Key: "completed_at", Value: bson.M{"$ifNull": bson.A{"$completed_at", *patch.CompletedAt}}})
	}

	update := mongo.Pipeline{{{Key: "$set", Value: set}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.UserProgress
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&p); err != nil {
		return nil, mapFindErr(err)
	}
	return &p, nil
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]models.UserProgress, error) {
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, options.Find().SetLimit(maxProgressRows))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	rows := []models.UserProgress{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
