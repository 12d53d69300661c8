package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AnshRaj112/datapath-backend/internal/models"
)

type SessionRepository struct {
	col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{col: db.Collection(SessionsCollection)}
}

func (r *SessionRepository) Insert(ctx context.Context, s *models.Session) error {
	_, err := r.col.InsertOne(ctx, s)
	return mapWriteErr(err)
}

func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	var s models.Session
	if err := r.col.FindOne(ctx, bson.M{"session_token": token}).Decode(&s); err != nil {
		return nil, mapFindErr(err)
	}
	return &s, nil
}

// DeleteByToken removes the session holding token. Deleting a missing
// session is not an error.
func (r *SessionRepository) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"session_token": token})
	return err
}
