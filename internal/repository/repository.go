// Package repository persists the backend's documents in MongoDB.
package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate document")
)

// Collection names.
const (
	UsersCollection    = "users"
	SessionsCollection = "sessions"
	ProgressCollection = "progress"
	TopicsCollection   = "topics"
	ProjectsCollection = "projects"
)

func mapFindErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func mapWriteErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}
