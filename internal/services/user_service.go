package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/AnshRaj112/datapath-backend/internal/apperr"
	"github.com/AnshRaj112/datapath-backend/internal/identity"
	"github.com/AnshRaj112/datapath-backend/internal/logging"
	"github.com/AnshRaj112/datapath-backend/internal/models"
	"github.com/AnshRaj112/datapath-backend/internal/repository"
)

type UserRecords interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) error
}

// UserDirectory maps verified identities to users, keyed by email.
type UserDirectory struct {
	users UserRecords
	log   logging.Logger
	now   func() time.Time
}

func NewUserDirectory(users UserRecords, log logging.Logger) *UserDirectory {
	return &UserDirectory{
		users: users,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ResolveOrCreate returns the user for id.Email, creating it on first sight.
// An existing user is returned as stored: profile fields from later logins
// are ignored.
func (d *UserDirectory) ResolveOrCreate(ctx context.Context, id identity.Identity, provider models.AuthProvider) (*models.User, error) {
	existing, err := d.users.FindByEmail(ctx, id.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal("load user", err)
	}

	user := &models.User{
		ID:            uuid.NewString(),
		Email:         id.Email,
		Name:          id.Name,
		Picture:       id.Picture,
		AuthProvider:  provider,
		EnrolledPaths: []string{},
		Preferences:   map[string]interface{}{},
		CreatedAt:     d.now(),
	}

	err = d.users.Insert(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		// A concurrent first login won; its record is the user.
		existing, err := d.users.FindByEmail(ctx, id.Email)
		if err != nil {
			return nil, apperr.Internal("load user", err)
		}
		return existing, nil
	}
	if err != nil {
		return nil, apperr.Internal("create user", err)
	}

	d.log.Info(ctx, "user created", "user_id", user.ID, "provider", string(provider))
	return user, nil
}
