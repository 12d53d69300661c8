package services

import (
	"context"

	"github.com/AnshRaj112/datapath-backend/internal/apperr"
	"github.com/AnshRaj112/datapath-backend/internal/models"
)

type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// AuthGate turns a request credential into a user. It never fails for a
// missing, unknown or expired credential; those resolve to no user.
type AuthGate struct {
	sessions SessionResolver
}

func NewAuthGate(sessions SessionResolver) *AuthGate {
	return &AuthGate{sessions: sessions}
}

// CurrentUser returns (nil, nil) when token does not name a live session.
// A non-nil error is an infrastructure failure.
func (g *AuthGate) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	user, err := g.sessions.Resolve(ctx, token)
	if apperr.Is(err, apperr.KindUnauthenticated) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
