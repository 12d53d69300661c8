package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/AnshRaj112/datapath-backend/internal/apperr"
	"github.com/AnshRaj112/datapath-backend/internal/logging"
	"github.com/AnshRaj112/datapath-backend/internal/models"
	"github.com/AnshRaj112/datapath-backend/internal/repository"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour

	notAuthenticated = "Not authenticated"
)

type SessionRecords interface {
	Insert(ctx context.Context, s *models.Session) error
	FindByToken(ctx context.Context, token string) (*models.Session, error)
	DeleteByToken(ctx context.Context, token string) error
}

type UserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// SessionStore issues, resolves and revokes opaque session tokens.
// Expired sessions are not swept; they are deleted on the next resolve.
type SessionStore struct {
	sessions SessionRecords
	users    UserLookup
	cache    SessionCache // optional
	cacheTTL time.Duration
	log      logging.Logger
	now      func() time.Time
}

type SessionStoreOption func(*SessionStore)

// WithSessionCache puts a read-through cache in front of the session records.
func WithSessionCache(c SessionCache, ttl time.Duration) SessionStoreOption {
	return func(s *SessionStore) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

func WithSessionClock(now func() time.Time) SessionStoreOption {
	return func(s *SessionStore) { s.now = now }
}

func NewSessionStore(sessions SessionRecords, users UserLookup, log logging.Logger, opts ...SessionStoreOption) *SessionStore {
	s := &SessionStore{
		sessions: sessions,
		users:    users,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates a session for userID and returns its token. A user may hold
// any number of concurrent sessions.
func (s *SessionStore) Issue(ctx context.Context, userID string) (string, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", apperr.Internal("generate session token", err)
	}

	now := s.now()
	session := &models.Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		SessionToken: token,
		ExpiresAt:    now.Add(SessionDuration),
		CreatedAt:    now,
	}
	if err := s.sessions.Insert(ctx, session); err != nil {
		return "", apperr.Internal("store session", err)
	}
	return token, nil
}

// Resolve returns the user owning token. Unknown, expired and orphaned
// sessions are apperr.KindUnauthenticated; store failures are internal.
func (s *SessionStore) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperr.Unauthenticated(notAuthenticated)
	}

	userID, expiresAt, err := s.lookup(ctx, token)
	if err != nil {
		return nil, err
	}

	if expiresAt.Before(s.now()) {
		s.reap(ctx, token)
		return nil, apperr.Unauthenticated(notAuthenticated)
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Warn(ctx, "session owner missing", "user_id", userID)
		return nil, apperr.Unauthenticated(notAuthenticated)
	}
	if err != nil {
		return nil, apperr.Internal("load session user", err)
	}
	return user, nil
}

// lookup finds the session's owner and expiry, consulting the cache first.
func (s *SessionStore) lookup(ctx context.Context, token string) (string, time.Time, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, token)
		if err != nil {
			s.log.Warn(ctx, "session cache read failed", "error", err)
		} else if ok {
			return cached.UserID, cached.ExpiresAt, nil
		}
	}

	session, err := s.sessions.FindByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return "", time.Time{}, apperr.Unauthenticated(notAuthenticated)
	}
	if err != nil {
		return "", time.Time{}, apperr.Internal("load session", err)
	}

	if s.cache != nil && !session.Expired(s.now()) {
		ttl := session.ExpiresAt.Sub(s.now())
		if s.cacheTTL > 0 && s.cacheTTL < ttl {
			ttl = s.cacheTTL
		}
		entry := CachedSession{UserID: session.UserID, ExpiresAt: session.ExpiresAt}
		if err := s.cache.Set(ctx, token, entry, ttl); err != nil {
			s.log.Warn(ctx, "session cache write failed", "error", err)
		}
	}
	return session.UserID, session.ExpiresAt, nil
}

// reap deletes an expired session. Failures are logged; the caller is
// unauthenticated either way and the next resolve retries the delete.
func (s *SessionStore) reap(ctx context.Context, token string) {
	if s.cache != nil {
		if err := s.cache.Delete(ctx, token); err != nil {
			s.log.Warn(ctx, "session cache delete failed", "error", err)
		}
	}
	if err := s.sessions.DeleteByToken(ctx, token); err != nil {
		s.log.Error(ctx, "failed to reap expired session", "error", err)
	}
}

// Revoke deletes the session holding token. Unknown tokens are not an error.
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, token); err != nil {
			s.log.Warn(ctx, "session cache delete failed", "error", err)
		}
	}
	if err := s.sessions.DeleteByToken(ctx, token); err != nil {
		return apperr.Internal("delete session", err)
	}
	return nil
}

func newSessionToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}
