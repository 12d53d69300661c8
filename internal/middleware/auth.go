package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/AnshRaj112/datapath-backend/internal/apperr"
	"github.com/AnshRaj112/datapath-backend/internal/logging"
	"github.com/AnshRaj112/datapath-backend/internal/models"
	"github.com/AnshRaj112/datapath-backend/pkg/utils"
)

// SessionCookieName carries the session token for browser clients.
const SessionCookieName = "session_token"

type contextKey string

const userContextKey contextKey = "user"

type CurrentUserResolver interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// TokenFromRequest returns the session token from the cookie, falling back
// to an "Authorization: Bearer" header. Empty when neither is present.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > len("Bearer ") && strings.EqualFold(auth[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	return ""
}

// Authenticate resolves the request's session and stores the user, if any,
// in the request context. Requests without a live session pass through.
func Authenticate(gate CurrentUserResolver, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := gate.CurrentUser(r.Context(), TokenFromRequest(r))
			if err != nil {
				log.Error(r.Context(), "session resolve failed", "error", err, "path", r.URL.Path)
				utils.RespondWithError(w, err)
				return
			}
			if user != nil {
				r = r.WithContext(WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser rejects requests that Authenticate did not attach a user to.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			utils.RespondWithError(w, apperr.Unauthenticated("Not authenticated"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}
