package handlers

import (
	"net/http"
	"strings"

	"github.com/AnshRaj112/datapath-backend/internal/apperr"
	"github.com/AnshRaj112/datapath-backend/internal/identity"
	"github.com/AnshRaj112/datapath-backend/internal/middleware"
	"github.com/AnshRaj112/datapath-backend/internal/models"
	"github.com/AnshRaj112/datapath-backend/internal/services"
	"github.com/AnshRaj112/datapath-backend/pkg/utils"
)

// AuthResponse is returned by both session-issuing endpoints.
type AuthResponse struct {
	User         *models.User `json:"user"`
	SessionToken string       `json:"session_token"`
}

type FirebaseVerifyRequest struct {
	IDToken string `json:"idToken"`
}

// EmergentSession handles GET /api/auth/emergent/session.
func (h *Handler) EmergentSession(w http.ResponseWriter, r *http.Request) error {
	sessionID := strings.TrimSpace(r.Header.Get(identity.SessionIDHeader))
	if sessionID == "" {
		return apperr.Validation("Session ID required")
	}

	id, err := h.Emergent.Verify(r.Context(), sessionID)
	if err != nil {
		return apperr.AuthenticationFailed("Invalid session: "+detail(err), err)
	}
	return h.login(w, r, id, models.ProviderEmergent)
}

// FirebaseVerify handles POST /api/auth/firebase/verify.
func (h *Handler) FirebaseVerify(w http.ResponseWriter, r *http.Request) error {
	var req FirebaseVerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.IDToken) == "" {
		return apperr.Validation("ID token required")
	}

	id, err := h.Firebase.Verify(r.Context(), req.IDToken)
	if err != nil {
		return apperr.AuthenticationFailed("Invalid token: "+detail(err), err)
	}
	return h.login(w, r, id, models.ProviderFirebase)
}

// login finds or creates the user, issues a fresh session and sets the cookie.
func (h *Handler) login(w http.ResponseWriter, r *http.Request, id identity.Identity, provider models.AuthProvider) error {
	user, err := h.Users.ResolveOrCreate(r.Context(), id, provider)
	if err != nil {
		return err
	}
	token, err := h.Sessions.Issue(r.Context(), user.ID)
	if err != nil {
		return err
	}

	http.SetCookie(w, sessionCookie(token, int(services.SessionDuration.Seconds())))
	h.Log.Info(r.Context(), "session issued", "user_id", user.ID, "provider", string(provider))
	utils.RespondWithJSON(w, http.StatusOK, AuthResponse{User: user, SessionToken: token})
	return nil
}

// Me handles GET /api/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) error {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		return apperr.Unauthenticated("Not authenticated")
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
	return nil
}

// Logout handles POST /api/auth/logout. Only the cookie is revoked; a bearer
// header alone is ignored. A failed revoke is logged and the client is still
// logged out, leaving the session to expire on its own.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, sessionCookie("", -1))

	if c, err := r.Cookie(middleware.SessionCookieName); err == nil && c.Value != "" {
		if err := h.Sessions.Revoke(r.Context(), c.Value); err != nil {
			h.Log.Error(r.Context(), "session revoke failed", "error", err)
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.MessageResponse{Message: "Logged out successfully"})
	return nil
}

// sessionCookie builds the cross-site session cookie. A negative maxAge
// deletes it.
func sessionCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}
