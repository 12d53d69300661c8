package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AnshRaj112/datapath-backend/internal/apperr"
	"github.com/AnshRaj112/datapath-backend/internal/identity"
	"github.com/AnshRaj112/datapath-backend/internal/logging"
	"github.com/AnshRaj112/datapath-backend/internal/models"
	"github.com/AnshRaj112/datapath-backend/pkg/utils"
)

type UserDirectory interface {
	ResolveOrCreate(ctx context.Context, id identity.Identity, provider models.AuthProvider) (*models.User, error)
}

type SessionIssuer interface {
	Issue(ctx context.Context, userID string) (string, error)
	Revoke(ctx context.Context, token string) error
}

type ProgressTracker interface {
	Upsert(ctx context.Context, user *models.User, u models.ProgressUpdate) (*models.UserProgress, error)
	List(ctx context.Context, user *models.User) ([]models.UserProgress, error)
}

type StatsReporter interface {
	ForUser(ctx context.Context, user *models.User) (*models.Stats, error)
}

type Catalog interface {
	ListTopics(ctx context.Context, f models.CatalogFilter) ([]models.Topic, error)
	GetTopic(ctx context.Context, id string) (*models.Topic, error)
	CreateTopic(ctx context.Context, in models.TopicInput) (*models.Topic, error)
	UpdateTopic(ctx context.Context, id string, in models.TopicInput) (*models.Topic, error)
	DeleteTopic(ctx context.Context, id string) error

	ListProjects(ctx context.Context, f models.CatalogFilter) ([]models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	CreateProject(ctx context.Context, in models.ProjectInput) (*models.Project, error)
	UpdateProject(ctx context.Context, id string, in models.ProjectInput) (*models.Project, error)

	Search(ctx context.Context, q string) (*models.SearchResult, error)
}

// Handler serves the HTTP API. Every field is required.
type Handler struct {
	Emergent identity.Verifier
	Firebase identity.Verifier
	Users    UserDirectory
	Sessions SessionIssuer
	Progress ProgressTracker
	Stats    StatsReporter
	Catalog  Catalog
	Log      logging.Logger
}

// AppHandler is a handler that reports failure by returning an error.
type AppHandler func(w http.ResponseWriter, r *http.Request) error

// Wrap adapts fn, writing any returned error as a JSON error response.
func (h *Handler) Wrap(fn AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		if apperr.KindOf(err) == apperr.KindInternal {
			h.Log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		} else {
			h.Log.Debug(r.Context(), "request rejected", "method", r.Method, "path", r.URL.Path, "error", err)
		}
		utils.RespondWithError(w, err)
	}
}

var errInvalidBody = apperr.Validation("Invalid request body")

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidBody
	}
	return nil
}

// detail returns the user-facing part of err.
func detail(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return err.Error()
}

// Root handles GET /api/.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "DataPath Hub API",
		"version": "1.0.0",
	})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(utils.HeaderContentType, "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}
