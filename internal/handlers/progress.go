package handlers

import (
	"net/http"

	"github.com/AnshRaj112/datapath-backend/internal/middleware"
	"github.com/AnshRaj112/datapath-backend/internal/models"
	"github.com/AnshRaj112/datapath-backend/pkg/utils"
)

// routes mount these behind middleware.RequireUser.

// ListProgress handles GET /api/progress.
func (h *Handler) ListProgress(w http.ResponseWriter, r *http.Request) error {
	rows, err := h.Progress.List(r.Context(), middleware.UserFromContext(r.Context()))
	if err != nil {
		return err
	}
	utils.RespondWithJSON(w, http.StatusOK, rows)
	return nil
}

// UpdateProgress handles POST /api/progress.
func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) error {
	var req models.ProgressUpdate
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	row, err := h.Progress.Upsert(r.Context(), middleware.UserFromContext(r.Context()), req)
	if err != nil {
		return err
	}
	utils.RespondWithJSON(w, http.StatusOK, row)
	return nil
}

// GetStats handles GET /api/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.Stats.ForUser(r.Context(), middleware.UserFromContext(r.Context()))
	if err != nil {
		return err
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
	return nil
}
