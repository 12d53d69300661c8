package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/datapath-backend/internal/models"
	"github.com/AnshRaj112/datapath-backend/pkg/utils"
)

func catalogFilter(r *http.Request) models.CatalogFilter {
	q := r.URL.Query()
	return models.CatalogFilter{
		Difficulty: q.Get("difficulty"),
		CareerPath: q.Get("career_path"),
	}
}

func (h *Handler) ListTopics(w http.ResponseWriter, r *http.Request) error {
	topics, err := h.Catalog.ListTopics(r.Context(), catalogFilter(r))
	if err != nil {
		return err
	}
	utils.RespondWithJSON(w, http.StatusOK, topics)
	return nil
}

func (h *Handler) GetTopic(w http.ResponseWriter, r *http.Request) error {
	topic, err := h.Catalog.GetTopic(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	utils.RespondWithJSON(w, http.StatusOK, topic)
	return nil
}

func (h *Handler) CreateTopic(w http.ResponseWriter, r *http.Request) error {
	var in models.TopicInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	topic, err := h.Catalog.CreateTopic(r.Context(), in)
	if err != nil {
		return err
	}
	utils.RespondWithJSON(w, http.StatusOK, topic)
	return nil
}

func (h *Handler) UpdateTopic(w http.ResponseWriter, r *http.Request) error {
	var in models.TopicInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	topic, err := h.Catalog.UpdateTopic(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		return err
	}
	utils.RespondWithJSON(w, http.StatusOK, topic)
	return nil
}

func (h *Handler) DeleteTopic(w http.ResponseWriter, r *http.Request) error {
	if err := h.Catalog.DeleteTopic(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.MessageResponse{Message: "Topic deleted"})
	return nil
}

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) error {
	projects, err := h.Catalog.ListProjects(r.Context(), catalogFilter(r))
	if err != nil {
		return err
	}
	utils.RespondWithJSON(w, http.StatusOK, projects)
	return nil
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) error {
	project, err := h.Catalog.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	utils.RespondWithJSON(w, http.StatusOK, project)
	return nil
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) error {
	var in models.ProjectInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	project, err := h.Catalog.CreateProject(r.Context(), in)
	if err != nil {
		return err
	}
	utils.RespondWithJSON(w, http.StatusOK, project)
	return nil
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) error {
	var in models.ProjectInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	project, err := h.Catalog.UpdateProject(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		return err
	}
	utils.RespondWithJSON(w, http.StatusOK, project)
	return nil
}

// Search handles GET /api/search?q=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) error {
	result, err := h.Catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		return err
	}
	utils.RespondWithJSON(w, http.StatusOK, result)
	return nil
}
