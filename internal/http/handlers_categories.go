package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
)

type categoryRequest struct {
	Name  string         `json:"name"`
	Icon  string         `json:"icon"`
	Color string         `json:"color"`
	Type  core.EntryType `json:"type"`
}

type categoryResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Icon      string         `json:"icon,omitempty"`
	Color     string         `json:"color,omitempty"`
	Type      core.EntryType `json:"type"`
	CreatedAt time.Time      `json:"createdAt"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Icon:      c.Icon,
		Color:     c.Color,
		Type:      c.Type,
		CreatedAt: c.CreatedAt,
	}
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categories, err := s.repo.ListCategories(ctx, userID(ctx))
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	respondJSON(ctx, w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req categoryRequest
	if err := readJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	category := core.Category{
		UserID: userID(ctx),
		Name:   req.Name,
		Icon:   req.Icon,
		Color:  req.Color,
		Type:   req.Type,
	}
	if err := category.Validate(); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, toCategoryResponse(created))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category, err := s.repo.GetCategory(ctx, userID(ctx), r.PathValue("id"))
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, toCategoryResponse(category))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.repo.DeleteCategory(ctx, userID(ctx), r.PathValue("id")); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusNoContent, nil)
}
