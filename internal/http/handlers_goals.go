package http

import (
	"net/http"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
)

type goalRequest struct {
	Name          string     `json:"name"`
	TargetAmount  core.Money `json:"targetAmount"`
	CurrentAmount core.Money `json:"currentAmount"`
	Icon          string     `json:"icon"`
	Color         string     `json:"color"`
	TargetDate    core.Date  `json:"targetDate"`
	Completed     bool       `json:"completed"`
}

type goalResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	TargetAmount  core.Money `json:"targetAmount"`
	CurrentAmount core.Money `json:"currentAmount"`
	Icon          string     `json:"icon,omitempty"`
	Color         string     `json:"color,omitempty"`
	TargetDate    core.Date  `json:"targetDate"`
	Completed     bool       `json:"completed"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func toGoalResponse(g core.SavingsGoal) goalResponse {
	return goalResponse{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Icon:          g.Icon,
		Color:         g.Color,
		TargetDate:    g.TargetDate,
		Completed:     g.Completed,
		CreatedAt:     g.CreatedAt,
	}
}

func (req goalRequest) toDomain(userID string) core.SavingsGoal {
	return core.SavingsGoal{
		UserID:        userID,
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Icon:          req.Icon,
		Color:         req.Color,
		TargetDate:    req.TargetDate,
		Completed:     req.Completed,
	}
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	goals, err := s.repo.ListGoals(ctx, userID(ctx))
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	respondJSON(ctx, w, http.StatusOK, out)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req goalRequest
	if err := readJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	goal := req.toDomain(userID(ctx))
	if err := goal.Validate(); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.repo.CreateGoal(ctx, goal)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, toGoalResponse(created))
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	goal, err := s.repo.GetGoal(ctx, userID(ctx), r.PathValue("id"))
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, toGoalResponse(goal))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req goalRequest
	if err := readJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	goal := req.toDomain(userID(ctx))
	goal.ID = r.PathValue("id")
	if err := goal.Validate(); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.repo.UpdateGoal(ctx, goal); err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	updated, err := s.repo.GetGoal(ctx, userID(ctx), goal.ID)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, toGoalResponse(updated))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.repo.DeleteGoal(ctx, userID(ctx), r.PathValue("id")); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusNoContent, nil)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	goal, err := s.repo.GetGoal(ctx, userID(ctx), r.PathValue("id"))
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, analytics.GoalStatus(goal, core.Today()))
}
