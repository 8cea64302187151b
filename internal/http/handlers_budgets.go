package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
)

type budgetRequest struct {
	CategoryID *string           `json:"categoryId"`
	Name       string            `json:"name"`
	Amount     core.Money        `json:"amount"`
	Period     core.BudgetPeriod `json:"period"`
	StartDate  core.Date         `json:"startDate"`
	EndDate    core.Date         `json:"endDate"`
}

type budgetResponse struct {
	ID         string            `json:"id"`
	CategoryID *string           `json:"categoryId"`
	Name       string            `json:"name"`
	Amount     core.Money        `json:"amount"`
	Period     core.BudgetPeriod `json:"period"`
	StartDate  core.Date         `json:"startDate"`
	EndDate    core.Date         `json:"endDate"`
	CreatedAt  time.Time         `json:"createdAt"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	resp := budgetResponse{
		ID:        b.ID,
		Name:      b.Name,
		Amount:    b.Amount,
		Period:    b.Period,
		StartDate: b.StartDate,
		EndDate:   b.EndDate,
		CreatedAt: b.CreatedAt,
	}
	if b.CategoryID != "" {
		id := b.CategoryID
		resp.CategoryID = &id
	}
	return resp
}

func (req budgetRequest) toDomain(userID string) core.Budget {
	b := core.Budget{
		UserID:    userID,
		Name:      req.Name,
		Amount:    req.Amount,
		Period:    req.Period,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if req.CategoryID != nil {
		b.CategoryID = *req.CategoryID
	}
	return b
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	budgets, err := s.repo.ListBudgets(ctx, userID(ctx))
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}
	respondJSON(ctx, w, http.StatusOK, out)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req budgetRequest
	if err := readJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	budget := req.toDomain(userID(ctx))
	if err := budget.Validate(); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.repo.CreateBudget(ctx, budget)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, toBudgetResponse(created))
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	budget, err := s.repo.GetBudget(ctx, userID(ctx), r.PathValue("id"))
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, toBudgetResponse(budget))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req budgetRequest
	if err := readJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	budget := req.toDomain(userID(ctx))
	budget.ID = r.PathValue("id")
	if err := budget.Validate(); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.repo.UpdateBudget(ctx, budget); err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	updated, err := s.repo.GetBudget(ctx, userID(ctx), budget.ID)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, toBudgetResponse(updated))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.repo.DeleteBudget(ctx, userID(ctx), r.PathValue("id")); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusNoContent, nil)
}

// handleBudgetProgress evaluates spending against the budget's limit for the
// period window containing today.
func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	budget, err := s.repo.GetBudget(ctx, userID(ctx), r.PathValue("id"))
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	progress, err := s.aggregator.BudgetProgress(ctx, budget, core.Today())
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, progress)
}
