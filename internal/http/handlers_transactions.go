package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
)

// transactionRequest carries categoryId as a pointer so a JSON null and an
// absent field both mean "uncategorized".
type transactionRequest struct {
	CategoryID    *string        `json:"categoryId"`
	Description   string         `json:"description"`
	Amount        core.Money     `json:"amount"`
	Type          core.EntryType `json:"type"`
	PaymentMethod string         `json:"paymentMethod"`
	Date          core.Date      `json:"date"`
}

type transactionResponse struct {
	ID            string         `json:"id"`
	CategoryID    *string        `json:"categoryId"`
	Description   string         `json:"description"`
	Amount        core.Money     `json:"amount"`
	Type          core.EntryType `json:"type"`
	PaymentMethod string         `json:"paymentMethod,omitempty"`
	Date          core.Date      `json:"date"`
	CreatedAt     time.Time      `json:"createdAt"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:            t.ID,
		Description:   t.Description,
		Amount:        t.Amount,
		Type:          t.Type,
		PaymentMethod: t.PaymentMethod,
		Date:          t.Date,
		CreatedAt:     t.CreatedAt,
	}
	if t.CategoryID != "" {
		id := t.CategoryID
		resp.CategoryID = &id
	}
	return resp
}

func (req transactionRequest) toDomain(userID string) core.Transaction {
	t := core.Transaction{
		UserID:        userID,
		Description:   req.Description,
		Amount:        req.Amount,
		Type:          req.Type,
		PaymentMethod: req.PaymentMethod,
		Date:          req.Date,
	}
	if req.CategoryID != nil {
		t.CategoryID = *req.CategoryID
	}
	return t
}

// handleListTransactions returns the user's transactions, optionally limited
// to an inclusive date window via startDate/endDate query parameters. Both
// bounds must be present together.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var window *core.DateRange
	startStr := r.URL.Query().Get("startDate")
	endStr := r.URL.Query().Get("endDate")
	if startStr != "" || endStr != "" {
		if startStr == "" || endStr == "" {
			respondError(ctx, w, http.StatusBadRequest, "startDate and endDate must be provided together")
			return
		}
		start, err := core.ParseDate(startStr)
		if err != nil {
			respondError(ctx, w, http.StatusBadRequest, "invalid startDate")
			return
		}
		end, err := core.ParseDate(endStr)
		if err != nil {
			respondError(ctx, w, http.StatusBadRequest, "invalid endDate")
			return
		}
		window = &core.DateRange{Start: start, End: end}
		if err := window.Validate(); err != nil {
			respondError(ctx, w, http.StatusBadRequest, err.Error())
			return
		}
	}

	txs, err := s.repo.ListTransactions(ctx, userID(ctx), window)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	respondJSON(ctx, w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req transactionRequest
	if err := readJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	tx := req.toDomain(userID(ctx))
	if err := tx.Validate(); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.txService.Create(ctx, tx)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tx, err := s.repo.GetTransaction(ctx, userID(ctx), r.PathValue("id"))
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req transactionRequest
	if err := readJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	tx := req.toDomain(userID(ctx))
	tx.ID = r.PathValue("id")
	if err := tx.Validate(); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.txService.Update(ctx, tx); err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	updated, err := s.repo.GetTransaction(ctx, userID(ctx), tx.ID)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.txService.Delete(ctx, userID(ctx), r.PathValue("id")); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusNoContent, nil)
}
