package http

import (
	"net/http"
	"strconv"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
)

// categoryTotalResponse carries categoryId as a pointer so the uncategorized
// group serializes it as JSON null, mirroring transaction responses.
type categoryTotalResponse struct {
	CategoryID   *string        `json:"categoryId"`
	CategoryName string         `json:"categoryName"`
	Total        core.Money     `json:"total"`
	Type         core.EntryType `json:"type"`
}

func toCategoryTotalResponse(ct analytics.CategoryTotal) categoryTotalResponse {
	resp := categoryTotalResponse{
		CategoryName: ct.CategoryName,
		Total:        ct.Total,
		Type:         ct.Type,
	}
	if ct.CategoryID != "" {
		id := ct.CategoryID
		resp.CategoryID = &id
	}
	return resp
}

// handleMonthlyBalance returns the income/expense/net summary for one
// calendar month. Both year and month are required.
func (s *Server) handleMonthlyBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	yearStr := r.URL.Query().Get("year")
	monthStr := r.URL.Query().Get("month")
	if yearStr == "" || monthStr == "" {
		respondError(ctx, w, http.StatusBadRequest, "year and month are required")
		return
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid month")
		return
	}

	balance, err := s.aggregator.MonthlyBalance(ctx, userID(ctx), year, month)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, balance)
}

// handleCategoryTotals returns per-category sums over an explicit inclusive
// date window. Both bounds are required.
func (s *Server) handleCategoryTotals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	startStr := r.URL.Query().Get("startDate")
	endStr := r.URL.Query().Get("endDate")
	if startStr == "" || endStr == "" {
		respondError(ctx, w, http.StatusBadRequest, "startDate and endDate are required")
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

	totals, err := s.aggregator.CategoryTotals(ctx, userID(ctx), start, end)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	out := make([]categoryTotalResponse, 0, len(totals))
	for _, ct := range totals {
		out = append(out, toCategoryTotalResponse(ct))
	}
	respondJSON(ctx, w, http.StatusOK, out)
}
