package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"fintrack/internal/analytics"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

const testUserHeader = "X-User-ID"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}

	cfg := &config.Config{
		Port:              "0",
		UserIDHeader:      testUserHeader,
		RequestsPerMinute: 10000,
	}
	txService := services.NewTransactionService(repo, nil)
	srv := NewServer(cfg, repo, txService, analytics.New(repo))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		txService.Close()
	})
	return ts
}

func doRequest(t *testing.T, ts *httptest.Server, method, path, user string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.URL+path, buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if user != "" {
		req.Header.Set(testUserHeader, user)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, data
}

func decodeInto(t *testing.T, data []byte, dst any) {
	t.Helper()
	if err := json.Unmarshal(data, dst); err != nil {
		t.Fatalf("decode response %s: %v", data, err)
	}
}

func createTransaction(t *testing.T, ts *httptest.Server, user string, body map[string]any) map[string]any {
	t.Helper()
	resp, data := doRequest(t, ts, http.MethodPost, "/api/transactions", user, body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create transaction: got %d: %s", resp.StatusCode, data)
	}
	var out map[string]any
	decodeInto(t, data, &out)
	return out
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doRequest(t, ts, http.MethodGet, "/api/transactions", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("got %d, want 401", resp.StatusCode)
	}

	// Health endpoints stay open.
	resp, _ = doRequest(t, ts, http.MethodGet, "/healthz", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: got %d, want 200", resp.StatusCode)
	}
	resp, _ = doRequest(t, ts, http.MethodGet, "/readyz", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz: got %d, want 200", resp.StatusCode)
	}
}

func TestTransactionEndpoints(t *testing.T) {
	ts := newTestServer(t)

	created := createTransaction(t, ts, "u1", map[string]any{
		"description": "Groceries",
		"amount":      "42.50",
		"type":        "expense",
		"date":        "2025-06-15",
		"categoryId":  nil,
	})
	if created["categoryId"] != nil {
		t.Fatalf("uncategorized transaction must report null categoryId, got %v", created["categoryId"])
	}
	if created["amount"] != "42.50" {
		t.Fatalf("amount: got %v, want \"42.50\"", created["amount"])
	}
	id := created["id"].(string)

	// Numeric amounts are accepted too.
	createTransaction(t, ts, "u1", map[string]any{
		"description": "Coffee",
		"amount":      3.5,
		"type":        "expense",
		"date":        "2025-06-16",
	})

	resp, data := doRequest(t, ts, http.MethodGet, "/api/transactions", "u1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: got %d: %s", resp.StatusCode, data)
	}
	var list []map[string]any
	decodeInto(t, data, &list)
	if len(list) != 2 {
		t.Fatalf("got %d transactions, want 2", len(list))
	}

	// Another user sees nothing.
	resp, data = doRequest(t, ts, http.MethodGet, "/api/transactions/"+id, "u2", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("cross-user get: got %d: %s", resp.StatusCode, data)
	}

	// Validation failures come back as 400.
	resp, data = doRequest(t, ts, http.MethodPost, "/api/transactions", "u1", map[string]any{
		"description": "bad",
		"amount":      "0",
		"type":        "expense",
		"date":        "2025-06-15",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("zero amount: got %d: %s", resp.StatusCode, data)
	}

	resp, _ = doRequest(t, ts, http.MethodDelete, "/api/transactions/"+id, "u1", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: got %d", resp.StatusCode)
	}
	resp, _ = doRequest(t, ts, http.MethodDelete, "/api/transactions/"+id, "u1", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("double delete: got %d", resp.StatusCode)
	}
}

func TestMonthlyBalanceEndpoint(t *testing.T) {
	ts := newTestServer(t)

	createTransaction(t, ts, "u1", map[string]any{
		"description": "Salary", "amount": "3000.00", "type": "income", "date": "2025-06-01",
	})
	createTransaction(t, ts, "u1", map[string]any{
		"description": "Rent", "amount": "1200.00", "type": "expense", "date": "2025-06-05",
	})
	// Outside the month.
	createTransaction(t, ts, "u1", map[string]any{
		"description": "Old rent", "amount": "1200.00", "type": "expense", "date": "2025-05-31",
	})

	resp, data := doRequest(t, ts, http.MethodGet, "/api/analytics/monthly-balance?year=2025&month=6", "u1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got %d: %s", resp.StatusCode, data)
	}
	var balance struct {
		Income   string `json:"income"`
		Expenses string `json:"expenses"`
		Balance  string `json:"balance"`
	}
	decodeInto(t, data, &balance)
	if balance.Income != "3000.00" || balance.Expenses != "1200.00" || balance.Balance != "1800.00" {
		t.Fatalf("got %+v", balance)
	}

	// Both parameters are required, none is defaulted.
	for _, path := range []string{
		"/api/analytics/monthly-balance",
		"/api/analytics/monthly-balance?year=2025",
		"/api/analytics/monthly-balance?month=6",
		"/api/analytics/monthly-balance?year=2025&month=13",
		"/api/analytics/monthly-balance?year=2025&month=abc",
	} {
		resp, data := doRequest(t, ts, http.MethodGet, path, "u1", nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: got %d: %s", path, resp.StatusCode, data)
		}
	}
}

func TestCategoryTotalsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, data := doRequest(t, ts, http.MethodPost, "/api/categories", "u1", map[string]any{
		"name": "Food", "type": "expense",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create category: got %d: %s", resp.StatusCode, data)
	}
	var cat map[string]any
	decodeInto(t, data, &cat)
	catID := cat["id"].(string)

	createTransaction(t, ts, "u1", map[string]any{
		"description": "Groceries", "amount": "100.00", "type": "expense",
		"date": "2025-06-10", "categoryId": catID,
	})
	createTransaction(t, ts, "u1", map[string]any{
		"description": "Cash", "amount": "20.00", "type": "income", "date": "2025-06-11",
	})

	resp, data = doRequest(t, ts, http.MethodGet,
		"/api/analytics/category-totals?startDate=2025-06-01&endDate=2025-06-30", "u1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got %d: %s", resp.StatusCode, data)
	}
	var totals []struct {
		CategoryID   *string `json:"categoryId"`
		CategoryName string  `json:"categoryName"`
		Total        string  `json:"total"`
		Type         string  `json:"type"`
	}
	decodeInto(t, data, &totals)
	if len(totals) != 2 {
		t.Fatalf("got %d groups, want 2", len(totals))
	}
	if totals[0].CategoryName != "Food" || totals[0].Total != "100.00" {
		t.Fatalf("largest group first: got %+v", totals[0])
	}
	if totals[0].CategoryID == nil || *totals[0].CategoryID != catID {
		t.Fatalf("categoryId: got %v, want %s", totals[0].CategoryID, catID)
	}
	if totals[1].CategoryName != analytics.UncategorizedName || totals[1].Type != "income" {
		t.Fatalf("got %+v", totals[1])
	}
	if totals[1].CategoryID != nil {
		t.Fatalf("uncategorized group must carry a null categoryId, got %q", *totals[1].CategoryID)
	}
	// A nil pointer also decodes from an absent key, so check the raw body.
	if !bytes.Contains(data, []byte(`"categoryId"`)) {
		t.Fatalf("response missing categoryId key: %s", data)
	}

	// An explicit window is mandatory.
	for _, path := range []string{
		"/api/analytics/category-totals",
		"/api/analytics/category-totals?startDate=2025-06-01",
		"/api/analytics/category-totals?startDate=2025-06-30&endDate=2025-06-01",
	} {
		resp, data := doRequest(t, ts, http.MethodGet, path, "u1", nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: got %d: %s", path, resp.StatusCode, data)
		}
	}
}

func TestBudgetProgressEndpoint(t *testing.T) {
	ts := newTestServer(t)
	today := core.Today()

	resp, data := doRequest(t, ts, http.MethodPost, "/api/budgets", "u1", map[string]any{
		"name":      "Monthly spending",
		"amount":    "1000.00",
		"period":    "monthly",
		"startDate": "2000-01-01",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create budget: got %d: %s", resp.StatusCode, data)
	}
	var budget map[string]any
	decodeInto(t, data, &budget)

	createTransaction(t, ts, "u1", map[string]any{
		"description": "Big purchase", "amount": "850.00", "type": "expense",
		"date": today.String(),
	})

	path := fmt.Sprintf("/api/budgets/%s/progress", budget["id"])
	resp, data = doRequest(t, ts, http.MethodGet, path, "u1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("progress: got %d: %s", resp.StatusCode, data)
	}
	var progress struct {
		Status     string  `json:"status"`
		Percentage float64 `json:"percentage"`
		Spent      string  `json:"spent"`
	}
	decodeInto(t, data, &progress)
	if progress.Status != "warning" {
		t.Fatalf("status: got %s, want warning", progress.Status)
	}
	if progress.Spent != "850.00" {
		t.Fatalf("spent: got %s, want 850.00", progress.Spent)
	}

	resp, _ = doRequest(t, ts, http.MethodGet, "/api/budgets/no-such-id/progress", "u1", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing budget: got %d, want 404", resp.StatusCode)
	}
}

func TestGoalProgressEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, data := doRequest(t, ts, http.MethodPost, "/api/goals", "u1", map[string]any{
		"name":          "Vacation",
		"targetAmount":  "2000.00",
		"currentAmount": "500.00",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create goal: got %d: %s", resp.StatusCode, data)
	}
	var goal map[string]any
	decodeInto(t, data, &goal)

	path := fmt.Sprintf("/api/goals/%s/progress", goal["id"])
	resp, data = doRequest(t, ts, http.MethodGet, path, "u1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("progress: got %d: %s", resp.StatusCode, data)
	}
	var progress struct {
		Status           string   `json:"status"`
		Percentage       float64  `json:"percentage"`
		DaysLeft         *int     `json:"daysLeft"`
		Completed        bool     `json:"completed"`
		ProgressComplete bool     `json:"progressComplete"`
	}
	decodeInto(t, data, &progress)
	if progress.Status != "active" {
		t.Fatalf("status: got %s, want active", progress.Status)
	}
	if progress.Percentage != 25 {
		t.Fatalf("percentage: got %v, want 25", progress.Percentage)
	}
	if progress.DaysLeft != nil {
		t.Fatal("goal without deadline must not report days left")
	}
	if progress.Completed || progress.ProgressComplete {
		t.Fatalf("got %+v, want incomplete", progress)
	}
}
