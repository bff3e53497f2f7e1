package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	appErrors "github.com/fatali-fataliyev/budget_insights/customErrors"
	"github.com/fatali-fataliyev/budget_insights/internal/auth"
	"github.com/fatali-fataliyev/budget_insights/internal/budget"
	"github.com/fatali-fataliyev/budget_insights/internal/export"
	"github.com/fatali-fataliyev/budget_insights/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	bt := budget.NewBudgetTracker(storage.NewInMemoryStorage())
	srv := httptest.NewServer(NewRouter(NewApi(bt, auth.DevVerifier{})))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, user string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+user)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func seedCategory(t *testing.T, srv *httptest.Server, user, name, icon, cType string) {
	t.Helper()
	resp := do(t, srv, http.MethodPost, "/api/categories", user, CreateCategoryRequest{Name: name, Icon: icon, Type: cType})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func seedTransaction(t *testing.T, srv *httptest.Server, user string, body map[string]any) TransactionItem {
	t.Helper()
	resp := do(t, srv, http.MethodPost, "/api/transactions", user, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[TransactionItem](t, resp)
}

func TestHealthNeedsNoAuth(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, HealthResponse{Status: "ok", Storage: "inmemory"}, decode[HealthResponse](t, resp))
}

func TestUnauthorized(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{name: "Missing header"},
		{name: "Wrong scheme", header: "Basic abc"},
		{name: "Empty token", header: "Bearer  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/categories", nil)
			require.NoError(t, err)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := srv.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, appErrors.ErrAuth, decode[appErrors.ErrorResponse](t, resp).Code)
		})
	}
}

func TestTraceIDIsEchoed(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(TraceIDHeader, "trace-123")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "trace-123", resp.Header.Get(TraceIDHeader))

	resp = do(t, srv, http.MethodGet, "/health", "", nil)
	assert.NotEmpty(t, resp.Header.Get(TraceIDHeader))
}

func TestCategoryEndpoints(t *testing.T) {
	srv := newTestServer(t)
	const user = "user-cat"

	seedCategory(t, srv, user, "Food", "🍔", "expense")
	seedCategory(t, srv, user, "Food", "💼", "income")

	resp := do(t, srv, http.MethodPost, "/api/categories", user, CreateCategoryRequest{Name: "Food", Icon: "🍕", Type: "expense"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, appErrors.ErrConflict, decode[appErrors.ErrorResponse](t, resp).Code)

	resp = do(t, srv, http.MethodPost, "/api/categories", user, CreateCategoryRequest{Name: "ab", Type: "gift"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errResp := decode[appErrors.ErrorResponse](t, resp)
	assert.Contains(t, errResp.Fields, "name")
	assert.Contains(t, errResp.Fields, "type")

	resp = do(t, srv, http.MethodGet, "/api/categories?type=expense", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	categories := decode[[]CategoryItem](t, resp)
	require.Len(t, categories, 1)
	assert.Equal(t, "🍔", categories[0].Icon)

	resp = do(t, srv, http.MethodGet, "/api/categories", "someone-else", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]CategoryItem](t, resp))

	resp = do(t, srv, http.MethodDelete, "/api/categories", user, DeleteCategoryRequest{Name: "Food", Type: "expense"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodDelete, "/api/categories", user, DeleteCategoryRequest{Name: "Food", Type: "expense"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/api/categories", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]CategoryItem](t, resp), 1)
}

func TestMalformedBodyIsValidationError(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{"", "{", `{"name": 5}`} {
		resp := do(t, srv, http.MethodPost, "/api/categories", "user-bad", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %q", body)
		assert.Equal(t, appErrors.ErrInvalidInput, decode[appErrors.ErrorResponse](t, resp).Code)
	}
}

func TestTransactionFlow(t *testing.T) {
	srv := newTestServer(t)
	const user = "user-flow"

	seedCategory(t, srv, user, "Food", "🍔", "expense")
	seedCategory(t, srv, user, "Rent", "🏠", "expense")
	seedCategory(t, srv, user, "Salary", "💼", "income")

	food := seedTransaction(t, srv, user, map[string]any{"amount": 30, "date": "2024-06-03", "category": "Food", "type": "expense", "description": "lunch"})
	assert.Equal(t, "$30.00", food.FormattedAmount)
	assert.Equal(t, "🍔", food.CategoryIcon)
	assert.Equal(t, "2024-06-03", food.Date)

	seedTransaction(t, srv, user, map[string]any{"amount": "10.00", "date": "2024-06-04", "category": "Rent", "type": "expense"})
	seedTransaction(t, srv, user, map[string]any{"amount": 1500.5, "date": "2024-06-05", "category": "Salary", "type": "income"})

	resp := do(t, srv, http.MethodPost, "/api/transactions", user, map[string]any{"amount": 5, "date": "2024-06-05", "category": "Gym", "type": "expense"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/api/transactions", user, map[string]any{"amount": "-5", "date": "nope", "category": "Food", "type": "expense"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errResp := decode[appErrors.ErrorResponse](t, resp)
	assert.Contains(t, errResp.Fields, "amount")
	assert.Contains(t, errResp.Fields, "date")

	resp = do(t, srv, http.MethodGet, "/api/transactions-history?from=2024-06-01&to=2024-06-30", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	history := decode[[]TransactionItem](t, resp)
	require.Len(t, history, 3)
	assert.Equal(t, "2024-06-05", history[0].Date)
	assert.Equal(t, "$1,500.50", history[0].FormattedAmount)
	assert.Equal(t, "2024-06-03", history[2].Date)

	resp = do(t, srv, http.MethodGet, "/api/stats/balance?from=2024-06-01&to=2024-06-30", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	balance := decode[BalanceResponse](t, resp)
	assert.Equal(t, 1500.5, balance.Income)
	assert.Equal(t, 40.0, balance.Expense)
	assert.Equal(t, 1460.5, balance.Balance)
	assert.Equal(t, "$1,460.50", balance.FormattedBalance)

	resp = do(t, srv, http.MethodGet, "/api/stats/categories?from=2024-06-01&to=2024-06-30", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[[]CategoryStatItem](t, resp)
	require.Len(t, stats, 3)
	assert.Equal(t, "Salary", stats[0].Category)
	assert.Equal(t, 100.0, stats[0].Percentage)
	assert.Equal(t, "Food", stats[1].Category)
	assert.Equal(t, 75.0, stats[1].Percentage)
	assert.Equal(t, "Rent", stats[2].Category)
	assert.Equal(t, 25.0, stats[2].Percentage)
	assert.Equal(t, 10.0, stats[2].Sum)
	assert.Equal(t, "$10.00", stats[2].FormattedSum)

	resp = do(t, srv, http.MethodGet, "/api/stats/categories?from=2024-06-01&to=2024-06-30", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rawStats := decode[[]map[string]any](t, resp)
	require.Len(t, rawStats, 3)
	for _, key := range []string{"type", "category", "categoryIcon", "sum"} {
		assert.Contains(t, rawStats[0], key)
	}
	assert.Equal(t, 1500.5, rawStats[0]["sum"])

	resp = do(t, srv, http.MethodGet, "/api/history-data?timeframe=month&year=2024&month=5", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	days := decode[[]HistoryItem](t, resp)
	require.Len(t, days, 30)
	assert.Equal(t, 30.0, days[2].Expense)
	assert.Equal(t, 1500.5, days[4].Income)

	resp = do(t, srv, http.MethodGet, "/api/history-data?timeframe=year&year=2024", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	months := decode[[]HistoryItem](t, resp)
	require.Len(t, months, 12)
	assert.Equal(t, 40.0, months[5].Expense)

	resp = do(t, srv, http.MethodGet, "/api/history-periods", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []int{2024}, decode[[]int](t, resp))

	resp = do(t, srv, http.MethodDelete, "/api/transactions/"+food.ID, user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	deleted := decode[TransactionItem](t, resp)
	assert.Equal(t, food.ID, deleted.ID)
	assert.Equal(t, "$30.00", deleted.FormattedAmount)

	resp = do(t, srv, http.MethodDelete, "/api/transactions/"+food.ID, user, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/api/stats/balance?from=2024-06-01&to=2024-06-30", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 10.0, decode[BalanceResponse](t, resp).Expense)
}

func TestOversizedAmountIsRejected(t *testing.T) {
	srv := newTestServer(t)
	const user = "user-amount"
	seedCategory(t, srv, user, "Food", "🍔", "expense")

	for _, body := range []string{
		`{"amount": 1e20000000, "date": "2024-06-03", "category": "Food", "type": "expense"}`,
		`{"amount": "1e-20000000", "date": "2024-06-03", "category": "Food", "type": "expense"}`,
	} {
		resp := do(t, srv, http.MethodPost, "/api/transactions", user, body)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.Contains(t, decode[appErrors.ErrorResponse](t, resp).Fields, "amount")
	}
}

func TestDateRangeValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name  string
		query string
		field string
	}{
		{name: "Too long", query: "?from=2024-01-01&to=2024-06-30", field: "range"},
		{name: "Reversed", query: "?from=2024-06-30&to=2024-06-01", field: "range"},
		{name: "Missing from", query: "?to=2024-06-01", field: "from"},
		{name: "Bad to", query: "?from=2024-06-01&to=tomorrow", field: "to"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, srv, http.MethodGet, "/api/stats/balance"+tt.query, "user-range", nil)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, decode[appErrors.ErrorResponse](t, resp).Fields, tt.field)
		})
	}
}

func TestUserSettingsEndpoints(t *testing.T) {
	srv := newTestServer(t)
	const user = "user-settings"

	resp := do(t, srv, http.MethodGet, "/api/user-settings", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	settings := decode[UserSettingsResponse](t, resp)
	assert.Equal(t, "USD", settings.Currency)
	assert.Len(t, settings.Options, 4)

	resp = do(t, srv, http.MethodPut, "/api/user-settings/currency", user, UpdateCurrencyRequest{Currency: "XXX"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, srv, http.MethodPut, "/api/user-settings/currency", user, UpdateCurrencyRequest{Currency: "eur"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "EUR", decode[UserSettingsResponse](t, resp).Currency)

	seedCategory(t, srv, user, "Salary", "💼", "income")
	created := seedTransaction(t, srv, user, map[string]any{"amount": "1234.5", "date": "2024-06-05", "category": "Salary", "type": "income"})
	assert.Equal(t, "1.234,50\u00a0€", created.FormattedAmount)
}

func TestExportTransactions(t *testing.T) {
	srv := newTestServer(t)
	const user = "user-export"

	seedCategory(t, srv, user, "Salary", "💼", "income")
	seedTransaction(t, srv, user, map[string]any{"amount": 100, "date": "2024-06-05", "category": "Salary", "type": "income"})

	resp := do(t, srv, http.MethodGet, "/api/transactions-export?from=2024-06-01&to=2024-06-30", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, export.ContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "transactions_2024-06-01_2024-06-30.xlsx")

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 2)
	assert.Equal(t, "2024-06-05", rows[1][0])
	assert.Equal(t, "Salary", rows[1][2])

	resp = do(t, srv, http.MethodGet, "/api/transactions-export?from=2024-06-30&to=2024-06-01", user, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFlexString(t *testing.T) {
	tests := []struct {
		raw     string
		want    flexString
		wantErr bool
	}{
		{raw: `"12.50"`, want: "12.50"},
		{raw: `12.5`, want: "12.5"},
		{raw: `null`, want: ""},
		{raw: `true`, wantErr: true},
		{raw: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var req CreateTransactionRequest
			err := json.Unmarshal([]byte(`{"amount":`+tt.raw+`}`), &req)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Amount)
		})
	}
}
