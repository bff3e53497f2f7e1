package api

import (
	"net/http"

	"github.com/0xcafe-io/iz"
)

// NewRouter registers every endpoint. Everything under /api requires a bearer token.
func NewRouter(api *Api) http.Handler {
	server := http.NewServeMux()

	server.HandleFunc("GET /health", iz.Bind(api.HealthHandler)) // Liveness

	// USER SETTINGS ENDPOINTS.
	server.Handle("GET /api/user-settings", api.requireUser(iz.Bind(api.GetUserSettingsHandler)))         // Get Settings
	server.Handle("PUT /api/user-settings/currency", api.requireUser(iz.Bind(api.UpdateCurrencyHandler))) // Change Currency

	// CATEGORY ENDPOINTS.
	server.Handle("GET /api/categories", api.requireUser(iz.Bind(api.ListCategoriesHandler)))    // List Categories, optional ?type=
	server.Handle("POST /api/categories", api.requireUser(iz.Bind(api.CreateCategoryHandler)))   // Create Category
	server.Handle("DELETE /api/categories", api.requireUser(iz.Bind(api.DeleteCategoryHandler))) // Delete Category by name and type

	// TRANSACTION ENDPOINTS.
	server.Handle("POST /api/transactions", api.requireUser(iz.Bind(api.CreateTransactionHandler)))                 // Create Transaction
	server.Handle("DELETE /api/transactions/{id}", api.requireUser(iz.Bind(api.DeleteTransactionHandler)))          // Delete Transaction
	server.Handle("GET /api/transactions-history", api.requireUser(iz.Bind(api.ListTransactionsHandler)))           // Transactions in range
	server.Handle("GET /api/transactions-export", api.requireUser(http.HandlerFunc(api.ExportTransactionsHandler))) // Transactions in range as .xlsx

	// STATISTICS ENDPOINTS.
	server.Handle("GET /api/stats/balance", api.requireUser(iz.Bind(api.GetBalanceStatsHandler)))     // Income, expense and balance
	server.Handle("GET /api/stats/categories", api.requireUser(iz.Bind(api.GetCategoryStatsHandler))) // Sums per category
	server.Handle("GET /api/history-data", api.requireUser(iz.Bind(api.GetHistoryDataHandler)))       // Dense year or month history
	server.Handle("GET /api/history-periods", api.requireUser(iz.Bind(api.GetHistoryPeriodsHandler))) // Years with history

	return withTrace(server)
}
