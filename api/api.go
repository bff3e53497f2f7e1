package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/0xcafe-io/iz"
	appErrors "github.com/fatali-fataliyev/budget_insights/customErrors"
	"github.com/fatali-fataliyev/budget_insights/internal/auth"
	"github.com/fatali-fataliyev/budget_insights/internal/budget"
	"github.com/fatali-fataliyev/budget_insights/internal/contextutil"
	"github.com/fatali-fataliyev/budget_insights/internal/export"
	"github.com/fatali-fataliyev/budget_insights/logging"
)

const maxBodyBytes = 1 << 20

type Api struct {
	Service  *budget.BudgetTracker
	Verifier auth.Verifier
}

func NewApi(service *budget.BudgetTracker, verifier auth.Verifier) *Api {
	return &Api{
		Service:  service,
		Verifier: verifier,
	}
}

func errorResponse(ctx context.Context, err error) iz.Responder {
	status := httpStatusFromError(err)
	if status >= 500 {
		logging.Logger.Errorf("[TraceID=%s] | request failed | Error: %v", contextutil.TraceIDFromContext(ctx), err)
	}
	return iz.Respond().Status(status).JSON(appErrors.AsResponse(err))
}

func decodeBody(r *iz.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		return appErrors.NewValidation("Invalid request body.", map[string]string{"body": err.Error()})
	}
	return nil
}

// userID is set by requireUser before any handler below runs.
func userID(r *iz.Request) string {
	id, _ := contextutil.UserIDFromContext(r.Context())
	return id
}

func dateRangeFrom(r *iz.Request) budget.DateRangeInput {
	params := r.URL.Query()
	return budget.DateRangeInput{From: params.Get("from"), To: params.Get("to")}
}

func (api *Api) HealthHandler(r *iz.Request) iz.Responder {
	return iz.Respond().Status(200).JSON(HealthResponse{Status: "ok", Storage: api.Service.StorageType})
}

// USER SETTINGS

func (api *Api) GetUserSettingsHandler(r *iz.Request) iz.Responder {
	settings, err := api.Service.GetUserSettings(r.Context(), userID(r))
	if err != nil {
		return errorResponse(r.Context(), err)
	}
	return iz.Respond().Status(200).JSON(UserSettingsToHttp(settings))
}

func (api *Api) UpdateCurrencyHandler(r *iz.Request) iz.Responder {
	var req UpdateCurrencyRequest
	if err := decodeBody(r, &req); err != nil {
		return errorResponse(r.Context(), err)
	}

	settings, err := api.Service.UpdateUserCurrency(r.Context(), userID(r), req.Currency)
	if err != nil {
		return errorResponse(r.Context(), err)
	}
	return iz.Respond().Status(200).JSON(UserSettingsToHttp(settings))
}

// CATEGORIES

func (api *Api) ListCategoriesHandler(r *iz.Request) iz.Responder {
	categories, err := api.Service.ListCategories(r.Context(), userID(r), r.URL.Query().Get("type"))
	if err != nil {
		return errorResponse(r.Context(), err)
	}

	categoriesForHttp := make([]CategoryItem, 0, len(categories))
	for _, category := range categories {
		categoriesForHttp = append(categoriesForHttp, CategoryToHttp(category))
	}
	return iz.Respond().Status(200).JSON(categoriesForHttp)
}

func (api *Api) CreateCategoryHandler(r *iz.Request) iz.Responder {
	var req CreateCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		return errorResponse(r.Context(), err)
	}

	category, err := api.Service.CreateCategory(r.Context(), userID(r), budget.CategoryInput{
		Name: req.Name,
		Icon: req.Icon,
		Type: req.Type,
	})
	if err != nil {
		return errorResponse(r.Context(), err)
	}
	return iz.Respond().Status(201).JSON(CategoryToHttp(category))
}

func (api *Api) DeleteCategoryHandler(r *iz.Request) iz.Responder {
	var req DeleteCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		return errorResponse(r.Context(), err)
	}

	if err := api.Service.DeleteCategory(r.Context(), userID(r), budget.DeleteCategoryInput{Name: req.Name, Type: req.Type}); err != nil {
		return errorResponse(r.Context(), err)
	}
	return iz.Respond().Status(200).JSON(MessageResponse{Message: "category successfully deleted"})
}

// TRANSACTIONS

func (api *Api) CreateTransactionHandler(r *iz.Request) iz.Responder {
	var req CreateTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		return errorResponse(r.Context(), err)
	}

	ctx := r.Context()
	uid := userID(r)

	t, err := api.Service.CreateTransaction(ctx, uid, budget.TransactionInput{
		Amount:      string(req.Amount),
		Description: req.Description,
		Date:        req.Date,
		Category:    req.Category,
		Type:        req.Type,
	})
	if err != nil {
		return errorResponse(ctx, err)
	}

	formatter, err := api.Service.Formatter(ctx, uid)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return iz.Respond().Status(201).JSON(TransactionToHttp(t, formatter.Format(t.Amount)))
}

func (api *Api) DeleteTransactionHandler(r *iz.Request) iz.Responder {
	ctx := r.Context()
	uid := userID(r)

	t, err := api.Service.DeleteTransaction(ctx, uid, r.PathValue("id"))
	if err != nil {
		return errorResponse(ctx, err)
	}

	formatter, err := api.Service.Formatter(ctx, uid)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return iz.Respond().Status(200).JSON(TransactionToHttp(t, formatter.Format(t.Amount)))
}

func (api *Api) ListTransactionsHandler(r *iz.Request) iz.Responder {
	views, err := api.Service.ListTransactions(r.Context(), userID(r), dateRangeFrom(r))
	if err != nil {
		return errorResponse(r.Context(), err)
	}

	tsForHttp := make([]TransactionItem, 0, len(views))
	for _, v := range views {
		tsForHttp = append(tsForHttp, TransactionToHttp(v.Transaction, v.FormattedAmount))
	}
	return iz.Respond().Status(200).JSON(tsForHttp)
}

// ExportTransactionsHandler streams an .xlsx attachment, so it writes to the
// ResponseWriter directly instead of going through an iz responder.
func (api *Api) ExportTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, _ := contextutil.UserIDFromContext(ctx)
	params := r.URL.Query()

	report, err := api.Service.TransactionsReport(ctx, uid, budget.DateRangeInput{From: params.Get("from"), To: params.Get("to")})
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, report); err != nil {
		writeError(w, r, fmt.Errorf("failed to export transactions: %w", err))
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(report.Range)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Logger.Warnf("[TraceID=%s] | failed to write export response | Error: %v", contextutil.TraceIDFromContext(ctx), err)
	}
}

// STATISTICS

func (api *Api) GetBalanceStatsHandler(r *iz.Request) iz.Responder {
	ctx := r.Context()
	uid := userID(r)

	stats, err := api.Service.GetBalanceStats(ctx, uid, dateRangeFrom(r))
	if err != nil {
		return errorResponse(ctx, err)
	}

	formatter, err := api.Service.Formatter(ctx, uid)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return iz.Respond().Status(200).JSON(BalanceToHttp(stats, formatter))
}

func (api *Api) GetCategoryStatsHandler(r *iz.Request) iz.Responder {
	ctx := r.Context()
	uid := userID(r)

	stats, err := api.Service.GetCategoryStats(ctx, uid, dateRangeFrom(r))
	if err != nil {
		return errorResponse(ctx, err)
	}

	formatter, err := api.Service.Formatter(ctx, uid)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return iz.Respond().Status(200).JSON(CategoryStatsToHttp(stats, formatter))
}

func (api *Api) GetHistoryDataHandler(r *iz.Request) iz.Responder {
	params := r.URL.Query()
	entries, err := api.Service.GetHistoryData(r.Context(), userID(r), budget.HistoryInput{
		Timeframe: params.Get("timeframe"),
		Year:      params.Get("year"),
		Month:     params.Get("month"),
	})
	if err != nil {
		return errorResponse(r.Context(), err)
	}
	return iz.Respond().Status(200).JSON(HistoryToHttp(entries))
}

func (api *Api) GetHistoryPeriodsHandler(r *iz.Request) iz.Responder {
	years, err := api.Service.GetHistoryPeriods(r.Context(), userID(r))
	if err != nil {
		return errorResponse(r.Context(), err)
	}
	return iz.Respond().Status(200).JSON(years)
}
