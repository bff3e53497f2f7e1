package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_insights/customErrors"
	"github.com/fatali-fataliyev/budget_insights/internal/budget"
	"github.com/fatali-fataliyev/budget_insights/internal/currency"
)

const responseDateLayout = "2006-01-02"

// flexString accepts a JSON string or a bare JSON number, so clients may send
// "amount": 12.5 or "amount": "12.50".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("must be a number or a string")
	}
	*f = flexString(n.String())
	return nil
}

// REQUESTS START:
type CreateCategoryRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
	Type string `json:"type"`
}

type DeleteCategoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type CreateTransactionRequest struct {
	Amount      flexString `json:"amount"`
	Description string     `json:"description"`
	Date        string     `json:"date"`
	Category    string     `json:"category"`
	Type        string     `json:"type"`
}

type UpdateCurrencyRequest struct {
	Currency string `json:"currency"`
}

//REQUESTS END:

//RESPONSES:

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

type UserSettingsResponse struct {
	UserID   string              `json:"userId"`
	Currency string              `json:"currency"`
	Options  []currency.Currency `json:"options"`
}

type CategoryItem struct {
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	Type      string `json:"type"`
	CreatedAt string `json:"createdAt"`
}

type TransactionItem struct {
	ID              string  `json:"id"`
	Amount          float64 `json:"amount"`
	FormattedAmount string  `json:"formattedAmount"`
	Description     string  `json:"description"`
	Date            string  `json:"date"`
	Category        string  `json:"category"`
	CategoryIcon    string  `json:"categoryIcon"`
	Type            string  `json:"type"`
	CreatedAt       string  `json:"createdAt"`
}

type BalanceResponse struct {
	Currency         string  `json:"currency"`
	Income           float64 `json:"income"`
	Expense          float64 `json:"expense"`
	Balance          float64 `json:"balance"`
	FormattedIncome  string  `json:"formattedIncome"`
	FormattedExpense string  `json:"formattedExpense"`
	FormattedBalance string  `json:"formattedBalance"`
}

type CategoryStatItem struct {
	Type         string  `json:"type"`
	Category     string  `json:"category"`
	CategoryIcon string  `json:"categoryIcon"`
	Sum          float64 `json:"sum"`
	FormattedSum string  `json:"formattedSum"`
	Percentage   float64 `json:"percentage"`
}

type HistoryItem struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Day     int     `json:"day,omitempty"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

func httpStatusFromError(err error) int {
	switch appErrors.CodeOf(err) {
	case appErrors.ErrNotFound:
		return 404 // not found
	case appErrors.ErrInvalidInput:
		return 400 // bad request
	case appErrors.ErrAuth:
		return 401 // unauthorized
	case appErrors.ErrConflict:
		return 409 // conflict
	default:
		return 500 //internal error
	}
}

func UserSettingsToHttp(settings budget.UserSettings) UserSettingsResponse {
	return UserSettingsResponse{
		UserID:   settings.UserID,
		Currency: settings.Currency,
		Options:  currency.Supported,
	}
}

func CategoryToHttp(category budget.Category) CategoryItem {
	return CategoryItem{
		Name:      category.Name,
		Icon:      category.Icon,
		Type:      string(category.Type),
		CreatedAt: category.CreatedAt.Format(time.RFC3339),
	}
}

func TransactionToHttp(transaction budget.Transaction, formattedAmount string) TransactionItem {
	return TransactionItem{
		ID:              transaction.ID,
		Amount:          transaction.Amount.InexactFloat64(),
		FormattedAmount: formattedAmount,
		Description:     transaction.Description,
		Date:            transaction.Date.Format(responseDateLayout),
		Category:        transaction.Category,
		CategoryIcon:    transaction.CategoryIcon,
		Type:            string(transaction.Type),
		CreatedAt:       transaction.CreatedAt.Format(time.RFC3339),
	}
}

func BalanceToHttp(stats budget.BalanceStats, f currency.Formatter) BalanceResponse {
	balance := stats.Balance()
	return BalanceResponse{
		Currency:         f.Code(),
		Income:           stats.Income.InexactFloat64(),
		Expense:          stats.Expense.InexactFloat64(),
		Balance:          balance.InexactFloat64(),
		FormattedIncome:  f.Format(stats.Income),
		FormattedExpense: f.Format(stats.Expense),
		FormattedBalance: f.Format(balance),
	}
}

func CategoryStatsToHttp(stats []budget.CategoryStat, f currency.Formatter) []CategoryStatItem {
	shares := budget.CategoryShares(stats)
	items := make([]CategoryStatItem, 0, len(stats))
	for i, s := range stats {
		items = append(items, CategoryStatItem{
			Type:         string(s.Type),
			Category:     s.Category,
			CategoryIcon: s.CategoryIcon,
			Sum:          s.Sum.InexactFloat64(),
			FormattedSum: f.Format(s.Sum),
			Percentage:   shares[i].InexactFloat64(),
		})
	}
	return items
}

func HistoryToHttp(entries []budget.HistoryEntry) []HistoryItem {
	items := make([]HistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, HistoryItem{
			Year:    e.Year,
			Month:   e.Month,
			Day:     e.Day,
			Income:  e.Income.InexactFloat64(),
			Expense: e.Expense.InexactFloat64(),
		})
	}
	return items
}
