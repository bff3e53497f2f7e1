package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_insights/customErrors"
	"github.com/fatali-fataliyev/budget_insights/internal/auth"
	"github.com/fatali-fataliyev/budget_insights/internal/budget"
	"github.com/fatali-fataliyev/budget_insights/internal/currency"
	"github.com/shopspring/decimal"
)

type categoryKey struct {
	userID string
	name   string
	cType  budget.TransactionType
}

type dayKey struct {
	userID           string
	year, month, day int
}

type monthKey struct {
	userID      string
	year, month int
}

// InMemoryStorage keeps everything in maps guarded by one mutex, so a
// ledger write and its rollup are applied atomically.
type InMemoryStorage struct {
	mu           sync.Mutex
	settings     map[string]budget.UserSettings
	categories   map[categoryKey]budget.Category
	transactions map[string]budget.Transaction
	monthHistory map[dayKey]budget.HistoryRow
	yearHistory  map[monthKey]budget.HistoryRow
	sessions     map[string]auth.Session
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		settings:     map[string]budget.UserSettings{},
		categories:   map[categoryKey]budget.Category{},
		transactions: map[string]budget.Transaction{},
		monthHistory: map[dayKey]budget.HistoryRow{},
		yearHistory:  map[monthKey]budget.HistoryRow{},
		sessions:     map[string]auth.Session{},
	}
}

func (inMem *InMemoryStorage) GetStorageType() string {
	return "inmemory"
}

func (inMem *InMemoryStorage) GetOrCreateUserSettings(ctx context.Context, userID string) (budget.UserSettings, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	settings, ok := inMem.settings[userID]
	if !ok {
		settings = budget.UserSettings{UserID: userID, Currency: currency.Default}
		inMem.settings[userID] = settings
	}
	return settings, nil
}

func (inMem *InMemoryStorage) SaveUserCurrency(ctx context.Context, userID string, currencyCode string) (budget.UserSettings, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	settings := budget.UserSettings{UserID: userID, Currency: currencyCode}
	inMem.settings[userID] = settings
	return settings, nil
}

func (inMem *InMemoryStorage) SaveCategory(ctx context.Context, category budget.Category) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	key := categoryKey{userID: category.UserID, name: category.Name, cType: category.Type}
	if _, exists := inMem.categories[key]; exists {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrConflict,
			Message: fmt.Sprintf("The %s category '%s' already exists.", category.Type, category.Name),
		}
	}
	inMem.categories[key] = category
	return nil
}

func (inMem *InMemoryStorage) GetCategory(ctx context.Context, userID string, key budget.CategoryKey) (budget.Category, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	category, ok := inMem.categories[categoryKey{userID: userID, name: key.Name, cType: key.Type}]
	if !ok {
		return budget.Category{}, appErrors.NewNotFound("The category does not exist.")
	}
	return category, nil
}

func (inMem *InMemoryStorage) DeleteCategory(ctx context.Context, userID string, key budget.CategoryKey) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	k := categoryKey{userID: userID, name: key.Name, cType: key.Type}
	if _, ok := inMem.categories[k]; !ok {
		return appErrors.NewNotFound("The category does not exist.")
	}
	delete(inMem.categories, k)
	return nil
}

func (inMem *InMemoryStorage) ListCategories(ctx context.Context, userID string, cType *budget.TransactionType) ([]budget.Category, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	result := []budget.Category{}
	for _, c := range inMem.categories {
		if c.UserID != userID {
			continue
		}
		if cType != nil && c.Type != *cType {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].Type < result[j].Type
	})
	return result, nil
}

// applyRollup must be called with mu held.
func (inMem *InMemoryStorage) applyRollup(r budget.Rollup) {
	dk := dayKey{userID: r.UserID, year: r.Year, month: r.Month, day: r.Day}
	day, ok := inMem.monthHistory[dk]
	if !ok {
		day = budget.HistoryRow{Year: r.Year, Month: r.Month, Day: r.Day, Income: decimal.Zero, Expense: decimal.Zero}
	}
	day.Income = day.Income.Add(r.Income)
	day.Expense = day.Expense.Add(r.Expense)
	inMem.monthHistory[dk] = day

	mk := monthKey{userID: r.UserID, year: r.Year, month: r.Month}
	month, ok := inMem.yearHistory[mk]
	if !ok {
		month = budget.HistoryRow{Year: r.Year, Month: r.Month, Income: decimal.Zero, Expense: decimal.Zero}
	}
	month.Income = month.Income.Add(r.Income)
	month.Expense = month.Expense.Add(r.Expense)
	inMem.yearHistory[mk] = month
}

func (inMem *InMemoryStorage) SaveTransaction(ctx context.Context, t budget.Transaction) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	if _, exists := inMem.transactions[t.ID]; exists {
		return appErrors.NewConflict("The transaction already exists.")
	}
	inMem.transactions[t.ID] = t
	inMem.applyRollup(budget.RollupFor(t, 1))
	return nil
}

func (inMem *InMemoryStorage) DeleteTransaction(ctx context.Context, userID string, id string) (budget.Transaction, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	t, ok := inMem.transactions[id]
	if !ok || t.UserID != userID {
		return budget.Transaction{}, appErrors.NewNotFound("The transaction does not exist.")
	}
	delete(inMem.transactions, id)
	inMem.applyRollup(budget.RollupFor(t, -1))
	return t, nil
}

// inRange must be called with mu held.
func (inMem *InMemoryStorage) inRange(userID string, r budget.DateRange) []budget.Transaction {
	result := []budget.Transaction{}
	for _, t := range inMem.transactions {
		if t.UserID != userID || t.Date.Before(r.From) || t.Date.After(r.To) {
			continue
		}
		result = append(result, t)
	}
	return result
}

func (inMem *InMemoryStorage) ListTransactions(ctx context.Context, userID string, r budget.DateRange) ([]budget.Transaction, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	result := inMem.inRange(userID, r)
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (inMem *InMemoryStorage) GetBalanceStats(ctx context.Context, userID string, r budget.DateRange) (budget.BalanceStats, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	stats := budget.BalanceStats{Income: decimal.Zero, Expense: decimal.Zero}
	for _, t := range inMem.inRange(userID, r) {
		switch t.Type {
		case budget.Income:
			stats.Income = stats.Income.Add(t.Amount)
		case budget.Expense:
			stats.Expense = stats.Expense.Add(t.Amount)
		}
	}
	return stats, nil
}

func (inMem *InMemoryStorage) GetCategoryStats(ctx context.Context, userID string, r budget.DateRange) ([]budget.CategoryStat, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	type groupKey struct {
		cType    budget.TransactionType
		category string
		icon     string
	}
	groups := map[groupKey]decimal.Decimal{}
	for _, t := range inMem.inRange(userID, r) {
		k := groupKey{cType: t.Type, category: t.Category, icon: t.CategoryIcon}
		groups[k] = groups[k].Add(t.Amount)
	}

	stats := make([]budget.CategoryStat, 0, len(groups))
	for k, sum := range groups {
		stats = append(stats, budget.CategoryStat{Type: k.cType, Category: k.category, CategoryIcon: k.icon, Sum: sum})
	}
	budget.SortCategoryStats(stats)
	return stats, nil
}

func (inMem *InMemoryStorage) GetYearHistory(ctx context.Context, userID string, year int) ([]budget.HistoryRow, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	rows := []budget.HistoryRow{}
	for k, row := range inMem.yearHistory {
		if k.userID == userID && k.year == year {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month < rows[j].Month })
	return rows, nil
}

func (inMem *InMemoryStorage) GetMonthHistory(ctx context.Context, userID string, p budget.Period) ([]budget.HistoryRow, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	rows := []budget.HistoryRow{}
	for k, row := range inMem.monthHistory {
		if k.userID == userID && k.year == p.Year && k.month == p.Month {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Day < rows[j].Day })
	return rows, nil
}

func (inMem *InMemoryStorage) GetHistoryYears(ctx context.Context, userID string) ([]int, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	seen := map[int]bool{}
	years := []int{}
	for k := range inMem.monthHistory {
		if k.userID == userID && !seen[k.year] {
			seen[k.year] = true
			years = append(years, k.year)
		}
	}
	sort.Ints(years)
	return years, nil
}

func (inMem *InMemoryStorage) SaveSession(ctx context.Context, session auth.Session) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	token := strings.TrimSpace(session.Token)
	if _, exists := inMem.sessions[token]; exists {
		return appErrors.NewConflict("The session already exists.")
	}
	inMem.sessions[token] = session
	return nil
}

func (inMem *InMemoryStorage) GetSessionByToken(ctx context.Context, token string) (auth.Session, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	session, ok := inMem.sessions[strings.TrimSpace(token)]
	if !ok {
		return auth.Session{}, appErrors.NewUnauthorized("Session does not exist, please login.")
	}
	return session, nil
}

func (inMem *InMemoryStorage) UpdateSessionExpiry(ctx context.Context, sessionID string, expireAt time.Time) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for token, session := range inMem.sessions {
		if session.ID == sessionID {
			session.ExpireAt = expireAt
			inMem.sessions[token] = session
			return nil
		}
	}
	return appErrors.NewUnauthorized("Session does not exist, please login.")
}

var (
	_ budget.Storage    = (*InMemoryStorage)(nil)
	_ auth.SessionStore = (*InMemoryStorage)(nil)
)
