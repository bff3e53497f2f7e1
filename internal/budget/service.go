package budget

import (
	"context"
	"fmt"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_insights/customErrors"
	"github.com/fatali-fataliyev/budget_insights/internal/contextutil"
	"github.com/fatali-fataliyev/budget_insights/internal/currency"
	"github.com/fatali-fataliyev/budget_insights/logging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type BudgetTracker struct {
	storage          Storage
	StorageType      string
	maxDateRangeDays int
	now              func() time.Time
}

type Option func(*BudgetTracker)

func WithMaxDateRangeDays(days int) Option {
	return func(bt *BudgetTracker) {
		if days > 0 {
			bt.maxDateRangeDays = days
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(bt *BudgetTracker) {
		bt.now = now
	}
}

func NewBudgetTracker(s Storage, opts ...Option) *BudgetTracker {
	bt := &BudgetTracker{
		storage:          s,
		StorageType:      s.GetStorageType(),
		maxDateRangeDays: DEFAULT_MAX_DATE_RANGE_DAYS,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(bt)
	}
	return bt
}

//go:generate mockgen -source=service.go -destination=storage_mock.go -package=budget

// Storage errors are already classified as appErrors.ErrorResponse values.
// SaveTransaction and DeleteTransaction apply RollupFor to both history
// tables in the same unit of work as the ledger write.
type Storage interface {
	GetOrCreateUserSettings(ctx context.Context, userID string) (UserSettings, error)
	SaveUserCurrency(ctx context.Context, userID string, currencyCode string) (UserSettings, error)
	SaveCategory(ctx context.Context, category Category) error
	GetCategory(ctx context.Context, userID string, key CategoryKey) (Category, error)
	DeleteCategory(ctx context.Context, userID string, key CategoryKey) error
	ListCategories(ctx context.Context, userID string, cType *TransactionType) ([]Category, error)
	SaveTransaction(ctx context.Context, t Transaction) error
	DeleteTransaction(ctx context.Context, userID string, id string) (Transaction, error)
	ListTransactions(ctx context.Context, userID string, r DateRange) ([]Transaction, error)
	GetBalanceStats(ctx context.Context, userID string, r DateRange) (BalanceStats, error)
	GetCategoryStats(ctx context.Context, userID string, r DateRange) ([]CategoryStat, error)
	GetYearHistory(ctx context.Context, userID string, year int) ([]HistoryRow, error)
	GetMonthHistory(ctx context.Context, userID string, p Period) ([]HistoryRow, error)
	GetHistoryYears(ctx context.Context, userID string) ([]int, error)
	GetStorageType() string
}

func (bt *BudgetTracker) MaxDateRangeDays() int {
	return bt.maxDateRangeDays
}

// USER SETTINGS:

func (bt *BudgetTracker) GetUserSettings(ctx context.Context, userID string) (UserSettings, error) {
	settings, err := bt.storage.GetOrCreateUserSettings(ctx, userID)
	if err != nil {
		return UserSettings{}, fmt.Errorf("failed to get user settings: %w", err)
	}
	return settings, nil
}

func (bt *BudgetTracker) UpdateUserCurrency(ctx context.Context, userID string, rawCurrency string) (UserSettings, error) {
	code, err := ParseCurrency(rawCurrency)
	if err != nil {
		return UserSettings{}, err
	}

	settings, err := bt.storage.SaveUserCurrency(ctx, userID, code)
	if err != nil {
		return UserSettings{}, fmt.Errorf("failed to update currency: %w", err)
	}
	return settings, nil
}

// Formatter resolves the user's currency formatter, creating settings on first use.
func (bt *BudgetTracker) Formatter(ctx context.Context, userID string) (currency.Formatter, error) {
	settings, err := bt.GetUserSettings(ctx, userID)
	if err != nil {
		return currency.Formatter{}, err
	}
	return currency.FormatterFor(settings.Currency), nil
}

// CATEGORIES:

func (bt *BudgetTracker) CreateCategory(ctx context.Context, userID string, in CategoryInput) (Category, error) {
	nc, err := ParseCategory(in)
	if err != nil {
		return Category{}, err
	}

	category := Category{
		UserID:    userID,
		Name:      nc.Name,
		Icon:      nc.Icon,
		Type:      nc.Type,
		CreatedAt: bt.now().UTC(),
	}

	if err := bt.storage.SaveCategory(ctx, category); err != nil {
		return Category{}, fmt.Errorf("failed to save category: %w", err)
	}
	return category, nil
}

// DeleteCategory leaves existing transactions untouched; they keep their
// category name and icon snapshot.
func (bt *BudgetTracker) DeleteCategory(ctx context.Context, userID string, in DeleteCategoryInput) error {
	key, err := ParseCategoryKey(in)
	if err != nil {
		return err
	}

	if err := bt.storage.DeleteCategory(ctx, userID, key); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (bt *BudgetTracker) ListCategories(ctx context.Context, userID string, rawType string) ([]Category, error) {
	cType, err := ParseCategoryTypeFilter(rawType)
	if err != nil {
		return nil, err
	}

	categories, err := bt.storage.ListCategories(ctx, userID, cType)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// TRANSACTIONS:

func (bt *BudgetTracker) CreateTransaction(ctx context.Context, userID string, in TransactionInput) (Transaction, error) {
	nt, err := ParseTransaction(in)
	if err != nil {
		return Transaction{}, err
	}

	category, err := bt.storage.GetCategory(ctx, userID, CategoryKey{Name: nt.Category, Type: nt.Type})
	if err != nil {
		if appErrors.CodeOf(err) == appErrors.ErrNotFound {
			return Transaction{}, appErrors.NewNotFound(fmt.Sprintf("Category '%s' of type '%s' not found.", nt.Category, nt.Type))
		}
		return Transaction{}, fmt.Errorf("failed to resolve category: %w", err)
	}

	txn := Transaction{
		ID:           uuid.New().String(),
		UserID:       userID,
		Amount:       nt.Amount,
		Description:  nt.Description,
		Date:         nt.Date,
		Category:     category.Name,
		CategoryIcon: category.Icon,
		Type:         nt.Type,
		CreatedAt:    bt.now().UTC(),
	}

	if err := bt.storage.SaveTransaction(ctx, txn); err != nil {
		return Transaction{}, fmt.Errorf("failed to save transaction: %w", err)
	}

	logging.Logger.Debugf("[TraceID=%s] | transaction %s saved for %s", contextutil.TraceIDFromContext(ctx), txn.ID, txn.Date.Format(time.DateOnly))
	return txn, nil
}

func (bt *BudgetTracker) DeleteTransaction(ctx context.Context, userID string, rawID string) (Transaction, error) {
	id, err := ParseTransactionID(rawID)
	if err != nil {
		return Transaction{}, err
	}

	deleted, err := bt.storage.DeleteTransaction(ctx, userID, id)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to delete transaction: %w", err)
	}
	return deleted, nil
}

func (bt *BudgetTracker) ListTransactions(ctx context.Context, userID string, in DateRangeInput) ([]TransactionView, error) {
	r, err := ParseDateRange(in, bt.maxDateRangeDays)
	if err != nil {
		return nil, err
	}

	views, _, err := bt.transactionViews(ctx, userID, r)
	return views, err
}

// transactionViews loads the ledger rows and the user's formatter concurrently.
func (bt *BudgetTracker) transactionViews(ctx context.Context, userID string, r DateRange) ([]TransactionView, currency.Formatter, error) {
	var (
		formatter    currency.Formatter
		transactions []Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := bt.Formatter(gctx, userID)
		if err != nil {
			return err
		}
		formatter = f
		return nil
	})
	g.Go(func() error {
		rows, err := bt.storage.ListTransactions(gctx, userID, r)
		if err != nil {
			return fmt.Errorf("failed to list transactions: %w", err)
		}
		transactions = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, currency.Formatter{}, err
	}

	views := make([]TransactionView, 0, len(transactions))
	for _, t := range transactions {
		views = append(views, TransactionView{Transaction: t, FormattedAmount: formatter.Format(t.Amount)})
	}
	return views, formatter, nil
}

// Report is the data behind a spreadsheet export.
type Report struct {
	Range        DateRange
	Formatter    currency.Formatter
	Transactions []TransactionView
	Totals       BalanceStats
}

func (bt *BudgetTracker) TransactionsReport(ctx context.Context, userID string, in DateRangeInput) (Report, error) {
	r, err := ParseDateRange(in, bt.maxDateRangeDays)
	if err != nil {
		return Report{}, err
	}

	views, formatter, err := bt.transactionViews(ctx, userID, r)
	if err != nil {
		return Report{}, err
	}

	totals := BalanceStats{Income: decimal.Zero, Expense: decimal.Zero}
	for _, v := range views {
		switch v.Type {
		case Income:
			totals.Income = totals.Income.Add(v.Amount)
		case Expense:
			totals.Expense = totals.Expense.Add(v.Amount)
		}
	}

	return Report{Range: r, Formatter: formatter, Transactions: views, Totals: totals}, nil
}

// STATISTICS:

func (bt *BudgetTracker) GetBalanceStats(ctx context.Context, userID string, in DateRangeInput) (BalanceStats, error) {
	r, err := ParseDateRange(in, bt.maxDateRangeDays)
	if err != nil {
		return BalanceStats{}, err
	}

	stats, err := bt.storage.GetBalanceStats(ctx, userID, r)
	if err != nil {
		return BalanceStats{}, fmt.Errorf("failed to get balance stats: %w", err)
	}
	return stats, nil
}

func (bt *BudgetTracker) GetCategoryStats(ctx context.Context, userID string, in DateRangeInput) ([]CategoryStat, error) {
	r, err := ParseDateRange(in, bt.maxDateRangeDays)
	if err != nil {
		return nil, err
	}

	stats, err := bt.storage.GetCategoryStats(ctx, userID, r)
	if err != nil {
		return nil, fmt.Errorf("failed to get category stats: %w", err)
	}
	SortCategoryStats(stats)
	return stats, nil
}

func (bt *BudgetTracker) GetHistoryData(ctx context.Context, userID string, in HistoryInput) ([]HistoryEntry, error) {
	q, err := ParseHistoryQuery(in)
	if err != nil {
		return nil, err
	}

	switch q.Timeframe {
	case TimeframeYear:
		rows, err := bt.storage.GetYearHistory(ctx, userID, q.Period.Year)
		if err != nil {
			return nil, fmt.Errorf("failed to get year history: %w", err)
		}
		return DenseYear(q.Period.Year, rows), nil
	default:
		rows, err := bt.storage.GetMonthHistory(ctx, userID, q.Period)
		if err != nil {
			return nil, fmt.Errorf("failed to get month history: %w", err)
		}
		return DenseMonth(q.Period, rows), nil
	}
}

func (bt *BudgetTracker) GetHistoryPeriods(ctx context.Context, userID string) ([]int, error) {
	years, err := bt.storage.GetHistoryYears(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get history periods: %w", err)
	}
	return HistoryYears(years, bt.now()), nil
}
