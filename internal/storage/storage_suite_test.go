package storage

import (
	"context"
	"strconv"
	"testing"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_insights/customErrors"
	"github.com/fatali-fataliyev/budget_insights/internal/budget"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// runStorageSuite exercises a budget.Storage through the service. Every
// subtest uses a fresh user id, so a shared database needs no cleanup.
func runStorageSuite(t *testing.T, store budget.Storage) {
	ctx := context.Background()
	bt := budget.NewBudgetTracker(store)

	newUser := func() string { return "user-" + uuid.NewString() }

	mustCategory := func(t *testing.T, userID, name, icon, cType string) {
		t.Helper()
		_, err := bt.CreateCategory(ctx, userID, budget.CategoryInput{Name: name, Icon: icon, Type: cType})
		require.NoError(t, err)
	}

	mustTransaction := func(t *testing.T, userID, amount, date, category, cType string) budget.Transaction {
		t.Helper()
		txn, err := bt.CreateTransaction(ctx, userID, budget.TransactionInput{
			Amount:   amount,
			Date:     date,
			Category: category,
			Type:     cType,
		})
		require.NoError(t, err)
		return txn
	}

	monthBucket := func(t *testing.T, userID string, year, month, day int) budget.HistoryEntry {
		t.Helper()
		entries, err := bt.GetHistoryData(ctx, userID, budget.HistoryInput{
			Timeframe: "month",
			Year:      strconv.Itoa(year),
			Month:     strconv.Itoa(month),
		})
		require.NoError(t, err)
		return entries[day-1]
	}

	t.Run("zero state", func(t *testing.T) {
		userID := newUser()
		r := budget.DateRangeInput{From: "2024-01-01", To: "2024-01-31"}

		stats, err := bt.GetBalanceStats(ctx, userID, r)
		require.NoError(t, err)
		assert.True(t, stats.Income.IsZero())
		assert.True(t, stats.Expense.IsZero())

		cats, err := bt.GetCategoryStats(ctx, userID, r)
		require.NoError(t, err)
		assert.Empty(t, cats)

		txns, err := bt.ListTransactions(ctx, userID, r)
		require.NoError(t, err)
		assert.Empty(t, txns)

		settings, err := bt.GetUserSettings(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "USD", settings.Currency)
	})

	t.Run("balance equals sum of ledger in range", func(t *testing.T) {
		userID := newUser()
		mustCategory(t, userID, "Salary", "💰", "income")
		mustCategory(t, userID, "Food", "🍔", "expense")

		mustTransaction(t, userID, "1000", "2024-03-01", "Salary", "income")
		mustTransaction(t, userID, "12.34", "2024-03-05", "Food", "expense")
		mustTransaction(t, userID, "7.66", "2024-03-31", "Food", "expense")
		mustTransaction(t, userID, "50", "2024-04-01", "Food", "expense")
		mustTransaction(t, userID, "300", "2024-02-29", "Salary", "income")

		stats, err := bt.GetBalanceStats(ctx, userID, budget.DateRangeInput{From: "2024-03-01", To: "2024-03-31"})
		require.NoError(t, err)
		assert.Equal(t, "1000", stats.Income.String())
		assert.Equal(t, "20", stats.Expense.String())
		assert.Equal(t, "980", stats.Balance().String())

		cats, err := bt.GetCategoryStats(ctx, userID, budget.DateRangeInput{From: "2024-03-01", To: "2024-03-31"})
		require.NoError(t, err)
		require.Len(t, cats, 2)
		assert.Equal(t, "Salary", cats[0].Category)
		assert.Equal(t, "Food", cats[1].Category)
		assert.Equal(t, "🍔", cats[1].CategoryIcon)
		assert.Equal(t, "20", cats[1].Sum.String())

		txns, err := bt.ListTransactions(ctx, userID, budget.DateRangeInput{From: "2024-03-01", To: "2024-03-31"})
		require.NoError(t, err)
		require.Len(t, txns, 3)
		assert.Equal(t, "2024-03-31", txns[0].Date.Format("2006-01-02"))
		assert.Equal(t, "2024-03-01", txns[2].Date.Format("2006-01-02"))
		assert.Equal(t, "$7.66", txns[0].FormattedAmount)
	})

	t.Run("range longer than max is rejected", func(t *testing.T) {
		_, err := bt.GetBalanceStats(ctx, newUser(), budget.DateRangeInput{From: "2024-01-01", To: "2024-12-31"})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrInvalidInput, appErrors.CodeOf(err))
	})

	t.Run("create then delete restores buckets", func(t *testing.T) {
		userID := newUser()
		mustCategory(t, userID, "Food", "", "expense")
		mustTransaction(t, userID, "5.25", "2024-06-15", "Food", "expense")
		before := monthBucket(t, userID, 2024, 5, 15)

		txn := mustTransaction(t, userID, "99.99", "2024-06-15", "Food", "expense")
		during := monthBucket(t, userID, 2024, 5, 15)
		assert.Equal(t, "105.24", during.Expense.String())

		_, err := bt.DeleteTransaction(ctx, userID, txn.ID)
		require.NoError(t, err)

		after := monthBucket(t, userID, 2024, 5, 15)
		assert.True(t, before.Expense.Equal(after.Expense))
		assert.True(t, before.Income.Equal(after.Income))

		year, err := bt.GetHistoryData(ctx, userID, budget.HistoryInput{Timeframe: "year", Year: "2024"})
		require.NoError(t, err)
		assert.Equal(t, "5.25", year[5].Expense.String())

		_, err = bt.DeleteTransaction(ctx, userID, txn.ID)
		assert.Equal(t, appErrors.ErrNotFound, appErrors.CodeOf(err))
	})

	t.Run("delete of another user's transaction is not found", func(t *testing.T) {
		owner := newUser()
		mustCategory(t, owner, "Food", "", "expense")
		txn := mustTransaction(t, owner, "1", "2024-06-15", "Food", "expense")

		_, err := bt.DeleteTransaction(ctx, newUser(), txn.ID)
		assert.Equal(t, appErrors.ErrNotFound, appErrors.CodeOf(err))
	})

	t.Run("zero buckets keep their year", func(t *testing.T) {
		userID := newUser()
		mustCategory(t, userID, "Gift", "", "income")
		txn := mustTransaction(t, userID, "10", "2021-01-01", "Gift", "income")
		_, err := bt.DeleteTransaction(ctx, userID, txn.ID)
		require.NoError(t, err)

		years, err := bt.GetHistoryPeriods(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, []int{2021}, years)
	})

	t.Run("history periods fall back to current year", func(t *testing.T) {
		years, err := bt.GetHistoryPeriods(ctx, newUser())
		require.NoError(t, err)
		assert.Equal(t, []int{time.Now().UTC().Year()}, years)
	})

	t.Run("february 2024 is dense with 29 days", func(t *testing.T) {
		userID := newUser()
		mustCategory(t, userID, "Food", "", "expense")
		mustTransaction(t, userID, "3", "2024-02-29", "Food", "expense")

		entries, err := bt.GetHistoryData(ctx, userID, budget.HistoryInput{Timeframe: "month", Year: "2024", Month: "1"})
		require.NoError(t, err)
		require.Len(t, entries, 29)
		assert.Equal(t, "3", entries[28].Expense.String())
		for _, e := range entries[:28] {
			assert.True(t, e.Expense.IsZero())
		}
	})

	t.Run("category uniqueness is per type", func(t *testing.T) {
		userID := newUser()
		mustCategory(t, userID, "Gifts", "🎁", "income")
		mustCategory(t, userID, "Gifts", "🎁", "expense")

		_, err := bt.CreateCategory(ctx, userID, budget.CategoryInput{Name: "Gifts", Type: "income"})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrConflict, appErrors.CodeOf(err))

		_, err = bt.CreateCategory(ctx, newUser(), budget.CategoryInput{Name: "Gifts", Type: "income"})
		require.NoError(t, err)

		all, err := bt.ListCategories(ctx, userID, "")
		require.NoError(t, err)
		assert.Len(t, all, 2)

		income, err := bt.ListCategories(ctx, userID, "income")
		require.NoError(t, err)
		require.Len(t, income, 1)
		assert.Equal(t, budget.Income, income[0].Type)
	})

	t.Run("categories are listed by name", func(t *testing.T) {
		userID := newUser()
		mustCategory(t, userID, "Rent", "", "expense")
		mustCategory(t, userID, "Bills", "", "expense")
		mustCategory(t, userID, "Food", "", "expense")

		cats, err := bt.ListCategories(ctx, userID, "expense")
		require.NoError(t, err)
		require.Len(t, cats, 3)
		assert.Equal(t, "Bills", cats[0].Name)
		assert.Equal(t, "Food", cats[1].Name)
		assert.Equal(t, "Rent", cats[2].Name)
	})

	t.Run("delete missing category is not found", func(t *testing.T) {
		err := bt.DeleteCategory(ctx, newUser(), budget.DeleteCategoryInput{Name: "Ghost", Type: "expense"})
		assert.Equal(t, appErrors.ErrNotFound, appErrors.CodeOf(err))
	})

	t.Run("transaction needs an existing category", func(t *testing.T) {
		userID := newUser()
		mustCategory(t, userID, "Food", "", "expense")

		_, err := bt.CreateTransaction(ctx, userID, budget.TransactionInput{Amount: "1", Date: "2024-01-01", Category: "Food", Type: "income"})
		assert.Equal(t, appErrors.ErrNotFound, appErrors.CodeOf(err))
	})

	t.Run("icon snapshot survives category deletion", func(t *testing.T) {
		userID := newUser()
		mustCategory(t, userID, "Travel", "✈️", "expense")
		mustTransaction(t, userID, "250", "2024-07-04", "Travel", "expense")

		require.NoError(t, bt.DeleteCategory(ctx, userID, budget.DeleteCategoryInput{Name: "Travel", Type: "expense"}))
		mustCategory(t, userID, "Travel", "🚆", "expense")

		txns, err := bt.ListTransactions(ctx, userID, budget.DateRangeInput{From: "2024-07-01", To: "2024-07-31"})
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, "✈️", txns[0].CategoryIcon)
		assert.Equal(t, "Travel", txns[0].Category)
	})

	t.Run("category stats group by icon too", func(t *testing.T) {
		userID := newUser()
		mustCategory(t, userID, "Food", "🍔", "expense")
		mustTransaction(t, userID, "30", "2024-08-02", "Food", "expense")

		require.NoError(t, bt.DeleteCategory(ctx, userID, budget.DeleteCategoryInput{Name: "Food", Type: "expense"}))
		mustCategory(t, userID, "Food", "🍕", "expense")
		mustTransaction(t, userID, "10", "2024-08-03", "Food", "expense")

		stats, err := bt.GetCategoryStats(ctx, userID, budget.DateRangeInput{From: "2024-08-01", To: "2024-08-31"})
		require.NoError(t, err)
		require.Len(t, stats, 2)
		assert.Equal(t, "🍔", stats[0].CategoryIcon)
		assert.True(t, decimal.NewFromInt(30).Equal(stats[0].Sum))
		assert.Equal(t, "🍕", stats[1].CategoryIcon)
		assert.True(t, decimal.NewFromInt(10).Equal(stats[1].Sum))
	})

	t.Run("concurrent creates on one day never lose updates", func(t *testing.T) {
		userID := newUser()
		mustCategory(t, userID, "Food", "", "expense")

		g, gctx := errgroup.WithContext(ctx)
		for _, amount := range []string{"10", "20"} {
			g.Go(func() error {
				_, err := bt.CreateTransaction(gctx, userID, budget.TransactionInput{
					Amount:   amount,
					Date:     "2024-09-09",
					Category: "Food",
					Type:     "expense",
				})
				return err
			})
		}
		require.NoError(t, g.Wait())

		bucket := monthBucket(t, userID, 2024, 8, 9)
		assert.True(t, bucket.Expense.Equal(decimal.NewFromInt(30)), "got %s", bucket.Expense)
	})

	t.Run("many concurrent writers keep buckets exact", func(t *testing.T) {
		userID := newUser()
		mustCategory(t, userID, "Salary", "", "income")

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(8)
		for i := 0; i < 40; i++ {
			g.Go(func() error {
				_, err := bt.CreateTransaction(gctx, userID, budget.TransactionInput{
					Amount:   "0.01",
					Date:     "2024-10-10",
					Category: "Salary",
					Type:     "income",
				})
				return err
			})
		}
		require.NoError(t, g.Wait())

		bucket := monthBucket(t, userID, 2024, 9, 10)
		assert.Equal(t, "0.4", bucket.Income.String())

		year, err := bt.GetHistoryData(ctx, userID, budget.HistoryInput{Timeframe: "year", Year: "2024"})
		require.NoError(t, err)
		assert.Equal(t, "0.4", year[9].Income.String())
	})

	t.Run("currency update changes formatting", func(t *testing.T) {
		userID := newUser()
		mustCategory(t, userID, "Food", "", "expense")
		mustTransaction(t, userID, "1234.5", "2024-05-05", "Food", "expense")

		settings, err := bt.UpdateUserCurrency(ctx, userID, "EUR")
		require.NoError(t, err)
		assert.Equal(t, "EUR", settings.Currency)

		txns, err := bt.ListTransactions(ctx, userID, budget.DateRangeInput{From: "2024-05-01", To: "2024-05-31"})
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, "1.234,50\u00a0€", txns[0].FormattedAmount)
	})
}
