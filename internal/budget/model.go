package budget

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

type Timeframe string

const (
	TimeframeYear  Timeframe = "year"
	TimeframeMonth Timeframe = "month"
)

// REQUESTS START:

// Raw inputs, exactly as received from a client. Parse* turns them into the
// validated values below.
type CategoryInput struct {
	Name string
	Icon string
	Type string
}

type DeleteCategoryInput struct {
	Name string
	Type string
}

type TransactionInput struct {
	Amount      string
	Description string
	Date        string
	Category    string
	Type        string
}

type DateRangeInput struct {
	From string
	To   string
}

type HistoryInput struct {
	Timeframe string
	Year      string
	Month     string
}

// REQUESTS END:

// VALIDATED VALUES:

type NewCategory struct {
	Name string
	Icon string
	Type TransactionType
}

type CategoryKey struct {
	Name string
	Type TransactionType
}

type NewTransaction struct {
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	Category    string
	Type        TransactionType
}

// DateRange is inclusive on both ends; From and To are UTC midnights.
type DateRange struct {
	From time.Time
	To   time.Time
}

type Period struct {
	Year  int
	Month int // 0-11
}

type HistoryQuery struct {
	Timeframe Timeframe
	Period    Period
}

// MODELS:

type UserSettings struct {
	UserID   string
	Currency string
}

type Category struct {
	UserID    string
	Name      string
	Icon      string
	Type      TransactionType
	CreatedAt time.Time
}

type Transaction struct {
	ID           string
	UserID       string
	Amount       decimal.Decimal
	Description  string
	Date         time.Time
	Category     string
	CategoryIcon string
	Type         TransactionType
	CreatedAt    time.Time
}

// Rollup is a signed delta for one user's day bucket (MonthHistory) and month
// bucket (YearHistory). Month is 0-11.
type Rollup struct {
	UserID  string
	Year    int
	Month   int
	Day     int
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// HistoryRow is a stored bucket. Day is zero for YearHistory rows.
type HistoryRow struct {
	Year    int
	Month   int
	Day     int
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// RESPONSES:

type BalanceStats struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

func (b BalanceStats) Balance() decimal.Decimal {
	return b.Income.Sub(b.Expense)
}

type CategoryStat struct {
	Type         TransactionType
	Category     string
	CategoryIcon string
	Sum          decimal.Decimal
}

type HistoryEntry struct {
	Year    int
	Month   int
	Day     int // zero for year timeframe
	Income  decimal.Decimal
	Expense decimal.Decimal
}

type TransactionView struct {
	Transaction
	FormattedAmount string
}
