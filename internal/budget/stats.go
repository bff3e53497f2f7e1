package budget

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DaysIn returns the number of days in the 0-based month of year.
func DaysIn(year int, month int) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// DenseYear returns exactly twelve entries, months 0-11, with zero
// defaults for months that have no stored bucket.
func DenseYear(year int, rows []HistoryRow) []HistoryEntry {
	byMonth := make(map[int]HistoryRow, len(rows))
	for _, r := range rows {
		byMonth[r.Month] = r
	}

	entries := make([]HistoryEntry, 0, 12)
	for m := 0; m < 12; m++ {
		e := HistoryEntry{Year: year, Month: m, Income: decimal.Zero, Expense: decimal.Zero}
		if r, ok := byMonth[m]; ok {
			e.Income, e.Expense = r.Income, r.Expense
		}
		entries = append(entries, e)
	}
	return entries
}

// DenseMonth returns one entry per calendar day of the month.
func DenseMonth(p Period, rows []HistoryRow) []HistoryEntry {
	byDay := make(map[int]HistoryRow, len(rows))
	for _, r := range rows {
		byDay[r.Day] = r
	}

	days := DaysIn(p.Year, p.Month)
	entries := make([]HistoryEntry, 0, days)
	for d := 1; d <= days; d++ {
		e := HistoryEntry{Year: p.Year, Month: p.Month, Day: d, Income: decimal.Zero, Expense: decimal.Zero}
		if r, ok := byDay[d]; ok {
			e.Income, e.Expense = r.Income, r.Expense
		}
		entries = append(entries, e)
	}
	return entries
}

// HistoryYears sorts the stored years, falling back to the current year
// when the user has no history yet.
func HistoryYears(years []int, now time.Time) []int {
	if len(years) == 0 {
		return []int{now.UTC().Year()}
	}
	out := append([]int(nil), years...)
	sort.Ints(out)
	return out
}

// SortCategoryStats orders by sum descending, then type and category ascending.
func SortCategoryStats(stats []CategoryStat) {
	sort.SliceStable(stats, func(i, j int) bool {
		if c := stats[i].Sum.Cmp(stats[j].Sum); c != 0 {
			return c > 0
		}
		if stats[i].Type != stats[j].Type {
			return stats[i].Type < stats[j].Type
		}
		return stats[i].Category < stats[j].Category
	})
}

// CategoryShares returns, per stat, its percentage of its type's total,
// rounded to two decimals.
func CategoryShares(stats []CategoryStat) []decimal.Decimal {
	totals := map[TransactionType]decimal.Decimal{}
	for _, s := range stats {
		totals[s.Type] = totals[s.Type].Add(s.Sum)
	}

	hundred := decimal.NewFromInt(100)
	shares := make([]decimal.Decimal, len(stats))
	for i, s := range stats {
		total := totals[s.Type]
		if total.IsZero() {
			shares[i] = decimal.Zero
			continue
		}
		shares[i] = s.Sum.Mul(hundred).DivRound(total, 2)
	}
	return shares
}
