package budget

import "github.com/shopspring/decimal"

// RollupFor returns the bucket delta of t. sign is +1 when t is added to the
// ledger and -1 when it is removed.
func RollupFor(t Transaction, sign int) Rollup {
	amount := t.Amount
	if sign < 0 {
		amount = amount.Neg()
	}

	r := Rollup{
		UserID:  t.UserID,
		Year:    t.Date.Year(),
		Month:   int(t.Date.Month()) - 1,
		Day:     t.Date.Day(),
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}
	switch t.Type {
	case Income:
		r.Income = amount
	case Expense:
		r.Expense = amount
	}
	return r
}
