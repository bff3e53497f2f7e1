package storage

import (
	"time"

	"github.com/fatali-fataliyev/budget_insights/internal/auth"
	"github.com/fatali-fataliyev/budget_insights/internal/budget"
	"github.com/shopspring/decimal"
)

// dbDate is the format DATE columns are written and compared in.
const dbDate = "2006-01-02"

type dbSession struct {
	ID        string
	Token     string
	CreatedAt time.Time
	ExpireAt  time.Time
	UserID    string
}

func (s dbSession) toSession() auth.Session {
	return auth.Session{
		ID:        s.ID,
		Token:     s.Token,
		CreatedAt: s.CreatedAt,
		ExpireAt:  s.ExpireAt,
		UserID:    s.UserID,
	}
}

type dbCategory struct {
	UserID    string
	Name      string
	Icon      string
	Type      string
	CreatedAt time.Time
}

func (c dbCategory) toCategory() budget.Category {
	return budget.Category{
		UserID:    c.UserID,
		Name:      c.Name,
		Icon:      c.Icon,
		Type:      budget.TransactionType(c.Type),
		CreatedAt: c.CreatedAt.UTC(),
	}
}

type dbTransaction struct {
	ID           string
	UserID       string
	Amount       decimal.Decimal
	Description  string
	Date         time.Time
	Category     string
	CategoryIcon string
	Type         string
	CreatedAt    time.Time
}

func (t dbTransaction) toTransaction() budget.Transaction {
	return budget.Transaction{
		ID:           t.ID,
		UserID:       t.UserID,
		Amount:       t.Amount,
		Description:  t.Description,
		Date:         budget.DateOf(t.Date),
		Category:     t.Category,
		CategoryIcon: t.CategoryIcon,
		Type:         budget.TransactionType(t.Type),
		CreatedAt:    t.CreatedAt.UTC(),
	}
}
