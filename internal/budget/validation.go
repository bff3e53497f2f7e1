package budget

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	appErrors "github.com/fatali-fataliyev/budget_insights/customErrors"
	"github.com/fatali-fataliyev/budget_insights/internal/currency"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MIN_CATEGORY_NAME_LENGTH           = 3
	MAX_CATEGORY_NAME_LENGTH           = 20
	MAX_CATEGORY_ICON_LENGTH           = 20
	MAX_TRANSACTION_DESCRIPTION_LENGTH = 100
	MAX_TRANSACTION_CATEGORY_LENGTH    = 50
	MIN_HISTORY_YEAR                   = 2000
	MAX_HISTORY_YEAR                   = 3000
	DEFAULT_MAX_DATE_RANGE_DAYS        = 90
)

// Bounds on the raw amount text and its decimal exponent. Rescaling a decimal
// costs time proportional to the exponent gap, so "1e20000000" must be rejected
// before any arithmetic.
const (
	MAX_AMOUNT_INPUT_LENGTH = 32
	MIN_AMOUNT_EXPONENT     = -MAX_AMOUNT_INPUT_LENGTH
	MAX_AMOUNT_EXPONENT     = 12
)

// Matches DECIMAL(14,2) in the schema.
var MAX_TRANSACTION_AMOUNT = decimal.RequireFromString("999999999999.99")

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

type fieldErrors map[string]string

func (f fieldErrors) add(field string, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) err(message string) error {
	if len(f) == 0 {
		return nil
	}
	return appErrors.NewValidation(message, f)
}

func ParseCategory(in CategoryInput) (NewCategory, error) {
	fields := fieldErrors{}

	name := strings.TrimSpace(in.Name)
	validateCategoryName(fields, name)

	icon := strings.TrimSpace(in.Icon)
	if utf8.RuneCountInString(icon) > MAX_CATEGORY_ICON_LENGTH {
		fields.add("icon", fmt.Sprintf("Icon must not exceed %d characters.", MAX_CATEGORY_ICON_LENGTH))
	}

	cType := validateType(fields, in.Type)

	if err := fields.err("Invalid category."); err != nil {
		return NewCategory{}, err
	}
	return NewCategory{Name: name, Icon: icon, Type: cType}, nil
}

func ParseCategoryKey(in DeleteCategoryInput) (CategoryKey, error) {
	fields := fieldErrors{}

	name := strings.TrimSpace(in.Name)
	validateCategoryName(fields, name)
	cType := validateType(fields, in.Type)

	if err := fields.err("Invalid category."); err != nil {
		return CategoryKey{}, err
	}
	return CategoryKey{Name: name, Type: cType}, nil
}

// ParseCategoryTypeFilter accepts an empty value (no filter) or a valid type.
func ParseCategoryTypeFilter(raw string) (*TransactionType, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	fields := fieldErrors{}
	cType := validateType(fields, raw)
	if err := fields.err("Invalid category filter."); err != nil {
		return nil, err
	}
	return &cType, nil
}

func ParseTransaction(in TransactionInput) (NewTransaction, error) {
	fields := fieldErrors{}

	amount := parseAmount(fields, in.Amount)

	description := strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(description) > MAX_TRANSACTION_DESCRIPTION_LENGTH {
		fields.add("description", fmt.Sprintf("Description must not exceed %d characters.", MAX_TRANSACTION_DESCRIPTION_LENGTH))
	}

	var date time.Time
	if strings.TrimSpace(in.Date) == "" {
		fields.add("date", "Date is required.")
	} else if d, ok := parseDate(in.Date); ok {
		date = d
	} else {
		fields.add("date", "Date must be a valid date.")
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		fields.add("category", "Category is required.")
	} else if utf8.RuneCountInString(category) > MAX_TRANSACTION_CATEGORY_LENGTH {
		fields.add("category", fmt.Sprintf("Category must not exceed %d characters.", MAX_TRANSACTION_CATEGORY_LENGTH))
	}

	tType := validateType(fields, in.Type)

	if err := fields.err("Invalid transaction."); err != nil {
		return NewTransaction{}, err
	}
	return NewTransaction{
		Amount:      amount,
		Description: description,
		Date:        date,
		Category:    category,
		Type:        tType,
	}, nil
}

// ParseDateRange rejects ranges where to precedes from or where to-from is
// more than maxDays whole days.
func ParseDateRange(in DateRangeInput, maxDays int) (DateRange, error) {
	fields := fieldErrors{}

	from, fromOk := parseDate(in.From)
	if !fromOk {
		fields.add("from", "The 'from' field must be a valid date.")
	}
	to, toOk := parseDate(in.To)
	if !toOk {
		fields.add("to", "The 'to' field must be a valid date.")
	}

	if fromOk && toOk {
		days := int(to.Sub(from).Hours() / 24)
		if days < 0 || days > maxDays {
			fields.add("range", fmt.Sprintf("The date range must be between 0 and %d days.", maxDays))
		}
	}

	if err := fields.err("Invalid date range."); err != nil {
		return DateRange{}, err
	}
	return DateRange{From: from, To: to}, nil
}

func ParseHistoryQuery(in HistoryInput) (HistoryQuery, error) {
	fields := fieldErrors{}

	timeframe := Timeframe(strings.TrimSpace(in.Timeframe))
	if timeframe != TimeframeYear && timeframe != TimeframeMonth {
		fields.add("timeframe", "Timeframe must be 'year' or 'month'.")
	}

	year, err := strconv.Atoi(strings.TrimSpace(in.Year))
	if err != nil {
		fields.add("year", "Year must be a number.")
	} else if year < MIN_HISTORY_YEAR || year > MAX_HISTORY_YEAR {
		fields.add("year", fmt.Sprintf("Year must be between %d and %d.", MIN_HISTORY_YEAR, MAX_HISTORY_YEAR))
	}

	month := 0
	if raw := strings.TrimSpace(in.Month); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil {
			fields.add("month", "Month must be a number.")
		} else if m < 0 || m > 11 {
			fields.add("month", "Month must be between 0 and 11.")
		} else {
			month = m
		}
	} else if timeframe == TimeframeMonth {
		fields.add("month", "Month is required for the month timeframe.")
	}

	if err := fields.err("Invalid history query."); err != nil {
		return HistoryQuery{}, err
	}
	return HistoryQuery{Timeframe: timeframe, Period: Period{Year: year, Month: month}}, nil
}

func ParseCurrency(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	fields := fieldErrors{}
	if code == "" {
		fields.add("currency", "Currency is required.")
	} else if !currency.IsSupported(code) {
		fields.add("currency", "Invalid currency. Please select a valid option.")
	}
	if err := fields.err("Invalid currency."); err != nil {
		return "", err
	}
	return code, nil
}

func ParseTransactionID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", appErrors.NewValidation("Invalid transaction id.", map[string]string{
			"id": "Transaction id must be a valid UUID.",
		})
	}
	return id.String(), nil
}

func validateCategoryName(fields fieldErrors, name string) {
	length := utf8.RuneCountInString(name)
	if length < MIN_CATEGORY_NAME_LENGTH {
		fields.add("name", fmt.Sprintf("Name must be at least %d characters long.", MIN_CATEGORY_NAME_LENGTH))
	} else if length > MAX_CATEGORY_NAME_LENGTH {
		fields.add("name", fmt.Sprintf("Name must not exceed %d characters.", MAX_CATEGORY_NAME_LENGTH))
	}
}

func validateType(fields fieldErrors, raw string) TransactionType {
	t := TransactionType(strings.TrimSpace(raw))
	if !t.Valid() {
		fields.add("type", "Type must be 'income' or 'expense'.")
	}
	return t
}

func parseAmount(fields fieldErrors, raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		fields.add("amount", "Amount is required.")
		return decimal.Zero
	}
	if len(raw) > MAX_AMOUNT_INPUT_LENGTH {
		fields.add("amount", fmt.Sprintf("Amount must not exceed %d characters.", MAX_AMOUNT_INPUT_LENGTH))
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		fields.add("amount", "Amount must be a number.")
		return decimal.Zero
	}
	switch exp := amount.Exponent(); {
	case exp > MAX_AMOUNT_EXPONENT:
		fields.add("amount", fmt.Sprintf("Amount must not exceed %s.", MAX_TRANSACTION_AMOUNT.StringFixed(2)))
		return decimal.Zero
	case exp < MIN_AMOUNT_EXPONENT:
		fields.add("amount", "Amount must be in increments of 0.01.")
		return decimal.Zero
	}
	switch {
	case !amount.IsPositive():
		fields.add("amount", "Amount must be greater than zero.")
	case !amount.Equal(amount.Truncate(2)):
		fields.add("amount", "Amount must be in increments of 0.01.")
	case amount.GreaterThan(MAX_TRANSACTION_AMOUNT):
		fields.add("amount", fmt.Sprintf("Amount must not exceed %s.", MAX_TRANSACTION_AMOUNT.StringFixed(2)))
	}
	return amount
}

// parseDate accepts ISO-8601 dates or timestamps and returns the UTC calendar date.
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return DateOf(t), true
		}
	}
	return time.Time{}, false
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
