// Package export renders transaction reports as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/fatali-fataliyev/budget_insights/internal/budget"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Transactions"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	colorHeader  = "#6C5CE7"
	colorIncome  = "#00B894"
	colorExpense = "#D63031"
)

var headers = []string{"Date", "Type", "Category", "Icon", "Description", "Amount", "Formatted amount"}

// FileName is the attachment name for a report covering r.
func FileName(r budget.DateRange) string {
	return fmt.Sprintf("transactions_%s_%s.xlsx", r.From.Format("2006-01-02"), r.To.Format("2006-01-02"))
}

// WriteXLSX writes report as an .xlsx workbook: one row per transaction
// followed by income, expense and balance totals.
func WriteXLSX(w io.Writer, report budget.Report) error {
	f, err := Workbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func Workbook(report budget.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	sw := &sheetWriter{f: f}
	for i, header := range headers {
		sw.value(i+1, 1, header)
	}
	sw.style(1, 1, len(headers), 1, styles.header)

	row := 2
	for _, t := range report.Transactions {
		values := []interface{}{
			t.Date.Format("2006-01-02"),
			string(t.Type),
			t.Category,
			t.CategoryIcon,
			t.Description,
			t.Amount.InexactFloat64(),
			t.FormattedAmount,
		}
		for col, v := range values {
			sw.value(col+1, row, v)
		}

		if t.Type == budget.Income {
			sw.style(6, row, 6, row, styles.income)
		} else {
			sw.style(6, row, 6, row, styles.expense)
		}
		row++
	}

	row++
	totals := []struct {
		label  string
		amount decimal.Decimal
	}{
		{label: "Total income", amount: report.Totals.Income},
		{label: "Total expense", amount: report.Totals.Expense},
		{label: "Balance", amount: report.Totals.Balance()},
	}
	for _, total := range totals {
		sw.value(5, row, total.label)
		sw.value(6, row, total.amount.InexactFloat64())
		sw.value(7, row, report.Formatter.Format(total.amount))
		sw.style(5, row, 7, row, styles.total)
		row++
	}

	sw.width("A", "B", 12)
	sw.width("C", "D", 16)
	sw.width("E", "E", 32)
	sw.width("F", "G", 18)

	if sw.err != nil {
		f.Close()
		return nil, sw.err
	}
	return f, nil
}

// sheetWriter writes to SheetName and keeps the first error; later calls are
// no-ops once it is set.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (sw *sheetWriter) value(col, row int, v interface{}) {
	if sw.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		sw.err = fmt.Errorf("cell name: %w", err)
		return
	}
	if err := sw.f.SetCellValue(SheetName, cell, v); err != nil {
		sw.err = fmt.Errorf("set cell %s: %w", cell, err)
	}
}

func (sw *sheetWriter) style(fromCol, fromRow, toCol, toRow, styleID int) {
	if sw.err != nil {
		return
	}
	from, err := excelize.CoordinatesToCellName(fromCol, fromRow)
	if err != nil {
		sw.err = fmt.Errorf("cell name: %w", err)
		return
	}
	to, err := excelize.CoordinatesToCellName(toCol, toRow)
	if err != nil {
		sw.err = fmt.Errorf("cell name: %w", err)
		return
	}
	if err := sw.f.SetCellStyle(SheetName, from, to, styleID); err != nil {
		sw.err = fmt.Errorf("style %s:%s: %w", from, to, err)
	}
}

func (sw *sheetWriter) width(fromCol, toCol string, width float64) {
	if sw.err != nil {
		return
	}
	if err := sw.f.SetColWidth(SheetName, fromCol, toCol, width); err != nil {
		sw.err = fmt.Errorf("column width %s:%s: %w", fromCol, toCol, err)
	}
}

type sheetStyles struct {
	header, income, expense, total int
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	var (
		s   sheetStyles
		err error
	)

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{colorHeader}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return s, fmt.Errorf("create header style: %w", err)
	}

	s.income, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Color: colorIncome},
		NumFmt: 4, // #,##0.00
	})
	if err != nil {
		return s, fmt.Errorf("create income style: %w", err)
	}

	s.expense, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Color: colorExpense},
		NumFmt: 4,
	})
	if err != nil {
		return s, fmt.Errorf("create expense style: %w", err)
	}

	s.total, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: []excelize.Border{{Type: "top", Color: colorHeader, Style: 2}},
	})
	if err != nil {
		return s, fmt.Errorf("create total style: %w", err)
	}
	return s, nil
}
