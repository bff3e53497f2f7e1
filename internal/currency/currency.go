// Package currency maps the supported currency codes to display formatters.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
	xcurrency "golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const Default = "USD"

type Currency struct {
	Code   string `json:"value"`
	Label  string `json:"label"`
	Locale string `json:"locale"`
}

var Supported = []Currency{
	{Code: "USD", Label: "$ Dollar", Locale: "en-US"},
	{Code: "EUR", Label: "€ Euro", Locale: "de-DE"},
	{Code: "GBP", Label: "£ Pound", Locale: "en-GB"},
	{Code: "JPY", Label: "¥ Yen", Locale: "ja-JP"},
}

// symbolStyle says where a currency's symbol goes. Digit separators come from
// the locale.
type symbolStyle struct {
	symbol string
	suffix bool
}

var symbols = map[string]symbolStyle{
	"USD": {symbol: "$"},
	"EUR": {symbol: "€", suffix: true},
	"GBP": {symbol: "£"},
	"JPY": {symbol: "￥"},
}

// Suffixed symbols are separated from the amount by a no-break space.
const symbolSeparator = "\u00a0"

func Lookup(code string) (Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range Supported {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

func IsSupported(code string) bool {
	_, ok := Lookup(code)
	return ok
}

type Formatter struct {
	currency Currency
	unit     xcurrency.Unit
	tag      language.Tag
	scale    int32
	symbol   symbolStyle
	group    string
	decimal  string
}

// FormatterFor never fails: unknown or empty codes get the USD/en-US formatter.
func FormatterFor(code string) Formatter {
	c, ok := Lookup(code)
	if !ok {
		c, _ = Lookup(Default)
	}

	unit := xcurrency.MustParseISO(c.Code)
	scale, _ := xcurrency.Standard.Rounding(unit)
	tag := language.MustParse(c.Locale)
	groupSep, decimalSep := separators(tag)

	return Formatter{
		currency: c,
		unit:     unit,
		tag:      tag,
		scale:    int32(scale),
		symbol:   symbols[c.Code],
		group:    groupSep,
		decimal:  decimalSep,
	}
}

// separators asks the locale's number formatter for its grouping and decimal
// separators.
func separators(tag language.Tag) (string, string) {
	p := message.NewPrinter(tag)
	grouped := stripDigits(p.Sprint(number.Decimal(1000000)))
	return grouped[:len(grouped)/2], stripDigits(p.Sprint(number.Decimal(1.5, number.Scale(1))))
}

func stripDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}
		return r
	}, s)
}

func (f Formatter) Code() string {
	return f.unit.String()
}

func (f Formatter) Locale() language.Tag {
	return f.tag
}

// Format renders amount with the currency symbol, the locale's separators and
// the currency's standard number of fraction digits.
func (f Formatter) Format(amount decimal.Decimal) string {
	rounded := amount.Round(f.scale)
	negative := rounded.IsNegative()
	digits := rounded.Abs().StringFixed(f.scale)

	intPart, fracPart := digits, ""
	if i := strings.IndexByte(digits, '.'); i >= 0 {
		intPart, fracPart = digits[:i], digits[i+1:]
	}

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	if !f.symbol.suffix {
		b.WriteString(f.symbol.symbol)
	}
	b.WriteString(group(intPart, f.group))
	if fracPart != "" {
		b.WriteString(f.decimal)
		b.WriteString(fracPart)
	}
	if f.symbol.suffix {
		b.WriteString(symbolSeparator)
		b.WriteString(f.symbol.symbol)
	}
	return b.String()
}

func group(intPart string, sep string) string {
	if len(intPart) <= 3 {
		return intPart
	}
	var b strings.Builder
	head := len(intPart) % 3
	if head > 0 {
		b.WriteString(intPart[:head])
	}
	for i := head; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String()
}
