package currency

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BaseCode задает валюту, в которой хранятся все суммы.
const BaseCode = "USD"

var ErrUnknownCurrency = errors.New("unknown currency")

type Currency struct {
	Code   string          `json:"code"`
	Rate   decimal.Decimal `json:"rate"`
	Symbol string          `json:"symbol"`
}

// Table хранит неизменяемую таблицу курсов относительно базовой валюты.
type Table struct {
	currencies map[string]Currency
}

// NewTable создает таблицу валют. Курс должен быть положительным.
func NewTable(currencies ...Currency) (Table, error) {
	table := Table{currencies: make(map[string]Currency, len(currencies))}
	for _, c := range currencies {
		code := strings.ToUpper(strings.TrimSpace(c.Code))
		if code == "" {
			return Table{}, errors.New("currency code is required")
		}
		if !c.Rate.IsPositive() {
			return Table{}, fmt.Errorf("currency %s: rate must be positive", code)
		}
		c.Code = code
		table.currencies[code] = c
	}

	if _, ok := table.currencies[BaseCode]; !ok {
		return Table{}, fmt.Errorf("base currency %s is missing", BaseCode)
	}

	return table, nil
}

// DefaultTable возвращает стандартный набор валют приложения.
func DefaultTable() Table {
	table, err := NewTable(
		Currency{Code: "USD", Rate: decimal.NewFromInt(1), Symbol: "$"},
		Currency{Code: "INR", Rate: decimal.RequireFromString("83.5"), Symbol: "₹"},
		Currency{Code: "EUR", Rate: decimal.RequireFromString("0.92"), Symbol: "€"},
	)
	if err != nil {
		panic(err)
	}
	return table
}

// Lookup возвращает валюту по коду.
func (t Table) Lookup(code string) (Currency, error) {
	c, ok := t.currencies[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Currency{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return c, nil
}

// Codes возвращает отсортированный список кодов.
func (t Table) Codes() []string {
	codes := make([]string, 0, len(t.currencies))
	for code := range t.currencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// All возвращает валюты в порядке кодов.
func (t Table) All() []Currency {
	codes := t.Codes()
	out := make([]Currency, 0, len(codes))
	for _, code := range codes {
		out = append(out, t.currencies[code])
	}
	return out
}

// Converter переводит суммы между базовой валютой и валютой отображения.
type Converter struct {
	table   Table
	printer *message.Printer
}

// NewConverter создает конвертер поверх переданной таблицы.
func NewConverter(table Table) *Converter {
	return &Converter{
		table:   table,
		printer: message.NewPrinter(language.AmericanEnglish),
	}
}

// Table возвращает таблицу валют конвертера.
func (c *Converter) Table() Table {
	return c.table
}

// ToBase переводит введенную пользователем сумму в базовую валюту.
func (c *Converter) ToBase(amount decimal.Decimal, code string) (decimal.Decimal, error) {
	cur, err := c.table.Lookup(code)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Div(cur.Rate), nil
}

// ToDisplay переводит сумму из базовой валюты в валюту отображения.
func (c *Converter) ToDisplay(amount decimal.Decimal, code string) (decimal.Decimal, error) {
	cur, err := c.table.Lookup(code)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(cur.Rate), nil
}

// maxGroupedAmount ограничивает суммы, целая часть которых группируется по разрядам.
// Большие суммы выводятся без разделителей.
var maxGroupedAmount = decimal.NewFromInt(math.MaxInt64)

// Format форматирует сумму в валюте отображения, например "$1,234.50".
func (c *Converter) Format(amount decimal.Decimal, code string) (string, error) {
	cur, err := c.table.Lookup(code)
	if err != nil {
		return "", err
	}

	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}

	fixed := rounded.StringFixed(2)
	fraction := fixed[len(fixed)-2:]
	if rounded.GreaterThan(maxGroupedAmount) {
		return sign + cur.Symbol + fixed, nil
	}

	return sign + cur.Symbol + c.printer.Sprintf("%d", rounded.IntPart()) + "." + fraction, nil
}

// FormatBase переводит сумму из базовой валюты и форматирует ее.
func (c *Converter) FormatBase(amount decimal.Decimal, code string) (string, error) {
	display, err := c.ToDisplay(amount, code)
	if err != nil {
		return "", err
	}
	return c.Format(display, code)
}
