package dashboard

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Format selects how a numeric field is displayed.
type Format int

const (
	// Grouped uses the locale's digit grouping, like 1,234,567.
	Grouped Format = iota
	// Percent shows one decimal place and a trailing %.
	Percent
	// Decimal shows two decimal places.
	Decimal
)

// Field binds a display element to a numeric payload path.
type Field struct {
	ID     string
	Label  string
	Path   string
	Format Format
	// Seed is the value shown before the first successful poll.
	Seed float64
}

// Fields are the dashboard's value cards, seeded with the server's fallback figures.
var Fields = []Field{
	{ID: "gdp-value", Label: "GDP (M USD)", Path: "world_bank.gdp", Format: Grouped, Seed: 125000},
	{ID: "inflation-value", Label: "INFLATION", Path: "world_bank.inflation_wb", Format: Percent, Seed: 6.8},
	{ID: "unemployment-value", Label: "UNEMPLOYMENT", Path: "world_bank.unemployment_wb", Format: Percent, Seed: 10.2},
	{ID: "debt-value", Label: "PUBLIC DEBT (% GDP)", Path: "world_bank.public_debt_wb", Format: Percent, Seed: 75.3},
	{ID: "fdi-value", Label: "FDI (M USD)", Path: "world_bank.fdi", Format: Grouped, Seed: 5000},
	{ID: "trade-balance-value", Label: "TRADE BALANCE (M USD)", Path: "world_bank.trade_balance_wb", Format: Grouped, Seed: -26700},
	{ID: "exchange-rate-value", Label: "EUR RATE", Path: "monetary.exchange_rate_eur", Format: Decimal, Seed: 10.5},
}

// Formatter renders numbers for one locale.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter returns a formatter for tag.
func NewFormatter(tag language.Tag) Formatter {
	return Formatter{printer: message.NewPrinter(tag)}
}

// Format renders v in the given format.
func (f Formatter) Format(v float64, format Format) string {
	switch format {
	case Percent:
		return strconv.FormatFloat(v, 'f', 1, 64) + "%"
	case Decimal:
		return strconv.FormatFloat(v, 'f', 2, 64)
	default:
		return f.printer.Sprint(number.Decimal(v))
	}
}
