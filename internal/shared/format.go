package shared

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Display formatting shared between the JSON API and file exports so
// figures on screen match figures in downloaded reports.

const displayDateLayout = "Jan 2, 2006 3:04 PM"

var displayPrinter = message.NewPrinter(language.English)

// FormatPeso renders a money amount with the peso sign, two decimals and
// thousand separators.
func FormatPeso(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return displayPrinter.Sprintf("₱%.2f", f)
}

// FormatQuantity renders a quantity without trailing zeros.
func FormatQuantity(qty float64) string {
	s := strconv.FormatFloat(qty, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// FormatDate renders timestamps in the display timezone.
func FormatDate(t time.Time) string {
	return t.Local().Format(displayDateLayout)
}
