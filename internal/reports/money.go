package reports

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var mexico = message.NewPrinter(language.MustParse("es-MX"))

// FormatMoney renders an MXN amount with Mexican digit grouping, e.g. "$1,234.50".
func FormatMoney(v float64) string {
	if v < 0 {
		return mexico.Sprintf("-$%.2f", -v)
	}
	return mexico.Sprintf("$%.2f", v)
}

// FormatCount groups an integer quantity the same way.
func FormatCount(n int) string {
	return mexico.Sprintf("%d", n)
}
