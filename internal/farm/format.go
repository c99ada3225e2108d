package farm

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Indonesian)

// Rupiah formats an amount as "Rp 20.000".
func Rupiah(v float64) string {
	return "Rp " + printer.Sprintf("%.0f", v)
}

// Kg formats a weight with up to two decimals, e.g. "1.250,5 kg".
func Kg(v float64) string {
	return Decimal(v) + " kg"
}

// Decimal formats v with Indonesian separators, dropping a zero fraction.
func Decimal(v float64) string {
	if v == float64(int64(v)) {
		return printer.Sprintf("%.0f", v)
	}
	return printer.Sprintf("%.2f", v)
}
