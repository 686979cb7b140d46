// Package money formats euro cent amounts for German-language presentation.
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.German)

// FormatEUR renders cents as e.g. "1.234,50 €".
func FormatEUR(cents int64) string {
	return printer.Sprint(number.Decimal(float64(cents)/100, number.Scale(2))) + " €"
}

// ApplyBasisPoints returns amount * bp / 10000 rounded half away from zero.
func ApplyBasisPoints(amount int64, bp int64) int64 {
	p := amount * bp
	if p >= 0 {
		return (p + 5000) / 10000
	}
	return (p - 5000) / 10000
}
