package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/divan/num2words"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney renders v with two decimals and thousands grouping,
// e.g. 125000 -> "125,000.00".
func FormatMoney(v float64) string {
	return moneyPrinter.Sprintf("%.2f", round2(v))
}

// AmountInWords spells out the integer part of v followed by the currency
// code and the cents as a fraction, e.g. "One hundred twenty-five thousand
// PHP and 50/100".
func AmountInWords(v float64, currency string) string {
	v = round2(math.Abs(v))
	whole := int(v)
	cents := int(math.Round((v - float64(whole)) * 100))
	words := num2words.Convert(whole)
	if words != "" {
		words = strings.ToUpper(words[:1]) + words[1:]
	}
	return fmt.Sprintf("%s %s and %02d/100", words, currency, cents)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
