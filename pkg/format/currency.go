// Package format renders amounts for people to read.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Kroner returns an amount with Danish thousands separators and the currency
// suffix (e.g., "1.500.000 kr.").
func Kroner(amount int64) string {
	return message.NewPrinter(language.Danish).Sprintf("%d kr.", amount)
}

// Number returns an amount with Danish thousands separators and no suffix.
func Number(amount int64) string {
	return message.NewPrinter(language.Danish).Sprintf("%d", amount)
}

// YesNo renders a flag for notification bodies and tables.
func YesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
