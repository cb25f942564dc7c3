package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts cross the processor boundary in minor units (cents) and are stored
// in major units. These two functions are the only place the conversion lives;
// call sites must never multiply or divide by 100 themselves.

var hundred = decimal.NewFromInt(100)

// ToMinor converts a major-unit amount to the processor's minor-unit integer.
func ToMinor(major decimal.Decimal) int64 {
	return major.Mul(hundred).IntPart()
}

// FromMinor converts a processor minor-unit integer to a major-unit amount.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(hundred)
}

// Format renders a major-unit amount with its currency symbol.
func Format(currency string, major decimal.Decimal) string {
	v := major.StringFixed(2)
	switch strings.ToUpper(currency) {
	case "USD":
		return "$" + v
	case "EUR":
		return "€" + v
	case "GBP":
		return "£" + v
	default:
		return fmt.Sprintf("%s %s", v, strings.ToUpper(currency))
	}
}
