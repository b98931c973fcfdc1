package payment

import (
	"fmt"
	"strings"
)

// DefaultCurrency is assumed when a bill carries no currency code.
const DefaultCurrency = "USD"

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CAD": "$",
	"AUD": "$",
}

// FormatMoney renders an amount for display in the given ISO currency.
// Known currencies get their symbol; anything else falls back to
// "<CODE> <amount>".
func FormatMoney(amount float64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = DefaultCurrency
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	if symbol, ok := currencySymbols[code]; ok {
		return fmt.Sprintf("%s%s%.2f", sign, symbol, amount)
	}
	return fmt.Sprintf("%s%s %.2f", sign, code, amount)
}
