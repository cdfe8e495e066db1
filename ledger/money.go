package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Decimal helpers and display formatting
// =============================================================================

// settledEpsilon is the threshold below which a balance counts as zero.
// Debts whose absolute balance falls under one cent are paid off.
var settledEpsilon = decimal.New(1, -2) // 0.01

// IsSettled reports whether the balance is close enough to zero for the
// debt to count as paid off.
func IsSettled(balance decimal.Decimal) bool {
	return balance.Abs().LessThan(settledEpsilon)
}

// MustDecimal parses a decimal literal, returning zero on malformed input.
// Intended for constants in code and tests.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseMoney parses user-entered monetary input. Both "1234.56" and the
// pt-BR form "1.234,56" are accepted.
func ParseMoney(input string) (decimal.Decimal, error) {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &InvalidAmountError{Input: input}
	}
	return d, nil
}

// FormatNumber renders a value with two decimal places in pt-BR style:
// comma decimal separator, dot thousands separator.
func FormatNumber(v decimal.Decimal) string {
	s := v.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart := s[:len(s)-3]
	fracPart := s[len(s)-2:]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}

// FormatBRL renders a currency string like "R$ 1.234,56".
func FormatBRL(v decimal.Decimal) string {
	return "R$ " + FormatNumber(v)
}
