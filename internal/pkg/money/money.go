// Package money converts between decimal strings and integer minor units.
package money

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/dealerflow/internal/domain/errors"
)

// MinorDigits is the number of fraction digits of the currency.
const MinorDigits = 2

var (
	hundred  = decimal.NewFromInt(100)
	minCents = decimal.NewFromInt(math.MinInt64)
	maxCents = decimal.NewFromInt(math.MaxInt64)

	// amountPattern admits plain decimals only: no sign prefix other than '-',
	// no exponent, digits on both sides of the point.
	amountPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)
)

// ToMinorUnits parses a signed decimal amount into cents.
func ToMinorUnits(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if !amountPattern.MatchString(s) {
		return 0, domainErrors.ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, domainErrors.ErrInvalidAmount
	}
	cents := d.Mul(hundred)
	if !cents.IsInteger() || cents.LessThan(minCents) || cents.GreaterThan(maxCents) {
		return 0, domainErrors.ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// ToDecimalString renders cents with two fraction digits.
func ToDecimalString(v int64) string {
	return decimal.New(v, -MinorDigits).StringFixed(MinorDigits)
}

// Display renders cents for user-facing output. Zero is suppressed.
func Display(v int64) string {
	if v == 0 {
		return ""
	}
	return ToDecimalString(v)
}

// Percent returns amount*pct/100 rounded half away from zero.
func Percent(amount, pct int64) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(pct)).
		Div(hundred).
		Round(0).
		IntPart()
}

// Allocate splits total into n shares whose sum is exactly total.
// The remainder goes one cent at a time to the first shares.
func Allocate(total int64, n int) ([]int64, error) {
	if n <= 0 {
		return nil, domainErrors.ErrDivideByZero
	}
	count := int64(n)
	base := total / count
	rem := total % count

	shares := make([]int64, n)
	step := int64(1)
	if rem < 0 {
		step = -1
		rem = -rem
	}
	for i := range shares {
		shares[i] = base
		if int64(i) < rem {
			shares[i] += step
		}
	}
	return shares, nil
}
