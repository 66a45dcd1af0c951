/*
Package generic provides the primitives shared by the arrear engine.

PURPOSE:
  This package contains the small, domain-agnostic types that the pay-scale,
  DA-rate and timeline packages build on. Nothing here knows about a
  particular pay matrix or DA schedule; those are reference data loaded by
  the factory package.

KEY CONCEPTS IN THIS FILE (types.go):
  - GradePay: Pay-band code selecting a pay-matrix track (6600, 7600, ...)
  - Money helpers: decimal arithmetic with a pinned 2-place rounding rule
  - Rate helpers: DA rates are decimal fractions (0.10 = 10%)

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal, never float64, for money and rates
  2. Reproducibility: One rounding rule (half-up, 2 places) for every amount
  3. Type Safety: GradePay is its own type so it cannot be mixed with basics

USAGE:
  rate := generic.MustParseDecimal("0.13")
  salary := generic.ApplyRate(76000, rate) // 85880.00

SEE ALSO:
  - time.go: Month, the time point every computation is keyed on
  - period.go: Period, an inclusive month range
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// =============================================================================
// GRADE PAY
// =============================================================================

// GradePay identifies a pay-matrix track.
type GradePay int

func (gp GradePay) String() string { return strconv.Itoa(int(gp)) }

// ParseGradePay converts "6600" into GradePay(6600).
func ParseGradePay(s string) (GradePay, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, &GradePayError{Value: s}
	}
	return GradePay(n), nil
}

// SortGradePays sorts grade pays ascending, in place.
func SortGradePays(gps []GradePay) {
	sort.Slice(gps, func(i, j int) bool { return gps[i] < gps[j] })
}

// =============================================================================
// MONEY - Fixed-point amounts
// =============================================================================

// MoneyPlaces is the number of decimal places every amount is rounded to.
const MoneyPlaces = 2

// RoundMoney rounds to MoneyPlaces, half away from zero. For the non-negative
// amounts this engine produces that is conventional round-half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// ApplyRate returns round(basic * (1 + rate), 2).
func ApplyRate(basic int, rate decimal.Decimal) decimal.Decimal {
	return RoundMoney(decimal.NewFromInt(int64(basic)).Mul(decimal.NewFromInt(1).Add(rate)))
}

// Percent converts a fraction into a percentage (0.13 -> 13).
func Percent(rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(100))
}

// Sum adds amounts without intermediate rounding.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// MustParseDecimal parses a literal and panics if it is malformed.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("generic: invalid decimal %q: %v", s, err))
	}
	return d
}
