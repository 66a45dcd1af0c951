// Package arrear implements the monthly arrear timeline.
// It walks a month range, advances an employee's (grade pay, step) position
// across promotion and increment events, and reconciles old-scale against
// new-scale pay, DA included, for every month.
package arrear

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/arrear-engine/generic"
)

// =============================================================================
// POLICY - Configurable event semantics
// =============================================================================

// IncrementTiming controls whether a due increment affects the month it
// falls in or only the months after it.
type IncrementTiming string

const (
	// IncrementBeforePay applies the increment before the month's pay is
	// resolved; the increment month itself is paid at the new step.
	IncrementBeforePay IncrementTiming = "before_pay"

	// IncrementAfterPay resolves the month at the old step and applies the
	// increment for the following month.
	IncrementAfterPay IncrementTiming = "after_pay"
)

// Policy holds the event rules that callers may pin explicitly.
type Policy struct {
	// SuppressIncrementOnPromotion skips an increment that falls due in the
	// promotion month. The promoted employee starts at the fixed step.
	SuppressIncrementOnPromotion bool

	IncrementTiming IncrementTiming
}

// DefaultPolicy: promotion suppresses increment, increment before pay.
func DefaultPolicy() Policy {
	return Policy{
		SuppressIncrementOnPromotion: true,
		IncrementTiming:              IncrementBeforePay,
	}
}

// ParseIncrementTiming maps "" to IncrementBeforePay.
func ParseIncrementTiming(s string) (IncrementTiming, bool) {
	switch IncrementTiming(s) {
	case "", IncrementBeforePay:
		return IncrementBeforePay, true
	case IncrementAfterPay:
		return IncrementAfterPay, true
	default:
		return "", false
	}
}

// PromotionTarget is the hard fixation applied on promotion.
type PromotionTarget struct {
	GradePay generic.GradePay
	Step     int
}

// DefaultPromotion fixes a promoted employee at GP 7600, step 0.
func DefaultPromotion() PromotionTarget {
	return PromotionTarget{GradePay: 7600, Step: 0}
}

// DefaultMaxMonths bounds one computation to fifty years of months.
const DefaultMaxMonths = 600

// DefaultStart is the first month of every computation (Jan-2020).
func DefaultStart() generic.Month {
	return generic.NewMonth(2020, time.January)
}

// =============================================================================
// STATE - Owned by exactly one computation
// =============================================================================

// State is the employee's position during a run. It is created from the
// input, mutated once per month, and discarded when the run ends.
type State struct {
	Month    generic.Month
	GradePay generic.GradePay
	Step     int
	Promoted bool
}

// =============================================================================
// RECORD / RESULT - Computation output
// =============================================================================

// Record is the immutable output for one month.
type Record struct {
	Month     generic.Month
	Label     string // "Jan-2020"
	GradePay  generic.GradePay
	Step      int
	OldBasic  int
	NewBasic  int
	DARate    decimal.Decimal // fraction, 0.10
	DAPercent decimal.Decimal // 10
	OldSalary decimal.Decimal // round(old basic * (1 + DA), 2)
	NewSalary decimal.Decimal // round(new basic * (1 + DA), 2)
	Arrear    decimal.Decimal // round(new salary - old salary, 2)

	// Cumulative is the running total including this month.
	Cumulative decimal.Decimal

	// Promoted is set on the month the promotion fired.
	Promoted bool

	// Incremented is set on the month an increment was granted. With
	// IncrementAfterPay the new step shows from the next record on.
	Incremented bool
}

// Result is the full output of a run: ordered records plus the total.
type Result struct {
	Period      generic.Period
	Records     []Record
	TotalArrear decimal.Decimal
	Final       State
}

// Months returns the number of records.
func (r *Result) Months() int { return len(r.Records) }

// Sum re-adds the per-month arrears. It always equals TotalArrear.
func (r *Result) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, rec := range r.Records {
		total = total.Add(rec.Arrear)
	}
	return total
}

// YearSummary is the arrear subtotal for one calendar year.
type YearSummary struct {
	Year   int
	Months int
	Arrear decimal.Decimal
}

// Summary groups the records by calendar year, ascending.
func (r *Result) Summary() []YearSummary {
	var out []YearSummary
	for _, rec := range r.Records {
		if n := len(out); n == 0 || out[n-1].Year != rec.Month.Year() {
			out = append(out, YearSummary{Year: rec.Month.Year(), Arrear: decimal.Zero})
		}
		last := &out[len(out)-1]
		last.Months++
		last.Arrear = last.Arrear.Add(rec.Arrear)
	}
	return out
}

// PromotionRecord returns the record in which the promotion fired.
func (r *Result) PromotionRecord() (Record, bool) {
	for _, rec := range r.Records {
		if rec.Promoted {
			return rec, true
		}
	}
	return Record{}, false
}
