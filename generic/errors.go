/*
errors.go - Centralized error types for the arrear engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Every input problem has its own sentinel so callers can branch with
  errors.Is; the structured types carry the offending values.

ERROR CATEGORIES:
  1. Input errors - malformed months, unknown basic, bad ordering
  2. Reference data errors - an invalid pay matrix or DA schedule
  3. Store errors - missing, duplicate or corrupt saved reports

USAGE:
  if errors.Is(err, generic.ErrUnknownBasic) {
      var ub *generic.UnknownBasicError
      errors.As(err, &ub)
      fmt.Println("no step with old basic", ub.Basic)
  }

SEE ALSO:
  - payscale/table.go: ReverseLookup / Lookup failures
  - arrear/input.go: Input validation
  - api/handlers.go: Maps these errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDateFormat is returned when a month string is not six digits YYYYMM.
	ErrInvalidDateFormat = errors.New("invalid date format: expected YYYYMM")

	// ErrUnknownBasic is returned when an initial basic has no exact match in
	// the selected track's old-basic column. There is no nearest-match fallback.
	ErrUnknownBasic = errors.New("basic not found in grade pay track")

	// ErrInvalidPromotionOrdering is returned when the promotion month precedes
	// the first computed month.
	ErrInvalidPromotionOrdering = errors.New("promotion month precedes start month")

	// ErrStepOutOfRange is returned by lookups past the end of a track.
	ErrStepOutOfRange = errors.New("step out of range")

	// ErrUnknownGradePay is returned when a grade pay has no track.
	ErrUnknownGradePay = errors.New("unknown grade pay")

	// ErrInvalidIncrementMonth is returned when the increment month is not 1-12.
	ErrInvalidIncrementMonth = errors.New("increment month must be between 1 and 12")

	// ErrInvalidPeriod is returned when the end month precedes the start month
	// or the range is longer than the engine allows.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInvalidReferenceData is returned when a pay matrix or DA schedule
	// violates its ordering/uniqueness invariants.
	ErrInvalidReferenceData = errors.New("invalid reference data")

	// ErrReportNotFound is returned when a saved report doesn't exist.
	ErrReportNotFound = errors.New("report not found")

	// ErrReportExists is returned when a report ID is saved twice.
	ErrReportExists = errors.New("report already exists")

	// ErrCorruptReport is returned when a stored report cannot be decoded.
	ErrCorruptReport = errors.New("corrupt stored report")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DateFormatError reports a month string that could not be parsed.
type DateFormatError struct {
	Field string // e.g. "end_month", "promotion_month"; empty when unknown
	Value string
}

func (e *DateFormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid month %q: expected YYYYMM", e.Value)
	}
	return fmt.Sprintf("invalid %s %q: expected YYYYMM", e.Field, e.Value)
}

func (e *DateFormatError) Unwrap() error {
	return ErrInvalidDateFormat
}

// UnknownBasicError reports a basic that is not an old-basic value of the track.
type UnknownBasicError struct {
	GradePay GradePay
	Basic    int
}

func (e *UnknownBasicError) Error() string {
	return fmt.Sprintf("basic %d not found in GP %s", e.Basic, e.GradePay)
}

func (e *UnknownBasicError) Unwrap() error {
	return ErrUnknownBasic
}

// StepOutOfRangeError reports a lookup beyond the top of a track.
type StepOutOfRangeError struct {
	GradePay GradePay
	Step     int
	MaxStep  int
}

func (e *StepOutOfRangeError) Error() string {
	return fmt.Sprintf("step %d out of range for GP %s (max %d)", e.Step, e.GradePay, e.MaxStep)
}

func (e *StepOutOfRangeError) Unwrap() error {
	return ErrStepOutOfRange
}

// GradePayError reports a grade pay that is malformed or has no track.
type GradePayError struct {
	Value string
}

func (e *GradePayError) Error() string {
	return fmt.Sprintf("unknown grade pay %q", e.Value)
}

func (e *GradePayError) Unwrap() error {
	return ErrUnknownGradePay
}

// PromotionOrderingError reports a promotion scheduled before the first month.
type PromotionOrderingError struct {
	Promotion Month
	Start     Month
}

func (e *PromotionOrderingError) Error() string {
	return fmt.Sprintf("promotion month %s precedes start month %s", e.Promotion, e.Start)
}

func (e *PromotionOrderingError) Unwrap() error {
	return ErrInvalidPromotionOrdering
}

// PeriodError reports an inverted month range.
type PeriodError struct {
	Start Month
	End   Month
}

func (e *PeriodError) Error() string {
	return fmt.Sprintf("end month %s precedes start month %s", e.End, e.Start)
}

func (e *PeriodError) Unwrap() error {
	return ErrInvalidPeriod
}

// PeriodLengthError reports a month range longer than the configured maximum.
type PeriodLengthError struct {
	Start  Month
	End    Month
	Months int
	Max    int
}

func (e *PeriodLengthError) Error() string {
	return fmt.Sprintf("period %s..%s spans %d months (max %d)", e.Start, e.End, e.Months, e.Max)
}

func (e *PeriodLengthError) Unwrap() error {
	return ErrInvalidPeriod
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDateFormat) ||
		errors.Is(err, ErrUnknownBasic) ||
		errors.Is(err, ErrInvalidPromotionOrdering) ||
		errors.Is(err, ErrUnknownGradePay) ||
		errors.Is(err, ErrInvalidIncrementMonth) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrReportNotFound)
}
