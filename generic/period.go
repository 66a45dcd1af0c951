package generic

// =============================================================================
// PERIOD - Inclusive month range a computation walks
// =============================================================================

// Period is the inclusive range [Start, End] of months.
//
// Examples:
//   - Arrear window: Jan-2020 .. Feb-2026
//   - Single month:  Jan-2020 .. Jan-2020 (Len() == 1)
type Period struct {
	Start Month
	End   Month
}

// NewPeriod returns ErrInvalidPeriod when end precedes start.
func NewPeriod(start, end Month) (Period, error) {
	p := Period{Start: start, End: end}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate checks that End is not before Start.
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return &PeriodError{Start: p.Start, End: p.End}
	}
	return nil
}

// Contains returns true if the month is within the period [Start, End]
func (p Period) Contains(m Month) bool {
	return m.AfterOrEqual(p.Start) && m.BeforeOrEqual(p.End)
}

// Len returns the number of months in the period, or 0 if it is inverted.
func (p Period) Len() int {
	n := MonthsBetween(p.Start, p.End) + 1
	if n < 0 {
		return 0
	}
	return n
}

// Months returns every month in the period, in order.
func (p Period) Months() []Month {
	months := make([]Month, 0, p.Len())
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.Next() {
		months = append(months, current)
	}
	return months
}

// Years returns the calendar years the period touches, ascending.
func (p Period) Years() []int {
	var years []int
	for y := p.Start.Year(); y <= p.End.Year() && p.Len() > 0; y++ {
		years = append(years, y)
	}
	return years
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
