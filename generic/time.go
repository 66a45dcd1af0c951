package generic

import (
	"strings"
	"time"
)

// =============================================================================
// MONTH - Calendar month time point (every computation is monthly)
// =============================================================================

// Month is a calendar month, always normalized to the 1st at 00:00 UTC.
type Month struct {
	Time time.Time
}

const (
	yyyymmLayout = "200601"
	labelLayout  = "Jan-2006"
)

// Constructors
func NewMonth(year int, month time.Month) Month {
	return Month{Time: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)}
}

func MonthOf(t time.Time) Month {
	return NewMonth(t.Year(), t.Month())
}

// ParseYYYYMM parses exactly six digits, YYYYMM, with month 01-12.
func ParseYYYYMM(s string) (Month, error) {
	if len(s) != 6 {
		return Month{}, &DateFormatError{Value: s}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return Month{}, &DateFormatError{Value: s}
		}
	}
	t, err := time.Parse(yyyymmLayout, s)
	if err != nil {
		return Month{}, &DateFormatError{Value: s}
	}
	return MonthOf(t), nil
}

// MustParseYYYYMM parses a month literal or panics. For tests and constants.
func MustParseYYYYMM(s string) Month {
	m, err := ParseYYYYMM(s)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseOptionalYYYYMM returns nil for an empty (or blank) string.
func ParseOptionalYYYYMM(s string) (*Month, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, nil
	}
	m, err := ParseYYYYMM(trimmed)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Comparison
func (m Month) Before(other Month) bool        { return m.Time.Before(other.Time) }
func (m Month) After(other Month) bool         { return m.Time.After(other.Time) }
func (m Month) Equal(other Month) bool         { return m.Time.Equal(other.Time) }
func (m Month) BeforeOrEqual(other Month) bool { return !m.After(other) }
func (m Month) AfterOrEqual(other Month) bool  { return !m.Before(other) }

// Arithmetic
func (m Month) AddMonths(n int) Month { return Month{Time: m.Time.AddDate(0, n, 0)} }
func (m Month) Next() Month           { return m.AddMonths(1) }

// Properties
func (m Month) Year() int         { return m.Time.Year() }
func (m Month) Month() time.Month { return m.Time.Month() }
func (m Month) IsZero() bool      { return m.Time.IsZero() }
func (m Month) IsJanuary() bool   { return m.Time.Month() == time.January }
func (m Month) YYYYMM() string    { return m.Time.Format(yyyymmLayout) }
func (m Month) Label() string     { return m.Time.Format(labelLayout) }
func (m Month) String() string    { return m.YYYYMM() }

// MarshalText encodes the month as YYYYMM.
func (m Month) MarshalText() ([]byte, error) { return []byte(m.YYYYMM()), nil }

func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseYYYYMM(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// MonthsBetween returns the number of months from -> to (to - from).
func MonthsBetween(from, to Month) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

func StartOfYear(year int) Month { return NewMonth(year, time.January) }
func EndOfYear(year int) Month   { return NewMonth(year, time.December) }

func CurrentMonth() Month { return MonthOf(time.Now().UTC()) }
