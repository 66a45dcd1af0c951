/*
Package darate implements the dearness-allowance rate schedule.

PURPOSE:
  DA is a percentage supplement to basic pay that changes at fixed
  historical dates. The schedule answers one question: which rate was in
  force in a given month?

RESOLUTION RULE:
  RateAt(m) returns the rate of the latest entry whose effective month is
  at or before m. Entries need not be contiguous; a rate stays in force
  until the next change point. A month before the first entry resolves to
  the first entry's rate (the earliest rate applies retroactively).

  Example (default history):
    2020-01 10% | 2021-01 13% | 2023-03 16% | 2024-01 20% | 2024-04 24% | 2025-04 28%

    RateAt(2022-06) = 13%   (no change between 2021-01 and 2023-03)
    RateAt(2019-11) = 10%   (before the table begins)

INVARIANTS:
  - At least one entry
  - Effective months strictly increasing
  - Rates are non-negative decimal fractions (0.10 = 10%)

SEE ALSO:
  - factory/reference.go: Builds the schedule from JSON reference data
  - arrear/timeline.go: Resolves one rate per simulated month
*/
package darate

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/arrear-engine/generic"
)

// Entry is one change point of the schedule.
type Entry struct {
	Effective generic.Month   `json:"effective"`
	Rate      decimal.Decimal `json:"rate"`
}

// Percent returns the rate as a percentage.
func (e Entry) Percent() decimal.Decimal { return generic.Percent(e.Rate) }

// Schedule is an immutable, ordered list of DA change points.
type Schedule struct {
	entries []Entry
}

// NewSchedule copies and validates the entries.
func NewSchedule(entries []Entry) (*Schedule, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: DA schedule has no entries", generic.ErrInvalidReferenceData)
	}
	for i, e := range entries {
		if e.Effective.IsZero() {
			return nil, fmt.Errorf("%w: DA entry %d has no effective month", generic.ErrInvalidReferenceData, i)
		}
		if e.Rate.IsNegative() {
			return nil, fmt.Errorf("%w: DA entry %s has negative rate %s", generic.ErrInvalidReferenceData, e.Effective, e.Rate)
		}
		if i > 0 && !e.Effective.After(entries[i-1].Effective) {
			return nil, fmt.Errorf("%w: DA entry %s is not after %s",
				generic.ErrInvalidReferenceData, e.Effective, entries[i-1].Effective)
		}
	}
	return &Schedule{entries: append([]Entry(nil), entries...)}, nil
}

// MustNewSchedule is NewSchedule for static data; it panics on invalid input.
func MustNewSchedule(entries []Entry) *Schedule {
	s, err := NewSchedule(entries)
	if err != nil {
		panic(err)
	}
	return s
}

// RateAt returns the rate in force during month m.
func (s *Schedule) RateAt(m generic.Month) decimal.Decimal {
	rate := s.entries[0].Rate
	for _, e := range s.entries {
		if e.Effective.After(m) {
			break
		}
		rate = e.Rate
	}
	return rate
}

// EntryAt returns the change point governing month m.
func (s *Schedule) EntryAt(m generic.Month) Entry {
	current := s.entries[0]
	for _, e := range s.entries {
		if e.Effective.After(m) {
			break
		}
		current = e
	}
	return current
}

// First returns the earliest change point.
func (s *Schedule) First() Entry { return s.entries[0] }

// Entries returns a copy of the change points in order.
func (s *Schedule) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// Len returns the number of change points.
func (s *Schedule) Len() int { return len(s.entries) }

// Span returns the months from the first change point to the last one.
// Months after Span().End keep the last rate.
func (s *Schedule) Span() generic.Period {
	return generic.Period{Start: s.entries[0].Effective, End: s.entries[len(s.entries)-1].Effective}
}
