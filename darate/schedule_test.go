package darate_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/arrear-engine/darate"
	"github.com/warp/arrear-engine/factory"
	"github.com/warp/arrear-engine/generic"
)

func month(year int, m time.Month) generic.Month {
	return generic.NewMonth(year, m)
}

func rate(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRateAt_DefaultHistory(t *testing.T) {
	rates := factory.MustDefault().Rates

	tests := []struct {
		at   generic.Month
		want string
	}{
		{at: month(2019, time.June), want: "0.10"}, // before the table begins
		{at: month(2020, time.January), want: "0.10"},
		{at: month(2020, time.December), want: "0.10"},
		{at: month(2021, time.January), want: "0.13"},
		{at: month(2022, time.June), want: "0.13"}, // gap: no entry in 2022
		{at: month(2023, time.February), want: "0.13"},
		{at: month(2023, time.March), want: "0.16"},
		{at: month(2023, time.December), want: "0.16"},
		{at: month(2024, time.January), want: "0.20"},
		{at: month(2024, time.March), want: "0.20"},
		{at: month(2024, time.April), want: "0.24"},
		{at: month(2025, time.March), want: "0.24"},
		{at: month(2025, time.April), want: "0.28"},
		{at: month(2030, time.January), want: "0.28"},
	}

	for _, tt := range tests {
		t.Run(tt.at.YYYYMM(), func(t *testing.T) {
			got := rates.RateAt(tt.at)
			assert.True(t, rate(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestRateAt_MonotonicOverHistory(t *testing.T) {
	// DA rates only rise over the modeled period.
	rates := factory.MustDefault().Rates

	prev := rates.RateAt(month(2019, time.January))
	for m := month(2019, time.January); m.BeforeOrEqual(month(2030, time.December)); m = m.Next() {
		current := rates.RateAt(m)
		assert.False(t, current.LessThan(prev), "rate dropped at %s: %s < %s", m, current, prev)
		prev = current
	}
}

func TestEntryAt(t *testing.T) {
	rates := factory.MustDefault().Rates

	e := rates.EntryAt(month(2024, time.February))
	assert.Equal(t, "202401", e.Effective.YYYYMM())
	assert.True(t, decimal.NewFromInt(20).Equal(e.Percent()))

	assert.Equal(t, "202001", rates.First().Effective.YYYYMM())
	assert.Equal(t, 6, rates.Len())
}

func TestNewSchedule_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		entries []darate.Entry
	}{
		{name: "empty"},
		{name: "not increasing", entries: []darate.Entry{
			{Effective: month(2021, time.January), Rate: rate("0.10")},
			{Effective: month(2020, time.January), Rate: rate("0.13")},
		}},
		{name: "duplicate date", entries: []darate.Entry{
			{Effective: month(2021, time.January), Rate: rate("0.10")},
			{Effective: month(2021, time.January), Rate: rate("0.13")},
		}},
		{name: "negative rate", entries: []darate.Entry{
			{Effective: month(2021, time.January), Rate: rate("-0.01")},
		}},
		{name: "zero month", entries: []darate.Entry{
			{Rate: rate("0.10")},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := darate.NewSchedule(tt.entries)
			assert.ErrorIs(t, err, generic.ErrInvalidReferenceData)
		})
	}
}

func TestSchedule_EntriesAreCopies(t *testing.T) {
	s := darate.MustNewSchedule([]darate.Entry{
		{Effective: month(2020, time.January), Rate: rate("0.10")},
	})

	entries := s.Entries()
	require.Len(t, entries, 1)
	entries[0].Rate = rate("0.99")

	assert.True(t, rate("0.10").Equal(s.RateAt(month(2020, time.January))))
}

func TestSchedule_Span(t *testing.T) {
	span := factory.MustDefault().Rates.Span()
	assert.Equal(t, "202001", span.Start.YYYYMM())
	assert.Equal(t, "202504", span.End.YYYYMM())
	assert.Equal(t, 64, span.Len())
}
