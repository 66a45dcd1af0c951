package generic_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/arrear-engine/generic"
)

func TestParseYYYYMM(t *testing.T) {
	tests := []struct {
		in      string
		want    generic.Month
		wantErr bool
	}{
		{in: "202001", want: generic.NewMonth(2020, time.January)},
		{in: "202602", want: generic.NewMonth(2026, time.February)},
		{in: "202312", want: generic.NewMonth(2023, time.December)},
		{in: "20201", wantErr: true},
		{in: "2020011", wantErr: true},
		{in: "202013", wantErr: true},
		{in: "202000", wantErr: true},
		{in: "2020-1", wantErr: true},
		{in: "abcdef", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := generic.ParseYYYYMM(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, generic.ErrInvalidDateFormat)
				assert.True(t, generic.IsClientError(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseOptionalYYYYMM_Blank(t *testing.T) {
	m, err := generic.ParseOptionalYYYYMM("   ")
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = generic.ParseOptionalYYYYMM(" 202306 ")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "202306", m.YYYYMM())
}

func TestMonth_LabelAndArithmetic(t *testing.T) {
	m := generic.NewMonth(2020, time.December)

	assert.Equal(t, "Dec-2020", m.Label())
	assert.Equal(t, "Jan-2021", m.Next().Label())
	assert.Equal(t, "202011", m.AddMonths(-1).YYYYMM())
	assert.Equal(t, 13, generic.MonthsBetween(generic.NewMonth(2020, time.January), generic.NewMonth(2021, time.February)))
}

func TestMonth_JSONRoundTrip(t *testing.T) {
	type wrapper struct {
		At generic.Month `json:"at"`
	}

	data, err := json.Marshal(wrapper{At: generic.NewMonth(2024, time.April)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"202404"}`, string(data))

	var w wrapper
	require.NoError(t, json.Unmarshal(data, &w))
	assert.Equal(t, "Apr-2024", w.At.Label())

	err = json.Unmarshal([]byte(`{"at":"2024-04"}`), &w)
	assert.ErrorIs(t, err, generic.ErrInvalidDateFormat)
}

func TestPeriod(t *testing.T) {
	start := generic.NewMonth(2020, time.January)

	t.Run("single month", func(t *testing.T) {
		p, err := generic.NewPeriod(start, start)
		require.NoError(t, err)
		assert.Equal(t, 1, p.Len())
		assert.Len(t, p.Months(), 1)
		assert.Equal(t, []int{2020}, p.Years())
	})

	t.Run("multi year", func(t *testing.T) {
		p, err := generic.NewPeriod(start, generic.NewMonth(2026, time.February))
		require.NoError(t, err)
		assert.Equal(t, 74, p.Len())
		months := p.Months()
		assert.Equal(t, "Jan-2020", months[0].Label())
		assert.Equal(t, "Feb-2026", months[len(months)-1].Label())
		assert.True(t, p.Contains(generic.NewMonth(2023, time.June)))
		assert.False(t, p.Contains(generic.NewMonth(2019, time.December)))
	})

	t.Run("inverted", func(t *testing.T) {
		_, err := generic.NewPeriod(start, generic.NewMonth(2019, time.December))
		assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
	})
}
