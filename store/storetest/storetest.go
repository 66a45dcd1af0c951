// Package storetest holds the behavior every arrear.ReportStore must share.
// Each implementation's tests call Run with a constructor.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/arrear-engine/arrear"
	"github.com/warp/arrear-engine/factory"
	"github.com/warp/arrear-engine/generic"
)

// NewReport computes a report for raw against the default reference data.
func NewReport(t *testing.T, raw arrear.RawInput, createdAt time.Time) *arrear.Report {
	t.Helper()
	e := factory.MustDefault().NewEngine()
	in, err := arrear.ParseInput(raw)
	require.NoError(t, err)
	res, err := e.Compute(in)
	require.NoError(t, err)

	rep := arrear.NewReport(in, e.Policy(), res)
	rep.CreatedAt = createdAt.UTC()
	return rep
}

// Run exercises a fresh store from newStore against the ReportStore contract.
func Run(t *testing.T, newStore func(t *testing.T) arrear.ReportStore) {
	t.Run("save and get round trip", func(t *testing.T) { testRoundTrip(t, newStore(t)) })
	t.Run("get missing", func(t *testing.T) { testGetMissing(t, newStore(t)) })
	t.Run("duplicate id rejected", func(t *testing.T) { testDuplicate(t, newStore(t)) })
	t.Run("list newest first", func(t *testing.T) { testList(t, newStore(t)) })
	t.Run("delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("delete before", func(t *testing.T) { testDeleteBefore(t, newStore(t)) })
}

func testRoundTrip(t *testing.T, store arrear.ReportStore) {
	ctx := context.Background()

	// GIVEN: a promoted report
	rep := NewReport(t, arrear.RawInput{
		InitialGradePay: 6600,
		InitialBasic:    73700,
		IncrementMonth:  1,
		EndMonth:        "202401",
		PromotionMonth:  "202306",
	}, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC))

	// WHEN: saved and read back
	require.NoError(t, store.Save(ctx, rep))
	got, err := store.Get(ctx, rep.ID)
	require.NoError(t, err)

	// THEN: every figure survives
	assert.Equal(t, rep.ID, got.ID)
	assert.True(t, rep.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, rep.Input.Raw(), got.Input.Raw())
	assert.Equal(t, rep.Policy, got.Policy)
	assert.Equal(t, rep.Result.Period.String(), got.Result.Period.String())
	assert.Equal(t, rep.Result.TotalArrear.StringFixed(2), got.Result.TotalArrear.StringFixed(2))
	assert.Equal(t, rep.Result.Final.GradePay, got.Result.Final.GradePay)
	assert.Equal(t, rep.Result.Final.Step, got.Result.Final.Step)
	assert.True(t, got.Result.Final.Promoted)

	require.Len(t, got.Result.Records, len(rep.Result.Records))
	for i, want := range rep.Result.Records {
		rec := got.Result.Records[i]
		assert.Equal(t, want.Label, rec.Label)
		assert.Equal(t, want.GradePay, rec.GradePay)
		assert.Equal(t, want.Step, rec.Step)
		assert.Equal(t, want.OldBasic, rec.OldBasic)
		assert.Equal(t, want.NewBasic, rec.NewBasic)
		assert.True(t, want.DARate.Equal(rec.DARate), want.Label)
		assert.True(t, want.DAPercent.Equal(rec.DAPercent), want.Label)
		assert.Equal(t, want.OldSalary.StringFixed(2), rec.OldSalary.StringFixed(2))
		assert.Equal(t, want.NewSalary.StringFixed(2), rec.NewSalary.StringFixed(2))
		assert.Equal(t, want.Arrear.StringFixed(2), rec.Arrear.StringFixed(2))
		assert.Equal(t, want.Cumulative.StringFixed(2), rec.Cumulative.StringFixed(2))
		assert.Equal(t, want.Promoted, rec.Promoted)
		assert.Equal(t, want.Incremented, rec.Incremented)
	}
}

func testGetMissing(t *testing.T, store arrear.ReportStore) {
	_, err := store.Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, generic.ErrReportNotFound)
	assert.True(t, generic.IsNotFound(err))
}

func testList(t *testing.T, store arrear.ReportStore) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []string
	for i, end := range []string{"202012", "202112", "202212"} {
		rep := NewReport(t, arrear.RawInput{InitialGradePay: 6600, InitialBasic: 73700, IncrementMonth: 1, EndMonth: end},
			base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, store.Save(ctx, rep))
		ids = append(ids, rep.ID)
	}

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, 36, all[0].Months)
	assert.Equal(t, "36960.00", all[2].TotalArrear.StringFixed(2))
	assert.Equal(t, "202012", all[2].EndMonth.YYYYMM())
	assert.Nil(t, all[2].PromotionMonth)

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, ids[2], limited[0].ID)
}

func testDelete(t *testing.T, store arrear.ReportStore) {
	ctx := context.Background()
	rep := NewReport(t, arrear.RawInput{InitialGradePay: 7600, InitialBasic: 96800, IncrementMonth: 7, EndMonth: "202112"}, time.Now())
	require.NoError(t, store.Save(ctx, rep))

	require.NoError(t, store.Delete(ctx, rep.ID))

	_, err := store.Get(ctx, rep.ID)
	assert.ErrorIs(t, err, generic.ErrReportNotFound)
	assert.ErrorIs(t, store.Delete(ctx, rep.ID), generic.ErrReportNotFound)
}

func testDeleteBefore(t *testing.T, store arrear.ReportStore) {
	ctx := context.Background()
	cutoff := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	raw := arrear.RawInput{InitialGradePay: 6600, InitialBasic: 73700, IncrementMonth: 1, EndMonth: "202006"}

	old := NewReport(t, raw, cutoff.Add(-48*time.Hour))
	edge := NewReport(t, raw, cutoff)
	fresh := NewReport(t, raw, cutoff.Add(time.Hour))
	for _, r := range []*arrear.Report{old, edge, fresh} {
		require.NoError(t, store.Save(ctx, r))
	}

	n, err := store.DeleteBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	remaining, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, fresh.ID, remaining[0].ID)
	assert.Equal(t, edge.ID, remaining[1].ID)
}

func testDuplicate(t *testing.T, store arrear.ReportStore) {
	ctx := context.Background()

	// GIVEN: a saved report
	first := NewReport(t, arrear.RawInput{
		InitialGradePay: 6600, InitialBasic: 73700, IncrementMonth: 1, EndMonth: "202101",
	}, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, first))

	// WHEN: a different report is saved under the same ID
	second := NewReport(t, arrear.RawInput{
		InitialGradePay: 6600, InitialBasic: 76000, IncrementMonth: 7, EndMonth: "202312",
	}, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	second.ID = first.ID
	err := store.Save(ctx, second)

	// THEN: the save fails and the original is intact
	require.ErrorIs(t, err, generic.ErrReportExists)
	got, err := store.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 73700, got.Input.Raw().InitialBasic)
	assert.Len(t, got.Result.Records, len(first.Result.Records))

	list, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
