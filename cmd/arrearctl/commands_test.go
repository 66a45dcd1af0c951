package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/arrear-engine/factory"
	"github.com/warp/arrear-engine/generic"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCalcCommand(t *testing.T) {
	t.Run("PrintsTableAndTotal", func(t *testing.T) {
		out, err := execute(t, "calc", "--basic", "73700", "--increment-month", "1", "--upto", "202101")
		require.NoError(t, err)
		assert.Contains(t, out, "Jan-2021")
		assert.Contains(t, out, "Total Arrear: ₹ 40,124.00")
	})

	t.Run("Summary", func(t *testing.T) {
		out, err := execute(t, "calc", "--basic", "73700", "--increment-month", "1", "--upto", "202312", "--summary")
		require.NoError(t, err)
		assert.Contains(t, out, "2023")
		assert.Contains(t, out, "Total Arrear: ₹ 1,55,832.00")
	})

	t.Run("WritesFiles", func(t *testing.T) {
		dir := t.TempDir()
		xlsxPath := filepath.Join(dir, "arrear.xlsx")
		csvPath := filepath.Join(dir, "arrear.csv")

		out, err := execute(t, "calc", "--basic", "73700", "--increment-month", "1", "--upto", "202101",
			"--xlsx", xlsxPath, "--csv", csvPath)
		require.NoError(t, err)
		assert.Contains(t, out, "Wrote "+xlsxPath)
		assert.Contains(t, out, "Wrote "+csvPath)

		f, err := excelize.OpenFile(xlsxPath)
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("Arrear")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(rows), 15)

		data, err := os.ReadFile(csvPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Total")
	})

	t.Run("MissingRequiredFlag", func(t *testing.T) {
		_, err := execute(t, "calc", "--basic", "73700", "--upto", "202101")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "increment-month")
	})

	t.Run("BasicNotOnMatrix", func(t *testing.T) {
		_, err := execute(t, "calc", "--basic", "73701", "--increment-month", "1", "--upto", "202101")
		require.Error(t, err)
	})

	t.Run("BadPromotionMonth", func(t *testing.T) {
		_, err := execute(t, "calc", "--basic", "73700", "--increment-month", "1", "--upto", "202101", "--promotion", "2023-06")
		require.Error(t, err)
	})

	t.Run("MissingReferenceFile", func(t *testing.T) {
		_, err := execute(t, "calc", "--reference", filepath.Join(t.TempDir(), "nope.json"),
			"--basic", "73700", "--increment-month", "1", "--upto", "202101")
		require.Error(t, err)
	})
}

func TestMatrixCommand(t *testing.T) {
	out, err := execute(t, "matrix")
	require.NoError(t, err)
	assert.Contains(t, out, "73700")
	assert.Contains(t, out, "192100")

	path := filepath.Join(t.TempDir(), "matrix.xlsx")
	out, err = execute(t, "matrix", "--xlsx", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestRatesCommand(t *testing.T) {
	out, err := execute(t, "rates")
	require.NoError(t, err)
	assert.Contains(t, out, "Apr-2025")

	out, err = execute(t, "rates", "--at", "202310")
	require.NoError(t, err)
	assert.Contains(t, out, "DA for Oct-2023: 16% (effective Mar-2023)")

	_, err = execute(t, "rates", "--at", "oct23")
	require.Error(t, err)
}

func TestCalcCommand_Environment(t *testing.T) {
	firstYear := []string{"calc", "--basic", "73700", "--increment-month", "1", "--upto", "202101"}

	t.Run("IncrementTimingFromEnv", func(t *testing.T) {
		// GIVEN the default timing, Jan-2021 already shows the incremented basic
		out, err := execute(t, firstYear...)
		require.NoError(t, err)
		assert.Contains(t, out, "76000")

		// WHEN ARREAR_INCREMENT_TIMING moves the increment after pay
		t.Setenv("ARREAR_INCREMENT_TIMING", "after_pay")
		out, err = execute(t, firstYear...)

		// THEN the step moves only after the last printed month
		require.NoError(t, err)
		assert.NotContains(t, out, "76000")
	})

	t.Run("FlagOverridesEnv", func(t *testing.T) {
		t.Setenv("ARREAR_INCREMENT_TIMING", "after_pay")
		out, err := execute(t, append(firstYear, "--increment-after-pay=false")...)
		require.NoError(t, err)
		assert.Contains(t, out, "76000")
	})

	t.Run("MaxMonthsFromEnv", func(t *testing.T) {
		t.Setenv("ARREAR_MAX_MONTHS", "12")
		_, err := execute(t, firstYear...)
		require.Error(t, err)
		assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
	})

	t.Run("InvalidEnv", func(t *testing.T) {
		t.Setenv("ARREAR_INCREMENT_TIMING", "sometimes")
		_, err := execute(t, firstYear...)
		require.Error(t, err)
	})

	t.Run("ReferenceFromEnv", func(t *testing.T) {
		t.Setenv("ARREAR_REFERENCE_FILE", filepath.Join(t.TempDir(), "missing.json"))
		_, err := execute(t, firstYear...)
		require.Error(t, err)

		// an explicit --reference wins over the environment
		data, err := json.Marshal(factory.MustDefault().ToJSON())
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "reference.json")
		require.NoError(t, os.WriteFile(path, data, 0o600))

		out, err := execute(t, append(firstYear, "--reference", path)...)
		require.NoError(t, err)
		assert.Contains(t, out, "Total Arrear: ₹ 40,124.00")
	})
}
