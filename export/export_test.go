package export_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/arrear-engine/arrear"
	"github.com/warp/arrear-engine/export"
	"github.com/warp/arrear-engine/factory"
)

func firstYearReport(t *testing.T) *arrear.Report {
	t.Helper()
	e := factory.MustDefault().NewEngine()
	in, err := arrear.ParseInput(arrear.RawInput{
		InitialGradePay: 6600,
		InitialBasic:    73700,
		IncrementMonth:  1,
		EndMonth:        "202101",
	})
	require.NoError(t, err)
	res, err := e.Compute(in)
	require.NoError(t, err)
	return arrear.NewReport(in, e.Policy(), res)
}

// =============================================================================
// AMOUNT FORMATTING
// =============================================================================

func TestFormatINR(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "₹ 0.00"},
		{"999", "₹ 999.00"},
		{"3080", "₹ 3,080.00"},
		{"40124", "₹ 40,124.00"},
		{"155832.5", "₹ 1,55,832.50"},
		{"1234567.891", "₹ 12,34,567.89"},
		{"123456789", "₹ 12,34,56,789.00"},
		{"-3080", "-₹ 3,080.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, export.FormatINR(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestGroupIndian_Negative(t *testing.T) {
	assert.Equal(t, "-1,00,000.00", export.GroupIndian(decimal.NewFromInt(-100000)))
}

// =============================================================================
// CSV
// =============================================================================

func TestWriteCSV(t *testing.T) {
	rep := firstYearReport(t)

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, rep.Result))
	assert.Contains(t, buf.String(), "\r\n")

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1+13+1)

	assert.Equal(t, export.Columns, rows[0])
	assert.Equal(t, []string{"Jan-2020", "6600", "73700", "76500", "10", "81070.00", "84150.00", "3080.00"}, rows[1])
	assert.Equal(t, []string{"Jan-2021", "6600", "76000", "78800", "13", "85880.00", "89044.00", "3164.00"}, rows[13])

	total := rows[14]
	assert.Equal(t, "Total", total[0])
	assert.Equal(t, "40124.00", total[len(total)-1])
}

func TestWriteCSV_NilResult(t *testing.T) {
	assert.Error(t, export.WriteCSV(&bytes.Buffer{}, nil))
}

// =============================================================================
// XLSX
// =============================================================================

func TestWriteXLSX(t *testing.T) {
	rep := firstYearReport(t)
	matrix := factory.MustDefault().Matrix

	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, rep, matrix))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{export.ArrearSheet, export.MatrixSheet}, f.GetSheetList())

	rows, err := f.GetRows(export.ArrearSheet)
	require.NoError(t, err)
	assert.Equal(t, export.Columns, rows[0])
	assert.Equal(t, "Jan-2020", rows[1][0])
	assert.Equal(t, "Jan-2021", rows[13][0])
	assert.Equal(t, "Total", rows[14][0])

	raw, err := f.GetCellValue(export.ArrearSheet, "H15", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString(raw).Equal(decimal.NewFromInt(40124)), raw)

	banner, err := f.GetCellValue(export.ArrearSheet, "A17")
	require.NoError(t, err)
	assert.Equal(t, "Total Arrear: ₹ 40,124.00", banner)

	matrixRows, err := f.GetRows(export.MatrixSheet)
	require.NoError(t, err)
	assert.Len(t, matrixRows, 1+28+22)
}

func TestWriteXLSX_WithoutMatrix(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, firstYearReport(t), nil))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{export.ArrearSheet}, f.GetSheetList())
}

func TestWriteMatrixXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteMatrixXLSX(&buf, factory.MustDefault().Matrix))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.MatrixSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"6600", "0", "73700", "76500", "2800"}, rows[1])
	assert.Equal(t, []string{"7600", "21", "181200", "192100", "10900"}, rows[len(rows)-1])
}

func TestWriteXLSX_RequiresResult(t *testing.T) {
	assert.Error(t, export.WriteXLSX(&bytes.Buffer{}, &arrear.Report{}, nil))
}

// =============================================================================
// TERMINAL TABLES
// =============================================================================

func TestRenderTable(t *testing.T) {
	out := export.RenderTable(firstYearReport(t).Result)

	assert.Contains(t, out, "MONTH")
	assert.Contains(t, out, "Jan-2021")
	assert.Contains(t, out, "increment")
	assert.Contains(t, out, "₹ 40,124.00")
}

func TestRenderSummary(t *testing.T) {
	out := export.RenderSummary(firstYearReport(t).Result)
	assert.Contains(t, out, "2020")
	assert.Contains(t, out, "₹ 36,960.00")
	assert.Contains(t, out, "₹ 3,164.00")
}

func TestRenderMatrixAndRates(t *testing.T) {
	ref := factory.MustDefault()

	matrix := export.RenderMatrix(ref.Matrix)
	assert.Contains(t, matrix, "165600")
	assert.Contains(t, matrix, "192100")

	rates := export.RenderRates(ref.Rates)
	assert.Contains(t, rates, "Jan-2020")
	assert.Contains(t, rates, "28%")
}
