package export

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/warp/arrear-engine/arrear"
	"github.com/warp/arrear-engine/darate"
	"github.com/warp/arrear-engine/payscale"
)

func headerRow(cols []string) table.Row {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	return row
}

func rightAligned(from, to int) []table.ColumnConfig {
	var cfg []table.ColumnConfig
	for n := from; n <= to; n++ {
		cfg = append(cfg, table.ColumnConfig{Number: n, Align: text.AlignRight})
	}
	return cfg
}

// RenderTable renders the month-by-month records with a total footer.
// Promotion and increment months are flagged in a trailing column.
func RenderTable(result *arrear.Result) string {
	t := table.NewWriter()
	t.AppendHeader(append(headerRow(Columns), "Event"))
	t.SetColumnConfigs(rightAligned(2, len(Columns)))

	for _, rec := range result.Records {
		row := table.Row{}
		for _, cell := range recordRow(rec) {
			row = append(row, cell)
		}
		t.AppendRow(append(row, eventLabel(rec)))
	}

	footer := make(table.Row, len(Columns)+1)
	footer[0] = "Total"
	footer[len(Columns)-1] = FormatINR(result.TotalArrear)
	t.AppendFooter(footer)
	return t.Render()
}

func eventLabel(rec arrear.Record) string {
	var events []string
	if rec.Promoted {
		events = append(events, "promotion")
	}
	if rec.Incremented {
		events = append(events, "increment")
	}
	return strings.Join(events, ", ")
}

// RenderSummary renders per-year arrear subtotals.
func RenderSummary(result *arrear.Result) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Year", "Months", "Arrear"})
	t.SetColumnConfigs(rightAligned(2, 3))
	for _, y := range result.Summary() {
		t.AppendRow(table.Row{y.Year, y.Months, FormatINR(y.Arrear)})
	}
	t.AppendFooter(table.Row{"Total", result.Months(), FormatINR(result.TotalArrear)})
	return t.Render()
}

// RenderMatrix renders every track of the pay matrix.
func RenderMatrix(matrix *payscale.Table) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Grade Pay", "Step", "Old Basic", "New Basic", "Difference"})
	t.SetColumnConfigs(rightAligned(2, 5))
	for _, gp := range matrix.Tracks() {
		for step, e := range matrix.Entries(gp) {
			t.AppendRow(table.Row{gp.String(), step, e.OldBasic, e.NewBasic, e.Difference()})
		}
		t.AppendSeparator()
	}
	return t.Render()
}

// RenderRates renders the DA history.
func RenderRates(schedule *darate.Schedule) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Effective", "DA %"})
	t.SetColumnConfigs(rightAligned(2, 2))
	for _, e := range schedule.Entries() {
		t.AppendRow(table.Row{e.Effective.Label(), fmt.Sprintf("%s%%", e.Percent())})
	}
	return t.Render()
}
