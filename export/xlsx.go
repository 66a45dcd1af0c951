package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/warp/arrear-engine/arrear"
	"github.com/warp/arrear-engine/payscale"
)

const (
	ArrearSheet = "Arrear"
	MatrixSheet = "Pay Matrix"

	// built-in excelize number format "#,##0.00"
	numFmtMoney = 4
)

type workbook struct {
	f       *excelize.File
	header  int
	money   int
	total   int
	renamed bool
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: numFmtMoney})
	if err != nil {
		f.Close()
		return nil, err
	}
	total, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		NumFmt: numFmtMoney,
		Border: []excelize.Border{{Type: "top", Color: "#000000", Style: 2}},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	return &workbook{f: f, header: header, money: money, total: total}, nil
}

// addSheet creates the sheet; the first sheet added replaces the default one.
func (wb *workbook) addSheet(name string) error {
	idx, err := wb.f.NewSheet(name)
	if err != nil {
		return err
	}
	if wb.renamed {
		return nil
	}
	wb.renamed = true
	wb.f.SetActiveSheet(idx)
	return wb.f.DeleteSheet("Sheet1")
}

func (wb *workbook) writeHeader(sheet string, cols []string) error {
	for i, c := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := wb.f.SetCellValue(sheet, cell, c); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(cols), 1)
	if err := wb.f.SetCellStyle(sheet, "A1", last, wb.header); err != nil {
		return err
	}
	return wb.f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func (wb *workbook) setRow(sheet string, row int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := wb.f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func (wb *workbook) write(w io.Writer) error {
	defer wb.f.Close()
	if err := wb.f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

// WriteXLSX writes the report as a workbook. When matrix is non-nil a
// second sheet lists the pay matrix the report was computed against.
func WriteXLSX(w io.Writer, rep *arrear.Report, matrix *payscale.Table) error {
	if rep == nil || rep.Result == nil {
		return fmt.Errorf("export: report has no result")
	}
	wb, err := newWorkbook()
	if err != nil {
		return fmt.Errorf("export: new workbook: %w", err)
	}
	if err := wb.arrearSheet(rep.Result); err != nil {
		wb.f.Close()
		return fmt.Errorf("export: arrear sheet: %w", err)
	}
	if matrix != nil {
		if err := wb.matrixSheet(matrix); err != nil {
			wb.f.Close()
			return fmt.Errorf("export: matrix sheet: %w", err)
		}
	}
	if rep.ID != "" {
		_ = wb.f.SetDocProps(&excelize.DocProperties{
			Title:       "Salary arrear " + rep.ID,
			Identifier:  rep.ID,
			Created:     rep.CreatedAt.Format("2006-01-02T15:04:05Z"),
			Description: fmt.Sprintf("GP %s, basic %d, up to %s", rep.Input.InitialGradePay, rep.Input.InitialBasic, rep.Input.EndMonth.Label()),
		})
	}
	return wb.write(w)
}

// WriteMatrixXLSX writes a workbook holding only the pay matrix.
func WriteMatrixXLSX(w io.Writer, matrix *payscale.Table) error {
	wb, err := newWorkbook()
	if err != nil {
		return fmt.Errorf("export: new workbook: %w", err)
	}
	if err := wb.matrixSheet(matrix); err != nil {
		wb.f.Close()
		return fmt.Errorf("export: matrix sheet: %w", err)
	}
	return wb.write(w)
}

func (wb *workbook) arrearSheet(result *arrear.Result) error {
	if err := wb.addSheet(ArrearSheet); err != nil {
		return err
	}
	if err := wb.writeHeader(ArrearSheet, Columns); err != nil {
		return err
	}
	_ = wb.f.SetColWidth(ArrearSheet, "A", "A", 12)
	_ = wb.f.SetColWidth(ArrearSheet, "B", "E", 11)
	_ = wb.f.SetColWidth(ArrearSheet, "F", "H", 17)

	row := 2
	for _, rec := range result.Records {
		if err := wb.setRow(ArrearSheet, row,
			rec.Label,
			int(rec.GradePay),
			rec.OldBasic,
			rec.NewBasic,
			rec.DAPercent.InexactFloat64(),
			rec.OldSalary.InexactFloat64(),
			rec.NewSalary.InexactFloat64(),
			rec.Arrear.InexactFloat64(),
		); err != nil {
			return err
		}
		row++
	}
	if row > 2 {
		if err := wb.f.SetCellStyle(ArrearSheet, "F2", fmt.Sprintf("H%d", row-1), wb.money); err != nil {
			return err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(Columns))
	totalCell := fmt.Sprintf("%s%d", lastCol, row)
	if err := wb.f.SetCellValue(ArrearSheet, fmt.Sprintf("A%d", row), "Total"); err != nil {
		return err
	}
	if err := wb.f.SetCellValue(ArrearSheet, totalCell, result.TotalArrear.InexactFloat64()); err != nil {
		return err
	}
	if err := wb.f.SetCellStyle(ArrearSheet, fmt.Sprintf("A%d", row), totalCell, wb.total); err != nil {
		return err
	}

	// banner under the table, as the calculator always printed it
	return wb.f.SetCellValue(ArrearSheet, fmt.Sprintf("A%d", row+2), "Total Arrear: "+FormatINR(result.TotalArrear))
}

func (wb *workbook) matrixSheet(matrix *payscale.Table) error {
	if matrix == nil {
		return fmt.Errorf("nil pay matrix")
	}
	if err := wb.addSheet(MatrixSheet); err != nil {
		return err
	}
	if err := wb.writeHeader(MatrixSheet, []string{"Grade Pay", "Step", "Old Basic", "New Basic", "Difference"}); err != nil {
		return err
	}
	_ = wb.f.SetColWidth(MatrixSheet, "A", "E", 12)

	row := 2
	for _, gp := range matrix.Tracks() {
		for step, e := range matrix.Entries(gp) {
			if err := wb.setRow(MatrixSheet, row, int(gp), step, e.OldBasic, e.NewBasic, e.Difference()); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}
