package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/warp/arrear-engine/arrear"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeRow(row []string) error {
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

// WriteCSV writes one row per month followed by a total line.
// Amounts are plain decimals with two places so spreadsheets parse them.
func WriteCSV(w io.Writer, result *arrear.Result) error {
	if result == nil {
		return fmt.Errorf("export: nil result")
	}

	s := newCSVStreamer(w)
	if err := s.writeRow(Columns); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, rec := range result.Records {
		if err := s.writeRow(recordRow(rec)); err != nil {
			return fmt.Errorf("export: write %s: %w", rec.Label, err)
		}
	}

	total := make([]string, len(Columns))
	total[0] = "Total"
	total[len(total)-1] = result.TotalArrear.StringFixed(2)
	if err := s.writeRow(total); err != nil {
		return fmt.Errorf("export: write total: %w", err)
	}
	return s.Flush()
}

func recordRow(rec arrear.Record) []string {
	return []string{
		rec.Label,
		rec.GradePay.String(),
		strconv.Itoa(rec.OldBasic),
		strconv.Itoa(rec.NewBasic),
		rec.DAPercent.String(),
		rec.OldSalary.StringFixed(2),
		rec.NewSalary.StringFixed(2),
		rec.Arrear.StringFixed(2),
	}
}
