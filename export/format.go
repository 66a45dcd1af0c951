/*
Package export renders arrear results for people: spreadsheets, CSV
downloads and terminal tables.

PURPOSE:
  The engine produces decimal-exact records. This package turns them into
  the artifacts payroll clerks actually hand around, with the same column
  headings the calculator has always used:

    Month | Grade Pay | Old Basic | New Basic | DA % |
    Old Basic + DA | New Basic + DA | Monthly Arrear

WRITERS:
  WriteXLSX       - Arrear sheet (+ optional Pay Matrix sheet), excelize
  WriteMatrixXLSX - Pay matrix workbook only
  WriteCSV        - Same columns plus a total line, CRLF
  RenderTable     - go-pretty table for the CLI
  RenderMatrix    - go-pretty pay matrix
  RenderRates     - go-pretty DA history

AMOUNTS:
  FormatINR groups digits the Indian way (12,34,567.89) and prefixes the
  rupee sign, matching the total banner of the spreadsheet.

SEE ALSO:
  - arrear/types.go: Record / Result
  - api/handlers.go: Download endpoints
  - cmd/arrearctl: CLI output
*/
package export

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Columns is the header row shared by every tabular export.
var Columns = []string{
	"Month",
	"Grade Pay",
	"Old Basic",
	"New Basic",
	"DA %",
	"Old Basic + DA",
	"New Basic + DA",
	"Monthly Arrear",
}

// RupeeSign prefixes formatted totals.
const RupeeSign = "₹"

// FormatINR formats an amount as "₹ 12,34,567.89".
func FormatINR(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + RupeeSign + " " + GroupIndian(d.Abs())
}

// GroupIndian formats a non-negative amount with two decimals and Indian
// digit grouping: the last three integer digits, then groups of two.
func GroupIndian(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, frac, _ := strings.Cut(fixed, ".")
	if len(intPart) > 3 {
		head, tail := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		intPart = strings.Join(append(groups, tail), ",")
	}

	out := intPart + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}
