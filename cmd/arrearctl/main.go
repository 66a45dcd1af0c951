/*
arrearctl - Command-line salary arrear calculator

PURPOSE:
  Runs the same engine as the API server from a terminal: prints the
  month-by-month table, and optionally writes the spreadsheet or CSV the
  payroll office expects.

COMMANDS:
  calc     Compute arrears for one employee
  matrix   Print (or export) the pay matrix
  rates    Print the DA history, or the rate in force for a month

EXAMPLES:
  arrearctl calc --grade-pay 6600 --basic 73700 --increment-month 1 --upto 202602
  arrearctl calc --basic 73700 --increment-month 7 --upto 202602 --promotion 202306 --xlsx arrear.xlsx
  arrearctl matrix --xlsx pay-matrix.xlsx
  arrearctl rates --at 202310

REFERENCE DATA:
  --reference (or ARREAR_REFERENCE_FILE) points at an override JSON
  document; by default the embedded pay matrix and DA history are used.

ENVIRONMENT:
  The ARREAR_* variables the server reads also set the CLI defaults:
  ARREAR_SUPPRESS_INCREMENT_ON_PROMOTION, ARREAR_INCREMENT_TIMING and
  ARREAR_MAX_MONTHS. Explicit flags win.

SEE ALSO:
  - config/config.go: Environment variables
  - export/: Table, XLSX and CSV rendering
  - factory/reference.go: Reference document format
*/
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "arrearctl:", err)
		os.Exit(1)
	}
}
