/*
Package factory provides JSON to Go reference-data conversion.

PURPOSE:
  Converts the JSON reference document (pay matrix, DA history, start
  month, promotion fixation) into the immutable payscale.Table and
  darate.Schedule the engine consumes. The tables are data, not code:
  they are loaded once at process start and injected into the engine.

WHY JSON?
  - Pay commissions publish revised matrices; no code change is needed
  - The same document feeds the API's reference endpoints
  - An override file can be supplied with ARREAR_REFERENCE_FILE

JSON SCHEMA:
  {
    "name": "ROPA 2020 revision, GP 6600 / 7600",
    "start_month": "202001",
    "promotion": {"grade_pay": 7600, "step": 0},
    "pay_matrix": {
      "6600": [[73700, 76500], [76000, 78800], ...],
      "7600": [[96800, 102600], ...]
    },
    "da_history": [
      {"effective": "202001", "rate": "0.10"},
      {"effective": "202101", "rate": "0.13"}
    ]
  }

KEY FEATURES:
  - Validates the document (unique old basics, increasing DA dates)
  - Embedded default document (reference.json), parsed once
  - Builds a ready-to-use arrear.Engine

USAGE:
  ref, err := factory.Default()
  engine := ref.NewEngine()

  // From an override file
  ref, err := factory.Load("./reference.json")

SEE ALSO:
  - payscale/table.go: Pay matrix type
  - darate/schedule.go: DA schedule type
  - arrear/timeline.go: The engine built by NewEngine
*/
package factory

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/warp/arrear-engine/arrear"
	"github.com/warp/arrear-engine/darate"
	"github.com/warp/arrear-engine/generic"
	"github.com/warp/arrear-engine/payscale"
)

//go:embed reference.json
var defaultReference []byte

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ReferenceJSON is the JSON representation of the reference data.
type ReferenceJSON struct {
	Name       string              `json:"name"`
	StartMonth string              `json:"start_month"`
	Promotion  *PromotionJSON      `json:"promotion,omitempty"`
	PayMatrix  map[string][][2]int `json:"pay_matrix"`
	DAHistory  []DAEntryJSON       `json:"da_history"`
}

// PromotionJSON is the fixation applied on promotion.
type PromotionJSON struct {
	GradePay int `json:"grade_pay"`
	Step     int `json:"step"`
}

// DAEntryJSON is one DA change point.
type DAEntryJSON struct {
	Effective string          `json:"effective"`
	Rate      decimal.Decimal `json:"rate"`
}

// =============================================================================
// REFERENCE
// =============================================================================

// Reference is the parsed, validated reference data.
type Reference struct {
	Name      string
	Start     generic.Month
	Promotion arrear.PromotionTarget
	Matrix    *payscale.Table
	Rates     *darate.Schedule
}

// NewEngine builds an engine over this reference data.
func (r *Reference) NewEngine(opts ...arrear.Option) *arrear.Engine {
	base := []arrear.Option{
		arrear.WithStart(r.Start),
		arrear.WithPromotion(r.Promotion),
	}
	return arrear.NewEngine(r.Matrix, r.Rates, append(base, opts...)...)
}

var (
	defaultOnce sync.Once
	defaultRef  *Reference
	defaultErr  error
)

// Default returns the embedded reference data, parsed once.
func Default() (*Reference, error) {
	defaultOnce.Do(func() {
		defaultRef, defaultErr = Parse(defaultReference)
	})
	return defaultRef, defaultErr
}

// MustDefault is Default for tests and static wiring.
func MustDefault() *Reference {
	ref, err := Default()
	if err != nil {
		panic(err)
	}
	return ref
}

// Load reads reference data from a file. An empty path returns Default().
func Load(path string) (*Reference, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference data: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a reference document.
func Parse(data []byte) (*Reference, error) {
	var rj ReferenceJSON
	if err := json.Unmarshal(data, &rj); err != nil {
		return nil, fmt.Errorf("%w: failed to parse reference JSON: %v", generic.ErrInvalidReferenceData, err)
	}
	return FromJSON(rj)
}

// FromJSON converts ReferenceJSON into validated tables.
func FromJSON(rj ReferenceJSON) (*Reference, error) {
	start := arrear.DefaultStart()
	if rj.StartMonth != "" {
		m, err := generic.ParseYYYYMM(rj.StartMonth)
		if err != nil {
			return nil, fmt.Errorf("%w: start_month: %v", generic.ErrInvalidReferenceData, err)
		}
		start = m
	}

	matrix, err := parseMatrix(rj.PayMatrix)
	if err != nil {
		return nil, err
	}

	rates, err := parseRates(rj.DAHistory)
	if err != nil {
		return nil, err
	}

	promotion := arrear.DefaultPromotion()
	if rj.Promotion != nil {
		promotion = arrear.PromotionTarget{GradePay: generic.GradePay(rj.Promotion.GradePay), Step: rj.Promotion.Step}
	}
	if _, err := matrix.Lookup(promotion.GradePay, promotion.Step); err != nil {
		return nil, fmt.Errorf("%w: promotion target: %v", generic.ErrInvalidReferenceData, err)
	}

	return &Reference{
		Name:      rj.Name,
		Start:     start,
		Promotion: promotion,
		Matrix:    matrix,
		Rates:     rates,
	}, nil
}

// ToJSON converts reference data back into its JSON form.
func (r *Reference) ToJSON() ReferenceJSON {
	rj := ReferenceJSON{
		Name:       r.Name,
		StartMonth: r.Start.YYYYMM(),
		Promotion:  &PromotionJSON{GradePay: int(r.Promotion.GradePay), Step: r.Promotion.Step},
		PayMatrix:  make(map[string][][2]int),
	}
	for _, gp := range r.Matrix.Tracks() {
		for _, e := range r.Matrix.Entries(gp) {
			rj.PayMatrix[gp.String()] = append(rj.PayMatrix[gp.String()], [2]int{e.OldBasic, e.NewBasic})
		}
	}
	for _, e := range r.Rates.Entries() {
		rj.DAHistory = append(rj.DAHistory, DAEntryJSON{Effective: e.Effective.YYYYMM(), Rate: e.Rate})
	}
	return rj
}

func parseMatrix(pm map[string][][2]int) (*payscale.Table, error) {
	tracks := make(map[generic.GradePay][]payscale.Entry, len(pm))
	for key, pairs := range pm {
		n, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: pay_matrix key %q is not a grade pay", generic.ErrInvalidReferenceData, key)
		}
		entries := make([]payscale.Entry, len(pairs))
		for i, p := range pairs {
			entries[i] = payscale.Entry{OldBasic: p[0], NewBasic: p[1]}
		}
		tracks[generic.GradePay(n)] = entries
	}
	return payscale.NewTable(tracks)
}

func parseRates(history []DAEntryJSON) (*darate.Schedule, error) {
	entries := make([]darate.Entry, len(history))
	for i, h := range history {
		m, err := generic.ParseYYYYMM(h.Effective)
		if err != nil {
			return nil, fmt.Errorf("%w: da_history[%d]: %v", generic.ErrInvalidReferenceData, i, err)
		}
		entries[i] = darate.Entry{Effective: m, Rate: h.Rate}
	}
	return darate.NewSchedule(entries)
}
