/*
Package payscale implements the pay-matrix lookup table.

PURPOSE:
  A pay matrix maps each grade pay to an ordered list of steps. Every step
  pairs the pre-revision ("old") basic with the post-revision ("new") basic
  for the same position, so the arrear for a month is simply the difference
  between the two columns once DA is applied.

INVARIANTS:
  - Every track has at least one step
  - Steps are ordered by ascending index (slice order)
  - old_basic is unique within a track; it is the reverse-lookup key
  - The table is never mutated after NewTable; reads are safe concurrently

OPERATIONS:
  Lookup(gp, step)          -> Entry            (StepOutOfRangeError past the top)
  ReverseLookup(gp, basic)  -> step             (UnknownBasicError, exact match only)
  MaxStep(gp)               -> len(track) - 1
  ClampStep(gp, step)       -> min(step, MaxStep(gp)), used by increments

SEE ALSO:
  - factory/reference.go: Builds the table from JSON reference data
  - arrear/timeline.go: Consults the table once per simulated month
*/
package payscale

import (
	"fmt"
	"strconv"

	"github.com/warp/arrear-engine/generic"
)

// =============================================================================
// ENTRY - One step of a track
// =============================================================================

// Entry is the (old, new) basic pair for one step.
type Entry struct {
	OldBasic int `json:"old_basic"`
	NewBasic int `json:"new_basic"`
}

// Difference returns NewBasic - OldBasic.
func (e Entry) Difference() int { return e.NewBasic - e.OldBasic }

// =============================================================================
// TABLE
// =============================================================================

// Table is an immutable pay matrix keyed by grade pay.
type Table struct {
	tracks map[generic.GradePay][]Entry
	index  map[generic.GradePay]map[int]int // old basic -> step
}

// NewTable copies and validates the given tracks.
func NewTable(tracks map[generic.GradePay][]Entry) (*Table, error) {
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: pay matrix has no tracks", generic.ErrInvalidReferenceData)
	}

	t := &Table{
		tracks: make(map[generic.GradePay][]Entry, len(tracks)),
		index:  make(map[generic.GradePay]map[int]int, len(tracks)),
	}
	for gp, entries := range tracks {
		if gp <= 0 {
			return nil, fmt.Errorf("%w: grade pay %d must be positive", generic.ErrInvalidReferenceData, gp)
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("%w: GP %s has no steps", generic.ErrInvalidReferenceData, gp)
		}

		idx := make(map[int]int, len(entries))
		for step, e := range entries {
			if e.OldBasic <= 0 || e.NewBasic <= 0 {
				return nil, fmt.Errorf("%w: GP %s step %d has a non-positive basic", generic.ErrInvalidReferenceData, gp, step)
			}
			if prev, dup := idx[e.OldBasic]; dup {
				return nil, fmt.Errorf("%w: GP %s old basic %d repeated at steps %d and %d",
					generic.ErrInvalidReferenceData, gp, e.OldBasic, prev, step)
			}
			idx[e.OldBasic] = step
		}

		t.tracks[gp] = append([]Entry(nil), entries...)
		t.index[gp] = idx
	}
	return t, nil
}

// MustNewTable is NewTable for static data; it panics on invalid input.
func MustNewTable(tracks map[generic.GradePay][]Entry) *Table {
	t, err := NewTable(tracks)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the entry at step. Callers clamp before calling.
func (t *Table) Lookup(gp generic.GradePay, step int) (Entry, error) {
	track, err := t.track(gp)
	if err != nil {
		return Entry{}, err
	}
	if step < 0 || step >= len(track) {
		return Entry{}, &generic.StepOutOfRangeError{GradePay: gp, Step: step, MaxStep: len(track) - 1}
	}
	return track[step], nil
}

// ReverseLookup returns the step whose old basic equals basic exactly.
func (t *Table) ReverseLookup(gp generic.GradePay, basic int) (int, error) {
	if _, err := t.track(gp); err != nil {
		return 0, err
	}
	step, ok := t.index[gp][basic]
	if !ok {
		return 0, &generic.UnknownBasicError{GradePay: gp, Basic: basic}
	}
	return step, nil
}

// MaxStep returns the highest valid step index of the track.
func (t *Table) MaxStep(gp generic.GradePay) (int, error) {
	track, err := t.track(gp)
	if err != nil {
		return 0, err
	}
	return len(track) - 1, nil
}

// ClampStep bounds step to [0, MaxStep(gp)]. Unknown grade pays clamp to 0.
func (t *Table) ClampStep(gp generic.GradePay, step int) int {
	maxStep, err := t.MaxStep(gp)
	if err != nil || step < 0 {
		return 0
	}
	return min(step, maxStep)
}

// Has reports whether the grade pay has a track.
func (t *Table) Has(gp generic.GradePay) bool {
	_, ok := t.tracks[gp]
	return ok
}

// Tracks returns the grade pays in ascending order.
func (t *Table) Tracks() []generic.GradePay {
	gps := make([]generic.GradePay, 0, len(t.tracks))
	for gp := range t.tracks {
		gps = append(gps, gp)
	}
	generic.SortGradePays(gps)
	return gps
}

// Entries returns a copy of the track, or nil for an unknown grade pay.
func (t *Table) Entries(gp generic.GradePay) []Entry {
	track, ok := t.tracks[gp]
	if !ok {
		return nil
	}
	return append([]Entry(nil), track...)
}

func (t *Table) track(gp generic.GradePay) ([]Entry, error) {
	track, ok := t.tracks[gp]
	if !ok {
		return nil, &generic.GradePayError{Value: strconv.Itoa(int(gp))}
	}
	return track, nil
}
