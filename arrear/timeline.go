/*
timeline.go - Monthly arrear state machine

PURPOSE:
  Walks every month from the start month (Jan-2020) through the end month,
  inclusive, advancing the employee's (grade pay, step) position and
  producing one Record per month plus a running total.

PER-MONTH TRANSITION:
  1. Promotion check: fires at most once, in the configured month.
     grade pay := promotion grade (7600), step := promotion step (0).
  2. Increment check: the month number equals the increment month and the
     eligibility rule holds. step := min(step + 1, MaxStep). Skipped in the
     promotion month when Policy.SuppressIncrementOnPromotion is set.
  3. Resolve pay: (old, new) := Lookup(grade pay, step); rate := RateAt(month).
  4. Compute: old salary, new salary and arrear, each rounded to 2 places.
  5. Emit the record; add the arrear to the total.
  6. Advance one calendar month.

  With Policy.IncrementTiming == IncrementAfterPay, step 2 runs after step 5
  instead, so the increment shows from the following month.

INCREMENT ELIGIBILITY:
  January increments require year > start year: the start month itself
  never grants one. Any other increment month requires year >= start year,
  so a July increment month grants in July of the first year.

ALL OR NOTHING:
  Input problems (unknown grade pay, unknown basic, end before start,
  a range longer than MaxMonths, promotion before start) are detected before the first month is walked.
  Compute returns either the complete month sequence or an error.

CONCURRENCY:
  Engine holds only read-only reference data. Each Compute call builds its
  own State and output slice, so concurrent calls never share state.

EXAMPLE:
  engine := arrear.NewEngine(ref.Matrix, ref.Rates)
  in, _ := arrear.ParseInput(arrear.RawInput{
      InitialGradePay: 6600,
      InitialBasic:    73700,
      IncrementMonth:  1,
      EndMonth:        "202101",
  })
  result, err := engine.Compute(in)
  // 13 records, total 40124.00

SEE ALSO:
  - payscale/table.go: Lookup / ReverseLookup / MaxStep
  - darate/schedule.go: RateAt
  - types.go: Policy, Record, Result
*/
package arrear

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/arrear-engine/darate"
	"github.com/warp/arrear-engine/generic"
	"github.com/warp/arrear-engine/payscale"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine runs arrear computations against injected reference data.
type Engine struct {
	matrix    *payscale.Table
	rates     *darate.Schedule
	start     generic.Month
	promotion PromotionTarget
	policy    Policy
	maxMonths int
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithStart overrides the first computed month.
func WithStart(m generic.Month) Option {
	return func(e *Engine) { e.start = m }
}

// WithPromotion overrides the promotion fixation.
func WithPromotion(t PromotionTarget) Option {
	return func(e *Engine) { e.promotion = t }
}

// WithPolicy overrides the event policy.
func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithMaxMonths caps the number of months one computation may cover.
// Zero or less removes the cap.
func WithMaxMonths(n int) Option {
	return func(e *Engine) { e.maxMonths = n }
}

// WithLogger enables debug tracing of promotion and increment transitions.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine over the given pay matrix and DA schedule.
func NewEngine(matrix *payscale.Table, rates *darate.Schedule, opts ...Option) *Engine {
	e := &Engine{
		matrix:    matrix,
		rates:     rates,
		start:     DefaultStart(),
		promotion: DefaultPromotion(),
		policy:    DefaultPolicy(),
		maxMonths: DefaultMaxMonths,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.policy.IncrementTiming == "" {
		e.policy.IncrementTiming = IncrementBeforePay
	}
	return e
}

// With returns a copy of the engine with extra options applied.
// The reference data is shared; it is immutable.
func (e *Engine) With(opts ...Option) *Engine {
	clone := *e
	for _, opt := range opts {
		opt(&clone)
	}
	if clone.policy.IncrementTiming == "" {
		clone.policy.IncrementTiming = IncrementBeforePay
	}
	return &clone
}

func (e *Engine) Policy() Policy             { return e.policy }
func (e *Engine) Start() generic.Month       { return e.start }
func (e *Engine) Promotion() PromotionTarget { return e.promotion }
func (e *Engine) Matrix() *payscale.Table    { return e.matrix }
func (e *Engine) Rates() *darate.Schedule    { return e.rates }
func (e *Engine) MaxMonths() int             { return e.maxMonths }

// =============================================================================
// COMPUTE
// =============================================================================

// Calculate parses raw input and computes it.
func (e *Engine) Calculate(raw RawInput) (*Result, error) {
	in, err := ParseInput(raw)
	if err != nil {
		return nil, err
	}
	return e.Compute(in)
}

// Compute runs the full timeline. On error no partial result is returned.
func (e *Engine) Compute(in Input) (*Result, error) {
	period, err := e.validate(in)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, period.Len())
	total, final, err := e.run(in, period, func(rec Record) error {
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Period:      period,
		Records:     records,
		TotalArrear: total,
		Final:       final,
	}, nil
}

// Walk streams records to fn in month order and returns the total.
// It stops at the first error returned by fn.
func (e *Engine) Walk(in Input, fn func(Record) error) (decimal.Decimal, error) {
	period, err := e.validate(in)
	if err != nil {
		return decimal.Zero, err
	}
	total, _, err := e.run(in, period, fn)
	return total, err
}

// InitialState returns the state a run over in starts from.
func (e *Engine) InitialState(in Input) (State, error) {
	if _, err := e.validate(in); err != nil {
		return State{}, err
	}
	step, _ := e.matrix.ReverseLookup(in.InitialGradePay, in.InitialBasic)
	return State{Month: e.start, GradePay: in.InitialGradePay, Step: step}, nil
}

func (e *Engine) validate(in Input) (generic.Period, error) {
	if in.IncrementMonth < time.January || in.IncrementMonth > time.December {
		return generic.Period{}, fmt.Errorf("%w: got %d", generic.ErrInvalidIncrementMonth, in.IncrementMonth)
	}
	if _, err := e.matrix.ReverseLookup(in.InitialGradePay, in.InitialBasic); err != nil {
		return generic.Period{}, err
	}
	period, err := generic.NewPeriod(e.start, in.EndMonth)
	if err != nil {
		return generic.Period{}, err
	}
	if e.maxMonths > 0 && period.Len() > e.maxMonths {
		return generic.Period{}, &generic.PeriodLengthError{
			Start: period.Start, End: period.End, Months: period.Len(), Max: e.maxMonths,
		}
	}
	if in.PromotionMonth != nil {
		if in.PromotionMonth.Before(e.start) {
			return generic.Period{}, &generic.PromotionOrderingError{Promotion: *in.PromotionMonth, Start: e.start}
		}
		if _, err := e.matrix.Lookup(e.promotion.GradePay, e.promotion.Step); err != nil {
			return generic.Period{}, fmt.Errorf("%w: promotion target: %v", generic.ErrInvalidReferenceData, err)
		}
	}
	return period, nil
}

func (e *Engine) run(in Input, period generic.Period, emit func(Record) error) (decimal.Decimal, State, error) {
	step, err := e.matrix.ReverseLookup(in.InitialGradePay, in.InitialBasic)
	if err != nil {
		return decimal.Zero, State{}, err
	}

	state := State{Month: period.Start, GradePay: in.InitialGradePay, Step: step}
	total := decimal.Zero
	afterPay := e.policy.IncrementTiming == IncrementAfterPay

	for ; state.Month.BeforeOrEqual(period.End); state.Month = state.Month.Next() {
		promoted := e.promote(&state, in.PromotionMonth)
		due := e.incrementDue(state.Month, in.IncrementMonth, promoted)

		if due && !afterPay {
			e.increment(&state)
		}

		rec, err := Reconstruct(e.matrix, e.rates, state.GradePay, state.Step, state.Month)
		if err != nil {
			return decimal.Zero, State{}, err
		}
		total = total.Add(rec.Arrear)
		rec.Cumulative = total
		rec.Promoted = promoted
		rec.Incremented = due

		if err := emit(rec); err != nil {
			return total, state, err
		}

		if due && afterPay {
			e.increment(&state)
		}
	}

	state.Month = period.End
	return total, state, nil
}

// promote applies the one-time fixation. It reports whether it fired.
func (e *Engine) promote(state *State, promotion *generic.Month) bool {
	if promotion == nil || state.Promoted || !state.Month.Equal(*promotion) {
		return false
	}
	e.logger.Debug("promotion applied",
		zap.String("month", state.Month.YYYYMM()),
		zap.Stringer("from_grade_pay", state.GradePay),
		zap.Int("from_step", state.Step),
		zap.Stringer("to_grade_pay", e.promotion.GradePay),
		zap.Int("to_step", e.promotion.Step),
	)
	state.GradePay = e.promotion.GradePay
	state.Step = e.promotion.Step
	state.Promoted = true
	return true
}

func (e *Engine) incrementDue(m generic.Month, incrementMonth time.Month, promotedThisMonth bool) bool {
	if promotedThisMonth && e.policy.SuppressIncrementOnPromotion {
		return false
	}
	return IncrementEligible(m, incrementMonth, e.start)
}

func (e *Engine) increment(state *State) {
	next := e.matrix.ClampStep(state.GradePay, state.Step+1)
	e.logger.Debug("increment applied",
		zap.String("month", state.Month.YYYYMM()),
		zap.Stringer("grade_pay", state.GradePay),
		zap.Int("from_step", state.Step),
		zap.Int("to_step", next),
	)
	state.Step = next
}

// IncrementEligible reports whether an increment falls due in month m.
func IncrementEligible(m generic.Month, incrementMonth time.Month, start generic.Month) bool {
	if m.Month() != incrementMonth {
		return false
	}
	if incrementMonth == time.January {
		return m.Year() > start.Year()
	}
	return m.Year() >= start.Year()
}

// =============================================================================
// PAY FORMULA
// =============================================================================

// Reconstruct builds the pay columns of a record from (grade pay, step, month).
// The same inputs always produce the same record.
func Reconstruct(matrix *payscale.Table, rates *darate.Schedule, gp generic.GradePay, step int, m generic.Month) (Record, error) {
	entry, err := matrix.Lookup(gp, step)
	if err != nil {
		return Record{}, err
	}
	rate := rates.RateAt(m)

	oldSalary := generic.ApplyRate(entry.OldBasic, rate)
	newSalary := generic.ApplyRate(entry.NewBasic, rate)

	return Record{
		Month:     m,
		Label:     m.Label(),
		GradePay:  gp,
		Step:      step,
		OldBasic:  entry.OldBasic,
		NewBasic:  entry.NewBasic,
		DARate:    rate,
		DAPercent: generic.Percent(rate),
		OldSalary: oldSalary,
		NewSalary: newSalary,
		Arrear:    generic.RoundMoney(newSalary.Sub(oldSalary)),
	}, nil
}
