package arrear

import (
	"errors"
	"fmt"
	"time"

	"github.com/warp/arrear-engine/generic"
)

// RawInput is the user-facing form of a calculation request.
type RawInput struct {
	InitialGradePay int
	InitialBasic    int    // must equal some old basic of the track
	IncrementMonth  int    // 1-12
	EndMonth        string // YYYYMM, inclusive
	PromotionMonth  string // YYYYMM or empty
}

// Input is a parsed calculation request.
type Input struct {
	InitialGradePay generic.GradePay
	InitialBasic    int
	IncrementMonth  time.Month
	EndMonth        generic.Month
	PromotionMonth  *generic.Month
}

// HasPromotion reports whether a promotion month was configured.
func (in Input) HasPromotion() bool { return in.PromotionMonth != nil }

// ParseInput converts month strings and checks the increment month.
// Table-dependent checks (basic, grade pay, ordering) happen in Engine.Compute.
func ParseInput(raw RawInput) (Input, error) {
	end, err := generic.ParseYYYYMM(raw.EndMonth)
	if err != nil {
		return Input{}, withField(err, "end_month")
	}

	promotion, err := generic.ParseOptionalYYYYMM(raw.PromotionMonth)
	if err != nil {
		return Input{}, withField(err, "promotion_month")
	}

	if raw.IncrementMonth < 1 || raw.IncrementMonth > 12 {
		return Input{}, fmt.Errorf("%w: got %d", generic.ErrInvalidIncrementMonth, raw.IncrementMonth)
	}

	return Input{
		InitialGradePay: generic.GradePay(raw.InitialGradePay),
		InitialBasic:    raw.InitialBasic,
		IncrementMonth:  time.Month(raw.IncrementMonth),
		EndMonth:        end,
		PromotionMonth:  promotion,
	}, nil
}

// Raw converts the input back into its user-facing form.
func (in Input) Raw() RawInput {
	raw := RawInput{
		InitialGradePay: int(in.InitialGradePay),
		InitialBasic:    in.InitialBasic,
		IncrementMonth:  int(in.IncrementMonth),
		EndMonth:        in.EndMonth.YYYYMM(),
	}
	if in.PromotionMonth != nil {
		raw.PromotionMonth = in.PromotionMonth.YYYYMM()
	}
	return raw
}

func withField(err error, field string) error {
	var dfe *generic.DateFormatError
	if errors.As(err, &dfe) {
		return &generic.DateFormatError{Field: field, Value: dfe.Value}
	}
	return err
}
