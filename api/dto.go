/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Calculation:
    CalculateRequest, ResultDTO, RecordDTO, YearSummaryDTO, StateDTO

  Reports:
    ReportDTO, ReportSummaryDTO

  Reference data:
    PayMatrixDTO, TrackDTO, StepDTO, DARateDTO

  Scenarios:
    ScenarioDTO

MONEY:
  Amounts are strings with exactly two decimals ("40124.00") so clients
  never see binary floating point. DA percentages are plain decimal
  strings ("13").

VALIDATION:
  CalculateRequest carries go-playground/validator tags for shape checks
  (required, ranges, six-digit months). Domain checks (is the basic on the
  pay matrix?) stay in the engine.

SEE ALSO:
  - handlers.go: Uses these types
  - arrear/types.go: Record / Result
*/
package api

import (
	"time"

	"github.com/warp/arrear-engine/arrear"
	"github.com/warp/arrear-engine/darate"
	"github.com/warp/arrear-engine/export"
	"github.com/warp/arrear-engine/factory"
	"github.com/warp/arrear-engine/generic"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CalculateRequest is the body of POST /api/arrears and /api/arrears/preview.
type CalculateRequest struct {
	GradePay       int    `json:"grade_pay" validate:"required,gt=0"`
	Basic          int    `json:"basic" validate:"required,gt=0"`
	IncrementMonth int    `json:"increment_month" validate:"required,min=1,max=12"`
	EndMonth       string `json:"end_month" validate:"required,len=6,numeric"`
	PromotionMonth string `json:"promotion_month,omitempty" validate:"omitempty,len=6,numeric"`

	// Optional policy overrides; server defaults apply when absent.
	SuppressIncrementOnPromotion *bool  `json:"suppress_increment_on_promotion,omitempty"`
	IncrementTiming              string `json:"increment_timing,omitempty" validate:"omitempty,oneof=before_pay after_pay"`
}

// Raw converts the request into engine input.
func (r CalculateRequest) Raw() arrear.RawInput {
	return arrear.RawInput{
		InitialGradePay: r.GradePay,
		InitialBasic:    r.Basic,
		IncrementMonth:  r.IncrementMonth,
		EndMonth:        r.EndMonth,
		PromotionMonth:  r.PromotionMonth,
	}
}

// Policy applies the request's overrides to base.
func (r CalculateRequest) Policy(base arrear.Policy) arrear.Policy {
	p := base
	if r.SuppressIncrementOnPromotion != nil {
		p.SuppressIncrementOnPromotion = *r.SuppressIncrementOnPromotion
	}
	if timing, ok := arrear.ParseIncrementTiming(r.IncrementTiming); ok && r.IncrementTiming != "" {
		p.IncrementTiming = timing
	}
	return p
}

// =============================================================================
// RESULT TYPES
// =============================================================================

// RecordDTO is one month of a computation.
type RecordDTO struct {
	Month       string `json:"month"`
	Label       string `json:"label"`
	GradePay    int    `json:"grade_pay"`
	Step        int    `json:"step"`
	OldBasic    int    `json:"old_basic"`
	NewBasic    int    `json:"new_basic"`
	DAPercent   string `json:"da_percent"`
	OldSalary   string `json:"old_salary"`
	NewSalary   string `json:"new_salary"`
	Arrear      string `json:"arrear"`
	Cumulative  string `json:"cumulative"`
	Promoted    bool   `json:"promoted,omitempty"`
	Incremented bool   `json:"incremented,omitempty"`
}

// YearSummaryDTO is a per-calendar-year subtotal.
type YearSummaryDTO struct {
	Year   int    `json:"year"`
	Months int    `json:"months"`
	Arrear string `json:"arrear"`
}

// StateDTO is the employee position after the last month.
type StateDTO struct {
	GradePay int  `json:"grade_pay"`
	Step     int  `json:"step"`
	Promoted bool `json:"promoted"`
}

// ResultDTO is a full computation.
type ResultDTO struct {
	StartMonth     string           `json:"start_month"`
	EndMonth       string           `json:"end_month"`
	Months         int              `json:"months"`
	TotalArrear    string           `json:"total_arrear"`
	TotalFormatted string           `json:"total_formatted"`
	Final          StateDTO         `json:"final"`
	Summary        []YearSummaryDTO `json:"summary"`
	Records        []RecordDTO      `json:"records"`
}

// PolicyDTO shows which event rules a computation used.
type PolicyDTO struct {
	SuppressIncrementOnPromotion bool   `json:"suppress_increment_on_promotion"`
	IncrementTiming              string `json:"increment_timing"`
}

// ReportDTO is a saved computation.
type ReportDTO struct {
	ID        string           `json:"id"`
	CreatedAt string           `json:"created_at"`
	Input     CalculateRequest `json:"input"`
	Policy    PolicyDTO        `json:"policy"`
	Result    ResultDTO        `json:"result"`
}

// ReportSummaryDTO is a row of the report history.
type ReportSummaryDTO struct {
	ID             string `json:"id"`
	CreatedAt      string `json:"created_at"`
	GradePay       int    `json:"grade_pay"`
	Basic          int    `json:"basic"`
	EndMonth       string `json:"end_month"`
	PromotionMonth string `json:"promotion_month,omitempty"`
	Months         int    `json:"months"`
	TotalArrear    string `json:"total_arrear"`
}

// =============================================================================
// REFERENCE DATA TYPES
// =============================================================================

// StepDTO is one row of a pay matrix track.
type StepDTO struct {
	Step       int `json:"step"`
	OldBasic   int `json:"old_basic"`
	NewBasic   int `json:"new_basic"`
	Difference int `json:"difference"`
}

// TrackDTO is the pay matrix for one grade pay.
type TrackDTO struct {
	GradePay int       `json:"grade_pay"`
	MaxStep  int       `json:"max_step"`
	Steps    []StepDTO `json:"steps"`
}

// PayMatrixDTO is the whole pay matrix plus the promotion fixation.
type PayMatrixDTO struct {
	Name       string     `json:"name"`
	StartMonth string     `json:"start_month"`
	Promotion  StateDTO   `json:"promotion"`
	Tracks     []TrackDTO `json:"tracks"`
}

// DARateDTO is one DA change point, or the rate resolved for a month.
type DARateDTO struct {
	Effective string `json:"effective"`
	Label     string `json:"label"`
	Rate      string `json:"rate"`
	Percent   string `json:"percent"`
}

// =============================================================================
// SCENARIOS AND ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Input       CalculateRequest `json:"input"`
}

// Error codes carried in ErrorResponse.Code.
const (
	CodeInvalidInput     = "invalid_input"
	CodeInvalidPeriod    = "invalid_period"
	CodeValidationFailed = "validation_failed"
	CodeNotFound         = "not_found"
	CodeUnavailable      = "unavailable"
	CodeInternal         = "internal"
)

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toRecordDTO(rec arrear.Record) RecordDTO {
	return RecordDTO{
		Month:       rec.Month.YYYYMM(),
		Label:       rec.Label,
		GradePay:    int(rec.GradePay),
		Step:        rec.Step,
		OldBasic:    rec.OldBasic,
		NewBasic:    rec.NewBasic,
		DAPercent:   rec.DAPercent.String(),
		OldSalary:   rec.OldSalary.StringFixed(generic.MoneyPlaces),
		NewSalary:   rec.NewSalary.StringFixed(generic.MoneyPlaces),
		Arrear:      rec.Arrear.StringFixed(generic.MoneyPlaces),
		Cumulative:  rec.Cumulative.StringFixed(generic.MoneyPlaces),
		Promoted:    rec.Promoted,
		Incremented: rec.Incremented,
	}
}

func toResultDTO(res *arrear.Result) ResultDTO {
	dto := ResultDTO{
		StartMonth:     res.Period.Start.YYYYMM(),
		EndMonth:       res.Period.End.YYYYMM(),
		Months:         res.Months(),
		TotalArrear:    res.TotalArrear.StringFixed(generic.MoneyPlaces),
		TotalFormatted: export.FormatINR(res.TotalArrear),
		Final: StateDTO{
			GradePay: int(res.Final.GradePay),
			Step:     res.Final.Step,
			Promoted: res.Final.Promoted,
		},
		Summary: []YearSummaryDTO{},
		Records: make([]RecordDTO, len(res.Records)),
	}
	for i, rec := range res.Records {
		dto.Records[i] = toRecordDTO(rec)
	}
	for _, y := range res.Summary() {
		dto.Summary = append(dto.Summary, YearSummaryDTO{
			Year:   y.Year,
			Months: y.Months,
			Arrear: y.Arrear.StringFixed(generic.MoneyPlaces),
		})
	}
	return dto
}

func toPolicyDTO(p arrear.Policy) PolicyDTO {
	return PolicyDTO{
		SuppressIncrementOnPromotion: p.SuppressIncrementOnPromotion,
		IncrementTiming:              string(p.IncrementTiming),
	}
}

func toReportDTO(rep *arrear.Report) ReportDTO {
	raw := rep.Input.Raw()
	suppress := rep.Policy.SuppressIncrementOnPromotion
	return ReportDTO{
		ID:        rep.ID,
		CreatedAt: rep.CreatedAt.Format(time.RFC3339),
		Input: CalculateRequest{
			GradePay:                     raw.InitialGradePay,
			Basic:                        raw.InitialBasic,
			IncrementMonth:               raw.IncrementMonth,
			EndMonth:                     raw.EndMonth,
			PromotionMonth:               raw.PromotionMonth,
			SuppressIncrementOnPromotion: &suppress,
			IncrementTiming:              string(rep.Policy.IncrementTiming),
		},
		Policy: toPolicyDTO(rep.Policy),
		Result: toResultDTO(rep.Result),
	}
}

func toReportSummaryDTO(s arrear.ReportSummary) ReportSummaryDTO {
	dto := ReportSummaryDTO{
		ID:          s.ID,
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
		GradePay:    int(s.InitialGradePay),
		Basic:       s.InitialBasic,
		EndMonth:    s.EndMonth.YYYYMM(),
		Months:      s.Months,
		TotalArrear: s.TotalArrear.StringFixed(generic.MoneyPlaces),
	}
	if s.PromotionMonth != nil {
		dto.PromotionMonth = s.PromotionMonth.YYYYMM()
	}
	return dto
}

func toPayMatrixDTO(ref *factory.Reference) PayMatrixDTO {
	dto := PayMatrixDTO{
		Name:       ref.Name,
		StartMonth: ref.Start.YYYYMM(),
		Promotion:  StateDTO{GradePay: int(ref.Promotion.GradePay), Step: ref.Promotion.Step},
	}
	for _, gp := range ref.Matrix.Tracks() {
		maxStep, _ := ref.Matrix.MaxStep(gp)
		track := TrackDTO{GradePay: int(gp), MaxStep: maxStep}
		for step, e := range ref.Matrix.Entries(gp) {
			track.Steps = append(track.Steps, StepDTO{
				Step:       step,
				OldBasic:   e.OldBasic,
				NewBasic:   e.NewBasic,
				Difference: e.Difference(),
			})
		}
		dto.Tracks = append(dto.Tracks, track)
	}
	return dto
}

func toDARateDTO(e darate.Entry) DARateDTO {
	return DARateDTO{
		Effective: e.Effective.YYYYMM(),
		Label:     e.Effective.Label(),
		Rate:      e.Rate.String(),
		Percent:   e.Percent().String(),
	}
}
