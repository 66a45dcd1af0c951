package arrear

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/arrear-engine/generic"
)

// =============================================================================
// REPORT - A saved computation
// =============================================================================

// Report is a computation together with the inputs and policy that produced it.
type Report struct {
	ID        string
	CreatedAt time.Time
	Input     Input
	Policy    Policy
	Result    *Result
}

// NewReport stamps a result with a fresh ID and creation time.
func NewReport(in Input, policy Policy, result *Result) *Report {
	return &Report{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Input:     in,
		Policy:    policy,
		Result:    result,
	}
}

// ReportSummary is the list view of a Report.
type ReportSummary struct {
	ID              string
	CreatedAt       time.Time
	InitialGradePay generic.GradePay
	InitialBasic    int
	EndMonth        generic.Month
	PromotionMonth  *generic.Month
	Months          int
	TotalArrear     decimal.Decimal
}

// Summary returns the list view of the report.
func (r *Report) Summary() ReportSummary {
	s := ReportSummary{
		ID:              r.ID,
		CreatedAt:       r.CreatedAt,
		InitialGradePay: r.Input.InitialGradePay,
		InitialBasic:    r.Input.InitialBasic,
		EndMonth:        r.Input.EndMonth,
		PromotionMonth:  r.Input.PromotionMonth,
		TotalArrear:     decimal.Zero,
	}
	if r.Result != nil {
		s.Months = r.Result.Months()
		s.TotalArrear = r.Result.TotalArrear
	}
	return s
}

// =============================================================================
// REPORT STORE - Persistence for saved computations
// =============================================================================

// ReportStore persists reports. Save is atomic: the report and all of its
// records are written, or nothing is.
type ReportStore interface {
	// Save persists a report and its records. Reports are immutable: saving
	// an ID that already exists returns ErrReportExists and leaves the
	// stored report untouched.
	Save(ctx context.Context, r *Report) error

	// Get returns a report with its records, or ErrReportNotFound.
	// Rows that no longer decode yield ErrCorruptReport.
	Get(ctx context.Context, id string) (*Report, error)

	// List returns summaries, newest first. limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]ReportSummary, error)

	// Delete removes a report, or returns ErrReportNotFound.
	Delete(ctx context.Context, id string) error

	// DeleteBefore removes reports created before t and returns how many.
	DeleteBefore(ctx context.Context, t time.Time) (int, error)
}
