/*
Package sqlite provides a SQLite-backed arrear.ReportStore.

PURPOSE:
  Persists computed arrear reports so a clerk can come back to a
  calculation, re-download its spreadsheet, or compare it with a later
  run. Reports are immutable once saved: there is no UPDATE path, only
  Save, Delete and retention pruning.

KEY TABLES:
  reports:        One row per computation: the input, the policy flags,
                  the final state and the total.
  report_records: One row per month, ordered by seq.

DECIMALS:
  Every money value and DA rate is stored as TEXT and parsed back with
  shopspring/decimal, so a saved report reproduces the exact figures it
  was computed with.

ATOMICITY:
  Save writes the report row and all its month rows in one SQL
  transaction. A report is either fully present or absent.

INDEXES:
  - idx_reports_created_at: List (newest first) and retention pruning

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/arrear.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  err = store.Save(ctx, arrear.NewReport(in, engine.Policy(), result))

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - arrear/report.go: Report and the ReportStore interface
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/arrear-engine/arrear"
	"github.com/warp/arrear-engine/generic"
)

// Fixed-width so that TEXT ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements arrear.ReportStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ arrear.ReportStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		initial_grade_pay INTEGER NOT NULL,
		initial_basic INTEGER NOT NULL,
		increment_month INTEGER NOT NULL,
		start_month TEXT NOT NULL,
		end_month TEXT NOT NULL,
		promotion_month TEXT,
		suppress_increment_on_promotion INTEGER NOT NULL,
		increment_timing TEXT NOT NULL,
		final_grade_pay INTEGER NOT NULL,
		final_step INTEGER NOT NULL,
		final_promoted INTEGER NOT NULL,
		months INTEGER NOT NULL,
		total_arrear TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_created_at
		ON reports(created_at DESC);

	CREATE TABLE IF NOT EXISTS report_records (
		report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		month TEXT NOT NULL,
		grade_pay INTEGER NOT NULL,
		step INTEGER NOT NULL,
		old_basic INTEGER NOT NULL,
		new_basic INTEGER NOT NULL,
		da_rate TEXT NOT NULL,
		old_salary TEXT NOT NULL,
		new_salary TEXT NOT NULL,
		arrear TEXT NOT NULL,
		cumulative TEXT NOT NULL,
		promoted INTEGER NOT NULL,
		incremented INTEGER NOT NULL,
		PRIMARY KEY (report_id, seq)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// REPORT STORE
// =============================================================================

// Save persists a report and its month rows atomically.
func (s *Store) Save(ctx context.Context, r *arrear.Report) error {
	if r == nil || r.ID == "" || r.Result == nil {
		return fmt.Errorf("sqlite: report must have an ID and a result")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	res := r.Result
	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO reports
		(id, created_at, initial_grade_pay, initial_basic, increment_month, start_month, end_month,
		 promotion_month, suppress_increment_on_promotion, increment_timing,
		 final_grade_pay, final_step, final_promoted, months, total_arrear)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID,
		r.CreatedAt.UTC().Format(timeLayout),
		int(r.Input.InitialGradePay),
		r.Input.InitialBasic,
		int(r.Input.IncrementMonth),
		res.Period.Start.YYYYMM(),
		r.Input.EndMonth.YYYYMM(),
		nullMonth(r.Input.PromotionMonth),
		r.Policy.SuppressIncrementOnPromotion,
		string(r.Policy.IncrementTiming),
		int(res.Final.GradePay),
		res.Final.Step,
		res.Final.Promoted,
		len(res.Records),
		res.TotalArrear.String(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", generic.ErrReportExists, r.ID)
		}
		return fmt.Errorf("failed to insert report: %w", err)
	}

	stmt, err := sqlTx.PrepareContext(ctx, `
		INSERT INTO report_records
		(report_id, seq, month, grade_pay, step, old_basic, new_basic, da_rate,
		 old_salary, new_salary, arrear, cumulative, promoted, incremented)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range res.Records {
		if _, err := stmt.ExecContext(ctx,
			r.ID, i, rec.Month.YYYYMM(), int(rec.GradePay), rec.Step,
			rec.OldBasic, rec.NewBasic, rec.DARate.String(),
			rec.OldSalary.String(), rec.NewSalary.String(), rec.Arrear.String(), rec.Cumulative.String(),
			rec.Promoted, rec.Incremented,
		); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", rec.Label, err)
		}
	}

	return sqlTx.Commit()
}

// Get loads a report with all its month rows.
func (s *Store) Get(ctx context.Context, id string) (*arrear.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		r                                 arrear.Report
		createdAt, startMonth, endMonth   string
		promotionMonth                    sql.NullString
		gradePay, incrementMonth, finalGP int
		timing, total                     string
		months                            int
	)
	r.Result = &arrear.Result{}

	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, initial_grade_pay, initial_basic, increment_month, start_month, end_month,
		       promotion_month, suppress_increment_on_promotion, increment_timing,
		       final_grade_pay, final_step, final_promoted, months, total_arrear
		FROM reports WHERE id = ?
	`, id).Scan(
		&r.ID, &createdAt, &gradePay, &r.Input.InitialBasic, &incrementMonth, &startMonth, &endMonth,
		&promotionMonth, &r.Policy.SuppressIncrementOnPromotion, &timing,
		&finalGP, &r.Result.Final.Step, &r.Result.Final.Promoted, &months, &total,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", generic.ErrReportNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	dec := rowDecoder{id: id}
	r.CreatedAt = dec.time("created_at", createdAt)
	r.Input.InitialGradePay = generic.GradePay(gradePay)
	r.Input.IncrementMonth = time.Month(incrementMonth)
	r.Policy.IncrementTiming = dec.timing(timing)
	r.Result.Final.GradePay = generic.GradePay(finalGP)
	r.Input.EndMonth = dec.month("end_month", endMonth)
	r.Input.PromotionMonth = dec.optionalMonth("promotion_month", promotionMonth.String)
	r.Result.Period = generic.Period{Start: dec.month("start_month", startMonth), End: r.Input.EndMonth}
	r.Result.Final.Month = r.Input.EndMonth
	r.Result.TotalArrear = dec.decimal("total_arrear", total)
	if dec.err != nil {
		return nil, dec.err
	}

	records, err := s.loadRecords(ctx, id, months)
	if err != nil {
		return nil, err
	}
	r.Result.Records = records
	return &r, nil
}

func (s *Store) loadRecords(ctx context.Context, id string, capacity int) ([]arrear.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT month, grade_pay, step, old_basic, new_basic, da_rate,
		       old_salary, new_salary, arrear, cumulative, promoted, incremented
		FROM report_records
		WHERE report_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := make([]arrear.Record, 0, capacity)
	dec := rowDecoder{id: id}
	for rows.Next() {
		var (
			rec                                         arrear.Record
			month, rate, oldSalary, newSalary, a, cumul string
			gp                                          int
		)
		if err := rows.Scan(&month, &gp, &rec.Step, &rec.OldBasic, &rec.NewBasic, &rate,
			&oldSalary, &newSalary, &a, &cumul, &rec.Promoted, &rec.Incremented); err != nil {
			return nil, err
		}
		rec.Month = dec.month("month", month)
		rec.Label = rec.Month.Label()
		rec.GradePay = generic.GradePay(gp)
		rec.DARate = dec.decimal("da_rate", rate)
		rec.DAPercent = generic.Percent(rec.DARate)
		rec.OldSalary = dec.decimal("old_salary", oldSalary)
		rec.NewSalary = dec.decimal("new_salary", newSalary)
		rec.Arrear = dec.decimal("arrear", a)
		rec.Cumulative = dec.decimal("cumulative", cumul)
		if dec.err != nil {
			return nil, dec.err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// List returns report summaries, newest first. A non-positive limit returns all.
func (s *Store) List(ctx context.Context, limit int) ([]arrear.ReportSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, initial_grade_pay, initial_basic, end_month, promotion_month, months, total_arrear
		FROM reports
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var out []arrear.ReportSummary
	for rows.Next() {
		var (
			sum                        arrear.ReportSummary
			createdAt, endMonth, total string
			promotionMonth             sql.NullString
			gp                         int
		)
		if err := rows.Scan(&sum.ID, &createdAt, &gp, &sum.InitialBasic, &endMonth, &promotionMonth, &sum.Months, &total); err != nil {
			return nil, err
		}
		dec := rowDecoder{id: sum.ID}
		sum.CreatedAt = dec.time("created_at", createdAt)
		sum.InitialGradePay = generic.GradePay(gp)
		sum.EndMonth = dec.month("end_month", endMonth)
		sum.PromotionMonth = dec.optionalMonth("promotion_month", promotionMonth.String)
		sum.TotalArrear = dec.decimal("total_arrear", total)
		if dec.err != nil {
			return nil, dec.err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes a report and its month rows.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM report_records WHERE report_id = ?", id); err != nil {
		return err
	}
	result, err := sqlTx.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrReportNotFound, id)
	}
	return sqlTx.Commit()
}

// DeleteBefore removes reports created strictly before t and reports how many.
func (s *Store) DeleteBefore(ctx context.Context, t time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := t.UTC().Format(timeLayout)

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx,
		"DELETE FROM report_records WHERE report_id IN (SELECT id FROM reports WHERE created_at < ?)", cutoff,
	); err != nil {
		return 0, err
	}
	result, err := sqlTx.ExecContext(ctx, "DELETE FROM reports WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := result.RowsAffected()
	if err := sqlTx.Commit(); err != nil {
		return 0, err
	}
	return int(n), nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"report_records", "reports"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullMonth(m *generic.Month) sql.NullString {
	if m == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: m.YYYYMM(), Valid: true}
}

// rowDecoder converts stored text columns back into domain values. The
// first failure is kept in err as an ErrCorruptReport; later calls are no-ops.
type rowDecoder struct {
	id  string
	err error
}

func (d *rowDecoder) fail(column, value string, err error) {
	if d.err == nil {
		d.err = fmt.Errorf("%w %s: column %s = %q: %v", generic.ErrCorruptReport, d.id, column, value, err)
	}
}

func (d *rowDecoder) decimal(column, value string) decimal.Decimal {
	v, err := decimal.NewFromString(value)
	if err != nil {
		d.fail(column, value, err)
	}
	return v
}

func (d *rowDecoder) time(column, value string) time.Time {
	v, err := time.Parse(timeLayout, value)
	if err != nil {
		d.fail(column, value, err)
	}
	return v
}

func (d *rowDecoder) month(column, value string) generic.Month {
	v, err := generic.ParseYYYYMM(value)
	if err != nil {
		d.fail(column, value, err)
	}
	return v
}

func (d *rowDecoder) optionalMonth(column, value string) *generic.Month {
	v, err := generic.ParseOptionalYYYYMM(value)
	if err != nil {
		d.fail(column, value, err)
	}
	return v
}

func (d *rowDecoder) timing(value string) arrear.IncrementTiming {
	v, ok := arrear.ParseIncrementTiming(value)
	if !ok {
		d.fail("increment_timing", value, errors.New("unknown increment timing"))
	}
	return v
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
