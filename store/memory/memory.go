// Package memory provides an in-memory arrear.ReportStore.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warp/arrear-engine/arrear"
	"github.com/warp/arrear-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu      sync.RWMutex
	reports map[string]*arrear.Report
}

var _ arrear.ReportStore = (*Store)(nil)

func New() *Store {
	return &Store{reports: make(map[string]*arrear.Report)}
}

// Save stores a copy of the report. Saving an existing ID replaces it.
func (s *Store) Save(_ context.Context, r *arrear.Report) error {
	if r == nil || r.ID == "" {
		return fmt.Errorf("memory: report must have an ID")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[r.ID]; ok {
		return fmt.Errorf("%w: %s", generic.ErrReportExists, r.ID)
	}
	s.reports[r.ID] = clone(r)
	return nil
}

func (s *Store) Get(_ context.Context, id string) (*arrear.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", generic.ErrReportNotFound, id)
	}
	return clone(r), nil
}

// List returns summaries newest first. A non-positive limit returns all.
func (s *Store) List(_ context.Context, limit int) ([]arrear.ReportSummary, error) {
	s.mu.RLock()
	out := make([]arrear.ReportSummary, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r.Summary())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[id]; !ok {
		return fmt.Errorf("%w: %s", generic.ErrReportNotFound, id)
	}
	delete(s.reports, id)
	return nil
}

// DeleteBefore removes reports created strictly before t.
func (s *Store) DeleteBefore(_ context.Context, t time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, r := range s.reports {
		if r.CreatedAt.Before(t) {
			delete(s.reports, id)
			n++
		}
	}
	return n, nil
}

func clone(r *arrear.Report) *arrear.Report {
	cp := *r
	if r.Input.PromotionMonth != nil {
		m := *r.Input.PromotionMonth
		cp.Input.PromotionMonth = &m
	}
	if r.Result != nil {
		res := *r.Result
		res.Records = append([]arrear.Record(nil), r.Result.Records...)
		cp.Result = &res
	}
	return &cp
}
