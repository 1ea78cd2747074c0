// Package service composes validation, duration estimation, persistence, and
// change auditing for workload items.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/workload-manager/internal/audit"
	"github.com/jonathan/workload-manager/internal/db"
	"github.com/jonathan/workload-manager/internal/estimate"
	"github.com/jonathan/workload-manager/internal/rules"
	"github.com/jonathan/workload-manager/internal/types"
)

// isoDateLayout is the calendar-date format accepted for start_date/due_date.
const isoDateLayout = "2006-01-02"

// DefaultStatus is applied when a request carries no status.
const DefaultStatus = "Open"

// Store is the persistence collaborator. *db.DB satisfies it; tests supply an
// in-memory implementation.
type Store interface {
	CreateItem(ctx context.Context, item *db.WorkloadItem, entry db.HistoryEntry) (*db.WorkloadItem, error)
	GetItem(ctx context.Context, id int64) (*db.WorkloadItem, error)
	ListItems(ctx context.Context, opts db.ListOptions) ([]db.WorkloadItem, error)
	UpdateItem(ctx context.Context, item *db.WorkloadItem, entries []db.HistoryEntry) (*db.WorkloadItem, error)
	DeleteItem(ctx context.Context, id int64) error
	ListHistory(ctx context.Context, jobID int64) ([]db.HistoryEntry, error)
	SummaryByUser(ctx context.Context) ([]db.UserSummary, error)
	Summary(ctx context.Context, filter db.SummaryFilter) ([]db.TypeSummary, error)
}

// Service is the composition point for workload operations.
type Service struct {
	store     Store
	estimator *estimate.Estimator
}

// New creates a Service over the given store and estimator.
func New(store Store, estimator *estimate.Estimator) *Service {
	return &Service{store: store, estimator: estimator}
}

// Create validates the request, computes the estimated duration, and persists
// the item together with its Created history entry as one transactional unit.
func (s *Service) Create(ctx context.Context, req *types.JobCreateRequest) (*db.WorkloadItem, error) {
	if err := validateJobType(req.JobType); err != nil {
		return nil, err
	}
	if err := validateDates(req.StartDate, req.DueDate); err != nil {
		return nil, err
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	fallback := 0.0
	if req.EstimatedDuration != nil {
		fallback = *req.EstimatedDuration
	}
	status := req.Status
	if status == "" {
		status = DefaultStatus
	}

	item := &db.WorkloadItem{
		UserName:          req.UserName,
		JobType:           req.JobType,
		TaskName:          req.TaskName,
		Description:       req.Description,
		Quantity:          quantity,
		EstimatedDuration: s.estimator.Estimate(req.JobType, req.TaskName, quantity, fallback),
		Unit:              req.Unit,
		StartDate:         req.StartDate,
		DueDate:           req.DueDate,
		Status:            status,
	}

	entry := db.HistoryEntry{
		Event:     audit.EventCreated,
		CreatedBy: audit.Actor(req.CreatedBy, req.UserName),
	}

	created, err := s.store.CreateItem(ctx, item, entry)
	if err != nil {
		return nil, fmt.Errorf("creating workload item: %w", err)
	}
	return created, nil
}

// Get retrieves a workload item by id.
func (s *Service) Get(ctx context.Context, id int64) (*db.WorkloadItem, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching workload item %d: %w", id, err)
	}
	if item == nil {
		return nil, &NotFoundError{ID: id}
	}
	return item, nil
}

// List retrieves workload items with pagination.
func (s *Service) List(ctx context.Context, limit, offset int) ([]db.WorkloadItem, error) {
	items, err := s.store.ListItems(ctx, db.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("listing workload items: %w", err)
	}
	return items, nil
}

// Update validates the request, merges it field by field onto the stored
// state, recomputes the duration, diffs prior and next states, and persists
// the row together with its audit entries as one transactional unit. An
// update that changes nothing appends no history.
//
// Two concurrent updates to the same id can race: the slower write's diff is
// computed against a stale prior state. The store serializes the writes
// themselves; this layer adds no versioning.
func (s *Service) Update(ctx context.Context, id int64, req *types.JobUpdateRequest) (*db.WorkloadItem, error) {
	if err := validateJobType(req.JobType); err != nil {
		return nil, err
	}

	prior, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching workload item %d: %w", id, err)
	}
	if prior == nil {
		return nil, &NotFoundError{ID: id}
	}

	next := *prior
	next.JobType = req.JobType
	next.TaskName = req.TaskName
	if req.UserName != nil {
		next.UserName = *req.UserName
	}
	if req.Description != nil {
		next.Description = *req.Description
	}
	if req.Quantity != nil {
		next.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		next.Unit = *req.Unit
	}
	if req.StartDate != nil {
		next.StartDate = *req.StartDate
	}
	if req.DueDate != nil {
		next.DueDate = *req.DueDate
	}
	if req.Status != nil {
		next.Status = *req.Status
	}
	if next.Status == "" {
		next.Status = DefaultStatus
	}

	if err := validateDates(next.StartDate, next.DueDate); err != nil {
		return nil, err
	}

	fallback := next.EstimatedDuration
	if req.EstimatedDuration != nil {
		fallback = *req.EstimatedDuration
	}
	next.EstimatedDuration = s.estimator.Estimate(next.JobType, next.TaskName, next.Quantity, fallback)

	actor := audit.Actor(req.CreatedBy, next.UserName)
	changes := audit.Diff(toView(prior), toView(&next))
	entries := make([]db.HistoryEntry, 0, len(changes))
	for _, c := range changes {
		entries = append(entries, db.HistoryEntry{
			Event:        audit.ClassifyEvent(c.Field),
			FieldChanged: c.Field,
			OldValue:     c.Old,
			NewValue:     c.New,
			CreatedBy:    actor,
		})
	}

	updated, err := s.store.UpdateItem(ctx, &next, entries)
	if err != nil {
		return nil, fmt.Errorf("updating workload item %d: %w", id, err)
	}
	if updated == nil {
		// Deleted between the read and the write.
		return nil, &NotFoundError{ID: id}
	}
	return updated, nil
}

// Delete removes a workload item. Deletion is terminal: the item's history
// entries are removed with it by the store's cascade.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &NotFoundError{ID: id}
		}
		return fmt.Errorf("deleting workload item %d: %w", id, err)
	}
	return nil
}

// History returns the item's full audit trail, oldest first. The item row and
// its entries are fetched concurrently; an unknown id is a NotFoundError.
func (s *Service) History(ctx context.Context, id int64) ([]db.HistoryEntry, error) {
	var (
		item    *db.WorkloadItem
		entries []db.HistoryEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		item, err = s.store.GetItem(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.store.ListHistory(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetching history for workload item %d: %w", id, err)
	}

	if item == nil {
		return nil, &NotFoundError{ID: id}
	}
	if entries == nil {
		entries = []db.HistoryEntry{}
	}
	return entries, nil
}

// SummaryByUser aggregates totals per user, grouped case-insensitively.
func (s *Service) SummaryByUser(ctx context.Context) ([]db.UserSummary, error) {
	summaries, err := s.store.SummaryByUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("summarizing by user: %w", err)
	}
	return summaries, nil
}

// Summary aggregates totals per (user, job type) with optional filters.
func (s *Service) Summary(ctx context.Context, filter db.SummaryFilter) ([]db.TypeSummary, error) {
	summaries, err := s.store.Summary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("summarizing workload: %w", err)
	}
	return summaries, nil
}

// toView projects a stored item onto its change-tracked fields.
func toView(item *db.WorkloadItem) audit.ItemView {
	return audit.ItemView{
		UserName:    item.UserName,
		JobType:     item.JobType,
		TaskName:    item.TaskName,
		Description: item.Description,
		Quantity:    item.Quantity,
		Unit:        item.Unit,
		StartDate:   item.StartDate,
		DueDate:     item.DueDate,
		Status:      item.Status,
	}
}

// validateJobType rejects anything outside the three accepted literals.
func validateJobType(jobType string) error {
	if !rules.IsValidJobType(jobType) {
		return &ValidationError{
			Field:   "job_type",
			Message: fmt.Sprintf("must be one of %v", rules.JobTypes),
		}
	}
	return nil
}

// validateDates checks that each supplied date parses as an ISO calendar date
// and that due_date does not precede start_date when both are present.
func validateDates(startDate, dueDate string) error {
	var start, due time.Time
	var err error

	if startDate != "" {
		start, err = time.Parse(isoDateLayout, startDate)
		if err != nil {
			return &ValidationError{Field: "start_date", Message: "must be an ISO date (YYYY-MM-DD)"}
		}
	}
	if dueDate != "" {
		due, err = time.Parse(isoDateLayout, dueDate)
		if err != nil {
			return &ValidationError{Field: "due_date", Message: "must be an ISO date (YYYY-MM-DD)"}
		}
	}
	if startDate != "" && dueDate != "" && due.Before(start) {
		return &ValidationError{Field: "due_date", Message: "must be on/after start_date"}
	}
	return nil
}
