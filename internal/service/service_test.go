package service

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/workload-manager/internal/audit"
	"github.com/jonathan/workload-manager/internal/db"
	"github.com/jonathan/workload-manager/internal/estimate"
	"github.com/jonathan/workload-manager/internal/rules"
	"github.com/jonathan/workload-manager/internal/types"
)

// memStore is an in-memory Store that mirrors the database's transactional
// behavior, including the delete cascade on history.
type memStore struct {
	nextItemID    int64
	nextHistoryID int64
	items         map[int64]db.WorkloadItem
	history       map[int64][]db.HistoryEntry
}

func newMemStore() *memStore {
	return &memStore{
		nextItemID:    1,
		nextHistoryID: 1,
		items:         make(map[int64]db.WorkloadItem),
		history:       make(map[int64][]db.HistoryEntry),
	}
}

func (m *memStore) appendEntry(jobID int64, entry db.HistoryEntry) {
	entry.ID = m.nextHistoryID
	m.nextHistoryID++
	entry.JobID = jobID
	entry.ChangedAt = time.Now().UTC()
	m.history[jobID] = append(m.history[jobID], entry)
}

func (m *memStore) CreateItem(ctx context.Context, item *db.WorkloadItem, entry db.HistoryEntry) (*db.WorkloadItem, error) {
	stored := *item
	stored.ID = m.nextItemID
	m.nextItemID++
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.items[stored.ID] = stored
	m.appendEntry(stored.ID, entry)
	return &stored, nil
}

func (m *memStore) GetItem(ctx context.Context, id int64) (*db.WorkloadItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (m *memStore) ListItems(ctx context.Context, opts db.ListOptions) ([]db.WorkloadItem, error) {
	ids := make([]int64, 0, len(m.items))
	for id := range m.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []db.WorkloadItem
	for i, id := range ids {
		if i < opts.Offset {
			continue
		}
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
		out = append(out, m.items[id])
	}
	return out, nil
}

func (m *memStore) UpdateItem(ctx context.Context, item *db.WorkloadItem, entries []db.HistoryEntry) (*db.WorkloadItem, error) {
	if _, ok := m.items[item.ID]; !ok {
		return nil, nil
	}
	stored := *item
	stored.UpdatedAt = time.Now().UTC()
	m.items[stored.ID] = stored
	for _, e := range entries {
		m.appendEntry(stored.ID, e)
	}
	return &stored, nil
}

func (m *memStore) DeleteItem(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.items, id)
	delete(m.history, id)
	return nil
}

func (m *memStore) ListHistory(ctx context.Context, jobID int64) ([]db.HistoryEntry, error) {
	return m.history[jobID], nil
}

func (m *memStore) SummaryByUser(ctx context.Context) ([]db.UserSummary, error) {
	byUser := make(map[string]*db.UserSummary)
	for _, item := range m.items {
		key := strings.ToLower(item.UserName)
		s, ok := byUser[key]
		if !ok {
			s = &db.UserSummary{UserName: item.UserName}
			byUser[key] = s
		}
		s.TotalEstimatedDuration += item.EstimatedDuration
		s.TotalQuantity += item.Quantity
		s.TotalJobs++
	}
	var out []db.UserSummary
	for _, s := range byUser {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserName < out[j].UserName })
	return out, nil
}

func (m *memStore) Summary(ctx context.Context, filter db.SummaryFilter) ([]db.TypeSummary, error) {
	type key struct{ user, jobType string }
	grouped := make(map[key]*db.TypeSummary)
	for _, item := range m.items {
		if filter.JobType != "" && item.JobType != filter.JobType {
			continue
		}
		if filter.UserName != "" && !strings.EqualFold(item.UserName, filter.UserName) {
			continue
		}
		k := key{strings.ToLower(item.UserName), item.JobType}
		s, ok := grouped[k]
		if !ok {
			s = &db.TypeSummary{UserName: item.UserName, JobType: item.JobType}
			grouped[k] = s
		}
		s.TotalJobs++
		s.TotalQuantity += item.Quantity
		s.TotalEstimatedDuration += item.EstimatedDuration
	}
	var out []db.TypeSummary
	for _, s := range grouped {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserName != out[j].UserName {
			return out[i].UserName < out[j].UserName
		}
		return out[i].JobType < out[j].JobType
	})
	return out, nil
}

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	return New(store, estimate.New(rules.Default())), store
}

func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

func createRequest() *types.JobCreateRequest {
	return &types.JobCreateRequest{
		UserName:  "Alice",
		JobType:   rules.JobTypeDev,
		TaskName:  "BOM - Part Compose",
		Quantity:  intPtr(3),
		StartDate: "2024-02-01",
		DueDate:   "2024-02-10",
	}
}

func TestCreateComputesDurationAndRecordsCreated(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	item, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)
	require.NotNil(t, item)

	assert.Equal(t, int64(1), item.ID)
	assert.Equal(t, 6.0, item.EstimatedDuration) // 2.0 base x 3
	assert.Equal(t, DefaultStatus, item.Status)
	assert.False(t, item.CreatedAt.IsZero())

	entries, err := store.ListHistory(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.EventCreated, entries[0].Event)
	assert.Equal(t, "Alice", entries[0].CreatedBy)
}

func TestCreateDefaultsQuantityToOne(t *testing.T) {
	svc, _ := newTestService()

	req := createRequest()
	req.Quantity = nil
	item, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, 2.0, item.EstimatedDuration)
}

func TestCreateUnknownTaskEstimatesZero(t *testing.T) {
	svc, _ := newTestService()

	req := createRequest()
	req.TaskName = "Yak Shaving"
	req.EstimatedDuration = floatPtr(42)
	item, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 0.0, item.EstimatedDuration)
}

func TestCreateRejectsInvalidJobType(t *testing.T) {
	svc, store := newTestService()

	req := createRequest()
	req.JobType = "Ops"
	_, err := svc.Create(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "job_type", verr.Field)
	assert.Empty(t, store.items)
}

func TestCreateRejectsDueBeforeStart(t *testing.T) {
	svc, _ := newTestService()

	req := createRequest()
	req.StartDate = "2024-02-10"
	req.DueDate = "2024-02-01"
	_, err := svc.Create(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "due_date", verr.Field)
}

func TestCreateRejectsMalformedDate(t *testing.T) {
	svc, _ := newTestService()

	req := createRequest()
	req.StartDate = "02/01/2024"
	_, err := svc.Create(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "start_date", verr.Field)
}

func TestGetUnknownIDIsNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Get(context.Background(), 99)

	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, int64(99), nfe.ID)
}

func TestUpdateDescriptionAppendsSingleUpdatedEntry(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	item, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	req := &types.JobUpdateRequest{
		JobType:     item.JobType,
		TaskName:    item.TaskName,
		Description: strPtr("urgent rework"),
	}
	updated, err := svc.Update(ctx, item.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "urgent rework", updated.Description)
	// Unsent fields are preserved.
	assert.Equal(t, item.Quantity, updated.Quantity)
	assert.Equal(t, item.StartDate, updated.StartDate)

	entries, err := store.ListHistory(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2) // Created + one Updated
	last := entries[1]
	assert.Equal(t, audit.EventUpdated, last.Event)
	assert.Equal(t, "description", last.FieldChanged)
	assert.Equal(t, "", last.OldValue)
	assert.Equal(t, "urgent rework", last.NewValue)
}

func TestUpdateStatusRecordsStatusChanged(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	item, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	req := &types.JobUpdateRequest{
		JobType:  item.JobType,
		TaskName: item.TaskName,
		Status:   strPtr("Done"),
	}
	_, err = svc.Update(ctx, item.ID, req)
	require.NoError(t, err)

	entries, err := store.ListHistory(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, audit.EventStatusChanged, entries[1].Event)
	assert.Equal(t, "status", entries[1].FieldChanged)
	assert.Equal(t, "Open", entries[1].OldValue)
	assert.Equal(t, "Done", entries[1].NewValue)
}

func TestUpdateNoChangeAppendsNothing(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	item, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	req := &types.JobUpdateRequest{
		JobType:  item.JobType,
		TaskName: item.TaskName,
	}
	_, err = svc.Update(ctx, item.ID, req)
	require.NoError(t, err)

	entries, err := store.ListHistory(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1) // only the Created entry
}

func TestUpdateRecomputesDuration(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	item, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)
	require.Equal(t, 6.0, item.EstimatedDuration)

	req := &types.JobUpdateRequest{
		JobType:  item.JobType,
		TaskName: item.TaskName,
		Quantity: intPtr(5),
	}
	updated, err := svc.Update(ctx, item.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 10.0, updated.EstimatedDuration)
}

func TestUpdateRejectsMergedDateOrder(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	item, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	// due_date stays 2024-02-10; moving start past it must fail.
	req := &types.JobUpdateRequest{
		JobType:   item.JobType,
		TaskName:  item.TaskName,
		StartDate: strPtr("2024-03-01"),
	}
	_, err = svc.Update(ctx, item.ID, req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "due_date", verr.Field)
}

func TestUpdateUnknownIDIsNotFound(t *testing.T) {
	svc, _ := newTestService()

	req := &types.JobUpdateRequest{JobType: rules.JobTypeDev, TaskName: "EMI"}
	_, err := svc.Update(context.Background(), 404, req)

	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
}

func TestDeleteCascadesHistory(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	item, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	req := &types.JobUpdateRequest{
		JobType:  item.JobType,
		TaskName: item.TaskName,
		Status:   strPtr("Done"),
	}
	_, err = svc.Update(ctx, item.ID, req)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, item.ID))

	entries, err := store.ListHistory(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	var nfe *NotFoundError
	_, err = svc.Get(ctx, item.ID)
	require.ErrorAs(t, err, &nfe)
}

func TestDeleteUnknownIDIsNotFound(t *testing.T) {
	svc, _ := newTestService()

	err := svc.Delete(context.Background(), 404)

	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
}

func TestHistoryOrderAndNotFound(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	item, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	for _, status := range []string{"In Progress", "Done"} {
		req := &types.JobUpdateRequest{
			JobType:  item.JobType,
			TaskName: item.TaskName,
			Status:   strPtr(status),
		}
		_, err = svc.Update(ctx, item.ID, req)
		require.NoError(t, err)
	}

	entries, err := svc.History(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, audit.EventCreated, entries[0].Event)
	assert.Equal(t, "In Progress", entries[1].NewValue)
	assert.Equal(t, "Done", entries[2].NewValue)

	var nfe *NotFoundError
	_, err = svc.History(ctx, 404)
	require.ErrorAs(t, err, &nfe)
}

func TestSummaryByUserGroupsCaseInsensitively(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, user := range []string{"Alice", "alice", "Bob"} {
		req := createRequest()
		req.UserName = user
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	summaries, err := svc.SummaryByUser(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byName := make(map[string]db.UserSummary)
	for _, s := range summaries {
		byName[strings.ToLower(s.UserName)] = s
	}
	alice := byName["alice"]
	assert.Equal(t, 2, alice.TotalJobs)
	assert.Equal(t, 6, alice.TotalQuantity)
	assert.Equal(t, 12.0, alice.TotalEstimatedDuration)
	assert.Equal(t, 1, byName["bob"].TotalJobs)
}

func TestSummaryFilters(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	devReq := createRequest()
	_, err := svc.Create(ctx, devReq)
	require.NoError(t, err)

	dxReq := createRequest()
	dxReq.JobType = rules.JobTypeDX
	dxReq.TaskName = "Dashboard"
	dxReq.Quantity = intPtr(1)
	_, err = svc.Create(ctx, dxReq)
	require.NoError(t, err)

	all, err := svc.Summary(ctx, db.SummaryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	dxOnly, err := svc.Summary(ctx, db.SummaryFilter{JobType: rules.JobTypeDX})
	require.NoError(t, err)
	require.Len(t, dxOnly, 1)
	assert.Equal(t, 80.0, dxOnly[0].TotalEstimatedDuration)

	none, err := svc.Summary(ctx, db.SummaryFilter{UserName: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, none)
}
