package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

const workloadItemColumns = `id, COALESCE(user_name, ''), job_type, task_name,
	COALESCE(description, ''), quantity, COALESCE(estimated_duration, 0),
	COALESCE(unit, ''), COALESCE(start_date, ''), COALESCE(due_date, ''),
	COALESCE(status, 'Open'), created_at, updated_at`

func scanWorkloadItem(row pgx.Row, item *WorkloadItem) error {
	return row.Scan(&item.ID, &item.UserName, &item.JobType, &item.TaskName,
		&item.Description, &item.Quantity, &item.EstimatedDuration,
		&item.Unit, &item.StartDate, &item.DueDate,
		&item.Status, &item.CreatedAt, &item.UpdatedAt)
}

// CreateItem inserts a workload item together with its Created history entry
// in a single transaction. No item row exists without its creation audit
// record.
func (db *DB) CreateItem(ctx context.Context, item *WorkloadItem, entry HistoryEntry) (*WorkloadItem, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var created WorkloadItem
	err = scanWorkloadItem(tx.QueryRow(ctx,
		`INSERT INTO workload_items (user_name, job_type, task_name, description,
		                             quantity, estimated_duration, unit,
		                             start_date, due_date, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, 'Open'))
		 RETURNING `+workloadItemColumns,
		nullIfEmpty(item.UserName), item.JobType, item.TaskName, nullIfEmpty(item.Description),
		item.Quantity, item.EstimatedDuration, nullIfEmpty(item.Unit),
		nullIfEmpty(item.StartDate), nullIfEmpty(item.DueDate), nullIfEmpty(item.Status),
	), &created)
	if err != nil {
		return nil, fmt.Errorf("failed to create workload item: %w", err)
	}

	entry.JobID = created.ID
	if err := appendHistoryTx(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &created, nil
}

// GetItem retrieves a workload item by id. Returns nil, nil when absent.
func (db *DB) GetItem(ctx context.Context, id int64) (*WorkloadItem, error) {
	var item WorkloadItem
	err := scanWorkloadItem(db.pool.QueryRow(ctx,
		`SELECT `+workloadItemColumns+` FROM workload_items WHERE id = $1`, id,
	), &item)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get workload item: %w", err)
	}
	return &item, nil
}

// ListItems retrieves workload items ordered by id with pagination.
func (db *DB) ListItems(ctx context.Context, opts ListOptions) ([]WorkloadItem, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+workloadItemColumns+` FROM workload_items
		 ORDER BY id
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list workload items: %w", err)
	}
	defer rows.Close()

	var items []WorkloadItem
	for rows.Next() {
		var item WorkloadItem
		if err := scanWorkloadItem(rows, &item); err != nil {
			return nil, fmt.Errorf("failed to scan workload item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateItem rewrites a workload item row and appends its audit entries in a
// single transaction. Returns nil, nil when the item does not exist.
func (db *DB) UpdateItem(ctx context.Context, item *WorkloadItem, entries []HistoryEntry) (*WorkloadItem, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var updated WorkloadItem
	err = scanWorkloadItem(tx.QueryRow(ctx,
		`UPDATE workload_items SET
		     user_name = $2,
		     job_type = $3,
		     task_name = $4,
		     description = $5,
		     quantity = $6,
		     estimated_duration = $7,
		     unit = $8,
		     start_date = $9,
		     due_date = $10,
		     status = COALESCE($11, 'Open'),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+workloadItemColumns,
		item.ID, nullIfEmpty(item.UserName), item.JobType, item.TaskName,
		nullIfEmpty(item.Description), item.Quantity, item.EstimatedDuration,
		nullIfEmpty(item.Unit), nullIfEmpty(item.StartDate), nullIfEmpty(item.DueDate),
		nullIfEmpty(item.Status),
	), &updated)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update workload item: %w", err)
	}

	for _, entry := range entries {
		entry.JobID = updated.ID
		if err := appendHistoryTx(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &updated, nil
}

// DeleteItem removes a workload item; its history entries go with it via the
// ON DELETE CASCADE constraint.
func (db *DB) DeleteItem(ctx context.Context, id int64) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM workload_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete workload item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("workload item %d: %w", id, ErrNotFound)
	}
	return nil
}

// SummaryByUser aggregates totals per user, grouped case-insensitively.
func (db *DB) SummaryByUser(ctx context.Context) ([]UserSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT LOWER(COALESCE(user_name, '')),
		        COALESCE(SUM(estimated_duration), 0),
		        COALESCE(SUM(quantity), 0),
		        COUNT(id)
		 FROM workload_items
		 GROUP BY LOWER(COALESCE(user_name, ''))
		 ORDER BY LOWER(COALESCE(user_name, ''))`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize by user: %w", err)
	}
	defer rows.Close()

	var summaries []UserSummary
	for rows.Next() {
		var s UserSummary
		if err := rows.Scan(&s.UserName, &s.TotalEstimatedDuration, &s.TotalQuantity, &s.TotalJobs); err != nil {
			return nil, fmt.Errorf("failed to scan user summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Summary aggregates totals per (user, job type) with optional filters.
func (db *DB) Summary(ctx context.Context, filter SummaryFilter) ([]TypeSummary, error) {
	var conditions []string
	var args []any
	argNum := 1

	if filter.JobType != "" {
		conditions = append(conditions, fmt.Sprintf("job_type = $%d", argNum))
		args = append(args, filter.JobType)
		argNum++
	}
	if filter.UserName != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(COALESCE(user_name, '')) = LOWER($%d)", argNum))
		args = append(args, filter.UserName)
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(
		`SELECT LOWER(COALESCE(user_name, '')), job_type,
		        COUNT(id),
		        COALESCE(SUM(quantity), 0),
		        COALESCE(SUM(estimated_duration), 0)
		 FROM workload_items %s
		 GROUP BY LOWER(COALESCE(user_name, '')), job_type
		 ORDER BY LOWER(COALESCE(user_name, '')), job_type`,
		whereClause,
	)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize workload: %w", err)
	}
	defer rows.Close()

	var summaries []TypeSummary
	for rows.Next() {
		var s TypeSummary
		if err := rows.Scan(&s.UserName, &s.JobType, &s.TotalJobs, &s.TotalQuantity, &s.TotalEstimatedDuration); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
