package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// appendHistoryTx inserts one history entry inside an existing transaction.
// History rows are append-only: there is no update or reorder path.
func appendHistoryTx(ctx context.Context, tx pgx.Tx, entry HistoryEntry) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO workload_history (job_id, event, field_changed, old_value, new_value, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.JobID, entry.Event, nullIfEmpty(entry.FieldChanged),
		nullIfEmpty(entry.OldValue), nullIfEmpty(entry.NewValue),
		nullIfEmpty(entry.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

// ListHistory retrieves the full audit trail for a workload item, oldest
// first. Id breaks ties between entries written in the same transaction.
func (db *DB) ListHistory(ctx context.Context, jobID int64) ([]HistoryEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, job_id, event, COALESCE(field_changed, ''),
		        COALESCE(old_value, ''), COALESCE(new_value, ''),
		        changed_at, COALESCE(created_by, '')
		 FROM workload_history
		 WHERE job_id = $1
		 ORDER BY changed_at ASC, id ASC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.JobID, &e.Event, &e.FieldChanged,
			&e.OldValue, &e.NewValue, &e.ChangedAt, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
