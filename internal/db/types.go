package db

import "time"

// WorkloadItem is a tracked unit of work. Optional text fields are represented
// as empty strings in Go and stored as NULL.
type WorkloadItem struct {
	ID                int64     `json:"id"`
	UserName          string    `json:"user_name,omitempty"`
	JobType           string    `json:"job_type"`
	TaskName          string    `json:"task_name"`
	Description       string    `json:"description,omitempty"`
	Quantity          int       `json:"quantity"`
	EstimatedDuration float64   `json:"estimated_duration"`
	Unit              string    `json:"unit,omitempty"`
	StartDate         string    `json:"start_date,omitempty"` // ISO date "YYYY-MM-DD"
	DueDate           string    `json:"due_date,omitempty"`   // ISO date "YYYY-MM-DD"
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// HistoryEntry is one immutable audit record for a workload item. Entries are
// never mutated or reordered after insertion; the sequence ordered by
// changed_at is the item's full audit trail.
type HistoryEntry struct {
	ID           int64     `json:"id"`
	JobID        int64     `json:"job_id"`
	Event        string    `json:"event"`
	FieldChanged string    `json:"field_changed,omitempty"`
	OldValue     string    `json:"old_value,omitempty"`
	NewValue     string    `json:"new_value,omitempty"`
	ChangedAt    time.Time `json:"changed_at"`
	CreatedBy    string    `json:"created_by,omitempty"`
}

// ListOptions holds pagination for listing workload items.
type ListOptions struct {
	Limit  int
	Offset int
}

// UserSummary aggregates totals per user (grouped case-insensitively).
type UserSummary struct {
	UserName               string  `json:"user_name"`
	TotalEstimatedDuration float64 `json:"total_estimated_duration"`
	TotalQuantity          int     `json:"total_quantity"`
	TotalJobs              int     `json:"total_jobs"`
}

// TypeSummary aggregates totals per (user, job type).
type TypeSummary struct {
	UserName               string  `json:"user_name"`
	JobType                string  `json:"job_type"`
	TotalJobs              int     `json:"total_jobs"`
	TotalQuantity          int     `json:"total_quantity"`
	TotalEstimatedDuration float64 `json:"total_estimated_duration"`
}

// SummaryFilter holds optional filters for the per-type summary.
type SummaryFilter struct {
	JobType  string // exact match when set
	UserName string // case-insensitive match when set
}
