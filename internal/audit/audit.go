// Package audit computes field-level differences between two states of a
// workload item and classifies them into history events.
package audit

import "strconv"

// Event kinds recorded in the history trail.
const (
	EventCreated       = "Created"
	EventUpdated       = "Updated"
	EventStatusChanged = "StatusChanged"
)

// FieldSentinelActor is attributed when neither created_by nor the job's
// user_name is available.
const FieldSentinelActor = "system"

// ItemView is the change-tracked projection of a workload item. Optional
// fields are represented as empty strings so that nil and "" never spuriously
// differ.
type ItemView struct {
	UserName    string
	JobType     string
	TaskName    string
	Description string
	Quantity    int
	Unit        string
	StartDate   string
	DueDate     string
	Status      string
}

// FieldChange is one field-level difference between two item states.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

// trackedField pairs a wire-level field name with its string-normalized
// accessor. The list is fixed and explicit rather than reflective: every
// tracked field is enumerated once, and estimated_duration is deliberately
// absent so a recomputed duration does not generate audit noise of its own.
type trackedField struct {
	name string
	get  func(ItemView) string
}

var trackedFields = []trackedField{
	{"user_name", func(v ItemView) string { return v.UserName }},
	{"job_type", func(v ItemView) string { return v.JobType }},
	{"task_name", func(v ItemView) string { return v.TaskName }},
	{"description", func(v ItemView) string { return v.Description }},
	{"quantity", func(v ItemView) string { return strconv.Itoa(v.Quantity) }},
	{"unit", func(v ItemView) string { return v.Unit }},
	{"start_date", func(v ItemView) string { return v.StartDate }},
	{"due_date", func(v ItemView) string { return v.DueDate }},
	{"status", func(v ItemView) string { return v.Status }},
}

// TrackedFields returns the tracked field names in declaration order.
func TrackedFields() []string {
	names := make([]string, len(trackedFields))
	for i, f := range trackedFields {
		names[i] = f.name
	}
	return names
}

// Diff compares two item states and returns one FieldChange per tracked field
// whose string-normalized value differs, in tracked-field declaration order.
// Diff(x, x) is always empty.
func Diff(oldState, newState ItemView) []FieldChange {
	var changes []FieldChange
	for _, f := range trackedFields {
		oldVal := f.get(oldState)
		newVal := f.get(newState)
		if oldVal == newVal {
			continue
		}
		changes = append(changes, FieldChange{Field: f.name, Old: oldVal, New: newVal})
	}
	return changes
}

// ClassifyEvent maps a changed field to its event kind: a status change is
// recorded as StatusChanged, any other tracked field as Updated.
func ClassifyEvent(field string) string {
	if field == "status" {
		return EventStatusChanged
	}
	return EventUpdated
}

// Actor resolves the attributed actor for a history entry: explicit
// created_by first, then the job's user_name, then the system sentinel.
func Actor(createdBy, userName string) string {
	if createdBy != "" {
		return createdBy
	}
	if userName != "" {
		return userName
	}
	return FieldSentinelActor
}
