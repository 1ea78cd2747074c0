package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleView() ItemView {
	return ItemView{
		UserName:    "alice",
		JobType:     "Dev",
		TaskName:    "EMI",
		Description: "chamber run",
		Quantity:    2,
		Unit:        "set",
		StartDate:   "2024-02-01",
		DueDate:     "2024-02-10",
		Status:      "Open",
	}
}

func TestDiffSelfIsEmpty(t *testing.T) {
	v := sampleView()
	assert.Empty(t, Diff(v, v))

	// Zero values diff against themselves cleanly too.
	assert.Empty(t, Diff(ItemView{}, ItemView{}))
}

func TestDiffStatusOnly(t *testing.T) {
	oldState := sampleView()
	newState := sampleView()
	newState.Status = "Done"

	changes := Diff(oldState, newState)
	require.Len(t, changes, 1)
	assert.Equal(t, "status", changes[0].Field)
	assert.Equal(t, "Open", changes[0].Old)
	assert.Equal(t, "Done", changes[0].New)
	assert.Equal(t, EventStatusChanged, ClassifyEvent(changes[0].Field))
}

func TestDiffDescriptionOnly(t *testing.T) {
	oldState := sampleView()
	newState := sampleView()
	newState.Description = "re-run after shield fix"

	changes := Diff(oldState, newState)
	require.Len(t, changes, 1)
	assert.Equal(t, "description", changes[0].Field)
	assert.Equal(t, EventUpdated, ClassifyEvent(changes[0].Field))
}

func TestDiffOrderFollowsTrackedFields(t *testing.T) {
	oldState := sampleView()
	newState := sampleView()
	newState.Status = "Done"
	newState.UserName = "bob"
	newState.Quantity = 5

	changes := Diff(oldState, newState)
	require.Len(t, changes, 3)
	assert.Equal(t, "user_name", changes[0].Field)
	assert.Equal(t, "quantity", changes[1].Field)
	assert.Equal(t, "status", changes[2].Field)
	assert.Equal(t, "2", changes[1].Old)
	assert.Equal(t, "5", changes[1].New)
}

func TestTrackedFieldsExcludeDerivedDuration(t *testing.T) {
	fields := TrackedFields()
	assert.Equal(t, []string{
		"user_name", "job_type", "task_name", "description", "quantity",
		"unit", "start_date", "due_date", "status",
	}, fields)
	assert.NotContains(t, fields, "estimated_duration")
}

func TestClassifyEvent(t *testing.T) {
	assert.Equal(t, EventStatusChanged, ClassifyEvent("status"))
	assert.Equal(t, EventUpdated, ClassifyEvent("description"))
	assert.Equal(t, EventUpdated, ClassifyEvent("quantity"))
}

func TestActorFallbackChain(t *testing.T) {
	assert.Equal(t, "carol", Actor("carol", "alice"))
	assert.Equal(t, "alice", Actor("", "alice"))
	assert.Equal(t, "system", Actor("", ""))
}
