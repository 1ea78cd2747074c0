// Package estimate computes estimated durations for workload items from the
// static rule tables.
package estimate

import (
	"github.com/jonathan/workload-manager/internal/rules"
)

// Estimator computes estimated hours for a job from its type, task, and
// quantity. It is pure: no I/O, deterministic given its inputs and table.
type Estimator struct {
	table rules.Table
}

// New creates an Estimator over the given rule table. The table must not be
// mutated after construction.
func New(table rules.Table) *Estimator {
	return &Estimator{table: table}
}

// Estimate returns the estimated duration in hours.
//
// quantity is floored at 1: a zero or negative quantity behaves like 1 and is
// never an error. For a known job type, the result is base hours for the task
// multiplied by quantity; an unrecognized task name yields base 0.0 without
// error, so an unknown task never blocks creation. For an unknown job type
// (already rejected by request validation, but this must not crash) the
// caller-supplied fallback is returned verbatim.
func (e *Estimator) Estimate(jobType, taskName string, quantity int, fallback float64) float64 {
	q := quantity
	if q < 1 {
		q = 1
	}

	if !rules.IsValidJobType(jobType) {
		return fallback
	}

	base, _ := e.table.BaseHours(jobType, taskName)
	return base * float64(q)
}
