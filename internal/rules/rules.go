// Package rules defines the static duration rule tables that map a job type and
// task name to a base duration in hours.
package rules

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/workload-manager/internal/schemas"
)

// Job type literals. These are the only job types the service accepts.
const (
	JobTypeDev    = "Dev"
	JobTypeNonDev = "Non Dev"
	JobTypeDX     = "DX"
)

// JobTypes lists the accepted job types in a stable order.
var JobTypes = []string{JobTypeDev, JobTypeNonDev, JobTypeDX}

// Table maps job type -> task name -> base hours. It is configuration data, not
// logic: constructed once at startup and treated as immutable afterwards.
type Table map[string]map[string]float64

// Default returns the built-in rule table. Values are base hours per unit of
// quantity. Task vocabularies shift between deployments, so overrides are
// expected via Load rather than edits here.
func Default() Table {
	return Table{
		JobTypeDev: {
			"BOM - Part Compose":            2.0,
			"Sending Sample":                3.0,
			"Assembly":                      3.0,
			"Power Consumption":             4.0,
			"EMI":                           4.0,
			"Audio":                         4.0,
			"D_VA Project Management":       5.0,
			"High Grade Project Management": 160.0,
			"CST":                           40.0,
			"ESD/EOS":                       8.0,
			"Backend":                       40.0,
			"HDMI":                          40.0,
			"USB":                           40.0,
			"Sub Assy":                      40.0,
		},
		JobTypeNonDev: {
			"Innovation":        2.0,
			"SHEE 5S":           1.0,
			"Education":         3.0,
			"Budget/Accounting": 2.0,
			"VI":                3.0,
			"CA":                2.0,
			"IT":                1.0,
			"Reinvent":          2.0,
			"GA":                0.5,
			"Asset":             3.0,
		},
		JobTypeDX: {
			"DX Project":    220.0,
			"Automation":    160.0,
			"Dashboard":     80.0,
			"Data Cleaning": 40.0,
		},
	}
}

// IsValidJobType reports whether jobType is one of the accepted literals.
func IsValidJobType(jobType string) bool {
	switch jobType {
	case JobTypeDev, JobTypeNonDev, JobTypeDX:
		return true
	}
	return false
}

// BaseHours looks up the base hours for a task. Unknown task names resolve to
// 0.0 and ok=false; an unrecognized task must not block job creation.
func (t Table) BaseHours(jobType, taskName string) (float64, bool) {
	tasks, found := t[jobType]
	if !found {
		return 0, false
	}
	base, found := tasks[taskName]
	return base, found
}

// Load reads a rule table override from a JSON file. The file is validated
// against schemaPath before it replaces the defaults; a malformed override is
// a startup error, never a silent fallback.
func Load(path, schemaPath string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	if schemaPath != "" {
		if err := schemas.ValidateRules(schemaPath, data); err != nil {
			return nil, fmt.Errorf("rules file %s rejected: %w", path, err)
		}
	}

	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	for jobType := range table {
		if !IsValidJobType(jobType) {
			return nil, fmt.Errorf("rules file %s: unknown job type %q", path, jobType)
		}
	}

	return table, nil
}
