// Package types provides request payload definitions for the workload manager API.
package types

import (
	"github.com/go-playground/validator/v10"
)

// JobCreateRequest represents the payload to create a workload item.
//
// quantity below 1 is accepted and clamped to 1 at estimation time rather than
// rejected; a non-integer quantity fails JSON decoding. estimated_duration is
// advisory only: the server recomputes it and the supplied value is used
// solely as the fallback for an unrecognized job type.
type JobCreateRequest struct {
	UserName          string   `json:"user_name,omitempty"`
	JobType           string   `json:"job_type" validate:"required,oneof='Dev' 'Non Dev' 'DX'"`
	TaskName          string   `json:"task_name" validate:"required"`
	Description       string   `json:"description,omitempty"`
	Quantity          *int     `json:"quantity,omitempty"`
	EstimatedDuration *float64 `json:"estimated_duration,omitempty"`
	Unit              string   `json:"unit,omitempty"`
	StartDate         string   `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DueDate           string   `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Status            string   `json:"status,omitempty"`
	CreatedBy         string   `json:"created_by,omitempty"`
}

// JobUpdateRequest represents the payload to update a workload item. Pointer
// fields distinguish "absent, keep the stored value" from an explicit
// overwrite; every writable field is enumerated here, so unexpected fields
// cannot slip through.
type JobUpdateRequest struct {
	UserName          *string  `json:"user_name,omitempty"`
	JobType           string   `json:"job_type" validate:"required,oneof='Dev' 'Non Dev' 'DX'"`
	TaskName          string   `json:"task_name" validate:"required"`
	Description       *string  `json:"description,omitempty"`
	Quantity          *int     `json:"quantity,omitempty"`
	EstimatedDuration *float64 `json:"estimated_duration,omitempty"`
	Unit              *string  `json:"unit,omitempty"`
	StartDate         *string  `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DueDate           *string  `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Status            *string  `json:"status,omitempty"`
	CreatedBy         string   `json:"created_by,omitempty"`
}

// Validate validates the JobCreateRequest using the validator.
func (r *JobCreateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the JobUpdateRequest using the validator.
func (r *JobUpdateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
