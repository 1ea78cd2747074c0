package service

import "fmt"

// ValidationError indicates a request that fails input validation. It is
// surfaced to the caller as a rejected request and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// NotFoundError indicates an unknown workload item id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("workload item not found: %d", e.ID)
}
