package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jonathan/workload-manager/internal/db"
	"github.com/jonathan/workload-manager/internal/types"
)

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// parseJobID parses the {id} path segment.
func parseJobID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// handleListJobs lists workload items with pagination
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 100, 500)
	offset := parseQueryInt(r, "offset", 0, 0)

	jobs, err := s.svc.List(r.Context(), limit, offset)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if jobs == nil {
		jobs = []db.WorkloadItem{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// handleCreateJob creates a workload item from the submitted payload
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req types.JobCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	job, err := s.svc.Create(r.Context(), &req)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, job)
}

// handleGetJob retrieves a workload item by id
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(r)
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	job, err := s.svc.Get(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, job)
}

// handleUpdateJob updates a workload item and records its field changes
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(r)
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	var req types.JobUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	job, err := s.svc.Update(r.Context(), id, &req)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, job)
}

// handleDeleteJob removes a workload item and, by cascade, its history
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(r)
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	if err := s.svc.Delete(r.Context(), id); err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"message":    "Job deleted successfully",
		"deleted_id": id,
	})
}

// handleJobHistory lists a workload item's audit trail, oldest first
func (s *Server) handleJobHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(r)
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	entries, err := s.svc.History(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"history": entries,
		"count":   len(entries),
	})
}
