package server

import (
	"net/http"

	"github.com/jonathan/workload-manager/internal/db"
)

// handleSummaryByUser aggregates totals per user, grouped case-insensitively
func (s *Server) handleSummaryByUser(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.svc.SummaryByUser(r.Context())
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if summaries == nil {
		summaries = []db.UserSummary{}
	}

	s.jsonResponse(w, http.StatusOK, summaries)
}

// handleSummary aggregates totals per (user, job type) with optional
// job_type and case-insensitive user_name filters
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	filter := db.SummaryFilter{
		JobType:  r.URL.Query().Get("job_type"),
		UserName: r.URL.Query().Get("user_name"),
	}

	summaries, err := s.svc.Summary(r.Context(), filter)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if summaries == nil {
		summaries = []db.TypeSummary{}
	}

	s.jsonResponse(w, http.StatusOK, summaries)
}
