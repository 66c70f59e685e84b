package api

import (
	"net/http"
)

// handleAttendance handles GET /sessions/{id}/attendance?status=S.
func (s *Server) handleAttendance(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_attendance"
	view, err := s.deps.SessionAttendance(r.Context(), r.PathValue("id"), r.URL.Query().Get("status"))
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleSchedule handles GET /schedule?team=ID.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_schedule"
	view, err := s.deps.Schedule(r.Context(), r.URL.Query().Get("team"))
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
