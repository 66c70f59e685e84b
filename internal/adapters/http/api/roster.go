package api

import (
	"net/http"
	"strconv"
)

// handleBelts handles GET /belts.
func (s *Server) handleBelts(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_belts"
	belts, err := s.deps.Belts(r.Context())
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, belts)
}

// handleRoster handles GET /roster?limit=N.
func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_roster"
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if n > s.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	entries, err := s.deps.TopN(r.Context(), n)
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleSections handles GET /roster/sections?team=ID.
func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_sections"
	sections, err := s.deps.Sections(r.Context(), r.URL.Query().Get("team"))
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

// handleMember handles GET /members/{id}.
func (s *Server) handleMember(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_member"
	view, err := s.deps.Member(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
