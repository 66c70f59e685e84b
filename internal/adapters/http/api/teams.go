package api

import (
	"net/http"

	"github.com/okian/jitsu/internal/adapters/catalog"
)

type createTeamRequest struct {
	Name    string `json:"name" validate:"required,notblank,max=80"`
	LogoURL string `json:"logo_url" validate:"omitempty,url"`
	Acronym string `json:"acronym" validate:"omitempty,alphanum,max=5"`
}

type joinTeamRequest struct {
	Code string `json:"code" validate:"required,max=32"`
}

// handleTeams handles GET /teams.
func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_teams"
	teams, err := s.deps.Teams(r.Context())
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// handleCreateTeam handles POST /teams.
func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_team"
	var req createTeamRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	team, err := s.deps.CreateTeam(r.Context(), catalog.CreateTeamInput{
		Name:    req.Name,
		LogoURL: req.LogoURL,
		Acronym: req.Acronym,
	})
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

// handleJoinTeam handles POST /teams/join.
func (s *Server) handleJoinTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.join_team"
	var req joinTeamRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	team, err := s.deps.JoinTeam(r.Context(), req.Code)
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

// handleFeed handles GET /teams/{id}/feed.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_feed"
	posts, err := s.deps.Feed(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// handleChat handles GET /teams/{id}/chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_chat"
	msgs, err := s.deps.Chat(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}
