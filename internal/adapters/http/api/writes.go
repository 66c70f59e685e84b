package api

import (
	"fmt"
	"net/http"
	"time"

	service "github.com/okian/jitsu/internal/app"
)

// checkInRequest mirrors the OpenAPI schema for POST /checkins.
type checkInRequest struct {
	EventID    string `json:"event_id" validate:"omitempty,max=128"`
	MemberID   string `json:"member_id" validate:"required,notblank,max=64"`
	SessionID  string `json:"session_id" validate:"required,notblank,max=128"`
	Status     string `json:"status" validate:"omitempty,alpha,max=16"`
	VerifiedBy string `json:"verified_by" validate:"omitempty,max=64"`
	Visitor    bool   `json:"is_visitor"`
	TS         string `json:"ts" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// promotionRequest mirrors the OpenAPI schema for POST /promotions.
type promotionRequest struct {
	EventID   string `json:"event_id" validate:"omitempty,max=128"`
	MemberID  string `json:"member_id" validate:"required,max=64"`
	Rank      string `json:"rank" validate:"required,notblank,max=32"`
	Stripes   int    `json:"stripes" validate:"min=0,max=4"`
	AwardedBy string `json:"awarded_by" validate:"omitempty,max=64"`
	Notes     string `json:"notes" validate:"max=500"`
}

// handleCheckIn handles POST /checkins.
func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_checkin"
	var req checkInRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	ts, err := parseTimestamp(req.TS)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	ack, err := s.deps.SubmitCheckIn(r.Context(), service.CheckIn{
		EventID:    req.EventID,
		MemberID:   req.MemberID,
		SessionID:  req.SessionID,
		Status:     req.Status,
		VerifiedBy: req.VerifiedBy,
		Visitor:    req.Visitor,
		TS:         ts,
	})
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	writeAck(w, ack)
}

// parseTimestamp reads an optional RFC3339 timestamp. Empty yields the zero time.
func parseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("ts must be RFC3339: %w", err)
	}
	return ts, nil
}

// handlePromotion handles POST /promotions.
func (s *Server) handlePromotion(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_promotion"
	var req promotionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	ack, err := s.deps.SubmitPromotion(r.Context(), service.Promotion{
		EventID:   req.EventID,
		MemberID:  req.MemberID,
		Rank:      req.Rank,
		Stripes:   req.Stripes,
		AwardedBy: req.AwardedBy,
		Notes:     req.Notes,
	})
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	writeAck(w, ack)
}

// writeAck answers 202 for queued writes and 200 for duplicates.
func writeAck(w http.ResponseWriter, ack service.Ack) {
	if ack.Duplicate {
		writeJSON(w, http.StatusOK, ack)
		return
	}
	writeJSON(w, http.StatusAccepted, ack)
}
