// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/okian/jitsu/internal/adapters/catalog"
	"github.com/okian/jitsu/internal/adapters/repository"
	service "github.com/okian/jitsu/internal/app"
	"github.com/okian/jitsu/internal/domain/model"
	"github.com/okian/jitsu/internal/domain/roster"
	"github.com/okian/jitsu/pkg/logger"
)

const defaultMaxLimit = 200

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Belts(ctx context.Context) ([]service.BeltView, error)
	TopN(ctx context.Context, n int) ([]repository.Entry, error)
	Sections(ctx context.Context, teamID string) ([]roster.Section, error)
	Member(ctx context.Context, id string) (service.MemberView, error)

	// Writes are applied asynchronously; the ack only confirms queueing.
	SubmitCheckIn(ctx context.Context, in service.CheckIn) (service.Ack, error)
	SubmitPromotion(ctx context.Context, in service.Promotion) (service.Ack, error)

	SessionAttendance(ctx context.Context, sessionID, status string) (service.AttendanceView, error)
	Schedule(ctx context.Context, teamID string) (service.ScheduleView, error)

	Teams(ctx context.Context) ([]model.Team, error)
	CreateTeam(ctx context.Context, in catalog.CreateTeamInput) (model.Team, error)
	JoinTeam(ctx context.Context, code string) (model.Team, error)
	Feed(ctx context.Context, teamID string) ([]model.FeedPost, error)
	Chat(ctx context.Context, teamID string) ([]model.ChatMessage, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps     Dependencies
	maxLimit int
	limiter  *rate.Limiter
	logger   logger.Logger

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
}

// Option configures a Server.
type Option func(*Server)

// WithMaxLimit caps the roster page size.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithRateLimit throttles write endpoints to rps requests per second with the
// given burst. A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:          deps,
		maxLimit:      defaultMaxLimit,
		logger:        logger.Default(),
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("api")
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /belts", MetricsMiddleware(s.handleBelts, "belts"))
	mux.HandleFunc("GET /roster", MetricsMiddleware(s.handleRoster, "roster"))
	mux.HandleFunc("GET /roster/sections", MetricsMiddleware(s.handleSections, "roster_sections"))
	mux.HandleFunc("GET /members/{id}", MetricsMiddleware(s.handleMember, "member"))

	mux.HandleFunc("POST /checkins", MetricsMiddleware(s.rateLimit(s.handleCheckIn, "checkins"), "checkins"))
	mux.HandleFunc("POST /promotions", MetricsMiddleware(s.rateLimit(s.handlePromotion, "promotions"), "promotions"))
	mux.HandleFunc("GET /sessions/{id}/attendance", MetricsMiddleware(s.handleAttendance, "attendance"))
	mux.HandleFunc("GET /schedule", MetricsMiddleware(s.handleSchedule, "schedule"))

	mux.HandleFunc("GET /teams", MetricsMiddleware(s.handleTeams, "teams"))
	mux.HandleFunc("POST /teams", MetricsMiddleware(s.rateLimit(s.handleCreateTeam, "teams_create"), "teams_create"))
	mux.HandleFunc("POST /teams/join", MetricsMiddleware(s.rateLimit(s.handleJoinTeam, "teams_join"), "teams_join"))
	mux.HandleFunc("GET /teams/{id}/feed", MetricsMiddleware(s.handleFeed, "feed"))
	mux.HandleFunc("GET /teams/{id}/chat", MetricsMiddleware(s.handleChat, "chat"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service kinds into status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, service.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", Wrap(op, err))
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusGatewayTimeout, "timeout", Wrap(op, err))
	default:
		s.logger.Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
