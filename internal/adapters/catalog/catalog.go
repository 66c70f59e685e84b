// Package catalog serves teams, the community feed and chat from memory with
// a simulated backend delay.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jitsu/internal/domain/model"
	"github.com/okian/jitsu/pkg/logger"
	"github.com/okian/jitsu/pkg/metrics"
)

const (
	defaultLatency  = 300 * time.Millisecond
	acronymLen      = 3
	minTeamCodeLen  = 3
	joinedTeamSize  = 42
	joinedTeamLogo  = "https://ui-avatars.com/api/?name=New+Team&background=random"
	createdTeamSize = 1
)

// Service is the team and community backend.
type Service interface {
	Teams(ctx context.Context) ([]model.Team, error)
	Team(ctx context.Context, id string) (model.Team, error)
	CreateTeam(ctx context.Context, in CreateTeamInput) (model.Team, error)
	JoinTeam(ctx context.Context, code string) (model.Team, error)
	Feed(ctx context.Context, teamID string) ([]model.FeedPost, error)
	Chat(ctx context.Context, teamID string) ([]model.ChatMessage, error)
}

// CreateTeamInput describes a new team.
type CreateTeamInput struct {
	Name    string
	LogoURL string
	// Acronym defaults to the first three letters of Name, upper-cased.
	Acronym string
}

// Mock is the in-memory Service.
type Mock struct {
	mu      sync.RWMutex
	teams   []model.Team
	feed    []model.FeedPost
	chat    []model.ChatMessage
	latency time.Duration
	newID   func() string
	logger  logger.Logger
}

// NewMock constructs the catalog.
func NewMock(opts ...Option) *Mock {
	m := &Mock{
		latency: defaultLatency,
		newID:   uuid.NewString,
		logger:  logger.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named("catalog")
	return m
}

// wait simulates the network round trip, honoring cancellation.
func (m *Mock) wait(ctx context.Context, op string) error {
	start := time.Now()
	defer func() {
		metrics.RecordCatalogLatency(op, float64(time.Since(start).Milliseconds()))
	}()

	if m.latency == 0 {
		return ctx.Err()
	}
	t := time.NewTimer(m.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		metrics.RecordErrorByComponent("catalog", "context_cancelled")
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Teams returns the viewer's teams in insertion order.
func (m *Mock) Teams(ctx context.Context) ([]model.Team, error) {
	if err := m.wait(ctx, "teams"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.teams), nil
}

// Team looks a team up by id.
func (m *Mock) Team(ctx context.Context, id string) (model.Team, error) {
	if err := m.wait(ctx, "team"); err != nil {
		return model.Team{}, err
	}
	return m.find(id)
}

func (m *Mock) find(id string) (model.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.teams {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Team{}, fmt.Errorf("%w: %s", ErrTeamNotFound, id)
}

func firstUpper(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) > n {
		r = r[:n]
	}
	return strings.ToUpper(string(r))
}

// CreateTeam registers a team owned by the viewer.
func (m *Mock) CreateTeam(ctx context.Context, in CreateTeamInput) (model.Team, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Team{}, ErrInvalidTeamName
	}
	if err := m.wait(ctx, "create_team"); err != nil {
		return model.Team{}, err
	}

	acronym := strings.TrimSpace(in.Acronym)
	if acronym == "" {
		acronym = firstUpper(name, acronymLen)
	}
	t := model.Team{
		ID:           m.newID(),
		Name:         name,
		Acronym:      acronym,
		Role:         model.TeamOwner,
		LogoURL:      in.LogoURL,
		MembersCount: createdTeamSize,
	}

	m.mu.Lock()
	m.teams = append(m.teams, t)
	m.mu.Unlock()

	m.logger.Info(ctx, "team created", logger.String("team_id", t.ID), logger.String("acronym", t.Acronym))
	return t, nil
}

// JoinTeam joins a team by invite code. Codes shorter than three characters
// are rejected with ErrInvalidTeamCode.
func (m *Mock) JoinTeam(ctx context.Context, code string) (model.Team, error) {
	code = strings.TrimSpace(code)
	if len([]rune(code)) < minTeamCodeLen {
		return model.Team{}, fmt.Errorf("%w: %q", ErrInvalidTeamCode, code)
	}
	if err := m.wait(ctx, "join_team"); err != nil {
		return model.Team{}, err
	}

	t := model.Team{
		ID:           m.newID(),
		Name:         "Team " + strings.ToUpper(code),
		Acronym:      firstUpper(code, acronymLen),
		Role:         model.TeamStudent,
		LogoURL:      joinedTeamLogo,
		MembersCount: joinedTeamSize,
	}

	m.mu.Lock()
	m.teams = append(m.teams, t)
	m.mu.Unlock()

	m.logger.Info(ctx, "team joined", logger.String("team_id", t.ID), logger.String("code", code))
	return t, nil
}

// Feed returns a team's wall: pinned posts first, then newest first.
func (m *Mock) Feed(ctx context.Context, teamID string) ([]model.FeedPost, error) {
	if err := m.wait(ctx, "feed"); err != nil {
		return nil, err
	}
	if _, err := m.find(teamID); err != nil {
		return nil, err
	}

	m.mu.RLock()
	out := []model.FeedPost{}
	for _, p := range m.feed {
		if p.TeamID == teamID {
			out = append(out, p)
		}
	}
	m.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b model.FeedPost) int {
		if a.Pinned != b.Pinned {
			if a.Pinned {
				return -1
			}
			return 1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// Chat returns a team's messages, oldest first.
func (m *Mock) Chat(ctx context.Context, teamID string) ([]model.ChatMessage, error) {
	if err := m.wait(ctx, "chat"); err != nil {
		return nil, err
	}
	if _, err := m.find(teamID); err != nil {
		return nil, err
	}

	m.mu.RLock()
	out := []model.ChatMessage{}
	for _, c := range m.chat {
		if c.TeamID == teamID {
			out = append(out, c)
		}
	}
	m.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b model.ChatMessage) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}
