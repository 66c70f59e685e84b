package catalog

import (
	"time"

	"github.com/okian/jitsu/internal/domain/model"
	"github.com/okian/jitsu/pkg/logger"
)

// Option applies a configuration option to the Mock catalog.
type Option func(*Mock)

// WithLatency sets the simulated backend delay applied to every call.
func WithLatency(d time.Duration) Option {
	return func(m *Mock) {
		if d >= 0 {
			m.latency = d
		}
	}
}

// WithTeams seeds the teams the viewer belongs to.
func WithTeams(teams []model.Team) Option {
	return func(m *Mock) {
		m.teams = append(m.teams, teams...)
	}
}

// WithFeed seeds team wall posts.
func WithFeed(posts []model.FeedPost) Option {
	return func(m *Mock) {
		m.feed = append(m.feed, posts...)
	}
}

// WithChat seeds team chat messages.
func WithChat(msgs []model.ChatMessage) Option {
	return func(m *Mock) {
		m.chat = append(m.chat, msgs...)
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Mock) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithIDGenerator overrides uuid generation. Tests use it for stable ids.
func WithIDGenerator(fn func() string) Option {
	return func(m *Mock) {
		if fn != nil {
			m.newID = fn
		}
	}
}
