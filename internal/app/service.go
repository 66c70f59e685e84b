// Package service wires the stores, queue, workers and catalog behind the
// academy HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/jitsu/internal/adapters/catalog"
	eventqueue "github.com/okian/jitsu/internal/adapters/mq/queue"
	workerpool "github.com/okian/jitsu/internal/adapters/mq/worker"
	"github.com/okian/jitsu/internal/adapters/repository"
	"github.com/okian/jitsu/internal/domain/dedupe"
	"github.com/okian/jitsu/internal/domain/model"
	"github.com/okian/jitsu/internal/fixtures"
	"github.com/okian/jitsu/pkg/logger"
	"github.com/okian/jitsu/pkg/metrics"
)

const (
	stopTimeout     = 30 * time.Second
	runtimeInterval = 15 * time.Second
)

// Service implements the API dependencies for the academy.
type Service struct {
	mu sync.RWMutex

	// Core components
	roster     *repository.TreapStore
	attendance *repository.MemoryAttendanceStore
	history    *repository.MemoryHistoryStore
	deduper    dedupe.Deduper
	eventQueue *eventqueue.InMemoryQueue
	workerPool *workerpool.Pool
	catalog    catalog.Service

	// Reference data, read-only after Start
	schedule []model.ScheduleItem
	sessions map[string]model.Session

	// Configuration
	workerCount    int
	queueSize      int
	dedupeSize     int
	classCapacity  int
	catalogLatency time.Duration
	location       *time.Location
	seed           *fixtures.Seed
	now            func() time.Time

	// State
	started bool
	cancel  context.CancelFunc
	stopCh  chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithClassCapacity sets how many attendees fill a class. Zero disables the limit.
func WithClassCapacity(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.classCapacity = n
		}
	}
}

// WithCatalogLatency sets the simulated delay of the team catalog.
func WithCatalogLatency(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.catalogLatency = d
		}
	}
}

// WithLocation sets the academy time zone used for class dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithSeed sets the data loaded on Start. The embedded seed is used otherwise.
func WithSeed(seed *fixtures.Seed) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU(),
		queueSize:      10_000,
		dedupeSize:     50_000,
		classCapacity:  30,
		catalogLatency: 300 * time.Millisecond,
		location:       time.UTC,
		now:            time.Now,
		stopCh:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the components, loads the seed and starts the workers.
// Workers outlive ctx; they stop on Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	base := s.logger
	if base == nil {
		base = logger.Default()
	}
	s.logger = base.Named("service")
	s.logger.Info(ctx, "starting academy service...")

	seed := s.seed
	if seed == nil {
		var err error
		if seed, err = fixtures.Default(); err != nil {
			return fmt.Errorf("load seed: %w", err)
		}
	}
	if err := seed.Validate(s.now()); err != nil {
		return fmt.Errorf("validate seed: %w", err)
	}

	// Stores are assigned only once the seed has loaded.
	roster := repository.NewTreapStore(repository.WithClock(s.now))
	attendance := repository.NewAttendanceStore()
	history := repository.NewHistoryStore()
	if err := load(ctx, seed, roster, attendance, history); err != nil {
		return err
	}
	s.roster, s.attendance, s.history = roster, attendance, history
	s.schedule = seed.Schedule
	s.sessions = make(map[string]model.Session, len(seed.Sessions))
	for _, ss := range seed.Sessions {
		s.sessions[ss.ID] = ss
	}

	s.catalog = catalog.NewMock(
		catalog.WithLatency(s.catalogLatency),
		catalog.WithTeams(seed.Teams),
		catalog.WithFeed(seed.Feed),
		catalog.WithChat(seed.Chat),
		catalog.WithLogger(base),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.eventQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue,
		workerpool.Stores{Roster: s.roster, Attendance: s.attendance, History: s.history},
		workerpool.WithLogger(base),
		workerpool.WithClock(s.now),
	)
	s.workerPool.Start(runCtx)

	s.stopCh = make(chan struct{})
	go s.collectRuntime(s.stopCh)

	s.started = true
	s.logger.Info(ctx, "academy service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("members", s.roster.Count(ctx)),
		logger.String("timezone", s.location.String()),
	)
	return nil
}

func load(ctx context.Context, seed *fixtures.Seed, roster *repository.TreapStore,
	attendance *repository.MemoryAttendanceStore, history *repository.MemoryHistoryStore,
) error {
	for _, m := range seed.Members {
		if err := roster.Upsert(ctx, m); err != nil {
			return fmt.Errorf("seed member %s: %w", m.ID, err)
		}
	}
	for _, rec := range seed.History {
		if err := history.Append(ctx, rec); err != nil {
			return fmt.Errorf("seed history %s: %w", rec.ID, err)
		}
	}
	for _, a := range seed.Attendance {
		if _, err := attendance.Record(ctx, a); err != nil {
			return fmt.Errorf("seed attendance %s: %w", a.ID, err)
		}
	}
	return nil
}

func (s *Service) collectRuntime(stop <-chan struct{}) {
	metrics.CollectRuntime()
	t := time.NewTicker(runtimeInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			metrics.CollectRuntime()
		}
	}
}

// Stop drains the queue and shuts the workers down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping academy service...")
	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "worker pool shutdown", logger.Error(err))
	}
	s.cancel()
	close(s.stopCh)

	s.started = false
	s.logger.Info(ctx, "academy service stopped",
		logger.Int64("processed", s.workerPool.Processed()),
	)
}

// running returns ErrNotStarted until Start succeeds.
func (s *Service) running() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"classCapacity": s.classCapacity,
		"timezone":      s.location.String(),
	}

	if s.roster != nil {
		stats["totalMembers"] = s.roster.Count(ctx)
	}
	if s.deduper != nil {
		stats["dedupeEntries"] = s.deduper.Size()
	}
	if s.started {
		queueLen := s.eventQueue.Len()
		stats["queueLength"] = queueLen
		stats["processed"] = s.workerPool.Processed()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateQueueCapacity(s.queueSize)
	}
	return stats
}
