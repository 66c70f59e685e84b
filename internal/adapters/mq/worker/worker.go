package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/jitsu/internal/adapters/repository"
	"github.com/okian/jitsu/internal/domain/belt"
	"github.com/okian/jitsu/internal/domain/model"
	"github.com/okian/jitsu/pkg/logger"
	"github.com/okian/jitsu/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Sentinel kinds for worker errors.
var (
	ErrUnknownKind = errors.New("unknown event kind")
)

// Event abstracts what workers read off the queue.
type Event = model.Event

// Promoter changes a member's grade and returns the previous one.
type Promoter interface {
	Promote(ctx context.Context, memberID string, g belt.Grade) (belt.Grade, error)
}

// AttendanceRecorder stores check-ins.
type AttendanceRecorder interface {
	Record(ctx context.Context, a model.Attendance) (bool, error)
}

// HistoryAppender stores graduation records.
type HistoryAppender interface {
	Append(ctx context.Context, rec model.GraduationRecord) error
}

// Stores groups the write targets of a worker.
type Stores struct {
	Roster     Promoter
	Attendance AttendanceRecorder
	History    HistoryAppender
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue() <-chan Event
}

// Worker processes events until the queue closes.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue is drained.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue  Queue
	stores Stores
	name   string
	now    func() time.Time

	processed *atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker reading from q and writing to stores.
func NewInMemoryWorker(q Queue, stores Stores, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		stores:    stores,
		name:      "worker",
		now:       time.Now,
		processed: new(atomic.Int64),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run implements Worker.Run.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.Apply(ctx, event); err != nil {
				w.logger.Warn(ctx, "event not applied",
					logger.String("event_id", event.EventID),
					logger.String("kind", string(event.Kind)),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown implements Worker.Shutdown.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Apply processes a single event synchronously.
func (w *InMemoryWorker) Apply(ctx context.Context, e Event) error { //nolint:gocritic // hugeParam: events travel by value
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	var err error
	switch e.Kind {
	case model.EventCheckIn:
		err = w.checkIn(ctx, e)
	case model.EventPromotion:
		err = w.promote(ctx, e)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	if err != nil {
		metrics.RecordWorkerError()
		return err
	}
	w.processed.Add(1)
	return nil
}

func (w *InMemoryWorker) checkIn(ctx context.Context, e Event) error { //nolint:gocritic // hugeParam
	status := e.Status
	if status == "" {
		status = model.AttendancePresent
	}
	replaced, err := w.stores.Attendance.Record(ctx, model.Attendance{
		ID:          e.EventID,
		SessionID:   e.SessionID,
		MemberID:    e.MemberID,
		CheckedInAt: e.TS,
		Status:      status,
		VerifiedBy:  e.VerifiedBy,
		Visitor:     e.Visitor,
	})
	if err != nil {
		metrics.RecordErrorByComponent("worker", "attendance_error")
		return fmt.Errorf("record check-in %s: %w", e.EventID, err)
	}
	metrics.RecordCheckInProcessed()
	w.logger.Debug(ctx, "check-in recorded",
		logger.String("session_id", e.SessionID),
		logger.String("member_id", e.MemberID),
		logger.String("status", string(status)),
		logger.Bool("replaced", replaced),
	)
	return nil
}

func (w *InMemoryWorker) promote(ctx context.Context, e Event) error { //nolint:gocritic // hugeParam
	prev, err := w.stores.Roster.Promote(ctx, e.MemberID, e.Grade)
	if err != nil {
		metrics.RecordPromotionRejected(rejectReason(err))
		return fmt.Errorf("promote %s: %w", e.MemberID, err)
	}
	metrics.RecordPromotionApplied(e.Grade.Rank.String())

	rec := model.GraduationRecord{
		ID:         e.EventID,
		MemberID:   e.MemberID,
		TeamID:     e.TeamID,
		OldGrade:   prev,
		NewGrade:   e.Grade,
		PromotedBy: e.Grade.AwardedBy,
		PromotedAt: w.now(),
		Notes:      e.Notes,
	}
	if err := w.stores.History.Append(ctx, rec); err != nil {
		metrics.RecordErrorByComponent("worker", "history_error")
		return fmt.Errorf("append history for %s: %w", e.MemberID, err)
	}
	w.logger.Info(ctx, "member promoted",
		logger.String("member_id", e.MemberID),
		logger.String("from", prev.Rank.DisplayName()),
		logger.String("to", e.Grade.Rank.DisplayName()),
		logger.Int("stripes", e.Grade.Stripes),
	)
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	case errors.Is(err, repository.ErrNotHigher):
		return "not_higher"
	case errors.Is(err, belt.ErrInvalidRank):
		return "invalid_rank"
	case errors.Is(err, repository.ErrInvalidGrade):
		return "invalid_grade"
	default:
		return "error"
	}
}

// Pool manages multiple workers on one queue.
type Pool struct {
	workers   []*InMemoryWorker
	queue     Queue
	processed *atomic.Int64
	logger    logger.Logger
}

// NewPool creates workerCount workers sharing q and stores. A count below
// one means one worker per CPU.
func NewPool(workerCount int, q Queue, stores Stores, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	probe := &InMemoryWorker{logger: logger.Default()}
	for _, opt := range opts {
		opt(probe)
	}

	p := &Pool{
		workers:   make([]*InMemoryWorker, workerCount),
		queue:     q,
		processed: new(atomic.Int64),
		logger:    probe.logger.Named("worker-pool"),
	}
	for i := range workerCount {
		w := NewInMemoryWorker(q, stores, append(opts, WithName("worker-"+strconv.Itoa(i)))...)
		w.processed = p.processed
		p.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "workers started", logger.Int("count", len(p.workers)))
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns how many events the pool applied successfully.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Shutdown closes the queue and waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
