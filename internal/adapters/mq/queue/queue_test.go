package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/jitsu/internal/domain/model"
)

func checkIn(id string) model.Event {
	return model.Event{EventID: id, Kind: model.EventCheckIn, MemberID: "m1", SessionID: "s1", Status: model.AttendancePresent}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Enqueue(ctx, checkIn("e1")); err != nil {
		t.Fatalf("expected enqueue to succeed: %v", err)
	}
	if l := q.Len(); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	event := <-q.Dequeue()
	if event.EventID != "e1" || event.Kind != model.EventCheckIn {
		t.Errorf("unexpected event %+v", event)
	}
	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for i := range 2 {
		if err := q.Enqueue(ctx, checkIn(fmt.Sprintf("e%d", i))); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if err := q.Enqueue(ctx, checkIn("overflow")); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()
	_ = q.Enqueue(ctx, checkIn("before"))

	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected closed queue")
	}
	if err := q.Enqueue(ctx, checkIn("after")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	var drained []string
	for e := range q.Dequeue() {
		drained = append(drained, e.EventID)
	}
	if len(drained) != 1 || drained[0] != "before" {
		t.Errorf("expected buffered event to drain, got %v", drained)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, checkIn("e1")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if q.Len() != 0 {
		t.Error("cancelled enqueue must not buffer")
	}
}

func TestInMemoryQueue_ConcurrentProducers(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1000))
	ctx := context.Background()

	var wg sync.WaitGroup
	for p := range 10 {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := range 100 {
				_ = q.Enqueue(ctx, checkIn(fmt.Sprintf("p%d-%d", p, i)))
			}
		}(p)
	}
	wg.Wait()
	_ = q.Close()

	seen := map[string]bool{}
	for e := range q.Dequeue() {
		if seen[e.EventID] {
			t.Fatalf("duplicate delivery of %s", e.EventID)
		}
		seen[e.EventID] = true
	}
	if len(seen) != 1000 {
		t.Errorf("expected 1000 events, got %d", len(seen))
	}
}
