package verify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jitsu/internal/adapters/repository"
	service "github.com/okian/jitsu/internal/app"
	"github.com/okian/jitsu/internal/domain/belt"
	"github.com/okian/jitsu/internal/domain/model"
	"github.com/okian/jitsu/pkg/logger"
)

// Default smoke settings.
const (
	DefaultTimeout  = 10 * time.Second
	DefaultMembers  = 10
	DefaultSettle   = 5 * time.Second
	pollInterval    = 50 * time.Millisecond
	defaultBaseURL  = "http://localhost:9080"
	checkInEndpoint = "/checkins"
)

// Config controls a smoke run against a live server.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Workers int
	// Members is how many roster members are checked in.
	Members int
	// SessionID is the class to check into. The first upcoming class is used when empty.
	SessionID string
	// Settle bounds how long attendance may take to reflect the check-ins.
	Settle time.Duration
	Logger logger.Logger
}

func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Members <= 0 {
		c.Members = DefaultMembers
	}
	if c.Settle <= 0 {
		c.Settle = DefaultSettle
	}
	if c.Logger == nil {
		c.Logger = logger.Default()
	}
}

// Smoke drives the HTTP API end to end. It stops at the first check whose
// result later checks depend on; the returned error is non-nil only then.
func Smoke(ctx context.Context, cfg Config) (Report, error) {
	cfg.defaults()
	log := cfg.Logger.Named("verify")
	c := newClient(cfg.BaseURL, cfg.Timeout)
	var r Report

	log.Info(ctx, "starting smoke run", logger.String("baseURL", cfg.BaseURL), logger.Int("workers", cfg.Workers))

	if err := c.get(ctx, "/healthz", http.StatusOK, nil); err != nil {
		r.fail("service health", err)
		return r, err
	}
	r.pass("service health", "")

	var belts []service.BeltView
	if err := c.get(ctx, "/belts", http.StatusOK, &belts); err != nil {
		r.fail("belt ladder", err)
	} else {
		r.add("belt ladder", ladderOrdered(belts), fmt.Sprintf("%d belts", len(belts)))
	}

	var entries []repository.Entry
	if err := c.get(ctx, fmt.Sprintf("/roster?limit=%d", cfg.Members), http.StatusOK, &entries); err != nil {
		r.fail("roster order", err)
		return r, err
	}
	if len(entries) == 0 {
		err := errors.New("roster is empty")
		r.fail("roster order", err)
		return r, err
	}
	r.add("roster order", rosterOrdered(entries), fmt.Sprintf("%d members, leader %s", len(entries), entries[0].Member.Name))

	leader := entries[0].Member
	var view service.MemberView
	if err := c.get(ctx, "/members/"+url.PathEscape(leader.ID), http.StatusOK, &view); err != nil {
		r.fail("member lookup", err)
	} else {
		r.add("member lookup", view.Position == 1 && view.Member.ID == leader.ID, fmt.Sprintf("position %d", view.Position))
	}

	sessionID := cfg.SessionID
	if sessionID == "" {
		var sched service.ScheduleView
		if err := c.get(ctx, "/schedule", http.StatusOK, &sched); err != nil {
			r.fail("schedule", err)
			return r, err
		}
		if len(sched.Upcoming) == 0 {
			err := errors.New("no upcoming sessions")
			r.fail("schedule", err)
			return r, err
		}
		sessionID = sched.Upcoming[0].ID
		r.pass("schedule", fmt.Sprintf("%d upcoming, using %s", len(sched.Upcoming), sessionID))
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.Member.ID
	}
	accepted, failed := submitCheckIns(ctx, c, sessionID, ids, cfg.Workers)
	r.add("check-ins accepted", failed == 0, fmt.Sprintf("%d accepted, %d failed", accepted, failed))

	r.add("duplicate check-in acknowledged", duplicateAcked(ctx, c, sessionID, ids[0]), "")

	present, err := awaitAttendance(ctx, c, sessionID, ids, cfg.Settle)
	if err != nil {
		r.fail("attendance recorded", err)
	} else {
		r.add("attendance recorded", present == len(ids), fmt.Sprintf("%d of %d present", present, len(ids)))
	}

	status, err := c.post(ctx, "/promotions", map[string]any{
		"event_id":  uuid.NewString(),
		"member_id": leader.ID,
		"rank":      belt.White.String(),
	}, nil)
	if err != nil {
		r.fail("demotion rejected", err)
	} else {
		r.add("demotion rejected", status == http.StatusConflict, fmt.Sprintf("status %d", status))
	}

	status, err = c.post(ctx, checkInEndpoint, map[string]any{"member_id": "", "session_id": sessionID}, nil)
	if err != nil {
		r.fail("invalid check-in rejected", err)
	} else {
		r.add("invalid check-in rejected", status == http.StatusBadRequest, fmt.Sprintf("status %d", status))
	}

	log.Info(ctx, "smoke run finished", logger.Int("checks", len(r.Checks)), logger.Int("failed", r.Failed()))
	return r, nil
}

func ladderOrdered(belts []service.BeltView) bool {
	if len(belts) != len(belt.All()) {
		return false
	}
	for i, b := range belts {
		if b.Index != i || b.Rank != belt.Rank(i) {
			return false
		}
	}
	return true
}

func rosterOrdered(entries []repository.Entry) bool {
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if belt.CompareByRankDescending(prev.Member, cur.Member) > 0 {
			return false
		}
		if cur.Position < prev.Position || cur.Place != prev.Place+1 {
			return false
		}
	}
	return true
}

// submitCheckIns posts one check-in per member from a pool of workers.
func submitCheckIns(ctx context.Context, c *client, sessionID string, memberIDs []string, workers int) (accepted, failed int64) {
	jobs := make(chan string)
	var (
		ok, bad int64
		wg      sync.WaitGroup
	)
	for range min(workers, len(memberIDs)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				var ack service.Ack
				status, err := c.post(ctx, checkInEndpoint, map[string]any{
					"event_id":   uuid.NewString(),
					"member_id":  id,
					"session_id": sessionID,
				}, &ack)
				if err != nil || status != http.StatusAccepted {
					atomic.AddInt64(&bad, 1)
					continue
				}
				atomic.AddInt64(&ok, 1)
			}
		}()
	}
feed:
	for _, id := range memberIDs {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- id:
		}
	}
	close(jobs)
	wg.Wait()
	return ok, bad
}

// duplicateAcked replays one event id and expects the second answer to be a duplicate.
func duplicateAcked(ctx context.Context, c *client, sessionID, memberID string) bool {
	body := map[string]any{"event_id": uuid.NewString(), "member_id": memberID, "session_id": sessionID}
	first, err := c.post(ctx, checkInEndpoint, body, nil)
	if err != nil || first != http.StatusAccepted {
		return false
	}
	var ack service.Ack
	second, err := c.post(ctx, checkInEndpoint, body, &ack)
	return err == nil && second == http.StatusOK && ack.Duplicate
}

// awaitAttendance polls the session sheet until every member is PRESENT or
// settle elapses, and returns how many were present at the last poll.
func awaitAttendance(ctx context.Context, c *client, sessionID string, memberIDs []string, settle time.Duration) (int, error) {
	want := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		want[id] = true
	}
	deadline := time.Now().Add(settle)
	for {
		var view service.AttendanceView
		if err := c.get(ctx, "/sessions/"+url.PathEscape(sessionID)+"/attendance", http.StatusOK, &view); err != nil {
			return 0, err
		}
		present := 0
		for _, row := range view.Rows {
			if want[row.ID] && row.Status == model.AttendancePresent {
				present++
			}
		}
		if present == len(want) || time.Now().After(deadline) {
			return present, nil
		}
		select {
		case <-ctx.Done():
			return present, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
