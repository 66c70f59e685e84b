package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jitsu/internal/adapters/catalog"
	"github.com/okian/jitsu/internal/adapters/repository"
	"github.com/okian/jitsu/internal/domain/belt"
	"github.com/okian/jitsu/internal/domain/model"
	"github.com/okian/jitsu/internal/domain/roster"
	"github.com/okian/jitsu/internal/domain/schedule"
	"github.com/okian/jitsu/pkg/logger"
	"github.com/okian/jitsu/pkg/metrics"
)

// upcomingWindow is how far ahead Schedule expands class slots.
const upcomingWindow = 7 * 24 * time.Hour

// BeltView describes one rung of the ladder and how many members hold it.
type BeltView struct {
	Rank    belt.Rank  `json:"id"`
	Name    string     `json:"name"`
	Index   int        `json:"index"`
	Next    *belt.Rank `json:"next,omitempty"`
	Members int        `json:"members"`
}

// MemberView is a member with their standing, promotion hint and history.
type MemberView struct {
	repository.Entry
	Hint    roster.PromotionHint     `json:"hint"`
	History []model.GraduationRecord `json:"history"`
}

// CheckIn is a request to mark a member's attendance.
type CheckIn struct {
	EventID    string
	MemberID   string
	SessionID  string
	Status     string
	VerifiedBy string
	Visitor    bool
	TS         time.Time
}

// Promotion is a request to award a member a new grade.
type Promotion struct {
	EventID   string
	MemberID  string
	Rank      string
	Stripes   int
	AwardedBy string
	Notes     string
}

// Ack reports the outcome of an asynchronous write.
type Ack struct {
	EventID   string `json:"event_id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// AttendanceView is the check-in sheet of one session.
type AttendanceView struct {
	Session  model.Session            `json:"session"`
	Rows     []roster.AttendanceRow   `json:"rows"`
	Tally    roster.Tally             `json:"tally"`
	Statuses []model.AttendanceStatus `json:"statuses"`
}

// ScheduleView is the weekly timetable plus the sessions of the coming week.
type ScheduleView struct {
	Days     []schedule.DayGroup `json:"days"`
	Upcoming []model.Session     `json:"upcoming"`
}

// Belts lists the ladder lowest first with member counts.
func (s *Service) Belts(ctx context.Context) ([]BeltView, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	counts := make(map[belt.Rank]int)
	for _, m := range s.roster.Members(ctx) {
		counts[m.Grade.Rank]++
	}

	ranks := belt.All()
	out := make([]BeltView, 0, len(ranks))
	for i, r := range ranks {
		v := BeltView{Rank: r, Name: r.DisplayName(), Index: i, Members: counts[r]}
		if next, ok, _ := belt.Next(r); ok {
			v.Next = &next
		}
		out = append(out, v)
	}
	return out, nil
}

// TopN returns the first n roster entries, highest belt first.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	entries, err := s.roster.TopN(ctx, n)
	if errors.Is(err, repository.ErrInvalidLimit) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return entries, err
}

// Sections groups the roster into instructor and belt blocks. An empty teamID
// covers every team.
func (s *Service) Sections(ctx context.Context, teamID string) ([]roster.Section, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	sections, err := roster.Sections(s.teamMembers(ctx, teamID))
	if err != nil {
		metrics.RecordRankComparisonError()
		return nil, err
	}
	return sections, nil
}

func (s *Service) teamMembers(ctx context.Context, teamID string) []model.Member {
	all := s.roster.Members(ctx)
	if teamID == "" {
		return all
	}
	out := make([]model.Member, 0, len(all))
	for _, m := range all {
		if m.TeamID == teamID {
			out = append(out, m)
		}
	}
	return out
}

// Member returns a member's standing, hint and promotion history.
func (s *Service) Member(ctx context.Context, id string) (MemberView, error) {
	if err := s.running(); err != nil {
		return MemberView{}, err
	}
	entry, err := s.member(ctx, id)
	if err != nil {
		return MemberView{}, err
	}
	hint, err := roster.Hint(entry.Member, s.now())
	if err != nil {
		return MemberView{}, err
	}
	return MemberView{
		Entry:   entry,
		Hint:    hint,
		History: s.history.List(ctx, id),
	}, nil
}

func (s *Service) member(ctx context.Context, id string) (repository.Entry, error) {
	entry, err := s.roster.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Entry{}, fmt.Errorf("%w: member %q", ErrNotFound, id)
	}
	return entry, err
}

// SubmitCheckIn validates a check-in and queues it. Members checking into
// another team's session are marked as visitors.
func (s *Service) SubmitCheckIn(ctx context.Context, in CheckIn) (Ack, error) {
	if err := s.running(); err != nil {
		return Ack{}, err
	}
	entry, err := s.member(ctx, in.MemberID)
	if err != nil {
		return Ack{}, err
	}
	session, err := s.resolveSession(in.SessionID)
	if err != nil {
		return Ack{}, err
	}
	status := model.AttendancePresent
	if in.Status != "" {
		if status, err = model.ParseAttendanceStatus(in.Status); err != nil {
			return Ack{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
	}
	ts := in.TS
	if ts.IsZero() {
		ts = s.now()
	}

	return s.submit(ctx, model.Event{
		EventID:    in.EventID,
		Kind:       model.EventCheckIn,
		MemberID:   entry.Member.ID,
		TeamID:     session.TeamID,
		TS:         ts,
		SessionID:  session.ID,
		Status:     status,
		Visitor:    in.Visitor || entry.Member.TeamID != session.TeamID,
		VerifiedBy: in.VerifiedBy,
	})
}

// SubmitPromotion validates a promotion against the member's current grade
// and queues it. Workers re-check the grade when applying.
func (s *Service) SubmitPromotion(ctx context.Context, in Promotion) (Ack, error) {
	if err := s.running(); err != nil {
		return Ack{}, err
	}
	entry, err := s.member(ctx, in.MemberID)
	if err != nil {
		return Ack{}, err
	}
	rank, err := belt.Parse(in.Rank)
	if err != nil {
		return Ack{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	now := s.now()
	grade := belt.Grade{Rank: rank, Stripes: in.Stripes, AwardedAt: now, AwardedBy: in.AwardedBy}
	if err := grade.Validate(now); err != nil {
		return Ack{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if current := entry.Member.Grade; !grade.Outranks(current) {
		metrics.RecordPromotionRejected("not_higher")
		return Ack{}, fmt.Errorf("%w: %s has %s with %d stripes", ErrConflict,
			entry.Member.Name, current.Rank.DisplayName(), current.Stripes)
	}

	return s.submit(ctx, model.Event{
		EventID:  in.EventID,
		Kind:     model.EventPromotion,
		MemberID: entry.Member.ID,
		TeamID:   entry.Member.TeamID,
		TS:       now,
		Grade:    grade,
		Notes:    in.Notes,
	})
}

// submit deduplicates by event id and enqueues. The id is forgotten again when
// the queue refuses the event so the client can retry.
func (s *Service) submit(ctx context.Context, e model.Event) (Ack, error) { //nolint:gocritic // hugeParam: events travel by value
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if s.deduper.SeenAndRecord(ctx, e.EventID) {
		if e.Kind == model.EventCheckIn {
			metrics.RecordCheckInDuplicate()
		} else {
			metrics.RecordPromotionRejected("duplicate")
		}
		s.logger.Debug(ctx, "duplicate event", logger.String("event_id", e.EventID))
		return Ack{EventID: e.EventID, Status: "duplicate", Duplicate: true}, nil
	}

	if err := s.eventQueue.Enqueue(ctx, e); err != nil {
		s.deduper.Unrecord(ctx, e.EventID)
		s.logger.Warn(ctx, "event rejected by queue",
			logger.String("event_id", e.EventID),
			logger.String("kind", string(e.Kind)),
			logger.Error(err),
		)
		return Ack{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
	}
	return Ack{EventID: e.EventID, Status: "accepted"}, nil
}

// resolveSession finds a seeded session or derives one from a class id and
// date, e.g. "c4-2026-10-26".
func (s *Service) resolveSession(id string) (model.Session, error) {
	if ss, ok := s.sessions[id]; ok {
		return ss, nil
	}
	notFound := fmt.Errorf("%w: session %q", ErrNotFound, id)

	n := len(id) - len(time.DateOnly)
	if n < 2 || id[n-1] != '-' {
		return model.Session{}, notFound
	}
	day, err := time.ParseInLocation(time.DateOnly, id[n:], s.location)
	if err != nil {
		return model.Session{}, notFound
	}
	i := slices.IndexFunc(s.schedule, func(it model.ScheduleItem) bool { return it.ID == id[:n-1] })
	if i < 0 {
		return model.Session{}, notFound
	}
	generated, err := schedule.Sessions(s.schedule[i], day, day.AddDate(0, 0, 1), s.location)
	if err != nil {
		return model.Session{}, err
	}
	if len(generated) != 1 {
		return model.Session{}, notFound
	}
	return generated[0], nil
}

// SessionAttendance builds the check-in sheet of a session. Rows cover the
// session's team plus any visitor with a record. An empty status keeps every
// row; the tally always covers every row.
func (s *Service) SessionAttendance(ctx context.Context, sessionID, status string) (AttendanceView, error) {
	if err := s.running(); err != nil {
		return AttendanceView{}, err
	}
	session, err := s.resolveSession(sessionID)
	if err != nil {
		return AttendanceView{}, err
	}
	var want model.AttendanceStatus
	if status != "" {
		if want, err = model.ParseAttendanceStatus(status); err != nil {
			return AttendanceView{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
	}

	records := s.attendance.List(ctx, session.ID)
	members := s.teamMembers(ctx, session.TeamID)
	for _, a := range records {
		if slices.ContainsFunc(members, func(m model.Member) bool { return m.ID == a.MemberID }) {
			continue
		}
		if e, err := s.roster.Get(ctx, a.MemberID); err == nil {
			members = append(members, e.Member)
		}
	}

	all := roster.Rows(members, records)
	rows, err := roster.Filter(all, want)
	if err != nil {
		metrics.RecordRankComparisonError()
		return AttendanceView{}, err
	}
	return AttendanceView{
		Session:  session,
		Rows:     rows,
		Tally:    roster.Count(all, s.classCapacity),
		Statuses: roster.Statuses(all),
	}, nil
}

// Schedule returns the weekly timetable of a team, or of every team when
// teamID is empty, with the sessions starting within the next week.
func (s *Service) Schedule(ctx context.Context, teamID string) (ScheduleView, error) {
	if err := s.running(); err != nil {
		return ScheduleView{}, err
	}
	items := make([]model.ScheduleItem, 0, len(s.schedule))
	for _, it := range s.schedule {
		if teamID == "" || it.TeamID == teamID {
			items = append(items, it)
		}
	}
	days, err := schedule.GroupByDay(items)
	if err != nil {
		return ScheduleView{}, err
	}

	now := s.now()
	upcoming := []model.Session{}
	for _, it := range items {
		if !it.Recurring {
			continue
		}
		generated, err := schedule.Sessions(it, now, now.Add(upcomingWindow), s.location)
		if err != nil {
			return ScheduleView{}, err
		}
		for _, g := range generated {
			if seeded, ok := s.sessions[g.ID]; ok {
				g = seeded
			}
			upcoming = append(upcoming, g)
		}
	}
	slices.SortStableFunc(upcoming, func(a, b model.Session) int {
		if c := strings.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		if c := strings.Compare(a.StartTime, b.StartTime); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})

	s.logger.Debug(ctx, "schedule built",
		logger.String("team_id", teamID),
		logger.Int("classes", len(items)),
		logger.Int("upcoming", len(upcoming)),
	)
	return ScheduleView{Days: days, Upcoming: upcoming}, nil
}

// Teams lists the viewer's teams.
func (s *Service) Teams(ctx context.Context) ([]model.Team, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	teams, err := s.catalog.Teams(ctx)
	return teams, catalogErr(err)
}

// CreateTeam registers a team owned by the viewer.
func (s *Service) CreateTeam(ctx context.Context, in catalog.CreateTeamInput) (model.Team, error) {
	if err := s.running(); err != nil {
		return model.Team{}, err
	}
	t, err := s.catalog.CreateTeam(ctx, in)
	return t, catalogErr(err)
}

// JoinTeam joins a team by invite code.
func (s *Service) JoinTeam(ctx context.Context, code string) (model.Team, error) {
	if err := s.running(); err != nil {
		return model.Team{}, err
	}
	t, err := s.catalog.JoinTeam(ctx, code)
	return t, catalogErr(err)
}

// Feed returns a team's wall.
func (s *Service) Feed(ctx context.Context, teamID string) ([]model.FeedPost, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	posts, err := s.catalog.Feed(ctx, teamID)
	return posts, catalogErr(err)
}

// Chat returns a team's messages, oldest first.
func (s *Service) Chat(ctx context.Context, teamID string) ([]model.ChatMessage, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	msgs, err := s.catalog.Chat(ctx, teamID)
	return msgs, catalogErr(err)
}

// catalogErr maps catalog sentinels onto service kinds.
func catalogErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, catalog.ErrTeamNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, catalog.ErrInvalidTeamCode), errors.Is(err, catalog.ErrInvalidTeamName):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	default:
		return err
	}
}
