package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/jitsu/internal/adapters/catalog"
	service "github.com/okian/jitsu/internal/app"
	"github.com/okian/jitsu/internal/domain/belt"
	"github.com/okian/jitsu/internal/domain/model"
	"github.com/okian/jitsu/internal/domain/roster"
	. "github.com/smartystreets/goconvey/convey"
)

func started(t *testing.T, opts ...service.Option) (*service.Service, context.Context) {
	t.Helper()
	svc := newService(opts...)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() {
		svc.Stop()
		cancel()
	})
	return svc, ctx
}

func TestServiceIntegration_Roster(t *testing.T) {
	Convey("Given a started service with the default seed", t, func() {
		svc, ctx := started(t)

		Convey("When listing the belts", func() {
			belts, err := svc.Belts(ctx)

			Convey("Then the ladder is complete and counted", func() {
				So(err, ShouldBeNil)
				So(belts, ShouldHaveLength, len(belt.All()))
				So(belts[0].Rank, ShouldEqual, belt.White)
				So(*belts[0].Next, ShouldEqual, belt.GreyWhite)
				last := belts[len(belts)-1]
				So(last.Rank, ShouldEqual, belt.Red)
				So(last.Next, ShouldBeNil)

				total := 0
				for _, b := range belts {
					total += b.Members
				}
				So(total, ShouldEqual, 20)
			})
		})

		Convey("When reading the top of the roster", func() {
			top, err := svc.TopN(ctx, 3)

			Convey("Then the highest grades lead", func() {
				So(err, ShouldBeNil)
				So(top, ShouldHaveLength, 3)
				So(top[0].Member.ID, ShouldEqual, "u27")
				So(top[0].Position, ShouldEqual, 1)
				So(top[1].Member.Grade.Rank, ShouldEqual, belt.Black)
				So(top[1].Member.Grade.Stripes, ShouldEqual, 3)
			})
		})

		Convey("When the limit is invalid", func() {
			_, err := svc.TopN(ctx, 0)

			Convey("Then ErrInvalidArgument is returned", func() {
				So(errors.Is(err, service.ErrInvalidArgument), ShouldBeTrue)
			})
		})

		Convey("When grouping a team into sections", func() {
			sections, err := svc.Sections(ctx, "t2")

			Convey("Then instructors come first, then belts highest first", func() {
				So(err, ShouldBeNil)
				So(sections[0].Kind, ShouldEqual, roster.SectionInstructors)
				So(sections[0].Members[0].ID, ShouldEqual, "u27")
				for i := 2; i < len(sections); i++ {
					higher, err := belt.IsHigher(*sections[i-1].Rank, *sections[i].Rank)
					So(err, ShouldBeNil)
					So(higher, ShouldBeTrue)
				}
			})
		})

		Convey("When reading a member", func() {
			view, err := svc.Member(ctx, "u1")

			Convey("Then standing, hint and history are included", func() {
				So(err, ShouldBeNil)
				So(view.Member.Name, ShouldEqual, "Leandro")
				So(view.Place, ShouldBeGreaterThan, 0)
				So(view.Hint.Current, ShouldEqual, belt.Blue)
				So(*view.Hint.Next, ShouldEqual, belt.Purple)
				So(view.Hint.MonthsInGrade, ShouldEqual, 6)
				So(view.Hint.StripesToNext, ShouldEqual, 3)
				So(view.History, ShouldHaveLength, 2)
				So(view.History[0].ID, ShouldEqual, "g2")
			})
		})

		Convey("When reading an unknown member", func() {
			_, err := svc.Member(ctx, "ghost")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestServiceIntegration_CheckIn(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, ctx := started(t)

		Convey("When a member checks into a seeded session", func() {
			ack, err := svc.SubmitCheckIn(ctx, service.CheckIn{
				EventID: "ci-1", MemberID: "u22", SessionID: "gb1-2026-10-19", Status: "late",
			})

			Convey("Then the check-in is accepted and applied", func() {
				So(err, ShouldBeNil)
				So(ack, ShouldResemble, service.Ack{EventID: "ci-1", Status: "accepted"})
				So(eventually(func() bool {
					v, _ := svc.SessionAttendance(ctx, "gb1-2026-10-19", "LATE")
					return len(v.Rows) == 2
				}), ShouldBeTrue)
			})

			Convey("And resubmitting the same id is a duplicate", func() {
				again, err := svc.SubmitCheckIn(ctx, service.CheckIn{
					EventID: "ci-1", MemberID: "u22", SessionID: "gb1-2026-10-19",
				})
				So(err, ShouldBeNil)
				So(again.Duplicate, ShouldBeTrue)
				So(again.Status, ShouldEqual, "duplicate")
			})
		})

		Convey("When no event id is given", func() {
			ack, err := svc.SubmitCheckIn(ctx, service.CheckIn{MemberID: "u1", SessionID: "c4-2026-10-19"})

			Convey("Then one is generated", func() {
				So(err, ShouldBeNil)
				So(ack.EventID, ShouldNotBeEmpty)
			})
		})

		Convey("When checking into a future class by its derived id", func() {
			_, err := svc.SubmitCheckIn(ctx, service.CheckIn{MemberID: "u1", SessionID: "c4-2026-10-26"})

			Convey("Then the session resolves from the weekly schedule", func() {
				So(err, ShouldBeNil)
				So(eventually(func() bool {
					v, err := svc.SessionAttendance(ctx, "c4-2026-10-26", "PRESENT")
					return err == nil && len(v.Rows) == 1 && v.Session.TeamID == "t1"
				}), ShouldBeTrue)
			})
		})

		Convey("When a member of another team checks in", func() {
			_, err := svc.SubmitCheckIn(ctx, service.CheckIn{MemberID: "u1", SessionID: "gb1-2026-10-19"})
			So(err, ShouldBeNil)

			Convey("Then they appear on the sheet as a visitor", func() {
				So(eventually(func() bool {
					v, _ := svc.SessionAttendance(ctx, "gb1-2026-10-19", "")
					for _, r := range v.Rows {
						if r.ID == "u1" && r.Attendance != nil && r.Attendance.Visitor {
							return true
						}
					}
					return false
				}), ShouldBeTrue)
			})
		})

		Convey("When the session does not exist", func() {
			_, err := svc.SubmitCheckIn(ctx, service.CheckIn{MemberID: "u1", SessionID: "c4-2026-10-20"})

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the status is unknown", func() {
			_, err := svc.SubmitCheckIn(ctx, service.CheckIn{MemberID: "u1", SessionID: "c4-2026-10-19", Status: "SICK"})

			Convey("Then ErrInvalidArgument is returned", func() {
				So(errors.Is(err, service.ErrInvalidArgument), ShouldBeTrue)
			})
		})
	})
}

func TestServiceIntegration_Promotion(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, ctx := started(t)

		Convey("When a member is promoted to the next belt", func() {
			ack, err := svc.SubmitPromotion(ctx, service.Promotion{
				EventID: "pr-1", MemberID: "u1", Rank: "purple", AwardedBy: "u2", Notes: "earned",
			})

			Convey("Then the roster and history reflect it", func() {
				So(err, ShouldBeNil)
				So(ack.Status, ShouldEqual, "accepted")
				So(eventually(func() bool {
					v, _ := svc.Member(ctx, "u1")
					return v.Member.Grade.Rank == belt.Purple
				}), ShouldBeTrue)

				v, err := svc.Member(ctx, "u1")
				So(err, ShouldBeNil)
				So(v.History, ShouldHaveLength, 3)
				So(v.History[0].ID, ShouldEqual, "pr-1")
				So(v.History[0].OldGrade.Rank, ShouldEqual, belt.Blue)
				So(v.History[0].PromotedBy, ShouldEqual, "u2")
				So(v.Hint.MonthsInGrade, ShouldEqual, 0)
			})
		})

		Convey("When the new grade is not higher", func() {
			_, err := svc.SubmitPromotion(ctx, service.Promotion{MemberID: "u1", Rank: "BLUE", Stripes: 1})

			Convey("Then ErrConflict is returned", func() {
				So(errors.Is(err, service.ErrConflict), ShouldBeTrue)
			})
		})

		Convey("When the rank is unknown", func() {
			_, err := svc.SubmitPromotion(ctx, service.Promotion{MemberID: "u1", Rank: "PINK"})

			Convey("Then ErrInvalidArgument wraps the rank error", func() {
				So(errors.Is(err, service.ErrInvalidArgument), ShouldBeTrue)
				So(errors.Is(err, belt.ErrInvalidRank), ShouldBeTrue)
			})
		})

		Convey("When too many stripes are requested", func() {
			_, err := svc.SubmitPromotion(ctx, service.Promotion{MemberID: "u1", Rank: "BLUE", Stripes: 9})

			Convey("Then ErrInvalidArgument is returned", func() {
				So(errors.Is(err, service.ErrInvalidArgument), ShouldBeTrue)
				So(errors.Is(err, belt.ErrStripesOutOfRange), ShouldBeTrue)
			})
		})
	})
}

func TestServiceIntegration_Attendance(t *testing.T) {
	Convey("Given the seeded Monday fundamentals class", t, func() {
		svc, ctx := started(t, service.WithClassCapacity(2))

		Convey("When reading the whole sheet", func() {
			v, err := svc.SessionAttendance(ctx, "gb1-2026-10-19", "")

			Convey("Then every team member has a row and the tally adds up", func() {
				So(err, ShouldBeNil)
				So(v.Session.Status, ShouldEqual, model.SessionInProgress)
				So(v.Rows, ShouldHaveLength, 7)
				So(v.Rows[0].ID, ShouldEqual, "u27")
				So(v.Tally, ShouldResemble, roster.Tally{
					Total: 7, Present: 2, Late: 1, Absent: 1, Pending: 3, Capacity: 2, Full: true,
				})
				So(v.Statuses, ShouldResemble, []model.AttendanceStatus{
					model.AttendancePresent, model.AttendanceLate, model.AttendanceAbsent, model.AttendancePending,
				})
			})
		})

		Convey("When filtering by status", func() {
			v, err := svc.SessionAttendance(ctx, "gb1-2026-10-19", "present")

			Convey("Then only matching rows remain but the tally is unchanged", func() {
				So(err, ShouldBeNil)
				So(v.Rows, ShouldHaveLength, 2)
				So(v.Tally.Total, ShouldEqual, 7)
			})
		})

		Convey("When the filter is unknown", func() {
			_, err := svc.SessionAttendance(ctx, "gb1-2026-10-19", "sick")

			Convey("Then ErrInvalidArgument is returned", func() {
				So(errors.Is(err, service.ErrInvalidArgument), ShouldBeTrue)
			})
		})
	})
}

func TestServiceIntegration_Schedule(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, ctx := started(t)

		Convey("When reading one team's schedule", func() {
			v, err := svc.Schedule(ctx, "t2")

			Convey("Then classes are grouped by day and upcoming sessions are ordered", func() {
				So(err, ShouldBeNil)
				So(v.Days, ShouldNotBeEmpty)
				for _, d := range v.Days {
					for _, it := range d.Items {
						So(it.TeamID, ShouldEqual, "t2")
					}
				}
				So(v.Upcoming, ShouldNotBeEmpty)
				for i := 1; i < len(v.Upcoming); i++ {
					So(v.Upcoming[i-1].Date <= v.Upcoming[i].Date, ShouldBeTrue)
				}
				// tonight's class has already started
				So(v.Upcoming[len(v.Upcoming)-1].ID, ShouldEqual, "gb1-2026-10-26")
			})
		})

		Convey("When reading every team's schedule", func() {
			all, err := svc.Schedule(ctx, "")
			So(err, ShouldBeNil)
			one, err := svc.Schedule(ctx, "t2")
			So(err, ShouldBeNil)

			Convey("Then it covers more classes", func() {
				So(len(all.Upcoming), ShouldBeGreaterThan, len(one.Upcoming))
			})
		})
	})
}

func TestServiceIntegration_Catalog(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, ctx := started(t)

		Convey("Then teams, feed and chat come from the seed", func() {
			teams, err := svc.Teams(ctx)
			So(err, ShouldBeNil)
			So(teams, ShouldHaveLength, 3)

			feed, err := svc.Feed(ctx, "t1")
			So(err, ShouldBeNil)
			So(feed[0].Pinned, ShouldBeTrue)

			chat, err := svc.Chat(ctx, "t1")
			So(err, ShouldBeNil)
			So(chat, ShouldHaveLength, 3)
		})

		Convey("When creating and joining teams", func() {
			created, err := svc.CreateTeam(ctx, catalog.CreateTeamInput{Name: "Alliance"})
			So(err, ShouldBeNil)
			joined, err := svc.JoinTeam(ctx, "xyz123")
			So(err, ShouldBeNil)

			Convey("Then both are listed", func() {
				So(created.Acronym, ShouldEqual, "ALL")
				So(joined.Name, ShouldEqual, "Team XYZ123")
				teams, _ := svc.Teams(ctx)
				So(teams, ShouldHaveLength, 5)
			})
		})

		Convey("When catalog errors occur", func() {
			_, errCode := svc.JoinTeam(ctx, "ab")
			_, errTeam := svc.Feed(ctx, "nope")

			Convey("Then they map to service kinds", func() {
				So(errors.Is(errCode, service.ErrInvalidArgument), ShouldBeTrue)
				So(errors.Is(errTeam, service.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}
