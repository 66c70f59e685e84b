package belt_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/jitsu/internal/domain/belt"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMonthsInGrade(t *testing.T) {
	Convey("Given a fixed reference time", t, func() {
		now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
		day := 24 * time.Hour

		Convey("When the belt was awarded 180 days ago", func() {
			months := belt.MonthsInGrade(now.Add(-180*day), now)

			Convey("Then six months are reported", func() {
				So(months, ShouldEqual, 6)
			})
		})

		Convey("When the belt was awarded six calendar months ago", func() {
			months := belt.MonthsInGrade(now.AddDate(0, -6, 0), now)

			Convey("Then the coarse count stays within one month", func() {
				So(months, ShouldBeBetweenOrEqual, 5, 7)
			})
		})

		Convey("When the belt was awarded 29 days ago", func() {
			So(belt.MonthsInGrade(now.Add(-29*day), now), ShouldEqual, 0)
		})

		Convey("When the belt was awarded exactly 30 days ago", func() {
			So(belt.MonthsInGrade(now.Add(-30*day), now), ShouldEqual, 1)
		})

		Convey("When the award lies in the future", func() {
			So(belt.MonthsInGrade(now.Add(45*day), now), ShouldEqual, 0)
		})

		Convey("When measuring against the wall clock", func() {
			So(belt.MonthsSince(time.Now().Add(-61*day)), ShouldEqual, 2)
		})
	})
}

func TestGradeValidate(t *testing.T) {
	Convey("Given grades to validate", t, func() {
		now := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
		g := belt.Grade{Rank: belt.Purple, Stripes: 2, AwardedAt: now.AddDate(-1, 0, 0), AwardedBy: "u2"}

		Convey("Then a well-formed grade passes", func() {
			So(g.Validate(now), ShouldBeNil)
		})

		Convey("Then stripe counts outside 0..4 fail", func() {
			g.Stripes = 5
			So(errors.Is(g.Validate(now), belt.ErrStripesOutOfRange), ShouldBeTrue)
			g.Stripes = -1
			So(errors.Is(g.Validate(now), belt.ErrStripesOutOfRange), ShouldBeTrue)
		})

		Convey("Then an award after now fails", func() {
			g.AwardedAt = now.Add(time.Hour)
			So(errors.Is(g.Validate(now), belt.ErrAwardedInFuture), ShouldBeTrue)
		})

		Convey("Then an invalid rank fails", func() {
			g.Rank = belt.Rank(30)
			So(errors.Is(g.Validate(now), belt.ErrInvalidRank), ShouldBeTrue)
		})
	})
}

func TestGradeOutranks(t *testing.T) {
	Convey("Given two grades", t, func() {
		blue2 := belt.Grade{Rank: belt.Blue, Stripes: 2}
		blue3 := belt.Grade{Rank: belt.Blue, Stripes: 3}
		purple0 := belt.Grade{Rank: belt.Purple}

		So(purple0.Outranks(blue3), ShouldBeTrue)
		So(blue3.Outranks(blue2), ShouldBeTrue)
		So(blue2.Outranks(blue3), ShouldBeFalse)
		So(blue2.Outranks(blue2), ShouldBeFalse)
	})
}
