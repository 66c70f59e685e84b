package verify

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/okian/jitsu/internal/domain/belt"
	"github.com/okian/jitsu/internal/domain/model"
)

// Rules checks the belt engine in process. now anchors time-in-grade.
func Rules(now time.Time) Report {
	var r Report

	white, blue, black := mustIndex(belt.White), mustIndex(belt.Blue), mustIndex(belt.Black)
	r.add("belt ordering White < Blue < Black", white < blue && blue < black,
		fmt.Sprintf("%d < %d < %d", white, blue, black))

	higher, err := belt.IsHigher(belt.Black, belt.Blue)
	r.add("IsHigher(BLACK, BLUE)", err == nil && higher, "")
	same, err := belt.IsHigher(belt.Blue, belt.Blue)
	r.add("IsHigher is strict", err == nil && !same, "")

	ladderOK := true
	for i, rank := range belt.All() {
		parsed, err := belt.Parse(rank.String())
		if err != nil || parsed != rank || mustIndex(rank) != i {
			ladderOK = false
			break
		}
	}
	r.add("ladder ids round trip", ladderOK, fmt.Sprintf("%d ranks", len(belt.All())))

	_, ok, err := belt.Next(belt.Highest)
	r.add("no successor above "+belt.Highest.String(), err == nil && !ok, "")
	next, ok, err := belt.Next(belt.Purple)
	r.add("Next(PURPLE) is BROWN", err == nil && ok && next == belt.Brown, next.String())

	_, err = belt.Parse("PLAID")
	r.add("unknown rank rejected", errors.Is(err, belt.ErrInvalidRank), "")

	sixMonths := belt.MonthsInGrade(now.AddDate(0, -6, 0), now)
	r.add("time in grade", sixMonths >= 5 && sixMonths <= 7, fmt.Sprintf("expected ~6, got %d", sixMonths))
	r.add("future award clamps to zero", belt.MonthsInGrade(now.Add(time.Hour), now) == 0, "")

	members := []model.Member{
		{ID: "a", Name: "Zed", Grade: belt.Grade{Rank: belt.Blue, Stripes: 1}},
		{ID: "b", Name: "Ana", Grade: belt.Grade{Rank: belt.Black}},
		{ID: "c", Name: "Bia", Grade: belt.Grade{Rank: belt.Blue, Stripes: 1}},
		{ID: "d", Name: "Caio", Grade: belt.Grade{Rank: belt.Blue, Stripes: 3}},
	}
	err = belt.SortByRank(members)
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	r.add("sort by rank, stripes, name", err == nil && slices.Equal(ids, []string{"b", "d", "c", "a"}), fmt.Sprint(ids))

	var leads []model.Role
	for _, role := range []model.Role{model.RoleStudent, model.RoleAssistant, model.RoleInstructor, model.RoleHeadCoach} {
		if role.Teaches() {
			leads = append(leads, role)
		}
	}
	r.add("teaching roles", slices.Equal(leads, []model.Role{model.RoleInstructor, model.RoleHeadCoach}), fmt.Sprint(leads))
	return r
}

func mustIndex(r belt.Rank) int {
	i, _ := r.Index()
	return i
}
