package belt_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/jitsu/internal/domain/belt"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRankIndex(t *testing.T) {
	Convey("Given the canonical belt ladder", t, func() {
		ranks := belt.All()

		Convey("Then it holds twenty ranks from White to Red", func() {
			So(len(ranks), ShouldEqual, 20)
			So(ranks[0], ShouldEqual, belt.White)
			So(ranks[len(ranks)-1], ShouldEqual, belt.Red)
			So(belt.Highest, ShouldEqual, belt.Red)
		})

		Convey("Then adjacent ranks differ by exactly one position", func() {
			for i := 1; i < len(ranks); i++ {
				prev, err := belt.Index(ranks[i-1])
				So(err, ShouldBeNil)
				cur, err := belt.Index(ranks[i])
				So(err, ShouldBeNil)
				So(cur, ShouldEqual, prev+1)
			}
		})

		Convey("Then White is zero and the adult belts keep their order", func() {
			white, _ := belt.Index(belt.White)
			blue, _ := belt.Index(belt.Blue)
			black, _ := belt.Index(belt.Black)
			So(white, ShouldEqual, 0)
			So(white, ShouldBeLessThan, blue)
			So(blue, ShouldBeLessThan, black)
		})

		Convey("When a value outside the set is looked up", func() {
			_, err := belt.Index(belt.Rank(42))

			Convey("Then it fails with InvalidRankError", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, belt.ErrInvalidRank), ShouldBeTrue)
				var ire *belt.InvalidRankError
				So(errors.As(err, &ire), ShouldBeTrue)
				So(ire.Value, ShouldEqual, "42")
			})
		})

		Convey("When a negative value is looked up", func() {
			_, err := belt.Rank(-1).Index()
			So(errors.Is(err, belt.ErrInvalidRank), ShouldBeTrue)
		})
	})
}

func TestIsHigher(t *testing.T) {
	Convey("Given pairs of ranks", t, func() {
		Convey("Then Black is higher than Blue", func() {
			ok, err := belt.IsHigher(belt.Black, belt.Blue)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
		})

		Convey("Then White is not higher than Black", func() {
			ok, err := belt.IsHigher(belt.White, belt.Black)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("Then no rank is higher than itself", func() {
			for _, r := range belt.All() {
				ok, err := belt.IsHigher(r, r)
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			}
		})

		Convey("Then an invalid operand is rejected on either side", func() {
			_, err := belt.IsHigher(belt.Rank(99), belt.White)
			So(errors.Is(err, belt.ErrInvalidRank), ShouldBeTrue)
			_, err = belt.IsHigher(belt.White, belt.Rank(99))
			So(errors.Is(err, belt.ErrInvalidRank), ShouldBeTrue)
		})
	})
}

func TestNext(t *testing.T) {
	Convey("Given the successor query", t, func() {
		Convey("Then White is followed by Grey White", func() {
			next, ok, err := belt.Next(belt.White)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(next, ShouldEqual, belt.GreyWhite)
		})

		Convey("Then Green Black is followed by Blue", func() {
			next, ok, err := belt.Next(belt.GreenBlack)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(next, ShouldEqual, belt.Blue)
		})

		Convey("Then the highest rank has no successor and does not wrap", func() {
			next, ok, err := belt.Next(belt.Red)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			So(next, ShouldNotEqual, belt.White)
		})

		Convey("Then an invalid rank is rejected", func() {
			_, ok, err := belt.Next(belt.Rank(20))
			So(ok, ShouldBeFalse)
			So(errors.Is(err, belt.ErrInvalidRank), ShouldBeTrue)
		})
	})
}

func TestParseAndText(t *testing.T) {
	Convey("Given rank identifiers", t, func() {
		Convey("When parsing canonical ids", func() {
			for _, r := range belt.All() {
				parsed, err := belt.Parse(r.String())
				So(err, ShouldBeNil)
				So(parsed, ShouldEqual, r)
			}
		})

		Convey("When parsing loose spellings", func() {
			r, err := belt.Parse(" grey white ")
			So(err, ShouldBeNil)
			So(r, ShouldEqual, belt.GreyWhite)

			r, err = belt.Parse("Red-Black")
			So(err, ShouldBeNil)
			So(r, ShouldEqual, belt.RedBlack)
		})

		Convey("When parsing an unknown id", func() {
			_, err := belt.Parse("CORAL")
			So(errors.Is(err, belt.ErrInvalidRank), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "CORAL")
		})

		Convey("Then display names are formatted", func() {
			So(belt.GreyWhite.DisplayName(), ShouldEqual, "Grey White")
			So(belt.Black.DisplayName(), ShouldEqual, "Black")
			So(belt.Rank(77).DisplayName(), ShouldEqual, "Rank(77)")
		})

		Convey("Then ranks travel through JSON as identifiers", func() {
			data, err := json.Marshal(map[string]belt.Rank{"rank": belt.YellowBlack})
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, `{"rank":"YELLOW_BLACK"}`)

			var back map[string]belt.Rank
			So(json.Unmarshal(data, &back), ShouldBeNil)
			So(back["rank"], ShouldEqual, belt.YellowBlack)
		})

		Convey("Then invalid JSON identifiers fail to decode", func() {
			var r belt.Rank
			err := json.Unmarshal([]byte(`"PINK"`), &r)
			So(errors.Is(err, belt.ErrInvalidRank), ShouldBeTrue)
		})

		Convey("Then invalid ranks do not marshal", func() {
			_, err := json.Marshal(belt.Rank(50))
			So(err, ShouldNotBeNil)
		})
	})
}
