package derive_test

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/okian/polo/internal/domain/derive"
	"github.com/okian/polo/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func rec(id int64, clock, number string, team model.Team, kind model.EventKind) model.Record {
	return model.Record{ID: id, Clock: clock, Number: number, Team: team, Kind: kind}
}

// matchLog is two periods with goals on both sides and a few fouls.
func matchLog() []model.Record {
	return []model.Record{
		rec(100, "8:00", "5", model.White, model.CenterBall),
		rec(110, "7:20", "4", model.White, model.Goal),
		rec(120, "6:55", "7", model.Blue, model.Exclusion),
		rec(130, "6:10", "9", model.Blue, model.PenaltyGoal),
		rec(140, "5:00", "-", model.Blue, model.Timeout),
		rec(150, "4:30", "2", model.White, model.ExclusionGoal),
		rec(200, "8:00", "5", model.Blue, model.CenterBall),
		rec(210, "7:45", "?", model.Blue, model.Goal),
		rec(220, "3:15", "7", model.Blue, model.Penalty),
		rec(230, "0:01", "11", model.White, model.Goal),
	}
}

func TestDeriveScenarios(t *testing.T) {
	Convey("Given an empty store", t, func() {
		derived := derive.Derive(nil)

		Convey("Then there are no derived records, period 1 and 0-0", func() {
			So(derived, ShouldBeEmpty)
			So(derive.Summarize(derived), ShouldResemble, derive.Summary{CurrentPeriod: 1})
		})
	})

	Convey("Given one white center ball at 8:00", t, func() {
		derived := derive.Derive([]model.Record{rec(1, "8:00", "1", model.White, model.CenterBall)})

		Convey("Then it is period 1, rank 1, 0-0", func() {
			So(derived, ShouldHaveLength, 1)
			So(derived[0].Period, ShouldEqual, 1)
			So(derived[0].Rank, ShouldEqual, 1)
			So(derived[0].ScoreWhite, ShouldEqual, 0)
			So(derived[0].ScoreBlue, ShouldEqual, 0)
		})
	})

	Convey("Given a center ball, a white goal and a blue goal", t, func() {
		derived := derive.Derive([]model.Record{
			rec(1, "8:00", "1", model.White, model.CenterBall),
			rec(2, "5:12", "4", model.White, model.Goal),
			rec(3, "3:40", "6", model.Blue, model.Goal),
		})

		Convey("Then the score after the third record is 1-1, all in period 1", func() {
			So(derived[2].ScoreWhite, ShouldEqual, 1)
			So(derived[2].ScoreBlue, ShouldEqual, 1)
			for _, d := range derived {
				So(d.Period, ShouldEqual, 1)
			}
		})
	})

	Convey("Given records logged before the first center ball", t, func() {
		derived := derive.Derive([]model.Record{
			rec(1, "8:00", "3", model.White, model.Goal),
			rec(2, "8:00", "1", model.White, model.CenterBall),
			rec(3, "8:00", "1", model.Blue, model.CenterBall),
		})

		Convey("Then they belong to period 1", func() {
			So(derived[0].Period, ShouldEqual, 1)
			So(derived[1].Period, ShouldEqual, 1)
			So(derived[2].Period, ShouldEqual, 2)
		})
	})

	Convey("Given two center balls with records after the second", t, func() {
		log := matchLog()
		before := derive.Derive(log)

		Convey("When the first center ball is deleted", func() {
			after := derive.Derive(slices.DeleteFunc(slices.Clone(log), func(r model.Record) bool { return r.ID == 100 }))

			Convey("Then every later record moves down exactly one period", func() {
				periods := map[int64]int{}
				for _, d := range after {
					periods[d.ID] = d.Period
				}
				for _, d := range before {
					if d.ID <= 100 {
						continue
					}
					if d.ID < 200 {
						So(periods[d.ID], ShouldEqual, 1)
						continue
					}
					So(periods[d.ID], ShouldEqual, d.Period-1)
				}
			})
		})
	})
}

func TestDeriveProperties(t *testing.T) {
	Convey("Given a realistic match log", t, func() {
		log := matchLog()

		Convey("When it is derived twice", func() {
			So(derive.Derive(log), ShouldResemble, derive.Derive(log))
		})

		Convey("When the input is shuffled", func() {
			want := derive.Derive(log)
			rng := rand.New(rand.NewPCG(7, 11))
			for i := 0; i < 20; i++ {
				shuffled := slices.Clone(log)
				rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
				So(derive.Derive(shuffled), ShouldResemble, want)
			}
		})

		Convey("When the input slice is derived", func() {
			shuffled := slices.Clone(log)
			shuffled[0], shuffled[5] = shuffled[5], shuffled[0]
			original := slices.Clone(shuffled)
			derive.Derive(shuffled)
			So(shuffled, ShouldResemble, original)
		})

		Convey("Then scores and periods are monotone", func() {
			derived := derive.Derive(log)
			for i := 1; i < len(derived); i++ {
				prev, cur := derived[i-1], derived[i]
				So(cur.Rank, ShouldEqual, prev.Rank+1)
				dw, db := cur.ScoreWhite-prev.ScoreWhite, cur.ScoreBlue-prev.ScoreBlue
				switch {
				case cur.Kind.IsGoal() && cur.Team == model.White:
					So(dw, ShouldEqual, 1)
					So(db, ShouldEqual, 0)
				case cur.Kind.IsGoal() && cur.Team == model.Blue:
					So(dw, ShouldEqual, 0)
					So(db, ShouldEqual, 1)
				default:
					So(dw, ShouldEqual, 0)
					So(db, ShouldEqual, 0)
				}
				step := cur.Period - prev.Period
				if cur.Kind == model.CenterBall {
					So(step, ShouldBeBetweenOrEqual, 0, 1)
				} else {
					So(step, ShouldEqual, 0)
				}
			}
		})

		Convey("Then the summary reads the final state", func() {
			sum := derive.Summarize(derive.Derive(log))
			So(sum, ShouldResemble, derive.Summary{CurrentPeriod: 2, ScoreWhite: 3, ScoreBlue: 2, Records: len(log)})
		})

		Convey("Then unknown-number rows are correctable", func() {
			derived := derive.Derive(log)
			So(derived[7].Correctable(), ShouldBeTrue)
			So(derived[6].Correctable(), ShouldBeFalse)
		})
	})
}
