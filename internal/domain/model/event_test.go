package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/okian/polo/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestCatalog(t *testing.T) {
	convey.Convey("Given the event catalog", t, func() {
		convey.Convey("Then every kind has a unique short code taken from its label", func() {
			seen := map[string]bool{}
			for _, info := range model.Catalog {
				code := info.Code()
				convey.So(code, convey.ShouldNotBeEmpty)
				convey.So(seen[code], convey.ShouldBeFalse)
				seen[code] = true
				kind, ok := model.KindByCode(code)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(kind, convey.ShouldEqual, info.Kind)
			}
		})

		convey.Convey("Then goal kinds are GOAL, PENALTY_GOAL and EXCLUSION_GOAL", func() {
			var goals []model.EventKind
			for _, info := range model.Catalog {
				if info.Kind.IsGoal() {
					goals = append(goals, info.Kind)
				}
			}
			convey.So(goals, convey.ShouldResemble, []model.EventKind{model.Goal, model.PenaltyGoal, model.ExclusionGoal})
			convey.So(model.Penalty.IsGoal(), convey.ShouldBeFalse)
		})

		convey.Convey("Then foul kinds carry their exclusion codes", func() {
			convey.So(model.Exclusion.IsFoul(), convey.ShouldBeTrue)
			convey.So(model.ExclusionGoal.IsFoul(), convey.ShouldBeTrue)
			convey.So(model.Penalty.IsFoul(), convey.ShouldBeTrue)
			convey.So(model.Brutality.IsFoul(), convey.ShouldBeTrue)
			convey.So(model.PenaltyGoal.IsFoul(), convey.ShouldBeFalse)
			info, _ := model.ExclusionGoal.Info()
			convey.So(info.FoulCode, convey.ShouldEqual, "E")
		})

		convey.Convey("Then only timeouts and cards may omit a number", func() {
			convey.So(model.Timeout.RequiresNumber(), convey.ShouldBeFalse)
			convey.So(model.YellowCard.RequiresNumber(), convey.ShouldBeFalse)
			convey.So(model.RedCard.RequiresNumber(), convey.ShouldBeFalse)
			convey.So(model.Goal.RequiresNumber(), convey.ShouldBeTrue)
			convey.So(model.CenterBall.RequiresNumber(), convey.ShouldBeTrue)
			convey.So(model.EventKind("SHOT").RequiresNumber(), convey.ShouldBeFalse)
		})

		convey.Convey("Then unknown kinds are invalid", func() {
			convey.So(model.EventKind("").Valid(), convey.ShouldBeFalse)
			convey.So(model.EventKind("goal").Valid(), convey.ShouldBeFalse)
			convey.So(model.CenterBall.IsPeriodStart(), convey.ShouldBeTrue)
		})
	})
}

func TestPlayerNumbers(t *testing.T) {
	convey.Convey("Given cap numbers", t, func() {
		convey.So(model.IsCapNumber("1"), convey.ShouldBeTrue)
		convey.So(model.IsCapNumber("14"), convey.ShouldBeTrue)
		convey.So(model.IsCapNumber("15"), convey.ShouldBeFalse)
		convey.So(model.IsCapNumber("0"), convey.ShouldBeFalse)
		convey.So(model.IsCapNumber("07"), convey.ShouldBeFalse)
		convey.So(model.IsCapNumber(model.UnknownNumber), convey.ShouldBeFalse)
		convey.So(model.IsCapNumber(model.NoNumber), convey.ShouldBeFalse)
		convey.So(model.Team("red").Valid(), convey.ShouldBeFalse)
		convey.So(model.Blue.Valid(), convey.ShouldBeTrue)
	})

	convey.Convey("Given the number a kind accepts", t, func() {
		convey.So(model.ValidNumber(model.Goal, "7"), convey.ShouldBeTrue)
		convey.So(model.ValidNumber(model.Goal, model.UnknownNumber), convey.ShouldBeTrue)
		convey.So(model.ValidNumber(model.Goal, model.NoNumber), convey.ShouldBeFalse)
		convey.So(model.ValidNumber(model.CenterBall, model.NoNumber), convey.ShouldBeFalse)
		convey.So(model.ValidNumber(model.Timeout, model.NoNumber), convey.ShouldBeTrue)
		convey.So(model.ValidNumber(model.Exclusion, ""), convey.ShouldBeFalse)
		convey.So(model.ValidNumber(model.Exclusion, "abc"), convey.ShouldBeFalse)
	})

	convey.Convey("Given match dates", t, func() {
		convey.So(model.ValidDate(""), convey.ShouldBeTrue)
		convey.So(model.ValidDate("2025-06-01"), convey.ShouldBeTrue)
		convey.So(model.ValidDate("not-a-date"), convey.ShouldBeFalse)
		convey.So(model.ValidDate("2025-13-01"), convey.ShouldBeFalse)
	})
}

func TestSnapshotJSON(t *testing.T) {
	convey.Convey("Given a snapshot", t, func() {
		snap := model.Snapshot{
			Match: model.Match{Date: "2025-06-01", TeamWhite: "Kobe", TeamBlue: "Osaka"},
			Records: []model.Record{
				{ID: 1717200000000, Clock: "8:00", Number: "3", Team: model.White, Kind: model.CenterBall},
			},
		}

		convey.Convey("When it is marshaled", func() {
			data, err := json.Marshal(snap)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then it uses the flat persistence field names", func() {
				var raw map[string]any
				convey.So(json.Unmarshal(data, &raw), convey.ShouldBeNil)
				convey.So(raw["matchDate"], convey.ShouldEqual, "2025-06-01")
				convey.So(raw["teamNameA"], convey.ShouldEqual, "Kobe")
				convey.So(raw["teamNameB"], convey.ShouldEqual, "Osaka")
				records := raw["records"].([]any)
				first := records[0].(map[string]any)
				convey.So(first["clockTime"], convey.ShouldEqual, "8:00")
				convey.So(first["eventKind"], convey.ShouldEqual, "CENTER_BALL")
				convey.So(first["teamColor"], convey.ShouldEqual, "white")
			})

			convey.Convey("Then it decodes back to the same value", func() {
				var back model.Snapshot
				convey.So(json.Unmarshal(data, &back), convey.ShouldBeNil)
				convey.So(back, convey.ShouldResemble, snap)
			})
		})
	})
}
