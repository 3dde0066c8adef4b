package export_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/okian/polo/internal/domain/derive"
	"github.com/okian/polo/internal/domain/export"
	"github.com/okian/polo/internal/domain/model"
	"github.com/okian/polo/internal/domain/views"
	. "github.com/smartystreets/goconvey/convey"
)

func rec(id int64, clock, number string, team model.Team, kind model.EventKind) model.Record {
	return model.Record{ID: id, Clock: clock, Number: number, Team: team, Kind: kind}
}

func sampleLog() []model.Record {
	return []model.Record{
		rec(1, "8:00", "1", model.White, model.CenterBall),
		rec(2, "5:12", "4", model.White, model.Goal),
		rec(3, "6:40", "6", model.Blue, model.Goal),
		rec(4, "4:00", "-", model.Blue, model.Timeout),
		rec(5, "8:00", "1", model.Blue, model.CenterBall),
		rec(6, "2:05", "?", model.Blue, model.ExclusionGoal),
	}
}

var match = model.Match{Date: "2025-06-01", TeamWhite: "Kobe Univ", TeamBlue: "Osaka/Tech"}

func TestEncode(t *testing.T) {
	Convey("Given a derived log in export order", t, func() {
		ordered := views.DisplayOrder(derive.Derive(sampleLog()), views.ExportPolicy)

		Convey("When encoded in English", func() {
			data, err := export.Encode(ordered, match, export.LocaleEN)
			So(err, ShouldBeNil)

			Convey("Then it starts with a BOM and the header", func() {
				So(bytes.HasPrefix(data, export.BOM), ShouldBeTrue)
				lines := strings.Split(strings.TrimSpace(string(bytes.TrimPrefix(data, export.BOM))), "\n")
				So(lines[0], ShouldEqual, "No,Period,Time,Number,Color,Event,ScoreWhite,ScoreBlue")
				So(lines, ShouldHaveLength, 7)
				So(lines[1], ShouldEqual, "001,1,8:00,1,white,CB,0,0")
				So(lines[2], ShouldEqual, "002,1,6:40,6,blue,G,1,1")
				So(lines[3], ShouldEqual, "003,1,5:12,4,white,G,1,0")
				So(lines[4], ShouldEqual, "004,1,4:00,-,blue,TO,1,1")
				So(lines[6], ShouldEqual, "006,2,2:05,?,blue,EG,1,2")
			})

			Convey("Then decoding reconstructs every derived column", func() {
				rows, err := export.Decode(data)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, len(ordered))
				for i, row := range rows {
					d := ordered[i]
					So(row.Seq, ShouldEqual, i+1)
					So(row.Period, ShouldEqual, d.Period)
					So(row.Clock, ShouldEqual, d.Clock)
					So(row.Number, ShouldEqual, d.Number)
					So(row.Team, ShouldEqual, d.Team)
					So(row.Kind, ShouldEqual, d.Kind)
					So(row.ScoreWhite, ShouldEqual, d.ScoreWhite)
					So(row.ScoreBlue, ShouldEqual, d.ScoreBlue)
				}
			})
		})

		Convey("When encoded in Japanese", func() {
			data, err := export.Encode(ordered, match, export.LocaleJA)
			So(err, ShouldBeNil)

			Convey("Then headers and colors are localized and still decode", func() {
				So(string(data), ShouldContainSubstring, "No,ピリオド,時間,番号,色,イベント,得点(白),得点(青)")
				So(string(data), ShouldContainSubstring, "001,1,8:00,1,白,CB,0,0")
				rows, err := export.Decode(data)
				So(err, ShouldBeNil)
				So(rows[1].Team, ShouldEqual, model.Blue)
			})
		})
	})

	Convey("Given export preconditions", t, func() {
		Convey("When there are no records", func() {
			data, err := export.Encode(nil, match, export.LocaleEN)
			So(errors.Is(err, export.ErrNoRecords), ShouldBeTrue)
			So(data, ShouldBeNil)
		})

		Convey("When the match date is missing", func() {
			data, err := export.Encode(derive.Derive(sampleLog()), model.Match{}, export.LocaleEN)
			So(errors.Is(err, export.ErrMissingDate), ShouldBeTrue)
			So(data, ShouldBeNil)
		})
	})
}

func TestDecodeErrors(t *testing.T) {
	Convey("Given malformed files", t, func() {
		for _, in := range []string{
			"",
			"a,b\n",
			"No,Period,Time,Number,Color,Event,ScoreWhite,ScoreBlue\n001,x,8:00,1,white,CB,0,0\n",
			"No,Period,Time,Number,Color,Event,ScoreWhite,ScoreBlue\n001,1,8:00,1,red,CB,0,0\n",
			"No,Period,Time,Number,Color,Event,ScoreWhite,ScoreBlue\n001,1,8:00,1,white,ZZ,0,0\n",
		} {
			_, err := export.Decode([]byte(in))
			So(errors.Is(err, export.ErrMalformedCSV), ShouldBeTrue)
		}
	})
}

func TestFilename(t *testing.T) {
	Convey("Given match metadata", t, func() {
		Convey("When team names contain unsafe characters", func() {
			So(export.Filename(match, export.LocaleEN), ShouldEqual, "waterpolo_record_2025-06-01_Kobe_Univ_vs_Osaka_Tech.csv")
		})

		Convey("When team names are blank", func() {
			m := model.Match{Date: "2025-06-01", TeamWhite: "  "}
			So(export.Filename(m, export.LocaleEN), ShouldEqual, "waterpolo_record_2025-06-01_white_vs_blue.csv")
			So(export.Filename(m, export.LocaleJA), ShouldEqual, "waterpolo_record_2025-06-01_白_vs_青.csv")
		})
	})
}

func TestLocale(t *testing.T) {
	Convey("Given locale names", t, func() {
		loc, err := export.LookupLocale("JA")
		So(err, ShouldBeNil)
		So(loc.Name, ShouldEqual, "ja")
		loc, err = export.LookupLocale("")
		So(err, ShouldBeNil)
		So(loc.Name, ShouldEqual, "en")
		_, err = export.LookupLocale("fr")
		So(errors.Is(err, export.ErrUnknownLocale), ShouldBeTrue)
		So(export.LocaleJA.TeamLabel(model.White, "Kobe"), ShouldEqual, "白 (Kobe)")
		So(export.LocaleEN.TeamLabel(model.Blue, ""), ShouldEqual, "blue")
	})
}
