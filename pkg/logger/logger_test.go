package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the default logger", t, func() {
		So(Init(), ShouldBeNil)
		So(Get(), ShouldNotBeNil)
		So(Sync(), ShouldBeNil)
		So(func() { Get().Info(context.Background(), "hello", String("k", "v")) }, ShouldNotPanic)
	})
}

func TestLoggerJSON(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithFormat(FormatJSON, &buf), ShouldBeNil)

		Convey("When a record is logged with fields", func() {
			Get().With(String("match", "2025-06-01")).Info(context.Background(), "record added",
				Int64("id", 42), Bool("duplicate", false))

			Convey("Then the output carries every field and the caller", func() {
				var line map[string]any
				So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
				So(line["msg"], ShouldEqual, "record added")
				So(line["match"], ShouldEqual, "2025-06-01")
				So(line["id"], ShouldEqual, 42)
				So(line["duplicate"], ShouldEqual, false)
				So(line["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised to warn", func() {
			So(SetLevelString("WARN"), ShouldBeNil)
			Get().Info(context.Background(), "hidden")
			Get().Warn(context.Background(), "shown")

			Convey("Then info is filtered out", func() {
				So(strings.Contains(buf.String(), "hidden"), ShouldBeFalse)
				So(strings.Contains(buf.String(), "shown"), ShouldBeTrue)
			})
		})
	})

	Convey("Given bad settings", t, func() {
		So(InitWithFormat("xml", &bytes.Buffer{}), ShouldNotBeNil)
		So(SetLevelString("loud"), ShouldNotBeNil)
	})
}

func TestLoggerNamed(t *testing.T) {
	Convey("Given a named logger", t, func() {
		var buf bytes.Buffer
		So(InitWithFormat(FormatJSON, &buf), ShouldBeNil)
		Named("api").Info(context.Background(), "grouped", String("route", "/records"))

		Convey("Then fields are grouped under the name", func() {
			var line map[string]any
			So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
			group, ok := line["api"].(map[string]any)
			So(ok, ShouldBeTrue)
			So(group["route"], ShouldEqual, "/records")
		})
	})
}
