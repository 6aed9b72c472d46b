package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get returns a usable logger", func() {
				So(Get(), ShouldNotBeNil)
				So(Named("test"), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(WithFormat("xml"))

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing JSON to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf), WithFormat("json")), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with fields", func() {
			Get().Named("pool").With(String("run_id", "r-1")).Info(ctx, "run finished",
				Int("successes", 2),
				Bool("reported", true),
				Error(errors.New("boom")),
			)
			out := buf.String()

			Convey("Then the fields are present", func() {
				So(out, ShouldContainSubstring, `"msg":"run finished"`)
				So(out, ShouldContainSubstring, `"component":"pool"`)
				So(out, ShouldContainSubstring, `"run_id":"r-1"`)
				So(out, ShouldContainSubstring, `"successes":2`)
				So(out, ShouldContainSubstring, `"source":"logger_test.go:`)
			})
		})

		Convey("When the level filters a message", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Warn(ctx, "shown")
			_ = SetLevelString("info")

			Convey("Then only the allowed level is written", func() {
				So(strings.Contains(buf.String(), "hidden"), ShouldBeFalse)
				So(buf.String(), ShouldContainSubstring, "shown")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, l := range []string{"debug", "INFO", "", "warning", "warn", " error "} {
			So(SetLevelString(l), ShouldBeNil)
		}
		So(SetLevelString("verbose"), ShouldNotBeNil)
		_ = SetLevelString("info")
	})
}
