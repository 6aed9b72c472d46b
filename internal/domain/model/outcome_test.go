package model_test

import (
	"testing"
	"time"

	model "github.com/okian/stockwatch/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestRunOutcome(t *testing.T) {
	convey.Convey("Given a RunOutcome", t, func() {
		convey.Convey("When it is nil or fresh", func() {
			var nilOutcome *model.RunOutcome
			fresh := &model.RunOutcome{}

			convey.Convey("Then it reports the idle state", func() {
				convey.So(nilOutcome.State(), convey.ShouldEqual, model.StateIdle)
				convey.So(fresh.State(), convey.ShouldEqual, model.StateIdle)
				convey.So(nilOutcome.NothingToReport(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When a run finishes without alerts", func() {
			o := &model.RunOutcome{}
			for _, s := range []model.RunState{
				model.StateLoadIdentifiers, model.StateFetching, model.StateAggregating,
				model.StateCleanup, model.StateDone,
			} {
				o.Enter(s)
			}

			convey.Convey("Then it is distinguishable as nothing to report", func() {
				convey.So(o.State(), convey.ShouldEqual, model.StateDone)
				convey.So(o.Reported(), convey.ShouldBeFalse)
				convey.So(o.NothingToReport(), convey.ShouldBeTrue)
				convey.So(o.Failed(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When a run failed loading identifiers", func() {
			o := &model.RunOutcome{}
			o.Enter(model.StateLoadIdentifiers)
			o.Enter(model.StateFailed)
			o.Enter(model.StateCleanup)
			o.Enter(model.StateDone)

			convey.Convey("Then it is failed, not empty", func() {
				convey.So(o.Failed(), convey.ShouldBeTrue)
				convey.So(o.NothingToReport(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When counting alerts and duration", func() {
			start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
			o := &model.RunOutcome{
				StartedAt:  start,
				FinishedAt: start.Add(90 * time.Second),
				AlertGroups: []model.AlertGroup{
					{EventName: "A", Entries: []model.AlertEntry{{Label: "P", Quantity: 3}, {Label: "M", Quantity: 1}}},
					{EventName: "B", Entries: []model.AlertEntry{{Label: "G", Quantity: 0}}},
				},
			}

			convey.Convey("Then totals are summed across groups", func() {
				convey.So(o.AlertCount(), convey.ShouldEqual, 3)
				convey.So(o.Duration(), convey.ShouldEqual, 90*time.Second)
			})
		})
	})
}
