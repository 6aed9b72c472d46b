package aggregate_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/okian/stockwatch/internal/domain/aggregate"
	"github.com/okian/stockwatch/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func entry(product, label string, qty int) model.RawAlertEntry {
	return model.RawAlertEntry{ProductName: product, ItemLabel: label, Quantity: qty}
}

func TestAggregator(t *testing.T) {
	convey.Convey("Given a fresh aggregator", t, func() {
		agg := aggregate.New()

		convey.Convey("When nothing was added", func() {
			convey.Convey("Then finalize yields no groups", func() {
				convey.So(agg.Finalize(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When an event is added with no entries", func() {
			convey.So(agg.Add("Quiet Run", nil), convey.ShouldBeNil)

			convey.Convey("Then it is not represented at all", func() {
				convey.So(agg.Len(), convey.ShouldEqual, 0)
				convey.So(agg.Finalize(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the same label and quantity come from different products", func() {
			_ = agg.Add("EventA", []model.RawAlertEntry{
				entry("Kit Basic", "P", 30),
				entry("Kit Premium", "P", 30),
				entry("Kit Premium", "P", 12),
			})

			convey.Convey("Then the pair collapses to one entry", func() {
				groups := agg.Finalize()
				convey.So(groups, convey.ShouldHaveLength, 1)
				convey.So(groups[0].Entries, convey.ShouldResemble, []model.AlertEntry{
					{Label: "P", Quantity: 30},
					{Label: "P", Quantity: 12},
				})
			})
		})

		convey.Convey("When events arrive in non-alphabetical order", func() {
			_ = agg.Add("Zeta Run", []model.RawAlertEntry{entry("K", "M", 1)})
			_ = agg.Add("Alpha Run", []model.RawAlertEntry{entry("K", "G", 2)})
			_ = agg.Add("Zeta Run", []model.RawAlertEntry{entry("K", "M", 1), entry("K", "GG", 5)})

			convey.Convey("Then groups keep first-insertion order and merge repeats", func() {
				groups := agg.Finalize()
				convey.So(groups, convey.ShouldHaveLength, 2)
				convey.So(groups[0].EventName, convey.ShouldEqual, "Zeta Run")
				convey.So(groups[0].Entries, convey.ShouldHaveLength, 2)
				convey.So(groups[1].EventName, convey.ShouldEqual, "Alpha Run")
			})
		})

		convey.Convey("When adding after finalize", func() {
			_ = agg.Add("EventA", []model.RawAlertEntry{entry("K", "P", 1)})
			first := agg.Finalize()
			err := agg.Add("EventB", []model.RawAlertEntry{entry("K", "P", 1)})

			convey.Convey("Then the report is sealed", func() {
				convey.So(err, convey.ShouldEqual, aggregate.ErrFinalized)
				convey.So(agg.Finalize(), convey.ShouldResemble, first)
			})
		})

		convey.Convey("When many goroutines add concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_ = agg.Add(fmt.Sprintf("Event-%d", i%5), []model.RawAlertEntry{
						entry("K", "P", i%3),
					})
				}(i)
			}
			wg.Wait()

			convey.Convey("Then every event holds only distinct pairs", func() {
				groups := agg.Finalize()
				convey.So(groups, convey.ShouldHaveLength, 5)
				for _, g := range groups {
					seen := map[model.AlertEntry]bool{}
					for _, e := range g.Entries {
						convey.So(seen[e], convey.ShouldBeFalse)
						seen[e] = true
					}
				}
			})
		})
	})
}
