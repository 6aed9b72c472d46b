package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/stockwatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LowStockThreshold, convey.ShouldEqual, 50)
			convey.So(cfg.Concurrency, convey.ShouldEqual, 10)
			convey.So(cfg.SponsorExclusions, convey.ShouldBeNil)
			convey.So(cfg.ItemExclusions, convey.ShouldBeNil)
			convey.So(cfg.Catalog.Timeout, convey.ShouldEqual, 15*time.Second)
			convey.So(cfg.Listing.Path, convey.ShouldEqual, "url.json")
			convey.So(cfg.Mail.Port, convey.ShouldEqual, 587)
			convey.So(cfg.Schedule.Interval, convey.ShouldEqual, time.Hour)
		})

		convey.Convey("Then it needs an identifier source to validate", func() {
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)

			cfg.Database.DSN = "postgres://localhost/catalog"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a valid config", t, func() {
		cfg := config.New()
		cfg.Listing.SourceFile = "ids.json"
		convey.So(cfg.Validate(), convey.ShouldBeNil)

		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"negative threshold", func(c *config.Config) { c.LowStockThreshold = -1 }},
			{"zero concurrency", func(c *config.Config) { c.Concurrency = 0 }},
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"relative endpoint", func(c *config.Config) { c.Catalog.Endpoint = "/graphql" }},
			{"unknown timezone", func(c *config.Config) { c.Timezone = "Mars/Olympus" }},
			{"mail without recipients", func(c *config.Config) {
				c.Mail.Enabled = true
				c.Mail.Host = "smtp.example.com"
				c.Mail.From = "monitor@example.com"
			}},
			{"archive without bucket", func(c *config.Config) { c.Archive.Enabled = true }},
			{"zero interval", func(c *config.Config) { c.Schedule.Interval = 0 }},
		}
		for _, tc := range cases {
			convey.Convey("Then "+tc.name+" is rejected", func() {
				tc.mutate(cfg)
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("Then a zero threshold is allowed", func() {
			cfg.LowStockThreshold = 0
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
