package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/stockwatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()
		_ = os.Setenv("STOCKWATCH_LISTING__SOURCE_FILE", "ids.json")

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.LowStockThreshold, convey.ShouldEqual, 50)
				convey.So(cfg.Concurrency, convey.ShouldEqual, 10)
				convey.So(cfg.Listing.SourceFile, convey.ShouldEqual, "ids.json")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("STOCKWATCH_ADDR", ":8080")
			_ = os.Setenv("STOCKWATCH_LOW_STOCK_THRESHOLD", "10")
			_ = os.Setenv("STOCKWATCH_CONCURRENCY", "4")
			_ = os.Setenv("STOCKWATCH_CATALOG__TIMEOUT", "3s")
			_ = os.Setenv("STOCKWATCH_CATALOG__ENDPOINT", "http://catalog.local/graphql")
			_ = os.Setenv("STOCKWATCH_ITEM_EXCLUSIONS", "bateria,viseira")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LowStockThreshold, convey.ShouldEqual, 10)
				convey.So(cfg.Concurrency, convey.ShouldEqual, 4)
				convey.So(cfg.Catalog.Timeout, convey.ShouldEqual, 3*time.Second)
				convey.So(cfg.Catalog.Endpoint, convey.ShouldEqual, "http://catalog.local/graphql")
				convey.So(cfg.ItemExclusions, convey.ShouldResemble, []string{"bateria", "viseira"})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := writeConfigFile(t, `
addr: ":9090"
low_stock_threshold: 20
concurrency: 3
sponsor_exclusions: ["patrocinador", "apoio"]
mail:
  enabled: true
  host: smtp.example.com
  from: monitor@example.com
  to: ["ops@example.com"]
schedule:
  interval: 30m
`)
			_ = os.Setenv("STOCKWATCH_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LowStockThreshold, convey.ShouldEqual, 20)
				convey.So(cfg.Concurrency, convey.ShouldEqual, 3)
				convey.So(cfg.SponsorExclusions, convey.ShouldResemble, []string{"patrocinador", "apoio"})
				convey.So(cfg.Mail.To, convey.ShouldResemble, []string{"ops@example.com"})
				convey.So(cfg.Mail.Port, convey.ShouldEqual, 587)
				convey.So(cfg.Schedule.Interval, convey.ShouldEqual, 30*time.Minute)
			})

			convey.Convey("And env vars win over the file", func() {
				_ = os.Setenv("STOCKWATCH_CONCURRENCY", "7")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Concurrency, convey.ShouldEqual, 7)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_ = os.Setenv("STOCKWATCH_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			_, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value is out of range", func() {
			_ = os.Setenv("STOCKWATCH_CONCURRENCY", "0")
			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

var configEnvVars = []string{
	"STOCKWATCH_CONFIG",
	"STOCKWATCH_ADDR",
	"STOCKWATCH_LOW_STOCK_THRESHOLD",
	"STOCKWATCH_CONCURRENCY",
	"STOCKWATCH_CATALOG__TIMEOUT",
	"STOCKWATCH_CATALOG__ENDPOINT",
	"STOCKWATCH_ITEM_EXCLUSIONS",
	"STOCKWATCH_LISTING__SOURCE_FILE",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}
