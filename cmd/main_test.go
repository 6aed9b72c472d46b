package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/stockwatch/internal/config"
	"github.com/okian/stockwatch/internal/domain/model"
	"github.com/okian/stockwatch/pkg/logger"
	"github.com/okian/stockwatch/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func TestBuildService(t *testing.T) {
	convey.Convey("Given a config with a file source and every reporter but mail", t, func() {
		dir := t.TempDir()
		ids := filepath.Join(dir, "ids.json")
		convey.So(os.WriteFile(ids, []byte(`[]`), 0o600), convey.ShouldBeNil)

		cfg := config.New()
		cfg.Listing.SourceFile = ids
		cfg.Listing.Path = filepath.Join(dir, "url.json")
		cfg.Excel.Enabled = true
		cfg.Excel.Dir = filepath.Join(dir, "reports")
		cfg.Catalog.RatePerSecond = 5
		cfg.Catalog.Headers = map[string]string{"Store": "default"}
		convey.So(cfg.Validate(), convey.ShouldBeNil)

		svc, closeFn, err := buildService(context.Background(), cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer closeFn()

		convey.Convey("When running once over an empty listing", func() {
			code := runOnce(context.Background(), svc, logger.Get())

			convey.Convey("Then the run succeeds with nothing to report", func() {
				convey.So(code, convey.ShouldEqual, 0)
				out := svc.LastOutcome()
				convey.So(out, convey.ShouldNotBeNil)
				convey.So(out.State(), convey.ShouldEqual, model.StateDone)
				convey.So(out.NothingToReport(), convey.ShouldBeTrue)
			})

			convey.Convey("And the transient listing is removed", func() {
				_, err := os.Stat(cfg.Listing.Path)
				convey.So(os.IsNotExist(err), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a config whose source file is missing", t, func() {
		cfg := config.New()
		cfg.Listing.SourceFile = filepath.Join(t.TempDir(), "missing.json")
		cfg.Listing.Path = filepath.Join(t.TempDir(), "url.json")

		svc, closeFn, err := buildService(context.Background(), cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer closeFn()

		convey.Convey("Then a single run exits non-zero", func() {
			convey.So(runOnce(context.Background(), svc, logger.Get()), convey.ShouldEqual, 1)
			convey.So(svc.LastOutcome().Failed(), convey.ShouldBeTrue)
		})
	})
}

func TestSchedule(t *testing.T) {
	convey.Convey("Given a scheduled service", t, func() {
		dir := t.TempDir()
		ids := filepath.Join(dir, "ids.json")
		convey.So(os.WriteFile(ids, []byte(`[]`), 0o600), convey.ShouldBeNil)

		cfg := config.New()
		cfg.Listing.SourceFile = ids
		cfg.Listing.Path = filepath.Join(dir, "url.json")
		svc, closeFn, err := buildService(context.Background(), cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer closeFn()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			schedule(ctx, svc, time.Hour, logger.Get())
			close(done)
		}()

		convey.Convey("Then it runs immediately and stops with the context", func() {
			deadline := time.Now().Add(5 * time.Second)
			for svc.LastOutcome() == nil && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			convey.So(svc.LastOutcome(), convey.ShouldNotBeNil)
			cancel()
			<-done
		})
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	convey.Convey("When updating system metrics", t, func() {
		updateSystemMetrics()

		convey.Convey("Then the registry exposes them", func() {
			n, err := testutil.GatherAndCount(metrics.GetRegistry(), "stockwatch_monitor_system_goroutine_count")
			convey.So(err, convey.ShouldBeNil)
			convey.So(n, convey.ShouldEqual, 1)
		})
	})
}
