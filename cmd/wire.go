package main

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/stockwatch/internal/adapters/catalog"
	"github.com/okian/stockwatch/internal/adapters/report"
	"github.com/okian/stockwatch/internal/adapters/repository"
	"github.com/okian/stockwatch/internal/adapters/source"
	app "github.com/okian/stockwatch/internal/app"
	"github.com/okian/stockwatch/internal/config"
	"github.com/okian/stockwatch/internal/domain/extract"
	"github.com/okian/stockwatch/pkg/logger"
)

// buildService assembles the monitor from configuration. The returned close
// function releases the database pool when one was opened.
func buildService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, func(), error) {
	closeFn := func() {}

	store, err := repository.NewFileListingStore(cfg.Listing.Path)
	if err != nil {
		return nil, closeFn, err
	}

	src, closeFn, err := newSource(ctx, cfg, store)
	if err != nil {
		return nil, func() {}, err
	}

	lookup, err := newLookup(cfg, log)
	if err != nil {
		closeFn()
		return nil, func() {}, err
	}

	loc, err := cfg.Location()
	if err != nil {
		closeFn()
		return nil, func() {}, err
	}

	reporter, err := newReporter(ctx, cfg, loc, log)
	if err != nil {
		closeFn()
		return nil, func() {}, err
	}

	svc, err := app.New(src, lookup, store,
		app.WithLogger(log.Named("service")),
		app.WithThreshold(cfg.LowStockThreshold),
		app.WithConcurrency(cfg.Concurrency),
		app.WithExtractor(extract.New(
			extract.WithSponsorRules(cfg.SponsorExclusions),
			extract.WithItemRules(cfg.ItemExclusions),
		)),
		app.WithReporter(reporter),
	)
	if err != nil {
		closeFn()
		return nil, func() {}, err
	}
	return svc, closeFn, nil
}

func newSource(ctx context.Context, cfg *config.Config, store repository.ListingStore) (app.IdentifierSource, func(), error) {
	if cfg.Listing.SourceFile != "" {
		return source.NewFileSource(cfg.Listing.SourceFile, store), func() {}, nil
	}
	pool, err := source.Connect(ctx, cfg.Database.DSN, cfg.Database.MaxConns)
	if err != nil {
		return nil, func() {}, err
	}
	return source.NewPostgresSource(pool, store, cfg.Database.Query, cfg.Database.Timeout), pool.Close, nil
}

func newLookup(cfg *config.Config, log logger.Logger) (*catalog.Client, error) {
	opts := []catalog.Option{
		catalog.WithTimeout(cfg.Catalog.Timeout),
		catalog.WithLogger(log.Named("catalog")),
	}
	if cfg.Catalog.RatePerSecond > 0 {
		opts = append(opts, catalog.WithRateLimit(cfg.Catalog.RatePerSecond, cfg.Catalog.Burst))
	}
	for k, v := range cfg.Catalog.Headers {
		opts = append(opts, catalog.WithHeader(k, v))
	}
	return catalog.New(cfg.Catalog.Endpoint, opts...)
}

func newReporter(ctx context.Context, cfg *config.Config, loc *time.Location, log logger.Logger) (*report.Multi, error) {
	reporters := []report.Reporter{report.NewLogReporter(log.Named("report-log"))}

	var excel *report.ExcelReporter
	if cfg.Excel.Enabled {
		r, err := report.NewExcelReporter(cfg.Excel.Dir, loc)
		if err != nil {
			return nil, err
		}
		excel = r
		reporters = append(reporters, r)
	}

	if cfg.Mail.Enabled {
		client, err := report.NewSMTPClient(report.MailConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			Timeout:  cfg.Mail.Timeout,
		})
		if err != nil {
			return nil, err
		}
		opts := []report.MailOption{report.WithLocation(loc)}
		if excel != nil && cfg.Mail.AttachSpreadsheet {
			opts = append(opts, report.WithAttachment(excel.PathFor))
		}
		r, err := report.NewMailReporter(client, cfg.Mail.From, cfg.Mail.To, opts...)
		if err != nil {
			return nil, err
		}
		reporters = append(reporters, r)
	}

	if cfg.Archive.Enabled {
		client, err := report.NewS3Client(ctx, cfg.Archive.Region, cfg.Archive.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("archive: %w", err)
		}
		r, err := report.NewArchiveReporter(client, cfg.Archive.Bucket, cfg.Archive.Prefix, cfg.Archive.Retries, cfg.Archive.Backoff)
		if err != nil {
			return nil, err
		}
		reporters = append(reporters, r)
	}

	return report.NewMulti(reporters...), nil
}
