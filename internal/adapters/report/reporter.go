// Package report delivers run outcomes to log, spreadsheet, mail and archive sinks.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/stockwatch/internal/domain/model"
	"github.com/okian/stockwatch/pkg/logger"
	"github.com/okian/stockwatch/pkg/metrics"
)

// Reporter delivers one run outcome. Delivery errors are returned to the
// caller for logging only; they never change the run.
type Reporter interface {
	Name() string
	Deliver(ctx context.Context, outcome *model.RunOutcome) error
}

// Multi fans an outcome out to several reporters in order.
type Multi struct {
	reporters []Reporter
	logger    logger.Logger
}

// NewMulti combines reporters; nil entries are skipped.
func NewMulti(reporters ...Reporter) *Multi {
	m := &Multi{logger: logger.Get().Named("report")}
	for _, r := range reporters {
		if r != nil {
			m.reporters = append(m.reporters, r)
		}
	}
	return m
}

// Name implements Reporter.
func (m *Multi) Name() string { return "multi" }

// Len returns the number of wrapped reporters.
func (m *Multi) Len() int { return len(m.reporters) }

// Deliver calls every reporter even when an earlier one fails and returns
// the joined errors.
func (m *Multi) Deliver(ctx context.Context, outcome *model.RunOutcome) error {
	var errs []error
	for _, r := range m.reporters {
		start := time.Now()
		err := r.Deliver(ctx, outcome)
		if err != nil {
			metrics.RecordReportDelivery(r.Name(), "error")
			metrics.RecordErrorByComponent("report", r.Name())
			m.logger.Error(ctx, "report delivery failed",
				logger.String("reporter", r.Name()),
				logger.String("run_id", outcome.RunID),
				logger.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
			continue
		}
		metrics.RecordReportDelivery(r.Name(), "ok")
		m.logger.Debug(ctx, "report delivered",
			logger.String("reporter", r.Name()),
			logger.Duration("took", time.Since(start)),
		)
	}
	return errors.Join(errs...)
}
