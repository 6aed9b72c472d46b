package report

import (
	"context"

	"github.com/okian/stockwatch/internal/domain/model"
	"github.com/okian/stockwatch/pkg/logger"
)

// LogReporter writes the run summary to the structured log.
type LogReporter struct {
	logger logger.Logger
}

// NewLogReporter returns a reporter logging through l, or the global logger.
func NewLogReporter(l logger.Logger) *LogReporter {
	if l == nil {
		l = logger.Get().Named("report-log")
	}
	return &LogReporter{logger: l}
}

// Name implements Reporter.
func (r *LogReporter) Name() string { return "log" }

// Deliver implements Reporter.
func (r *LogReporter) Deliver(ctx context.Context, o *model.RunOutcome) error {
	r.logger.Info(ctx, "low stock report",
		logger.String("run_id", o.RunID),
		logger.Int("identifiers", o.Identifiers),
		logger.Int("successes", o.Successes),
		logger.Int("failures", len(o.Failures)),
		logger.Int("not_found", len(o.NotFound)),
		logger.Int("alert_groups", len(o.AlertGroups)),
		logger.Int("alerts", o.AlertCount()),
	)
	for _, g := range o.AlertGroups {
		r.logger.Info(ctx, "low stock event",
			logger.String("run_id", o.RunID),
			logger.String("event", g.EventName),
			logger.Any("entries", g.Entries),
		)
	}
	for _, f := range o.Failures {
		r.logger.Warn(ctx, "lookup failure",
			logger.String("run_id", o.RunID),
			logger.String("identifier", string(f.Identifier)),
			logger.String("kind", string(f.Kind)),
			logger.String("message", f.Message),
		)
	}
	return nil
}
