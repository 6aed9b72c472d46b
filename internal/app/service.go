// Package service runs the low-stock monitor: load identifiers, fan out
// catalog lookups, aggregate alerts and hand the outcome to reporters.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/stockwatch/internal/adapters/worker"
	"github.com/okian/stockwatch/internal/domain/aggregate"
	"github.com/okian/stockwatch/internal/domain/extract"
	"github.com/okian/stockwatch/internal/domain/model"
	"github.com/okian/stockwatch/pkg/logger"
	"github.com/okian/stockwatch/pkg/metrics"
)

// IdentifierSource yields the identifiers to check in one run.
type IdentifierSource interface {
	Load(ctx context.Context) ([]model.Identifier, error)
}

// Lookup fetches the inventory record for one identifier.
type Lookup interface {
	Fetch(ctx context.Context, id model.Identifier) (*model.InventoryRecord, error)
}

// TransientStore holds per-run scratch state removed at cleanup.
type TransientStore interface {
	Remove(ctx context.Context) error
}

// Reporter receives the outcome of a run with at least one alert group.
type Reporter interface {
	Deliver(ctx context.Context, outcome *model.RunOutcome) error
}

// Service implements the run orchestrator and the HTTP API dependencies.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	source    IdentifierSource
	lookup    Lookup
	store     TransientStore
	reporter  Reporter
	extractor *extract.Extractor

	// Configuration
	threshold   int
	concurrency int

	// State
	running atomic.Bool
	runs    int
	last    *model.RunOutcome

	logger logger.Logger
	now    func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithThreshold sets the inclusive low-stock threshold.
func WithThreshold(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.threshold = n
		}
	}
}

// WithConcurrency sets the number of concurrent lookups.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithExtractor replaces the default extractor and its denylists.
func WithExtractor(e *extract.Extractor) Option {
	return func(s *Service) {
		if e != nil {
			s.extractor = e
		}
	}
}

// WithReporter sets where run outcomes are delivered.
func WithReporter(r Reporter) Option {
	return func(s *Service) { s.reporter = r }
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service around its three required collaborators.
func New(source IdentifierSource, lookup Lookup, store TransientStore, opts ...Option) (*Service, error) {
	if source == nil || lookup == nil || store == nil {
		return nil, ErrMissingDependency
	}
	s := &Service{
		source:      source,
		lookup:      lookup,
		store:       store,
		threshold:   extract.DefaultThreshold,
		concurrency: 10,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.extractor == nil {
		s.extractor = extract.New()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s, nil
}

// lookupResult is what one successful task reports back.
type lookupResult struct {
	id       model.Identifier
	notFound bool
	alerts   int
}

// RunOnce executes one full run. The returned outcome is never nil, even when
// an error is returned. Concurrent calls get ErrRunInProgress.
func (s *Service) RunOnce(ctx context.Context) (*model.RunOutcome, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	out := &model.RunOutcome{
		RunID:       uuid.NewString(),
		StartedAt:   s.now(),
		NotFound:    []model.Identifier{},
		Failures:    []model.Failure{},
		AlertGroups: []model.AlertGroup{},
	}
	log := s.logger.With(logger.String("run_id", out.RunID))
	log.Info(ctx, "run started")

	runErr := s.execute(ctx, log, out)

	out.Enter(model.StateCleanup)
	// cleanup must run even after cancellation
	if err := s.store.Remove(context.WithoutCancel(ctx)); err != nil {
		metrics.RecordErrorByComponent("service", "cleanup")
		log.Warn(ctx, "cleanup failed", logger.Error(err))
	}
	out.Enter(model.StateDone)
	out.FinishedAt = s.now()

	s.finish(ctx, log, out, runErr)
	return out, runErr
}

func (s *Service) execute(ctx context.Context, log logger.Logger, out *model.RunOutcome) error {
	out.Enter(model.StateLoadIdentifiers)
	ids, err := s.source.Load(ctx)
	if err != nil {
		out.Enter(model.StateFailed)
		out.Failures = append(out.Failures, model.Failure{
			Kind:    model.KindSourceUnavailable,
			Message: err.Error(),
		})
		log.Error(ctx, "identifier source unavailable", logger.Error(err))
		if errors.Is(err, model.ErrSourceUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", model.ErrSourceUnavailable, err)
	}
	out.Identifiers = len(ids)
	metrics.UpdateIdentifiersLoaded(len(ids))
	log.Info(ctx, "identifiers loaded", logger.Int("count", len(ids)))

	out.Enter(model.StateFetching)
	agg := aggregate.New()
	res, poolErr := worker.Run(ctx, ids, s.concurrency, s.task(agg), worker.WithLogger(log.Named("worker-pool")))
	if poolErr != nil && res.Results == nil {
		// configuration error, nothing ran
		return poolErr
	}

	for _, r := range res.Results {
		out.Successes++
		if r.notFound {
			out.NotFound = append(out.NotFound, r.id)
		}
	}
	for _, te := range res.Errors {
		out.Failures = append(out.Failures, model.Failure{
			Identifier: te.Identifier,
			Kind:       model.KindLookupFailure,
			Message:    te.Message(),
		})
	}
	if skipped := len(ids) - res.Processed(); skipped > 0 {
		out.Failures = append(out.Failures, model.Failure{
			Kind:    model.KindLookupFailure,
			Message: fmt.Sprintf("run canceled: %d identifiers not processed", skipped),
		})
	}

	out.Enter(model.StateAggregating)
	if groups := agg.Finalize(); groups != nil {
		out.AlertGroups = groups
	}
	metrics.UpdateAlertGroups(len(out.AlertGroups))

	if poolErr != nil {
		log.Warn(ctx, "run canceled during fetching", logger.Error(poolErr))
		return poolErr
	}

	if len(out.AlertGroups) == 0 {
		log.Info(ctx, "nothing to report")
		return nil
	}

	out.Enter(model.StateReporting)
	out.FinishedAt = s.now()
	if s.reporter != nil {
		if err := s.reporter.Deliver(ctx, out); err != nil {
			log.Error(ctx, "reporting failed", logger.Error(err))
		}
	}
	return nil
}

// task builds the per-identifier work: fetch, extract, aggregate.
func (s *Service) task(agg *aggregate.Aggregator) worker.Task[lookupResult] {
	return func(ctx context.Context, id model.Identifier) (lookupResult, error) {
		rec, err := s.lookup.Fetch(ctx, id)
		if errors.Is(err, model.ErrNotFound) {
			return lookupResult{id: id, notFound: true}, nil
		}
		if err != nil {
			return lookupResult{}, err
		}
		if rec == nil {
			return lookupResult{id: id, notFound: true}, nil
		}

		entries := s.extractor.Extract(rec, s.threshold)
		event := rec.EventName
		if event == "" {
			event = string(id)
		}
		if err := agg.Add(event, entries); err != nil {
			return lookupResult{}, err
		}
		metrics.RecordAlertsRaised(len(entries))
		return lookupResult{id: id, alerts: len(entries)}, nil
	}
}

func (s *Service) finish(ctx context.Context, log logger.Logger, out *model.RunOutcome, runErr error) {
	status := "done"
	switch {
	case out.Failed():
		status = "failed"
	case runErr != nil:
		status = "canceled"
	default:
		metrics.MarkRunSuccess(out.FinishedAt)
	}
	metrics.RecordRun(status, out.Duration())

	s.mu.Lock()
	s.runs++
	s.last = out
	s.mu.Unlock()

	log.Info(ctx, "run finished",
		logger.String("status", status),
		logger.Int("identifiers", out.Identifiers),
		logger.Int("successes", out.Successes),
		logger.Int("failures", len(out.Failures)),
		logger.Int("not_found", len(out.NotFound)),
		logger.Int("alert_groups", len(out.AlertGroups)),
		logger.Bool("reported", out.Reported()),
		logger.Duration("took", out.Duration()),
	)
}

// Running reports whether a run is in progress.
func (s *Service) Running() bool { return s.running.Load() }

// LastOutcome returns the most recent finished run, or nil.
func (s *Service) LastOutcome() *model.RunOutcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"running":     s.running.Load(),
		"runs":        s.runs,
		"threshold":   s.threshold,
		"concurrency": s.concurrency,
	}
	if s.last != nil {
		stats["lastRunID"] = s.last.RunID
		stats["lastState"] = string(s.last.State())
		stats["lastFailed"] = s.last.Failed()
		stats["lastFinishedAt"] = s.last.FinishedAt
		stats["lastDurationMS"] = s.last.Duration().Milliseconds()
		stats["lastIdentifiers"] = s.last.Identifiers
		stats["lastSuccesses"] = s.last.Successes
		stats["lastFailures"] = len(s.last.Failures)
		stats["lastAlertGroups"] = len(s.last.AlertGroups)
	}
	return stats
}
