package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	repository "github.com/okian/stockwatch/internal/adapters/repository"
	"github.com/okian/stockwatch/internal/domain/model"
	"github.com/okian/stockwatch/pkg/logger"
)

// DefaultQuery lists the url keys of product events dated from this year on.
// Columns are matched by name; only url is required.
const DefaultQuery = `SELECT e.event_id::text AS event_id,
       e.name AS event,
       e.starts_on::text AS date,
       e.url_key AS url,
       'product' AS product_type
FROM catalog_events e
WHERE e.starts_on >= date_trunc('year', now())
ORDER BY e.starts_on`

// Querier is the subset of pgxpool.Pool used by the source.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads identifiers from the catalog database.
type PostgresSource struct {
	db      Querier
	query   string
	timeout time.Duration
	store   repository.ListingStore
	logger  logger.Logger
}

// NewPostgresSource builds a source over an open pool or any Querier.
func NewPostgresSource(db Querier, store repository.ListingStore, query string, timeout time.Duration) *PostgresSource {
	if query == "" {
		query = DefaultQuery
	}
	return &PostgresSource{
		db:      db,
		query:   query,
		timeout: timeout,
		store:   store,
		logger:  logger.Get().Named("source"),
	}
}

// Connect opens a pgx pool for dsn and pings it.
func Connect(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: parse dsn: %w", model.ErrSourceUnavailable, err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrSourceUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %w", model.ErrSourceUnavailable, err)
	}
	return pool, nil
}

// Load runs the listing query, persists the rows and returns the identifiers.
func (s *PostgresSource) Load(ctx context.Context) ([]model.Identifier, error) {
	if s.db == nil {
		return nil, fmt.Errorf("%w: no database", model.ErrSourceUnavailable)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	rows, err := s.db.Query(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", model.ErrSourceUnavailable, err)
	}
	listing, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[repository.ListingRow])
	if err != nil {
		return nil, fmt.Errorf("%w: scan: %w", model.ErrSourceUnavailable, err)
	}

	s.logger.Info(ctx, "identifier listing loaded", logger.Int("rows", len(listing)))
	return persistAndLoad(ctx, s.store, listing)
}
