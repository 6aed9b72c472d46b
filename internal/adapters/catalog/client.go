// Package catalog looks up event inventory in the remote GraphQL catalog.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/okian/stockwatch/internal/domain/model"
	"github.com/okian/stockwatch/pkg/logger"
	"github.com/okian/stockwatch/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultTimeout   = 15 * time.Second
	maxResponseBytes = 5 * 1024 * 1024
	userAgent        = "stockwatch/1.0"
)

// Lookup outcome labels.
const (
	outcomeFound    = "found"
	outcomeNotFound = "not_found"
	outcomeFailure  = "failure"
)

// Client fetches one inventory record per identifier. It never retries;
// every transport or protocol problem surfaces as model.ErrLookup.
type Client struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
	limiter  *rate.Limiter
	headers  map[string]string
	logger   logger.Logger
}

// New creates a catalog client for a GraphQL endpoint.
func New(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}

	c := &Client{
		endpoint: u.String(),
		timeout:  defaultTimeout,
		headers:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{}
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("catalog")
	}
	return c, nil
}

// Fetch returns the inventory record for id. It returns model.ErrNotFound
// when the catalog has no product for id or the product has no related
// products (the event cart is closed).
func (c *Client) Fetch(ctx context.Context, id model.Identifier) (*model.InventoryRecord, error) {
	start := time.Now()
	rec, err := c.fetch(ctx, id)
	latency := float64(time.Since(start).Milliseconds())

	switch {
	case err == nil:
		metrics.RecordLookup(outcomeFound, latency)
	case errors.Is(err, model.ErrNotFound):
		metrics.RecordLookup(outcomeNotFound, latency)
		c.logger.Info(ctx, "cart closed", logger.String("identifier", string(id)))
	default:
		metrics.RecordLookup(outcomeFailure, latency)
		metrics.RecordErrorByComponent("catalog", errorType(err))
	}
	return rec, err
}

func (c *Client) fetch(ctx context.Context, id model.Identifier) (*model.InventoryRecord, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, fmt.Errorf("%w: %w", model.ErrLookup, ErrInvalidIdentifier)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limit wait for %s: %w", model.ErrLookup, id, err)
		}
	}

	body, err := json.Marshal(graphqlRequest{
		Query:     productsQuery,
		Variables: map[string]any{"urlKey": string(id)},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", model.ErrLookup, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", model.ErrLookup, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrLookup, id, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, fmt.Errorf("%w: %s: HTTP %d", model.ErrLookup, id, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %w", model.ErrLookup, id, err)
	}

	var out productsResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: decode body: %w", model.ErrLookup, id, err)
	}
	if len(out.Errors) > 0 {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("%w: %s: graphql: %s", model.ErrLookup, id, strings.Join(msgs, "; "))
	}
	if out.Data == nil || out.Data.Products == nil {
		return nil, fmt.Errorf("%w: %s: response has no products field", model.ErrLookup, id)
	}

	items := out.Data.Products.Items
	if len(items) == 0 || items[0] == nil || items[0].RelatedProducts == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrNotFound, id)
	}

	return items[0].toRecord(id), nil
}

// errorType maps a lookup error to a metrics label.
func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrInvalidIdentifier):
		return "invalid_identifier"
	default:
		return "lookup_failure"
	}
}
