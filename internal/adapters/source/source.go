// Package source loads the identifiers a run monitors.
package source

import (
	"context"
	"fmt"
	"strings"

	repository "github.com/okian/stockwatch/internal/adapters/repository"
	"github.com/okian/stockwatch/internal/domain/model"
)

// persistAndLoad writes rows to the transient store and reads them back,
// so the run works from the same listing that cleanup later removes.
func persistAndLoad(ctx context.Context, store repository.ListingStore, rows []repository.ListingRow) ([]model.Identifier, error) {
	if err := store.Save(ctx, rows); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrSourceUnavailable, err)
	}
	saved, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrSourceUnavailable, err)
	}
	return identifiers(saved), nil
}

// identifiers extracts url keys, trimming a leading slash and dropping blanks.
// Repeats are kept; the pipeline tolerates them.
func identifiers(rows []repository.ListingRow) []model.Identifier {
	out := make([]model.Identifier, 0, len(rows))
	for _, r := range rows {
		key := strings.TrimPrefix(strings.TrimSpace(r.URL), "/")
		if i := strings.LastIndex(key, "/"); i >= 0 {
			key = key[i+1:]
		}
		if key == "" {
			continue
		}
		out = append(out, model.Identifier(key))
	}
	return out
}
