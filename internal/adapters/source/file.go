package source

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	repository "github.com/okian/stockwatch/internal/adapters/repository"
	"github.com/okian/stockwatch/internal/domain/model"
)

// FileSource reads identifiers from a JSON file holding either listing rows
// or a plain array of url keys.
type FileSource struct {
	path  string
	store repository.ListingStore
}

// NewFileSource returns a source reading path.
func NewFileSource(path string, store repository.ListingStore) *FileSource {
	return &FileSource{path: path, store: store}
}

// Load reads the file, persists it as the run listing and returns identifiers.
func (s *FileSource) Load(ctx context.Context) ([]model.Identifier, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrSourceUnavailable, err)
	}

	var rows []repository.ListingRow
	if err := json.Unmarshal(data, &rows); err != nil {
		var keys []string
		if err2 := json.Unmarshal(data, &keys); err2 != nil {
			return nil, fmt.Errorf("%w: decode %s: %w", model.ErrSourceUnavailable, s.path, err)
		}
		rows = make([]repository.ListingRow, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, repository.ListingRow{URL: k})
		}
	}
	return persistAndLoad(ctx, s.store, rows)
}
