// Package repository persists the transient identifier listing a run works from.
package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// ListingRow is one row of the identifier listing produced by the source query.
type ListingRow struct {
	EventID     string `json:"event_id,omitempty" db:"event_id"`
	Event       string `json:"event,omitempty" db:"event"`
	Date        string `json:"date,omitempty" db:"date"`
	URL         string `json:"url" db:"url"`
	ProductType string `json:"product_type,omitempty" db:"product_type"`
}

// ListingStore holds the intermediate listing between loading and fetching.
type ListingStore interface {
	Save(ctx context.Context, rows []ListingRow) error
	Load(ctx context.Context) ([]ListingRow, error)
	// Remove deletes the listing. Removing a missing listing is not an error.
	Remove(ctx context.Context) error
}

// FileListingStore keeps the listing as a JSON file on disk.
type FileListingStore struct {
	mu   sync.Mutex
	path string
}

// NewFileListingStore returns a store writing to path.
func NewFileListingStore(path string) (*FileListingStore, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	return &FileListingStore{path: path}, nil
}

// Path returns the listing file location.
func (s *FileListingStore) Path() string { return s.path }

// Save writes rows atomically (temp file + rename).
func (s *FileListingStore) Save(ctx context.Context, rows []ListingRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rows == nil {
		rows = []ListingRow{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrSave, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), directoryPermission); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	if err := os.Chmod(tmpName, filePermission); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	return nil
}

// Load reads the listing back.
func (s *FileListingStore) Load(ctx context.Context) ([]ListingRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	var rows []ListingRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrLoad, s.path, err)
	}
	return rows, nil
}

// Remove deletes the listing file.
func (s *FileListingStore) Remove(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrRemove, err)
	}
	return nil
}
