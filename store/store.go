// Package store loads the canonical listing set from the backing
// spreadsheet and caches it for a bounded time window. The cached slice is
// shared read-only across concurrent queries; a reload swaps it wholesale.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"roilens/models"
	"roilens/normalize"
)

// ErrDataFileMissing marks a missing backing file. This is surfaced rather
// than swallowed: an empty result would be indistinguishable from a correct
// zero-match response and mask a deployment misconfiguration.
var ErrDataFileMissing = errors.New("listing data file not found")

const (
	DefaultTTL     = time.Hour
	DefaultMaxRows = 8000
)

type Store struct {
	path    string
	ttl     time.Duration
	maxRows int
	norm    normalize.Config

	mu       sync.Mutex
	listings []models.Listing
	loadedAt time.Time
}

// New creates a store over the spreadsheet at path. Zero ttl/maxRows fall
// back to the defaults.
func New(path string, ttl time.Duration, maxRows int, norm normalize.Config) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	return &Store{path: path, ttl: ttl, maxRows: maxRows, norm: norm}
}

// Listings returns the canonical listing set, reloading from disk when the
// cache window has elapsed. The mutex makes concurrent cache misses
// single-flight: one caller reloads, the rest wait and reuse its result.
// Callers must treat the returned slice as read-only.
func (s *Store) Listings(ctx context.Context) ([]models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listings != nil && time.Since(s.loadedAt) < s.ttl {
		return s.listings, nil
	}
	return s.reloadLocked(ctx)
}

// Refresh forces a reload regardless of cache age. Used by the scheduler to
// warm the cache outside the request path.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.reloadLocked(ctx)
	return err
}

func (s *Store) reloadLocked(ctx context.Context) ([]models.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	listings, err := s.load()
	if err != nil {
		return nil, err
	}

	s.listings = listings
	s.loadedAt = time.Now()
	log.Printf("Loaded %d listings from %s", len(listings), s.path)
	return s.listings, nil
}

// load reads the first worksheet, treats its first row as the header and
// normalizes every data row, dropping junk rows and anything past the row
// cap.
func (s *Store) load() ([]models.Listing, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDataFileMissing, s.path)
		}
		return nil, fmt.Errorf("stat data file: %w", err)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open data file %s: %w", s.path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []models.Listing{}, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		// Header only, or nothing at all. Non-fatal.
		return []models.Listing{}, nil
	}

	header := rows[0]
	data := rows[1:]
	if len(data) > s.maxRows {
		log.Printf("Row cap reached: using %d of %d rows", s.maxRows, len(data))
		data = data[:s.maxRows]
	}

	listings := make([]models.Listing, 0, len(data))
	for i, cells := range data {
		row := make(models.Row, len(header))
		for col, name := range header {
			if name == "" {
				continue
			}
			if col < len(cells) {
				row[name] = cells[col]
			} else {
				row[name] = ""
			}
		}

		if l, ok := normalize.Row(i, row, s.norm); ok {
			listings = append(listings, l)
		}
	}

	return listings, nil
}
