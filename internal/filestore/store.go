// Package filestore keeps the country table as a JSON snapshot on the local filesystem.
//
// The whole table lives in memory behind a read-write lock. Every mutation is
// applied to a copy, written to disk with a temp-file rename, and only then made
// visible to readers, so a failed write leaves both the file and memory unchanged.
package filestore

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stacklok/country-cache-server/internal/service"
)

// FileName is the snapshot file name under the base directory
const FileName = "countries.json"

var (
	// ErrDuplicateName is returned when an insert collides with a stored name
	ErrDuplicateName = errors.New("country name already exists")
)

// Store is a file-backed country table
type Store struct {
	mu        sync.RWMutex
	path      string
	nextID    int64
	countries map[int64]*service.Country
	now       func() time.Time
}

type snapshot struct {
	NextID    int64           `json:"next_id"`
	Countries []countryRecord `json:"countries"`
}

type countryRecord struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	Capital         *string          `json:"capital,omitempty"`
	Region          *string          `json:"region,omitempty"`
	Population      int64            `json:"population"`
	CurrencyCode    *string          `json:"currency_code,omitempty"`
	ExchangeRate    *decimal.Decimal `json:"exchange_rate,omitempty"`
	EstimatedGDP    *decimal.Decimal `json:"estimated_gdp,omitempty"`
	FlagURL         *string          `json:"flag_url,omitempty"`
	LastRefreshedAt time.Time        `json:"last_refreshed_at"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// New opens the store under baseDir, loading an existing snapshot if there is one
func New(baseDir string) (*Store, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	s := &Store{
		path:      filepath.Join(baseDir, FileName),
		nextID:    1,
		countries: make(map[int64]*service.Country),
		now:       func() time.Time { return time.Now().UTC() },
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to parse %s: %w", s.path, err)
	}

	for _, r := range snap.Countries {
		c := fromRecord(r)
		s.countries[c.ID] = c
		if c.ID >= s.nextID {
			s.nextID = c.ID + 1
		}
	}
	if snap.NextID > s.nextID {
		s.nextID = snap.NextID
	}
	return nil
}

// Path returns the snapshot file location
func (s *Store) Path() string {
	return s.path
}

// All returns copies of every stored country ordered by ID
func (s *Store) All() []*service.Country {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*service.Country, 0, len(s.countries))
	for _, c := range s.countries {
		out = append(out, c.Clone())
	}
	slices.SortFunc(out, func(a, b *service.Country) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Count returns the number of stored countries
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.countries)
}

// Get finds a country by case-insensitive name
func (s *Store) Get(name string) (*service.Country, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.findLocked(service.NameKey(name))
	if c == nil {
		return nil, false
	}
	return c.Clone(), true
}

// Delete removes a country by case-insensitive name and returns the removed record
func (s *Store) Delete(name string) (*service.Country, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findLocked(service.NameKey(name))
	if c == nil {
		return nil, false, nil
	}

	next := s.copyLocked()
	delete(next, c.ID)
	if err := s.commitLocked(next, s.nextID); err != nil {
		return nil, false, err
	}
	return c.Clone(), true, nil
}

// Insert stores new countries, assigning their IDs and timestamps on the given records
func (s *Store) Insert(countries []*service.Country) error {
	if len(countries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	taken := make(map[string]bool, len(s.countries)+len(countries))
	for _, c := range s.countries {
		taken[c.Key()] = true
	}

	next := s.copyLocked()
	nextID := s.nextID
	now := s.now()
	ids := make([]int64, len(countries))
	for i, c := range countries {
		key := c.Key()
		if key == "" {
			return fmt.Errorf("country name is required")
		}
		if taken[key] {
			return fmt.Errorf("%w: %s", ErrDuplicateName, c.Name)
		}
		taken[key] = true

		stored := c.Clone()
		stored.ID = nextID
		stored.CreatedAt = now
		stored.UpdatedAt = now
		next[stored.ID] = stored
		ids[i] = nextID
		nextID++
	}

	if err := s.commitLocked(next, nextID); err != nil {
		return err
	}
	for i, c := range countries {
		c.ID = ids[i]
		c.CreatedAt = now
		c.UpdatedAt = now
	}
	return nil
}

// Update applies apply(stored, given) to each stored country matched by ID.
// Countries whose ID is no longer stored are left out and returned as missing.
func (s *Store) Update(countries []*service.Country, apply func(dst, src *service.Country)) ([]*service.Country, error) {
	if len(countries) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyLocked()
	now := s.now()
	var missing []*service.Country
	for _, c := range countries {
		stored, ok := next[c.ID]
		if !ok {
			missing = append(missing, c)
			continue
		}
		updated := stored.Clone()
		apply(updated, c)
		updated.UpdatedAt = now
		next[c.ID] = updated
	}
	if len(missing) == len(countries) {
		return missing, nil
	}

	if err := s.commitLocked(next, s.nextID); err != nil {
		return nil, err
	}
	for _, c := range countries {
		if _, ok := next[c.ID]; ok {
			c.UpdatedAt = now
		}
	}
	return missing, nil
}

func (s *Store) findLocked(key string) *service.Country {
	for _, c := range s.countries {
		if c.Key() == key {
			return c
		}
	}
	return nil
}

// copyLocked returns a shallow copy of the map; stored records are never mutated in place
func (s *Store) copyLocked() map[int64]*service.Country {
	next := make(map[int64]*service.Country, len(s.countries))
	for id, c := range s.countries {
		next[id] = c
	}
	return next
}

func (s *Store) commitLocked(next map[int64]*service.Country, nextID int64) error {
	snap := snapshot{NextID: nextID, Countries: make([]countryRecord, 0, len(next))}
	for _, c := range next {
		snap.Countries = append(snap.Countries, toRecord(c))
	}
	slices.SortFunc(snap.Countries, func(a, b countryRecord) int {
		return cmp.Compare(a.ID, b.ID)
	})

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal countries: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary countries file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename countries file: %w", err)
	}

	s.countries = next
	s.nextID = nextID
	return nil
}

func toRecord(c *service.Country) countryRecord {
	return countryRecord{
		ID:              c.ID,
		Name:            c.Name,
		Capital:         c.Capital,
		Region:          c.Region,
		Population:      c.Population,
		CurrencyCode:    c.CurrencyCode,
		ExchangeRate:    c.ExchangeRate,
		EstimatedGDP:    c.EstimatedGDP,
		FlagURL:         c.FlagURL,
		LastRefreshedAt: c.LastRefreshedAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func fromRecord(r countryRecord) *service.Country {
	return &service.Country{
		ID:              r.ID,
		Name:            r.Name,
		Capital:         r.Capital,
		Region:          r.Region,
		Population:      r.Population,
		CurrencyCode:    r.CurrencyCode,
		ExchangeRate:    r.ExchangeRate,
		EstimatedGDP:    r.EstimatedGDP,
		FlagURL:         r.FlagURL,
		LastRefreshedAt: r.LastRefreshedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
