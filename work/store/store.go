package store

import (
	"math/rand/v2"
	"slices"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"m3u-parser/work/filter"
	"m3u-parser/work/logger"
	"m3u-parser/work/types"
)

// Store holds the working collection of records together with a backup
// snapshot taken at load time. Filters and sorts act on the working
// collection; ResetOperations restores it from the backup.
//
// All methods are safe for concurrent use. Records are deep-copied on the way
// in and out so callers never share memory with the store.
type Store struct {
	mu      sync.RWMutex
	current []types.StreamRecord
	backup  []types.StreamRecord

	filters                *filter.FilterManager
	rnd                    *rand.Rand
	legacyRemoveByCategory bool
}

// Option customizes a Store.
type Option func(*Store)

// WithRand sets the random source used by GetRandomStream.
func WithRand(r *rand.Rand) Option {
	return func(s *Store) {
		s.rnd = r
	}
}

// WithFilterManager shares a compiled-pattern cache between stores.
func WithFilterManager(fm *filter.FilterManager) Option {
	return func(s *Store) {
		s.filters = fm
	}
}

// WithLegacyRemoveByCategory makes RemoveByCategory keep matching records
// instead of dropping them, as older releases of the library did.
func WithLegacyRemoveByCategory() Option {
	return func(s *Store) {
		s.legacyRemoveByCategory = true
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		current: []types.StreamRecord{},
		backup:  []types.StreamRecord{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.filters == nil {
		s.filters = filter.NewFilterManager()
	}
	return s
}

// Load replaces the working collection and the backup with copies of records.
func (s *Store) Load(records []types.StreamRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = types.CloneRecords(records)
	s.backup = types.CloneRecords(records)
}

// Streams returns a copy of the working collection.
func (s *Store) Streams() []types.StreamRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.CloneRecords(s.current)
}

// Len returns the size of the working collection.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.current)
}

// FilterBy keeps the records whose key value matches any of the filter
// fragments (retrieve=true) or none of them (retrieve=false). Matching is
// case-insensitive and absent values match as "". An empty filter list leaves
// the collection unchanged.
func (s *Store) FilterBy(key string, filters []string, retrieve, nestedKey bool, keySplitter string) error {
	field, err := types.ResolveField(key, nestedKey, keySplitter)
	if err != nil {
		return err
	}
	if len(filters) == 0 {
		return nil
	}

	re, err := s.filters.GetOrCreateFilter(filters)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = filter.FilterRecords(s.current, field, re, retrieve)
	return nil
}

// RetrieveByExtension keeps records whose URL matches any of extensions.
func (s *Store) RetrieveByExtension(extensions []string) error {
	return s.FilterBy("url", extensions, true, false, "")
}

// RemoveByExtension drops records whose URL matches any of extensions.
func (s *Store) RemoveByExtension(extensions []string) error {
	return s.FilterBy("url", extensions, false, false, "")
}

// RetrieveByCategory keeps records whose category matches any of categories.
func (s *Store) RetrieveByCategory(categories []string) error {
	return s.FilterBy("category", categories, true, false, "")
}

// RemoveByCategory drops records whose category matches any of categories.
func (s *Store) RemoveByCategory(categories []string) error {
	return s.FilterBy("category", categories, s.legacyRemoveByCategory, false, "")
}

// SortBy orders the working collection by key using English collation.
// The sort is stable. Absent values come first when ascending and last when
// descending.
func (s *Store) SortBy(key string, asc, nestedKey bool, keySplitter string) error {
	field, err := types.ResolveField(key, nestedKey, keySplitter)
	if err != nil {
		return err
	}

	// a Collator is not safe for concurrent use
	col := collate.New(language.English)

	compare := func(a, b types.StreamRecord) int {
		av, aok := field.Value(&a)
		bv, bok := field.Value(&b)

		var c int
		switch {
		case !aok && !bok:
			c = 0
		case !aok:
			c = -1
		case !bok:
			c = 1
		default:
			c = col.CompareString(av, bv)
		}

		if !asc {
			return -c
		}
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	slices.SortStableFunc(s.current, compare)
	logger.Debug("{store - SortBy} sorted %d records by %s asc=%v", len(s.current), field, asc)
	return nil
}

// GetRandomStream returns a copy of a uniformly chosen record. With shuffle
// set the working collection is first shuffled in place, and that new order
// is visible to later calls.
func (s *Store) GetRandomStream(shuffle bool) (types.StreamRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.current) == 0 {
		return types.StreamRecord{}, types.ErrEmptyCollection
	}

	if shuffle {
		for i := len(s.current) - 1; i > 0; i-- {
			j := s.intN(i + 1)
			s.current[i], s.current[j] = s.current[j], s.current[i]
		}
	}

	return s.current[s.intN(len(s.current))].Clone(), nil
}

// ResetOperations restores the working collection from the backup.
func (s *Store) ResetOperations() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = types.CloneRecords(s.backup)
}

func (s *Store) intN(n int) int {
	if s.rnd != nil {
		return s.rnd.IntN(n)
	}
	return rand.IntN(n)
}
