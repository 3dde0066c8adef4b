package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/okian/polo/internal/domain/model"
)

// MemoryStore is an in-memory Store.
//
// Ids are wall-clock milliseconds at creation. Two entries in the same
// millisecond, or a clock that steps backwards, get last+1 instead so ids stay
// strictly increasing and chronological order survives.
type MemoryStore struct {
	mu      sync.RWMutex
	clock   clockwork.Clock
	records []model.Record // id ascending
	lastID  int64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Add(ctx context.Context, d Draft) (model.Record, error) {
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.clock.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	rec := model.Record{ID: id, Clock: d.Clock, Number: d.Number, Team: d.Team, Kind: d.Kind}
	s.records = append(s.records, rec)
	return rec, nil
}

// index returns the position of id. Caller holds the lock.
func (s *MemoryStore) index(id int64) (int, bool) {
	return slices.BinarySearchFunc(s.records, id, func(r model.Record, id int64) int {
		return cmp.Compare(r.ID, id)
	})
}

func (s *MemoryStore) Delete(_ context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index(id)
	if !ok {
		return false
	}
	s.records = slices.Delete(s.records, i, i+1)
	return true
}

func (s *MemoryStore) SetNumber(_ context.Context, id int64, number string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index(id)
	if !ok {
		return false
	}
	s.records[i].Number = number
	return true
}

func (s *MemoryStore) Get(_ context.Context, id int64) (model.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index(id)
	if !ok {
		return model.Record{}, false
	}
	return s.records[i], true
}

func (s *MemoryStore) List(_ context.Context) []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

func (s *MemoryStore) Replace(_ context.Context, records []model.Record) error {
	next := slices.Clone(records)
	slices.SortFunc(next, func(a, b model.Record) int { return cmp.Compare(a.ID, b.ID) })
	for i, r := range next {
		if r.ID <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidID, r.ID)
		}
		if i > 0 && next[i-1].ID == r.ID {
			return fmt.Errorf("%w: %d", ErrDuplicateID, r.ID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = next
	// lastID never goes down so ids handed out before a restore are not reused.
	if n := len(next); n > 0 && next[n-1].ID > s.lastID {
		s.lastID = next[n-1].ID
	}
	return nil
}

func (s *MemoryStore) Reset(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}

func (s *MemoryStore) Len(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
