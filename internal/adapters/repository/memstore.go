package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ismailopm12/coffeeqc/internal/domain/intake"
	"github.com/ismailopm12/coffeeqc/internal/domain/types"
	"github.com/ismailopm12/coffeeqc/pkg/metrics"
)

// MemStore keeps evaluations in memory. Ranked evaluations are additionally
// kept in a per-kind slice sorted by score desc, ID asc.
type MemStore struct {
	mu     sync.RWMutex
	byID   map[string]types.Evaluation
	ranked map[string][]types.Evaluation
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		byID:   make(map[string]types.Evaluation),
		ranked: make(map[string][]types.Evaluation),
	}
}

var _ Store = (*MemStore)(nil)

func less(a, b types.Evaluation) bool {
	if *a.Outcome.Score != *b.Outcome.Score {
		return *a.Outcome.Score > *b.Outcome.Score
	}
	return a.ID < b.ID
}

// Save implements Store.
func (s *MemStore) Save(_ context.Context, e types.Evaluation) error { //nolint:gocritic // hugeParam: stored by value
	if e.ID == "" {
		return fmt.Errorf("save evaluation: empty id")
	}
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.byID[e.ID]; ok {
		s.unrank(prev)
	}
	s.byID[e.ID] = e
	if e.Outcome.Score != nil {
		list := s.ranked[e.Outcome.Kind]
		i := sort.Search(len(list), func(i int) bool { return !less(list[i], e) })
		list = append(list, types.Evaluation{})
		copy(list[i+1:], list[i:])
		list[i] = e
		s.ranked[e.Outcome.Kind] = list
	}
	metrics.UpdateRepositoryRecordsTotal(len(s.byID))
	return nil
}

func (s *MemStore) unrank(e types.Evaluation) { //nolint:gocritic // hugeParam: read only
	if e.Outcome.Score == nil {
		return
	}
	list := s.ranked[e.Outcome.Kind]
	for i := range list {
		if list[i].ID == e.ID {
			s.ranked[e.Outcome.Kind] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Get implements Store.
func (s *MemStore) Get(_ context.Context, id string) (types.Evaluation, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[id]
	if !ok {
		return types.Evaluation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

// Top implements Store. Unranked kinds are rejected before the limit is
// checked.
func (s *MemStore) Top(_ context.Context, kind string, n int) ([]types.Evaluation, error) {
	if !intake.Kind(kind).Ranked() {
		return nil, fmt.Errorf("%w: %s", ErrUnranked, kind)
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.ranked[kind]
	if n > len(list) {
		n = len(list)
	}
	out := make([]types.Evaluation, n)
	copy(out, list[:n])
	return out, nil
}

// Count implements Store.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
