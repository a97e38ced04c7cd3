// Package ranking keeps accepted evaluation records in their display order.
//
// Order (ascending): records with traffic first, then classification priority,
// then traffic, authority score and backlink count, each descending. Records
// with equal keys keep their insertion order.
package ranking

import (
	"slices"
	"sort"
	"sync"

	"github.com/alvmarrod/domain-finder/internal/domain"
)

// Compare orders two records; negative means a sorts before b
func Compare(a, b domain.EvaluationRecord) int {
	if a.HasTraffic() != b.HasTraffic() {
		if a.HasTraffic() {
			return -1
		}
		return 1
	}
	if pa, pb := a.Classification.Priority(), b.Classification.Priority(); pa != pb {
		if pa < pb {
			return -1
		}
		return 1
	}
	if c := descending(a.Traffic, b.Traffic); c != 0 {
		return c
	}
	if c := descending(a.AuthorityScore, b.AuthorityScore); c != 0 {
		return c
	}
	return descending(float64(a.Backlinks), float64(b.Backlinks))
}

func descending(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}

// Sort stably orders records in place
func Sort(records []domain.EvaluationRecord) {
	slices.SortStableFunc(records, Compare)
}

// IsSorted reports whether records are in ranking order
func IsSorted(records []domain.EvaluationRecord) bool {
	return slices.IsSortedFunc(records, Compare)
}

// Store is a sorted result set. Each insertion is one critical section and
// publishes a fresh snapshot; published snapshots are never modified.
type Store struct {
	mu      sync.RWMutex
	records []domain.EvaluationRecord
	frozen  bool
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{records: []domain.EvaluationRecord{}}
}

// Insert places a record after every record that does not sort after it.
// Returns false if the store is frozen.
func (s *Store) Insert(rec domain.EvaluationRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return false
	}

	idx := sort.Search(len(s.records), func(i int) bool {
		return Compare(rec, s.records[i]) < 0
	})

	next := make([]domain.EvaluationRecord, 0, len(s.records)+1)
	next = append(next, s.records[:idx]...)
	next = append(next, rec)
	next = append(next, s.records[idx:]...)

	s.records = next
	return true
}

// Freeze re-sorts once more and rejects further inserts
func (s *Store) Freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return
	}
	final := slices.Clone(s.records)
	Sort(final)
	s.records = final
	s.frozen = true
}

// Snapshot returns the current ordered records; callers must not modify it
func (s *Store) Snapshot() []domain.EvaluationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Len returns the number of stored records
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Frozen reports whether the store accepts inserts
func (s *Store) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}
