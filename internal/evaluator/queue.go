package evaluator

import (
	"sync"
)

// Entry is one candidate waiting for evaluation
type Entry struct {
	Index  int // 1-based submission position
	Domain string
}

// Queue implements a thread-safe FIFO candidate queue with deduplication
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []Entry
	seen    map[string]bool
	stopped bool
}

// NewQueue creates a new candidate queue
func NewQueue() *Queue {
	q := &Queue{
		items: make([]Entry, 0),
		seen:  make(map[string]bool),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push adds an entry unless its domain was already queued or the queue is stopped
// Returns true if added
func (q *Queue) Push(entry Entry) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped || entry.Domain == "" {
		return false
	}

	if q.seen[entry.Domain] {
		return false
	}

	q.seen[entry.Domain] = true
	q.items = append(q.items, entry)

	// Signal waiting workers
	q.cond.Signal()

	return true
}

// Pop removes and returns the first entry from the queue
// Blocks if queue is empty and not stopped
// Returns (entry, true) if successful, (empty, false) if stopped and empty
func (q *Queue) Pop() (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if len(q.items) > 0 {
			entry := q.items[0]
			q.items = q.items[1:]
			return entry, true
		}

		if q.stopped {
			return Entry{}, false
		}

		q.cond.Wait()
	}
}

// Size returns the current number of items in the queue
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsEmpty returns true if the queue has no items
func (q *Queue) IsEmpty() bool {
	return q.Size() == 0
}

// Stop closes the queue to new entries
// Workers blocked on Pop() drain remaining items, then receive false
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stopped = true
	q.cond.Broadcast()
}
