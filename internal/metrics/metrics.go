package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of run counters
type Snapshot struct {
	StartTime          time.Time      `json:"start_time"`
	EndTime            time.Time      `json:"end_time,omitempty"`
	CandidatesChecked  int            `json:"candidates_checked"`
	CandidatesAccepted int            `json:"candidates_accepted"`
	CandidatesRejected int            `json:"candidates_rejected"`
	WorkerPanics       int            `json:"worker_panics"`
	LookupCalls        map[string]int `json:"lookup_calls"`
	LookupFailures     map[string]int `json:"lookup_failures"`
	TotalLookupTimeMs  int64          `json:"total_lookup_time_ms"`
	AvgLookupTimeMs    int64          `json:"avg_lookup_time_ms"`
	TerminationReason  string         `json:"termination_reason,omitempty"`
}

// Tracker holds and manages the counters of one search run
type Tracker struct {
	mu                sync.Mutex
	data              Snapshot
	totalLookupTimeMs int64
	lookupCount       int
}

// NewTracker creates a new metrics tracker
func NewTracker() *Tracker {
	return &Tracker{
		data: Snapshot{
			StartTime:      time.Now(),
			LookupCalls:    make(map[string]int),
			LookupFailures: make(map[string]int),
		},
	}
}

// IncrementChecked increments the evaluated candidates counter
func (t *Tracker) IncrementChecked() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.CandidatesChecked++
}

// IncrementAccepted increments the admitted candidates counter
func (t *Tracker) IncrementAccepted() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.CandidatesAccepted++
}

// IncrementRejected increments the discarded candidates counter
func (t *Tracker) IncrementRejected() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.CandidatesRejected++
}

// IncrementPanics counts a recovered worker panic
func (t *Tracker) IncrementPanics() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.WorkerPanics++
}

// RecordLookup records one adapter call, its duration and whether it failed
func (t *Tracker) RecordLookup(adapter string, duration time.Duration, failed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.LookupCalls[adapter]++
	if failed {
		t.data.LookupFailures[adapter]++
	}
	t.totalLookupTimeMs += duration.Milliseconds()
	t.lookupCount++
}

// GetSnapshot returns a copy of current metrics
func (t *Tracker) GetSnapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	snapshot := t.data
	snapshot.LookupCalls = copyCounts(t.data.LookupCalls)
	snapshot.LookupFailures = copyCounts(t.data.LookupFailures)
	snapshot.TotalLookupTimeMs = t.totalLookupTimeMs

	// Calculate average lookup time
	if t.lookupCount > 0 {
		snapshot.AvgLookupTimeMs = t.totalLookupTimeMs / int64(t.lookupCount)
	}
	return snapshot
}

// Finish stamps the end time and termination reason
func (t *Tracker) Finish(reason string) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.EndTime = time.Now()
	t.data.TerminationReason = reason
	return t.snapshotLocked()
}

// WriteToFile exports metrics to a JSON file
func (t *Tracker) WriteToFile(path string) error {
	snapshot := t.GetSnapshot()

	jsonData, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	return nil
}

// LogProgress formats current metrics for periodic log lines
func (t *Tracker) LogProgress() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	failures := 0
	names := make([]string, 0, len(t.data.LookupFailures))
	for name, n := range t.data.LookupFailures {
		failures += n
		names = append(names, name)
	}
	sort.Strings(names)

	return fmt.Sprintf("Candidates: %d checked, %d accepted, %d rejected | Lookup failures: %d %v",
		t.data.CandidatesChecked,
		t.data.CandidatesAccepted,
		t.data.CandidatesRejected,
		failures,
		names,
	)
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
