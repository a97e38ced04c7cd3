package evaluator

import (
	"context"
	"sync"

	"github.com/alvmarrod/domain-finder/internal/domain"
	"github.com/alvmarrod/domain-finder/internal/metrics"
	"github.com/sirupsen/logrus"
)

// DefaultWidth is the number of concurrent evaluations when none is configured
const DefaultWidth = 20

// Outcome is the result of evaluating one candidate
type Outcome struct {
	Entry    Entry
	Record   domain.EvaluationRecord
	Accepted bool
}

// Scheduler runs evaluations over a candidate list with bounded parallelism
type Scheduler struct {
	evaluator *Evaluator
	width     int
}

// NewScheduler creates a scheduler; width < 1 falls back to DefaultWidth
func NewScheduler(e *Evaluator, width int) *Scheduler {
	if width < 1 {
		width = DefaultWidth
	}
	return &Scheduler{evaluator: e, width: width}
}

// Width returns the number of concurrent workers
func (s *Scheduler) Width() int { return s.width }

// Run evaluates every candidate and calls onOutcome once per candidate in completion
// order. onOutcome is always called from the goroutine that called Run, so it may
// own result state without further coordination. Run returns when every queued
// candidate has been reported.
func (s *Scheduler) Run(ctx context.Context, candidates []string, tracker *metrics.Tracker, onOutcome func(Outcome)) int {
	if tracker == nil {
		tracker = metrics.NewTracker()
	}

	queue := NewQueue()
	for i, d := range candidates {
		queue.Push(Entry{Index: i + 1, Domain: d})
	}
	total := queue.Size()
	queue.Stop()

	workers := s.width
	if total < workers {
		workers = total
	}
	logrus.Infof("Starting %d evaluation workers for %d candidates", workers, total)

	results := make(chan Outcome, s.width)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go s.worker(ctx, i+1, queue, tracker, results, &wg)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for outcome := range results {
		onOutcome(outcome)
	}
	return total
}

// worker pops candidates until the queue is drained
func (s *Scheduler) worker(ctx context.Context, id int, queue *Queue, tracker *metrics.Tracker, results chan<- Outcome, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		entry, ok := queue.Pop()
		if !ok {
			logrus.Debugf("Worker %d: queue drained, exiting", id)
			return
		}

		rec, accepted := s.evaluator.Evaluate(ctx, entry.Domain, tracker)
		tracker.IncrementChecked()
		if accepted {
			tracker.IncrementAccepted()
		} else {
			tracker.IncrementRejected()
		}

		results <- Outcome{Entry: entry, Record: rec, Accepted: accepted}
	}
}
