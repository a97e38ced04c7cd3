// Package run owns the lifecycle of search runs: at most one run is live at a
// time, it executes in the background, and its progress can be polled freely.
package run

import (
	"fmt"
	"strings"
	"sync"

	"github.com/alvmarrod/domain-finder/internal/domain"
	"github.com/alvmarrod/domain-finder/internal/evaluator"
	"github.com/alvmarrod/domain-finder/internal/metrics"
	"github.com/alvmarrod/domain-finder/internal/ranking"
	"github.com/sirupsen/logrus"
)

// Status is the lifecycle state of a run
type Status string

const (
	StatusIdle      Status = "idle"
	StatusStarting  Status = "starting"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Progress is a point-in-time view of a run, safe to hand to a poller
type Progress struct {
	SearchID      string                    `json:"search_id"`
	Status        Status                    `json:"status"`
	Mode          string                    `json:"mode,omitempty"`
	Current       int                       `json:"current"`
	Total         int                       `json:"total"`
	Message       string                    `json:"message"`
	CurrentDomain string                    `json:"current_domain"`
	DomainsFound  []domain.EvaluationRecord `json:"domains_found"`
	ExcelFile     string                    `json:"excel_file"`
	MinDR         float64                   `json:"min_dr"`
	Metrics       *metrics.Snapshot         `json:"metrics,omitempty"`
}

// Run is one execution of the pipeline over one candidate list
type Run struct {
	mu            sync.RWMutex
	id            string
	mode          string
	status        Status
	current       int
	total         int
	accepted      int
	message       string
	currentDomain string
	exportFile    string
	minDR         float64

	store   *ranking.Store
	tracker *metrics.Tracker
}

func newRun(id, mode string, total int, minDR float64) *Run {
	return &Run{
		id:      id,
		mode:    mode,
		status:  StatusStarting,
		total:   total,
		minDR:   minDR,
		message: fmt.Sprintf("Starting search over %d candidates", total),
		store:   ranking.NewStore(),
		tracker: metrics.NewTracker(),
	}
}

// ID returns the run identifier
func (r *Run) ID() string { return r.id }

// record applies one evaluation outcome. Counters and the result set change in
// the same critical section, so a snapshot never sees one without the other.
func (r *Run) record(o evaluator.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current++
	r.currentDomain = o.Entry.Domain

	if o.Accepted {
		r.store.Insert(o.Record)
		r.accepted++
		logrus.Infof("[%d/%d] accepted domain %s (%s, traffic %.1f, DR %.0f)",
			o.Entry.Index, r.total, o.Record.Domain, o.Record.Classification, o.Record.Traffic, o.Record.AuthorityScore)
	} else {
		logrus.Debugf("[%d/%d] rejected domain %s", o.Entry.Index, r.total, o.Entry.Domain)
	}

	r.message = fmt.Sprintf("%d/%d checked, %d accepted so far", r.current, r.total, r.accepted)
}

func (r *Run) setStatus(status Status, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
	r.message = message
}

func (r *Run) complete(exportFile, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exportFile = exportFile
	r.status = StatusCompleted
	r.message = message
}

// Snapshot returns the run's progress view
func (r *Run) Snapshot() Progress {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := r.tracker.GetSnapshot()
	return Progress{
		SearchID:      r.id,
		Status:        r.status,
		Mode:          r.mode,
		Current:       r.current,
		Total:         r.total,
		Message:       r.message,
		CurrentDomain: r.currentDomain,
		DomainsFound:  r.store.Snapshot(),
		ExcelFile:     r.exportFile,
		MinDR:         r.minDR,
		Metrics:       &m,
	}
}

// summary renders the completion statistics for a frozen result set
func summary(checked int, records []domain.EvaluationRecord) string {
	withTraffic := 0
	counts := make(map[domain.Classification]int, len(domain.Classifications))
	for _, rec := range records {
		if rec.HasTraffic() {
			withTraffic++
		}
		counts[rec.Classification]++
	}

	accepted := len(records)
	pct := 0.0
	if checked > 0 {
		pct = float64(accepted) * 100 / float64(checked)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search complete: %d candidates checked\n", checked)
	fmt.Fprintf(&b, "Accepted: %d (%.1f%%)\n", accepted, pct)
	fmt.Fprintf(&b, "  With traffic: %d\n", withTraffic)
	fmt.Fprintf(&b, "  Authority/backlinks only: %d\n", accepted-withTraffic)
	fmt.Fprintf(&b, "Not valuable: %d\n", checked-accepted)
	b.WriteString("By status:")
	for _, c := range domain.Classifications {
		fmt.Fprintf(&b, "\n  %s (%s): %d", c.Label(), c.Action(), counts[c])
	}
	return b.String()
}
