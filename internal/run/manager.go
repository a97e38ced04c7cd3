package run

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alvmarrod/domain-finder/internal/candidates"
	"github.com/alvmarrod/domain-finder/internal/domain"
	"github.com/alvmarrod/domain-finder/internal/evaluator"
	"github.com/alvmarrod/domain-finder/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Run modes
const (
	ModeKeyword = "keyword"
	ModeBulk    = "bulk"
	// ModeC99 is accepted as an alias of ModeBulk
	ModeC99 = "c99"
)

// DefaultMaxCheck caps keyword-mode candidates when a request gives no cap
const DefaultMaxCheck = 50

const progressInterval = 10 * time.Second

var (
	// ErrRunActive is returned when a run is already starting or running
	ErrRunActive = errors.New("a search is already running")
	// ErrNoCandidates is returned when a request yields no candidate domains
	ErrNoCandidates = errors.New("no candidate domains")
	// ErrInvalidMode is returned for an unknown run mode
	ErrInvalidMode = errors.New("invalid search mode")
)

// Request describes the candidate source of a new run
type Request struct {
	Mode     string
	Keywords []string
	TLDs     []string
	MaxCheck int
	MinDR    float64
	Domains  []string
}

// Scheduler evaluates a candidate list, reporting each outcome from the calling goroutine
type Scheduler interface {
	Run(ctx context.Context, candidates []string, tracker *metrics.Tracker, onOutcome func(evaluator.Outcome)) int
}

// Exporter writes a run's final records and returns the artifact name
type Exporter interface {
	Export(runID string, records []domain.EvaluationRecord) (string, error)
}

// Settings holds request defaults and per-run outputs
type Settings struct {
	DefaultTLDs     []string
	DefaultMaxCheck int
	MetricsPath     string
}

// Manager owns at most one live run
type Manager struct {
	scheduler Scheduler
	exporter  Exporter
	settings  Settings

	busy atomic.Bool
	wg   sync.WaitGroup

	mu       sync.RWMutex
	current  *Run
	lastBase string
	seq      int
	now      func() time.Time
}

// NewManager creates a run manager
func NewManager(scheduler Scheduler, exporter Exporter, settings Settings) *Manager {
	if len(settings.DefaultTLDs) == 0 {
		settings.DefaultTLDs = candidates.DefaultTLDs
	}
	if settings.DefaultMaxCheck <= 0 {
		settings.DefaultMaxCheck = DefaultMaxCheck
	}
	return &Manager{
		scheduler: scheduler,
		exporter:  exporter,
		settings:  settings,
		now:       time.Now,
	}
}

// SetClock overrides the clock used for run ids
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Start validates the request, replaces the previous run and starts the new one
// in the background. It fails with ErrRunActive while another run is live.
func (m *Manager) Start(req Request) (string, error) {
	if !m.busy.CompareAndSwap(false, true) {
		return "", ErrRunActive
	}

	mode, list, err := m.buildCandidates(req)
	if err != nil {
		m.busy.Store(false)
		return "", err
	}

	m.mu.Lock()
	id := m.nextIDLocked()
	r := newRun(id, mode, len(list), req.MinDR)
	m.current = r
	m.mu.Unlock()

	logrus.Infof("Starting search %s: mode=%s, %d candidates", id, mode, len(list))

	m.wg.Add(1)
	go m.execute(context.Background(), r, list)
	return id, nil
}

// Progress returns the current run snapshot, or an idle snapshot when no run exists
func (m *Manager) Progress() Progress {
	m.mu.RLock()
	r := m.current
	m.mu.RUnlock()

	if r == nil {
		return Progress{Status: StatusIdle, DomainsFound: []domain.EvaluationRecord{}}
	}
	return r.Snapshot()
}

// Reset discards the finished run's in-memory state; exported artifacts stay on disk
func (m *Manager) Reset() error {
	if !m.busy.CompareAndSwap(false, true) {
		return ErrRunActive
	}
	defer m.busy.Store(false)

	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	return nil
}

// Active reports whether a run is starting or running
func (m *Manager) Active() bool { return m.busy.Load() }

// Wait blocks until the live run finishes or ctx is done
func (m *Manager) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) buildCandidates(req Request) (string, []string, error) {
	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	if mode == "" {
		mode = ModeKeyword
	}

	var list []string
	switch mode {
	case ModeKeyword:
		tlds := req.TLDs
		if len(tlds) == 0 {
			tlds = m.settings.DefaultTLDs
		}
		maxCheck := req.MaxCheck
		if maxCheck <= 0 {
			maxCheck = m.settings.DefaultMaxCheck
		}
		list = candidates.Expand(req.Keywords, tlds, maxCheck)
		if len(list) == 0 {
			return "", nil, fmt.Errorf("%w: no keywords given", ErrNoCandidates)
		}

	case ModeBulk, ModeC99:
		mode = ModeBulk
		list = candidates.Clean(req.Domains)
		if req.MaxCheck > 0 && len(list) > req.MaxCheck {
			list = list[:req.MaxCheck]
		}
		if len(list) == 0 {
			return "", nil, fmt.Errorf("%w: fetch bulk domains first", ErrNoCandidates)
		}

	default:
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}

	return mode, list, nil
}

func (m *Manager) nextIDLocked() string {
	base := m.now().Format("20060102_150405")
	if base == m.lastBase {
		m.seq++
		return fmt.Sprintf("%s_%d", base, m.seq)
	}
	m.lastBase = base
	m.seq = 0
	return base
}

// execute runs the scheduler to completion, then freezes and exports the results
func (m *Manager) execute(ctx context.Context, r *Run, list []string) {
	defer m.wg.Done()
	defer m.busy.Store(false)
	defer func() {
		if rec := recover(); rec != nil {
			logrus.Errorf("Search %s failed: %v", r.id, rec)
			r.tracker.Finish("error")
			r.setStatus(StatusError, fmt.Sprintf("error: %v", rec))
		}
	}()

	r.setStatus(StatusRunning, fmt.Sprintf("0/%d checked, 0 accepted so far", len(list)))

	stop := make(chan struct{})
	defer close(stop)
	go logProgress(r, stop)

	checked := m.scheduler.Run(ctx, list, r.tracker, r.record)

	r.store.Freeze()
	records := r.store.Snapshot()

	var file string
	if len(records) > 0 && m.exporter != nil {
		var err error
		file, err = m.exporter.Export(r.id, records)
		if err != nil {
			logrus.Errorf("Search %s: %v", r.id, err)
			r.tracker.Finish("export_failed")
			r.setStatus(StatusError, fmt.Sprintf("error: %v", err))
			return
		}
	}

	r.tracker.Finish("completed")
	if m.settings.MetricsPath != "" {
		if err := r.tracker.WriteToFile(m.settings.MetricsPath); err != nil {
			logrus.Warnf("Failed to write metrics: %v", err)
		}
	}

	r.complete(file, summary(checked, records))
	logrus.Infof("Search %s complete: %d checked, %d accepted", r.id, checked, len(records))
}

func logProgress(r *Run, stop <-chan struct{}) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logrus.Infof("Search %s progress: %s", r.id, r.tracker.LogProgress())
		case <-stop:
			return
		}
	}
}
