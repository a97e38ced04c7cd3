package evaluator_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alvmarrod/domain-finder/internal/domain"
)

type fakeTraffic struct {
	metrics map[string]domain.TrafficMetrics
	fail    map[string]bool
	delay   time.Duration

	mu       sync.Mutex
	calls    int
	inflight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeTraffic) Metrics(ctx context.Context, d string) (domain.TrafficMetrics, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail[d] {
		return domain.TrafficMetrics{}, errors.New("traffic down")
	}
	return f.metrics[d], nil
}

type fakeRegistration struct {
	classes map[string]domain.Classification
	fail    bool
	panics  bool

	mu    sync.Mutex
	calls []string
}

func (f *fakeRegistration) Status(ctx context.Context, d string) (domain.RegistrationStatus, error) {
	f.mu.Lock()
	f.calls = append(f.calls, d)
	f.mu.Unlock()

	if f.panics {
		panic("registration exploded")
	}
	if f.fail {
		return domain.NewRegistrationStatus(d, domain.Unknown), errors.New("whois timeout")
	}
	c, ok := f.classes[d]
	if !ok {
		c = domain.Registered
	}
	return domain.NewRegistrationStatus(d, c), nil
}

func (f *fakeRegistration) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeArchive struct {
	history domain.ArchiveHistory

	mu    sync.Mutex
	calls int
}

func (f *fakeArchive) History(ctx context.Context, d string) (domain.ArchiveHistory, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.history, nil
}

type fakeQuotes struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeQuotes) Quote(ctx context.Context, d string) (domain.RegistrarQuote, error) {
	f.mu.Lock()
	f.calls = append(f.calls, d)
	f.mu.Unlock()
	return domain.RegistrarQuote{Purchasable: true, Price: "$8.88", Premium: true}, nil
}
