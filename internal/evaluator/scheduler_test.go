package evaluator_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alvmarrod/domain-finder/internal/domain"
	"github.com/alvmarrod/domain-finder/internal/evaluator"
	"github.com/alvmarrod/domain-finder/internal/metrics"
	"github.com/alvmarrod/domain-finder/internal/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_Run_AdmitsAndRanks(t *testing.T) {
	traffic := &fakeTraffic{metrics: map[string]domain.TrafficMetrics{
		"foo.com": {Traffic: 5, AuthorityScore: 20},
		"bar.com": {},
		"baz.com": {AuthorityScore: 10},
	}}
	reg := &fakeRegistration{classes: map[string]domain.Classification{
		"foo.com": domain.Available,
		"baz.com": domain.Registered,
	}}
	s := evaluator.NewScheduler(evaluator.NewEvaluator(traffic, reg), 20)
	store := ranking.NewStore()
	tracker := metrics.NewTracker()

	total := s.Run(context.Background(), []string{"foo.com", "bar.com", "baz.com"}, tracker, func(o evaluator.Outcome) {
		if o.Accepted {
			store.Insert(o.Record)
		}
	})

	assert.Equal(t, 3, total)
	records := store.Snapshot()
	require.Len(t, records, 2)
	assert.Equal(t, "foo.com", records[0].Domain)
	assert.Equal(t, "baz.com", records[1].Domain)

	snap := tracker.GetSnapshot()
	assert.Equal(t, 3, snap.CandidatesChecked)
	assert.Equal(t, 2, snap.CandidatesAccepted)
	assert.Equal(t, 1, snap.CandidatesRejected)
}

func TestScheduler_Run_BoundedWidth(t *testing.T) {
	list := make([]string, 0, 40)
	m := make(map[string]domain.TrafficMetrics)
	for i := 0; i < 40; i++ {
		d := fmt.Sprintf("d%d.com", i)
		list = append(list, d)
		m[d] = domain.TrafficMetrics{Traffic: float64(i)}
	}
	traffic := &fakeTraffic{metrics: m, delay: 10 * time.Millisecond}
	s := evaluator.NewScheduler(evaluator.NewEvaluator(traffic, &fakeRegistration{}), 4)

	outcomes := 0
	accepted := 0
	total := s.Run(context.Background(), list, nil, func(o evaluator.Outcome) {
		outcomes++
		if o.Accepted {
			accepted++
			assert.True(t, o.Record.HasTraffic() || o.Record.AuthorityScore > 0 || o.Record.Backlinks > 0)
		}
	})

	assert.Equal(t, 40, total)
	assert.Equal(t, 40, outcomes)
	assert.Equal(t, 39, accepted, "d0.com has no signal")
	assert.LessOrEqual(t, int(traffic.peak.Load()), 4)
	assert.Equal(t, 4, s.Width())
}

func TestScheduler_Run_DeduplicatesCandidates(t *testing.T) {
	traffic := &fakeTraffic{metrics: map[string]domain.TrafficMetrics{"a.com": {Traffic: 1}}}
	s := evaluator.NewScheduler(evaluator.NewEvaluator(traffic, &fakeRegistration{}), 2)

	var seen []string
	total := s.Run(context.Background(), []string{"a.com", "a.com", "", "b.com"}, nil, func(o evaluator.Outcome) {
		seen = append(seen, o.Entry.Domain)
	})

	assert.Equal(t, 2, total)
	assert.ElementsMatch(t, []string{"a.com", "b.com"}, seen)
}

func TestScheduler_Run_Empty(t *testing.T) {
	s := evaluator.NewScheduler(evaluator.NewEvaluator(&fakeTraffic{}, &fakeRegistration{}), 0)
	assert.Equal(t, evaluator.DefaultWidth, s.Width())

	called := false
	total := s.Run(context.Background(), nil, nil, func(evaluator.Outcome) { called = true })

	assert.Zero(t, total)
	assert.False(t, called)
}

func TestScheduler_Run_PanicIsolated(t *testing.T) {
	traffic := &fakeTraffic{metrics: map[string]domain.TrafficMetrics{
		"a.com": {Traffic: 1},
		"b.com": {Traffic: 1},
	}}
	tracker := metrics.NewTracker()
	s := evaluator.NewScheduler(evaluator.NewEvaluator(traffic, &fakeRegistration{panics: true}), 2)

	total := s.Run(context.Background(), []string{"a.com", "b.com"}, tracker, func(o evaluator.Outcome) {
		assert.False(t, o.Accepted)
	})

	assert.Equal(t, 2, total)
	assert.Equal(t, 2, tracker.GetSnapshot().WorkerPanics)
	assert.Equal(t, 2, tracker.GetSnapshot().CandidatesRejected)
}
