package evaluator_test

import (
	"context"
	"testing"

	"github.com/alvmarrod/domain-finder/internal/domain"
	"github.com/alvmarrod/domain-finder/internal/evaluator"
	"github.com/alvmarrod/domain-finder/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_RejectsWithoutSignalBeforeOtherLookups(t *testing.T) {
	traffic := &fakeTraffic{metrics: map[string]domain.TrafficMetrics{
		"bar.com": {ReferringDomains: 3, PageAuthorityScore: 4},
	}}
	reg := &fakeRegistration{}
	archive := &fakeArchive{}
	e := evaluator.NewEvaluator(traffic, reg, evaluator.WithArchive(archive))

	_, ok := e.Evaluate(context.Background(), "bar.com", metrics.NewTracker())

	assert.False(t, ok)
	assert.Zero(t, reg.callCount())
	assert.Zero(t, archive.calls)
}

func TestEvaluate_BuildsRecord(t *testing.T) {
	traffic := &fakeTraffic{metrics: map[string]domain.TrafficMetrics{
		"foo.com": {Traffic: 0.3, AuthorityScore: 20, PageAuthorityScore: 7, Backlinks: 11, ReferringDomains: 4},
	}}
	reg := &fakeRegistration{classes: map[string]domain.Classification{"foo.com": domain.PendingDelete}}
	archive := &fakeArchive{history: domain.ArchiveHistory{HasHistory: true, SnapshotCount: 42, FirstArchive: "20100101"}}
	e := evaluator.NewEvaluator(traffic, reg, evaluator.WithArchive(archive))

	rec, ok := e.Evaluate(context.Background(), "foo.com", nil)
	require.True(t, ok)

	assert.Equal(t, "foo.com", rec.Domain)
	assert.Equal(t, 0.3, rec.Traffic)
	assert.True(t, rec.HasTraffic())
	assert.Equal(t, 20.0, rec.AuthorityScore)
	assert.Equal(t, 7.0, rec.PageAuthorityScore)
	assert.Equal(t, int64(11), rec.Backlinks)
	assert.Equal(t, int64(4), rec.ReferringDomains)
	assert.Equal(t, domain.PendingDelete, rec.Classification)
	assert.Equal(t, domain.ActionBackorder, rec.Action)
	assert.Equal(t, "Backorder $69+", rec.PriceEstimate)
	assert.Equal(t, "https://www.dropcatch.com/domain/foo.com", rec.PurchaseURL)
	assert.False(t, rec.Available)
	assert.Equal(t, 42, rec.SnapshotCount)
	assert.Equal(t, "20100101", rec.FirstArchive)
}

func TestEvaluate_NoArchiveHistoryLeavesDefaults(t *testing.T) {
	traffic := &fakeTraffic{metrics: map[string]domain.TrafficMetrics{"foo.com": {Backlinks: 1}}}
	e := evaluator.NewEvaluator(traffic, &fakeRegistration{}, evaluator.WithArchive(&fakeArchive{}))

	rec, ok := e.Evaluate(context.Background(), "foo.com", nil)
	require.True(t, ok)
	assert.Zero(t, rec.SnapshotCount)
	assert.Equal(t, "N/A", rec.FirstArchive)
}

func TestEvaluate_TrafficFailureRejects(t *testing.T) {
	traffic := &fakeTraffic{fail: map[string]bool{"foo.com": true}}
	reg := &fakeRegistration{}
	tracker := metrics.NewTracker()
	e := evaluator.NewEvaluator(traffic, reg)

	_, ok := e.Evaluate(context.Background(), "foo.com", tracker)

	assert.False(t, ok)
	assert.Zero(t, reg.callCount())
	assert.Equal(t, 1, tracker.GetSnapshot().LookupFailures["traffic"])
}

func TestEvaluate_RegistrationFailureKeepsRecord(t *testing.T) {
	traffic := &fakeTraffic{metrics: map[string]domain.TrafficMetrics{"foo.com": {AuthorityScore: 10}}}
	tracker := metrics.NewTracker()
	e := evaluator.NewEvaluator(traffic, &fakeRegistration{fail: true})

	rec, ok := e.Evaluate(context.Background(), "foo.com", tracker)

	require.True(t, ok)
	assert.Equal(t, domain.Unknown, rec.Classification)
	assert.Equal(t, "Contact Owner", rec.PriceEstimate)
	assert.Equal(t, 1, tracker.GetSnapshot().LookupFailures["registration"])
}

func TestEvaluate_PanicDropsCandidate(t *testing.T) {
	traffic := &fakeTraffic{metrics: map[string]domain.TrafficMetrics{"foo.com": {Traffic: 5}}}
	tracker := metrics.NewTracker()
	e := evaluator.NewEvaluator(traffic, &fakeRegistration{panics: true})

	rec, ok := e.Evaluate(context.Background(), "foo.com", tracker)

	assert.False(t, ok)
	assert.Empty(t, rec.Domain)
	assert.Equal(t, 1, tracker.GetSnapshot().WorkerPanics)
}

func TestEvaluate_QuotesOnlyForAvailable(t *testing.T) {
	traffic := &fakeTraffic{metrics: map[string]domain.TrafficMetrics{
		"free.com":  {Traffic: 1},
		"taken.com": {Traffic: 1},
	}}
	reg := &fakeRegistration{classes: map[string]domain.Classification{
		"free.com":  domain.Available,
		"taken.com": domain.Registered,
	}}
	quotes := &fakeQuotes{}
	e := evaluator.NewEvaluator(traffic, reg, evaluator.WithQuotes(quotes))

	free, ok := e.Evaluate(context.Background(), "free.com", nil)
	require.True(t, ok)
	taken, ok := e.Evaluate(context.Background(), "taken.com", nil)
	require.True(t, ok)

	assert.Equal(t, []string{"free.com"}, quotes.calls)
	assert.Equal(t, "$8.88", free.RegistrarPrice)
	assert.True(t, free.Premium)
	assert.Equal(t, "$10-15/year", free.PriceEstimate)
	assert.Empty(t, taken.RegistrarPrice)
}

func TestEvaluate_EmptyDomain(t *testing.T) {
	traffic := &fakeTraffic{}
	e := evaluator.NewEvaluator(traffic, &fakeRegistration{})

	_, ok := e.Evaluate(context.Background(), "", nil)
	assert.False(t, ok)
	assert.Zero(t, traffic.calls)
}
