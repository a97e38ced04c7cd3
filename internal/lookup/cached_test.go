package lookup_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alvmarrod/domain-finder/internal/domain"
	"github.com/alvmarrod/domain-finder/internal/lookup"
	"github.com/alvmarrod/domain-finder/internal/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTraffic struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (c *countingTraffic) Metrics(ctx context.Context, domainName string) (domain.TrafficMetrics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.fail {
		return domain.TrafficMetrics{}, errors.New("boom")
	}
	return domain.TrafficMetrics{Traffic: 3}, nil
}

func TestCachedTraffic_CachesSuccess(t *testing.T) {
	src := &countingTraffic{}
	cached := lookup.CachedTraffic{Source: src, Cache: memory.NewCache[domain.TrafficMetrics]("traffic", time.Hour)}

	for i := 0; i < 3; i++ {
		m, err := cached.Metrics(context.Background(), "foo.com")
		require.NoError(t, err)
		assert.Equal(t, 3.0, m.Traffic)
	}
	assert.Equal(t, 1, src.calls)
}

func TestCachedTraffic_DoesNotCacheFailure(t *testing.T) {
	src := &countingTraffic{fail: true}
	cached := lookup.CachedTraffic{Source: src, Cache: memory.NewCache[domain.TrafficMetrics]("traffic", time.Hour)}

	_, err := cached.Metrics(context.Background(), "foo.com")
	assert.Error(t, err)

	src.fail = false
	m, err := cached.Metrics(context.Background(), "foo.com")
	require.NoError(t, err)
	assert.Equal(t, 3.0, m.Traffic)
	assert.Equal(t, 2, src.calls)
}

func TestCachedRegistration_CachesSuccess(t *testing.T) {
	calls := 0
	src := registrationFunc(func(ctx context.Context, d string) (domain.RegistrationStatus, error) {
		calls++
		return domain.NewRegistrationStatus(d, domain.Auction), nil
	})
	cached := lookup.CachedRegistration{Source: src, Cache: memory.NewCache[domain.RegistrationStatus]("registration", time.Hour)}

	s1, _ := cached.Status(context.Background(), "foo.com")
	s2, _ := cached.Status(context.Background(), "foo.com")

	assert.Equal(t, s1, s2)
	assert.Equal(t, 1, calls)
}

type registrationFunc func(ctx context.Context, d string) (domain.RegistrationStatus, error)

func (f registrationFunc) Status(ctx context.Context, d string) (domain.RegistrationStatus, error) {
	return f(ctx, d)
}
