package lookup

import (
	"context"

	"github.com/alvmarrod/domain-finder/internal/domain"
	"github.com/alvmarrod/domain-finder/internal/memory"
)

// Cached decorators only store results of successful lookups; a failure
// default is never cached so the next run asks the source again.

// CachedTraffic serves traffic metrics from a cache when possible
type CachedTraffic struct {
	Source TrafficSource
	Cache  *memory.Cache[domain.TrafficMetrics]
}

// Metrics implements TrafficSource
func (c CachedTraffic) Metrics(ctx context.Context, domainName string) (domain.TrafficMetrics, error) {
	if v, ok := c.Cache.Get(domainName); ok {
		return v, nil
	}
	v, err := c.Source.Metrics(ctx, domainName)
	if err == nil {
		c.Cache.Put(domainName, v)
	}
	return v, err
}

// CachedRegistration serves registration status from a cache when possible
type CachedRegistration struct {
	Source RegistrationSource
	Cache  *memory.Cache[domain.RegistrationStatus]
}

// Status implements RegistrationSource
func (c CachedRegistration) Status(ctx context.Context, domainName string) (domain.RegistrationStatus, error) {
	if v, ok := c.Cache.Get(domainName); ok {
		return v, nil
	}
	v, err := c.Source.Status(ctx, domainName)
	if err == nil {
		c.Cache.Put(domainName, v)
	}
	return v, err
}

// CachedArchive serves archive history from a cache when possible
type CachedArchive struct {
	Source ArchiveSource
	Cache  *memory.Cache[domain.ArchiveHistory]
}

// History implements ArchiveSource
func (c CachedArchive) History(ctx context.Context, domainName string) (domain.ArchiveHistory, error) {
	if v, ok := c.Cache.Get(domainName); ok {
		return v, nil
	}
	v, err := c.Source.History(ctx, domainName)
	if err == nil {
		c.Cache.Put(domainName, v)
	}
	return v, err
}
