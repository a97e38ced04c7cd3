package memory_test

import (
	"testing"
	"time"

	"github.com/alvmarrod/domain-finder/internal/memory"
	"github.com/stretchr/testify/assert"
)

func TestCache_GetPut(t *testing.T) {
	c := memory.NewCache[int]("test", time.Hour)

	_, ok := c.Get("foo.com")
	assert.False(t, ok)

	c.Put("foo.com", 42)
	v, ok := c.Get("foo.com")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	size, hits, misses := c.GetStats()
	assert.Equal(t, 1, size)
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestCache_Expiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := memory.NewCache[string]("test", time.Minute)
	c.SetClock(func() time.Time { return now })

	c.Put("a.com", "a")
	c.Put("b.com", "b")

	now = now.Add(30 * time.Second)
	_, ok := c.Get("a.com")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = c.Get("a.com")
	assert.False(t, ok, "entry should expire after ttl")

	assert.Equal(t, 1, c.Prune(), "only b.com is left to prune")
	size, _, _ := c.GetStats()
	assert.Zero(t, size)
}

func TestCache_DisabledWithZeroTTL(t *testing.T) {
	c := memory.NewCache[int]("test", 0)
	assert.False(t, c.Enabled())

	c.Put("foo.com", 1)
	_, ok := c.Get("foo.com")
	assert.False(t, ok)
	assert.Zero(t, c.Prune())
}
