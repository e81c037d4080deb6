package cache

import (
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

// clock is a manually-advanced time source for deterministic TTL tests.
type clock struct{ now time.Time }

func (c *clock) Now() time.Time          { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestSetThenGetSucceeds(t *testing.T) {
	c := New(time.Minute, 100)
	c.Set("k", "v")
	got, ok := c.Get("k")
	assert.Assert(t, ok)
	assert.Equal(t, got, "v")
}

func TestGetMissingKey(t *testing.T) {
	c := New(time.Minute, 100)
	_, ok := c.Get("missing")
	assert.Assert(t, !ok)
}

func TestEntryExpiresAfterTTL(t *testing.T) {
	clk := &clock{now: time.Unix(0, 0)}
	c := NewWithClock(10*time.Second, 100, clk.Now)

	c.Set("k", "v")
	_, ok := c.Get("k")
	assert.Assert(t, ok)

	clk.Advance(10*time.Second + time.Millisecond)
	_, ok = c.Get("k")
	assert.Assert(t, !ok)
	assert.Equal(t, c.Size(), 0)
}

func TestHitCountAndLastAccessedUpdateOnGet(t *testing.T) {
	clk := &clock{now: time.Unix(0, 0)}
	c := NewWithClock(time.Minute, 100, clk.Now)
	c.Set("k", "v")

	clk.Advance(time.Second)
	_, ok := c.Get("k")
	assert.Assert(t, ok)

	c.mu.Lock()
	e := c.entries["k"]
	c.mu.Unlock()
	assert.Equal(t, e.HitCount, 1)
	assert.Equal(t, e.LastAccessed, clk.now)
}

func TestEvictionDropsLeastHitEntries(t *testing.T) {
	c := New(time.Minute, 4)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// "a" accumulates hits so it survives eviction; "b" and "c" stay cold.
	for i := 0; i < 5; i++ {
		c.Get("a")
	}

	c.Set("d", 4)
	c.Set("e", 5) // pushes the cache over maxSize, triggering eviction

	assert.Assert(t, c.Size() <= 4)
	_, ok := c.Get("a")
	assert.Assert(t, ok, "most-hit entry should survive eviction")
}

func TestClearEmptiesCache(t *testing.T) {
	c := New(time.Minute, 100)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()
	assert.Equal(t, c.Size(), 0)
}

func TestStartSweepRemovesExpiredEntries(t *testing.T) {
	clk := &clock{now: time.Unix(0, 0)}
	c := NewWithClock(5*time.Millisecond, 100, clk.Now)
	c.Set("k", "v")

	stop := c.StartSweep(time.Millisecond)
	defer stop()

	clk.Advance(10 * time.Millisecond)
	assert.Assert(t, pollUntil(t, func() bool { return c.Size() == 0 }))
}

// A zero (or negative) sweep interval is a legal Config.CacheTTL and must
// not panic via time.NewTicker; StartSweep should just skip the sweep
// goroutine and return a harmless stop func.
func TestStartSweepWithNonPositiveIntervalDoesNotPanic(t *testing.T) {
	c := New(time.Minute, 100)
	c.Set("k", "v")

	stop := c.StartSweep(0)
	stop() // must not panic or block

	_, ok := c.Get("k")
	assert.Assert(t, ok, "no sweep goroutine runs, but Get still works normally")
}

func pollUntil(t *testing.T, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}
