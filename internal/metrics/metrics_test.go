package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"gotest.tools/v3/assert"
)

func TestSnapshotReflectsIncrements(t *testing.T) {
	c := New()
	c.IncRequests()
	c.IncRequests()
	c.IncCacheHit()
	c.IncCacheMiss()
	c.IncRetryAttempt()
	c.IncTimeout()
	c.IncError()

	got := c.Snapshot()
	want := Stats{
		Requests:      2,
		CacheHits:     1,
		CacheMisses:   1,
		RetryAttempts: 1,
		Timeouts:      1,
		Errors:        1,
	}
	assert.DeepEqual(t, got, want)
}

func TestResetZeroesCounters(t *testing.T) {
	c := New()
	c.IncRequests()
	c.IncError()
	c.Reset()

	assert.DeepEqual(t, c.Snapshot(), Stats{})
}

func TestResetSwapsPrometheusMirrorsRatherThanAccumulate(t *testing.T) {
	c := New()
	c.IncRequests()
	c.IncRequests()
	assert.Equal(t, testutil.ToFloat64(c.promRequests), float64(2))

	c.Reset()
	assert.Equal(t, testutil.ToFloat64(c.promRequests), float64(0))

	c.IncRequests()
	assert.Equal(t, testutil.ToFloat64(c.promRequests), float64(1))
}

func TestRegistryGathersAllCounters(t *testing.T) {
	c := New()
	c.IncRequests()
	c.IncCacheHit()

	reg := c.Registry()
	mfs, err := reg.Gather()
	assert.NilError(t, err)
	assert.Assert(t, len(mfs) == 6, "expected 6 registered metric families, got %d", len(mfs))
}
