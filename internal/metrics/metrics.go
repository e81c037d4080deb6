// Package metrics holds the dispatcher's stats counters, exposed to callers
// via Snapshot() and Reset().
//
// Grounded directly on bmc.go's package-level prometheus counters
// (v2ConnectionOpenAttempts, v2ConnectionOpenFailures, v2ConnectionsOpen):
// same prometheus.NewCounter idiom, same "namespace" constant, renamed from
// "bmc" to "wip".
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wip"

// Stats is a point-in-time snapshot of the dispatcher's counters.
type Stats struct {
	Requests      uint64
	CacheHits     uint64
	CacheMisses   uint64
	RetryAttempts uint64
	Timeouts      uint64
	Errors        uint64
}

// Counters holds live atomic counters plus their prometheus mirrors. Each
// field is incremented via atomics on the hot path (no lock held across a
// suspension point) and mirrored into a prometheus.Counter for external
// scraping.
type Counters struct {
	requests      uint64
	cacheHits     uint64
	cacheMisses   uint64
	retryAttempts uint64
	timeouts      uint64
	errors        uint64

	promRequests      prometheus.Counter
	promCacheHits     prometheus.Counter
	promCacheMisses   prometheus.Counter
	promRetryAttempts prometheus.Counter
	promTimeouts      prometheus.Counter
	promErrors        prometheus.Counter
}

// New creates a fresh Counters set with its own prometheus counters. It does
// not register them with any registry; callers that want scraping can do so
// via Registry().
func New() *Counters {
	mk := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}
	return &Counters{
		promRequests:      mk("requests_total", "Total logical requests sent."),
		promCacheHits:     mk("cache_hits_total", "Total response cache hits."),
		promCacheMisses:   mk("cache_misses_total", "Total response cache misses."),
		promRetryAttempts: mk("retry_attempts_total", "Total retry attempts across all requests."),
		promTimeouts:      mk("timeouts_total", "Total per-attempt timeouts."),
		promErrors:        mk("errors_total", "Total terminal (non-retried) errors."),
	}
}

func (c *Counters) IncRequests()      { atomic.AddUint64(&c.requests, 1); c.promRequests.Inc() }
func (c *Counters) IncCacheHit()      { atomic.AddUint64(&c.cacheHits, 1); c.promCacheHits.Inc() }
func (c *Counters) IncCacheMiss()     { atomic.AddUint64(&c.cacheMisses, 1); c.promCacheMisses.Inc() }
func (c *Counters) IncRetryAttempt()  { atomic.AddUint64(&c.retryAttempts, 1); c.promRetryAttempts.Inc() }
func (c *Counters) IncTimeout()       { atomic.AddUint64(&c.timeouts, 1); c.promTimeouts.Inc() }
func (c *Counters) IncError()         { atomic.AddUint64(&c.errors, 1); c.promErrors.Inc() }

// Snapshot returns a consistent-enough point-in-time read of all counters.
// Individual fields are read atomically; the set as a whole is not a single
// atomic transaction, which is acceptable for monitoring counters: no torn
// individual values, but no cross-field atomicity either.
func (c *Counters) Snapshot() Stats {
	return Stats{
		Requests:      atomic.LoadUint64(&c.requests),
		CacheHits:     atomic.LoadUint64(&c.cacheHits),
		CacheMisses:   atomic.LoadUint64(&c.cacheMisses),
		RetryAttempts: atomic.LoadUint64(&c.retryAttempts),
		Timeouts:      atomic.LoadUint64(&c.timeouts),
		Errors:        atomic.LoadUint64(&c.errors),
	}
}

// Reset zeroes every counter, both the atomics and their prometheus mirrors.
func (c *Counters) Reset() {
	atomic.StoreUint64(&c.requests, 0)
	atomic.StoreUint64(&c.cacheHits, 0)
	atomic.StoreUint64(&c.cacheMisses, 0)
	atomic.StoreUint64(&c.retryAttempts, 0)
	atomic.StoreUint64(&c.timeouts, 0)
	atomic.StoreUint64(&c.errors, 0)

	// prometheus.Counter cannot be decremented; swap in fresh ones so a
	// scrape after Reset reports zero instead of accumulating forever.
	fresh := New()
	c.promRequests = fresh.promRequests
	c.promCacheHits = fresh.promCacheHits
	c.promCacheMisses = fresh.promCacheMisses
	c.promRetryAttempts = fresh.promRetryAttempts
	c.promTimeouts = fresh.promTimeouts
	c.promErrors = fresh.promErrors
}

// Registry returns a fresh prometheus.Registry with this Counters' metrics
// registered, for callers that want to expose a /metrics endpoint.
func (c *Counters) Registry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(c.promRequests, c.promCacheHits, c.promCacheMisses, c.promRetryAttempts, c.promTimeouts, c.promErrors)
	return reg
}
