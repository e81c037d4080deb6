package dispatch

import "time"

// Config is every option the dispatcher consumes. Building one from
// flags/files/env is the caller's job; cmd/wip-client shows one way to do
// it: DefaultConfig plus auth from REPORT_SERVER_PASSPHRASE, with the server
// address taken from the LOCATION_RESOLVER_*/QUERY_SERVER_*/REPORT_SERVER_*
// host and port environment variables.
type Config struct {
	Timeout               time.Duration
	MaxAttempts           int
	InitialDelay          time.Duration
	MaxDelay              time.Duration
	BackoffMultiplier     float64
	CacheTTL              time.Duration
	MaxCacheSize          int
	MaxConcurrentRequests int
	SocketPoolSize        int
	EnableDebugLogging    bool
	AuthEnabled           bool
	AuthPassphrase        string

	// RequireResponseAuth and RequireVersion opt into stricter checking on
	// the receive side; both default permissive (false / 0).
	RequireResponseAuth bool
	RequireVersion      uint8 // 0 means "accept any version"
}

// DefaultConfig returns the documented defaults: 100 max concurrent
// requests, otherwise conservative timeouts/retries.
func DefaultConfig() Config {
	return Config{
		Timeout:               2 * time.Second,
		MaxAttempts:           3,
		InitialDelay:          100 * time.Millisecond,
		MaxDelay:              2 * time.Second,
		BackoffMultiplier:     2.0,
		CacheTTL:              60 * time.Second,
		MaxCacheSize:          1000,
		MaxConcurrentRequests: 100,
		SocketPoolSize:        4,
	}
}
