// Package dispatch is the UDP dispatcher and concurrency core (C7, C9):
// packet-ID demultiplexing, per-attempt timeout, exponential-backoff retry,
// a pooled-socket send path, and permit-bounded batch fan-out.
//
// Grounded on cmd/chassis-control/main.go's context.WithTimeout-scoped
// request pattern, generalized from "one session, one command" to
// "N independent logical requests sharing a socket pool"; retry scheduling
// uses the cenkalti/backoff/v4 dependency already present in go.mod, put to
// its actual purpose here.
package dispatch

import (
	"context"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/xid"

	"github.com/U22-2025/WIP-sub001/internal/cache"
	"github.com/U22-2025/WIP-sub001/internal/metrics"
	"github.com/U22-2025/WIP-sub001/internal/pkid"
	"github.com/U22-2025/WIP-sub001/pkg/auth"
	"github.com/U22-2025/WIP-sub001/pkg/packet"
	"github.com/U22-2025/WIP-sub001/pkg/werrors"
)

// Authenticatable is implemented by the request types that carry an
// auth_hash extension field (LocationRequest, QueryRequest, ReportRequest).
type Authenticatable interface {
	packet.Packet
	GetTimestamp() uint64
	SetAuthHash(string)
	RequestResponseAuth(bool)
}

// AuthCarrier is implemented by the response types that can carry a
// response-side auth_hash extension field (LocationResponse, QueryResponse,
// ReportResponse).
type AuthCarrier interface {
	packet.Packet
	GetTimestamp() uint64
	GetAuthHash() string
	AuthPresent() bool
	ResponseAuthSet() bool
}

// Result is one entry of a SendBatch response: exactly one of Response/Err
// is set, so partial batch failures are reported individually.
type Result struct {
	Response packet.Packet
	Err      error
}

// Dispatcher ties together the packet-ID generator, socket pool, permit
// semaphore, response cache, and stats counters that make up the client
// request/response engine.
type Dispatcher struct {
	cfg     Config
	pool    *Pool
	permit  *Permit
	gen     *pkid.Generator
	cache   *cache.Cache
	metrics *metrics.Counters

	// authEnabled/authPassphrase hold the mutable half of Config: EnableAuth
	// can flip these on a Dispatcher already handling in-flight requests, so
	// they live outside cfg (read once at construction, otherwise immutable)
	// and are accessed atomically instead of under a lock.
	authEnabled    atomic.Bool
	authPassphrase atomic.Value // string

	stopSweep func()
}

// New creates a Dispatcher sending to raddr.
func New(raddr *net.UDPAddr, cfg Config) (*Dispatcher, error) {
	pool, err := NewPool(cfg.SocketPoolSize, raddr, cfg.EnableDebugLogging)
	if err != nil {
		return nil, err
	}
	c := cache.New(cfg.CacheTTL, cfg.MaxCacheSize)
	d := &Dispatcher{
		cfg:       cfg,
		pool:      pool,
		permit:    NewPermit(cfg.MaxConcurrentRequests),
		gen:       pkid.New(),
		cache:     c,
		metrics:   metrics.New(),
		stopSweep: c.StartSweep(cfg.CacheTTL),
	}
	d.authEnabled.Store(cfg.AuthEnabled)
	d.authPassphrase.Store(cfg.AuthPassphrase)
	return d, nil
}

// EnableAuth turns on per-request HMAC authentication for every outgoing
// request, and response-auth verification for every response that claims to
// carry one. Safe to call while requests are already in flight on this
// Dispatcher.
func (d *Dispatcher) EnableAuth(passphrase string) {
	d.authPassphrase.Store(passphrase)
	d.authEnabled.Store(true)
}

func (d *Dispatcher) authState() (enabled bool, passphrase string) {
	passphrase, _ = d.authPassphrase.Load().(string)
	return d.authEnabled.Load(), passphrase
}

// Close tears down the socket pool and stops the cache sweep goroutine.
func (d *Dispatcher) Close() error {
	d.stopSweep()
	return d.pool.Close()
}

// Stats returns a snapshot of the dispatcher's counters.
func (d *Dispatcher) Stats() metrics.Stats { return d.metrics.Snapshot() }

// ResetStats zeroes every counter.
func (d *Dispatcher) ResetStats() { d.metrics.Reset() }

// ClearCache empties the response cache.
func (d *Dispatcher) ClearCache() { d.cache.Clear() }

// Send executes one logical request end to end: permit, packet ID, optional
// auth, serialize, retry-with-backoff send/receive, parse, optional cache
// read/write. It moves through Idle -> Encoded -> InFlight(n) ->
// (Received | Timeout | IoError) -> Done|Failed.
func (d *Dispatcher) Send(ctx context.Context, req packet.Packet) (packet.Packet, error) {
	if err := d.permit.Acquire(ctx); err != nil {
		return nil, err
	}
	defer d.permit.Release()

	d.metrics.IncRequests()
	trace := xid.New()

	fp := Fingerprint(req)
	if cached, ok := d.cache.Get(fp); ok {
		d.metrics.IncCacheHit()
		if resp, ok := cached.(packet.Packet); ok {
			return resp, nil
		}
	}
	d.metrics.IncCacheMiss()

	authEnabled, authPassphrase := d.authState()

	id := d.gen.Next()
	req.SetPacketID(id)
	if authEnabled {
		if a, ok := req.(Authenticatable); ok {
			a.SetAuthHash(auth.Tag(id, a.GetTimestamp(), authPassphrase))
			a.RequestResponseAuth(true)
		}
	}
	reqBytes, err := req.ToBytes()
	if err != nil {
		d.metrics.IncError()
		return nil, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = d.cfg.InitialDelay
	bo.MaxInterval = d.cfg.MaxDelay
	bo.Multiplier = d.cfg.BackoffMultiplier
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0
	bo.Reset() // start the schedule from InitialDelay rather than the library default

	maxAttempts := d.cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			d.metrics.IncRetryAttempt()
			delay := bo.NextBackOff()
			if delay == backoff.Stop {
				break
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if d.cfg.EnableDebugLogging {
			log.Printf("wip: trace=%s packet_id=%d attempt=%d/%d sending", trace, id, attempt, maxAttempts)
		}

		resp, attemptErr := d.attempt(ctx, id, reqBytes)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attemptErr == nil {
			if errResp, isErr := resp.(*packet.ErrorResponse); isErr {
				d.metrics.IncError()
				return nil, errResp.ToWIPError()
			}
			if authEnabled {
				if err := d.verifyResponseAuth(resp, authPassphrase); err != nil {
					d.metrics.IncError()
					return nil, err
				}
			}
			d.cache.Set(fp, resp)
			return resp, nil
		}

		we, ok := attemptErr.(*werrors.Error)
		if !ok || !we.Retryable() {
			d.metrics.IncError()
			return nil, attemptErr
		}
		if we.Kind == werrors.KindTimeout {
			d.metrics.IncTimeout()
		}
		if attempt == maxAttempts {
			d.metrics.IncError()
			if we.Kind == werrors.KindTimeout {
				return nil, werrors.Timeoutf(int(id), maxAttempts)
			}
			return nil, attemptErr
		}
	}
	err = werrors.Timeoutf(int(id), maxAttempts)
	d.metrics.IncError()
	return nil, err
}

// attempt performs exactly one send+wait cycle for packetID over a pooled
// socket, returning the parsed response or a retryable/terminal error.
func (d *Dispatcher) attempt(ctx context.Context, packetID uint16, reqBytes []byte) (packet.Packet, error) {
	sock := d.pool.Get()
	ch := sock.register(packetID)
	defer sock.unregister(packetID)

	if err := sock.send(reqBytes); err != nil {
		return nil, err
	}

	select {
	case raw := <-ch:
		resp, err := packet.Parse(raw)
		if err != nil {
			return nil, err
		}
		if d.cfg.RequireVersion != 0 && resp.GetVersion() != d.cfg.RequireVersion {
			return nil, werrors.Fieldf(werrors.ReasonUnsupportedVersion, "version",
				"response version %d does not match required version %d", resp.GetVersion(), d.cfg.RequireVersion)
		}
		return resp, nil
	case <-time.After(d.cfg.Timeout):
		return nil, werrors.Timeoutf(int(packetID), 1)
	case <-ctx.Done():
		return nil, werrors.IOf(werrors.ReasonReceiveFailure, ctx.Err(), "context done while waiting for packet_id=%d", packetID)
	}
}

// verifyResponseAuth checks a successfully-received response's auth_hash
// when it claims to be authenticated (response_auth set) or actually carries
// the extension field. Per the §9 open question decision, verification is
// attempted whenever the response carries the field; RequireResponseAuth
// controls only whether a missing/mismatched hash is fatal (strict) or merely
// logged (lenient, the default).
func (d *Dispatcher) verifyResponseAuth(resp packet.Packet, passphrase string) error {
	ar, ok := resp.(AuthCarrier)
	if !ok || (!ar.ResponseAuthSet() && !ar.AuthPresent()) {
		return nil
	}
	if !ar.AuthPresent() || ar.GetAuthHash() == "" {
		if d.cfg.RequireResponseAuth {
			return werrors.Authf(werrors.ReasonMissingAuthHash, "response_auth set but packet_id=%d carries no auth_hash extension", ar.GetPacketID())
		}
		if d.cfg.EnableDebugLogging {
			log.Printf("wip: packet_id=%d response_auth set but no auth_hash present, ignoring (lenient)", ar.GetPacketID())
		}
		return nil
	}
	if err := auth.VerifyOrError(ar.GetPacketID(), ar.GetTimestamp(), passphrase, ar.GetAuthHash()); err != nil {
		if d.cfg.RequireResponseAuth {
			return err
		}
		if d.cfg.EnableDebugLogging {
			log.Printf("wip: packet_id=%d response auth verification failed, ignoring (lenient): %v", ar.GetPacketID(), err)
		}
		return nil
	}
	return nil
}

// SendBatch fans out reqs as independent concurrent logical requests, each
// acquiring its own permit, and collects results in input order. A failure
// in one request never affects another's result.
func (d *Dispatcher) SendBatch(ctx context.Context, reqs []packet.Packet) []Result {
	results := make([]Result, len(reqs))
	var wg sync.WaitGroup
	wg.Add(len(reqs))
	for i, r := range reqs {
		go func(i int, r packet.Packet) {
			defer wg.Done()
			resp, err := d.Send(ctx, r)
			results[i] = Result{Response: resp, Err: err}
		}(i, r)
	}
	wg.Wait()
	return results
}
