// Package wip is the caller-facing facade over the dispatcher, packet
// constructors, and proxy chain: construct requests, send them, read stats.
package wip

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/U22-2025/WIP-sub001/internal/dispatch"
	"github.com/U22-2025/WIP-sub001/internal/locstore"
	"github.com/U22-2025/WIP-sub001/internal/metrics"
	"github.com/U22-2025/WIP-sub001/pkg/packet"
	"github.com/U22-2025/WIP-sub001/pkg/proxy"
)

// Client is one role's dispatcher: a coordinate resolver, a weather query
// server, or a sensor report server, each reached over its own UDP address.
type Client struct {
	d   *dispatch.Dispatcher
	cfg dispatch.Config
}

// NewClient dials addr (host:port) and returns a Client using cfg, or
// DefaultConfig() if cfg.SocketPoolSize is zero (cfg's other fields are then
// ignored).
func NewClient(addr string, cfg dispatch.Config) (*Client, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("wip: resolve %s: %w", addr, err)
	}
	if cfg.SocketPoolSize == 0 {
		cfg = dispatch.DefaultConfig()
	}
	d, err := dispatch.New(raddr, cfg)
	if err != nil {
		return nil, err
	}
	return &Client{d: d, cfg: cfg}, nil
}

// Close tears down the client's socket pool and background goroutines.
func (c *Client) Close() error {
	return c.d.Close()
}

// EnableAuth turns on per-request HMAC authentication for every outgoing
// request this client sends, using passphrase. It applies to the
// dispatcher's own state, not just this facade's copy, so the next Send
// through the same Client is authenticated even while other calls are in
// flight; a Send that has already started keeps the setting it began with.
func (c *Client) EnableAuth(passphrase string) {
	c.cfg.AuthEnabled = true
	c.cfg.AuthPassphrase = passphrase
	c.d.EnableAuth(passphrase)
}

// Send dispatches one request and waits for its typed response, retrying
// per the client's configured backoff schedule.
func (c *Client) Send(ctx context.Context, req packet.Packet) (packet.Packet, error) {
	return c.d.Send(ctx, req)
}

// SendBatch fans out reqs concurrently and returns one Result per input, in
// input order.
func (c *Client) SendBatch(ctx context.Context, reqs []packet.Packet) []dispatch.Result {
	return c.d.SendBatch(ctx, reqs)
}

// GetStats returns a snapshot of the client's counters.
func (c *Client) GetStats() metrics.Stats {
	return c.d.Stats()
}

// ResetStats zeroes every counter.
func (c *Client) ResetStats() {
	c.d.ResetStats()
}

// ClearCache empties the response cache.
func (c *Client) ClearCache() {
	c.d.ClearCache()
}

// ProxyClient wires a location-resolver Client, a query-server Client, and
// a persistent location store behind one resolve_then_query call.
type ProxyClient struct {
	proxy *proxy.Client
}

// NewProxyClient builds a ProxyClient. storePath is the on-disk location
// cache file ("" or ":memory:" for a transient store).
func NewProxyClient(locationClient, queryClient *Client, storePath string) (*ProxyClient, error) {
	store, err := locstore.Open(storePath, proxy.LocationTTL)
	if err != nil {
		return nil, err
	}
	return &ProxyClient{proxy: proxy.New(locationClient.d, queryClient.d, store)}, nil
}

// Close releases the proxy's backing location store.
func (p *ProxyClient) Close() error {
	return p.proxy.Close()
}

// ResolveThenQuery resolves (lat, lon) to an area code (persistent cache or
// a LocationRequest round trip) and issues a QueryRequest for it, as one
// logical call.
func (p *ProxyClient) ResolveThenQuery(ctx context.Context, lat, lon float64, day packet.Day, opts ...packet.QueryOption) (*proxy.Result, error) {
	return p.proxy.ResolveThenQuery(ctx, lat, lon, day, opts...)
}

// NewLocationRequest constructs a LocationRequest ready to send; its packet
// ID is left 0 here and assigned by the dispatcher on Send.
func NewLocationRequest(lat, lon float64, day packet.Day, version uint8) (*packet.LocationRequest, error) {
	return packet.NewLocationRequest(0, uint64(time.Now().Unix()), lat, lon, day, version)
}

// NewQueryRequest constructs a QueryRequest ready to send.
func NewQueryRequest(areaCode uint32, day packet.Day, version uint8, opts ...packet.QueryOption) (*packet.QueryRequest, error) {
	return packet.NewQueryRequest(0, uint64(time.Now().Unix()), areaCode, day, version, opts...)
}

// NewReportRequest constructs a ReportRequest ready to send. Any of
// weatherCode/tempC/pop may be nil to omit that reading.
func NewReportRequest(areaCode uint32, weatherCode *uint16, tempC *int16, pop *uint8, alert, disaster string) (*packet.ReportRequest, error) {
	return packet.NewReportRequest(0, uint64(time.Now().Unix()), areaCode, weatherCode, tempC, pop, alert, disaster)
}
