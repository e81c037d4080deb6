// Package proxy implements the chained location-then-query call (C10):
// resolve coordinates to an area code via a persistent on-disk cache or a
// LocationRequest round trip, then issue a QueryRequest for that area code,
// as one logical call.
package proxy

import (
	"context"
	"time"

	"github.com/U22-2025/WIP-sub001/internal/dispatch"
	"github.com/U22-2025/WIP-sub001/internal/locstore"
	"github.com/U22-2025/WIP-sub001/pkg/packet"
	"github.com/U22-2025/WIP-sub001/pkg/werrors"
)

// LocationTTL is the long TTL the persistent store uses for resolved
// coordinates: stable for a day, far longer than the in-memory response
// cache's default minute.
const LocationTTL = 24 * time.Hour

// Result is the record resolve_then_query returns: the resolved area code
// plus whatever QueryResponse fields were requested, tagged with whether
// the resolver was actually contacted.
type Result struct {
	AreaCode    uint32
	WeatherCode *uint16
	Temperature *int8
	POP         *uint8
	Alert       string
	Disaster    string
	CacheHit    bool
}

// Client chains a location dispatcher, a query dispatcher, and a persistent
// location store behind one resolve_then_query call.
type Client struct {
	locationDispatch *dispatch.Dispatcher
	queryDispatch    *dispatch.Dispatcher
	store            *locstore.Store
}

// New builds a proxy Client. locationDispatch sends to the location
// resolver, queryDispatch sends to the weather query server, and store is
// the persistent (lat,lon)->area_code cache (internal/locstore.Open).
func New(locationDispatch, queryDispatch *dispatch.Dispatcher, store *locstore.Store) *Client {
	return &Client{locationDispatch: locationDispatch, queryDispatch: queryDispatch, store: store}
}

// Close releases the backing location store; the two dispatchers are owned
// by the caller and are not closed here.
func (c *Client) Close() error {
	return c.store.Close()
}

// ResolveThenQuery performs the C10 chain: a persistent-cache lookup (or a
// LocationRequest on miss) followed by a QueryRequest, as one call.
func (c *Client) ResolveThenQuery(ctx context.Context, lat, lon float64, day packet.Day, opts ...packet.QueryOption) (*Result, error) {
	areaCode, cacheHit, err := c.store.Lookup(ctx, lat, lon, nowUnix())
	if err != nil {
		return nil, err
	}
	if !cacheHit {
		locReq, err := packet.NewLocationRequest(0, uint64(nowUnix()), lat, lon, day, 1)
		if err != nil {
			return nil, err
		}
		resp, err := c.locationDispatch.Send(ctx, locReq)
		if err != nil {
			return nil, err
		}
		locResp, ok := resp.(*packet.LocationResponse)
		if !ok {
			return nil, werrors.Parsef(werrors.ReasonUnknownType, "resolver returned unexpected packet type %v", resp.PacketKind())
		}
		areaCode = locResp.Header.AreaCode
		if err := c.store.Store(ctx, lat, lon, areaCode, nowUnix()); err != nil {
			return nil, err
		}
	}

	queryReq, err := packet.NewQueryRequest(0, uint64(nowUnix()), areaCode, day, 1, opts...)
	if err != nil {
		return nil, err
	}
	resp, err := c.queryDispatch.Send(ctx, queryReq)
	if err != nil {
		return nil, err
	}
	queryResp, ok := resp.(*packet.QueryResponse)
	if !ok {
		return nil, werrors.Parsef(werrors.ReasonUnknownType, "query server returned unexpected packet type %v", resp.PacketKind())
	}

	return &Result{
		AreaCode:    areaCode,
		WeatherCode: queryResp.Tail.WeatherCode,
		Temperature: queryResp.Tail.Temperature,
		POP:         queryResp.Tail.POP,
		Alert:       queryResp.Alert,
		Disaster:    queryResp.Disaster,
		CacheHit:    cacheHit,
	}, nil
}

// nowUnix is a seam so timestamps don't depend on an import cycle or the
// wall clock inside deterministic tests exercising the chain's branching,
// not its exact timestamp values.
var nowUnix = func() int64 { return time.Now().Unix() }
