package proxy

import (
	"context"
	"net"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/U22-2025/WIP-sub001/internal/dispatch"
	"github.com/U22-2025/WIP-sub001/internal/locstore"
	"github.com/U22-2025/WIP-sub001/pkg/packet"
)

func testDispatchConfig() dispatch.Config {
	return dispatch.Config{
		Timeout:               200 * time.Millisecond,
		MaxAttempts:           1,
		InitialDelay:          10 * time.Millisecond,
		MaxDelay:              50 * time.Millisecond,
		BackoffMultiplier:     2.0,
		CacheTTL:              time.Minute,
		MaxCacheSize:          100,
		MaxConcurrentRequests: 10,
		SocketPoolSize:        1,
	}
}

// locationServer answers every LocationRequest it receives with areaCode,
// counting how many requests it has seen.
type locationServer struct {
	conn  *net.UDPConn
	count int
}

func startLocationServer(t *testing.T, areaCode uint32) *locationServer {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	assert.NilError(t, err)
	s := &locationServer{conn: conn}
	go func() {
		buf := make([]byte, 1024)
		for {
			n, from, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			s.count++
			id := uint16(packet.Extract(buf[:n], 4, 12))
			resp := &packet.LocationResponse{
				Header: packet.Header{Version: 1, PacketID: id, Type: packet.TypeLocationResponse, AreaCode: areaCode},
			}
			out, err := resp.ToBytes()
			if err != nil {
				return
			}
			conn.WriteToUDP(out, from)
		}
	}()
	return s
}

// queryServer answers every QueryRequest with a fixed weather code.
type queryServer struct {
	conn  *net.UDPConn
	count int
}

func startQueryServer(t *testing.T, weatherCode uint16) *queryServer {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	assert.NilError(t, err)
	s := &queryServer{conn: conn}
	go func() {
		buf := make([]byte, 1024)
		for {
			n, from, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			s.count++
			id := uint16(packet.Extract(buf[:n], 4, 12))
			wc := weatherCode
			resp := &packet.QueryResponse{
				Header: packet.Header{Version: 1, PacketID: id, Type: packet.TypeQueryResponse},
				Tail:   packet.Tail{WeatherCode: &wc},
			}
			out, err := resp.ToBytes()
			if err != nil {
				return
			}
			conn.WriteToUDP(out, from)
		}
	}()
	return s
}

// S6: a cold resolve_then_query call hits both servers; a repeat call for
// the same coordinates is served from the persistent cache and only hits
// the query server.
func TestResolveThenQueryCachesSecondCall(t *testing.T) {
	locSrv := startLocationServer(t, 4410)
	defer locSrv.conn.Close()
	qSrv := startQueryServer(t, 7)
	defer qSrv.conn.Close()

	locAddr := locSrv.conn.LocalAddr().(*net.UDPAddr)
	qAddr := qSrv.conn.LocalAddr().(*net.UDPAddr)

	locDispatch, err := dispatch.New(locAddr, testDispatchConfig())
	assert.NilError(t, err)
	defer locDispatch.Close()
	queryDispatch, err := dispatch.New(qAddr, testDispatchConfig())
	assert.NilError(t, err)
	defer queryDispatch.Close()

	store, err := locstore.Open("", time.Hour)
	assert.NilError(t, err)
	client := New(locDispatch, queryDispatch, store)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	first, err := client.ResolveThenQuery(ctx, 35.6895, 139.6917, 0, packet.WithWeather())
	assert.NilError(t, err)
	assert.Assert(t, !first.CacheHit)
	assert.Equal(t, first.AreaCode, uint32(4410))
	assert.Assert(t, first.WeatherCode != nil && *first.WeatherCode == 7)

	second, err := client.ResolveThenQuery(ctx, 35.6895, 139.6917, 0, packet.WithWeather())
	assert.NilError(t, err)
	assert.Assert(t, second.CacheHit)
	assert.Equal(t, second.AreaCode, uint32(4410))

	assert.Equal(t, locSrv.count, 1, "location resolver should only be hit once")
	assert.Equal(t, qSrv.count, 2, "query server should be hit on every call")
}
