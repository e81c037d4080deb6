package dispatch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/U22-2025/WIP-sub001/pkg/packet"
)

// Fingerprint derives the response-cache key for a request: its type plus
// the content-determining fields, explicitly excluding packet_id and
// timestamp so that two requests asking the same question at
// different times/IDs share a cache entry.
func Fingerprint(p packet.Packet) string {
	var raw string
	switch r := p.(type) {
	case *packet.LocationRequest:
		raw = fmt.Sprintf("loc:%.6f:%.6f:%d", r.Latitude, r.Longitude, r.Header.Day)
	case *packet.QueryRequest:
		raw = fmt.Sprintf("query:%d:%d:%v:%v:%v:%v:%v",
			r.Header.AreaCode, r.Header.Day,
			r.Header.Flags.Weather, r.Header.Flags.Temperature, r.Header.Flags.POP,
			r.Header.Flags.Alert, r.Header.Flags.Disaster)
	case *packet.ReportRequest:
		var weatherCode uint16
		if r.WeatherCode != nil {
			weatherCode = *r.WeatherCode
		}
		var tempC int16
		if r.TempC != nil {
			tempC = *r.TempC
		}
		var pop uint8
		if r.POP != nil {
			pop = *r.POP
		}
		raw = fmt.Sprintf("report:%d:%v:%v:%v:%v:%v:%v:%s:%s",
			r.Header.AreaCode, r.WeatherCode != nil, weatherCode, r.TempC != nil, tempC, r.POP != nil, pop, r.Alert, r.Disaster)
	default:
		raw = fmt.Sprintf("unknown:%d", p.PacketKind())
	}
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
