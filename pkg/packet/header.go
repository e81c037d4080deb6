package packet

import (
	"github.com/U22-2025/WIP-sub001/pkg/werrors"
)

// HeaderSize is the fixed 16-byte header width shared by every packet type.
const HeaderSize = 16

// TailSize is the additional 4 bytes carried by 20-byte Query/Report
// responses (weather_code, temperature, pop).
const TailSize = 4

// ChecksumOffset is the bit offset of the checksum field in the standard
// 16-byte-header layout. The checksum primitive itself takes the offset as
// a parameter so other layouts can reuse it.
const ChecksumOffset = 116

// MaxAreaCode is the largest value the 20-bit area_code field can hold.
const MaxAreaCode = 0xFFFFF

// PacketType is the 3-bit type field (bits 16-18).
type PacketType uint8

const (
	TypeLocationRequest  PacketType = 0
	TypeLocationResponse PacketType = 1
	TypeQueryRequest     PacketType = 2
	TypeQueryResponse    PacketType = 3
	TypeReportRequest    PacketType = 4
	TypeReportResponse   PacketType = 5
	TypeErrorResponse    PacketType = 7
)

func (t PacketType) String() string {
	switch t {
	case TypeLocationRequest:
		return "LocationRequest"
	case TypeLocationResponse:
		return "LocationResponse"
	case TypeQueryRequest:
		return "QueryRequest"
	case TypeQueryResponse:
		return "QueryResponse"
	case TypeReportRequest:
		return "ReportRequest"
	case TypeReportResponse:
		return "ReportResponse"
	case TypeErrorResponse:
		return "ErrorResponse"
	default:
		return "Unknown"
	}
}

// Day is "0=today" through "7=one week ahead". This module commits to a
// calendar-offset interpretation (days counted from the send timestamp's UTC
// midnight) for documentation purposes only; the codec itself only ever
// moves the raw integer.
type Day uint8

// Validate reports an error if d is out of the 0-7 range the 3-bit field
// can represent without overflowing into the reserved bits.
func (d Day) Validate() error {
	if d > 7 {
		return werrors.Fieldf(werrors.ReasonFieldOutOfRange, "day", "day %d exceeds maximum of 7", d)
	}
	return nil
}

// Flags holds the single-bit fields of the fixed header (bits 19-26).
type Flags struct {
	Weather      bool
	Temperature  bool
	POP          bool
	Alert        bool
	Disaster     bool
	Extension    bool
	RequestAuth  bool
	ResponseAuth bool
}

// Header is the 16-byte fixed header common to every WIP packet type.
type Header struct {
	Version   uint8  // 4 bits
	PacketID  uint16 // 12 bits, never written with the checksum field
	Type      PacketType
	Flags     Flags
	Day       Day
	Timestamp uint64 // unix seconds at construction time
	AreaCode  uint32 // 20 bits; 0 means "not set / resolve from coords"
}

// Validate checks the range constraints area_code and day must satisfy:
// area_code cannot exceed 0xFFFFF, day cannot exceed 7. PacketID and Version
// are masked on encode rather than rejected; strict version checking is an
// opt-in the dispatcher applies on receive.
func (h Header) Validate() error {
	if h.AreaCode > MaxAreaCode {
		return werrors.Fieldf(werrors.ReasonFieldOutOfRange, "area_code", "area_code %d exceeds maximum of %d", h.AreaCode, MaxAreaCode)
	}
	return h.Day.Validate()
}

// EncodeHeader writes h's fields into the first HeaderSize bytes of buf. It
// masks PacketID/Version/Day to their field widths and clears all reserved
// bits; buf must be at least HeaderSize bytes. It does not touch the
// checksum field — callers embed the checksum once the whole packet
// (header + tail + extensions) has been assembled, via EmbedChecksum.
func EncodeHeader(h Header, buf []byte) {
	Set(buf, 0, 4, uint64(h.Version))
	Set(buf, 4, 12, uint64(h.PacketID))
	Set(buf, 16, 3, uint64(h.Type))
	setFlag(buf, 19, h.Flags.Weather)
	setFlag(buf, 20, h.Flags.Temperature)
	setFlag(buf, 21, h.Flags.POP)
	setFlag(buf, 22, h.Flags.Alert)
	setFlag(buf, 23, h.Flags.Disaster)
	setFlag(buf, 24, h.Flags.Extension)
	setFlag(buf, 25, h.Flags.RequestAuth)
	setFlag(buf, 26, h.Flags.ResponseAuth)
	Set(buf, 27, 3, uint64(h.Day))
	Set(buf, 30, 2, 0) // reserved, always zero on transmit
	Set(buf, 32, 64, h.Timestamp)
	Set(buf, 96, 20, uint64(h.AreaCode))
}

// DecodeHeader reads the first HeaderSize bytes of buf into a Header. It does
// not verify the checksum (callers do that over the full packet separately)
// and does not reject reserved bits that are non-zero on receive; they're
// simply ignored.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, werrors.Parsef(werrors.ReasonInsufficientData, "need %d bytes for header, got %d", HeaderSize, len(buf))
	}
	h := Header{
		Version:   uint8(Extract(buf, 0, 4)),
		PacketID:  uint16(Extract(buf, 4, 12)),
		Type:      PacketType(Extract(buf, 16, 3)),
		Day:       Day(Extract(buf, 27, 3)),
		Timestamp: Extract(buf, 32, 64),
		AreaCode:  uint32(Extract(buf, 96, 20)),
	}
	h.Flags = Flags{
		Weather:      getFlag(buf, 19),
		Temperature:  getFlag(buf, 20),
		POP:          getFlag(buf, 21),
		Alert:        getFlag(buf, 22),
		Disaster:     getFlag(buf, 23),
		Extension:    getFlag(buf, 24),
		RequestAuth:  getFlag(buf, 25),
		ResponseAuth: getFlag(buf, 26),
	}
	return h, nil
}

func setFlag(buf []byte, bit int, v bool) {
	if v {
		Set(buf, bit, 1, 1)
	} else {
		Set(buf, bit, 1, 0)
	}
}

func getFlag(buf []byte, bit int) bool {
	return Extract(buf, bit, 1) != 0
}

// Tail carries the three fields 20-byte Query/Report responses append after
// the fixed header.
type Tail struct {
	WeatherCode *uint16 // nil if absent (wire value 0)
	Temperature *int8   // decoded value in Celsius; wire carries value+100
	POP         *uint8  // percent 0-100; nil if absent (wire value 0)
}

// EncodeTail writes t's fields into buf[HeaderSize : HeaderSize+TailSize].
func EncodeTail(t Tail, buf []byte) {
	base := HeaderSize * 8
	var weatherCode uint16
	if t.WeatherCode != nil {
		weatherCode = *t.WeatherCode
	}
	Set(buf, base, 16, uint64(weatherCode))

	var rawTemp uint8
	if t.Temperature != nil {
		rawTemp = uint8(int16(*t.Temperature) + 100)
	}
	Set(buf, base+16, 8, uint64(rawTemp))

	var pop uint8
	if t.POP != nil {
		pop = *t.POP
	}
	Set(buf, base+24, 8, uint64(pop))
}

// DecodeTail reads buf[HeaderSize : HeaderSize+TailSize] into a Tail.
// Temperature decodes as raw-100, not raw unmodified.
func DecodeTail(buf []byte) (Tail, error) {
	if len(buf) < HeaderSize+TailSize {
		return Tail{}, werrors.Parsef(werrors.ReasonInsufficientData, "need %d bytes for response tail, got %d", HeaderSize+TailSize, len(buf))
	}
	base := HeaderSize * 8
	var t Tail
	if wc := uint16(Extract(buf, base, 16)); wc != 0 {
		t.WeatherCode = &wc
	}
	rawTemp := uint8(Extract(buf, base+16, 8))
	if rawTemp != 0 {
		v := int8(int16(rawTemp) - 100)
		t.Temperature = &v
	}
	if pop := uint8(Extract(buf, base+24, 8)); pop != 0 {
		t.POP = &pop
	}
	return t, nil
}
