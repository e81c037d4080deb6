package packet

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/U22-2025/WIP-sub001/pkg/werrors"
)

// QueryOption mutates a QueryRequest's flag bits at construction, a
// fluent-builder shape for selecting which response fields to request.
type QueryOption func(*QueryRequest)

func WithWeather() QueryOption     { return func(q *QueryRequest) { q.Header.Flags.Weather = true } }
func WithTemperature() QueryOption { return func(q *QueryRequest) { q.Header.Flags.Temperature = true } }
func WithPOP() QueryOption         { return func(q *QueryRequest) { q.Header.Flags.POP = true } }
func WithAlert() QueryOption       { return func(q *QueryRequest) { q.Header.Flags.Alert = true } }
func WithDisaster() QueryOption    { return func(q *QueryRequest) { q.Header.Flags.Disaster = true } }

// QueryRequest identifies a target area code and requests any subset of
// {weather, temperature, pop, alert, disaster} via the header flag bits
// (type=2).
type QueryRequest struct {
	layers.BaseLayer
	Header   Header
	AuthHash string
}

// NewQueryRequest constructs a QueryRequest for areaCode, applying any
// QueryOptions to select which data the response should carry.
func NewQueryRequest(packetID uint16, timestamp uint64, areaCode uint32, day Day, version uint8, opts ...QueryOption) (*QueryRequest, error) {
	if areaCode > MaxAreaCode {
		return nil, werrors.Fieldf(werrors.ReasonFieldOutOfRange, "area_code", "area_code %d exceeds maximum of %d", areaCode, MaxAreaCode)
	}
	if err := day.Validate(); err != nil {
		return nil, err
	}
	q := &QueryRequest{
		Header: Header{
			Version:   version,
			PacketID:  packetID,
			Type:      TypeQueryRequest,
			Day:       day,
			Timestamp: timestamp,
			AreaCode:  areaCode,
		},
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

func (q *QueryRequest) LayerType() gopacket.LayerType     { return LayerTypeQueryRequest }
func (q *QueryRequest) CanDecode() gopacket.LayerClass    { return LayerTypeQueryRequest }
func (q *QueryRequest) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }
func (q *QueryRequest) GetPacketID() uint16               { return q.Header.PacketID }
func (q *QueryRequest) SetPacketID(id uint16)             { q.Header.PacketID = id }
func (q *QueryRequest) PacketKind() PacketType            { return TypeQueryRequest }
func (q *QueryRequest) GetVersion() uint8                 { return q.Header.Version }
func (q *QueryRequest) GetTimestamp() uint64              { return q.Header.Timestamp }
func (q *QueryRequest) SetAuthHash(hash string)           { q.AuthHash = hash }

// RequestResponseAuth sets the header's response_auth flag, asking the
// query server to attach its own auth_hash to the QueryResponse it sends back.
func (q *QueryRequest) RequestResponseAuth(v bool) { q.Header.Flags.ResponseAuth = v }

func (q *QueryRequest) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return err
	}
	q.Header = hdr
	if hdr.Flags.Extension && len(data) > HeaderSize {
		known, _, err := DecodeExtensions(data[HeaderSize:])
		if err != nil {
			return err
		}
		if v, ok := known["auth_hash"]; ok {
			q.AuthHash = v.Str
		}
	}
	q.BaseLayer = layers.BaseLayer{Contents: data, Payload: nil}
	return nil
}

func (q *QueryRequest) ToBytes() ([]byte, error) {
	var ext []byte
	if q.AuthHash != "" {
		q.Header.Flags.RequestAuth = true
		q.Header.Flags.Extension = true
		e, err := EncodeExtensions(map[string]Value{"auth_hash": StringValue(q.AuthHash)})
		if err != nil {
			return nil, err
		}
		ext = e
	}
	buf := make([]byte, HeaderSize+len(ext))
	EncodeHeader(q.Header, buf)
	copy(buf[HeaderSize:], ext)
	EmbedChecksum(buf, ChecksumOffset)
	return buf, nil
}

func (q *QueryRequest) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	return serializeVia(q.ToBytes, b)
}

// QueryResponse carries weather_code/temperature/pop in the 20-byte tail,
// plus optional alert/disaster text in the extension block (type=3).
type QueryResponse struct {
	layers.BaseLayer
	Header   Header
	Tail     Tail
	Alert    string
	Disaster string
	AuthHash string // hex, set by the query server when it echoes response_auth
}

func (q *QueryResponse) LayerType() gopacket.LayerType     { return LayerTypeQueryResponse }
func (q *QueryResponse) CanDecode() gopacket.LayerClass    { return LayerTypeQueryResponse }
func (q *QueryResponse) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }
func (q *QueryResponse) GetPacketID() uint16               { return q.Header.PacketID }
func (q *QueryResponse) SetPacketID(id uint16)             { q.Header.PacketID = id }
func (q *QueryResponse) PacketKind() PacketType            { return TypeQueryResponse }
func (q *QueryResponse) GetVersion() uint8                 { return q.Header.Version }
func (q *QueryResponse) GetTimestamp() uint64              { return q.Header.Timestamp }
func (q *QueryResponse) GetAuthHash() string               { return q.AuthHash }

// AuthPresent reports whether this response actually carries an auth_hash
// extension field, as opposed to merely echoing the response_auth flag.
func (q *QueryResponse) AuthPresent() bool { return q.Header.Flags.RequestAuth }

// ResponseAuthSet reports whether the response_auth flag is set, i.e. the
// query server claims to have authenticated this response.
func (q *QueryResponse) ResponseAuthSet() bool { return q.Header.Flags.ResponseAuth }

func (q *QueryResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return err
	}
	q.Header = hdr
	tail, err := DecodeTail(data)
	if err != nil {
		return err
	}
	q.Tail = tail
	if hdr.Flags.Extension && len(data) > HeaderSize+TailSize {
		known, _, err := DecodeExtensions(data[HeaderSize+TailSize:])
		if err != nil {
			return err
		}
		if v, ok := known["alert"]; ok {
			q.Alert = v.Str
		}
		if v, ok := known["disaster"]; ok {
			q.Disaster = v.Str
		}
		if v, ok := known["auth_hash"]; ok {
			q.AuthHash = v.Str
		}
	}
	q.BaseLayer = layers.BaseLayer{Contents: data, Payload: nil}
	return nil
}

func (q *QueryResponse) ToBytes() ([]byte, error) {
	fields := map[string]Value{}
	if q.Alert != "" {
		fields["alert"] = StringValue(q.Alert)
	}
	if q.Disaster != "" {
		fields["disaster"] = StringValue(q.Disaster)
	}
	if q.AuthHash != "" {
		fields["auth_hash"] = StringValue(q.AuthHash)
		q.Header.Flags.RequestAuth = true
	}
	if len(fields) > 0 {
		q.Header.Flags.Extension = true
	}
	ext, err := EncodeExtensions(fields)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, HeaderSize+TailSize+len(ext))
	EncodeHeader(q.Header, buf)
	EncodeTail(q.Tail, buf)
	copy(buf[HeaderSize+TailSize:], ext)
	EmbedChecksum(buf, ChecksumOffset)
	return buf, nil
}

func (q *QueryResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	return serializeVia(q.ToBytes, b)
}
