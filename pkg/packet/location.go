package packet

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/U22-2025/WIP-sub001/pkg/werrors"
)

// LocationRequest resolves coordinates to an area code (type=0). The
// area_code field is always zero on the wire; the coordinates travel in the
// extension block as registered latitude/longitude fields.
type LocationRequest struct {
	layers.BaseLayer
	Header    Header
	Latitude  float64
	Longitude float64
	AuthHash  string // hex, set by pkg/auth when RequestAuth is enabled
}

// NewLocationRequest constructs a LocationRequest. lat must be in
// [-90, 90], lon in [-180, 180].
func NewLocationRequest(packetID uint16, timestamp uint64, lat, lon float64, day Day, version uint8) (*LocationRequest, error) {
	if lat < -90 || lat > 90 {
		return nil, werrors.Fieldf(werrors.ReasonFieldOutOfRange, "latitude", "latitude %f out of range", lat)
	}
	if lon < -180 || lon > 180 {
		return nil, werrors.Fieldf(werrors.ReasonFieldOutOfRange, "longitude", "longitude %f out of range", lon)
	}
	if err := day.Validate(); err != nil {
		return nil, err
	}
	return &LocationRequest{
		Header: Header{
			Version:   version,
			PacketID:  packetID,
			Type:      TypeLocationRequest,
			Day:       day,
			Timestamp: timestamp,
			Flags:     Flags{Extension: true},
		},
		Latitude:  lat,
		Longitude: lon,
	}, nil
}

func (l *LocationRequest) LayerType() gopacket.LayerType     { return LayerTypeLocationRequest }
func (l *LocationRequest) CanDecode() gopacket.LayerClass    { return LayerTypeLocationRequest }
func (l *LocationRequest) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }
func (l *LocationRequest) GetPacketID() uint16               { return l.Header.PacketID }
func (l *LocationRequest) SetPacketID(id uint16)             { l.Header.PacketID = id }
func (l *LocationRequest) PacketKind() PacketType            { return TypeLocationRequest }
func (l *LocationRequest) GetVersion() uint8                 { return l.Header.Version }
func (l *LocationRequest) GetTimestamp() uint64              { return l.Header.Timestamp }
func (l *LocationRequest) SetAuthHash(hash string)           { l.AuthHash = hash }

// RequestResponseAuth sets the header's response_auth flag, asking the
// resolver to attach its own auth_hash to the LocationResponse it sends back.
func (l *LocationRequest) RequestResponseAuth(v bool) { l.Header.Flags.ResponseAuth = v }

func (l *LocationRequest) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return err
	}
	l.Header = hdr
	offset := HeaderSize
	if hdr.Flags.Extension {
		known, _, err := DecodeExtensions(data[offset:])
		if err != nil {
			return err
		}
		if v, ok := known["latitude"]; ok {
			l.Latitude = v.F64
		}
		if v, ok := known["longitude"]; ok {
			l.Longitude = v.F64
		}
		if v, ok := known["auth_hash"]; ok {
			l.AuthHash = v.Str
		}
	}
	l.BaseLayer = layers.BaseLayer{Contents: data, Payload: nil}
	return nil
}

// ToBytes serializes the request: fixed header, extension block (lat/lon,
// and auth_hash if set), then the checksum embedded over the whole buffer.
func (l *LocationRequest) ToBytes() ([]byte, error) {
	fields := map[string]Value{
		"latitude":  Float64Value(l.Latitude),
		"longitude": Float64Value(l.Longitude),
	}
	if l.AuthHash != "" {
		fields["auth_hash"] = StringValue(l.AuthHash)
		l.Header.Flags.RequestAuth = true
	}
	l.Header.Flags.Extension = true
	ext, err := EncodeExtensions(fields)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, HeaderSize+len(ext))
	EncodeHeader(l.Header, buf)
	copy(buf[HeaderSize:], ext)
	EmbedChecksum(buf, ChecksumOffset)
	return buf, nil
}

func (l *LocationRequest) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	return serializeVia(l.ToBytes, b)
}

// LocationResponse carries the resolved area code in the fixed header, and
// optionally latitude/longitude/source in the extension block (type=1).
type LocationResponse struct {
	layers.BaseLayer
	Header    Header
	Latitude  *float64
	Longitude *float64
	Source    string
	AuthHash  string // hex, set by the resolver when it echoes response_auth
}

func (l *LocationResponse) LayerType() gopacket.LayerType     { return LayerTypeLocationResponse }
func (l *LocationResponse) CanDecode() gopacket.LayerClass    { return LayerTypeLocationResponse }
func (l *LocationResponse) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }
func (l *LocationResponse) GetPacketID() uint16               { return l.Header.PacketID }
func (l *LocationResponse) SetPacketID(id uint16)             { l.Header.PacketID = id }
func (l *LocationResponse) PacketKind() PacketType            { return TypeLocationResponse }
func (l *LocationResponse) GetVersion() uint8                 { return l.Header.Version }
func (l *LocationResponse) GetTimestamp() uint64              { return l.Header.Timestamp }
func (l *LocationResponse) GetAuthHash() string               { return l.AuthHash }

// AuthPresent reports whether this response actually carries an auth_hash
// extension field, as opposed to merely echoing the response_auth flag.
func (l *LocationResponse) AuthPresent() bool { return l.Header.Flags.RequestAuth }

// ResponseAuthSet reports whether the response_auth flag is set, i.e. the
// resolver claims to have authenticated this response.
func (l *LocationResponse) ResponseAuthSet() bool { return l.Header.Flags.ResponseAuth }

func (l *LocationResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return err
	}
	l.Header = hdr
	if hdr.Flags.Extension {
		known, _, err := DecodeExtensions(data[HeaderSize:])
		if err != nil {
			return err
		}
		if v, ok := known["latitude"]; ok {
			f := v.F64
			l.Latitude = &f
		}
		if v, ok := known["longitude"]; ok {
			f := v.F64
			l.Longitude = &f
		}
		if v, ok := known["source"]; ok {
			l.Source = v.Str
		}
		if v, ok := known["auth_hash"]; ok {
			l.AuthHash = v.Str
		}
	}
	l.BaseLayer = layers.BaseLayer{Contents: data, Payload: nil}
	return nil
}

func (l *LocationResponse) ToBytes() ([]byte, error) {
	fields := map[string]Value{}
	if l.Latitude != nil {
		fields["latitude"] = Float64Value(*l.Latitude)
	}
	if l.Longitude != nil {
		fields["longitude"] = Float64Value(*l.Longitude)
	}
	if l.Source != "" {
		fields["source"] = StringValue(l.Source)
	}
	if l.AuthHash != "" {
		fields["auth_hash"] = StringValue(l.AuthHash)
		l.Header.Flags.RequestAuth = true
	}
	if len(fields) > 0 {
		l.Header.Flags.Extension = true
	}
	ext, err := EncodeExtensions(fields)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, HeaderSize+len(ext))
	EncodeHeader(l.Header, buf)
	copy(buf[HeaderSize:], ext)
	EmbedChecksum(buf, ChecksumOffset)
	return buf, nil
}

func (l *LocationResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	return serializeVia(l.ToBytes, b)
}
