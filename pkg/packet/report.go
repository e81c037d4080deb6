package packet

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/U22-2025/WIP-sub001/pkg/werrors"
)

// ReportRequest submits sensor/disaster data for an area (type=4). Values
// are optional; only the ones present are included in the extension block.
// Temperature is encoded value+100 on the wire to stay unsigned 8-bit across
// the supported range -100..155 Celsius.
type ReportRequest struct {
	layers.BaseLayer
	Header      Header
	WeatherCode *uint16
	TempC       *int16 // Celsius, -100..155
	POP         *uint8
	Alert       string
	Disaster    string
	AuthHash    string
}

// NewReportRequest constructs a ReportRequest for areaCode. Any of
// weatherCode/tempC/pop may be nil to omit that reading.
func NewReportRequest(packetID uint16, timestamp uint64, areaCode uint32, weatherCode *uint16, tempC *int16, pop *uint8, alert, disaster string) (*ReportRequest, error) {
	if areaCode > MaxAreaCode {
		return nil, werrors.Fieldf(werrors.ReasonFieldOutOfRange, "area_code", "area_code %d exceeds maximum of %d", areaCode, MaxAreaCode)
	}
	if tempC != nil && (*tempC < -100 || *tempC > 155) {
		return nil, werrors.Fieldf(werrors.ReasonFieldOutOfRange, "temperature", "temperature %d out of range [-100,155]", *tempC)
	}
	if pop != nil && *pop > 100 {
		return nil, werrors.Fieldf(werrors.ReasonFieldOutOfRange, "pop", "pop %d exceeds 100", *pop)
	}
	r := &ReportRequest{
		Header: Header{
			PacketID:  packetID,
			Type:      TypeReportRequest,
			Timestamp: timestamp,
			AreaCode:  areaCode,
		},
		WeatherCode: weatherCode,
		TempC:       tempC,
		POP:         pop,
		Alert:       alert,
		Disaster:    disaster,
	}
	r.Header.Flags.Weather = weatherCode != nil
	r.Header.Flags.Temperature = tempC != nil
	r.Header.Flags.POP = pop != nil
	r.Header.Flags.Alert = alert != ""
	r.Header.Flags.Disaster = disaster != ""
	return r, nil
}

func (r *ReportRequest) LayerType() gopacket.LayerType     { return LayerTypeReportRequest }
func (r *ReportRequest) CanDecode() gopacket.LayerClass    { return LayerTypeReportRequest }
func (r *ReportRequest) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }
func (r *ReportRequest) GetPacketID() uint16               { return r.Header.PacketID }
func (r *ReportRequest) SetPacketID(id uint16)             { r.Header.PacketID = id }
func (r *ReportRequest) PacketKind() PacketType            { return TypeReportRequest }
func (r *ReportRequest) GetVersion() uint8                 { return r.Header.Version }
func (r *ReportRequest) GetTimestamp() uint64              { return r.Header.Timestamp }
func (r *ReportRequest) SetAuthHash(hash string)           { r.AuthHash = hash }

// RequestResponseAuth sets the header's response_auth flag, asking the
// report server to attach its own auth_hash to the ReportResponse it sends
// back.
func (r *ReportRequest) RequestResponseAuth(v bool) { r.Header.Flags.ResponseAuth = v }

func (r *ReportRequest) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return err
	}
	r.Header = hdr
	if hdr.Flags.Extension && len(data) > HeaderSize {
		known, _, err := DecodeExtensions(data[HeaderSize:])
		if err != nil {
			return err
		}
		if v, ok := known["weather_code"]; ok {
			wc := uint16(v.UInt)
			r.WeatherCode = &wc
		}
		if v, ok := known["temperature_raw"]; ok {
			t := int16(v.UInt) - 100
			r.TempC = &t
		}
		if v, ok := known["pop"]; ok {
			p := uint8(v.UInt)
			r.POP = &p
		}
		if v, ok := known["alert"]; ok {
			r.Alert = v.Str
		}
		if v, ok := known["disaster"]; ok {
			r.Disaster = v.Str
		}
		if v, ok := known["auth_hash"]; ok {
			r.AuthHash = v.Str
		}
	}
	r.BaseLayer = layers.BaseLayer{Contents: data, Payload: nil}
	return nil
}

func (r *ReportRequest) ToBytes() ([]byte, error) {
	fields := map[string]Value{}
	if r.WeatherCode != nil {
		fields["weather_code"] = UintValue(uint64(*r.WeatherCode))
	}
	if r.TempC != nil {
		fields["temperature_raw"] = UintValue(uint64(int32(*r.TempC) + 100))
	}
	if r.POP != nil {
		fields["pop"] = UintValue(uint64(*r.POP))
	}
	if r.Alert != "" {
		fields["alert"] = StringValue(r.Alert)
	}
	if r.Disaster != "" {
		fields["disaster"] = StringValue(r.Disaster)
	}
	if r.AuthHash != "" {
		fields["auth_hash"] = StringValue(r.AuthHash)
		r.Header.Flags.RequestAuth = true
	}
	if len(fields) > 0 {
		r.Header.Flags.Extension = true
	}
	ext, err := EncodeExtensions(fields)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, HeaderSize+len(ext))
	EncodeHeader(r.Header, buf)
	copy(buf[HeaderSize:], ext)
	EmbedChecksum(buf, ChecksumOffset)
	return buf, nil
}

func (r *ReportRequest) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	return serializeVia(r.ToBytes, b)
}

// ReportResponse acknowledges a ReportRequest, echoing area_code and
// optionally mirroring the readings it received (type=5, 20 bytes).
type ReportResponse struct {
	layers.BaseLayer
	Header   Header
	Tail     Tail
	AuthHash string // hex, set by the report server when it echoes response_auth
}

func (r *ReportResponse) LayerType() gopacket.LayerType     { return LayerTypeReportResponse }
func (r *ReportResponse) CanDecode() gopacket.LayerClass    { return LayerTypeReportResponse }
func (r *ReportResponse) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }
func (r *ReportResponse) GetPacketID() uint16               { return r.Header.PacketID }
func (r *ReportResponse) SetPacketID(id uint16)             { r.Header.PacketID = id }
func (r *ReportResponse) PacketKind() PacketType            { return TypeReportResponse }
func (r *ReportResponse) GetVersion() uint8                 { return r.Header.Version }
func (r *ReportResponse) GetTimestamp() uint64              { return r.Header.Timestamp }
func (r *ReportResponse) GetAuthHash() string               { return r.AuthHash }

// AuthPresent reports whether this response actually carries an auth_hash
// extension field, as opposed to merely echoing the response_auth flag.
func (r *ReportResponse) AuthPresent() bool { return r.Header.Flags.RequestAuth }

// ResponseAuthSet reports whether the response_auth flag is set, i.e. the
// report server claims to have authenticated this response.
func (r *ReportResponse) ResponseAuthSet() bool { return r.Header.Flags.ResponseAuth }

func (r *ReportResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return err
	}
	r.Header = hdr
	tail, err := DecodeTail(data)
	if err != nil {
		return err
	}
	r.Tail = tail
	if hdr.Flags.Extension && len(data) > HeaderSize+TailSize {
		known, _, err := DecodeExtensions(data[HeaderSize+TailSize:])
		if err != nil {
			return err
		}
		if v, ok := known["auth_hash"]; ok {
			r.AuthHash = v.Str
		}
	}
	r.BaseLayer = layers.BaseLayer{Contents: data, Payload: nil}
	return nil
}

func (r *ReportResponse) ToBytes() ([]byte, error) {
	fields := map[string]Value{}
	if r.AuthHash != "" {
		fields["auth_hash"] = StringValue(r.AuthHash)
		r.Header.Flags.RequestAuth = true
	}
	if len(fields) > 0 {
		r.Header.Flags.Extension = true
	}
	ext, err := EncodeExtensions(fields)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, HeaderSize+TailSize+len(ext))
	EncodeHeader(r.Header, buf)
	EncodeTail(r.Tail, buf)
	copy(buf[HeaderSize+TailSize:], ext)
	EmbedChecksum(buf, ChecksumOffset)
	return buf, nil
}

func (r *ReportResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	return serializeVia(r.ToBytes, b)
}
