package packet

import (
	"github.com/google/gopacket"

	"github.com/U22-2025/WIP-sub001/pkg/werrors"
)

// Packet is the small interface the dispatcher is generic over: every
// concrete request/response type implements it, so the hot path never needs
// a type switch beyond the one in Parse.
type Packet interface {
	gopacket.Layer
	ToBytes() ([]byte, error)
	GetPacketID() uint16
	SetPacketID(uint16)
	PacketKind() PacketType
	GetVersion() uint8
}

// Parse decodes buf into its concrete Packet type by peeking the 3-bit type
// field in the fixed header, verifying the checksum over the whole buffer,
// then dispatching to the per-type decoder. It never panics on malformed
// input; every failure is a *werrors.Error.
func Parse(buf []byte) (Packet, error) {
	hdr, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	if ok, stored, computed := VerifyChecksum(buf, ChecksumOffset); !ok {
		return nil, werrors.Checksumf(stored, computed)
	}

	lt := layerTypeFor(hdr.Type)
	if lt == gopacket.LayerTypePayload {
		return nil, werrors.Parsef(werrors.ReasonUnknownType, "unknown packet type %d", hdr.Type)
	}
	gp := gopacket.NewPacket(buf, lt, gopacket.NoCopy)
	if errLayer := gp.ErrorLayer(); errLayer != nil {
		return nil, errLayer.Error()
	}
	l := gp.Layer(lt)
	if l == nil {
		return nil, werrors.Parsef(werrors.ReasonUnknownType, "decoder produced no layer for type %d", hdr.Type)
	}
	typed, ok := l.(Packet)
	if !ok {
		return nil, werrors.Parsef(werrors.ReasonUnknownType, "layer for type %d does not implement Packet", hdr.Type)
	}
	return typed, nil
}
