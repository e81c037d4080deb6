package packet

import "github.com/google/gopacket"

// serializeVia adapts a ToBytes()-style encoder to gopacket's
// SerializableLayer.SerializeTo, the way pkg/ipmi/message.go's SerializeTo
// writes directly into the buffer gopacket hands it.
func serializeVia(toBytes func() ([]byte, error), b gopacket.SerializeBuffer) error {
	raw, err := toBytes()
	if err != nil {
		return err
	}
	bytes, err := b.PrependBytes(len(raw))
	if err != nil {
		return err
	}
	copy(bytes, raw)
	return nil
}
