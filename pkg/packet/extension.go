package packet

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/U22-2025/WIP-sub001/pkg/fieldreg"
	"github.com/U22-2025/WIP-sub001/pkg/werrors"
)

// recordHeaderBits: 16-bit little-endian header per TLV record, low 10
// bits the payload length in bytes, high 6 bits the field ID (not the
// alternative 4-bit/12-bit layout some dual implementations use).
const (
	lengthBits = 10
	idBits     = 6
	maxLength  = (1 << lengthBits) - 1
)

// Value is a tagged extension-field payload, mirroring the per-field-type
// switch in pkg/ipmi/message.go's decodeSpecialNetFns, generalized from
// "body code or enterprise number" to a closed sum of wire types.
type Value struct {
	Kind  fieldreg.Kind
	Int   int64
	UInt  uint64
	F64   float64
	Str   string
	Bytes []byte
}

func IntValue(v int64) Value       { return Value{Kind: fieldreg.KindInt, Int: v} }
func UintValue(v uint64) Value     { return Value{Kind: fieldreg.KindUint, UInt: v} }
func Float64Value(v float64) Value { return Value{Kind: fieldreg.KindFloat64, F64: v} }
func StringValue(v string) Value   { return Value{Kind: fieldreg.KindString, Str: v} }
func BytesValue(v []byte) Value    { return Value{Kind: fieldreg.KindBytes, Bytes: v} }

// Equal reports whether two Values hold the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case fieldreg.KindInt:
		return v.Int == o.Int
	case fieldreg.KindUint:
		return v.UInt == o.UInt
	case fieldreg.KindFloat64:
		return v.F64 == o.F64
	case fieldreg.KindString:
		return v.Str == o.Str
	case fieldreg.KindBytes:
		if len(v.Bytes) != len(o.Bytes) {
			return false
		}
		for i := range v.Bytes {
			if v.Bytes[i] != o.Bytes[i] {
				return false
			}
		}
		return true
	}
	return false
}

// RawField is an extension record whose ID is not in the registry. It is
// preserved verbatim by position rather than dropped.
type RawField struct {
	ID      fieldreg.ID
	Payload []byte
}

// encodeValue serializes a Value's payload per its kind: integers as a
// minimal little-endian representation, floats as IEEE-754 binary64,
// strings as UTF-8 with no terminator, byte arrays verbatim.
func encodeValue(v Value) ([]byte, error) {
	switch v.Kind {
	case fieldreg.KindInt:
		return minimalLE(uint64(v.Int)), nil
	case fieldreg.KindUint:
		return minimalLE(v.UInt), nil
	case fieldreg.KindFloat64:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v.F64))
		return buf, nil
	case fieldreg.KindString:
		return []byte(v.Str), nil
	case fieldreg.KindBytes:
		return v.Bytes, nil
	default:
		return nil, werrors.Fieldf(werrors.ReasonTypeMismatch, "", "unknown value kind %d", v.Kind)
	}
}

// decodeValue parses payload according to kind.
func decodeValue(kind fieldreg.Kind, payload []byte) (Value, error) {
	switch kind {
	case fieldreg.KindInt:
		return IntValue(int64(decodeMinimalLE(payload))), nil
	case fieldreg.KindUint:
		return UintValue(decodeMinimalLE(payload)), nil
	case fieldreg.KindFloat64:
		if len(payload) != 8 {
			return Value{}, werrors.Fieldf(werrors.ReasonTypeMismatch, "", "float64 field needs 8 bytes, got %d", len(payload))
		}
		bits := binary.LittleEndian.Uint64(payload)
		return Float64Value(math.Float64frombits(bits)), nil
	case fieldreg.KindString:
		return StringValue(string(payload)), nil
	case fieldreg.KindBytes:
		cp := make([]byte, len(payload))
		copy(cp, payload)
		return BytesValue(cp), nil
	default:
		return Value{}, werrors.Fieldf(werrors.ReasonTypeMismatch, "", "unknown value kind %d", kind)
	}
}

// minimalLE returns the smallest-width little-endian encoding of v that
// round-trips it (at least one byte, for v==0).
func minimalLE(v uint64) []byte {
	n := 1
	for shifted := v >> 8; shifted != 0; shifted >>= 8 {
		n++
	}
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		buf[i] = byte(v >> uint(i*8))
	}
	return buf
}

func decodeMinimalLE(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// EncodeExtensions packs a map of registered field name -> Value into the
// extension block wire format: a concatenation of 16-bit header + payload
// TLV records, one per field, in an arbitrary but stable order.
func EncodeExtensions(fields map[string]Value) ([]byte, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	var out []byte
	for _, name := range names {
		v := fields[name]
		id, kind, ok := fieldreg.Lookup(name)
		if !ok {
			return nil, werrors.Fieldf(werrors.ReasonUnknownField, name, "unregistered extension field %q", name)
		}
		if v.Kind != kind {
			return nil, werrors.Fieldf(werrors.ReasonTypeMismatch, name, "field %q expects kind %d, got %d", name, kind, v.Kind)
		}
		payload, err := encodeValue(v)
		if err != nil {
			return nil, err
		}
		if len(payload) > maxLength {
			return nil, werrors.Fieldf(werrors.ReasonConstraint, name, "field %q payload too long: %d bytes", name, len(payload))
		}
		header := uint16(len(payload)&maxLength) | uint16(id)<<lengthBits
		rec := make([]byte, 2+len(payload))
		binary.LittleEndian.PutUint16(rec, header)
		copy(rec[2:], payload)
		out = append(out, rec...)
	}
	return out, nil
}

// DecodeExtensions walks buf one TLV record at a time. Registered IDs are
// decoded into known by name; unregistered IDs are skipped by length and
// returned verbatim in unknown rather than discarded. The packet decoders in
// this package do not keep unknown, so re-serializing a decoded packet omits
// those records; checksum verification runs over the original bytes.
func DecodeExtensions(buf []byte) (known map[string]Value, unknown []RawField, err error) {
	known = make(map[string]Value)
	offset := 0
	for offset < len(buf) {
		if offset+2 > len(buf) {
			return nil, nil, werrors.Parsef(werrors.ReasonMalformedExtension, "truncated extension record header at offset %d", offset)
		}
		header := binary.LittleEndian.Uint16(buf[offset : offset+2])
		length := int(header & maxLength)
		id := fieldreg.ID(header >> lengthBits)
		offset += 2
		if offset+length > len(buf) {
			return nil, nil, werrors.Parsef(werrors.ReasonMalformedExtension, "extension record id=%d declares length %d beyond buffer", id, length)
		}
		payload := buf[offset : offset+length]
		offset += length

		if registeredName, isKnown := fieldreg.Name(id); isKnown {
			kind, _ := fieldreg.KindOf(id)
			v, derr := decodeValue(kind, payload)
			if derr != nil {
				return nil, nil, derr
			}
			known[registeredName] = v
			continue
		}
		cp := make([]byte, len(payload))
		copy(cp, payload)
		unknown = append(unknown, RawField{ID: id, Payload: cp})
	}
	return known, unknown, nil
}
