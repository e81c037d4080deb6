package packet

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/U22-2025/WIP-sub001/pkg/werrors"
)

// ErrorCode enumerates the single byte an ErrorResponse carries after its
// fixed header.
type ErrorCode uint8

const (
	ErrCodeInvalidFormat       ErrorCode = 1
	ErrCodeChecksumMismatch    ErrorCode = 2
	ErrCodeUnsupportedVersion  ErrorCode = 3
	ErrCodeUnknownType         ErrorCode = 4
	ErrCodeMissingRequiredData ErrorCode = 5
	ErrCodeServerError         ErrorCode = 6
	ErrCodeTimeout             ErrorCode = 7
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeInvalidFormat:
		return "invalid packet format"
	case ErrCodeChecksumMismatch:
		return "checksum mismatch"
	case ErrCodeUnsupportedVersion:
		return "unsupported version"
	case ErrCodeUnknownType:
		return "unknown type"
	case ErrCodeMissingRequiredData:
		return "missing required data"
	case ErrCodeServerError:
		return "server error"
	case ErrCodeTimeout:
		return "timeout"
	default:
		return "unknown error code"
	}
}

// ErrorResponse is a server-originated failure reply (type=7): the fixed
// header followed by one byte of error code.
type ErrorResponse struct {
	layers.BaseLayer
	Header Header
	Code   ErrorCode
}

func (e *ErrorResponse) LayerType() gopacket.LayerType     { return LayerTypeErrorResponse }
func (e *ErrorResponse) CanDecode() gopacket.LayerClass    { return LayerTypeErrorResponse }
func (e *ErrorResponse) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }
func (e *ErrorResponse) GetPacketID() uint16               { return e.Header.PacketID }
func (e *ErrorResponse) SetPacketID(id uint16)             { e.Header.PacketID = id }
func (e *ErrorResponse) PacketKind() PacketType            { return TypeErrorResponse }
func (e *ErrorResponse) GetVersion() uint8                 { return e.Header.Version }

func (e *ErrorResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return err
	}
	e.Header = hdr
	if len(data) < HeaderSize+1 {
		return werrors.Parsef(werrors.ReasonInsufficientData, "need %d bytes for error response, got %d", HeaderSize+1, len(data))
	}
	e.Code = ErrorCode(data[HeaderSize])
	e.BaseLayer = layers.BaseLayer{Contents: data, Payload: nil}
	return nil
}

func (e *ErrorResponse) ToBytes() ([]byte, error) {
	buf := make([]byte, HeaderSize+1)
	EncodeHeader(e.Header, buf)
	buf[HeaderSize] = byte(e.Code)
	EmbedChecksum(buf, ChecksumOffset)
	return buf, nil
}

func (e *ErrorResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	return serializeVia(e.ToBytes, b)
}

// ToWIPError converts a received ErrorResponse into a *werrors.Error of kind
// Remote, carrying the server's code for diagnostics.
func (e *ErrorResponse) ToWIPError() *werrors.Error {
	return werrors.Remotef(int(e.Header.PacketID), int(e.Code))
}
