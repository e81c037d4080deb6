package packet

import (
	"github.com/google/gopacket"
)

// Each WIP packet type registers its own gopacket.LayerType, the same way
// pkg/ipmi registers LayerTypeMessage: a small integer ID, a name for
// diagnostics, and a Decoder entry point gopacket.NewPacket can dispatch to
// once the caller has peeked the 3-bit type field in the fixed header.
var (
	LayerTypeLocationRequest  = gopacket.RegisterLayerType(4001, gopacket.LayerTypeMetadata{Name: "WIPLocationRequest", Decoder: gopacket.DecodeFunc(decodeLocationRequest)})
	LayerTypeLocationResponse = gopacket.RegisterLayerType(4002, gopacket.LayerTypeMetadata{Name: "WIPLocationResponse", Decoder: gopacket.DecodeFunc(decodeLocationResponse)})
	LayerTypeQueryRequest     = gopacket.RegisterLayerType(4003, gopacket.LayerTypeMetadata{Name: "WIPQueryRequest", Decoder: gopacket.DecodeFunc(decodeQueryRequest)})
	LayerTypeQueryResponse    = gopacket.RegisterLayerType(4004, gopacket.LayerTypeMetadata{Name: "WIPQueryResponse", Decoder: gopacket.DecodeFunc(decodeQueryResponse)})
	LayerTypeReportRequest    = gopacket.RegisterLayerType(4005, gopacket.LayerTypeMetadata{Name: "WIPReportRequest", Decoder: gopacket.DecodeFunc(decodeReportRequest)})
	LayerTypeReportResponse   = gopacket.RegisterLayerType(4006, gopacket.LayerTypeMetadata{Name: "WIPReportResponse", Decoder: gopacket.DecodeFunc(decodeReportResponse)})
	LayerTypeErrorResponse    = gopacket.RegisterLayerType(4007, gopacket.LayerTypeMetadata{Name: "WIPErrorResponse", Decoder: gopacket.DecodeFunc(decodeErrorResponse)})
)

// layerTypeFor maps the 3-bit wire type field to the gopacket.LayerType
// gopacket.NewPacket should start decoding from, mirroring
// pkg/ipmi/operation.go's operationLayerTypes lookup table.
func layerTypeFor(t PacketType) gopacket.LayerType {
	switch t {
	case TypeLocationRequest:
		return LayerTypeLocationRequest
	case TypeLocationResponse:
		return LayerTypeLocationResponse
	case TypeQueryRequest:
		return LayerTypeQueryRequest
	case TypeQueryResponse:
		return LayerTypeQueryResponse
	case TypeReportRequest:
		return LayerTypeReportRequest
	case TypeReportResponse:
		return LayerTypeReportResponse
	case TypeErrorResponse:
		return LayerTypeErrorResponse
	default:
		return gopacket.LayerTypePayload
	}
}

func decodeLocationRequest(data []byte, p gopacket.PacketBuilder) error {
	l := &LocationRequest{}
	if err := l.DecodeFromBytes(data, p); err != nil {
		return err
	}
	p.AddLayer(l)
	return nil
}

func decodeLocationResponse(data []byte, p gopacket.PacketBuilder) error {
	l := &LocationResponse{}
	if err := l.DecodeFromBytes(data, p); err != nil {
		return err
	}
	p.AddLayer(l)
	return nil
}

func decodeQueryRequest(data []byte, p gopacket.PacketBuilder) error {
	l := &QueryRequest{}
	if err := l.DecodeFromBytes(data, p); err != nil {
		return err
	}
	p.AddLayer(l)
	return nil
}

func decodeQueryResponse(data []byte, p gopacket.PacketBuilder) error {
	l := &QueryResponse{}
	if err := l.DecodeFromBytes(data, p); err != nil {
		return err
	}
	p.AddLayer(l)
	return nil
}

func decodeReportRequest(data []byte, p gopacket.PacketBuilder) error {
	l := &ReportRequest{}
	if err := l.DecodeFromBytes(data, p); err != nil {
		return err
	}
	p.AddLayer(l)
	return nil
}

func decodeReportResponse(data []byte, p gopacket.PacketBuilder) error {
	l := &ReportResponse{}
	if err := l.DecodeFromBytes(data, p); err != nil {
		return err
	}
	p.AddLayer(l)
	return nil
}

func decodeErrorResponse(data []byte, p gopacket.PacketBuilder) error {
	l := &ErrorResponse{}
	if err := l.DecodeFromBytes(data, p); err != nil {
		return err
	}
	p.AddLayer(l)
	return nil
}
