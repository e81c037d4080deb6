package packet

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestEmbedAndVerifyChecksum(t *testing.T) {
	buf := make([]byte, HeaderSize)
	EncodeHeader(Header{Version: 1, PacketID: 42, Type: TypeQueryRequest, AreaCode: 555}, buf)
	EmbedChecksum(buf, ChecksumOffset)

	ok, stored, computed := VerifyChecksum(buf, ChecksumOffset)
	assert.Assert(t, ok)
	assert.Equal(t, stored, computed)
}

func TestVerifyChecksumDetectsCorruption(t *testing.T) {
	buf := make([]byte, HeaderSize)
	EncodeHeader(Header{Version: 1, PacketID: 42, Type: TypeQueryRequest, AreaCode: 555}, buf)
	EmbedChecksum(buf, ChecksumOffset)

	buf[2] ^= 0x01
	ok, stored, computed := VerifyChecksum(buf, ChecksumOffset)
	assert.Assert(t, !ok)
	assert.Assert(t, stored != computed)
}

func TestVerifyChecksumOnEmptyBuffer(t *testing.T) {
	ok, _, _ := VerifyChecksum(nil, ChecksumOffset)
	assert.Assert(t, !ok)
}

func TestComputeChecksumFoldsCarry(t *testing.T) {
	// A buffer of all-0xFF bytes forces repeated end-around-carry folding.
	buf := make([]byte, 32)
	for i := range buf {
		buf[i] = 0xFF
	}
	sum := computeChecksum(buf)
	assert.Assert(t, sum <= checksumMask)
}
