package packet

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestExtractSetRoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		startBit int
		length   int
		value    uint64
	}{
		{"nibble", 4, 4, 0xA},
		{"byte-aligned", 8, 8, 0xFF},
		{"spans-byte-boundary", 5, 11, 1023},
		{"full-64", 0, 64, 0xDEADBEEFCAFEBABE},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			buf := make([]byte, 16)
			Set(buf, c.startBit, c.length, c.value)
			mask := uint64(1)<<uint(c.length) - 1
			if c.length == 64 {
				mask = ^uint64(0)
			}
			got := Extract(buf, c.startBit, c.length)
			assert.Equal(t, got, c.value&mask)
		})
	}
}

func TestExtractOutOfRangeReturnsZero(t *testing.T) {
	buf := make([]byte, 2)
	assert.Equal(t, Extract(buf, 10, 10), uint64(0))
	assert.Equal(t, Extract(buf, 0, 65), uint64(0))
}

func TestSetOutOfRangeIsNoOp(t *testing.T) {
	buf := make([]byte, 2)
	Set(buf, 10, 10, 0xFF)
	assert.DeepEqual(t, buf, []byte{0, 0})
}

func TestU128LERoundTrip(t *testing.T) {
	src := make([]byte, 16)
	for i := range src {
		src[i] = byte(i + 1)
	}
	lo, hi := BytesToU128LE(src)
	out := make([]byte, 16)
	U128ToBytesLE(lo, hi, out)
	assert.DeepEqual(t, out, src)
}

func TestExtract128(t *testing.T) {
	buf := make([]byte, 16)
	for i := range buf {
		buf[i] = 0xFF
	}
	lo, hi := Extract128(buf, 0, 128)
	assert.Equal(t, lo, ^uint64(0))
	assert.Equal(t, hi, ^uint64(0))
}
