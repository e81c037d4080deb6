package dispatch

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/U22-2025/WIP-sub001/pkg/packet"
)

func TestFingerprintIgnoresPacketIDAndTimestamp(t *testing.T) {
	a, err := packet.NewQueryRequest(1, 100, 123, 0, 1, packet.WithWeather())
	assert.NilError(t, err)
	b, err := packet.NewQueryRequest(2, 200, 123, 0, 1, packet.WithWeather())
	assert.NilError(t, err)

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprintDistinguishesAreaCode(t *testing.T) {
	a, err := packet.NewQueryRequest(1, 100, 123, 0, 1, packet.WithWeather())
	assert.NilError(t, err)
	b, err := packet.NewQueryRequest(1, 100, 456, 0, 1, packet.WithWeather())
	assert.NilError(t, err)

	assert.Assert(t, Fingerprint(a) != Fingerprint(b))
}

func TestFingerprintDistinguishesRequestedFields(t *testing.T) {
	a, err := packet.NewQueryRequest(1, 100, 123, 0, 1, packet.WithWeather())
	assert.NilError(t, err)
	b, err := packet.NewQueryRequest(1, 100, 123, 0, 1)
	assert.NilError(t, err)

	assert.Assert(t, Fingerprint(a) != Fingerprint(b))
}

func TestFingerprintDistinguishesLocationFromQuery(t *testing.T) {
	loc, err := packet.NewLocationRequest(1, 100, 35.0, 139.0, 0, 1)
	assert.NilError(t, err)
	q, err := packet.NewQueryRequest(1, 100, 123, 0, 1)
	assert.NilError(t, err)

	assert.Assert(t, Fingerprint(loc) != Fingerprint(q))
}

func TestFingerprintStableAcrossCalls(t *testing.T) {
	loc, err := packet.NewLocationRequest(1, 100, 35.6895, 139.6917, 0, 1)
	assert.NilError(t, err)
	assert.Equal(t, Fingerprint(loc), Fingerprint(loc))
}

// Two ReportRequests built from distinct *uint16/*int16/*uint8 pointers but
// identical values must fingerprint identically; formatting the pointers
// directly instead of their values would make this fail every time, since
// each call to NewReportRequest allocates fresh pointers.
func TestFingerprintReportIgnoresPointerIdentity(t *testing.T) {
	wc1, tc1, pop1 := uint16(100), int16(20), uint8(50)
	a, err := packet.NewReportRequest(1, 100, 123, &wc1, &tc1, &pop1, "", "")
	assert.NilError(t, err)

	wc2, tc2, pop2 := uint16(100), int16(20), uint8(50)
	b, err := packet.NewReportRequest(2, 200, 123, &wc2, &tc2, &pop2, "", "")
	assert.NilError(t, err)

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

// An omitted reading (nil pointer) must not fingerprint the same as an
// explicitly reported zero value.
func TestFingerprintReportDistinguishesOmittedFromZero(t *testing.T) {
	zero := uint16(0)
	withZero, err := packet.NewReportRequest(1, 100, 123, &zero, nil, nil, "", "")
	assert.NilError(t, err)
	omitted, err := packet.NewReportRequest(1, 100, 123, nil, nil, nil, "", "")
	assert.NilError(t, err)

	assert.Assert(t, Fingerprint(withZero) != Fingerprint(omitted))
}
