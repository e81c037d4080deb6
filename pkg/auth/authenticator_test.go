package auth

import (
	"testing"

	"gotest.tools/v3/assert"
)

// S3: HMAC-SHA256(key="wip", msg="1:1634567890:wip"), lowercase hex.
func TestTagMatchesAuthVector(t *testing.T) {
	got := Tag(1, 1634567890, "wip")
	want := "bc8a9d68474aef3725db93fb4525227b934c4cc90b6561a6ad49b73b399500b3"
	assert.Equal(t, got, want)
	assert.Assert(t, Verify(1, 1634567890, "wip", got))
}

func TestMessageLayout(t *testing.T) {
	assert.Equal(t, Message(1, 1634567890, "wip"), "1:1634567890:wip")
}

func TestVerifyRejectsWrongPassphrase(t *testing.T) {
	tag := Tag(1, 1634567890, "wip")
	assert.Assert(t, !Verify(1, 1634567890, "not-wip", tag))
}

func TestVerifyRejectsTamperedHash(t *testing.T) {
	tag := Tag(1, 1634567890, "wip")
	tampered := "00" + tag[2:]
	assert.Assert(t, !Verify(1, 1634567890, "wip", tampered))
}

func TestVerifyRejectsMalformedHex(t *testing.T) {
	assert.Assert(t, !Verify(1, 1634567890, "wip", "not-hex-at-all"))
}

func TestVerifyOrErrorReportsMissingHash(t *testing.T) {
	err := VerifyOrError(1, 1634567890, "wip", "")
	assert.ErrorContains(t, err, "auth")
}

func TestVerifyOrErrorReportsMismatch(t *testing.T) {
	err := VerifyOrError(1, 1634567890, "wip", "0000000000000000000000000000000000000000000000000000000000000000")
	assert.Assert(t, err != nil)
}

func TestVerifyOrErrorSucceeds(t *testing.T) {
	tag := Tag(1, 1634567890, "wip")
	assert.NilError(t, VerifyOrError(1, 1634567890, "wip", tag))
}
