// Package auth implements the WIP per-packet authenticator (C5): an
// HMAC-SHA256 tag over "packet_id:timestamp:passphrase", attached to and
// verified from a packet's auth_hash extension field.
//
// Written fresh in the same terse, one-function-per-concern style used
// elsewhere in this module for algorithm-selection switches.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/U22-2025/WIP-sub001/pkg/werrors"
)

// Message returns the exact string the HMAC is computed over:
// "<packet_id>:<timestamp>:<passphrase>" with decimal integer formatting.
func Message(packetID uint16, timestamp uint64, passphrase string) string {
	return fmt.Sprintf("%d:%d:%s", packetID, timestamp, passphrase)
}

// Tag computes the lowercase hex HMAC-SHA256 tag for (packetID, timestamp,
// passphrase), suitable for direct insertion as the auth_hash extension
// field value.
func Tag(packetID uint16, timestamp uint64, passphrase string) string {
	mac := hmac.New(sha256.New, []byte(passphrase))
	mac.Write([]byte(Message(packetID, timestamp, passphrase)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the tag from packetID/timestamp/passphrase and compares
// it to gotHash in constant time. A malformed (non-hex, wrong-length)
// gotHash is treated as a mismatch, not a panic.
func Verify(packetID uint16, timestamp uint64, passphrase, gotHash string) bool {
	want, err := hex.DecodeString(Tag(packetID, timestamp, passphrase))
	if err != nil {
		return false
	}
	got, err := hex.DecodeString(gotHash)
	if err != nil || len(got) != len(want) {
		return false
	}
	return subtle.ConstantTimeCompare(want, got) == 1
}

// VerifyOrError is Verify, but returns a typed *werrors.Error describing
// the failure instead of a bare bool, for callers that want to propagate a
// diagnostic straight to the caller.
func VerifyOrError(packetID uint16, timestamp uint64, passphrase, gotHash string) error {
	if gotHash == "" {
		return werrors.Authf(werrors.ReasonMissingAuthHash, "request_auth set but no auth_hash extension present")
	}
	if !Verify(packetID, timestamp, passphrase, gotHash) {
		return werrors.Authf(werrors.ReasonHMACMismatch, "hmac verification failed for packet_id=%d", packetID)
	}
	return nil
}
