package locstore

import (
	"context"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func TestStoreThenLookupRoundTrip(t *testing.T) {
	s, err := Open("", time.Hour)
	assert.NilError(t, err)
	defer s.Close()

	ctx := context.Background()
	assert.NilError(t, s.Store(ctx, 35.6895, 139.6917, 4410, 1000))

	areaCode, ok, err := s.Lookup(ctx, 35.6895, 139.6917, 1001)
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, areaCode, uint32(4410))
}

func TestLookupRoundsCoordinatesToPrecision(t *testing.T) {
	s, err := Open("", 0)
	assert.NilError(t, err)
	defer s.Close()

	ctx := context.Background()
	assert.NilError(t, s.Store(ctx, 35.68951234, 139.69171234, 4410, 0))

	areaCode, ok, err := s.Lookup(ctx, 35.68949999, 139.69169999, 0)
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, areaCode, uint32(4410))
}

func TestLookupMissReturnsNotOK(t *testing.T) {
	s, err := Open("", 0)
	assert.NilError(t, err)
	defer s.Close()

	_, ok, err := s.Lookup(context.Background(), 0, 0, 0)
	assert.NilError(t, err)
	assert.Assert(t, !ok)
}

func TestLookupTreatsStaleEntryAsMiss(t *testing.T) {
	s, err := Open("", time.Hour)
	assert.NilError(t, err)
	defer s.Close()

	ctx := context.Background()
	assert.NilError(t, s.Store(ctx, 1, 1, 5, 0))

	// 1 hour and 1 second later the entry is past its TTL.
	_, ok, err := s.Lookup(ctx, 1, 1, int64(time.Hour.Seconds())+1)
	assert.NilError(t, err)
	assert.Assert(t, !ok)
}

func TestLookupNeverExpiresWhenTTLIsZero(t *testing.T) {
	s, err := Open("", 0)
	assert.NilError(t, err)
	defer s.Close()

	ctx := context.Background()
	assert.NilError(t, s.Store(ctx, 1, 1, 5, 0))

	_, ok, err := s.Lookup(ctx, 1, 1, 1<<40)
	assert.NilError(t, err)
	assert.Assert(t, ok)
}

func TestStoreOverwritesExistingAreaCode(t *testing.T) {
	s, err := Open("", 0)
	assert.NilError(t, err)
	defer s.Close()

	ctx := context.Background()
	assert.NilError(t, s.Store(ctx, 1, 1, 5, 0))
	assert.NilError(t, s.Store(ctx, 1, 1, 9, 1))

	areaCode, ok, err := s.Lookup(ctx, 1, 1, 1)
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, areaCode, uint32(9))
}

// Re-Store-ing an already-expired entry must refresh created_at, so the row
// leaves the expired state instead of staying permanently stale.
func TestStoreRefreshesCreatedAtOnReResolve(t *testing.T) {
	s, err := Open("", time.Hour)
	assert.NilError(t, err)
	defer s.Close()

	ctx := context.Background()
	assert.NilError(t, s.Store(ctx, 1, 1, 5, 0))

	staleAt := int64(time.Hour.Seconds()) + 1
	_, ok, err := s.Lookup(ctx, 1, 1, staleAt)
	assert.NilError(t, err)
	assert.Assert(t, !ok)

	assert.NilError(t, s.Store(ctx, 1, 1, 5, staleAt))

	areaCode, ok, err := s.Lookup(ctx, 1, 1, staleAt+1)
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, areaCode, uint32(5))
}

func TestLen(t *testing.T) {
	s, err := Open("", 0)
	assert.NilError(t, err)
	defer s.Close()

	ctx := context.Background()
	n, err := s.Len(ctx)
	assert.NilError(t, err)
	assert.Equal(t, n, 0)

	assert.NilError(t, s.Store(ctx, 1, 1, 5, 0))
	assert.NilError(t, s.Store(ctx, 2, 2, 6, 0))

	n, err = s.Len(ctx)
	assert.NilError(t, err)
	assert.Equal(t, n, 2)
}
