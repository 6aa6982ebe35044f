package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testSnapshot() Snapshot {
	return Snapshot{
		ProfileID:    "01J0000000000000000000PROF",
		Email:        "alice@example.com",
		PlatformID:   "01J0000000000000000000PLAT",
		PlatformName: "console",
		Roles:        []string{"operator"},
		Permissions:  []string{"orders.read", "orders.write"},
	}
}

func TestNewCodecRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewCodec([]byte("too-short"), "identity", time.Minute, time.Hour)
	require.Error(t, err)
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec(testSecret, "identity", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	signed, err := codec.SignAccess("jti-1", testSnapshot())
	require.NoError(t, err)

	claims, err := codec.Verify(signed, UseAccess)
	require.NoError(t, err)
	require.Equal(t, "jti-1", claims.ID)
	require.Equal(t, "alice@example.com", claims.Subject)
	require.Equal(t, UseAccess, claims.Use)
	require.Equal(t, "console", claims.PlatformName)
	require.Equal(t, []string{"orders.read", "orders.write"}, claims.Permissions)
}

func TestVerifyRejectsWrongUse(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec(testSecret, "identity", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	refresh, err := codec.SignRefresh("jti-2", testSnapshot())
	require.NoError(t, err)

	_, err = codec.Verify(refresh, UseAccess)
	require.ErrorIs(t, err, ErrWrongUse)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec(testSecret, "identity", -time.Minute, 24*time.Hour)
	require.NoError(t, err)

	signed, err := codec.SignAccess("jti-3", testSnapshot())
	require.NoError(t, err)

	claims, err := codec.Verify(signed, UseAccess)
	require.ErrorIs(t, err, ErrExpired)
	// The snapshot survives expiry so callers can still identify the holder.
	require.Equal(t, "alice@example.com", claims.Email)
}

func TestVerifyRejectsTampering(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec(testSecret, "identity", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	signed, err := codec.SignAccess("jti-4", testSnapshot())
	require.NoError(t, err)

	// Flip a character in the signature segment.
	i := strings.LastIndex(signed, ".") + 1
	flipped := signed[:i] + "AAAA" + signed[i+4:]
	_, err = codec.Verify(flipped, UseAccess)
	require.ErrorIs(t, err, ErrInvalidSig)

	_, err = codec.Verify("not.a.jwt", UseAccess)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	signer, err := NewCodec(testSecret, "other-issuer", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	verifier, err := NewCodec(testSecret, "identity", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	signed, err := signer.SignAccess("jti-5", testSnapshot())
	require.NoError(t, err)

	_, err = verifier.Verify(signed, UseAccess)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestSnapshotHasPermission(t *testing.T) {
	t.Parallel()

	snap := testSnapshot()
	require.True(t, snap.HasPermission("orders.read"))
	require.False(t, snap.HasPermission("admin.write"))

	snap.Superuser = true
	require.True(t, snap.HasPermission("admin.write"))
}
