package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/identity/internal/identity/domain"
	"github.com/aussiebroadwan/identity/internal/identity/store"
	"github.com/aussiebroadwan/identity/pkg/cryptox"
	"github.com/aussiebroadwan/identity/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func issueSession(t *testing.T, env *testEnv, profile domain.Profile, platform domain.Platform) *domain.TokenPair {
	t.Helper()

	pair, _, err := env.ledger.Issue(context.Background(), profile, platform, "10.0.0.1")
	require.NoError(t, err)
	return pair
}

func TestRotateKeepsRowID(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	platform := seedPlatform(t, env, "tavern")
	profile := seedProfile(t, env, "alice@example.com", "correct horse battery", true)
	pair := issueSession(t, env, profile, platform)

	before, err := env.store.Tokens().GetTokenByRefreshHash(ctx, cryptox.FingerprintToken(pair.RefreshToken))
	require.NoError(t, err)

	rotated, snap, err := env.ledger.Rotate(ctx, platform.ID, pair.RefreshToken, "10.0.0.2")
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
	require.Equal(t, profile.ID, snap.ProfileID)

	after, err := env.store.Tokens().GetTokenByRefreshHash(ctx, cryptox.FingerprintToken(rotated.RefreshToken))
	require.NoError(t, err)
	require.Equal(t, before.ID, after.ID)

	// The superseded refresh token no longer matches any row.
	_, err = env.store.Tokens().GetTokenByRefreshHash(ctx, cryptox.FingerprintToken(pair.RefreshToken))
	require.ErrorIs(t, err, store.ErrNotFound)

	_, _, err = env.ledger.Rotate(ctx, platform.ID, pair.RefreshToken, "")
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestRotatePlatformMismatch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	platform := seedPlatform(t, env, "tavern")
	other := seedPlatform(t, env, "kiosk")
	profile := seedProfile(t, env, "alice@example.com", "correct horse battery", true)
	pair := issueSession(t, env, profile, platform)

	_, _, err := env.ledger.Rotate(ctx, other.ID, pair.RefreshToken, "")
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestRotateDeniedForDeletedProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	platform := seedPlatform(t, env, "tavern")
	profile := seedProfile(t, env, "alice@example.com", "correct horse battery", true)
	pair := issueSession(t, env, profile, platform)

	require.NoError(t, env.store.Profiles().SoftDeleteProfile(ctx, profile.ID))

	_, _, err := env.ledger.Rotate(ctx, platform.ID, pair.RefreshToken, "")
	require.ErrorIs(t, err, ErrNotActive)
}

func TestRotateRejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	platform := seedPlatform(t, env, "tavern")
	profile := seedProfile(t, env, "alice@example.com", "correct horse battery", true)
	pair := issueSession(t, env, profile, platform)

	_, _, err := env.ledger.Rotate(ctx, platform.ID, pair.AccessToken, "")
	require.ErrorIs(t, err, jwtx.ErrWrongUse)
}

func TestRevokeIsTerminalAndIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	platform := seedPlatform(t, env, "tavern")
	profile := seedProfile(t, env, "alice@example.com", "correct horse battery", true)
	pair := issueSession(t, env, profile, platform)

	require.NoError(t, env.ledger.Revoke(ctx, pair.AccessToken))

	// Second revoke of the same session is a no-op, via either half.
	require.NoError(t, env.ledger.Revoke(ctx, pair.AccessToken))
	require.NoError(t, env.ledger.Revoke(ctx, pair.RefreshToken))

	// A revoked session is dead for both verify and rotate.
	_, err := env.ledger.VerifyAccess(ctx, platform.ID, pair.AccessToken)
	require.ErrorIs(t, err, ErrNotAuthorized)

	_, _, err = env.ledger.Rotate(ctx, platform.ID, pair.RefreshToken, "")
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestRevokeUnknownToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	err := env.ledger.Revoke(ctx, "never-issued-token")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyAccess(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	platform := seedPlatform(t, env, "tavern")
	other := seedPlatform(t, env, "kiosk")
	profile := seedProfile(t, env, "alice@example.com", "correct horse battery", true)
	role := seedRole(t, env, platform.ID, "member", []string{"profile:read"})
	assignRole(t, env, profile.ID, role.ID)
	pair := issueSession(t, env, profile, platform)

	snap, err := env.ledger.VerifyAccess(ctx, platform.ID, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, profile.ID, snap.ProfileID)
	require.Equal(t, []string{"profile:read"}, snap.Permissions)

	// Cross-platform presentation is a permission problem, not an auth one.
	_, err = env.ledger.VerifyAccess(ctx, other.ID, pair.AccessToken)
	require.ErrorIs(t, err, ErrPermissionDenied)

	// A refresh token is not an access token.
	_, err = env.ledger.VerifyAccess(ctx, platform.ID, pair.RefreshToken)
	require.ErrorIs(t, err, jwtx.ErrWrongUse)
}

func TestSnapshotExcludesDeletedRoles(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	platform := seedPlatform(t, env, "tavern")
	profile := seedProfile(t, env, "alice@example.com", "correct horse battery", true)
	member := seedRole(t, env, platform.ID, "member", []string{"profile:read"})
	admin := seedRole(t, env, platform.ID, "admin", []string{"admin:write"})
	assignRole(t, env, profile.ID, member.ID)
	assignRole(t, env, profile.ID, admin.ID)

	require.NoError(t, env.store.Roles().SoftDeleteRole(ctx, admin.ID))

	_, snap, err := env.ledger.Issue(ctx, profile, platform, "")
	require.NoError(t, err)
	require.Equal(t, []string{"member"}, snap.Roles)
	require.Equal(t, []string{"profile:read"}, snap.Permissions)
}
