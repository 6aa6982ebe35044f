package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/identity/internal/identity/domain"
	"github.com/aussiebroadwan/identity/internal/identity/store"
	"github.com/aussiebroadwan/identity/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingCleanup(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	platform := seedPlatform(t, env, "tavern")
	profile := seedProfile(t, env, "alice@example.com", "correct horse battery", true)

	now := time.Now().UTC()

	// A session whose last rotation predates the refresh window.
	lapsed := domain.Token{
		ID:          idx.New().String(),
		PlatformID:  platform.ID,
		ProfileID:   profile.ID,
		AccessHash:  "lapsed-access-hash",
		RefreshHash: "lapsed-refresh-hash",
		CreatedAt:   now.Add(-48 * time.Hour),
		UpdatedAt:   now.Add(-48 * time.Hour),
	}
	require.NoError(t, env.store.Tokens().CreateToken(ctx, lapsed))

	fresh := domain.Token{
		ID:          idx.New().String(),
		PlatformID:  platform.ID,
		ProfileID:   profile.ID,
		AccessHash:  "fresh-access-hash",
		RefreshHash: "fresh-refresh-hash",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, env.store.Tokens().CreateToken(ctx, fresh))

	expiredCT := domain.CredentialToken{
		ID:        idx.New().String(),
		ProfileID: profile.ID,
		Purpose:   domain.CredentialPurposeReset,
		TokenHash: "expired-credential-hash",
		ExpiresAt: now.Add(-time.Minute),
		CreatedAt: now.Add(-2 * time.Hour),
	}
	require.NoError(t, env.store.CredentialTokens().CreateCredentialToken(ctx, expiredCT))

	svc := NewHousekeepingService(env.store, slog.New(slog.DiscardHandler), time.Hour, 24*time.Hour)
	svc.cleanup()

	// The lapsed session is revoked, not deleted; the row survives as history.
	row, err := env.store.Tokens().GetTokenByID(ctx, lapsed.ID)
	require.NoError(t, err)
	require.True(t, row.Revoked())

	row, err = env.store.Tokens().GetTokenByID(ctx, fresh.ID)
	require.NoError(t, err)
	require.False(t, row.Revoked())

	// Expired credential tokens are gone for good.
	_, err = env.store.CredentialTokens().GetActiveCredentialToken(ctx, expiredCT.TokenHash, domain.CredentialPurposeReset)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestHousekeepingStartStop(t *testing.T) {
	env := newTestEnv(t)

	svc := NewHousekeepingService(env.store, slog.New(slog.DiscardHandler), 10*time.Millisecond, 24*time.Hour)
	svc.Start()
	time.Sleep(30 * time.Millisecond)
	svc.Stop()
}
