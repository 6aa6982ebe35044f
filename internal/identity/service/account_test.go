package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/identity/internal/identity/domain"
	"github.com/stretchr/testify/require"
)

func TestRequestValidationIsSilent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	// Unknown email, deleted profile, and already-validated profile all look
	// identical from outside.
	require.NoError(t, env.account.RequestValidation(ctx, "ghost@example.com"))

	validated := seedProfile(t, env, "alice@example.com", "correct horse battery", true)
	require.NoError(t, env.account.RequestValidation(ctx, validated.Email))

	deleted := seedProfile(t, env, "bob@example.com", "correct horse battery", false)
	require.NoError(t, env.store.Profiles().SoftDeleteProfile(ctx, deleted.ID))
	require.NoError(t, env.account.RequestValidation(ctx, deleted.Email))
}

func TestConfirmValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	profile := seedProfile(t, env, "alice@example.com", "correct horse battery", false)

	token, err := env.account.mintToken(ctx, profile.ID, domain.CredentialPurposeValidate, time.Hour)
	require.NoError(t, err)

	require.NoError(t, env.account.ConfirmValidation(ctx, token))

	stored, err := env.store.Profiles().GetProfileByID(ctx, profile.ID)
	require.NoError(t, err)
	require.True(t, stored.Validated)

	// Single use: redeeming again fails.
	require.ErrorIs(t, env.account.ConfirmValidation(ctx, token), ErrNotAuthorized)
}

func TestConfirmValidationRejectsExpiredToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	profile := seedProfile(t, env, "alice@example.com", "correct horse battery", false)

	token, err := env.account.mintToken(ctx, profile.ID, domain.CredentialPurposeValidate, -time.Minute)
	require.NoError(t, err)

	require.ErrorIs(t, env.account.ConfirmValidation(ctx, token), ErrNotAuthorized)
}

func TestConfirmValidationRejectsWrongPurpose(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	profile := seedProfile(t, env, "alice@example.com", "correct horse battery", false)

	token, err := env.account.mintToken(ctx, profile.ID, domain.CredentialPurposeReset, time.Hour)
	require.NoError(t, err)

	require.ErrorIs(t, env.account.ConfirmValidation(ctx, token), ErrNotAuthorized)
}

func TestConfirmResetRejectsShortPassword(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	require.ErrorIs(t, env.account.ConfirmReset(ctx, "irrelevant", "short"), ErrInvalidInput)
}

func TestConfirmReset(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	platform := seedPlatform(t, env, "tavern")
	profile := seedProfile(t, env, "alice@example.com", "correct horse battery", true)
	pair := issueSession(t, env, profile, platform)

	// Lock the account so the reset's counter clear is observable.
	require.NoError(t, env.store.Profiles().SetLoginAttempts(ctx, profile.ID, DefaultLockoutThreshold))

	token, err := env.account.mintToken(ctx, profile.ID, domain.CredentialPurposeReset, time.Hour)
	require.NoError(t, err)

	require.NoError(t, env.account.ConfirmReset(ctx, token, "brand new password"))

	// The old password is dead, the new one works, the lock is gone.
	_, _, err = env.auth.Login(ctx, platform.ID, profile.Email, "correct horse battery", "")
	require.ErrorIs(t, err, ErrNotAuthorized)
	_, _, err = env.auth.Login(ctx, platform.ID, profile.Email, "brand new password", "")
	require.NoError(t, err)

	// Every session live before the reset is revoked.
	_, _, err = env.ledger.Rotate(ctx, platform.ID, pair.RefreshToken, "")
	require.ErrorIs(t, err, ErrNotAuthorized)

	// The reset token is single use.
	require.ErrorIs(t, env.account.ConfirmReset(ctx, token, "another new password"), ErrNotAuthorized)
}
