package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/identity/internal/identity/domain"
	"github.com/aussiebroadwan/identity/internal/identity/store"
	"github.com/aussiebroadwan/identity/pkg/cryptox"
	"github.com/aussiebroadwan/identity/pkg/idx"
	"github.com/aussiebroadwan/identity/pkg/slogx"
)

const (
	// MinPasswordLength applies to reset confirmations.
	MinPasswordLength = 12

	DefaultValidationTTL = 24 * time.Hour
	DefaultResetTTL      = 1 * time.Hour
)

// AccountService runs the out-of-band credential flows: email validation and
// password reset. Tokens are opaque 256-bit values stored only as SHA-256
// fingerprints, single-use, with short expiries. Delivery is out of scope;
// the opaque value goes to the audit stream and nowhere else.
type AccountService struct {
	Store store.Store
	Audit *Auditor

	ValidationTTL time.Duration
	ResetTTL      time.Duration
}

// RequestValidation mints a validation token for the email's profile. It is
// silent about unknown, deleted, or already-validated profiles so the
// endpoint cannot be used to probe for accounts.
func (s *AccountService) RequestValidation(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)
	email = strings.ToLower(strings.TrimSpace(email))

	profile, err := activeProfileByEmail(ctx, s.Store, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotActive) {
			return nil
		}
		return err
	}
	if profile.Validated {
		return nil
	}

	token, err := s.mintToken(ctx, profile.ID, domain.CredentialPurposeValidate, s.validationTTL())
	if err != nil {
		l.Error("failed to mint validation token", "err", err, "profile_id", profile.ID)
		return err
	}

	s.Audit.Emit(AuditEvent{
		Kind:      AuditValidationToken,
		ProfileID: profile.ID,
		Email:     email,
		Detail:    token,
	})
	return nil
}

// ConfirmValidation redeems a validation token and marks the profile
// validated. The token is consumed even though validation is idempotent.
func (s *AccountService) ConfirmValidation(ctx context.Context, token string) error {
	fp := cryptox.FingerprintToken(token)

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		ct, err := tx.CredentialTokens().GetActiveCredentialToken(ctx, fp, domain.CredentialPurposeValidate)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotAuthorized
			}
			return err
		}

		profile, err := activeProfile(ctx, tx, ct.ProfileID)
		if err != nil {
			return err
		}

		if err := tx.CredentialTokens().MarkCredentialTokenUsed(ctx, ct.ID); err != nil {
			return err
		}
		if err := tx.Profiles().MarkValidated(ctx, profile.ID); err != nil {
			return err
		}

		s.Audit.Emit(AuditEvent{
			Kind:      AuditValidated,
			ProfileID: profile.ID,
			Email:     profile.Email,
		})
		return nil
	})
}

// RequestReset mints a reset token for the email's profile. Silent about
// unknown or deleted profiles, same as RequestValidation.
func (s *AccountService) RequestReset(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)
	email = strings.ToLower(strings.TrimSpace(email))

	profile, err := activeProfileByEmail(ctx, s.Store, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotActive) {
			return nil
		}
		return err
	}

	token, err := s.mintToken(ctx, profile.ID, domain.CredentialPurposeReset, s.resetTTL())
	if err != nil {
		l.Error("failed to mint reset token", "err", err, "profile_id", profile.ID)
		return err
	}

	s.Audit.Emit(AuditEvent{
		Kind:      AuditResetToken,
		ProfileID: profile.ID,
		Email:     email,
		Detail:    token,
	})
	return nil
}

// ConfirmReset redeems a reset token, replaces the password hash, clears the
// lockout counter, and revokes every live session for the profile. All of it
// lands in one transaction: a reset either fully takes effect or not at all.
func (s *AccountService) ConfirmReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return ErrInvalidInput
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	fp := cryptox.FingerprintToken(token)
	var profile domain.Profile

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		ct, err := tx.CredentialTokens().GetActiveCredentialToken(ctx, fp, domain.CredentialPurposeReset)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotAuthorized
			}
			return err
		}

		profile, err = activeProfile(ctx, tx, ct.ProfileID)
		if err != nil {
			return err
		}

		if err := tx.CredentialTokens().MarkCredentialTokenUsed(ctx, ct.ID); err != nil {
			return err
		}
		if err := tx.Profiles().UpdatePasswordHash(ctx, profile.ID, hash); err != nil {
			return err
		}
		if err := tx.Profiles().SetLoginAttempts(ctx, profile.ID, 0); err != nil {
			return err
		}
		return tx.Tokens().RevokeAllProfileTokens(ctx, profile.ID)
	})
	if err != nil {
		return err
	}

	s.Audit.Emit(AuditEvent{
		Kind:      AuditPasswordReset,
		ProfileID: profile.ID,
		Email:     profile.Email,
	})
	return nil
}

func (s *AccountService) mintToken(ctx context.Context, profileID, purpose string, ttl time.Duration) (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	ct := domain.CredentialToken{
		ID:        idx.New().String(),
		ProfileID: profileID,
		Purpose:   purpose,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.Store.CredentialTokens().CreateCredentialToken(ctx, ct); err != nil {
		return "", err
	}
	return token, nil
}

func (s *AccountService) validationTTL() time.Duration {
	if s.ValidationTTL > 0 {
		return s.ValidationTTL
	}
	return DefaultValidationTTL
}

func (s *AccountService) resetTTL() time.Duration {
	if s.ResetTTL > 0 {
		return s.ResetTTL
	}
	return DefaultResetTTL
}
