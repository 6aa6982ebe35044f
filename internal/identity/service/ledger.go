package service

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/identity/internal/identity/domain"
	"github.com/aussiebroadwan/identity/internal/identity/store"
	"github.com/aussiebroadwan/identity/pkg/cryptox"
	"github.com/aussiebroadwan/identity/pkg/idx"
	"github.com/aussiebroadwan/identity/pkg/jwtx"
	"github.com/aussiebroadwan/identity/pkg/slogx"
)

// LedgerService owns the session ledger: one row per session holding the
// fingerprints of the current token pair. Rotation updates the row in place
// so the row id is stable for the session's whole life; revocation
// soft-deletes the row and is terminal.
type LedgerService struct {
	Codec     *jwtx.Codec
	Store     store.Store
	Audit     *Auditor
	AccessTTL time.Duration
}

// Issue signs a fresh token pair for the profile on the platform and inserts
// a new ledger row. The snapshot is built from the profile's active roles at
// this moment; it will not reflect later role changes until the next rotate.
func (s *LedgerService) Issue(
	ctx context.Context,
	profile domain.Profile,
	platform domain.Platform,
	ip string,
) (*domain.TokenPair, jwtx.Snapshot, error) {
	now := time.Now().UTC()

	snap, err := s.buildSnapshot(ctx, s.Store, profile, platform)
	if err != nil {
		return nil, jwtx.Snapshot{}, err
	}

	rowID := idx.New().String()
	pair, accessFP, refreshFP, err := s.signPair(rowID, snap)
	if err != nil {
		return nil, jwtx.Snapshot{}, err
	}

	row := domain.Token{
		ID:          rowID,
		PlatformID:  platform.ID,
		ProfileID:   profile.ID,
		AccessHash:  accessFP,
		RefreshHash: refreshFP,
		IP:          ip,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Tokens().CreateToken(ctx, row); err != nil {
		return nil, jwtx.Snapshot{}, err
	}

	s.Audit.Emit(AuditEvent{
		Kind:       AuditTokenIssued,
		ProfileID:  profile.ID,
		PlatformID: platform.ID,
		Email:      profile.Email,
		IP:         ip,
	})

	return pair, snap, nil
}

// Rotate exchanges a refresh token for a new pair. The presented token must
// decode, match a live ledger row, and belong to a still-active profile and
// platform. The new fingerprints land on the SAME row id inside one
// transaction, so concurrent rotations of one session serialize on the row.
func (s *LedgerService) Rotate(
	ctx context.Context,
	platformID, refreshToken, ip string,
) (*domain.TokenPair, jwtx.Snapshot, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Codec.Verify(refreshToken, jwtx.UseRefresh)
	if err != nil {
		return nil, jwtx.Snapshot{}, err // jwtx.ErrExpired / ErrMalformed / ErrInvalidSig
	}
	if claims.PlatformID != platformID {
		return nil, jwtx.Snapshot{}, ErrNotAuthorized
	}

	fp := cryptox.FingerprintToken(refreshToken)

	var (
		pair *domain.TokenPair
		snap jwtx.Snapshot
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		row, err := tx.Tokens().GetTokenByRefreshHash(ctx, fp)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotAuthorized
			}
			return err
		}
		if row.Revoked() {
			l.Warn("refresh attempted on revoked session", "token_id", row.ID)
			return ErrNotAuthorized
		}
		if row.PlatformID != platformID {
			return ErrNotAuthorized
		}

		// Re-check liveness; a profile or platform soft-deleted since issue
		// must not be able to keep refreshing.
		profile, err := activeProfile(ctx, tx, row.ProfileID)
		if err != nil {
			return err
		}
		if profile.Email != claims.Email {
			return ErrNotAuthorized
		}
		platform, err := activePlatform(ctx, tx, row.PlatformID)
		if err != nil {
			return err
		}

		snap, err = s.buildSnapshot(ctx, tx, profile, platform)
		if err != nil {
			return err
		}

		var accessFP, refreshFP string
		pair, accessFP, refreshFP, err = s.signPair(row.ID, snap)
		if err != nil {
			return err
		}

		return tx.Tokens().RotateToken(ctx, row.ID, accessFP, refreshFP, ip)
	})
	if err != nil {
		return nil, jwtx.Snapshot{}, err
	}

	s.Audit.Emit(AuditEvent{
		Kind:       AuditTokenRotated,
		ProfileID:  snap.ProfileID,
		PlatformID: snap.PlatformID,
		Email:      snap.Email,
		IP:         ip,
	})

	return pair, snap, nil
}

// Revoke ends the session owning the presented token value. Either half of
// the pair is accepted. Revoking an already-revoked session is a no-op; the
// state is terminal either way.
func (s *LedgerService) Revoke(ctx context.Context, token string) error {
	fp := cryptox.FingerprintToken(token)

	row, err := s.Store.Tokens().GetTokenByAccessHash(ctx, fp)
	if errors.Is(err, store.ErrNotFound) {
		row, err = s.Store.Tokens().GetTokenByRefreshHash(ctx, fp)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if row.Revoked() {
		return nil
	}

	if err := s.Store.Tokens().RevokeToken(ctx, row.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Lost the race with another revoke; same terminal state.
			return nil
		}
		return err
	}

	s.Audit.Emit(AuditEvent{
		Kind:       AuditTokenRevoked,
		ProfileID:  row.ProfileID,
		PlatformID: row.PlatformID,
	})
	return nil
}

// VerifyAccess validates an access token and confirms its ledger row is
// still live. Platform mismatch is a permission error, not an auth error.
func (s *LedgerService) VerifyAccess(ctx context.Context, platformID, accessToken string) (jwtx.Snapshot, error) {
	claims, err := s.Codec.Verify(accessToken, jwtx.UseAccess)
	if err != nil {
		return jwtx.Snapshot{}, err
	}

	fp := cryptox.FingerprintToken(accessToken)
	row, err := s.Store.Tokens().GetTokenByAccessHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return jwtx.Snapshot{}, ErrNotAuthorized
		}
		return jwtx.Snapshot{}, err
	}
	if row.Revoked() {
		return jwtx.Snapshot{}, ErrNotAuthorized
	}
	if claims.PlatformID != platformID || row.PlatformID != platformID {
		return jwtx.Snapshot{}, ErrPermissionDenied
	}
	return claims.Snapshot, nil
}

func (s *LedgerService) signPair(rowID string, snap jwtx.Snapshot) (*domain.TokenPair, string, string, error) {
	access, err := s.Codec.SignAccess(idx.New().String(), snap)
	if err != nil {
		return nil, "", "", err
	}
	refresh, err := s.Codec.SignRefresh(rowID, snap)
	if err != nil {
		return nil, "", "", err
	}

	pair := &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.AccessTTL.Seconds()),
	}
	return pair, cryptox.FingerprintToken(access), cryptox.FingerprintToken(refresh), nil
}

// buildSnapshot captures the profile's authorization state on the platform.
// Soft-deleted roles are already filtered by the store query.
func (s *LedgerService) buildSnapshot(
	ctx context.Context,
	st store.Store,
	profile domain.Profile,
	platform domain.Platform,
) (jwtx.Snapshot, error) {
	roles, err := st.Roles().ListRolesForProfile(ctx, profile.ID, platform.ID)
	if err != nil {
		return jwtx.Snapshot{}, err
	}

	snap := jwtx.Snapshot{
		ProfileID:    profile.ID,
		Email:        profile.Email,
		PlatformID:   platform.ID,
		PlatformName: platform.Name,
		Superuser:    profile.Superuser,
	}
	seen := map[string]struct{}{}
	for _, role := range roles {
		snap.Roles = append(snap.Roles, role.Name)
		for _, perm := range role.Permissions {
			if _, ok := seen[perm]; ok {
				continue
			}
			seen[perm] = struct{}{}
			snap.Permissions = append(snap.Permissions, perm)
		}
	}
	return snap, nil
}
