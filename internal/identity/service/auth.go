package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/identity/internal/identity/domain"
	"github.com/aussiebroadwan/identity/internal/identity/store"
	"github.com/aussiebroadwan/identity/pkg/cryptox"
	"github.com/aussiebroadwan/identity/pkg/jwtx"
	"github.com/aussiebroadwan/identity/pkg/slogx"
)

// Default gate parameters.
const (
	DefaultLockoutThreshold = 5
	DefaultStalenessWindow  = 45 * 24 * time.Hour
)

// AuthService authenticates email/password pairs against a platform. The
// gates run in a fixed order: platform active, profile active, validated,
// attempt counter below threshold, last login inside the staleness window,
// then the argon2id verify. The first failing gate decides the error.
type AuthService struct {
	Store  store.Store
	Ledger *LedgerService
	Audit  *Auditor

	LockoutThreshold int
	StalenessWindow  time.Duration
}

// Login runs the authentication gates and, on success, issues a session via
// the ledger. Failed password attempts bump the profile's counter; a
// successful login resets it and stamps last_login_at.
//
// The counter update is a plain read-modify-write: two racing failures may
// record one increment. The lockout is best-effort throttling, not an exact
// count.
func (s *AuthService) Login(
	ctx context.Context,
	platformID, email, password, ip string,
) (*domain.TokenPair, jwtx.Snapshot, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()
	email = strings.ToLower(strings.TrimSpace(email))

	platform, err := activePlatform(ctx, s.Store, platformID)
	if err != nil {
		return nil, jwtx.Snapshot{}, err
	}

	profile, err := activeProfileByEmail(ctx, s.Store, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.auditFailure(platform.ID, "", email, ip, "unknown email")
		}
		if errors.Is(err, ErrNotActive) {
			s.auditFailure(platform.ID, "", email, ip, "profile deleted")
		}
		return nil, jwtx.Snapshot{}, err
	}

	if !profile.Validated {
		s.auditFailure(platform.ID, profile.ID, email, ip, "not validated")
		return nil, jwtx.Snapshot{}, ErrNotValidated
	}

	if profile.LoginAttempts >= s.lockoutThreshold() {
		s.auditFailure(platform.ID, profile.ID, email, ip, "locked")
		return nil, jwtx.Snapshot{}, ErrLocked
	}

	// Stale credentials are not a lockout: the account itself is fine, the
	// holder just needs to revalidate or reset before logging in again.
	if profile.LastLoginAt != nil && now.Sub(*profile.LastLoginAt) > s.stalenessWindow() {
		s.auditFailure(platform.ID, profile.ID, email, ip, "stale account")
		return nil, jwtx.Snapshot{}, ErrNotActive
	}

	if err := cryptox.VerifyPassword(password, profile.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Error("password verify failed", "err", err, "profile_id", profile.ID)
			return nil, jwtx.Snapshot{}, err
		}

		attempts := profile.LoginAttempts + 1
		if err := s.Store.Profiles().SetLoginAttempts(ctx, profile.ID, attempts); err != nil {
			l.Error("failed to bump login attempts", "err", err, "profile_id", profile.ID)
		}
		s.auditFailure(platform.ID, profile.ID, email, ip, "bad password")
		return nil, jwtx.Snapshot{}, ErrNotAuthorized
	}

	if err := s.Store.Profiles().RecordLogin(ctx, profile.ID, now); err != nil {
		return nil, jwtx.Snapshot{}, err
	}

	pair, snap, err := s.Ledger.Issue(ctx, profile, platform, ip)
	if err != nil {
		return nil, jwtx.Snapshot{}, err
	}

	s.Audit.Emit(AuditEvent{
		Kind:       AuditLoginSuccess,
		ProfileID:  profile.ID,
		PlatformID: platform.ID,
		Email:      email,
		IP:         ip,
	})
	return pair, snap, nil
}

func (s *AuthService) auditFailure(platformID, profileID, email, ip, detail string) {
	s.Audit.Emit(AuditEvent{
		Kind:       AuditLoginFailure,
		ProfileID:  profileID,
		PlatformID: platformID,
		Email:      email,
		IP:         ip,
		Detail:     detail,
	})
}

func (s *AuthService) lockoutThreshold() int {
	if s.LockoutThreshold > 0 {
		return s.LockoutThreshold
	}
	return DefaultLockoutThreshold
}

func (s *AuthService) stalenessWindow() time.Duration {
	if s.StalenessWindow > 0 {
		return s.StalenessWindow
	}
	return DefaultStalenessWindow
}
