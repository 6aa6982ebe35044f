package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/identity/internal/identity/domain"
	"github.com/aussiebroadwan/identity/internal/identity/store/drivers/sqlite"
	"github.com/aussiebroadwan/identity/pkg/cryptox"
	"github.com/aussiebroadwan/identity/pkg/idx"
	"github.com/aussiebroadwan/identity/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-test")
	if err != nil {
		os.Exit(1)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

const testSigningSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	store   *sqlite.Store
	audit   *Auditor
	ledger  *LedgerService
	auth    *AuthService
	account *AccountService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewCodec([]byte(testSigningSecret), "test-issuer", time.Minute, time.Hour)
	require.NoError(t, err)

	audit := NewAuditor(slog.New(slog.DiscardHandler), 64)
	t.Cleanup(audit.Close)

	ledger := &LedgerService{
		Codec:     codec,
		Store:     st,
		Audit:     audit,
		AccessTTL: time.Minute,
	}

	return &testEnv{
		store:  st,
		audit:  audit,
		ledger: ledger,
		auth: &AuthService{
			Store:  st,
			Ledger: ledger,
			Audit:  audit,
		},
		account: &AccountService{
			Store: st,
			Audit: audit,
		},
	}
}

func seedPlatform(t *testing.T, env *testEnv, name string) domain.Platform {
	t.Helper()

	now := time.Now().UTC()
	platform := domain.Platform{
		ID:        idx.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, env.store.Platforms().CreatePlatform(context.Background(), platform))
	return platform
}

func seedProfile(t *testing.T, env *testEnv, email, password string, validated bool) domain.Profile {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	profile := domain.Profile{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Validated:    validated,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, env.store.Profiles().CreateProfile(context.Background(), profile))
	return profile
}

func seedRole(t *testing.T, env *testEnv, platformID, name string, perms []string) domain.Role {
	t.Helper()

	now := time.Now().UTC()
	role := domain.Role{
		ID:          idx.New().String(),
		PlatformID:  platformID,
		Name:        name,
		Permissions: perms,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, env.store.Roles().CreateRole(context.Background(), role))
	return role
}

func assignRole(t *testing.T, env *testEnv, profileID, roleID string) {
	t.Helper()
	require.NoError(t, env.store.Roles().AssignRole(context.Background(), profileID, roleID))
}
