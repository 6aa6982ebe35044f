package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/identity/internal/identity/domain"
	"github.com/aussiebroadwan/identity/internal/identity/service"
	"github.com/aussiebroadwan/identity/internal/identity/store/drivers/sqlite"
	"github.com/aussiebroadwan/identity/pkg/cryptox"
	"github.com/aussiebroadwan/identity/pkg/idx"
	"github.com/aussiebroadwan/identity/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "http-test")
	if err != nil {
		os.Exit(1)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testEmail    = "alice@example.com"
	testPassword = "correct horse battery"
)

type testServer struct {
	server   *httptest.Server
	store    *sqlite.Store
	platform domain.Platform
	profile  domain.Profile
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewCodec([]byte(testSecret), "test-issuer", time.Minute, time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	audit := service.NewAuditor(logger, 64)
	t.Cleanup(audit.Close)

	ledger := &service.LedgerService{
		Codec:     codec,
		Store:     st,
		Audit:     audit,
		AccessTTL: time.Minute,
	}

	router := NewRouter(codec, "test", time.Hour, st, logger)
	router.AuthService = &service.AuthService{Store: st, Ledger: ledger, Audit: audit}
	router.LedgerService = ledger
	router.AccountService = &service.AccountService{Store: st, Audit: audit}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	// Seed one platform and one validated profile holding one role.
	now := time.Now().UTC()
	platform := domain.Platform{ID: idx.New().String(), Name: "tavern", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, st.Platforms().CreatePlatform(ctx, platform))

	hash, err := cryptox.HashPassword(testPassword)
	require.NoError(t, err)
	profile := domain.Profile{
		ID:           idx.New().String(),
		Email:        testEmail,
		PasswordHash: hash,
		Validated:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Profiles().CreateProfile(ctx, profile))

	role := domain.Role{
		ID:          idx.New().String(),
		PlatformID:  platform.ID,
		Name:        "member",
		Permissions: []string{"profile:read", "bar:order"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, st.Roles().CreateRole(ctx, role))
	require.NoError(t, st.Roles().AssignRole(ctx, profile.ID, role.ID))

	return &testServer{server: srv, store: st, platform: platform, profile: profile}
}

func (ts *testServer) url(path string) string { return ts.server.URL + path }

func postJSON(t *testing.T, url string, body any, mutate ...func(*http.Request)) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, fn := range mutate {
		fn(req)
	}

	resp, err := testClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// testClient holds no cookie jar; tests manage cookies by hand so they can
// assert on them.
var testClient = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body struct {
		Code string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body.Code
}

func cookieByName(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
