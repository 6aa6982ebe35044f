package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/identity/internal/identity/obs"
	"github.com/aussiebroadwan/identity/internal/identity/service"
	"github.com/aussiebroadwan/identity/pkg/authsdk"
	"github.com/aussiebroadwan/identity/pkg/cryptox"
	"github.com/aussiebroadwan/identity/pkg/httpx"
	"github.com/aussiebroadwan/identity/pkg/slogx"
)

// RefreshHandler serves POST /v1/auth/{platformID}/refresh. The refresh
// token comes from the session cookie (browser clients, guarded by the CSRF
// middleware) or from a bearer header (API clients). Rotation reuses the
// ledger row, so the response carries a brand new pair for the same session.
type RefreshHandler struct {
	Ledger     *service.LedgerService
	RefreshTTL time.Duration
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	platformID := r.PathValue("platformID")

	refreshToken := refreshTokenFromCookie(r)
	if refreshToken == "" {
		refreshToken = bearerToken(r)
	}
	if refreshToken == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			refreshToken = body.RefreshToken
		}
	}
	if refreshToken == "" {
		authsdk.ErrNotAuthenticated.WriteError(w)
		return
	}

	ip := httpx.IPKeyExtractor(r)
	pair, snap, err := h.Ledger.Rotate(ctx, platformID, refreshToken, ip)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	obs.CountTokenIssued("rotate")

	csrf, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		log.Error("failed to generate csrf token", "err", err)
		authsdk.ErrUnavailable.WriteError(w)
		return
	}
	setSessionCookies(w, pair.RefreshToken, csrf, h.RefreshTTL)

	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    pair.ExpiresIn,
		Snapshot:     toSnapshotResponse(snap),
	})
}

func bearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
}
