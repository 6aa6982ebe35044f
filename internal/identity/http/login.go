package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/identity/internal/identity/obs"
	"github.com/aussiebroadwan/identity/internal/identity/service"
	"github.com/aussiebroadwan/identity/pkg/authsdk"
	"github.com/aussiebroadwan/identity/pkg/cryptox"
	"github.com/aussiebroadwan/identity/pkg/httpx"
	"github.com/aussiebroadwan/identity/pkg/jwtx"
	"github.com/aussiebroadwan/identity/pkg/slogx"
)

// LoginHandler serves POST /v1/auth/{platformID}/login. A successful login
// returns the token pair in the body and also sets the refresh and CSRF
// cookies for browser clients.
type LoginHandler struct {
	AuthService *service.AuthService
	RefreshTTL  time.Duration
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	platformID := r.PathValue("platformID")

	var req authsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Email == "" || req.Password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	ip := httpx.IPKeyExtractor(r)
	pair, snap, err := h.AuthService.Login(ctx, platformID, req.Email, req.Password, ip)
	if err != nil {
		obs.CountLogin(loginOutcome(err))
		writeServiceError(w, err)
		return
	}
	obs.CountLogin("success")
	obs.CountTokenIssued("issue")

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

func loginOutcome(err error) string {
	switch {
	case errors.Is(err, service.ErrLocked):
		return "locked"
	case errors.Is(err, service.ErrNotAuthorized),
		errors.Is(err, service.ErrNotValidated),
		errors.Is(err, service.ErrNotActive),
		errors.Is(err, service.ErrNotFound):
		return "denied"
	default:
		return "error"
	}
}

func toSnapshotResponse(snap jwtx.Snapshot) authsdk.SnapshotResponse {
	return authsdk.SnapshotResponse{
		ProfileID:    snap.ProfileID,
		Email:        snap.Email,
		PlatformID:   snap.PlatformID,
		PlatformName: snap.PlatformName,
		Superuser:    snap.Superuser,
		Roles:        snap.Roles,
		Permissions:  snap.Permissions,
	}
}
