package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/identity/internal/identity/service"
	"github.com/aussiebroadwan/identity/pkg/slogx"
)

// LogoutHandler serves POST /v1/auth/logout. It revokes the session owning
// the presented token (either half of the pair) and clears the session
// cookies. The endpoint is idempotent: an unknown or already-revoked token
// still gets a 204, so clients cannot probe the ledger through logout.
type LogoutHandler struct {
	Ledger *service.LedgerService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := refreshTokenFromCookie(r)
	if token == "" {
		token = bearerToken(r)
	}
	if token == "" {
		var body struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			token = body.Token
		}
	}

	if token != "" {
		if err := h.Ledger.Revoke(ctx, token); err != nil && !errors.Is(err, service.ErrNotFound) {
			log.Warn("logout revoke failed", "err", err)
		}
	}

	clearSessionCookies(w)
	w.WriteHeader(http.StatusNoContent)
}
