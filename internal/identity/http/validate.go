package http

import (
	"net/http"

	"github.com/aussiebroadwan/identity/internal/identity/service"
	"github.com/aussiebroadwan/identity/pkg/authsdk"
	"github.com/aussiebroadwan/identity/pkg/httpx"
)

// ValidateHandler serves GET /v1/auth/validate/{platformID}. It verifies the
// bearer access token against the ledger and platform and returns the
// decoded authorization snapshot. A token issued for another platform is a
// permission error, not an authentication error.
type ValidateHandler struct {
	Ledger *service.LedgerService
}

func (h *ValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	platformID := r.PathValue("platformID")

	token := bearerToken(r)
	if token == "" {
		authsdk.ErrNotAuthenticated.WriteError(w)
		return
	}

	snap, err := h.Ledger.VerifyAccess(r.Context(), platformID, token)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toSnapshotResponse(snap))
}
