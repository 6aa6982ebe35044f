package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/identity/pkg/authsdk"
	"github.com/aussiebroadwan/identity/pkg/httpx"
)

// PermissionsHandler serves POST /v1/auth/permissions/check. It runs behind
// the authn middleware and answers purely from the snapshot in the verified
// claims; no database read happens here.
type PermissionsHandler struct{}

func (h *PermissionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims := httpx.ClaimsFromContext(r.Context())
	if claims == nil {
		authsdk.ErrNotAuthenticated.WriteError(w)
		return
	}

	var req authsdk.PermissionCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Permissions) == 0 {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	results := make(authsdk.PermissionCheckResponse, len(req.Permissions))
	for _, perm := range req.Permissions {
		results[perm] = claims.HasPermission(perm)
	}

	httpx.WriteJSON(w, http.StatusOK, results)
}
