package httpx

import (
	"net/http"
	"strings"
)

// RequirePermissions the caller's snapshot must grant at least one of the
// permissions listed. Superusers pass regardless of the list. An
// unauthenticated request gets 401; an authenticated one with no matching
// permission gets 403.
func RequirePermissions(required ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeBearerError(w, "missing bearer token")
				return
			}

			if !claims.HasAny(required...) {
				writePermissionError(w, required...)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RFC 6750-style error response for insufficient permissions.
func writePermissionError(w http.ResponseWriter, required ...string) {
	w.Header().
		Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+strings.Join(required, " ")+`"`)
	WriteJSON(w, http.StatusForbidden, map[string]string{
		"error":             "permission_denied",
		"error_description": "Caller lacks a required permission.",
	})
}
