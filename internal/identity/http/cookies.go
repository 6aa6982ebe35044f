package http

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/aussiebroadwan/identity/pkg/authsdk"
	"github.com/aussiebroadwan/identity/pkg/httpx"
)

const (
	// RefreshCookieName holds the refresh token, HttpOnly and scoped to the
	// auth endpoints only.
	RefreshCookieName = "identity_refresh"

	// CSRFCookieName holds the CSRF token. Script-readable on purpose: the
	// browser client echoes it back in the X-CSRF-Token header, which a
	// cross-site request cannot do.
	CSRFCookieName = "identity_csrf"

	// CSRFHeaderName is compared against the CSRF cookie on cookie-based
	// refresh and logout.
	CSRFHeaderName = "X-CSRF-Token"
)

// setSessionCookies writes the refresh and CSRF cookies for a fresh or
// rotated session. Both carry the refresh TTL; the pair is rotated together.
func setSessionCookies(w http.ResponseWriter, refreshToken, csrfToken string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    refreshToken,
		Path:     "/v1/auth",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    csrfToken,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: false,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearSessionCookies expires both cookies. Used on logout.
func clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/v1/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// refreshTokenFromCookie returns the refresh cookie value, or "" when absent.
func refreshTokenFromCookie(r *http.Request) string {
	c, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// CSRFMiddleware guards cookie-based flows. When the request carries the
// refresh cookie, the CSRF cookie and the X-CSRF-Token header must both be
// present and equal. Requests without the refresh cookie (token-in-body
// clients) pass through untouched.
func CSRFMiddleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if refreshTokenFromCookie(r) == "" {
				next.ServeHTTP(w, r)
				return
			}

			csrfCookie, err := r.Cookie(CSRFCookieName)
			header := r.Header.Get(CSRFHeaderName)
			if err != nil || csrfCookie.Value == "" || header == "" ||
				subtle.ConstantTimeCompare([]byte(csrfCookie.Value), []byte(header)) != 1 {
				authsdk.ErrCSRFMismatch.WriteError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
