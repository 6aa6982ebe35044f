package authsdk

// LoginRequest is the body for POST /v1/auth/{platformID}/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by login and refresh. The refresh token is also
// delivered as an HttpOnly cookie alongside a script-readable CSRF cookie.
type TokenResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	TokenType    string           `json:"token_type"`
	ExpiresIn    int              `json:"expires_in"`
	Snapshot     SnapshotResponse `json:"snapshot"`
}

// SnapshotResponse is returned by GET /v1/auth/validate/{platformID} and
// mirrors the authorization snapshot embedded in the access token.
type SnapshotResponse struct {
	ProfileID    string   `json:"profile_id"`
	Email        string   `json:"email"`
	PlatformID   string   `json:"platform_id"`
	PlatformName string   `json:"platform_name"`
	Superuser    bool     `json:"superuser"`
	Roles        []string `json:"roles"`
	Permissions  []string `json:"permissions"`
}

// PermissionCheckRequest is the body for POST /v1/auth/permissions/check.
type PermissionCheckRequest struct {
	Permissions []string `json:"permissions"`
}

// PermissionCheckResponse reports, per requested permission, whether the
// caller's snapshot grants it.
type PermissionCheckResponse map[string]bool

// ValidationRequest is the body for POST /v1/account/validate/request and
// POST /v1/account/reset/request.
type ValidationRequest struct {
	Email string `json:"email"`
}

// ValidationConfirm is the body for POST /v1/account/validate/confirm.
type ValidationConfirm struct {
	Token string `json:"token"`
}

// ResetConfirm is the body for POST /v1/account/reset/confirm.
type ResetConfirm struct {
	Token       string `json:"token"`
	NewPassword string `json:"password"`
}

// HealthResponse is returned by the /livez and /readyz endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Version string        `json:"version"`
	Uptime  string        `json:"uptime"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency readiness.
type HealthChecks struct {
	Database string `json:"database"`
}

// ErrorResponse is the wire form of an APIError.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}
