package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/identity/internal/identity/obs"
	"github.com/aussiebroadwan/identity/internal/identity/service"
	"github.com/aussiebroadwan/identity/internal/identity/store"
	"github.com/aussiebroadwan/identity/pkg/httpx"
	"github.com/aussiebroadwan/identity/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     httpx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	refreshTTL   time.Duration

	store          store.Store
	AuthService    *service.AuthService
	LedgerService  *service.LedgerService
	AccountService *service.AccountService
}

func NewRouter(
	verifier httpx.Verifier,
	buildVersion string,
	refreshTTL time.Duration,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		refreshTTL:   refreshTTL,
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		obs.Instrument,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAccount()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /login - strict rate limit by IP (authentication attempts)
	loginHandler := &LoginHandler{
		AuthService: r.AuthService,
		RefreshTTL:  r.refreshTTL,
	}
	r.Mux.Handle("POST /v1/auth/{platformID}/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /refresh - moderate rate limit by IP. The CSRF middleware only
	// bites when the refresh token arrives via cookie.
	refreshHandler := &RefreshHandler{
		Ledger:     r.LedgerService,
		RefreshTTL: r.refreshTTL,
	}
	r.Mux.Handle("POST /v1/auth/{platformID}/refresh",
		httpx.Chain(refreshHandler,
			CSRFMiddleware(),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /logout - moderate rate limit by IP, idempotent
	logoutHandler := &LogoutHandler{Ledger: r.LedgerService}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logoutHandler,
			CSRFMiddleware(),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// GET /validate - called by downstream services on every request, so it
	// gets the lenient profile keyed by IP
	validateHandler := &ValidateHandler{Ledger: r.LedgerService}
	r.Mux.Handle("GET /v1/auth/validate/{platformID}",
		httpx.Chain(validateHandler,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /permissions/check - requires a verified access token
	permissionsHandler := &PermissionsHandler{}
	r.Mux.Handle("POST /v1/auth/permissions/check",
		httpx.Chain(permissionsHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByProfile(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAccount() {
	h := &AccountHandler{AccountService: r.AccountService}

	// Request endpoints mint credential tokens, strict limit by IP
	r.Mux.Handle("POST /v1/account/validate/request",
		httpx.Chain(http.HandlerFunc(h.HandleValidateRequest),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/account/reset/request",
		httpx.Chain(http.HandlerFunc(h.HandleResetRequest),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Confirm endpoints consume single-use tokens, strict limit by IP to
	// slow down token guessing
	r.Mux.Handle("POST /v1/account/validate/confirm",
		httpx.Chain(http.HandlerFunc(h.HandleValidateConfirm),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/account/reset/confirm",
		httpx.Chain(http.HandlerFunc(h.HandleResetConfirm),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /metrics", obs.Handler())
}
