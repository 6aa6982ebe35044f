package httpx

import (
	"context"

	"github.com/aussiebroadwan/identity/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyProfileID ctxKey = "profile_id"
	CtxKeyClaims    ctxKey = "claims"
)

// ClaimsFromContext returns the verified claims attached by AuthnMiddleware,
// or nil when the request was not authenticated.
func ClaimsFromContext(ctx context.Context) *jwtx.Claims {
	if v, ok := ctx.Value(CtxKeyClaims).(*jwtx.Claims); ok {
		return v
	}
	return nil
}
