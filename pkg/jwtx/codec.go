package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification errors. Callers distinguish an expired token (refreshable)
// from a malformed or tampered one (rejected outright) with errors.Is.
var (
	ErrExpired    = errors.New("jwtx: token expired")
	ErrMalformed  = errors.New("jwtx: token malformed")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrIssuer     = errors.New("jwtx: unexpected issuer")
	ErrWrongUse   = errors.New("jwtx: wrong token use")
)

// Codec signs and verifies HS256 tokens with a single shared secret. There is
// no key rotation; rotating the secret invalidates every outstanding token.
type Codec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodec(secret []byte, issuer string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("jwtx: signing secret must be at least 32 bytes, got %d", len(secret))
	}
	return &Codec{
		secret:     secret,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// SignAccess issues a short-lived access token carrying the snapshot.
func (c *Codec) SignAccess(jti string, snap Snapshot) (string, error) {
	return c.sign(jti, UseAccess, c.accessTTL, snap)
}

// SignRefresh issues a refresh token carrying the same snapshot. The refresh
// token shares the ledger row's id as its jti so a presented token can be
// matched back to its row.
func (c *Codec) SignRefresh(jti string, snap Snapshot) (string, error) {
	return c.sign(jti, UseRefresh, c.refreshTTL, snap)
}

func (c *Codec) sign(jti, use string, ttl time.Duration, snap Snapshot) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    c.issuer,
			Subject:   snap.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Use:      use,
		Snapshot: snap,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, requiring the given use. Expired
// tokens return ErrExpired with the decoded claims so a refresh flow can
// still read the snapshot of an access token that just lapsed.
func (c *Codec) Verify(tokenString, use string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrMalformed, t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithIssuer(c.issuer), jwt.WithExpirationRequired())

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return claims, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return nil, ErrIssuer
	default:
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if !token.Valid {
		return nil, ErrMalformed
	}
	if claims.Use != use {
		return nil, ErrWrongUse
	}
	return claims, nil
}
