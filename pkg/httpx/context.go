package httpx

import (
	"context"
	"time"

	"github.com/aussiebroadwan/chirp/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID   ctxKey = "user_id"
	CtxKeyIdentity ctxKey = "identity"
	CtxKeyToken    ctxKey = "access_token"
)

// Identity is what AuthGate attaches to an authenticated request.
type Identity struct {
	UserID    string
	Email     string
	Username  string
	ExpiresAt time.Time
}

// IdentityFromClaims builds an Identity from verified access claims.
func IdentityFromClaims(c jwtx.Claims) Identity {
	ac := c.Access()
	return Identity{
		UserID:    ac.UserID,
		Email:     ac.Email,
		Username:  ac.Username,
		ExpiresAt: ac.ExpiresAt,
	}
}

// WithIdentity stores the identity and the raw token it came from.
func WithIdentity(ctx context.Context, id Identity, token string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, id.UserID)
	ctx = context.WithValue(ctx, CtxKeyIdentity, id)
	ctx = context.WithValue(ctx, CtxKeyToken, token)
	return ctx
}

// IdentityFromContext returns the identity attached by AuthGate.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(CtxKeyIdentity).(Identity)
	return id, ok
}

// AccessTokenFromContext returns the raw access token AuthGate accepted.
func AccessTokenFromContext(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(CtxKeyToken).(string)
	return tok, ok && tok != ""
}
