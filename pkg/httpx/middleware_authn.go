package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/chirp/pkg/jwtx"
	"github.com/aussiebroadwan/chirp/pkg/slogx"
)

// Error codes written by AuthGate.
const (
	CodeNoToken      = "no_token"
	CodeTokenExpired = "token_expired"
	CodeTokenInvalid = "token_invalid"
)

// DefaultProtectedPrefixes are the API paths that require an access token.
var DefaultProtectedPrefixes = []string{
	"/api/auth/me",
	"/api/auth/logout",
	"/api/tweets",
	"/api/profile",
}

// GateOptions configures AuthGate.
type GateOptions struct {
	Verifier jwtx.Verifier

	// ProtectedPrefixes lists path prefixes that require authentication.
	// A path is protected iff it starts with one of them.
	ProtectedPrefixes []string

	// AccessCookie is the cookie consulted when no Authorization header is
	// usable. Defaults to AccessCookieName.
	AccessCookie string
}

// Token sources, in the order AuthGate consults them.
const (
	TokenSourceNone   = ""
	TokenSourceHeader = "header"
	TokenSourceCookie = "cookie"
)

// ExtractToken returns the access token for a request: the Authorization
// header first, then the cookie. A header that is not exactly
// "Bearer <token>" is ignored.
func ExtractToken(r *http.Request, cookieName string) (token, source string) {
	if tok, ok := jwtx.ExtractFromHeader(r.Header.Get("Authorization")); ok {
		return tok, TokenSourceHeader
	}
	if tok := CookieValue(r, cookieName); tok != "" {
		return tok, TokenSourceCookie
	}
	return "", TokenSourceNone
}

// IsProtected reports whether path falls under one of prefixes.
func IsProtected(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// AuthGate authenticates requests to protected paths. Unprotected paths
// pass through untouched; protected ones either get an Identity in their
// context or are rejected with 401.
func AuthGate(opts GateOptions) Middleware {
	if opts.AccessCookie == "" {
		opts.AccessCookie = AccessCookieName
	}
	if opts.ProtectedPrefixes == nil {
		opts.ProtectedPrefixes = DefaultProtectedPrefixes
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsProtected(r.URL.Path, opts.ProtectedPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, source := ExtractToken(r, opts.AccessCookie)
			if raw == "" {
				writeBearerError(w, CodeNoToken, "no access token provided")
				return
			}

			claims, err := opts.Verifier.Verify(raw, jwtx.RoleAccess)
			if err != nil {
				if jwtx.Classify(err) == jwtx.FailureExpired {
					writeBearerError(w, CodeTokenExpired, "access token has expired")
					return
				}
				log.Warn("jwt verify failed", "err", err, "source", source)
				writeBearerError(w, CodeTokenInvalid, "access token is invalid")
				return
			}

			// Inject into context for downstream handlers.
			id := IdentityFromClaims(claims)
			ctx = WithIdentity(ctx, id, raw)
			ctx = slogx.WithUserID(ctx, id.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-style error response for bearer auth, with a JSON body in the
// same shape as every other API error.
func writeBearerError(w http.ResponseWriter, code, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             code,
		"error_description": desc,
	})
}
