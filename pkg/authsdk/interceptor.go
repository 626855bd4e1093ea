package authsdk

import (
	"io"
	"net/http"
	"slices"
	"strings"
)

// Interceptor is an http.RoundTripper that attaches the session's access
// token to every request and reacts to 401 responses.
//
// On a 401 from a non-exempt path it tries one refresh. If that works the
// request fails with ErrTokenRefreshed and the caller retries it; the
// original request is never replayed. If it fails the session is logged out
// and the request fails with ErrSessionExpired.
type Interceptor struct {
	Session *SessionStore
	Next    http.RoundTripper

	// ExemptPaths are URL paths whose 401s are passed through untouched.
	// The auth endpoints are listed so a bad login does not trigger refresh.
	ExemptPaths []string
}

// NewInterceptor wraps next with session handling.
func NewInterceptor(session *SessionStore, next http.RoundTripper) *Interceptor {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Interceptor{
		Session:     session,
		Next:        next,
		ExemptPaths: []string{PathLogin, PathRegister, PathRefresh, PathLogout},
	}
}

func (i *Interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request
	r := req.Clone(req.Context())
	if token := i.Session.State().AccessToken; token != "" && r.Header.Get("Authorization") == "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := i.Next.RoundTrip(r)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || i.exempt(r.URL.Path) {
		return resp, nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	ctx := req.Context()
	if _, err := i.Session.Refresh(ctx); err != nil {
		i.Session.logger.Info("refresh after 401 failed", "path", r.URL.Path, "err", err)
		i.Session.Logout(ctx, false)
		return nil, ErrSessionExpired
	}

	return nil, ErrTokenRefreshed
}

func (i *Interceptor) exempt(path string) bool {
	return slices.ContainsFunc(i.ExemptPaths, func(p string) bool {
		return path == p || strings.HasSuffix(path, p)
	})
}
