package httpx

import (
	"net/http"
	"time"
)

// Cookie names used for token transport.
const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// CookieJar writes the auth cookies. Secure should be true in production so
// the cookies never travel over plain HTTP.
type CookieJar struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// SetSessionCookies sets both token cookies. Both are HttpOnly; the refresh
// cookie is additionally SameSite=Strict.
func (j CookieJar) SetSessionCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookieName,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(j.AccessTTL / time.Second),
		HttpOnly: true,
		Secure:   j.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(j.RefreshTTL / time.Second),
		HttpOnly: true,
		Secure:   j.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookies expires both token cookies.
func (j CookieJar) ClearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessCookieName, RefreshCookieName} {
		sameSite := http.SameSiteLaxMode
		if name == RefreshCookieName {
			sameSite = http.SameSiteStrictMode
		}
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   j.Secure,
			SameSite: sameSite,
		})
	}
}

// CookieValue returns the named cookie's value, or "" if absent.
func CookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
