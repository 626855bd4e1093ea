package authsdk

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/chirp/pkg/httpx"
	"github.com/aussiebroadwan/chirp/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testPassword = "Analytical1"

var testUser = UserProfile{
	ID:       "01J0000000000000000000TEST",
	Username: "ada_l",
	Name:     "Ada Lovelace",
	Email:    "ada@example.com",
}

// fakeServer answers the auth endpoints with real tokens so the client's
// expiry checks see genuine exp claims.
type fakeServer struct {
	*httptest.Server
	codec *jwtx.Codec

	mu           sync.Mutex
	refreshCalls int
	meCalls      int
	logoutCalls  int
	refreshFail  bool
	rejectTweets bool
	lastAuth     string

	// refreshGate and meGate, when set, hold the handler until closed
	refreshGate chan struct{}
	meGate      chan struct{}
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	codec, err := jwtx.NewCodec(jwtx.CodecOptions{
		Issuer:        "chirp-auth",
		AccessSecret:  []byte("sdk-access-secret"),
		RefreshSecret: []byte("sdk-refresh-secret"),
	})
	require.NoError(t, err)

	f := &fakeServer{codec: codec}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+PathLogin, f.login)
	mux.HandleFunc("POST "+PathRefresh, f.refresh)
	mux.HandleFunc("POST "+PathLogout, f.logout)
	mux.HandleFunc("GET "+PathMe, f.me)
	mux.HandleFunc("GET "+PathTweets, f.tweets)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// token mints an access token that expires ttl from now.
func (f *fakeServer) token(t *testing.T, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	tok, _, err := f.codec.IssueAccess(jwtx.AccessClaim{
		UserID:    testUser.ID,
		Email:     testUser.Email,
		Username:  testUser.Username,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	})
	require.NoError(t, err)
	return tok
}

func (f *fakeServer) mint() string {
	tok, _, _ := f.codec.IssueAccess(jwtx.AccessClaim{UserID: testUser.ID, Email: testUser.Email})
	return tok
}

func (f *fakeServer) setRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.RefreshCookieName,
		Value:    "opaque-refresh",
		Path:     "/",
		HttpOnly: true,
	})
}

func (f *fakeServer) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Password != testPassword {
		ErrInvalidCredentials.WriteError(w)
		return
	}

	f.setRefreshCookie(w)
	httpx.WriteJSON(w, http.StatusOK, AuthResponse{
		Message:     "Login successful",
		User:        testUser,
		AccessToken: f.mint(),
		ExpiresIn:   900,
	})
}

func (f *fakeServer) refresh(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.refreshCalls++
	gate := f.refreshGate
	fail := f.refreshFail
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	if fail || httpx.CookieValue(r, httpx.RefreshCookieName) == "" {
		ErrTokenInvalid.WriteError(w)
		return
	}

	f.setRefreshCookie(w)
	httpx.WriteJSON(w, http.StatusOK, RefreshResponse{
		Message:     "Token refreshed successfully",
		AccessToken: f.mint(),
		ExpiresIn:   900,
	})
}

func (f *fakeServer) logout(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.logoutCalls++
	f.mu.Unlock()

	httpx.WriteJSON(w, http.StatusOK, LogoutResponse{Success: true, Message: "Successfully logged out"})
}

func (f *fakeServer) me(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.meCalls++
	gate := f.meGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	if _, ok := jwtx.ExtractFromHeader(r.Header.Get("Authorization")); !ok {
		ErrNoToken.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, MeResponse{Success: true, User: testUser})
}

func (f *fakeServer) tweets(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.lastAuth = r.Header.Get("Authorization")
	reject := f.rejectTweets
	f.mu.Unlock()

	if reject {
		ErrTokenExpired.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, TweetListResponse{Tweets: []Tweet{}})
}

func (f *fakeServer) counts() (refresh, me, logout int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls, f.meCalls, f.logoutCalls
}

// seedRefreshCookie puts a refresh cookie in client's jar as if a previous
// run had logged in.
func (f *fakeServer) seedRefreshCookie(t *testing.T, client *Client) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.setRefreshCookie(rec)

	req, err := http.NewRequest(http.MethodGet, f.URL, nil)
	require.NoError(t, err)
	client.HTTPClient.Jar.SetCookies(req.URL, rec.Result().Cookies())
}

// recordingNavigator remembers every route it was sent to.
type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNavigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}
