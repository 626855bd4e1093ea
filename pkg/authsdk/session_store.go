package authsdk

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aussiebroadwan/chirp/pkg/jwtx"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultRefreshLead is how long before expiry the proactive refresh fires.
	DefaultRefreshLead = 5 * time.Minute

	// ExpiryBuffer treats a token this close to expiry as already expired.
	ExpiryBuffer = 30 * time.Second

	// EntryRoute is where a logged-out user is sent.
	EntryRoute = "/auth"

	// LandingRoute is where an authenticated user is sent away from /auth.
	LandingRoute = "/"
)

// State is a snapshot of the client session.
type State struct {
	AccessToken   string
	User          *UserProfile
	IsLoading     bool
	IsInitialized bool
}

// IsAuthenticated reports whether both a user and an access token are held.
func (s State) IsAuthenticated() bool {
	return s.User != nil && s.AccessToken != ""
}

// Navigator moves the UI to another route.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// SessionOptions configures a SessionStore. Every field is optional.
type SessionOptions struct {
	Storage     TokenStorage
	Navigator   Navigator
	Logger      *slog.Logger
	RefreshLead time.Duration
	Now         func() time.Time
}

// SessionStore holds the client side of a session: the access token, the
// user profile and the proactive refresh timer. All mutation goes through
// its methods; observers use Subscribe.
type SessionStore struct {
	client    *Client
	storage   TokenStorage
	navigator Navigator
	logger    *slog.Logger
	lead      time.Duration
	now       func() time.Time

	mu      sync.Mutex
	state   State
	subs    map[uint64]func(State)
	nextSub uint64

	// epoch increments on every clear so a refresh that started before a
	// logout cannot reinstall a token after it.
	epoch uint64

	timer    *time.Timer
	timerGen uint64
	closed   bool

	initOnce sync.Once
	initDone chan struct{}

	refreshes singleflight.Group
}

// NewSessionStore creates a store and hydrates the access token from storage.
func NewSessionStore(client *Client, opts SessionOptions) *SessionStore {
	if opts.Storage == nil {
		opts.Storage = NewMemoryStorage()
	}
	if opts.Navigator == nil {
		opts.Navigator = NavigatorFunc(func(string) {})
	}
	if opts.Logger == nil {
		opts.Logger = client.logger()
	}
	if opts.RefreshLead <= 0 {
		opts.RefreshLead = DefaultRefreshLead
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &SessionStore{
		client:    client,
		storage:   opts.Storage,
		navigator: opts.Navigator,
		logger:    opts.Logger,
		lead:      opts.RefreshLead,
		now:       opts.Now,
		subs:      make(map[uint64]func(State)),
		initDone:  make(chan struct{}),
	}

	tok, err := s.storage.Get(AccessTokenStorageKey)
	if err != nil {
		s.logger.Warn("failed to read stored access token", "err", err)
	}
	s.state.AccessToken = tok

	return s
}

// State returns a snapshot of the session.
func (s *SessionStore) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// snapshot copies the state; callers hold mu.
func (s *SessionStore) snapshot() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// Subscribe registers fn to be called with a snapshot after every change.
// The returned function unsubscribes.
func (s *SessionStore) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// update applies fn under the lock and notifies subscribers outside it.
func (s *SessionStore) update(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	st := s.snapshot()
	subs := make([]func(State), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(st)
	}
}

func (s *SessionStore) setLoading(v bool) {
	s.update(func(st *State) { st.IsLoading = v })
}

// Initialized is closed once Initialize has finished, successfully or not.
func (s *SessionStore) Initialized() <-chan struct{} {
	return s.initDone
}

// Initialize restores the session from the stored access token: an expired
// token is refreshed and the profile is fetched. Only a 401 from the server
// drops the stored token; transport and context errors leave it for the
// next start. Only the first call does any work.
func (s *SessionStore) Initialize(ctx context.Context) error {
	var err error
	s.initOnce.Do(func() {
		defer func() {
			s.update(func(st *State) { st.IsInitialized = true })
			close(s.initDone)
		}()
		err = s.initialize(ctx)
	})
	return err
}

func (s *SessionStore) initialize(ctx context.Context) error {
	st := s.State()
	if st.AccessToken == "" {
		return nil
	}

	s.setLoading(true)
	defer s.setLoading(false)

	token := st.AccessToken
	if s.IsTokenExpiringSoon(token, ExpiryBuffer) {
		var err error
		token, err = s.Refresh(ctx)
		if err != nil {
			s.logger.Info("stored session could not be refreshed", "err", err)
			s.clearIfRejected(err)
			return err
		}
	}

	if st.User == nil {
		user, err := s.client.Me(ctx, token)
		if err != nil {
			s.logger.Info("stored session could not be restored", "err", err)
			s.clearIfRejected(err)
			return err
		}
		s.update(func(st *State) { st.User = user })
	}

	s.ScheduleProactiveRefresh(token)
	return nil
}

// clearIfRejected drops the session when err is the server refusing the
// credentials.
func (s *SessionStore) clearIfRejected(err error) {
	if isAuthRejection(err) {
		s.clear()
	}
}

func isAuthRejection(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Login authenticates and installs the new session. A failed login leaves
// the previous state untouched.
func (s *SessionStore) Login(ctx context.Context, email, password string) (*UserProfile, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.client.Login(ctx, LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	s.install(resp.AccessToken, &resp.User)
	return &resp.User, nil
}

// Register creates an account and installs its session.
func (s *SessionStore) Register(ctx context.Context, req RegisterRequest) (*UserProfile, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	s.install(resp.AccessToken, &resp.User)
	return &resp.User, nil
}

// install sets token and user, persists the token and arms the timer.
func (s *SessionStore) install(token string, user *UserProfile) {
	if err := s.storage.Set(AccessTokenStorageKey, token); err != nil {
		s.logger.Warn("failed to persist access token", "err", err)
	}

	u := *user
	s.update(func(st *State) {
		st.AccessToken = token
		st.User = &u
	})
	s.ScheduleProactiveRefresh(token)
}

// Logout always ends the local session: the timer is cancelled, storage and
// memory are cleared and the navigator is sent to EntryRoute. The server
// call is best effort. Calling it while logged out changes nothing.
func (s *SessionStore) Logout(ctx context.Context, allDevices bool) {
	if token := s.State().AccessToken; token != "" {
		if _, err := s.client.Logout(ctx, token, allDevices); err != nil {
			s.logger.Warn("logout endpoint failed", "err", err)
		}
	}

	s.clear()
	s.navigator.Navigate(EntryRoute)
}

// clear drops the local session without talking to the server.
func (s *SessionStore) clear() {
	s.mu.Lock()
	s.epoch++
	s.stopTimerLocked()
	changed := s.state.AccessToken != "" || s.state.User != nil
	s.mu.Unlock()

	if err := s.storage.Delete(AccessTokenStorageKey); err != nil {
		s.logger.Warn("failed to clear stored access token", "err", err)
	}

	if changed {
		s.update(func(st *State) {
			st.AccessToken = ""
			st.User = nil
		})
	}
}

// Refresh obtains a new access token using the refresh cookie. Concurrent
// callers share one request. The store is not cleared on failure; callers
// decide whether that ends the session.
func (s *SessionStore) Refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	// Detach from the first caller's cancellation; the client timeout bounds it
	v, err, _ := s.refreshes.Do("refresh", func() (any, error) {
		resp, err := s.client.Refresh(context.WithoutCancel(ctx))
		if err != nil {
			return "", err
		}
		return resp.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	token := v.(string)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return "", ErrSessionExpired
	}
	s.mu.Unlock()

	if err := s.storage.Set(AccessTokenStorageKey, token); err != nil {
		s.logger.Warn("failed to persist access token", "err", err)
	}
	s.update(func(st *State) { st.AccessToken = token })
	s.ScheduleProactiveRefresh(token)

	return token, nil
}

// EnsureValidToken returns an access token that is not about to expire,
// refreshing first when needed.
func (s *SessionStore) EnsureValidToken(ctx context.Context) (string, error) {
	token := s.State().AccessToken
	if token != "" && !s.IsTokenExpiringSoon(token, ExpiryBuffer) {
		return token, nil
	}
	return s.Refresh(ctx)
}

// IsTokenExpiringSoon reports whether token expires within buffer of now.
// Tokens that cannot be decoded count as expiring.
func (s *SessionStore) IsTokenExpiringSoon(token string, buffer time.Duration) bool {
	return TokenExpiringSoon(token, buffer, s.now())
}

// TokenExpiringSoon reports whether token's exp is at most buffer after now.
// The signature is not checked; this is only a UX hint.
func TokenExpiringSoon(token string, buffer time.Duration, now time.Time) bool {
	claims, ok := jwtx.DecodeUnsafe(token)
	if !ok {
		return true
	}
	exp := claims.Expiry()
	if exp.IsZero() {
		return true
	}
	return exp.Sub(now) <= buffer
}

// ScheduleProactiveRefresh arms a one-shot timer to refresh RefreshLead
// before token expires, replacing any pending timer.
func (s *SessionStore) ScheduleProactiveRefresh(token string) {
	claims, ok := jwtx.DecodeUnsafe(token)
	if !ok || claims.Expiry().IsZero() {
		return
	}

	delay := max(claims.Expiry().Sub(s.now())-s.lead, 0)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.stopTimerLocked()
	gen := s.timerGen
	s.timer = time.AfterFunc(delay, func() { s.onRefreshTimer(gen) })
}

// stopTimerLocked cancels the pending timer. A fire already in flight sees
// the bumped generation and does nothing.
func (s *SessionStore) stopTimerLocked() {
	s.timerGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *SessionStore) onRefreshTimer(gen uint64) {
	s.mu.Lock()
	stale := gen != s.timerGen || s.closed || !s.state.IsAuthenticated()
	s.mu.Unlock()
	if stale {
		return
	}

	ctx := context.Background()
	if _, err := s.Refresh(ctx); err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return
		}
		s.logger.Info("proactive refresh failed, logging out", "err", err)
		s.Logout(ctx, false)
	}
}

// Close cancels the refresh timer. The store keeps its state but no
// further timers are armed.
func (s *SessionStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopTimerLocked()
}

// HTTPClient returns a client for application requests. It shares the
// cookie jar and routes through an Interceptor bound to this store.
func (s *SessionStore) HTTPClient() *http.Client {
	base := s.client.HTTPClient
	next := base.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	return &http.Client{
		Transport: NewInterceptor(s, next),
		Jar:       base.Jar,
		Timeout:   base.Timeout,
	}
}
