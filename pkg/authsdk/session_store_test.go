package authsdk

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/chirp/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, f *fakeServer, storage TokenStorage) (*SessionStore, *recordingNavigator) {
	t.Helper()
	nav := &recordingNavigator{}
	s := NewSessionStore(NewClient(f.URL), SessionOptions{Storage: storage, Navigator: nav})
	t.Cleanup(s.Close)
	return s, nav
}

func TestSessionStore_Login(t *testing.T) {
	ctx := context.Background()
	f := newFakeServer(t)
	storage := NewMemoryStorage()
	s, _ := newTestStore(t, f, storage)

	var seen []State
	var mu sync.Mutex
	unsubscribe := s.Subscribe(func(st State) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, st)
	})
	defer unsubscribe()

	user, err := s.Login(ctx, testUser.Email, testPassword)
	require.NoError(t, err)
	require.Equal(t, testUser.ID, user.ID)

	st := s.State()
	require.True(t, st.IsAuthenticated())
	require.False(t, st.IsLoading)

	stored, err := storage.Get(AccessTokenStorageKey)
	require.NoError(t, err)
	require.Equal(t, st.AccessToken, stored)

	mu.Lock()
	require.NotEmpty(t, seen)
	require.True(t, seen[0].IsLoading)
	mu.Unlock()
}

func TestSessionStore_LoginFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	f := newFakeServer(t)
	s, _ := newTestStore(t, f, nil)

	_, err := s.Login(ctx, testUser.Email, "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.False(t, s.State().IsAuthenticated())
	require.False(t, s.State().IsLoading)
}

func TestSessionStore_Initialize(t *testing.T) {
	ctx := context.Background()

	t.Run("no stored token", func(t *testing.T) {
		f := newFakeServer(t)
		s, _ := newTestStore(t, f, nil)

		require.NoError(t, s.Initialize(ctx))
		require.True(t, s.State().IsInitialized)
		require.False(t, s.State().IsAuthenticated())

		refresh, me, _ := f.counts()
		require.Zero(t, refresh)
		require.Zero(t, me)
	})

	t.Run("valid stored token fetches profile", func(t *testing.T) {
		f := newFakeServer(t)
		storage := NewMemoryStorage()
		require.NoError(t, storage.Set(AccessTokenStorageKey, f.token(t, 10*time.Minute)))
		s, _ := newTestStore(t, f, storage)

		require.NoError(t, s.Initialize(ctx))
		st := s.State()
		require.True(t, st.IsAuthenticated())
		require.Equal(t, testUser.Username, st.User.Username)

		refresh, me, _ := f.counts()
		require.Zero(t, refresh)
		require.Equal(t, 1, me)

		// Later calls are no-ops
		require.NoError(t, s.Initialize(ctx))
		_, me, _ = f.counts()
		require.Equal(t, 1, me)
	})

	t.Run("expiring stored token is refreshed", func(t *testing.T) {
		f := newFakeServer(t)
		storage := NewMemoryStorage()
		old := f.token(t, 10*time.Second)
		require.NoError(t, storage.Set(AccessTokenStorageKey, old))
		s, _ := newTestStore(t, f, storage)
		f.seedRefreshCookie(t, s.client)

		require.NoError(t, s.Initialize(ctx))
		st := s.State()
		require.True(t, st.IsAuthenticated())
		require.NotEqual(t, old, st.AccessToken)

		refresh, _, _ := f.counts()
		require.Equal(t, 1, refresh)
	})

	t.Run("unreachable server keeps the stored token", func(t *testing.T) {
		f := newFakeServer(t)
		stored := f.token(t, 10*time.Minute)
		storage := NewMemoryStorage()
		require.NoError(t, storage.Set(AccessTokenStorageKey, stored))
		s, _ := newTestStore(t, f, storage)
		f.Close()

		require.Error(t, s.Initialize(ctx))
		require.True(t, s.State().IsInitialized)
		require.False(t, s.State().IsAuthenticated())

		tok, err := storage.Get(AccessTokenStorageKey)
		require.NoError(t, err)
		require.Equal(t, stored, tok)
	})

	t.Run("failed refresh clears the session", func(t *testing.T) {
		f := newFakeServer(t)
		storage := NewMemoryStorage()
		require.NoError(t, storage.Set(AccessTokenStorageKey, "not-a-jwt"))
		s, _ := newTestStore(t, f, storage)

		require.Error(t, s.Initialize(ctx))
		st := s.State()
		require.True(t, st.IsInitialized)
		require.False(t, st.IsAuthenticated())
		require.Empty(t, st.AccessToken)

		stored, err := storage.Get(AccessTokenStorageKey)
		require.NoError(t, err)
		require.Empty(t, stored)

		select {
		case <-s.Initialized():
		default:
			t.Fatal("Initialized channel not closed")
		}
	})
}

func TestSessionStore_RefreshIsSingleFlight(t *testing.T) {
	ctx := context.Background()
	f := newFakeServer(t)
	s, _ := newTestStore(t, f, nil)

	_, err := s.Login(ctx, testUser.Email, testPassword)
	require.NoError(t, err)

	gate := make(chan struct{})
	f.mu.Lock()
	f.refreshGate = gate
	f.mu.Unlock()

	const callers = 5
	tokens := make([]string, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens[i], errs[i] = s.Refresh(ctx)
		}()
	}

	require.Eventually(t, func() bool {
		refresh, _, _ := f.counts()
		return refresh == 1
	}, time.Second, 5*time.Millisecond)

	// Give the other callers time to join the in-flight request
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		require.Equal(t, tokens[0], tokens[i])
	}
	refresh, _, _ := f.counts()
	require.Equal(t, 1, refresh)
	require.Equal(t, tokens[0], s.State().AccessToken)
}

func TestSessionStore_Logout(t *testing.T) {
	ctx := context.Background()
	f := newFakeServer(t)
	storage := NewMemoryStorage()
	s, nav := newTestStore(t, f, storage)

	_, err := s.Login(ctx, testUser.Email, testPassword)
	require.NoError(t, err)

	s.Logout(ctx, true)

	st := s.State()
	require.False(t, st.IsAuthenticated())
	require.Empty(t, st.AccessToken)
	require.Nil(t, st.User)

	stored, err := storage.Get(AccessTokenStorageKey)
	require.NoError(t, err)
	require.Empty(t, stored)
	require.Equal(t, []string{EntryRoute}, nav.Routes())

	// A second logout does not call the server again
	s.Logout(ctx, false)
	_, _, logout := f.counts()
	require.Equal(t, 1, logout)
	require.False(t, s.State().IsAuthenticated())
}

func TestSessionStore_LogoutWhenServerDown(t *testing.T) {
	ctx := context.Background()
	f := newFakeServer(t)
	s, nav := newTestStore(t, f, nil)

	_, err := s.Login(ctx, testUser.Email, testPassword)
	require.NoError(t, err)

	f.Close()
	s.Logout(ctx, false)

	require.False(t, s.State().IsAuthenticated())
	require.Equal(t, []string{EntryRoute}, nav.Routes())
}

func TestSessionStore_RefreshAfterLogoutDoesNotRestore(t *testing.T) {
	ctx := context.Background()
	f := newFakeServer(t)
	s, _ := newTestStore(t, f, nil)

	_, err := s.Login(ctx, testUser.Email, testPassword)
	require.NoError(t, err)

	gate := make(chan struct{})
	f.mu.Lock()
	f.refreshGate = gate
	f.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := s.Refresh(ctx)
		done <- err
	}()

	require.Eventually(t, func() bool {
		refresh, _, _ := f.counts()
		return refresh == 1
	}, time.Second, 5*time.Millisecond)

	s.Logout(ctx, false)
	close(gate)

	require.ErrorIs(t, <-done, ErrSessionExpired)
	require.Empty(t, s.State().AccessToken)
}

func TestSessionStore_ProactiveRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("refreshes before expiry", func(t *testing.T) {
		f := newFakeServer(t)
		s, _ := newTestStore(t, f, nil)

		_, err := s.Login(ctx, testUser.Email, testPassword)
		require.NoError(t, err)

		s.ScheduleProactiveRefresh(f.token(t, DefaultRefreshLead+50*time.Millisecond))

		require.Eventually(t, func() bool {
			refresh, _, _ := f.counts()
			return refresh == 1
		}, 2*time.Second, 10*time.Millisecond)
		require.True(t, s.State().IsAuthenticated())
	})

	t.Run("failure logs out", func(t *testing.T) {
		f := newFakeServer(t)
		s, nav := newTestStore(t, f, nil)

		_, err := s.Login(ctx, testUser.Email, testPassword)
		require.NoError(t, err)

		f.mu.Lock()
		f.refreshFail = true
		f.mu.Unlock()

		s.ScheduleProactiveRefresh(f.token(t, DefaultRefreshLead))

		require.Eventually(t, func() bool {
			return !s.State().IsAuthenticated()
		}, 2*time.Second, 10*time.Millisecond)
		require.Eventually(t, func() bool {
			return len(nav.Routes()) == 1
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("cancelled by logout", func(t *testing.T) {
		f := newFakeServer(t)
		s, _ := newTestStore(t, f, nil)

		_, err := s.Login(ctx, testUser.Email, testPassword)
		require.NoError(t, err)

		s.ScheduleProactiveRefresh(f.token(t, DefaultRefreshLead+200*time.Millisecond))
		s.Logout(ctx, false)

		time.Sleep(400 * time.Millisecond)
		refresh, _, _ := f.counts()
		require.Zero(t, refresh)
	})
}

func TestSessionStore_EnsureValidToken(t *testing.T) {
	ctx := context.Background()
	f := newFakeServer(t)
	s, _ := newTestStore(t, f, nil)

	_, err := s.Login(ctx, testUser.Email, testPassword)
	require.NoError(t, err)
	current := s.State().AccessToken

	tok, err := s.EnsureValidToken(ctx)
	require.NoError(t, err)
	require.Equal(t, current, tok)

	refresh, _, _ := f.counts()
	require.Zero(t, refresh)

	f.mu.Lock()
	f.refreshFail = true
	f.mu.Unlock()
	s.update(func(st *State) { st.AccessToken = f.token(t, time.Second) })

	_, err = s.EnsureValidToken(ctx)
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, ErrorCodeTokenInvalid, apiErr.Code)
}

func TestTokenExpiringSoon(t *testing.T) {
	f := newFakeServer(t)
	now := time.Now()

	require.False(t, TokenExpiringSoon(f.token(t, 10*time.Minute), ExpiryBuffer, now))
	require.True(t, TokenExpiringSoon(f.token(t, 10*time.Second), ExpiryBuffer, now))
	require.True(t, TokenExpiringSoon("garbage", ExpiryBuffer, now))
	require.True(t, TokenExpiringSoon("", ExpiryBuffer, now))
}

func TestTokenExpiringSoon_MonotonicInBuffer(t *testing.T) {
	f := newFakeServer(t)
	token := f.token(t, 10*time.Minute)

	claims, ok := jwtx.DecodeUnsafe(token)
	require.True(t, ok)
	// Two minutes of life left at now
	now := claims.Expiry().Add(-2 * time.Minute)

	buffers := []struct {
		buffer time.Duration
		want   bool
	}{
		{0, false},
		{ExpiryBuffer, false},
		{time.Minute, false},
		{2*time.Minute - time.Nanosecond, false},
		{2 * time.Minute, true}, // exp - now == buffer
		{2*time.Minute + time.Second, true},
		{DefaultRefreshLead, true},
		{time.Hour, true},
	}

	prev := false
	for _, tt := range buffers {
		got := TokenExpiringSoon(token, tt.buffer, now)
		require.Equal(t, tt.want, got, "buffer %s", tt.buffer)
		require.False(t, prev && !got, "result flipped back to false at buffer %s", tt.buffer)
		prev = got
	}
}
