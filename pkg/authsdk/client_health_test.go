package authsdk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetReadiness(t *testing.T) {
	var ready atomic.Bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, PathReadyz, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if ready.Load() {
			_, _ = w.Write([]byte(`{"status":"ok","checks":{"database":"ok","tokens":"ok"}}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"degraded","checks":{"database":"error: closed","tokens":"ok"}}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL)

	health, err := client.GetReadiness(context.Background())
	require.ErrorIs(t, err, ErrNotReady)
	require.Equal(t, "degraded", health.Status)
	require.Equal(t, "error: closed", health.Checks.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, client.WaitReady(ctx, 5*time.Millisecond), context.DeadlineExceeded)

	ready.Store(true)
	health, err = client.GetReadiness(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Checks.Tokens)
	require.NoError(t, client.WaitReady(context.Background(), 5*time.Millisecond))
}
