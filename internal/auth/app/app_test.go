package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/chirp/internal/auth/media"
	"github.com/aussiebroadwan/chirp/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func testConfig(dir string) Config {
	return Config{
		Issuer:               "chirp-auth",
		AccessTTL:            15 * time.Minute,
		RefreshTTL:           7 * 24 * time.Hour,
		DatabaseFile:         filepath.Join(dir, "chirp.db"),
		PepperFile:           filepath.Join(dir, "pepper"),
		BcryptCost:           10,
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "json",
		Port:                 0,
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}
}

func TestApplication_WiresAndStops(t *testing.T) {
	application, err := New(testConfig(t.TempDir()))
	require.NoError(t, err)
	require.Nil(t, application.tweetService.Uploader, "no media host without credentials")

	srv := httptest.NewServer(application.Handler())
	defer srv.Close()

	client := authsdk.NewClient(srv.URL)
	ready, err := client.GetReadiness(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, BuildVersion, ready.Version)

	resp, err := client.Register(context.Background(), authsdk.RegisterRequest{
		Username: "ada_l",
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "Analytical1",
		DOB:      "1990-12-10",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, application.Run(ctx))
}

func TestApplication_WiresCloudinary(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.CloudinaryCloudName = "demo"
	cfg.CloudinaryAPIKey = "key"
	cfg.CloudinaryAPISecret = "secret"

	application, err := New(cfg)
	require.NoError(t, err)
	require.IsType(t, &media.CloudinaryUploader{}, application.tweetService.Uploader)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, application.Run(ctx))
}
