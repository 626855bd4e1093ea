//go:build e2e

package auth_test

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/chirp/pkg/authsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for auth service end-to-end tests.
 * This includes container setup, account creation, and assertions.
 */

const (
	testImageName = "chirp-auth-test:latest"

	testPassword = "Analytical1"
	testDOB      = "1990-04-12"
)

var userSeq atomic.Int64

// TestMain manages the test lifecycle, builds the Docker image once before
// all tests and cleans it up after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Auth Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Auth Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

// buildDockerImage builds the test Docker image.
func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/auth/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

// cleanupDockerImage removes the test Docker image.
func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// baseEnv is the container environment shared by every test. ENV=test makes
// the service generate its own token secrets.
func baseEnv() map[string]string {
	return map[string]string{
		"ENV":         "test",
		"LOG_LEVEL":   "info",
		"LOG_FORMAT":  "json",
		"BCRYPT_COST": "10",
	}
}

// relaxedRateLimits raises the auth endpoint limits so tests that make many
// rapid requests are not throttled.
func relaxedRateLimits() map[string]string {
	return map[string]string{
		"RATELIMIT_STRICT_REQUESTS":   "1000",
		"RATELIMIT_STRICT_WINDOW_SEC": "60",
		"RATELIMIT_STRICT_BURST":      "1000",
		"RATELIMIT_MODERATE_REQUESTS": "1000",
		"RATELIMIT_MODERATE_BURST":    "1000",
	}
}

// setupAuthContainer starts the auth service with relaxed rate limits and
// returns its base URL.
func setupAuthContainer(t *testing.T) (string, func()) {
	t.Helper()
	env := baseEnv()
	maps.Copy(env, relaxedRateLimits())
	return startContainer(t, env)
}

// setupAuthContainerWithDefaultRateLimits starts the auth service with the
// production rate limits. Only the rate limit tests should need this.
func setupAuthContainerWithDefaultRateLimits(t *testing.T) (string, func()) {
	t.Helper()
	return startContainer(t, baseEnv())
}

// setupAuthContainerWithEnv starts the auth service with relaxed rate limits
// plus the given overrides.
func setupAuthContainerWithEnv(t *testing.T, extra map[string]string) (string, func()) {
	t.Helper()
	env := baseEnv()
	maps.Copy(env, relaxedRateLimits())
	maps.Copy(env, extra)
	return startContainer(t, env)
}

func startContainer(t *testing.T, env map[string]string) (string, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// newRegistration returns a registration request for a fresh account.
func newRegistration() authsdk.RegisterRequest {
	n := userSeq.Add(1)
	return authsdk.RegisterRequest{
		Username: fmt.Sprintf("e2e_user%d", n),
		Name:     fmt.Sprintf("E2E User %d", n),
		Email:    fmt.Sprintf("e2e-user-%d@example.com", n),
		Password: testPassword,
		DOB:      testDOB,
	}
}

// registerUser creates an account through client and returns the response.
// The client's cookie jar ends up holding the refresh cookie.
func registerUser(t *testing.T, client *authsdk.Client) (authsdk.RegisterRequest, *authsdk.AuthResponse) {
	t.Helper()

	req := newRegistration()
	resp, err := client.Register(t.Context(), req)
	require.NoError(t, err, "Register should succeed")
	assertAuthResponse(t, resp)

	return req, resp
}

// assertAuthResponse verifies a login/register response has all required fields.
func assertAuthResponse(t *testing.T, resp *authsdk.AuthResponse) {
	t.Helper()
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.AccessToken, "Access token should not be empty")
	require.Equal(t, 900, resp.ExpiresIn, "Access tokens should last 15 minutes")
	require.NotEmpty(t, resp.User.ID, "User ID should not be empty")
}

// assertAPIError checks that err carries the given wire error.
func assertAPIError(t *testing.T, err error, want *authsdk.APIError, context string) {
	t.Helper()
	require.Error(t, err, context)
	require.ErrorIs(t, err, want, "%s - got: %v", context, err)
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
