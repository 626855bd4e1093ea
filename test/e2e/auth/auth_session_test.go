//go:build e2e

package auth_test

import (
	"testing"

	"github.com/aussiebroadwan/chirp/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRegisterLoginMe walks the basic account lifecycle.
func TestRegisterLoginMe(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)
	reg, resp := registerUser(t, client)
	require.Equal(t, reg.Username, resp.User.Username)
	require.Equal(t, reg.Email, resp.User.Email)
	require.NotNil(t, resp.User.DOB, "Registration should echo the date of birth")

	login, err := authsdk.NewClient(baseURL).Login(t.Context(), authsdk.LoginRequest{
		Email:    reg.Email,
		Password: reg.Password,
	})
	require.NoError(t, err)
	assertAuthResponse(t, login)
	require.Equal(t, resp.User.ID, login.User.ID)

	me, err := client.Me(t.Context(), login.AccessToken)
	require.NoError(t, err)
	require.Equal(t, reg.Username, me.Username)
	require.Nil(t, me.DOB)
}

// TestRegisterDuplicate verifies usernames and emails are unique.
func TestRegisterDuplicate(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)
	reg, _ := registerUser(t, client)

	again := newRegistration()
	again.Email = reg.Email
	_, err := client.Register(t.Context(), again)
	assertAPIError(t, err, authsdk.ErrConflict, "Duplicate email")

	again = newRegistration()
	again.Username = reg.Username
	_, err = client.Register(t.Context(), again)
	assertAPIError(t, err, authsdk.ErrConflict, "Duplicate username")
}

// TestRegisterValidation verifies field errors come back per field.
func TestRegisterValidation(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	reg := newRegistration()
	reg.Password = "short"
	reg.DOB = "2024-01-01"

	_, err := authsdk.NewClient(baseURL).Register(t.Context(), reg)
	assertAPIError(t, err, authsdk.ErrValidation, "Weak password and underage user")

	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Contains(t, apiErr.Fields, "password")
	require.Contains(t, apiErr.Fields, "dob")
}

// TestLoginInvalidCredentials verifies unknown emails and wrong passwords
// are indistinguishable.
func TestLoginInvalidCredentials(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)
	reg, _ := registerUser(t, client)

	_, err := client.Login(t.Context(), authsdk.LoginRequest{Email: reg.Email, Password: "Wrong1234"})
	assertAPIError(t, err, authsdk.ErrInvalidCredentials, "Wrong password")

	_, err = client.Login(t.Context(), authsdk.LoginRequest{Email: "nobody@example.com", Password: testPassword})
	assertAPIError(t, err, authsdk.ErrInvalidCredentials, "Unknown email")
}

// TestProtectedRoutesRequireToken verifies AuthGate rejects missing and
// forged tokens.
func TestProtectedRoutesRequireToken(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)

	_, err := client.Me(t.Context(), "")
	assertAPIError(t, err, authsdk.ErrNoToken, "Me without a token")

	_, err = client.Me(t.Context(), "not.a.jwt")
	assertAPIError(t, err, authsdk.ErrTokenInvalid, "Me with a garbage token")
}

// TestLogoutEndsSession verifies logout clears the refresh slot.
func TestLogoutEndsSession(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)
	_, reg := registerUser(t, client)
	old := refreshCookie(t, client)

	out, err := client.Logout(t.Context(), reg.AccessToken, true)
	require.NoError(t, err)
	require.True(t, out.Success)
	require.True(t, out.LoggedOutFromAllDevices)

	_, err = authsdk.NewClient(baseURL).RefreshWithToken(t.Context(), old)
	assertAPIError(t, err, authsdk.ErrTokenInvalid, "Refresh after logout")
}
