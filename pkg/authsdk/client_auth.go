package authsdk

import (
	"context"
	"net/http"
)

// Endpoint paths.
const (
	PathLogin    = "/api/auth/login"
	PathRegister = "/api/auth/register"
	PathRefresh  = "/api/auth/refresh"
	PathLogout   = "/api/auth/logout"
	PathMe       = "/api/auth/me"
	PathTweets   = "/api/tweets"
)

// Login authenticates with email and password. On success the refresh
// cookie is stored in the client's jar.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, PathLogin, req, "", &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and logs it in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, PathRegister, req, "", &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh rotates the session using the refresh cookie held in the jar.
func (c *Client) Refresh(ctx context.Context) (*RefreshResponse, error) {
	var out RefreshResponse
	if err := c.doJSON(ctx, http.MethodPost, PathRefresh, RefreshRequest{}, "", &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshWithToken rotates the session using an explicit refresh token, for
// callers that do not keep cookies.
func (c *Client) RefreshWithToken(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	var out RefreshResponse
	req := RefreshRequest{RefreshToken: refreshToken}
	if err := c.doJSON(ctx, http.MethodPost, PathRefresh, req, "", &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the session behind accessToken and clears the cookies.
func (c *Client) Logout(ctx context.Context, accessToken string, allDevices bool) (*LogoutResponse, error) {
	var out LogoutResponse
	req := LogoutRequest{LogoutFromAllDevices: allDevices}
	if err := c.doJSON(ctx, http.MethodPost, PathLogout, req, accessToken, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the profile of the user that owns accessToken.
func (c *Client) Me(ctx context.Context, accessToken string) (*UserProfile, error) {
	var out MeResponse
	if err := c.doJSON(ctx, http.MethodGet, PathMe, nil, accessToken, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}
