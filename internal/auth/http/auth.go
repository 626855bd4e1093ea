package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/chirp/internal/auth/domain"
	"github.com/aussiebroadwan/chirp/internal/auth/service"
	"github.com/aussiebroadwan/chirp/pkg/authsdk"
	"github.com/aussiebroadwan/chirp/pkg/httpx"
	"github.com/aussiebroadwan/chirp/pkg/jwtx"
)

// AuthHandler serves the session endpoints under /api/auth.
type AuthHandler struct {
	Sessions *service.SessionService
	Cookies  httpx.CookieJar
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Authenticates with email and password. The access token is returned in the body and as a cookie;
//	@Description	the refresh token is only ever set as an HttpOnly cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.AuthResponse	"user, accessToken, expiresIn"
//	@Failure		400		{object}	authsdk.ErrorResponse	"validation_error or invalid_request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid_credentials"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Header			200		{string}	Set-Cookie				"access_token, refresh_token"
//	@Router			/api/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	sess, err := h.Sessions.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.SetSessionCookies(w, sess.AccessToken, sess.RefreshToken)
	httpx.WriteJSON(w, http.StatusOK, authsdk.AuthResponse{
		Message:     "Login successful",
		User:        toUserProfile(sess.User, false),
		AccessToken: sess.AccessToken,
		ExpiresIn:   h.expiresIn(),
	})
}

// HandleRegister godoc
//
//	@Summary		Register
//	@Description	Creates an account and logs it in. Usernames are 3-20 letters, digits or underscores; passwords
//	@Description	need 8-128 characters with a lowercase letter, an uppercase letter and a digit; users must be 13 or older.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"New account"
//	@Success		201		{object}	authsdk.AuthResponse	"user (with dob), accessToken, expiresIn"
//	@Failure		400		{object}	authsdk.ErrorResponse	"validation_error with fields"
//	@Failure		409		{object}	authsdk.ErrorResponse	"conflict"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Router			/api/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	sess, err := h.Sessions.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		DOB:      req.DOB,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.SetSessionCookies(w, sess.AccessToken, sess.RefreshToken)
	httpx.WriteJSON(w, http.StatusCreated, authsdk.AuthResponse{
		Message:     "User registered successfully",
		User:        toUserProfile(sess.User, true),
		AccessToken: sess.AccessToken,
		ExpiresIn:   h.expiresIn(),
	})
}

// HandleRefresh godoc
//
//	@Summary		Refresh the session
//	@Description	Rotates the refresh token and issues a new access token. The refresh token is read from the
//	@Description	refresh_token cookie, falling back to the refreshToken body field. Each refresh token works once.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	false	"Only for clients without cookies"
//	@Success		200		{object}	authsdk.RefreshResponse	"accessToken, expiresIn"
//	@Failure		401		{object}	authsdk.ErrorResponse	"no_token, token_expired, token_invalid or user_not_found"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Router			/api/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	token := httpx.CookieValue(r, httpx.RefreshCookieName)
	if token == "" {
		var req authsdk.RefreshRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			authsdk.ErrInvalidRequest.WriteError(w)
			return
		}
		token = req.RefreshToken
	}

	sess, err := h.Sessions.Refresh(r.Context(), token)
	if err != nil {
		if refreshTokenDead(err) {
			h.Cookies.ClearSessionCookies(w)
		}
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.SetSessionCookies(w, sess.AccessToken, sess.RefreshToken)
	httpx.WriteJSON(w, http.StatusOK, authsdk.RefreshResponse{
		Message:     "Token refreshed successfully",
		AccessToken: sess.AccessToken,
		ExpiresIn:   h.expiresIn(),
	})
}

// refreshTokenDead reports whether err means the presented refresh token can
// never work again. A superseded token is left alone: it usually lost a race
// with another tab whose response already carries the rotated cookie.
func refreshTokenDead(err error) bool {
	if errors.Is(err, service.ErrRefreshReused) {
		return false
	}
	return errors.Is(err, service.ErrTokenExpired) ||
		errors.Is(err, service.ErrTokenInvalid) ||
		errors.Is(err, service.ErrUserNotFound)
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Clears the refresh slot and both cookies. There is one slot per user, so every device is logged out;
//	@Description	logoutFromAllDevices only changes the message.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LogoutRequest	false	"Options"
//	@Success		200		{object}	authsdk.LogoutResponse	"success, message, loggedOutFromAllDevices"
//	@Failure		401		{object}	authsdk.ErrorResponse	"no_token, token_expired or token_invalid"
//	@Router			/api/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LogoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	token, _ := httpx.AccessTokenFromContext(r.Context())
	res, err := h.Sessions.Logout(r.Context(), token, req.LogoutFromAllDevices)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.ClearSessionCookies(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.LogoutResponse{
		Success:                 true,
		Message:                 res.Message,
		LoggedOutFromAllDevices: res.AllDevices,
	})
}

// HandleMe godoc
//
//	@Summary		Current user
//	@Description	Returns the profile of the user that owns the access token.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MeResponse		"success, user"
//	@Failure		401	{object}	authsdk.ErrorResponse	"no_token, token_expired, token_invalid or user_not_found"
//	@Router			/api/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		authsdk.ErrNoToken.WriteError(w)
		return
	}

	profile, err := h.Sessions.CurrentUser(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MeResponse{
		Success: true,
		User:    toUserProfile(profile, false),
	})
}

// toUserProfile converts a profile to its wire form. The date of birth is
// only echoed back on registration.
func toUserProfile(p domain.Profile, withDOB bool) authsdk.UserProfile {
	out := authsdk.UserProfile{
		ID:           p.ID,
		Username:     p.Username,
		Name:         p.Name,
		Email:        p.Email,
		ProfileImage: p.ProfileImageURL,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if withDOB && !p.DateOfBirth.IsZero() {
		dob := p.DateOfBirth
		out.DOB = &dob
	}
	return out
}

// expiresIn is the access token lifetime in seconds.
func (h *AuthHandler) expiresIn() int {
	return int(h.Sessions.Codec.TTL(jwtx.RoleAccess) / time.Second)
}
