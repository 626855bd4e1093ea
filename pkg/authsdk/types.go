package authsdk

import "time"

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the JSON body of every error response.
// Client code should use the APIError type from errors.go instead.
type ErrorResponse struct {
	// Error is the error code (e.g. "invalid_credentials")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`

	// Fields maps request fields to validation messages (validation_error only)
	Fields map[string]string `json:"fields,omitempty"`
}

// ============================================================================
// User Types
// ============================================================================

// UserProfile is the public view of a user. It never carries the password
// hash or refresh token.
type UserProfile struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage"`

	// DOB is only present in the registration response
	DOB *time.Time `json:"dob,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ============================================================================
// Auth Types
// ============================================================================

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/auth/register. DOB is an RFC 3339
// timestamp or a YYYY-MM-DD date.
type RegisterRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	DOB      string `json:"dob"`
}

// AuthResponse is returned by login and registration. The refresh token is
// delivered only as an HttpOnly cookie.
type AuthResponse struct {
	Message     string      `json:"message,omitempty"`
	User        UserProfile `json:"user"`
	AccessToken string      `json:"accessToken"`

	// ExpiresIn is the lifetime of AccessToken in seconds
	ExpiresIn int `json:"expiresIn"`
}

// RefreshRequest is the optional body of POST /api/auth/refresh. Browsers
// rely on the refresh_token cookie and send an empty body.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// RefreshResponse is returned by POST /api/auth/refresh.
type RefreshResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

// LogoutRequest is the optional body of POST /api/auth/logout.
type LogoutRequest struct {
	LogoutFromAllDevices bool `json:"logoutFromAllDevices"`
}

// LogoutResponse is returned by POST /api/auth/logout.
type LogoutResponse struct {
	Success                 bool   `json:"success"`
	Message                 string `json:"message"`
	LoggedOutFromAllDevices bool   `json:"loggedOutFromAllDevices"`
}

// MeResponse is returned by GET /api/auth/me.
type MeResponse struct {
	Success bool        `json:"success"`
	User    UserProfile `json:"user"`
}

// ============================================================================
// Tweet Types
// ============================================================================

// Media is an attachment hosted by the upload provider.
type Media struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Tweet is a post with its author's public profile.
type Tweet struct {
	ID        string      `json:"id"`
	Content   string      `json:"content"`
	Media     *Media      `json:"media,omitempty"`
	Author    UserProfile `json:"author"`
	CreatedAt time.Time   `json:"createdAt"`
}

// TweetResponse is returned by POST /api/tweets.
type TweetResponse struct {
	Message string `json:"message"`
	Tweet   Tweet  `json:"tweet"`
}

// TweetListResponse is returned by GET /api/tweets.
type TweetListResponse struct {
	Tweets []Tweet `json:"tweets"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// Tokens indicates whether the token codec is configured
	Tokens string `json:"tokens"`
}
