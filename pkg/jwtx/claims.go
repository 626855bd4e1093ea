package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants for the session flow.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	// It matches the Max-Age of the refresh cookie.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Role says what a token is for. Each role has its own signing secret
// and audience, so a token minted for one role never verifies as the other.
type Role string

const (
	RoleAccess  Role = "access"
	RoleRefresh Role = "refresh"
)

// Claims is the JWT payload shared by access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the user, only present on access tokens.
	Email string `json:"email,omitempty"`

	// Username of the user, only present on access tokens.
	Username string `json:"username,omitempty"`

	// TokenUse mirrors the role the token was issued for.
	TokenUse Role `json:"token_use"`
}

// AccessClaim is the identity carried by an access token.
type AccessClaim struct {
	UserID    string
	Email     string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RefreshClaim is the identity carried by a refresh token.
type RefreshClaim struct {
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Access projects the claims onto an AccessClaim.
func (c *Claims) Access() AccessClaim {
	return AccessClaim{
		UserID:    c.Subject,
		Email:     c.Email,
		Username:  c.Username,
		IssuedAt:  numericTime(c.IssuedAt),
		ExpiresAt: numericTime(c.ExpiresAt),
	}
}

// Refresh projects the claims onto a RefreshClaim.
func (c *Claims) Refresh() RefreshClaim {
	return RefreshClaim{
		UserID:    c.Subject,
		IssuedAt:  numericTime(c.IssuedAt),
		ExpiresAt: numericTime(c.ExpiresAt),
	}
}

// Expiry returns the exp claim, or the zero time if it is missing.
func (c *Claims) Expiry() time.Time {
	return numericTime(c.ExpiresAt)
}

func numericTime(d *jwt.NumericDate) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.UTC()
}

// NewJTI returns a URL-safe random identifier for the "jti" claim. Two
// tokens minted for the same user in the same second still differ.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// AudienceFor returns the audience value used for tokens of the given role.
func AudienceFor(issuer string, role Role) string {
	return issuer + ":" + string(role)
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}

	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}

	return ErrAudience
}

// ValidateRole checks the token_use claim.
func (c *Claims) ValidateRole(expected Role) error {
	if c.TokenUse != expected {
		return ErrWrongRole
	}
	return nil
}

// ValidateExpiryAt checks exp and nbf against the supplied clock reading.
func (c *Claims) ValidateExpiryAt(now time.Time, leeway time.Duration) error {
	now = now.UTC()

	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}

	// exp is exclusive: a token is dead at the instant it expires
	if !now.Before(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}
