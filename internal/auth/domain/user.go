package domain

import "time"

// User is the stored account record.
type User struct {
	ID              string
	Email           string
	Username        string
	Name            string
	PasswordHash    string // bcrypt over a peppered HMAC
	ProfileImageURL string
	DateOfBirth     time.Time

	// RefreshTokenHash is the fingerprint of the single live refresh token,
	// nil when the user is logged out everywhere.
	RefreshTokenHash      *string
	RefreshTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasRefreshToken reports whether a refresh slot is set and unexpired at now.
func (u User) HasRefreshToken(now time.Time) bool {
	if u.RefreshTokenHash == nil || *u.RefreshTokenHash == "" {
		return false
	}
	return u.RefreshTokenExpiresAt == nil || now.Before(*u.RefreshTokenExpiresAt)
}

// Profile is the public view of a user: no password or refresh fields.
type Profile struct {
	ID              string
	Username        string
	Name            string
	Email           string
	ProfileImageURL string
	DateOfBirth     time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Profile strips the credential fields from u.
func (u User) Profile() Profile {
	return Profile{
		ID:              u.ID,
		Username:        u.Username,
		Name:            u.Name,
		Email:           u.Email,
		ProfileImageURL: u.ProfileImageURL,
		DateOfBirth:     u.DateOfBirth,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
