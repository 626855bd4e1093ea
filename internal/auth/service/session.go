package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/chirp/internal/auth/domain"
	"github.com/aussiebroadwan/chirp/internal/auth/store"
	"github.com/aussiebroadwan/chirp/pkg/cryptox"
	"github.com/aussiebroadwan/chirp/pkg/idx"
	"github.com/aussiebroadwan/chirp/pkg/jwtx"
	"github.com/aussiebroadwan/chirp/pkg/slogx"
	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrConflict            = errors.New("conflict")
	ErrNoToken             = errors.New("no_token")
	ErrTokenExpired        = errors.New("token_expired")
	ErrTokenInvalid        = errors.New("token_invalid")
	ErrUserNotFound        = errors.New("user_not_found")
	ErrUpstreamUnavailable = errors.New("upstream_unavailable")

	// ErrRefreshReused is returned when a refresh token verifies but is no
	// longer the one stored for the user. It is a token_invalid failure.
	ErrRefreshReused = fmt.Errorf("%w: refresh token superseded", ErrTokenInvalid)
)

// ConflictError names the field that collided on registration.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return "user already exists"
	}
	return "user with this " + e.Field + " already exists"
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// LoginInput is the body of POST /api/auth/login.
type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=128"`
}

// RegisterInput is the body of POST /api/auth/register.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=20,username"`
	Name     string `json:"name"     validate:"required,min=1,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128,strongpwd"`
	DOB      string `json:"dob"      validate:"required,dob,minage=13"`
}

// Session is the outcome of a login, registration or refresh. The refresh
// token is for the cookie only and must not be written to a response body.
type Session struct {
	User             domain.Profile
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// LogoutResult describes a completed logout.
type LogoutResult struct {
	Message    string
	AllDevices bool
}

// SessionService implements login, registration, refresh and logout on top
// of the credential store and the token codec.
type SessionService struct {
	Store        store.Store
	Codec        *jwtx.Codec
	PasswordCost int
	Validator    *validator.Validate
	Now          func() time.Time

	validatorOnce sync.Once
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *SessionService) validate(in any) error {
	s.validatorOnce.Do(func() {
		if s.Validator == nil {
			s.Validator = NewValidator(s.now)
		}
	})
	return validateStruct(s.Validator, in)
}

func (s *SessionService) passwordCost() int {
	if s.PasswordCost < cryptox.MinPasswordCost {
		return cryptox.DefaultPasswordCost
	}
	return s.PasswordCost
}

// Login authenticates by email and password. An unknown email and a wrong
// password both yield ErrInvalidCredentials after one bcrypt comparison.
func (s *SessionService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	l := slogx.FromContext(ctx)

	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate(in); err != nil {
		return nil, err
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = cryptox.VerifyPassword(in.Password, cryptox.DummyHash(s.passwordCost()))
			l.Info("login failed", slog.String("reason", "unknown_email"))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(in.Password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Info("login failed", slog.String("reason", "bad_password"), slog.String("user_id", user.ID))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	sess, err := s.startSession(ctx, s.Store.Users(), user)
	if err != nil {
		return nil, err
	}

	l.Info("user logged in", slog.String("user_id", user.ID))
	return sess, nil
}

// Register creates a user and logs them straight in.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	l := slogx.FromContext(ctx)

	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate(in); err != nil {
		return nil, err
	}

	dob, err := ParseDateOfBirth(in.DOB)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"dob": err.Error()}}
	}

	if _, err := s.Store.Users().GetUserByEmail(ctx, in.Email); err == nil {
		return nil, &ConflictError{Field: "email"}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if _, err := s.Store.Users().FindUserByIdentifier(ctx, in.Username); err == nil {
		return nil, &ConflictError{Field: "username"}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := cryptox.HashPassword(in.Password, s.passwordCost())
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           idx.NewAt(now).String(),
		Email:        in.Email,
		Username:     in.Username,
		Name:         in.Name,
		PasswordHash: hash,
		DateOfBirth:  dob,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var sess *Session
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return &ConflictError{}
			}
			return err
		}

		var err error
		sess, err = s.startSession(ctx, tx.Users(), user)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.Info("user registered", slog.String("user_id", user.ID))
	return sess, nil
}

// Refresh rotates the session behind refreshToken. The presented token must
// be the one currently stored for the user, so each token works once.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	l := slogx.FromContext(ctx)

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, ErrNoToken
	}

	claims, err := s.Codec.Verify(refreshToken, jwtx.RoleRefresh)
	if err != nil {
		return nil, s.tokenError(ctx, "refresh", err)
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !user.HasRefreshToken(s.now()) || !cryptox.TokenMatchesFingerprint(refreshToken, *user.RefreshTokenHash) {
		l.Warn("refresh token does not match stored slot", slog.String("user_id", user.ID))
		return nil, ErrRefreshReused
	}

	return s.startSession(ctx, s.Store.Users(), user)
}

// Logout clears the caller's refresh slot. The slot is single, so this ends
// the session on every device; allDevices only changes the reported message.
func (s *SessionService) Logout(ctx context.Context, accessToken string, allDevices bool) (LogoutResult, error) {
	l := slogx.FromContext(ctx)

	if accessToken == "" {
		return LogoutResult{}, ErrNoToken
	}

	claims, err := s.Codec.Verify(accessToken, jwtx.RoleAccess)
	if err != nil {
		return LogoutResult{}, s.tokenError(ctx, "access", err)
	}

	if err := s.Store.Users().SetRefreshToken(ctx, claims.Subject, nil, nil); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LogoutResult{}, ErrUserNotFound
		}
		return LogoutResult{}, err
	}

	res := LogoutResult{Message: "Successfully logged out", AllDevices: allDevices}
	if allDevices {
		res.Message = "Successfully logged out from all devices"
	}

	l.Info("user logged out", slog.String("user_id", claims.Subject), slog.Bool("all_devices", allDevices))
	return res, nil
}

// CurrentUser returns the profile for userID.
func (s *SessionService) CurrentUser(ctx context.Context, userID string) (domain.Profile, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrUserNotFound
		}
		return domain.Profile{}, err
	}
	return user.Profile(), nil
}

// startSession mints a token pair for user and stores the refresh
// fingerprint through users, replacing whatever was there.
func (s *SessionService) startSession(ctx context.Context, users store.Users, user domain.User) (*Session, error) {
	now := s.now()

	access, accessClaims, err := s.Codec.IssueAccess(jwtx.AccessClaim{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		IssuedAt: now,
	})
	if err != nil {
		return nil, err
	}

	refresh, refreshClaims, err := s.Codec.IssueRefresh(jwtx.RefreshClaim{
		UserID:   user.ID,
		IssuedAt: now,
	})
	if err != nil {
		return nil, err
	}

	fp := cryptox.FingerprintToken(refresh)
	refreshExp := refreshClaims.Expiry()
	if err := users.SetRefreshToken(ctx, user.ID, &fp, &refreshExp); err != nil {
		return nil, err
	}

	return &Session{
		User:             user.Profile(),
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessClaims.Expiry(),
		RefreshExpiresAt: refreshExp,
	}, nil
}

// tokenError converts a verification failure into ErrTokenExpired or
// ErrTokenInvalid so library errors never reach the caller.
func (s *SessionService) tokenError(ctx context.Context, kind string, err error) error {
	if jwtx.Classify(err) == jwtx.FailureExpired {
		return ErrTokenExpired
	}
	slogx.FromContext(ctx).Warn("jwt verify failed", slog.String("token", kind), slog.Any("err", err))
	return ErrTokenInvalid
}
