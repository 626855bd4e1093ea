package jwtx

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT of the given role and gives you back the claims
// if it's legit.
type Verifier interface {
	Verify(token string, role Role) (Claims, error)
}

// CodecOptions configures a Codec.
type CodecOptions struct {
	// Issuer stamped into iss and used to derive per-role audiences.
	Issuer string

	// AccessSecret signs access tokens, RefreshSecret signs refresh tokens.
	// Both are required and must differ.
	AccessSecret  []byte
	RefreshSecret []byte

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Leeway allows small clock skew when validating exp/nbf.
	Leeway time.Duration

	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

// Codec issues and verifies HS256 tokens with a secret per role.
type Codec struct {
	issuer  string
	secrets map[Role][]byte
	ttls    map[Role]time.Duration
	leeway  time.Duration
	now     func() time.Time
	parser  *jwt.Parser
}

var _ Verifier = (*Codec)(nil)

// NewCodec validates the options and builds a Codec. A missing secret is a
// configuration error the caller should treat as fatal.
func NewCodec(opts CodecOptions) (*Codec, error) {
	if len(opts.AccessSecret) == 0 {
		return nil, fmt.Errorf("%w: access", ErrMissingSecret)
	}
	if len(opts.RefreshSecret) == 0 {
		return nil, fmt.Errorf("%w: refresh", ErrMissingSecret)
	}
	if string(opts.AccessSecret) == string(opts.RefreshSecret) {
		return nil, errors.New("jwtx: access and refresh secrets must differ")
	}

	if opts.Issuer == "" {
		return nil, errors.New("jwtx: issuer is required")
	}
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = DefaultAccessTokenTTL
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = DefaultRefreshTokenTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Codec{
		issuer: opts.Issuer,
		secrets: map[Role][]byte{
			RoleAccess:  opts.AccessSecret,
			RoleRefresh: opts.RefreshSecret,
		},
		ttls: map[Role]time.Duration{
			RoleAccess:  opts.AccessTTL,
			RoleRefresh: opts.RefreshTTL,
		},
		leeway: opts.Leeway,
		now:    opts.Now,
		// exp/nbf are checked by ValidateExpiryAt against our own clock
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Issuer returns the configured issuer.
func (c *Codec) Issuer() string { return c.issuer }

// TTL returns the configured lifetime for tokens of the given role.
func (c *Codec) TTL(role Role) time.Duration { return c.ttls[role] }

// Issue signs claims for the given role. Issuer, audience and token_use are
// always overwritten; a missing jti, iat or exp is filled in.
func (c *Codec) Issue(claims Claims, role Role) (string, error) {
	secret, ok := c.secrets[role]
	if !ok {
		return "", ErrUnknownRole
	}

	now := c.now().UTC()

	claims.Issuer = c.issuer
	claims.Audience = jwt.ClaimStrings{AudienceFor(c.issuer, role)}
	claims.TokenUse = role
	if claims.ID == "" {
		claims.ID = NewJTI()
	}
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(claims.IssuedAt.Add(c.ttls[role]))
	}
	if role == RoleRefresh {
		claims.Email, claims.Username = "", ""
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign %s token: %w", role, err)
	}
	return signed, nil
}

// IssueAccess mints an access token. Zero timing fields default to now and
// now plus the access TTL.
func (c *Codec) IssueAccess(ac AccessClaim) (string, Claims, error) {
	claims := c.newClaims(ac.UserID, ac.IssuedAt, ac.ExpiresAt, RoleAccess)
	claims.Email = ac.Email
	claims.Username = ac.Username

	token, err := c.Issue(claims, RoleAccess)
	if err != nil {
		return "", Claims{}, err
	}
	return token, claims, nil
}

// IssueRefresh mints a refresh token. Zero timing fields default to now and
// now plus the refresh TTL.
func (c *Codec) IssueRefresh(rc RefreshClaim) (string, Claims, error) {
	claims := c.newClaims(rc.UserID, rc.IssuedAt, rc.ExpiresAt, RoleRefresh)

	token, err := c.Issue(claims, RoleRefresh)
	if err != nil {
		return "", Claims{}, err
	}
	return token, claims, nil
}

func (c *Codec) newClaims(subject string, iat, exp time.Time, role Role) Claims {
	if iat.IsZero() {
		iat = c.now()
	}
	iat = iat.UTC().Truncate(jwt.TimePrecision)
	if exp.IsZero() {
		exp = iat.Add(c.ttls[role])
	}
	exp = exp.UTC().Truncate(jwt.TimePrecision)

	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{AudienceFor(c.issuer, role)},
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        NewJTI(),
		},
		TokenUse: role,
	}
}

// Verify checks signature, issuer, audience, role and expiry. Every failure
// wraps one of the package sentinels so Classify can bucket it.
func (c *Codec) Verify(tokenStr string, role Role) (Claims, error) {
	secret, ok := c.secrets[role]
	if !ok {
		return Claims{}, ErrUnknownRole
	}

	token, err := c.parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		// Reject the other role before trying its secret so the error is useful
		if cl, ok := t.Claims.(*Claims); ok && cl.TokenUse != role {
			return nil, ErrWrongRole
		}
		return secret, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidClaim
	}

	// Now check all the claim requirements
	if err := claims.ValidateIssuer(c.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience([]string{AudienceFor(c.issuer, role)}); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateRole(role); err != nil {
		return Claims{}, err
	}
	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing sub", ErrInvalidClaim)
	}
	if err := claims.ValidateExpiryAt(c.now(), c.leeway); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, ErrWrongRole):
		return ErrWrongRole
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		if strings.Contains(err.Error(), "signing method") {
			return fmt.Errorf("%w: %w", ErrAlgMismatch, ErrMalformed)
		}
		return fmt.Errorf("%w: %w", ErrInvalidSig, ErrMalformed)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

// DecodeUnsafe extracts the payload without checking the signature. It is
// only good for "is this probably expired" checks on the client and must
// never feed an authorization decision.
func (c *Codec) DecodeUnsafe(tokenStr string) (*Claims, bool) {
	return DecodeUnsafe(tokenStr)
}

// DecodeUnsafe is the package-level form of Codec.DecodeUnsafe, usable
// without any secrets.
func DecodeUnsafe(tokenStr string) (*Claims, bool) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, false
	}
	return claims, true
}

const bearerPrefix = "Bearer "

// ExtractFromHeader accepts only the exact "Bearer <token>" shape.
func ExtractFromHeader(value string) (string, bool) {
	token, ok := strings.CutPrefix(value, bearerPrefix)
	if !ok || token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
