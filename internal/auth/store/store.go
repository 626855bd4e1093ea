package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/chirp/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement this.
// It exposes sub-repositories so a transaction can hand out the same repos
// bound to its own connection, and nobody can start a transaction inside one.
type Store interface {
	Users() Users
	Tweets() Tweets

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing if fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Users is the credential store: user records plus their single refresh
// token slot.
type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used by login. Matching is case-insensitive.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// FindUserByIdentifier matches either email or username, used for
	// duplicate checks on registration.
	FindUserByIdentifier(ctx context.Context, identifier string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when email or username is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// SetRefreshToken overwrites the refresh slot. A nil hash clears it,
	// which logs the user out everywhere. Last write wins.
	SetRefreshToken(ctx context.Context, userID string, hash *string, expiresAt *time.Time) error

	// ClearExpiredRefreshTokens nulls every slot whose expiry has passed
	// and reports how many were cleared.
	ClearExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)

	// DeleteUser removes the user; their tweets cascade.
	DeleteUser(ctx context.Context, userID string) error
}

type Tweets interface {
	// CreateTweet inserts a tweet (id is ULID).
	CreateTweet(ctx context.Context, t domain.Tweet) error

	// GetTweetByID returns a tweet by id.
	GetTweetByID(ctx context.Context, id string) (domain.Tweet, error)

	// ListTweetsByAuthor returns the newest tweets first.
	ListTweetsByAuthor(ctx context.Context, authorID string, limit int) ([]domain.Tweet, error)
}
