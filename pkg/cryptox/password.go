package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Cost bounds for bcrypt hashing.
const (
	MinPasswordCost     = 10
	DefaultPasswordCost = 12
)

// ErrPasswordMismatch is returned by VerifyPassword for a wrong password.
var ErrPasswordMismatch = errors.New("password does not match")

// HashPassword hashes a password with bcrypt. The password is first run
// through HMAC-SHA256 keyed by the pepper so long inputs are not silently
// truncated at bcrypt's 72 byte limit.
func HashPassword(password string, cost int) (string, error) {
	if cost < MinPasswordCost {
		return "", fmt.Errorf("bcrypt cost %d below minimum %d", cost, MinPasswordCost)
	}

	hash, err := bcrypt.GenerateFromPassword(prehash(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a stored hash.
func VerifyPassword(password, encodedHash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), prehash(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("invalid hash format: %w", err)
	}
}

var (
	dummyMu     sync.Mutex
	dummyHashes = map[int]string{}
)

// DummyHash returns a valid hash of a random password at cost, computed
// once per cost. Comparing against it costs the same as verifying a real
// hash made at that cost, which keeps the unknown-user path of a login
// indistinguishable by timing.
func DummyHash(cost int) string {
	dummyMu.Lock()
	defer dummyMu.Unlock()

	if h, ok := dummyHashes[cost]; ok {
		return h
	}
	h, err := HashPassword(MustGenerateToken(TokenSize128), cost)
	if err != nil {
		panic(fmt.Sprintf("cryptox: dummy hash: %v", err))
	}
	dummyHashes[cost] = h
	return h
}

func prehash(password string) []byte {
	mac := hmac.New(sha256.New, []byte(GetPepper()))
	mac.Write([]byte(password))
	out := make([]byte, base64.RawStdEncoding.EncodedLen(sha256.Size))
	base64.RawStdEncoding.Encode(out, mac.Sum(nil))
	return out
}
