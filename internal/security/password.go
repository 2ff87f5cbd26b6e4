// Package security holds password hashing and key generation primitives.
package security

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when no valid override is configured.
const DefaultCost = 10

// maxPasswordBytes is bcrypt's input limit; longer inputs are silently truncated by Compare.
const maxPasswordBytes = 72

var (
	// ErrMalformedHash signals a stored hash that bcrypt cannot parse.
	ErrMalformedHash = errors.New("malformed password hash")
	// ErrPasswordTooLong is returned for passwords beyond bcrypt's 72 byte input limit.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// PasswordHasher turns clear-text passwords into salted one-way hashes and checks them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// BcryptHasher implements PasswordHasher with a cost fixed at construction.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher. Costs outside bcrypt's range fall back to DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost returns the work factor new hashes are generated with.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash generates a bcrypt hash with a fresh random salt.
func (h *BcryptHasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(out), nil
}

// Verify checks password against hash. A mismatch is (false, nil); only a hash
// bcrypt cannot parse produces an error. Passwords over 72 bytes never match,
// since Hash refuses to store them.
func (h *BcryptHasher) Verify(password, hash string) (bool, error) {
	if len(password) > maxPasswordBytes {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}

// ResolveCost interprets a deployment-level cost override. An empty value means
// no override. Non-numeric or out-of-range values are logged and ignored.
func ResolveCost(raw string, logger *slog.Logger) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}

	cost, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("Ignoring non-numeric bcrypt work factor",
			slog.String("value", raw),
			slog.Int("default", DefaultCost),
		)
		return DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		logger.Warn("Ignoring out-of-range bcrypt work factor",
			slog.Int("value", cost),
			slog.Int("min", bcrypt.MinCost),
			slog.Int("max", bcrypt.MaxCost),
			slog.Int("default", DefaultCost),
		)
		return DefaultCost
	}
	return cost
}
