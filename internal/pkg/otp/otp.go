// Package otp issues and verifies one-time passcodes.
//
// A code is keyed by (user, purpose). Issuing a new code replaces the
// previous one and a successful verification consumes it atomically.
// Expiry is enforced by the store's TTL, and a code is discarded after
// MaxAttempts wrong submissions.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Purpose separates codes issued for different flows
type Purpose string

const (
	PurposeVerifyEmail Purpose = "VERIFY_EMAIL"
	PurposeLogin       Purpose = "LOGIN"
)

// CodeLength is the number of digits in a code
const CodeLength = 6

// DefaultTTL is how long a code stays valid
const DefaultTTL = 10 * time.Minute

// MaxAttempts is the number of wrong submissions that discards a code
const MaxAttempts = 5

var (
	// ErrNoActiveCode is returned when no unexpired code exists for the key
	ErrNoActiveCode = errors.New("no active OTP found")
	// ErrMismatch is returned when the submitted code differs from the active one
	ErrMismatch = errors.New("invalid OTP")
	// ErrTooManyAttempts is returned by the submission that exhausts MaxAttempts
	ErrTooManyAttempts = errors.New("too many invalid OTP attempts")
)

// Store persists codes with a TTL
type Store interface {
	// Set replaces the code under key and resets its failure count
	Set(ctx context.Context, key, code string, ttl time.Duration) error
	// Get returns ok=false when the key is absent or expired
	Get(ctx context.Context, key string) (code string, ok bool, err error)
	// Take deletes key only if it still holds code, reporting whether it did
	Take(ctx context.Context, key, code string) (bool, error)
	// Fail records a wrong submission and returns the failure count
	Fail(ctx context.Context, key string) (int, error)
	// Delete removes key and its failure count
	Delete(ctx context.Context, key string) error
}

// Manager issues and verifies codes against a Store
type Manager struct {
	store Store
	ttl   time.Duration
}

// NewManager creates a Manager; a non-positive ttl falls back to DefaultTTL
func NewManager(store Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: store, ttl: ttl}
}

// TTL returns the lifetime of issued codes
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Key builds the store key for a user and purpose
func Key(userID int64, purpose Purpose) string {
	return fmt.Sprintf("otp:%s:%d", strings.ToLower(string(purpose)), userID)
}

// Issue generates a fresh code, replacing any active one
func (m *Manager) Issue(ctx context.Context, userID int64, purpose Purpose) (string, error) {
	code, err := Generate()
	if err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, Key(userID, purpose), code, m.ttl); err != nil {
		return "", fmt.Errorf("failed to store OTP: %w", err)
	}
	return code, nil
}

// Verify checks code and consumes it on success
func (m *Manager) Verify(ctx context.Context, userID int64, purpose Purpose, code string) error {
	key := Key(userID, purpose)
	active, ok, err := m.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read OTP: %w", err)
	}
	if !ok {
		return ErrNoActiveCode
	}
	if subtle.ConstantTimeCompare([]byte(active), []byte(strings.TrimSpace(code))) != 1 {
		failures, err := m.store.Fail(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to record OTP attempt: %w", err)
		}
		if failures >= MaxAttempts {
			if err := m.store.Delete(ctx, key); err != nil {
				return fmt.Errorf("failed to discard OTP: %w", err)
			}
			return ErrTooManyAttempts
		}
		return ErrMismatch
	}
	taken, err := m.store.Take(ctx, key, active)
	if err != nil {
		return fmt.Errorf("failed to consume OTP: %w", err)
	}
	if !taken {
		// consumed or replaced by a concurrent request
		return ErrNoActiveCode
	}
	return nil
}

// Generate returns a zero-padded random numeric code
func Generate() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}
