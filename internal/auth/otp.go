package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sitetrack/sitetrack/internal/shared"
)

const (
	otpLength = 6
	otpTTL    = 5 * time.Minute
)

// OTPStore keeps one-time login codes in Redis. Codes are single use:
// a successful verify deletes the key.
type OTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOTPStore constructs OTPStore with the default TTL.
func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client, ttl: otpTTL}
}

func otpKey(email string) string {
	return "otp:" + strings.ToLower(strings.TrimSpace(email))
}

// Issue generates a fresh numeric code for the email, replacing any
// outstanding one, and returns it with its expiry.
func (s *OTPStore) Issue(ctx context.Context, email string) (string, time.Time, error) {
	code, err := generateCode(otpLength)
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := time.Now().Add(s.ttl)
	if err := s.client.Set(ctx, otpKey(email), code, s.ttl).Err(); err != nil {
		return "", time.Time{}, fmt.Errorf("store otp: %w", err)
	}
	return code, expiresAt, nil
}

// Verify checks the code and consumes it on success.
func (s *OTPStore) Verify(ctx context.Context, email, code string) error {
	key := otpKey(email)
	stored, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return shared.ErrOTPExpired
	}
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}
	if stored != strings.TrimSpace(code) {
		return shared.ErrOTPMismatch
	}
	return s.client.Del(ctx, key).Err()
}

func generateCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
