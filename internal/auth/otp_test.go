package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/sitetrack/sitetrack/internal/shared"
)

func newTestOTPStore(t *testing.T) (*OTPStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewOTPStore(client), mr
}

func TestOTPStoreIssueAndVerify(t *testing.T) {
	store, _ := newTestOTPStore(t)
	ctx := context.Background()

	code, expiresAt, err := store.Issue(ctx, "Maria@Example.com")
	require.NoError(t, err)
	require.Len(t, code, 6)
	require.WithinDuration(t, time.Now().Add(otpTTL), expiresAt, time.Second)

	// Lookup is case-insensitive on the email.
	require.NoError(t, store.Verify(ctx, "maria@example.com", code))

	// Consumed on success.
	require.ErrorIs(t, store.Verify(ctx, "maria@example.com", code), shared.ErrOTPExpired)
}

func TestOTPStoreWrongCode(t *testing.T) {
	store, _ := newTestOTPStore(t)
	ctx := context.Background()

	code, _, err := store.Issue(ctx, "maria@example.com")
	require.NoError(t, err)

	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}
	require.ErrorIs(t, store.Verify(ctx, "maria@example.com", wrong), shared.ErrOTPMismatch)

	// A wrong attempt does not consume the code.
	require.NoError(t, store.Verify(ctx, "maria@example.com", code))
}

func TestOTPStoreExpiry(t *testing.T) {
	store, mr := newTestOTPStore(t)
	ctx := context.Background()

	code, _, err := store.Issue(ctx, "maria@example.com")
	require.NoError(t, err)

	mr.FastForward(otpTTL + time.Second)
	require.ErrorIs(t, store.Verify(ctx, "maria@example.com", code), shared.ErrOTPExpired)
}

func TestOTPStoreReissueReplaces(t *testing.T) {
	store, _ := newTestOTPStore(t)
	ctx := context.Background()

	first, _, err := store.Issue(ctx, "maria@example.com")
	require.NoError(t, err)
	second, _, err := store.Issue(ctx, "maria@example.com")
	require.NoError(t, err)

	if first != second {
		require.ErrorIs(t, store.Verify(ctx, "maria@example.com", first), shared.ErrOTPMismatch)
	}
	require.NoError(t, store.Verify(ctx, "maria@example.com", second))
}
