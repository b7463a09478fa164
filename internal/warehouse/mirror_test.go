package warehouse

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestMirror(t *testing.T) *Mirror {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewMirror(client)
}

func TestMirrorSyncAndAvailable(t *testing.T) {
	mirror := newTestMirror(t)
	ctx := context.Background()

	_, ok, err := mirror.Available(ctx, 7)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, mirror.Sync(ctx, 7, 12.5))
	qty, ok, err := mirror.Available(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 12.5, qty)
}

func TestMirrorDecrementGuardsStock(t *testing.T) {
	mirror := newTestMirror(t)
	ctx := context.Background()

	require.ErrorIs(t, mirror.Decrement(ctx, 7, 1), ErrItemNotFound)

	require.NoError(t, mirror.Sync(ctx, 7, 10))
	require.NoError(t, mirror.Decrement(ctx, 7, 4))

	qty, _, err := mirror.Available(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 6.0, qty)

	require.ErrorIs(t, mirror.Decrement(ctx, 7, 6.5), ErrInsufficientStock)

	// Exactly draining the stock is allowed.
	require.NoError(t, mirror.Decrement(ctx, 7, 6))
	qty, _, err = mirror.Available(ctx, 7)
	require.NoError(t, err)
	require.Zero(t, qty)
}

func TestMirrorFractionalQuantities(t *testing.T) {
	mirror := newTestMirror(t)
	ctx := context.Background()

	require.NoError(t, mirror.Sync(ctx, 7, 2.25))
	require.NoError(t, mirror.Decrement(ctx, 7, 0.75))
	require.NoError(t, mirror.Increment(ctx, 7, 0.5))

	qty, _, err := mirror.Available(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 2.0, qty)
}
