package warehouse

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const mirrorKeyPrefix = "warehouse:stock:"

// Quantities are mirrored in Redis as fixed-point integers with two
// decimal places so DECRBY stays atomic for fractional units.
const mirrorScale = 100

var decrementScript = redis.NewScript(`
local key = KEYS[1]
local quantity = tonumber(ARGV[1])

local current = redis.call('GET', key)
if not current then
	return -1
end

current = tonumber(current)
if current >= quantity then
	redis.call('DECRBY', key, quantity)
	return 1
end

return 0
`)

// Mirror keeps a fast Redis copy of warehouse quantities for
// availability reads. PostgreSQL stays the source of truth; the mirror
// is refreshed from it and may lag after infra failures.
type Mirror struct {
	client *redis.Client
}

// NewMirror constructs a Mirror.
func NewMirror(client *redis.Client) *Mirror {
	return &Mirror{client: client}
}

// Sync overwrites the mirrored quantity for a product.
func (m *Mirror) Sync(ctx context.Context, productID int64, qty float64) error {
	return m.client.Set(ctx, m.key(productID), scaled(qty), 0).Err()
}

// Available reads the mirrored quantity. The second return is false
// when the product is not mirrored and the caller must fall back to the
// database.
func (m *Mirror) Available(ctx context.Context, productID int64) (float64, bool, error) {
	raw, err := m.client.Get(ctx, m.key(productID)).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, err
	}
	return float64(raw) / mirrorScale, true, nil
}

// Decrement atomically subtracts qty when enough mirrored stock exists.
// Returns ErrInsufficientStock on shortage and ErrItemNotFound when the
// product is not mirrored.
func (m *Mirror) Decrement(ctx context.Context, productID int64, qty float64) error {
	result, err := decrementScript.Run(ctx, m.client, []string{m.key(productID)}, scaled(qty)).Int()
	if err != nil {
		return err
	}
	switch result {
	case 1:
		return nil
	case 0:
		return ErrInsufficientStock
	default:
		return ErrItemNotFound
	}
}

// Increment atomically adds qty to the mirrored stock.
func (m *Mirror) Increment(ctx context.Context, productID int64, qty float64) error {
	return m.client.IncrBy(ctx, m.key(productID), scaled(qty)).Err()
}

func (m *Mirror) key(productID int64) string {
	return mirrorKeyPrefix + strconv.FormatInt(productID, 10)
}

func scaled(qty float64) int64 {
	return int64(qty*mirrorScale + 0.5)
}
