// Package cart reads the buyer's cart snapshot. The storefront owns the cart
// and keeps the latest snapshot in redis; the order workflow only reads and
// clears it.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dominusaudio/commerce-api/internal/domains/orders/ports"
)

const keyPrefix = "cart:"

// RedisProvider implements ports.CartProvider against the storefront's
// redis instance.
type RedisProvider struct {
	client *redis.Client
}

func NewRedisProvider(client *redis.Client) *RedisProvider {
	return &RedisProvider{client: client}
}

var _ ports.CartProvider = (*RedisProvider)(nil)

func (p *RedisProvider) Snapshot(ctx context.Context, userID string) (*ports.CartSnapshot, error) {
	raw, err := p.client.Get(ctx, keyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// no key means an empty cart, not a failure
			return &ports.CartSnapshot{}, nil
		}
		return nil, fmt.Errorf("reading cart snapshot: %w", err)
	}
	var snapshot ports.CartSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("decoding cart snapshot: %w", err)
	}
	return &snapshot, nil
}

func (p *RedisProvider) Clear(ctx context.Context, userID string) error {
	if err := p.client.Del(ctx, keyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}
