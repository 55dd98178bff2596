package repositories

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

const stockKeyPrefix = "storefront:stock:"

type stockCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	IncrBy(ctx context.Context, key string, value int64) *redis.IntCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStockRepository keeps the stock side-table in Redis, one integer key
// per product.
type RedisStockRepository struct {
	store stockCmdable
}

// NewRedisStockRepository wraps an existing client.
func NewRedisStockRepository(client *redis.Client) *RedisStockRepository {
	return &RedisStockRepository{store: client}
}

func stockKey(productID int) string {
	return fmt.Sprintf("%s%d", stockKeyPrefix, productID)
}

func (r *RedisStockRepository) Get(ctx context.Context, productID int) (int, bool, error) {
	raw, err := r.store.Get(ctx, stockKey(productID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrapf(err, "get stock for product %d", productID)
	}
	remaining, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, errors.Wrapf(err, "parse stock for product %d", productID)
	}
	return remaining, true, nil
}

func (r *RedisStockRepository) Set(ctx context.Context, productID, remaining int) error {
	if err := r.store.Set(ctx, stockKey(productID), remaining, 0).Err(); err != nil {
		return errors.Wrapf(err, "set stock for product %d", productID)
	}
	return nil
}

// Adjust increments a tracked key. The existence check and the increment are
// two commands; a key created in between is still adjusted correctly.
func (r *RedisStockRepository) Adjust(ctx context.Context, productID, delta int) (int, error) {
	key := stockKey(productID)
	n, err := r.store.Exists(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrapf(err, "check stock for product %d", productID)
	}
	if n == 0 {
		return 0, errors.Wrapf(ErrStockNotTracked, "product %d", productID)
	}
	remaining, err := r.store.IncrBy(ctx, key, int64(delta)).Result()
	if err != nil {
		return 0, errors.Wrapf(err, "adjust stock for product %d", productID)
	}
	return int(remaining), nil
}
