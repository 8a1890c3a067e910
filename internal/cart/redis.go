package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const maxUpdateRetries = 5

// Store persists cart lines.
type Store interface {
	Load(ctx context.Context, cartID string) ([]Line, error)
	Update(ctx context.Context, cartID string, fn func([]Line) ([]Line, error)) ([]Line, error)
	Clear(ctx context.Context, cartID string) error
}

// RedisStore keeps each cart in a hash of line id -> JSON line. The key
// expires ttl after the last write.
type RedisStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(rdb redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func itemsKey(cartID string) string {
	return fmt.Sprintf("cart:%s:items", cartID)
}

// Load returns the lines of a cart in insertion order. A missing cart is an
// empty cart.
func (s *RedisStore) Load(ctx context.Context, cartID string) ([]Line, error) {
	return readLines(ctx, s.rdb, itemsKey(cartID))
}

type hashReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

func readLines(ctx context.Context, c hashReader, key string) ([]Line, error) {
	raw, err := c.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	lines := make([]Line, 0, len(raw))
	for id, v := range raw {
		var l Line
		if err := json.Unmarshal([]byte(v), &l); err != nil {
			return nil, fmt.Errorf("decode cart line %s: %w", id, err)
		}
		lines = append(lines, l)
	}
	sortLines(lines)
	return lines, nil
}

// Update applies fn to the current lines and writes the result back. The
// read-modify-write runs under WATCH and is retried when another writer
// touched the cart in between.
func (s *RedisStore) Update(ctx context.Context, cartID string, fn func([]Line) ([]Line, error)) ([]Line, error) {
	key := itemsKey(cartID)
	var out []Line

	txf := func(tx *redis.Tx) error {
		lines, err := readLines(ctx, tx, key)
		if err != nil {
			return err
		}
		next, err := fn(lines)
		if err != nil {
			return err
		}

		fields := make([]any, 0, 2*len(next))
		for _, l := range next {
			data, err := json.Marshal(l)
			if err != nil {
				return fmt.Errorf("encode cart line %s: %w", l.ID, err)
			}
			fields = append(fields, l.ID, data)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			if len(fields) > 0 {
				pipe.HSet(ctx, key, fields...)
				pipe.Expire(ctx, key, s.ttl)
			}
			return nil
		})
		out = next
		return err
	}

	for range maxUpdateRetries {
		err := s.rdb.Watch(ctx, txf, key)
		if err == nil {
			sortLines(out)
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrConflict
}

// Clear deletes the cart.
func (s *RedisStore) Clear(ctx context.Context, cartID string) error {
	if err := s.rdb.Del(ctx, itemsKey(cartID)).Err(); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
