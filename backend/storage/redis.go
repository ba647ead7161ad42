package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "coursetrack:"
	maxUpdateRetries = 100
)

// Redis keeps entries as plain string keys under the coursetrack: prefix.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(opts *redis.Options) *Redis {
	return &Redis{rdb: redis.NewClient(opts)}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, redisKeyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// Update runs fn under WATCH and retries when another writer touched the key first.
func (r *Redis) Update(ctx context.Context, key string, fn UpdateFunc) error {
	fullKey := redisKeyPrefix + key
	var fnErr error

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, fullKey).Result()
		ok := true
		if errors.Is(err, redis.Nil) {
			ok = false
		} else if err != nil {
			return err
		}

		next, err := fn(current, ok)
		if err != nil {
			fnErr = err
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, fullKey, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.rdb.Watch(ctx, txf, fullKey)
		if fnErr != nil {
			return fnErr
		}
		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return fmt.Errorf("%w: %v", ErrWriteFailed, err)
		}
	}
	return fmt.Errorf("%w: too many concurrent updates on %s", ErrWriteFailed, key)
}
