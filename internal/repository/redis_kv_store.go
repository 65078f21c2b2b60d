package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "tourism:session:"

type redisKVClient interface {
	MSet(ctx context.Context, values ...interface{}) *redis.StatusCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisKeyValueStore struct {
	client  redisKVClient
	prefix  string
	timeout time.Duration
}

// NewRedisKeyValueStore usa MSET para que el par token/usuario se escriba en
// un solo comando atomico.
func NewRedisKeyValueStore(client *redis.Client, prefix string) KeyValueStore {
	if client == nil {
		return nil
	}
	return newRedisKeyValueStore(client, prefix)
}

func newRedisKeyValueStore(client redisKVClient, prefix string) *redisKeyValueStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &redisKeyValueStore{
		client:  client,
		prefix:  prefix,
		timeout: 500 * time.Millisecond,
	}
}

func (s *redisKeyValueStore) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	vals, err := s.client.MGet(ctx, s.prefixed(keys)...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	for i, v := range vals {
		if i >= len(keys) || v == nil {
			continue
		}
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("redis mget: unexpected value type %T for %q", v, keys[i])
		}
		out[keys[i]] = str
	}
	return out, nil
}

func (s *redisKeyValueStore) SetAll(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	pairs := make([]interface{}, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, s.prefix+k, v)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.MSet(ctx, pairs...).Err(); err != nil {
		return fmt.Errorf("redis mset: %w", err)
	}
	return nil
}

func (s *redisKeyValueStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Del(ctx, s.prefixed(keys)...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *redisKeyValueStore) prefixed(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = s.prefix + k
	}
	return out
}
