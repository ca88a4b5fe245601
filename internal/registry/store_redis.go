// internal/registry/store_redis.go
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces registry entries in a shared Redis instance.
const keyPrefix = "pontoon:hosts:"

// RedisStore keeps the host list in Redis so several registry replicas can
// share it; liveness rides on key TTLs.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis at addr and verifies the connection.
func NewRedisStore(addr string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Register(ctx context.Context, h Host) error {
	if err := h.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("failed to marshal host entry: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+h.key(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to SET host entry: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]Host, error) {
	var hosts []Host
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err == redis.Nil {
			// expired between scan and get
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to GET host entry %s: %w", iter.Val(), err)
		}
		var h Host
		if err := json.Unmarshal(data, &h); err != nil {
			return nil, fmt.Errorf("failed to unmarshal host entry %s: %w", iter.Val(), err)
		}
		hosts = append(hosts, h)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan host entries: %w", err)
	}
	return hosts, nil
}

// Close releases the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
