package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-blog-client/credentials"
	"github.com/jrsteele09/go-blog-client/internal/errors"
	"github.com/redis/go-redis/v9"
)

var _ credentials.Store = (*RedisStore)(nil)

// RedisStore shares one credential between processes through a redis key.
type RedisStore struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

// Option configures a RedisStore
type Option func(*RedisStore)

// WithTTL expires the stored credential after d. Zero keeps it until deleted.
func WithTTL(d time.Duration) Option {
	return func(s *RedisStore) {
		s.ttl = d
	}
}

func New(client redis.Cmdable, key string, opts ...Option) *RedisStore {
	if key == "" {
		key = credentials.Key
	}
	s := &RedisStore{client: client, key: key}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewClient opens a redis connection and verifies it with PING.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[redisstore NewClient] ping %s: %w", addr, err)
	}
	return client, nil
}

func (s *RedisStore) Load(ctx context.Context) (string, error) {
	value, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return "", errors.ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("[redisstore Load] get %s: %w", s.key, err)
	}
	return value, nil
}

func (s *RedisStore) Save(ctx context.Context, credential string) error {
	if credential == "" {
		return errors.Wrapf(errors.ErrInvalidCredential, "redisstore save")
	}
	if err := s.client.Set(ctx, s.key, credential, s.ttl).Err(); err != nil {
		return fmt.Errorf("[redisstore Save] set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("[redisstore Delete] del %s: %w", s.key, err)
	}
	return nil
}
