package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"rental-quote-service/internal/domain"
	"rental-quote-service/internal/logx"
	"rental-quote-service/internal/platform/obs"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "quote:location:"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisLocationStore keeps location cache entries in Redis with a native
// TTL matching each entry's expiry.
type RedisLocationStore struct {
	client *redis.Client
	logger logx.Logger
	now    func() time.Time
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func NewRedisLocationStore(client *redis.Client, logger logx.Logger) *RedisLocationStore {
	if logger == nil {
		logger = logx.Nop()
	}
	return &RedisLocationStore{client: client, logger: logger, now: time.Now}
}

func (s *RedisLocationStore) Get(ctx context.Context, fingerprint string) (_ *domain.CacheEntry, err error) {
	defer obs.Time(ctx, s.logger, "location.redis.Get")(&err)

	raw, err := s.client.Get(ctx, redisKeyPrefix+fingerprint).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", fingerprint, err)
	}

	var r entryRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode cache entry %s: %w", fingerprint, err)
	}
	e := r.entry()
	if !e.Fresh(s.now()) {
		return nil, nil
	}
	return e, nil
}

func (s *RedisLocationStore) Put(ctx context.Context, e *domain.CacheEntry) error {
	ttl := e.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	b, err := json.Marshal(toRecord(e))
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", e.Fingerprint, err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+e.Fingerprint, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", e.Fingerprint, err)
	}
	return nil
}

// Delete scans the key space and removes entries matching pattern. Patterns
// that are fingerprints are matched on the key alone; address patterns
// require reading each entry.
func (s *RedisLocationStore) Delete(ctx context.Context, pattern string) (int, error) {
	p := domain.CompilePattern(pattern)

	match := redisKeyPrefix + "*"
	byKey := p.All() || strings.HasPrefix(strings.TrimSpace(pattern), "loc:")
	if byKey && !p.All() {
		match = redisKeyPrefix + strings.ToLower(strings.TrimSpace(pattern))
	}

	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, 200).Result()
		if err != nil {
			return deleted, fmt.Errorf("redis scan %q: %w", match, err)
		}

		victims := keys
		if !byKey {
			victims = victims[:0:0]
			for _, k := range keys {
				ok, err := s.matchesAddress(ctx, k, p)
				if err != nil {
					return deleted, err
				}
				if ok {
					victims = append(victims, k)
				}
			}
		}

		if len(victims) > 0 {
			n, err := s.client.Del(ctx, victims...).Result()
			if err != nil {
				return deleted, fmt.Errorf("redis del: %w", err)
			}
			deleted += int(n)
		}

		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func (s *RedisLocationStore) matchesAddress(ctx context.Context, key string, p domain.CachePattern) (bool, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var r entryRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		s.logger.Warn("undecodable cache entry, deleting", logx.String("key", key), logx.Err(err))
		return true, nil
	}
	return p.Matches(r.Fingerprint, r.Normalized), nil
}
