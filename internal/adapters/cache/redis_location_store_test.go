package cache

import (
	"context"
	"testing"
	"time"

	"rental-quote-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisLocationStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocationStore(client, nil), mr
}

func sampleEntry(addr string, ttl time.Duration) *domain.CacheEntry {
	loc := domain.NewDeliveryLocation(addr)
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.CacheEntry{
		Fingerprint: loc.Fingerprint,
		Location:    loc,
		Result: domain.DistanceResult{
			Branch:          domain.Branch{ID: "b-1", Name: "Reno Yard", Address: "500 Yard Rd"},
			DistanceMeters:  48119,
			DurationSeconds: 2100,
			ComputedAt:      now,
		},
		StoredAt:   now,
		ExpiresAt:  now.Add(ttl),
		Generation: 3,
	}
}

func TestRedisLocationStore_PutGet(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()
	e := sampleEntry("123 Main St, Reno", time.Hour)

	require.NoError(t, s.Put(ctx, e))
	require.True(t, mr.Exists(redisKeyPrefix+e.Fingerprint))
	require.Greater(t, mr.TTL(redisKeyPrefix+e.Fingerprint), 59*time.Minute)

	got, err := s.Get(ctx, e.Fingerprint)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, e.Result.Branch, got.Result.Branch)
	require.Equal(t, e.Result.DistanceMeters, got.Result.DistanceMeters)
	require.Equal(t, e.Location, got.Location)
	require.Equal(t, uint64(3), got.Generation)
	require.True(t, e.ExpiresAt.Equal(got.ExpiresAt))
}

func TestRedisLocationStore_MissAndExpiry(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	got, err := s.Get(ctx, "loc:missing")
	require.NoError(t, err)
	require.Nil(t, got)

	e := sampleEntry("9 Elm St", time.Minute)
	require.NoError(t, s.Put(ctx, e))
	mr.FastForward(2 * time.Minute)

	got, err = s.Get(ctx, e.Fingerprint)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedisLocationStore_SkipsExpiredPut(t *testing.T) {
	s, mr := newRedisStore(t)
	e := sampleEntry("9 Elm St", -time.Minute)
	require.NoError(t, s.Put(context.Background(), e))
	require.False(t, mr.Exists(redisKeyPrefix+e.Fingerprint))
}

func TestRedisLocationStore_Delete(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	reno := sampleEntry("123 Main St, Reno", time.Hour)
	sparks := sampleEntry("7 Oak Ave, Sparks", time.Hour)
	carson := sampleEntry("1 Pine Rd, Carson City", time.Hour)
	for _, e := range []*domain.CacheEntry{reno, sparks, carson} {
		require.NoError(t, s.Put(ctx, e))
	}
	require.NoError(t, mr.Set("unrelated", "x"))

	n, err := s.Delete(ctx, "*sparks*")
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.False(t, mr.Exists(redisKeyPrefix+sparks.Fingerprint))

	n, err = s.Delete(ctx, reno.Fingerprint)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = s.Delete(ctx, "*")
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.True(t, mr.Exists("unrelated"))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisClient(context.Background(), RedisConfig{Addr: addr})
	require.Error(t, err)
}
