package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDistanceResult_HundredthMiles(t *testing.T) {
	require.Equal(t, int64(2990), DistanceResult{DistanceMeters: 48119}.HundredthMiles())
	require.Equal(t, int64(2500), DistanceResult{DistanceMeters: 40234}.HundredthMiles())
	require.Equal(t, int64(0), DistanceResult{}.HundredthMiles())
	require.InDelta(t, 1.0, DistanceResult{DistanceMeters: 1609}.Miles(), 0.001)
}

func TestCacheEntry_Fresh(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := &CacheEntry{StoredAt: t0, ExpiresAt: t0.Add(time.Hour)}

	require.True(t, e.Fresh(t0))
	require.True(t, e.Fresh(t0.Add(time.Hour-time.Nanosecond)))
	require.False(t, e.Fresh(t0.Add(time.Hour)))

	var missing *CacheEntry
	require.False(t, missing.Fresh(t0))
}

func TestGreatCircleMeters(t *testing.T) {
	reno := Coordinates{Lon: -119.8138, Lat: 39.5296}
	sparks := Coordinates{Lon: -119.7527, Lat: 39.5349}
	d := reno.GreatCircleMeters(sparks)
	require.InDelta(t, 5270, d, 100)
	require.Zero(t, reno.GreatCircleMeters(reno))
}
