package domain

import "time"

const metersPerMile = 1609.344

// DistanceResult is the drive distance from the nearest branch to a
// delivery location.
type DistanceResult struct {
	Branch          Branch
	DistanceMeters  int
	DurationSeconds int
	// IsEstimate marks a great-circle fallback rather than a routed distance.
	IsEstimate bool
	ComputedAt time.Time
}

func (r DistanceResult) Miles() float64 {
	return float64(r.DistanceMeters) / metersPerMile
}

// HundredthMiles returns the distance in hundredths of a mile, rounded half
// to even. Tier selection works on this integer.
func (r DistanceResult) HundredthMiles() int64 {
	// 1 mile = 1609344 mm; meters * 100 * 1000 / 1609344
	return DivRoundHalfEven(int64(r.DistanceMeters)*100_000, 1_609_344)
}

// CacheEntry is an immutable cached resolution for one fingerprint.
type CacheEntry struct {
	Fingerprint string
	Location    DeliveryLocation
	Result      DistanceResult
	StoredAt    time.Time
	ExpiresAt   time.Time
	Generation  uint64
}

// Fresh reports whether the entry is still valid at now. An entry stored at
// T with TTL d is stale from exactly T+d.
func (e *CacheEntry) Fresh(now time.Time) bool {
	return e != nil && now.Before(e.ExpiresAt)
}
