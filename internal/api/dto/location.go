package dto

import (
	"rental-quote-service/internal/domain"
	"time"
)

type LocationRequest struct {
	DeliveryLocation string `json:"delivery_location"`
}

type PrefetchResponse struct {
	Accepted    bool   `json:"accepted"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

type BranchResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type DistanceResponse struct {
	Branch          BranchResponse `json:"branch"`
	DistanceMeters  int            `json:"distance_meters"`
	DistanceMiles   float64        `json:"distance_miles"`
	DurationSeconds int            `json:"duration_seconds"`
	IsEstimate      bool           `json:"is_estimate"`
	ComputedAt      time.Time      `json:"computed_at"`
}

type LookupResponse struct {
	Address          string           `json:"address"`
	Normalized       string           `json:"normalized"`
	Fingerprint      string           `json:"fingerprint"`
	Distance         DistanceResponse `json:"distance"`
	Cached           bool             `json:"cached"`
	ProcessingTimeMs float64          `json:"processing_time_ms"`
}

func NewDistanceResponse(r domain.DistanceResult) DistanceResponse {
	return DistanceResponse{
		Branch: BranchResponse{
			ID:      r.Branch.ID,
			Name:    r.Branch.Name,
			Address: r.Branch.Address,
		},
		DistanceMeters:  r.DistanceMeters,
		DistanceMiles:   float64(r.HundredthMiles()) / 100,
		DurationSeconds: r.DurationSeconds,
		IsEstimate:      r.IsEstimate,
		ComputedAt:      r.ComputedAt,
	}
}
