package dto

import (
	"rental-quote-service/internal/domain"
	"rental-quote-service/internal/metrics"
	"rental-quote-service/internal/services/catalog"
	"rental-quote-service/internal/services/location"
	"sort"
	"time"
)

type CacheEntryResponse struct {
	Fingerprint string           `json:"fingerprint"`
	Address     string           `json:"address"`
	Normalized  string           `json:"normalized"`
	Distance    DistanceResponse `json:"distance"`
	StoredAt    time.Time        `json:"stored_at"`
	ExpiresAt   time.Time        `json:"expires_at"`
	Expired     bool             `json:"expired"`
	Generation  uint64           `json:"generation"`
}

type ListCacheResponse struct {
	Pattern string               `json:"pattern"`
	Count   int                  `json:"count"`
	Entries []CacheEntryResponse `json:"entries"`
}

type ClearCacheResponse struct {
	Pattern string `json:"pattern"`
	Cleared int    `json:"cleared"`
	Shared  int    `json:"shared_cleared"`
}

func NewCacheEntryResponse(e domain.CacheEntry, now time.Time) CacheEntryResponse {
	return CacheEntryResponse{
		Fingerprint: e.Fingerprint,
		Address:     e.Location.Raw,
		Normalized:  e.Location.Normalized,
		Distance:    NewDistanceResponse(e.Result),
		StoredAt:    e.StoredAt,
		ExpiresAt:   e.ExpiresAt,
		Expired:     !e.Fresh(now),
		Generation:  e.Generation,
	}
}

type CatalogProductResponse struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	DailyRate   domain.Money `json:"daily_rate"`
	WeeklyRate  domain.Money `json:"weekly_rate"`
	MonthlyRate domain.Money `json:"monthly_rate"`
	EventRate   domain.Money `json:"event_rate,omitempty"`
}

type CatalogTierResponse struct {
	Name     string       `json:"name"`
	MinMiles float64      `json:"min_miles"`
	MaxMiles *float64     `json:"max_miles"`
	BaseFee  domain.Money `json:"base_fee"`
	PerMile  domain.Money `json:"per_mile"`
}

type CatalogResponse struct {
	Version       string                   `json:"version"`
	LoadedAt      time.Time                `json:"loaded_at"`
	Products      []CatalogProductResponse `json:"products"`
	DeliveryTiers []CatalogTierResponse    `json:"delivery_tiers"`
	Seasons       int                      `json:"seasons"`
	Extras        int                      `json:"extras"`
	TaxRateBP     int64                    `json:"tax_rate_bp"`
	ServiceFeeBP  int64                    `json:"service_fee_bp"`
}

func NewCatalogResponse(c *domain.RateCatalog) CatalogResponse {
	products := make([]CatalogProductResponse, 0, len(c.Products))
	for _, p := range c.Products {
		products = append(products, CatalogProductResponse{
			ID:          p.ID,
			Name:        p.Name,
			DailyRate:   p.DailyRate,
			WeeklyRate:  p.WeeklyRate,
			MonthlyRate: p.MonthlyRate,
			EventRate:   p.EventRate,
		})
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })

	tiers := make([]CatalogTierResponse, 0, len(c.DeliveryTiers))
	for _, t := range c.DeliveryTiers {
		tr := CatalogTierResponse{Name: t.Name, MinMiles: t.MinMiles, BaseFee: t.BaseFee, PerMile: t.PerMile}
		if !t.Unbounded() {
			max := t.MaxMiles
			tr.MaxMiles = &max
		}
		tiers = append(tiers, tr)
	}

	return CatalogResponse{
		Version:       c.Version,
		LoadedAt:      c.LoadedAt,
		Products:      products,
		DeliveryTiers: tiers,
		Seasons:       len(c.Seasons),
		Extras:        len(c.Extras),
		TaxRateBP:     c.TaxRateBP,
		ServiceFeeBP:  c.ServiceFeeBP,
	}
}

// StatsResponse flattens the counters and adds cache and catalog state.
type StatsResponse struct {
	metrics.Stats
	Cache   location.Stats `json:"cache"`
	Catalog catalog.Status `json:"catalog"`
}
