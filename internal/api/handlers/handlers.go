package handlers

import (
	"context"
	"rental-quote-service/internal/domain"
	"rental-quote-service/internal/logx"
	"rental-quote-service/internal/metrics"
	"rental-quote-service/internal/services/catalog"
	"rental-quote-service/internal/services/location"
	"rental-quote-service/internal/services/quote"
	"time"
)

type QuoteUsecase interface {
	GenerateQuote(ctx context.Context, req domain.QuoteRequest) (domain.Quote, error)
	LookupLocation(ctx context.Context, raw string) (quote.LookupResult, error)
	Prefetch(raw string) bool
}

type CacheAdmin interface {
	List(pattern string) []domain.CacheEntry
	Get(ctx context.Context, fingerprint string) (*domain.CacheEntry, error)
	Clear(ctx context.Context, pattern string) (location.ClearResult, error)
	Stats() location.Stats
}

type CatalogAdmin interface {
	Current() (*domain.RateCatalog, error)
	Refresh(ctx context.Context) (*domain.RateCatalog, error)
	Status() catalog.Status
}

type StatsSource interface {
	Snapshot() metrics.Stats
}

// Handlers serves the HTTP API on top of the quote, cache and catalog services.
type Handlers struct {
	quotes  QuoteUsecase
	cache   CacheAdmin
	catalog CatalogAdmin
	stats   StatsSource
	logger  logx.Logger
	now     func() time.Time
}

func New(logger logx.Logger, quotes QuoteUsecase, cache CacheAdmin, cat CatalogAdmin, stats StatsSource) *Handlers {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Handlers{
		quotes:  quotes,
		cache:   cache,
		catalog: cat,
		stats:   stats,
		logger:  logger,
		now:     time.Now,
	}
}
