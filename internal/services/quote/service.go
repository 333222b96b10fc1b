// Package quote is the entry point for pricing requests. It validates the
// request, resolves distance through the location cache, reads the current
// rate catalog and stamps the calculated quote with its metadata.
package quote

import (
	"context"
	"fmt"
	"rental-quote-service/internal/domain"
	"rental-quote-service/internal/logx"
	"rental-quote-service/internal/metrics"
	"rental-quote-service/internal/platform/obs"
	"rental-quote-service/internal/services/pricing"
	"time"

	"github.com/google/uuid"
)

type Locations interface {
	GetOrCompute(ctx context.Context, loc domain.DeliveryLocation) (domain.DistanceResult, bool, error)
	Prefetch(raw string) bool
}

type Catalog interface {
	Current() (*domain.RateCatalog, error)
}

type Service struct {
	locations Locations
	catalog   Catalog
	metrics   *metrics.Metrics
	logger    logx.Logger
	now       func() time.Time
}

// LookupResult is the outcome of a synchronous location lookup.
type LookupResult struct {
	Location  domain.DeliveryLocation
	Result    domain.DistanceResult
	Cached    bool
	ElapsedMs float64
}

func NewService(locations Locations, catalog Catalog, m *metrics.Metrics, logger logx.Logger) *Service {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		locations: locations,
		catalog:   catalog,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateQuote prices req. A quote is returned only when every step
// succeeded; otherwise the typed error from the failing step is returned.
func (s *Service) GenerateQuote(ctx context.Context, req domain.QuoteRequest) (_ domain.Quote, err error) {
	started := s.now()
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	ctx = obs.WithRequestID(ctx, req.RequestID)

	defer obs.Time(ctx, s.logger, "quote.generate")(&err)
	defer func() { s.metrics.Quote(err) }()

	if err := validate(req); err != nil {
		return domain.Quote{}, err
	}
	if req.Usage == "" {
		req.Usage = domain.UsageCommercial
	}

	dist, cached, err := s.locations.GetOrCompute(ctx, domain.NewDeliveryLocation(req.DeliveryLocation))
	if err != nil {
		return domain.Quote{}, fmt.Errorf("generate quote: %w", err)
	}

	cat, err := s.catalog.Current()
	if err != nil {
		return domain.Quote{}, fmt.Errorf("generate quote: %w", err)
	}

	q, warnings, err := pricing.Compute(req, dist, cat)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("generate quote: %w", err)
	}

	finished := s.now()
	q.QuoteID = uuid.NewString()
	q.Metadata.GeneratedAt = finished.UTC()
	q.Metadata.CalculationMs = elapsedMs(started, finished)
	q.Metadata.Cached = cached
	q.Metadata.Passthrough = copyMetadata(req.Metadata)

	s.logger.Info("quote generated",
		logx.String("req_id", q.RequestID),
		logx.String("quote_id", q.QuoteID),
		logx.String("product_id", req.ProductID),
		logx.String("total", q.Budget.Total.String()),
		logx.Bool("cached", cached),
		logx.Int("warnings", len(warnings)),
	)
	return q, nil
}

// LookupLocation resolves raw without producing a quote.
func (s *Service) LookupLocation(ctx context.Context, raw string) (LookupResult, error) {
	started := s.now()
	loc := domain.NewDeliveryLocation(raw)

	res, cached, err := s.locations.GetOrCompute(ctx, loc)
	if err != nil {
		return LookupResult{}, fmt.Errorf("lookup location: %w", err)
	}
	return LookupResult{
		Location:  loc,
		Result:    res,
		Cached:    cached,
		ElapsedMs: elapsedMs(started, s.now()),
	}, nil
}

// Prefetch schedules background resolution of raw and reports whether it
// was accepted.
func (s *Service) Prefetch(raw string) bool {
	return s.locations.Prefetch(raw)
}

func elapsedMs(from, to time.Time) float64 {
	return float64(to.Sub(from).Microseconds()) / 1000
}

func copyMetadata(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
