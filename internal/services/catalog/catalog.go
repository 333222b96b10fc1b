// Package catalog holds the active rate catalog snapshot.
//
// Readers take the current snapshot without locking. A refresh loads and
// validates a complete new catalog and swaps it in atomically; a failed
// refresh leaves the previous snapshot in place.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"rental-quote-service/internal/apperr"
	"rental-quote-service/internal/domain"
	"rental-quote-service/internal/logx"
	"rental-quote-service/internal/metrics"
	"rental-quote-service/internal/platform/obs"
	"rental-quote-service/internal/ports"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"
)

// Status describes the active snapshot and the most recent refresh attempt.
const defaultLoadTimeout = 30 * time.Second

type Status struct {
	Version       string    `json:"version,omitempty"`
	LoadedAt      time.Time `json:"loaded_at,omitempty"`
	Products      int       `json:"products"`
	LastAttemptAt time.Time `json:"last_attempt_at,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
}

type Service struct {
	source      ports.CatalogSource
	loadTimeout time.Duration
	logger      logx.Logger
	metrics     *metrics.Metrics
	now         func() time.Time

	current atomic.Pointer[domain.RateCatalog]
	flights singleflight.Group

	mu          sync.Mutex
	lastAttempt time.Time
	lastErr     error
}

func New(source ports.CatalogSource, m *metrics.Metrics, logger logx.Logger) *Service {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		source:      source,
		loadTimeout: defaultLoadTimeout,
		logger:      logger,
		metrics:     m,
		now:         time.Now,
	}
}

// Current returns the active snapshot. The returned catalog is shared and
// must not be modified.
func (s *Service) Current() (*domain.RateCatalog, error) {
	c := s.current.Load()
	if c == nil {
		s.mu.Lock()
		err := s.lastErr
		s.mu.Unlock()
		return nil, &apperr.CatalogUnavailableError{Err: err}
	}
	return c, nil
}

// Refresh loads a new snapshot from the source. Concurrent calls share one
// load. On failure the previous snapshot stays active and the error is
// returned.
//
// The load runs detached from ctx and bounded by loadTimeout; a caller whose
// ctx ends stops waiting without failing the load for the others.
func (s *Service) Refresh(ctx context.Context) (*domain.RateCatalog, error) {
	ch := s.flights.DoChan("refresh", func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()
		return s.load(lctx)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("refresh catalog: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.RateCatalog), nil
	}
}

func (s *Service) load(ctx context.Context) (_ *domain.RateCatalog, err error) {
	defer obs.Time(ctx, s.logger, "catalog.refresh")(&err)
	defer func() {
		s.metrics.CatalogRefresh(err)
		s.mu.Lock()
		s.lastAttempt = s.now()
		s.lastErr = err
		s.mu.Unlock()
	}()

	next, err := s.source.Load(ctx)
	if err != nil {
		s.logRefreshFailure(err)
		return nil, fmt.Errorf("refresh catalog: %w", err)
	}
	if err := next.Validate(); err != nil {
		s.logRefreshFailure(err)
		return nil, fmt.Errorf("refresh catalog: %w", err)
	}

	if next.Version == "" {
		v, err := contentVersion(next)
		if err != nil {
			return nil, fmt.Errorf("refresh catalog: %w", err)
		}
		next.Version = v
	}
	next.LoadedAt = s.now()

	prev := s.current.Swap(next)
	changed := prev == nil || prev.Version != next.Version
	s.logger.Info("rate catalog loaded",
		logx.String("version", next.Version),
		logx.Int("products", len(next.Products)),
		logx.Int("delivery_tiers", len(next.DeliveryTiers)),
		logx.Bool("changed", changed),
	)
	return next, nil
}

func (s *Service) logRefreshFailure(err error) {
	if s.current.Load() == nil {
		s.logger.Error("rate catalog load failed, no snapshot available", logx.Err(err))
		return
	}
	s.logger.Warn("rate catalog refresh failed, keeping previous snapshot", logx.Err(err))
}

// Status reports the active snapshot and the last refresh outcome.
func (s *Service) Status() Status {
	var st Status
	if c := s.current.Load(); c != nil {
		st.Version = c.Version
		st.LoadedAt = c.LoadedAt
		st.Products = len(c.Products)
	}
	s.mu.Lock()
	st.LastAttemptAt = s.lastAttempt
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	s.mu.Unlock()
	return st
}

// Run refreshes the catalog every interval until ctx is done. Refresh
// errors are logged and do not stop the loop.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			_, _ = s.Refresh(obs.WithRequestID(ctx, "catalog-refresh"))
		}
	}
}

// contentVersion derives a stable version from the catalog contents so an
// unversioned document only changes version when its prices do.
func contentVersion(c *domain.RateCatalog) (string, error) {
	snapshot := *c
	snapshot.Version = ""
	snapshot.LoadedAt = time.Time{}
	b, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("hash catalog: %w", err)
	}
	return "h" + strconv.FormatUint(xxhash.Sum64(b), 16), nil
}
