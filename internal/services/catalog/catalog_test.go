package catalog

import (
	"context"
	"errors"
	catalogsrc "rental-quote-service/internal/adapters/catalog"
	"rental-quote-service/internal/apperr"
	"rental-quote-service/internal/domain"
	"rental-quote-service/internal/testutil/testlog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcSource func(ctx context.Context) (*domain.RateCatalog, error)

func (f funcSource) Load(ctx context.Context) (*domain.RateCatalog, error) { return f(ctx) }

func sampleCatalog(daily domain.Money) *domain.RateCatalog {
	return &domain.RateCatalog{
		Products: map[string]domain.Product{
			"trailer": {ID: "trailer", DailyRate: daily, WeeklyRate: 5 * daily, MonthlyRate: 15 * daily},
		},
		DeliveryTiers: []domain.DeliveryTier{
			{Name: "local", MaxMiles: 25, BaseFee: 5000},
			{Name: "far", MinMiles: 25, BaseFee: 9000, PerMile: 300},
		},
		TaxRateBP: 800,
	}
}

func TestService_UnavailableBeforeFirstLoad(t *testing.T) {
	s := New(funcSource(func(context.Context) (*domain.RateCatalog, error) {
		return nil, errors.New("db down")
	}), nil, nil)

	_, err := s.Current()
	var cu *apperr.CatalogUnavailableError
	require.ErrorAs(t, err, &cu)

	_, err = s.Refresh(context.Background())
	require.Error(t, err)

	_, err = s.Current()
	require.ErrorAs(t, err, &cu)
	assert.Contains(t, err.Error(), "db down")
}

func TestService_RefreshFromSeedFile(t *testing.T) {
	s := New(catalogsrc.NewFileSource("../../../data/seeds/catalog.json"), nil, nil)

	c, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.Version, "h"))
	assert.False(t, c.LoadedAt.IsZero())

	cur, err := s.Current()
	require.NoError(t, err)
	assert.Same(t, c, cur)

	// Unchanged contents keep the same derived version.
	again, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, c.Version, again.Version)
}

func TestService_FailedRefreshKeepsSnapshot(t *testing.T) {
	var fail atomic.Bool
	rec := testlog.New()
	s := New(funcSource(func(context.Context) (*domain.RateCatalog, error) {
		if fail.Load() {
			return nil, errors.New("boom")
		}
		return sampleCatalog(10000), nil
	}), nil, rec.Logger())

	first, err := s.Refresh(context.Background())
	require.NoError(t, err)

	fail.Store(true)
	_, err = s.Refresh(context.Background())
	require.Error(t, err)

	cur, err := s.Current()
	require.NoError(t, err)
	assert.Same(t, first, cur)
	assert.Equal(t, 1, rec.Count("warn", "rate catalog refresh failed, keeping previous snapshot"))

	st := s.Status()
	assert.Equal(t, first.Version, st.Version)
	assert.Equal(t, 1, st.Products)
	assert.Contains(t, st.LastError, "boom")
}

func TestService_InvalidCatalogRejected(t *testing.T) {
	bad := sampleCatalog(10000)
	bad.DeliveryTiers[1].MinMiles = 30

	s := New(funcSource(func(context.Context) (*domain.RateCatalog, error) { return bad, nil }), nil, nil)
	_, err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected min 25.00")

	_, err = s.Current()
	var cu *apperr.CatalogUnavailableError
	require.ErrorAs(t, err, &cu)
}

func TestService_VersionFollowsContent(t *testing.T) {
	var daily atomic.Int64
	daily.Store(10000)
	s := New(funcSource(func(context.Context) (*domain.RateCatalog, error) {
		return sampleCatalog(domain.Money(daily.Load())), nil
	}), nil, nil)

	a, err := s.Refresh(context.Background())
	require.NoError(t, err)
	b, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a.Version, b.Version)

	daily.Store(12000)
	c, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a.Version, c.Version)
}

func TestService_ExplicitVersionKept(t *testing.T) {
	s := New(funcSource(func(context.Context) (*domain.RateCatalog, error) {
		c := sampleCatalog(10000)
		c.Version = "2026-10-01"
		return c, nil
	}), nil, nil)

	c, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-10-01", c.Version)
}

func TestService_ConcurrentRefreshesShareOneLoad(t *testing.T) {
	var loads atomic.Int32
	release := make(chan struct{})
	s := New(funcSource(func(context.Context) (*domain.RateCatalog, error) {
		loads.Add(1)
		<-release
		return sampleCatalog(10000), nil
	}), nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Refresh(context.Background())
			assert.NoError(t, err)
		}()
	}

	require.Eventually(t, func() bool { return loads.Load() == 1 }, time.Second, 5*time.Millisecond)
	// Let the remaining goroutines reach the shared call before releasing.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
	_, err := s.Current()
	require.NoError(t, err)
}

func TestService_CancelledCallerDoesNotAbortLoad(t *testing.T) {
	var once sync.Once
	started := make(chan struct{})
	release := make(chan struct{})
	s := New(funcSource(func(ctx context.Context) (*domain.RateCatalog, error) {
		once.Do(func() { close(started) })
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return sampleCatalog(10000), nil
	}), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := s.Refresh(ctx)
		first <- err
	}()
	<-started

	second := make(chan error, 1)
	go func() {
		_, err := s.Refresh(context.Background())
		second <- err
	}()

	cancel()
	require.ErrorIs(t, <-first, context.Canceled)

	time.Sleep(20 * time.Millisecond)
	close(release)
	require.NoError(t, <-second)

	c, err := s.Current()
	require.NoError(t, err)
	assert.Len(t, c.Products, 1)
}

func TestService_RunRefreshesPeriodically(t *testing.T) {
	var loads atomic.Int32
	s := New(funcSource(func(context.Context) (*domain.RateCatalog, error) {
		loads.Add(1)
		return sampleCatalog(10000), nil
	}), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, 10*time.Millisecond) }()

	require.Eventually(t, func() bool { return loads.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
