package app

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"rental-quote-service/internal/adapters/distance"
	"rental-quote-service/internal/config"
	"rental-quote-service/internal/domain"
	catalogsvc "rental-quote-service/internal/services/catalog"
	"rental-quote-service/internal/services/location"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"
)

const sparks = "1200 Victorian Ave, Sparks, NV"

func testConfig() *config.Config {
	return &config.Config{
		Port:           0,
		LogLevel:       "error",
		RequestTimeout: 5 * time.Second,
		ORS:            config.DefaultORS(),
		LocationCache:  config.DefaultLocationCache(),
		Redis:          config.DefaultRedis(),
		Catalog: config.Catalog{
			Source:          config.SourceFile,
			Path:            "../../data/seeds/catalog.json",
			RefreshInterval: time.Hour,
		},
		Branches: config.Branches{
			Source: config.SourceFile,
			Path:   "../../data/seeds/branches.json",
		},
	}
}

func mockResolver() *distance.MockResolver {
	reno := domain.Branch{ID: "br-reno", Name: "Reno Yard"}
	return distance.NewMockResolver(map[string]domain.DistanceResult{
		sparks: {Branch: reno, DistanceMeters: 48119, DurationSeconds: 2100},
	})
}

func build(t *testing.T, cfg *config.Config, b *ContainerBuilder) *dig.Container {
	t.Helper()
	c, err := b.WithLogOutput(io.Discard).Build(context.Background(), cfg)
	require.NoError(t, err)
	return c
}

func TestBuild_ServesQuotes(t *testing.T) {
	t.Parallel()

	resolver := mockResolver()
	c := build(t, testConfig(), NewContainerBuilder().WithResolver(resolver))

	err := c.Invoke(func(h http.Handler, cat *catalogsvc.Service, srv *http.Server) {
		require.Equal(t, ":0", srv.Addr)
		require.Greater(t, srv.WriteTimeout, 5*time.Second)

		_, err := cat.Refresh(context.Background())
		require.NoError(t, err)

		body, err := json.Marshal(map[string]any{
			"delivery_location": sparks,
			"product_id":        "restroom-2-stall",
			"start_date":        "2026-04-01",
			"rental_days":       30,
		})
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/quotes", bytes.NewReader(body)))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		rr = httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "go_goroutines")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resolver.Calls())
}

func TestBuild_PostgresSourceWithoutDatabase(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Catalog.Source = config.SourcePostgres
	c := build(t, cfg, NewContainerBuilder().WithResolver(mockResolver()))

	_, err := Resolve(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres catalog source needs DATABASE_URL")
}

func TestBuild_DatabaseOpenFailure(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.DatabaseURL = "postgres://unreachable"
	boom := errors.New("connection refused")

	var opened string
	b := NewContainerBuilder().
		WithResolver(mockResolver()).
		WithOpenDB(func(_ context.Context, url string) (*sql.DB, error) {
			opened = url
			return nil, boom
		})
	c := build(t, cfg, b)

	_, err := Resolve(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), boom.Error())
	assert.Equal(t, "postgres://unreachable", opened)
}

func TestBuild_MemoryStoreHasNoSharedLevel(t *testing.T) {
	t.Parallel()

	c := build(t, testConfig(), NewContainerBuilder().WithResolver(mockResolver()))
	err := c.Invoke(func(s locationStore, g geocodeCache, cache *location.Cache) {
		assert.Nil(t, s.DistanceStore)
		assert.Nil(t, g.GeocodeCache)
		assert.Equal(t, 4, cache.Stats().Workers)
	})
	require.NoError(t, err)
}

func TestProvideAll_InvalidProvider(t *testing.T) {
	t.Parallel()

	err := provideAll(dig.New(), "not a function")
	require.Error(t, err)
}

func TestRunner_StopsOnCancel(t *testing.T) {
	t.Parallel()

	c := build(t, testConfig(), NewContainerBuilder().WithResolver(mockResolver()))
	r, err := Resolve(c)
	require.NoError(t, err)

	closed := false
	r.resources.add(func() error {
		closed = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := r.catalog.Current()
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}
	assert.True(t, closed)
}

func TestResources_CloseInReverseAndJoin(t *testing.T) {
	t.Parallel()

	var order []int
	errA := errors.New("a")
	res := &resources{}
	res.add(func() error { order = append(order, 1); return errA })
	res.add(func() error { order = append(order, 2); return nil })

	err := res.Close()
	assert.ErrorIs(t, err, errA)
	assert.Equal(t, []int{2, 1}, order)
	require.NoError(t, res.Close())
}
