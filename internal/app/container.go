// Package app is the composition root: it builds the dependency graph and
// runs the service until shutdown.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"rental-quote-service/internal/adapters/distance"
	"rental-quote-service/internal/api"
	"rental-quote-service/internal/api/handlers"
	"rental-quote-service/internal/config"
	"rental-quote-service/internal/logx"
	"rental-quote-service/internal/metrics"
	"rental-quote-service/internal/platform/db"
	"rental-quote-service/internal/ports"
	catalogsvc "rental-quote-service/internal/services/catalog"
	"rental-quote-service/internal/services/location"
	"rental-quote-service/internal/services/quote"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"
)

// ContainerBuilder builds the dig container. The With* hooks replace
// external dependencies in tests.
type ContainerBuilder struct {
	openDB    func(ctx context.Context, url string) (*sql.DB, error)
	resolver  ports.DistanceResolver
	logOutput io.Writer
}

func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		openDB:    db.Open,
		logOutput: os.Stdout,
	}
}

// WithResolver replaces the OpenRouteService resolver.
func (b *ContainerBuilder) WithResolver(r ports.DistanceResolver) *ContainerBuilder {
	b.resolver = r
	return b
}

func (b *ContainerBuilder) WithOpenDB(fn func(ctx context.Context, url string) (*sql.DB, error)) *ContainerBuilder {
	if fn != nil {
		b.openDB = fn
	}
	return b
}

func (b *ContainerBuilder) WithLogOutput(w io.Writer) *ContainerBuilder {
	if w != nil {
		b.logOutput = w
	}
	return b
}

func (b *ContainerBuilder) Build(ctx context.Context, cfg *config.Config) (*dig.Container, error) {
	container := dig.New()

	if err := b.registerCore(container, ctx, cfg); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := b.registerStorage(container); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if err := b.registerDomainServices(container); err != nil {
		return nil, fmt.Errorf("services: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func (b *ContainerBuilder) registerCore(container *dig.Container, ctx context.Context, cfg *config.Config) error {
	return provideAll(container,
		func() context.Context { return ctx },
		func() *config.Config { return cfg },
		func() logx.Logger { return logx.NewJSON(b.logOutput, cfg.LogLevel) },
		func() *resources { return &resources{} },
		func() (*prometheus.Registry, error) {
			reg := prometheus.NewRegistry()
			if err := reg.Register(collectors.NewGoCollector()); err != nil {
				return nil, err
			}
			if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
				return nil, err
			}
			return reg, nil
		},
		func(reg *prometheus.Registry) (*metrics.Metrics, error) { return metrics.New(reg) },
	)
}

func (b *ContainerBuilder) registerDomainServices(container *dig.Container) error {
	resolverProvider := func(cfg *config.Config, geo geocodeCache, logger logx.Logger) (ports.DistanceResolver, error) {
		if b.resolver != nil {
			return b.resolver, nil
		}
		return distance.NewORSResolver(distance.ORSOptions{
			APIKey:            cfg.ORS.APIKey,
			BaseURL:           cfg.ORS.BaseURL,
			Profile:           cfg.ORS.Profile,
			Timeout:           cfg.ORS.Timeout,
			RetryBackoff:      cfg.ORS.RetryBackoff,
			RequestsPerMinute: cfg.ORS.RequestsPerMinute,
			GeocodeCache:      geo.GeocodeCache,
			Logger:            logger.With(logx.String("component", "ors")),
		})
	}

	cacheProvider := func(
		cfg *config.Config,
		resolver ports.DistanceResolver,
		branches ports.BranchRepository,
		store locationStore,
		m *metrics.Metrics,
		logger logx.Logger,
	) *location.Cache {
		lc := cfg.LocationCache
		return location.New(resolver, branches, location.Options{
			TTL:            lc.TTL,
			ResolveTimeout: lc.ResolveTimeout,
			Workers:        lc.Workers,
			QueueSize:      lc.QueueSize,
			SweepInterval:  lc.SweepInterval,
			Store:          store.DistanceStore,
			Metrics:        m,
			Logger:         logger.With(logx.String("component", "location_cache")),
		})
	}

	return provideAll(container,
		resolverProvider,
		cacheProvider,
		func(src ports.CatalogSource, m *metrics.Metrics, logger logx.Logger) *catalogsvc.Service {
			return catalogsvc.New(src, m, logger.With(logx.String("component", "catalog")))
		},
		func(cache *location.Cache, cat *catalogsvc.Service, m *metrics.Metrics, logger logx.Logger) *quote.Service {
			return quote.NewService(cache, cat, m, logger.With(logx.String("component", "quote")))
		},
	)
}

func registerHTTP(container *dig.Container) error {
	handlersProvider := func(
		logger logx.Logger,
		svc *quote.Service,
		cache *location.Cache,
		cat *catalogsvc.Service,
		m *metrics.Metrics,
	) *handlers.Handlers {
		return handlers.New(logger, svc, cache, cat, m)
	}

	routerProvider := func(
		h *handlers.Handlers,
		cfg *config.Config,
		reg *prometheus.Registry,
		logger logx.Logger,
	) (http.Handler, error) {
		return api.NewRouter(h, api.RouterOptions{
			Logger:         logger.With(logx.String("component", "http")),
			Registerer:     reg,
			Gatherer:       reg,
			RequestTimeout: cfg.RequestTimeout,
		})
	}

	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		// Cold-cache quotes wait on the routing provider, so the write
		// timeout leaves room beyond the request timeout.
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      cfg.RequestTimeout + 15*time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}

	return provideAll(container,
		handlersProvider,
		routerProvider,
		serverProvider,
		newRunner,
	)
}
