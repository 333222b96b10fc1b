package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"rental-quote-service/internal/config"
	"rental-quote-service/internal/logx"
	catalogsvc "rental-quote-service/internal/services/catalog"
	"rental-quote-service/internal/services/location"
	"time"

	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// Runner owns the long-running parts of the service: the HTTP server,
// the location cache workers and the catalog refresher.
type Runner struct {
	server    *http.Server
	cache     *location.Cache
	catalog   *catalogsvc.Service
	resources *resources
	logger    logx.Logger
	interval  time.Duration
}

type runnerParams struct {
	dig.In

	Config    *config.Config
	Server    *http.Server
	Cache     *location.Cache
	Catalog   *catalogsvc.Service
	Resources *resources
	Logger    logx.Logger
}

func newRunner(p runnerParams) *Runner {
	return &Runner{
		server:    p.Server,
		cache:     p.Cache,
		catalog:   p.Catalog,
		resources: p.Resources,
		logger:    p.Logger,
		interval:  p.Config.Catalog.RefreshInterval,
	}
}

// Resolve pulls the Runner out of a built container.
func Resolve(container *dig.Container) (*Runner, error) {
	var r *Runner
	if err := container.Invoke(func(runner *Runner) { r = runner }); err != nil {
		return nil, fmt.Errorf("resolve runner: %w", err)
	}
	return r, nil
}

// Run serves until ctx is cancelled or a component fails, then shuts the
// server down gracefully and releases storage resources.
//
// A failed initial catalog load is not fatal: quotes answer
// catalog_unavailable until a later refresh succeeds.
func (r *Runner) Run(ctx context.Context) error {
	defer func() {
		if err := r.resources.Close(); err != nil {
			r.logger.Warn("closing resources failed", logx.Err(err))
		}
	}()

	if _, err := r.catalog.Refresh(ctx); err != nil {
		r.logger.Warn("initial catalog load failed", logx.Err(err))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.logger.Info("server listening", logx.String("addr", r.server.Addr))
		if err := r.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error { return r.cache.Run(gctx) })
	g.Go(func() error { return r.catalog.Run(gctx, r.interval) })
	g.Go(func() error {
		<-gctx.Done()
		return r.shutdown()
	})

	err := g.Wait()
	r.logger.Info("server stopped")
	return err
}

func (r *Runner) shutdown() error {
	r.logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := r.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
