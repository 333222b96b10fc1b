package api

import (
	"fmt"
	"net/http"
	"rental-quote-service/internal/api/handlers"
	"rental-quote-service/internal/logx"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterOptions struct {
	Logger         logx.Logger
	Registerer     prometheus.Registerer
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
}

// NewRouter wires the HTTP routes and middleware around h.
func NewRouter(h *handlers.Handlers, opts RouterOptions) (http.Handler, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logx.Nop()
	}
	m, err := newHTTPMetrics(opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("register http metrics: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability(logger, m))
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	r.Get("/health", h.Health)
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/quotes", h.CreateQuote)
		r.Post("/locations/prefetch", h.Prefetch)
		r.Post("/locations/lookup", h.Lookup)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/cache", h.ListCache)
			r.Delete("/cache", h.ClearCache)
			r.Get("/cache/{fingerprint}", h.GetCacheEntry)
			r.Get("/catalog", h.Catalog)
			r.Post("/catalog/refresh", h.RefreshCatalog)
			r.Get("/stats", h.Stats)
		})
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)
	return r, nil
}
