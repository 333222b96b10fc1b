// Package metrics holds the service's Prometheus collectors together with
// in-process counters exposed by the admin stats endpoint. All methods are
// safe on a nil *Metrics.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	locationLookups  *prometheus.CounterVec
	quotes           *prometheus.CounterVec
	providerCalls    *prometheus.CounterVec
	catalogRefreshes *prometheus.CounterVec
	prefetch         *prometheus.CounterVec
	cacheEntries     prometheus.Gauge

	hits, misses, lookupErrors        atomic.Int64
	quotesOK, quoteErrors             atomic.Int64
	providerOK, providerErrors        atomic.Int64
	refreshOK, refreshErrors          atomic.Int64
	prefetchAccepted, prefetchDropped atomic.Int64
}

// Stats is a point-in-time copy of the in-process counters.
type Stats struct {
	LocationLookups      int64 `json:"location_lookups"`
	CacheHits            int64 `json:"cache_hits"`
	CacheMisses          int64 `json:"cache_misses"`
	LocationErrors       int64 `json:"location_errors"`
	Quotes               int64 `json:"quotes"`
	QuoteErrors          int64 `json:"quote_errors"`
	ProviderCalls        int64 `json:"provider_calls"`
	ProviderErrors       int64 `json:"provider_errors"`
	CatalogRefreshes     int64 `json:"catalog_refreshes"`
	CatalogRefreshErrors int64 `json:"catalog_refresh_errors"`
	PrefetchAccepted     int64 `json:"prefetch_accepted"`
	PrefetchDropped      int64 `json:"prefetch_dropped"`
}

// New builds the collectors and registers them with reg when it is non-nil.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		locationLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "location_lookups_total",
			Help: "Location cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotes_total",
			Help: "Quote requests by outcome.",
		}, []string{"outcome"}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "provider_calls_total",
			Help: "Distance provider resolutions by outcome.",
		}, []string{"outcome"}),
		catalogRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_refreshes_total",
			Help: "Rate catalog refresh attempts by outcome.",
		}, []string{"outcome"}),
		prefetch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "location_prefetch_total",
			Help: "Prefetch requests by outcome (accepted, dropped).",
		}, []string{"outcome"}),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "location_cache_entries",
			Help: "Entries currently held in the in-process location cache.",
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{
			m.locationLookups, m.quotes, m.providerCalls,
			m.catalogRefreshes, m.prefetch, m.cacheEntries,
		} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.hits.Add(1)
	m.locationLookups.WithLabelValues("hit").Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.misses.Add(1)
	m.locationLookups.WithLabelValues("miss").Inc()
}

func (m *Metrics) LookupError() {
	if m == nil {
		return
	}
	m.lookupErrors.Add(1)
	m.locationLookups.WithLabelValues("error").Inc()
}

func (m *Metrics) Quote(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.quoteErrors.Add(1)
		m.quotes.WithLabelValues("error").Inc()
		return
	}
	m.quotesOK.Add(1)
	m.quotes.WithLabelValues("ok").Inc()
}

func (m *Metrics) ProviderCall(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.providerErrors.Add(1)
		m.providerCalls.WithLabelValues("error").Inc()
		return
	}
	m.providerOK.Add(1)
	m.providerCalls.WithLabelValues("ok").Inc()
}

func (m *Metrics) CatalogRefresh(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.refreshErrors.Add(1)
		m.catalogRefreshes.WithLabelValues("error").Inc()
		return
	}
	m.refreshOK.Add(1)
	m.catalogRefreshes.WithLabelValues("ok").Inc()
}

func (m *Metrics) Prefetch(accepted bool) {
	if m == nil {
		return
	}
	if accepted {
		m.prefetchAccepted.Add(1)
		m.prefetch.WithLabelValues("accepted").Inc()
		return
	}
	m.prefetchDropped.Add(1)
	m.prefetch.WithLabelValues("dropped").Inc()
}

func (m *Metrics) SetCacheEntries(n int) {
	if m == nil {
		return
	}
	m.cacheEntries.Set(float64(n))
}

func (m *Metrics) Snapshot() Stats {
	if m == nil {
		return Stats{}
	}
	hits, misses, lookupErrs := m.hits.Load(), m.misses.Load(), m.lookupErrors.Load()
	ok, qerr := m.quotesOK.Load(), m.quoteErrors.Load()
	pok, perr := m.providerOK.Load(), m.providerErrors.Load()
	rok, rerr := m.refreshOK.Load(), m.refreshErrors.Load()
	return Stats{
		LocationLookups:      hits + misses,
		CacheHits:            hits,
		CacheMisses:          misses,
		LocationErrors:       lookupErrs,
		Quotes:               ok + qerr,
		QuoteErrors:          qerr,
		ProviderCalls:        pok + perr,
		ProviderErrors:       perr,
		CatalogRefreshes:     rok + rerr,
		CatalogRefreshErrors: rerr,
		PrefetchAccepted:     m.prefetchAccepted.Load(),
		PrefetchDropped:      m.prefetchDropped.Load(),
	}
}
