package handlers

import (
	"net/http"
	"rental-quote-service/internal/api/dto"
	"rental-quote-service/internal/apperr"
	"rental-quote-service/internal/logx"
	"rental-quote-service/internal/platform/obs"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ListCache handles GET /v1/admin/cache?pattern=.
func (h *Handlers) ListCache(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")
	entries := h.cache.List(pattern)

	now := h.now()
	res := dto.ListCacheResponse{
		Pattern: pattern,
		Count:   len(entries),
		Entries: make([]dto.CacheEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		res.Entries = append(res.Entries, dto.NewCacheEntryResponse(e, now))
	}
	writeJSON(h.logger, w, r, http.StatusOK, res)
}

// GetCacheEntry handles GET /v1/admin/cache/{fingerprint}.
func (h *Handlers) GetCacheEntry(w http.ResponseWriter, r *http.Request) {
	fp := strings.TrimSpace(chi.URLParam(r, "fingerprint"))
	e, err := h.cache.Get(r.Context(), fp)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, dto.NewCacheEntryResponse(*e, h.now()))
}

// ClearCache handles DELETE /v1/admin/cache?pattern=. The pattern is
// required; "*" clears everything.
func (h *Handlers) ClearCache(w http.ResponseWriter, r *http.Request) {
	pattern := strings.TrimSpace(r.URL.Query().Get("pattern"))
	if pattern == "" {
		writeAppError(h.logger, w, r, apperr.Invalid("pattern", `is required; use "*" to clear everything`))
		return
	}

	res, err := h.cache.Clear(r.Context(), pattern)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	h.logger.Info("admin cache clear",
		logx.String("req_id", obs.RequestID(r.Context())),
		logx.String("pattern", pattern),
		logx.Int("memory", res.Memory),
		logx.Int("shared", res.Shared),
	)
	writeJSON(h.logger, w, r, http.StatusOK, dto.ClearCacheResponse{
		Pattern: pattern,
		Cleared: res.Memory,
		Shared:  res.Shared,
	})
}

// Catalog handles GET /v1/admin/catalog.
func (h *Handlers) Catalog(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalog.Current()
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, dto.NewCatalogResponse(c))
}

// RefreshCatalog handles POST /v1/admin/catalog/refresh.
func (h *Handlers) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalog.Refresh(r.Context())
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadGateway, "catalog_refresh_failed", err.Error(), "")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, dto.NewCatalogResponse(c))
}

// Stats handles GET /v1/admin/stats.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(h.logger, w, r, http.StatusOK, dto.StatsResponse{
		Stats:   h.stats.Snapshot(),
		Cache:   h.cache.Stats(),
		Catalog: h.catalog.Status(),
	})
}
