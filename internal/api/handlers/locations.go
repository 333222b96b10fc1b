package handlers

import (
	"net/http"
	"rental-quote-service/internal/api/dto"
	"rental-quote-service/internal/apperr"
	"rental-quote-service/internal/domain"
)

// Prefetch handles POST /v1/locations/prefetch. It acknowledges right away;
// resolution happens in the background.
func (h *Handlers) Prefetch(w http.ResponseWriter, r *http.Request) {
	var req dto.LocationRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	loc := domain.NewDeliveryLocation(req.DeliveryLocation)
	if loc.Empty() {
		writeAppError(h.logger, w, r, apperr.Invalid("delivery_location", "is required"))
		return
	}

	accepted := h.quotes.Prefetch(req.DeliveryLocation)
	writeJSON(h.logger, w, r, http.StatusAccepted, dto.PrefetchResponse{
		Accepted:    accepted,
		Fingerprint: loc.Fingerprint,
	})
}

// Lookup handles POST /v1/locations/lookup.
func (h *Handlers) Lookup(w http.ResponseWriter, r *http.Request) {
	var req dto.LocationRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	res, err := h.quotes.LookupLocation(r.Context(), req.DeliveryLocation)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, dto.LookupResponse{
		Address:          res.Location.Raw,
		Normalized:       res.Location.Normalized,
		Fingerprint:      res.Location.Fingerprint,
		Distance:         dto.NewDistanceResponse(res.Result),
		Cached:           res.Cached,
		ProcessingTimeMs: res.ElapsedMs,
	})
}
