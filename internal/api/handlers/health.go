package handlers

import (
	"net/http"
)

// Health reports liveness and whether a rate catalog is loaded.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	res := map[string]any{"status": "ok"}
	if c, err := h.catalog.Current(); err == nil {
		res["catalog_version"] = c.Version
	} else {
		res["status"] = "degraded"
	}
	writeJSON(h.logger, w, r, http.StatusOK, res)
}

func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(h.logger, w, r, http.StatusNotFound, "not_found", "route not found", "")
}

func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(h.logger, w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", "")
}
