package handlers

import (
	"net/http"
	"rental-quote-service/internal/api/dto"
)

// CreateQuote handles POST /v1/quotes.
func (h *Handlers) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req dto.QuoteRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	in, err := req.ToDomain()
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	if in.RequestID == "" {
		in.RequestID = r.Header.Get("X-Request-Id")
	}

	q, err := h.quotes.GenerateQuote(r.Context(), in)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, dto.NewQuoteResponse(q))
}
