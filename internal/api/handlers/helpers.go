package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"rental-quote-service/internal/api/dto"
	"rental-quote-service/internal/apperr"
	"rental-quote-service/internal/logx"
	"rental-quote-service/internal/platform/obs"
)

const (
	bodyLimit = 1 << 20

	// statusClientClosedRequest follows the nginx convention for callers
	// that went away before the response was ready.
	statusClientClosedRequest = 499
)

func writeJSON(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Warn("encode response failed",
			logx.String("req_id", obs.RequestID(r.Context())),
			logx.String("path", r.URL.Path),
			logx.Err(err),
		)
	}
}

func writeError(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, code, msg, field string) {
	writeJSON(logger, w, r, status, dto.ErrorResponse{Error: dto.ErrorBody{Code: code, Message: msg, Field: field}})
}

// writeAppError maps a service error onto the error envelope.
func writeAppError(logger logx.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := apperr.Code(err)
	msg := err.Error()

	var field string
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		field = ve.Field
		msg = ve.Error()
	}

	switch status {
	case http.StatusGatewayTimeout:
		code = "timeout"
	case statusClientClosedRequest:
		code = "canceled"
	case http.StatusInternalServerError:
		msg = "internal error"
	}

	fields := []logx.Field{
		logx.String("req_id", obs.RequestID(r.Context())),
		logx.String("path", r.URL.Path),
		logx.Int("status", status),
		logx.String("code", code),
		logx.Err(err),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", fields...)
	} else {
		logger.Info("request rejected", fields...)
	}

	writeError(logger, w, r, status, code, msg, field)
}

func statusFor(err error) int {
	var (
		ve  *apperr.ValidationError
		iae *apperr.InvalidAddressError
		upe *apperr.UnknownProductError
		pe  *apperr.ProviderError
		cue *apperr.CatalogUnavailableError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &iae), errors.As(err, &upe):
		return http.StatusUnprocessableEntity
	case errors.As(err, &pe):
		return http.StatusBadGateway
	case errors.As(err, &cue):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON[T any](logger logx.Logger, w http.ResponseWriter, r *http.Request, dst *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(logger, w, r, http.StatusBadRequest, "invalid_json", "invalid json body: "+err.Error(), "")
		return false
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		writeError(logger, w, r, http.StatusBadRequest, "invalid_json", "body must contain only one JSON object", "")
		return false
	}
	return true
}
