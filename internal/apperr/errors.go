// Package apperr defines the typed errors surfaced by the quote engine.
// Callers classify them with errors.As; the HTTP layer maps each type to a
// status code and a stable error code.
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by admin lookups for absent resources.
var ErrNotFound = errors.New("not found")

// ValidationError reports a malformed request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid is shorthand for constructing a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InvalidAddressError means the provider could not geocode the delivery address.
type InvalidAddressError struct {
	Address string
	Err     error
}

func (e *InvalidAddressError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("address %q could not be geocoded: %v", e.Address, e.Err)
	}
	return fmt.Sprintf("address %q could not be geocoded", e.Address)
}

func (e *InvalidAddressError) Unwrap() error { return e.Err }

// ProviderError covers upstream distance provider failures: timeouts,
// transport errors, quota exhaustion and unexpected responses.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("distance provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

type UnknownProductError struct {
	ProductID string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product %q", e.ProductID)
}

// UnknownExtraError is never returned to callers; the calculator drops the
// extra and records the message as a quote warning.
type UnknownExtraError struct {
	ExtraID string
}

func (e *UnknownExtraError) Error() string {
	return fmt.Sprintf("unknown extra %q", e.ExtraID)
}

// CatalogUnavailableError means no rate catalog snapshot has ever been loaded.
type CatalogUnavailableError struct {
	Err error
}

func (e *CatalogUnavailableError) Error() string {
	if e.Err != nil {
		return "rate catalog unavailable: " + e.Err.Error()
	}
	return "rate catalog unavailable"
}

func (e *CatalogUnavailableError) Unwrap() error { return e.Err }

// Code returns the stable machine-readable code for err, or "internal".
func Code(err error) string {
	var (
		ve  *ValidationError
		iae *InvalidAddressError
		pe  *ProviderError
		upe *UnknownProductError
		cue *CatalogUnavailableError
	)
	switch {
	case errors.As(err, &ve):
		return "validation_error"
	case errors.As(err, &iae):
		return "invalid_address"
	case errors.As(err, &upe):
		return "unknown_product"
	case errors.As(err, &cue):
		return "catalog_unavailable"
	case errors.As(err, &pe):
		return "provider_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
