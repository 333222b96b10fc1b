package quote

import (
	"fmt"
	"rental-quote-service/internal/apperr"
	"rental-quote-service/internal/domain"
)

const maxRequestIDLen = 128

func validate(req domain.QuoteRequest) error {
	if len(req.RequestID) > maxRequestIDLen {
		return apperr.Invalid("request_id", fmt.Sprintf("must be at most %d characters", maxRequestIDLen))
	}
	if domain.NewDeliveryLocation(req.DeliveryLocation).Empty() {
		return apperr.Invalid("delivery_location", "is required")
	}
	if req.ProductID == "" {
		return apperr.Invalid("product_id", "is required")
	}
	if req.StartDate.IsZero() {
		return apperr.Invalid("start_date", "is required")
	}
	if req.RentalDays < 1 {
		return apperr.Invalid("rental_days", "must be at least 1")
	}
	if req.RentalDays > domain.MaxRentalDays {
		return apperr.Invalid("rental_days", fmt.Sprintf("must be at most %d", domain.MaxRentalDays))
	}

	switch req.Usage {
	case "", domain.UsageCommercial, domain.UsageEvent:
	default:
		return apperr.Invalid("usage", fmt.Sprintf("must be %q or %q", domain.UsageCommercial, domain.UsageEvent))
	}

	for i, e := range req.Extras {
		if e.ExtraID == "" {
			return apperr.Invalid(fmt.Sprintf("extras[%d].extra_id", i), "is required")
		}
		if e.Quantity < 0 {
			return apperr.Invalid(fmt.Sprintf("extras[%d].quantity", i), "must not be negative")
		}
		if e.Quantity > domain.MaxExtraQuantity {
			return apperr.Invalid(fmt.Sprintf("extras[%d].quantity", i), fmt.Sprintf("must be at most %d", domain.MaxExtraQuantity))
		}
	}

	if len(req.Metadata) > domain.MaxMetadataKeys {
		return apperr.Invalid("metadata", fmt.Sprintf("at most %d keys allowed", domain.MaxMetadataKeys))
	}
	for k, v := range req.Metadata {
		if k == "" || len(k) > domain.MaxMetadataKeyLen {
			return apperr.Invalid("metadata", fmt.Sprintf("keys must be 1 to %d characters", domain.MaxMetadataKeyLen))
		}
		if len(v) > domain.MaxMetadataValueLen {
			return apperr.Invalid("metadata."+k, fmt.Sprintf("must be at most %d characters", domain.MaxMetadataValueLen))
		}
	}
	return nil
}
