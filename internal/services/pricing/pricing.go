// Package pricing turns a quote request, a resolved distance and a rate
// catalog snapshot into an itemized quote. Everything here is pure: the same
// inputs always produce the same quote.
package pricing

import (
	"fmt"
	"rental-quote-service/internal/apperr"
	"rental-quote-service/internal/domain"
)

// Compute prices req. Conditions it cannot price are returned as errors;
// conditions it can price around are returned as warnings, which are also
// recorded on the quote metadata.
func Compute(req domain.QuoteRequest, dist domain.DistanceResult, cat *domain.RateCatalog) (domain.Quote, []string, error) {
	if cat == nil || len(cat.DeliveryTiers) == 0 {
		return domain.Quote{}, nil, &apperr.CatalogUnavailableError{}
	}
	if req.RentalDays < 1 {
		return domain.Quote{}, nil, apperr.Invalid("rental_days", "must be at least 1")
	}
	if req.RentalDays > domain.MaxRentalDays {
		return domain.Quote{}, nil, apperr.Invalid("rental_days", fmt.Sprintf("must be at most %d", domain.MaxRentalDays))
	}

	product, ok := cat.Products[req.ProductID]
	if !ok {
		return domain.Quote{}, nil, &apperr.UnknownProductError{ProductID: req.ProductID}
	}

	var warnings []string

	rental, rentalWarnings := rentalDetail(req, product, cat)
	warnings = append(warnings, rentalWarnings...)

	delivery, deliveryWarnings := deliveryCost(cat.DeliveryTiers, dist)
	warnings = append(warnings, deliveryWarnings...)

	lines := make([]domain.LineItem, 0, 2+len(req.Extras))
	lines = append(lines,
		domain.LineItem{
			Kind:        domain.LineRental,
			Code:        product.ID,
			Description: fmt.Sprintf("%s, %d days (%s rate)", product.Name, rental.Days, rental.Tier),
			Quantity:    1,
			UnitPrice:   rental.Cost,
			Total:       rental.Cost,
		},
		domain.LineItem{
			Kind:        domain.LineDelivery,
			Code:        delivery.TierName,
			Description: fmt.Sprintf("Delivery from %s, %.2f mi", dist.Branch.Name, delivery.Miles),
			Quantity:    1,
			UnitPrice:   delivery.Total,
			Total:       delivery.Total,
		},
	)

	extras, extraWarnings, err := extraLines(req.Extras, cat.Extras, req.RentalDays)
	if err != nil {
		return domain.Quote{}, nil, err
	}
	lines = append(lines, extras...)
	warnings = append(warnings, extraWarnings...)

	var subtotal domain.Money
	for _, l := range lines {
		subtotal += l.Total
	}
	budget := budgetFor(subtotal, cat, req.RentalDays)

	loc := domain.NewDeliveryLocation(req.DeliveryLocation)
	q := domain.Quote{
		RequestID: req.RequestID,
		LineItems: lines,
		Subtotal:  subtotal,
		Delivery:  delivery,
		Rental:    rental,
		Product: domain.ProductDetail{
			ID:          product.ID,
			Name:        product.Name,
			Description: product.Description,
		},
		Budget: budget,
		Location: domain.LocationDetail{
			Address:         loc.Raw,
			Normalized:      loc.Normalized,
			Fingerprint:     loc.Fingerprint,
			BranchID:        dist.Branch.ID,
			BranchName:      dist.Branch.Name,
			DistanceMiles:   delivery.Miles,
			DurationSeconds: dist.DurationSeconds,
			IsEstimate:      dist.IsEstimate,
		},
		Metadata: domain.QuoteMetadata{
			CatalogVersion: cat.Version,
			Warnings:       warnings,
		},
	}
	return q, warnings, nil
}

func rentalDetail(req domain.QuoteRequest, p domain.Product, cat *domain.RateCatalog) (domain.RentalDetail, []string) {
	tier, base := rentalCost(periods(p, req.Usage, cat.EventMaxDays), req.RentalDays)
	start := domain.DateOf(req.StartDate)

	d := domain.RentalDetail{
		Tier:               tier,
		Days:               req.RentalDays,
		StartDate:          start,
		EndDate:            start.AddDate(0, 0, req.RentalDays-1),
		BaseCost:           base,
		SeasonMultiplierBP: domain.BasisPointsOne,
		Cost:               base,
	}

	w, ok := seasonFor(cat.Seasons, start)
	if !ok {
		return d, []string{fmt.Sprintf(
			"no seasonal rate covers start date %s; standard rates applied", start.Format("2006-01-02"))}
	}
	d.SeasonName = w.Name
	d.SeasonMultiplierBP = w.MultiplierBP
	d.Cost = base.MulBasisPoints(w.MultiplierBP)
	return d, nil
}

func extraLines(req []domain.ExtraLine, prices map[string]domain.Extra, days int) ([]domain.LineItem, []string, error) {
	var (
		lines    []domain.LineItem
		warnings []string
	)
	for i, line := range req {
		if line.Quantity < 0 {
			return nil, nil, apperr.Invalid(fmt.Sprintf("extras[%d].quantity", i), "must not be negative")
		}
		if line.Quantity > domain.MaxExtraQuantity {
			return nil, nil, apperr.Invalid(fmt.Sprintf("extras[%d].quantity", i), fmt.Sprintf("must be at most %d", domain.MaxExtraQuantity))
		}
		e, ok := prices[line.ExtraID]
		if !ok {
			warnings = append(warnings, (&apperr.UnknownExtraError{ExtraID: line.ExtraID}).Error())
			continue
		}
		if line.Quantity == 0 {
			continue
		}

		unit := e.UnitPrice
		desc := e.Name
		if e.PerDay {
			unit = e.UnitPrice * domain.Money(days)
			desc = fmt.Sprintf("%s, %s per day x %d days", e.Name, e.UnitPrice, days)
		}
		lines = append(lines, domain.LineItem{
			Kind:        domain.LineExtra,
			Code:        e.ID,
			Description: desc,
			Quantity:    line.Quantity,
			UnitPrice:   unit,
			Total:       unit * domain.Money(line.Quantity),
		})
	}
	return lines, warnings, nil
}

func budgetFor(subtotal domain.Money, cat *domain.RateCatalog, days int) domain.BudgetBreakdown {
	fee := subtotal.MulBasisPoints(cat.ServiceFeeBP)
	tax := (subtotal + fee).MulBasisPoints(cat.TaxRateBP)
	total := subtotal + fee + tax
	d := int64(days)
	return domain.BudgetBreakdown{
		Subtotal:          subtotal,
		ServiceFee:        fee,
		Tax:               tax,
		Total:             total,
		DailyEquivalent:   total.MulRatio(1, d),
		WeeklyEquivalent:  total.MulRatio(7, d),
		MonthlyEquivalent: total.MulRatio(30, d),
	}
}
