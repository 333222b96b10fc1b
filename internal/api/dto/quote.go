package dto

import (
	"rental-quote-service/internal/apperr"
	"rental-quote-service/internal/domain"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type ExtraRequest struct {
	ExtraID  string `json:"extra_id"`
	Quantity int    `json:"quantity"`
}

type QuoteRequest struct {
	RequestID        string            `json:"request_id"`
	DeliveryLocation string            `json:"delivery_location"`
	ProductID        string            `json:"product_id"`
	StartDate        string            `json:"start_date"`
	RentalDays       int               `json:"rental_days"`
	Usage            string            `json:"usage"`
	Extras           []ExtraRequest    `json:"extras"`
	Metadata         map[string]string `json:"metadata"`
}

// ToDomain converts the wire request. Only the date format is checked here;
// everything else is validated by the quote service.
func (r QuoteRequest) ToDomain() (domain.QuoteRequest, error) {
	var start time.Time
	if s := strings.TrimSpace(r.StartDate); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return domain.QuoteRequest{}, apperr.Invalid("start_date", "must be a date formatted as YYYY-MM-DD")
		}
		start = t
	}

	extras := make([]domain.ExtraLine, 0, len(r.Extras))
	for _, e := range r.Extras {
		extras = append(extras, domain.ExtraLine{ExtraID: strings.TrimSpace(e.ExtraID), Quantity: e.Quantity})
	}

	return domain.QuoteRequest{
		RequestID:        strings.TrimSpace(r.RequestID),
		DeliveryLocation: r.DeliveryLocation,
		ProductID:        strings.TrimSpace(r.ProductID),
		StartDate:        start,
		RentalDays:       r.RentalDays,
		Usage:            domain.Usage(strings.ToLower(strings.TrimSpace(r.Usage))),
		Extras:           extras,
		Metadata:         r.Metadata,
	}, nil
}

type LineItemResponse struct {
	Kind        string       `json:"kind"`
	Code        string       `json:"code"`
	Description string       `json:"description"`
	Quantity    int          `json:"quantity"`
	UnitPrice   domain.Money `json:"unit_price"`
	Total       domain.Money `json:"total"`
}

type DeliveryResponse struct {
	Tier       string       `json:"tier"`
	Miles      float64      `json:"miles"`
	BaseFee    domain.Money `json:"base_fee"`
	PerMile    domain.Money `json:"per_mile"`
	Total      domain.Money `json:"total"`
	IsEstimate bool         `json:"is_estimate"`
}

type RentalResponse struct {
	Tier             string       `json:"tier"`
	Days             int          `json:"days"`
	StartDate        string       `json:"start_date"`
	EndDate          string       `json:"end_date"`
	BaseCost         domain.Money `json:"base_cost"`
	Season           string       `json:"season,omitempty"`
	SeasonMultiplier float64      `json:"season_multiplier"`
	Cost             domain.Money `json:"cost"`
}

type ProductResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type BudgetResponse struct {
	Subtotal          domain.Money `json:"subtotal"`
	ServiceFee        domain.Money `json:"service_fee"`
	Tax               domain.Money `json:"tax"`
	Total             domain.Money `json:"total"`
	DailyEquivalent   domain.Money `json:"daily_equivalent"`
	WeeklyEquivalent  domain.Money `json:"weekly_equivalent"`
	MonthlyEquivalent domain.Money `json:"monthly_equivalent"`
}

type LocationResponse struct {
	Address         string  `json:"address"`
	Normalized      string  `json:"normalized"`
	Fingerprint     string  `json:"fingerprint"`
	BranchID        string  `json:"branch_id"`
	BranchName      string  `json:"branch_name"`
	DistanceMiles   float64 `json:"distance_miles"`
	DurationSeconds int     `json:"duration_seconds"`
	IsEstimate      bool    `json:"is_estimate"`
}

type QuoteMetadataResponse struct {
	CatalogVersion string            `json:"catalog_version"`
	GeneratedAt    time.Time         `json:"generated_at"`
	CalculationMs  float64           `json:"calculation_ms"`
	Cached         bool              `json:"cached"`
	Warnings       []string          `json:"warnings"`
	Passthrough    map[string]string `json:"passthrough,omitempty"`
}

type QuoteResponse struct {
	RequestID string                `json:"request_id"`
	QuoteID   string                `json:"quote_id"`
	LineItems []LineItemResponse    `json:"line_items"`
	Subtotal  domain.Money          `json:"subtotal"`
	Delivery  DeliveryResponse      `json:"delivery"`
	Rental    RentalResponse        `json:"rental"`
	Product   ProductResponse       `json:"product"`
	Budget    BudgetResponse        `json:"budget"`
	Location  LocationResponse      `json:"location"`
	Metadata  QuoteMetadataResponse `json:"metadata"`
}

func NewQuoteResponse(q domain.Quote) QuoteResponse {
	lines := make([]LineItemResponse, 0, len(q.LineItems))
	for _, l := range q.LineItems {
		lines = append(lines, LineItemResponse{
			Kind:        string(l.Kind),
			Code:        l.Code,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Total:       l.Total,
		})
	}

	warnings := q.Metadata.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	return QuoteResponse{
		RequestID: q.RequestID,
		QuoteID:   q.QuoteID,
		LineItems: lines,
		Subtotal:  q.Subtotal,
		Delivery: DeliveryResponse{
			Tier:       q.Delivery.TierName,
			Miles:      q.Delivery.Miles,
			BaseFee:    q.Delivery.BaseFee,
			PerMile:    q.Delivery.PerMile,
			Total:      q.Delivery.Total,
			IsEstimate: q.Delivery.IsEstimate,
		},
		Rental: RentalResponse{
			Tier:             q.Rental.Tier,
			Days:             q.Rental.Days,
			StartDate:        q.Rental.StartDate.Format(dateLayout),
			EndDate:          q.Rental.EndDate.Format(dateLayout),
			BaseCost:         q.Rental.BaseCost,
			Season:           q.Rental.SeasonName,
			SeasonMultiplier: float64(q.Rental.SeasonMultiplierBP) / domain.BasisPointsOne,
			Cost:             q.Rental.Cost,
		},
		Product: ProductResponse{
			ID:          q.Product.ID,
			Name:        q.Product.Name,
			Description: q.Product.Description,
		},
		Budget: BudgetResponse{
			Subtotal:          q.Budget.Subtotal,
			ServiceFee:        q.Budget.ServiceFee,
			Tax:               q.Budget.Tax,
			Total:             q.Budget.Total,
			DailyEquivalent:   q.Budget.DailyEquivalent,
			WeeklyEquivalent:  q.Budget.WeeklyEquivalent,
			MonthlyEquivalent: q.Budget.MonthlyEquivalent,
		},
		Location: LocationResponse{
			Address:         q.Location.Address,
			Normalized:      q.Location.Normalized,
			Fingerprint:     q.Location.Fingerprint,
			BranchID:        q.Location.BranchID,
			BranchName:      q.Location.BranchName,
			DistanceMiles:   q.Location.DistanceMiles,
			DurationSeconds: q.Location.DurationSeconds,
			IsEstimate:      q.Location.IsEstimate,
		},
		Metadata: QuoteMetadataResponse{
			CatalogVersion: q.Metadata.CatalogVersion,
			GeneratedAt:    q.Metadata.GeneratedAt,
			CalculationMs:  q.Metadata.CalculationMs,
			Cached:         q.Metadata.Cached,
			Warnings:       warnings,
			Passthrough:    q.Metadata.Passthrough,
		},
	}
}
