package domain

import "time"

type Usage string

const (
	UsageCommercial Usage = "commercial"
	UsageEvent      Usage = "event"
)

// Limits on the passthrough metadata carried by a QuoteRequest.
const (
	MaxMetadataKeys     = 32
	MaxMetadataKeyLen   = 64
	MaxMetadataValueLen = 512
)

// Upper bounds on request sizes. They keep every price product well inside
// int64 cents.
const (
	MaxRentalDays    = 3650
	MaxExtraQuantity = 10000
)

type ExtraLine struct {
	ExtraID  string
	Quantity int
}

// QuoteRequest asks for a price. Metadata is echoed back on the quote and
// never affects pricing.
type QuoteRequest struct {
	RequestID        string
	DeliveryLocation string
	ProductID        string
	StartDate        time.Time
	RentalDays       int
	Usage            Usage
	Extras           []ExtraLine
	Metadata         map[string]string
}

type LineItemKind string

const (
	LineRental   LineItemKind = "rental"
	LineDelivery LineItemKind = "delivery"
	LineExtra    LineItemKind = "extra"
)

type LineItem struct {
	Kind        LineItemKind
	Code        string
	Description string
	Quantity    int
	UnitPrice   Money
	Total       Money
}

type DeliveryCost struct {
	TierName   string
	Miles      float64
	BaseFee    Money
	PerMile    Money
	Total      Money
	IsEstimate bool
}

type RentalDetail struct {
	// Tier is one of event, daily, weekly, monthly.
	Tier               string
	Days               int
	StartDate          time.Time
	EndDate            time.Time
	BaseCost           Money
	SeasonName         string
	SeasonMultiplierBP int64
	Cost               Money
}

type ProductDetail struct {
	ID          string
	Name        string
	Description string
}

type BudgetBreakdown struct {
	Subtotal          Money
	ServiceFee        Money
	Tax               Money
	Total             Money
	DailyEquivalent   Money
	WeeklyEquivalent  Money
	MonthlyEquivalent Money
}

type LocationDetail struct {
	Address         string
	Normalized      string
	Fingerprint     string
	BranchID        string
	BranchName      string
	DistanceMiles   float64
	DurationSeconds int
	IsEstimate      bool
}

type QuoteMetadata struct {
	CatalogVersion string
	GeneratedAt    time.Time
	CalculationMs  float64
	Cached         bool
	Warnings       []string
	Passthrough    map[string]string
}

// Quote is the immutable result of pricing one request.
type Quote struct {
	RequestID string
	QuoteID   string
	LineItems []LineItem
	Subtotal  Money
	Delivery  DeliveryCost
	Rental    RentalDetail
	Product   ProductDetail
	Budget    BudgetBreakdown
	Location  LocationDetail
	Metadata  QuoteMetadata
}
