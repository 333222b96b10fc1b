package pricing

import (
	"rental-quote-service/internal/apperr"
	"rental-quote-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testCatalog() *domain.RateCatalog {
	return &domain.RateCatalog{
		Version: "test-1",
		Products: map[string]domain.Product{
			"trailer": {
				ID:          "trailer",
				Name:        "Restroom Trailer",
				DailyRate:   domain.Dollars(100, 0),
				WeeklyRate:  domain.Dollars(500, 0),
				MonthlyRate: domain.Dollars(1500, 0),
				EventRate:   domain.Dollars(250, 0),
			},
		},
		DeliveryTiers: []domain.DeliveryTier{
			{Name: "0-25 miles", MinMiles: 0, MaxMiles: 25, BaseFee: domain.Dollars(50, 0)},
			{Name: "26-50 miles", MinMiles: 25, MaxMiles: 50, BaseFee: domain.Dollars(75, 0), PerMile: domain.Dollars(2, 0)},
			{Name: "51+ miles", MinMiles: 50, BaseFee: domain.Dollars(100, 0), PerMile: domain.Dollars(3, 0)},
		},
		Seasons: []domain.SeasonalWindow{
			{Name: "spring", Start: day(2026, 3, 1), End: day(2026, 5, 31), MultiplierBP: 10000},
			{Name: "summer", Start: day(2026, 6, 1), End: day(2026, 8, 31), MultiplierBP: 12000},
		},
		Extras: map[string]domain.Extra{
			"handwash": {ID: "handwash", Name: "Handwash Station", UnitPrice: domain.Dollars(25, 0)},
			"service":  {ID: "service", Name: "Daily Service", UnitPrice: domain.Dollars(10, 0), PerDay: true},
		},
		TaxRateBP:    800,
		ServiceFeeBP: 300,
		EventMaxDays: 3,
	}
}

func atMeters(m int) domain.DistanceResult {
	return domain.DistanceResult{
		Branch:          domain.Branch{ID: "br-1", Name: "Reno"},
		DistanceMeters:  m,
		DurationSeconds: 1800,
	}
}

func baseRequest() domain.QuoteRequest {
	return domain.QuoteRequest{
		RequestID:        "req-1",
		DeliveryLocation: "1 Main St, Reno, NV",
		ProductID:        "trailer",
		StartDate:        day(2026, 4, 1),
		RentalDays:       30,
		Usage:            domain.UsageCommercial,
	}
}

func TestCompute_ThirtyDayScenario(t *testing.T) {
	req := baseRequest()
	req.Extras = []domain.ExtraLine{{ExtraID: "handwash", Quantity: 2}}

	// 48119 m is 29.90 mi.
	q, warnings, err := Compute(req, atMeters(48119), testCatalog())
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.Len(t, q.LineItems, 3)
	assert.Equal(t, domain.LineRental, q.LineItems[0].Kind)
	assert.Equal(t, domain.LineDelivery, q.LineItems[1].Kind)
	assert.Equal(t, domain.LineExtra, q.LineItems[2].Kind)

	assert.Equal(t, domain.Money(160714), q.LineItems[0].Total)
	assert.Equal(t, "monthly", q.Rental.Tier)
	assert.Equal(t, "26-50 miles", q.Delivery.TierName)
	assert.Equal(t, 29.9, q.Delivery.Miles)
	assert.Equal(t, domain.Money(13480), q.Delivery.Total)
	assert.Equal(t, domain.Money(5000), q.LineItems[2].Total)
	assert.Equal(t, 2, q.LineItems[2].Quantity)

	var sum domain.Money
	for _, l := range q.LineItems {
		sum += l.Total
	}
	assert.Equal(t, sum, q.Subtotal)
	assert.Equal(t, domain.Money(179194), q.Budget.Subtotal)
	assert.Equal(t, domain.Money(5376), q.Budget.ServiceFee)
	assert.Equal(t, domain.Money(14766), q.Budget.Tax)
	assert.Equal(t, domain.Money(199336), q.Budget.Total)
	assert.Equal(t, domain.Money(6645), q.Budget.DailyEquivalent)
	assert.Equal(t, domain.Money(46512), q.Budget.WeeklyEquivalent)
	assert.Equal(t, domain.Money(199336), q.Budget.MonthlyEquivalent)

	assert.Equal(t, "req-1", q.RequestID)
	assert.Equal(t, "test-1", q.Metadata.CatalogVersion)
	assert.Equal(t, day(2026, 4, 30), q.Rental.EndDate)
	assert.Equal(t, "br-1", q.Location.BranchID)
	assert.Equal(t, "1 main st, reno, nv", q.Location.Normalized)
}

func TestCompute_Deterministic(t *testing.T) {
	req := baseRequest()
	req.Extras = []domain.ExtraLine{{ExtraID: "service", Quantity: 1}, {ExtraID: "handwash", Quantity: 3}}
	cat := testCatalog()

	first, w1, err := Compute(req, atMeters(90000), cat)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, w2, err := Compute(req, atMeters(90000), cat)
		require.NoError(t, err)
		require.Equal(t, first, again)
		require.Equal(t, w1, w2)
	}
}

func TestCompute_DeliveryTierBoundary(t *testing.T) {
	cat := testCatalog()

	// 40217 m rounds to 24.99 mi, 40234 m to 25.00 mi.
	below, _, err := Compute(baseRequest(), atMeters(40217), cat)
	require.NoError(t, err)
	assert.Equal(t, "0-25 miles", below.Delivery.TierName)
	assert.Equal(t, 24.99, below.Delivery.Miles)

	at, _, err := Compute(baseRequest(), atMeters(40234), cat)
	require.NoError(t, err)
	assert.Equal(t, "26-50 miles", at.Delivery.TierName)
	assert.Equal(t, 25.0, at.Delivery.Miles)
	assert.Equal(t, domain.Dollars(125, 0), at.Delivery.Total)
}

func TestCompute_BeyondEveryTier(t *testing.T) {
	cat := testCatalog()
	cat.DeliveryTiers[2].MaxMiles = 150

	q, warnings, err := Compute(baseRequest(), atMeters(321869), cat) // 200 mi
	require.NoError(t, err)
	assert.Equal(t, "51+ miles", q.Delivery.TierName)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "beyond every delivery tier")
	assert.Equal(t, warnings, q.Metadata.Warnings)
}

func TestCompute_EstimatedDistanceWarns(t *testing.T) {
	dist := atMeters(10000)
	dist.IsEstimate = true

	q, warnings, err := Compute(baseRequest(), dist, testCatalog())
	require.NoError(t, err)
	assert.True(t, q.Delivery.IsEstimate)
	assert.True(t, q.Location.IsEstimate)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "estimate")
}

func TestCompute_MonotonicInDays(t *testing.T) {
	for _, usage := range []domain.Usage{domain.UsageCommercial, domain.UsageEvent} {
		for _, start := range []time.Time{day(2026, 4, 1), day(2026, 7, 1), day(2027, 2, 1)} {
			prev := domain.Money(-1)
			for days := 1; days <= 120; days++ {
				req := baseRequest()
				req.Usage = usage
				req.StartDate = start
				req.RentalDays = days
				req.Extras = []domain.ExtraLine{{ExtraID: "service", Quantity: 1}}

				q, _, err := Compute(req, atMeters(48119), testCatalog())
				require.NoError(t, err)
				require.GreaterOrEqual(t, q.Subtotal, prev, "usage=%s start=%s days=%d", usage, start, days)
				prev = q.Subtotal
			}
		}
	}
}

func TestCompute_RentalPeriods(t *testing.T) {
	tests := []struct {
		name  string
		usage domain.Usage
		days  int
		tier  string
		cost  domain.Money
	}{
		{"one day", domain.UsageCommercial, 1, "daily", domain.Dollars(100, 0)},
		{"five days", domain.UsageCommercial, 5, "daily", domain.Dollars(500, 0)},
		{"six days capped at a week", domain.UsageCommercial, 6, "daily", domain.Dollars(500, 0)},
		{"two weeks", domain.UsageCommercial, 14, "weekly", domain.Dollars(1000, 0)},
		{"27 days capped at a month", domain.UsageCommercial, 27, "weekly", domain.Dollars(1500, 0)},
		{"28 days", domain.UsageCommercial, 28, "monthly", domain.Dollars(1500, 0)},
		{"event flat", domain.UsageEvent, 2, "event", domain.Dollars(250, 0)},
		{"event at limit", domain.UsageEvent, 3, "event", domain.Dollars(250, 0)},
		{"event past limit", domain.UsageEvent, 4, "daily", domain.Dollars(400, 0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := baseRequest()
			req.Usage = tc.usage
			req.RentalDays = tc.days

			q, _, err := Compute(req, atMeters(1000), testCatalog())
			require.NoError(t, err)
			assert.Equal(t, tc.tier, q.Rental.Tier)
			assert.Equal(t, tc.cost, q.Rental.Cost)
		})
	}
}

func TestCompute_EventWithoutEventRate(t *testing.T) {
	cat := testCatalog()
	p := cat.Products["trailer"]
	p.EventRate = 0
	cat.Products["trailer"] = p

	req := baseRequest()
	req.Usage = domain.UsageEvent
	req.RentalDays = 2

	q, _, err := Compute(req, atMeters(1000), cat)
	require.NoError(t, err)
	assert.Equal(t, "daily", q.Rental.Tier)
	assert.Equal(t, domain.Dollars(200, 0), q.Rental.Cost)
}

func TestCompute_SeasonalMultiplier(t *testing.T) {
	req := baseRequest()
	req.StartDate = day(2026, 7, 4)
	req.RentalDays = 3

	q, warnings, err := Compute(req, atMeters(1000), testCatalog())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "summer", q.Rental.SeasonName)
	assert.Equal(t, domain.Dollars(300, 0), q.Rental.BaseCost)
	assert.Equal(t, domain.Dollars(360, 0), q.Rental.Cost)
}

func TestCompute_NoSeasonWarns(t *testing.T) {
	req := baseRequest()
	req.StartDate = day(2027, 1, 10)

	q, warnings, err := Compute(req, atMeters(1000), testCatalog())
	require.NoError(t, err)
	assert.Equal(t, int64(domain.BasisPointsOne), q.Rental.SeasonMultiplierBP)
	assert.Equal(t, q.Rental.BaseCost, q.Rental.Cost)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "2027-01-10")
}

func TestCompute_UnknownExtraDropped(t *testing.T) {
	req := baseRequest()
	req.Extras = []domain.ExtraLine{
		{ExtraID: "ghost", Quantity: 1},
		{ExtraID: "handwash", Quantity: 1},
	}

	q, warnings, err := Compute(req, atMeters(1000), testCatalog())
	require.NoError(t, err)
	require.Len(t, q.LineItems, 3)
	assert.Equal(t, "handwash", q.LineItems[2].Code)
	assert.Equal(t, []string{`unknown extra "ghost"`}, warnings)
}

func TestCompute_ExtrasPerDayAndZeroQuantity(t *testing.T) {
	req := baseRequest()
	req.RentalDays = 10
	req.Extras = []domain.ExtraLine{
		{ExtraID: "service", Quantity: 2},
		{ExtraID: "handwash", Quantity: 0},
	}

	q, _, err := Compute(req, atMeters(1000), testCatalog())
	require.NoError(t, err)
	require.Len(t, q.LineItems, 3)
	svc := q.LineItems[2]
	assert.Equal(t, "service", svc.Code)
	assert.Equal(t, domain.Dollars(100, 0), svc.UnitPrice)
	assert.Equal(t, domain.Dollars(200, 0), svc.Total)
}

func TestCompute_Errors(t *testing.T) {
	t.Run("unknown product", func(t *testing.T) {
		req := baseRequest()
		req.ProductID = "nope"
		_, _, err := Compute(req, atMeters(1000), testCatalog())
		var up *apperr.UnknownProductError
		require.ErrorAs(t, err, &up)
		assert.Equal(t, "nope", up.ProductID)
	})

	t.Run("negative quantity", func(t *testing.T) {
		req := baseRequest()
		req.Extras = []domain.ExtraLine{{ExtraID: "handwash", Quantity: -1}}
		_, _, err := Compute(req, atMeters(1000), testCatalog())
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "extras[0].quantity", ve.Field)
	})

	t.Run("rental days above limit", func(t *testing.T) {
		req := baseRequest()
		req.RentalDays = 1 << 50
		_, _, err := Compute(req, atMeters(1000), testCatalog())
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "rental_days", ve.Field)
	})

	t.Run("quantity above limit", func(t *testing.T) {
		req := baseRequest()
		req.Extras = []domain.ExtraLine{{ExtraID: "handwash", Quantity: 1 << 62}}
		_, _, err := Compute(req, atMeters(1000), testCatalog())
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "extras[0].quantity", ve.Field)
	})

	t.Run("largest allowed request stays positive", func(t *testing.T) {
		req := baseRequest()
		req.RentalDays = domain.MaxRentalDays
		req.Extras = []domain.ExtraLine{{ExtraID: "handwash", Quantity: domain.MaxExtraQuantity}}
		q, _, err := Compute(req, atMeters(1000), testCatalog())
		require.NoError(t, err)
		assert.Positive(t, int64(q.Budget.Total))
		assert.Greater(t, q.Budget.Total, q.Budget.Subtotal)
	})

	t.Run("no catalog", func(t *testing.T) {
		_, _, err := Compute(baseRequest(), atMeters(1000), nil)
		var cu *apperr.CatalogUnavailableError
		require.ErrorAs(t, err, &cu)
	})
}
