package pricing

import (
	"fmt"
	"rental-quote-service/internal/domain"
)

// deliveryTier picks the tier with MinMiles <= d < MaxMiles, working in
// hundredths of a mile. Distances past every bounded tier fall back to the
// last tier and report overflow.
func deliveryTier(tiers []domain.DeliveryTier, hundredths int64) (tier domain.DeliveryTier, overflow bool) {
	for _, t := range tiers {
		if hundredths < t.MinHundredths() {
			continue
		}
		if t.Unbounded() || hundredths < t.MaxHundredths() {
			return t, false
		}
	}
	return tiers[len(tiers)-1], true
}

func deliveryCost(tiers []domain.DeliveryTier, dist domain.DistanceResult) (domain.DeliveryCost, []string) {
	h := dist.HundredthMiles()
	t, overflow := deliveryTier(tiers, h)

	var warnings []string
	if overflow {
		warnings = append(warnings, fmt.Sprintf(
			"distance %.2f mi is beyond every delivery tier; priced at tier %q", float64(h)/100, t.Name))
	}
	if dist.IsEstimate {
		warnings = append(warnings, "delivery distance is an estimate; the routing provider could not compute a drive route")
	}

	return domain.DeliveryCost{
		TierName:   t.Name,
		Miles:      float64(h) / 100,
		BaseFee:    t.BaseFee,
		PerMile:    t.PerMile,
		Total:      t.BaseFee + t.PerMile.MulRatio(h, 100),
		IsEstimate: dist.IsEstimate,
	}, warnings
}
