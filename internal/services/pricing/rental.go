package pricing

import (
	"rental-quote-service/internal/domain"
	"time"
)

const (
	weeklyFrom  = 7
	monthlyFrom = 28
)

// period is a contiguous run of rental lengths priced by one rule.
// last == 0 means open ended.
type period struct {
	name  string
	first int
	last  int
	price func(days int) domain.Money
}

func (p period) contains(days int) bool {
	return days >= p.first && (p.last == 0 || days <= p.last)
}

// periods lists the pricing rules that apply to p, shortest lengths first.
func periods(p domain.Product, usage domain.Usage, eventMaxDays int) []period {
	standard := []period{
		{name: "daily", first: 1, last: weeklyFrom - 1, price: func(d int) domain.Money {
			return p.DailyRate * domain.Money(d)
		}},
		{name: "weekly", first: weeklyFrom, last: monthlyFrom - 1, price: func(d int) domain.Money {
			return p.WeeklyRate.MulRatio(int64(d), 7)
		}},
		{name: "monthly", first: monthlyFrom, price: func(d int) domain.Money {
			return p.MonthlyRate.MulRatio(int64(d), 28)
		}},
	}

	if usage != domain.UsageEvent || p.EventRate <= 0 || eventMaxDays <= 0 {
		return standard
	}

	out := []period{{name: "event", first: 1, last: eventMaxDays, price: func(int) domain.Money {
		return p.EventRate
	}}}
	for _, s := range standard {
		if s.last != 0 && s.last <= eventMaxDays {
			continue
		}
		if s.first <= eventMaxDays {
			s.first = eventMaxDays + 1
		}
		out = append(out, s)
	}
	return out
}

// rentalCost prices days under the period that contains it, capped at the
// starting price of every longer period so a longer rental never costs less.
func rentalCost(ps []period, days int) (string, domain.Money) {
	for i, p := range ps {
		if !p.contains(days) {
			continue
		}
		cost := p.price(days)
		for _, longer := range ps[i+1:] {
			if c := longer.price(longer.first); c < cost {
				cost = c
			}
		}
		return p.name, cost
	}
	return "", 0
}

// seasonFor returns the first window containing start, in catalog order.
func seasonFor(windows []domain.SeasonalWindow, start time.Time) (domain.SeasonalWindow, bool) {
	for _, w := range windows {
		if w.Contains(start) {
			return w, true
		}
	}
	return domain.SeasonalWindow{}, false
}
