package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// BasisPointsOne is a multiplier of exactly 1.0.
const BasisPointsOne = 10000

type Product struct {
	ID          string
	Name        string
	Description string
	DailyRate   Money
	WeeklyRate  Money
	// MonthlyRate is the price of one 28-day period.
	MonthlyRate Money
	// EventRate is a flat price for short event rentals. Zero disables it.
	EventRate Money
}

// DeliveryTier prices deliveries whose distance d satisfies
// MinMiles <= d < MaxMiles. MaxMiles == 0 means unbounded.
type DeliveryTier struct {
	Name     string
	MinMiles float64
	MaxMiles float64
	BaseFee  Money
	PerMile  Money
}

func (t DeliveryTier) Unbounded() bool { return t.MaxMiles == 0 }

// MinHundredths and MaxHundredths express the bounds in hundredths of a mile.
func (t DeliveryTier) MinHundredths() int64 { return int64(math.Round(t.MinMiles * 100)) }
func (t DeliveryTier) MaxHundredths() int64 { return int64(math.Round(t.MaxMiles * 100)) }

// SeasonalWindow applies MultiplierBP to rentals starting on any date in
// [Start, End], both inclusive.
type SeasonalWindow struct {
	Name         string
	Start        time.Time
	End          time.Time
	MultiplierBP int64
}

func (w SeasonalWindow) Contains(day time.Time) bool {
	d := DateOf(day)
	return !d.Before(DateOf(w.Start)) && !d.After(DateOf(w.End))
}

type Extra struct {
	ID        string
	Name      string
	UnitPrice Money
	// PerDay extras are charged per unit per rental day.
	PerDay bool
}

// RateCatalog is an immutable snapshot of every price input.
type RateCatalog struct {
	Version       string
	LoadedAt      time.Time
	Products      map[string]Product
	DeliveryTiers []DeliveryTier
	Seasons       []SeasonalWindow
	Extras        map[string]Extra
	TaxRateBP     int64
	ServiceFeeBP  int64
	EventMaxDays  int
}

// Validate rejects incomplete or inconsistent catalogs.
func (c *RateCatalog) Validate() error {
	if c == nil {
		return errors.New("catalog is nil")
	}
	if len(c.Products) == 0 {
		return errors.New("catalog has no products")
	}
	for id, p := range c.Products {
		if id == "" || id != p.ID {
			return fmt.Errorf("product %q: id mismatch", id)
		}
		if p.DailyRate <= 0 || p.WeeklyRate <= 0 || p.MonthlyRate <= 0 {
			return fmt.Errorf("product %q: daily, weekly and monthly rates must be positive", id)
		}
		if p.EventRate < 0 {
			return fmt.Errorf("product %q: negative event rate", id)
		}
	}

	if len(c.DeliveryTiers) == 0 {
		return errors.New("catalog has no delivery tiers")
	}
	var next int64
	for i, t := range c.DeliveryTiers {
		if t.MinHundredths() != next {
			return fmt.Errorf("delivery tier %q: expected min %.2f, got %.2f", t.Name, float64(next)/100, t.MinMiles)
		}
		if t.BaseFee < 0 || t.PerMile < 0 {
			return fmt.Errorf("delivery tier %q: negative fee", t.Name)
		}
		if t.Unbounded() {
			if i != len(c.DeliveryTiers)-1 {
				return fmt.Errorf("delivery tier %q: only the last tier may be unbounded", t.Name)
			}
			break
		}
		if t.MaxHundredths() <= t.MinHundredths() {
			return fmt.Errorf("delivery tier %q: max must exceed min", t.Name)
		}
		next = t.MaxHundredths()
	}

	for _, s := range c.Seasons {
		if s.End.Before(s.Start) {
			return fmt.Errorf("season %q: end before start", s.Name)
		}
		if s.MultiplierBP <= 0 {
			return fmt.Errorf("season %q: multiplier must be positive", s.Name)
		}
	}

	for id, e := range c.Extras {
		if id == "" || id != e.ID {
			return fmt.Errorf("extra %q: id mismatch", id)
		}
		if e.UnitPrice < 0 {
			return fmt.Errorf("extra %q: negative price", id)
		}
	}

	if c.TaxRateBP < 0 || c.TaxRateBP > BasisPointsOne {
		return fmt.Errorf("tax rate %d bp out of range", c.TaxRateBP)
	}
	if c.ServiceFeeBP < 0 || c.ServiceFeeBP > BasisPointsOne {
		return fmt.Errorf("service fee %d bp out of range", c.ServiceFeeBP)
	}
	if c.EventMaxDays < 0 {
		return fmt.Errorf("event max days %d must not be negative", c.EventMaxDays)
	}
	return nil
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
