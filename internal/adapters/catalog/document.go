package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"rental-quote-service/internal/domain"
	"time"
)

const dateLayout = "2006-01-02"

// Document is the JSON layout of a rate catalog file.
type Document struct {
	Version       string       `json:"version,omitempty"`
	TaxRateBP     int64        `json:"tax_rate_bp"`
	ServiceFeeBP  int64        `json:"service_fee_bp"`
	EventMaxDays  int          `json:"event_max_days"`
	Products      []ProductDoc `json:"products"`
	DeliveryTiers []TierDoc    `json:"delivery_tiers"`
	Seasons       []SeasonDoc  `json:"seasons"`
	Extras        []ExtraDoc   `json:"extras"`
}

type ProductDoc struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	DailyRate   domain.Money `json:"daily_rate"`
	WeeklyRate  domain.Money `json:"weekly_rate"`
	MonthlyRate domain.Money `json:"monthly_rate"`
	EventRate   domain.Money `json:"event_rate,omitempty"`
}

type TierDoc struct {
	Name     string       `json:"name"`
	MinMiles float64      `json:"min_miles"`
	MaxMiles float64      `json:"max_miles,omitempty"`
	BaseFee  domain.Money `json:"base_fee"`
	PerMile  domain.Money `json:"per_mile"`
}

type SeasonDoc struct {
	Name         string `json:"name"`
	Start        string `json:"start"`
	End          string `json:"end"`
	MultiplierBP int64  `json:"multiplier_bp"`
}

type ExtraDoc struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	UnitPrice domain.Money `json:"unit_price"`
	PerDay    bool         `json:"per_day,omitempty"`
}

// Decode reads a Document from r, rejecting unknown fields.
func Decode(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog document: %w", err)
	}
	return &doc, nil
}

// ToDomain converts the document into a catalog snapshot. Duplicate ids are
// rejected here; completeness is checked by RateCatalog.Validate.
func (d *Document) ToDomain() (*domain.RateCatalog, error) {
	c := &domain.RateCatalog{
		Version:      d.Version,
		Products:     make(map[string]domain.Product, len(d.Products)),
		Extras:       make(map[string]domain.Extra, len(d.Extras)),
		TaxRateBP:    d.TaxRateBP,
		ServiceFeeBP: d.ServiceFeeBP,
		EventMaxDays: d.EventMaxDays,
	}

	for _, p := range d.Products {
		if _, dup := c.Products[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product %q", p.ID)
		}
		c.Products[p.ID] = domain.Product{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			DailyRate:   p.DailyRate,
			WeeklyRate:  p.WeeklyRate,
			MonthlyRate: p.MonthlyRate,
			EventRate:   p.EventRate,
		}
	}

	for _, t := range d.DeliveryTiers {
		c.DeliveryTiers = append(c.DeliveryTiers, domain.DeliveryTier{
			Name:     t.Name,
			MinMiles: t.MinMiles,
			MaxMiles: t.MaxMiles,
			BaseFee:  t.BaseFee,
			PerMile:  t.PerMile,
		})
	}

	for _, s := range d.Seasons {
		start, err := time.Parse(dateLayout, s.Start)
		if err != nil {
			return nil, fmt.Errorf("season %q: start: %w", s.Name, err)
		}
		end, err := time.Parse(dateLayout, s.End)
		if err != nil {
			return nil, fmt.Errorf("season %q: end: %w", s.Name, err)
		}
		c.Seasons = append(c.Seasons, domain.SeasonalWindow{
			Name:         s.Name,
			Start:        start,
			End:          end,
			MultiplierBP: s.MultiplierBP,
		})
	}

	for _, e := range d.Extras {
		if _, dup := c.Extras[e.ID]; dup {
			return nil, fmt.Errorf("duplicate extra %q", e.ID)
		}
		c.Extras[e.ID] = domain.Extra{
			ID:        e.ID,
			Name:      e.Name,
			UnitPrice: e.UnitPrice,
			PerDay:    e.PerDay,
		}
	}

	return c, nil
}
