package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rental-quote-service/internal/domain"

	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "tax_rate_bp": 825,
  "service_fee_bp": 300,
  "event_max_days": 3,
  "products": [
    {"id": "trailer-2", "name": "2-Stall Restroom Trailer", "daily_rate": 150, "weekly_rate": 700, "monthly_rate": 2100.50, "event_rate": 400}
  ],
  "delivery_tiers": [
    {"name": "local", "min_miles": 0, "max_miles": 25, "base_fee": 75, "per_mile": 0},
    {"name": "extended", "min_miles": 25, "base_fee": 75, "per_mile": 3.5}
  ],
  "seasons": [
    {"name": "summer", "start": "2026-06-01", "end": "2026-08-31", "multiplier_bp": 11500}
  ],
  "extras": [
    {"id": "handwash", "name": "Handwash station", "unit_price": 45},
    {"id": "service", "name": "Daily service", "unit_price": 20, "per_day": true}
  ]
}`

func TestFileSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o600))

	c, err := NewFileSource(path).Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	p := c.Products["trailer-2"]
	require.Equal(t, domain.Money(15000), p.DailyRate)
	require.Equal(t, domain.Money(210050), p.MonthlyRate)
	require.Equal(t, domain.Money(40000), p.EventRate)
	require.Len(t, c.DeliveryTiers, 2)
	require.True(t, c.DeliveryTiers[1].Unbounded())
	require.Equal(t, domain.Money(350), c.DeliveryTiers[1].PerMile)
	require.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), c.Seasons[0].Start)
	require.True(t, c.Extras["service"].PerDay)
	require.Equal(t, int64(825), c.TaxRateBP)
	require.Empty(t, c.Version)
}

func TestFileSource_Errors(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background())
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"products": [], "surprise": 1}`), 0o600))
	_, err = NewFileSource(path).Load(context.Background())
	require.ErrorContains(t, err, "unknown field")
}

func TestDocument_ToDomain_Rejects(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{"products":[{"id":"a"},{"id":"a"}]}`))
	require.NoError(t, err)
	_, err = doc.ToDomain()
	require.ErrorContains(t, err, "duplicate product")

	doc, err = Decode(strings.NewReader(`{"seasons":[{"name":"x","start":"06/01/2026","end":"2026-08-31"}]}`))
	require.NoError(t, err)
	_, err = doc.ToDomain()
	require.ErrorContains(t, err, "season \"x\"")
}

func TestSeedCatalogFileIsValid(t *testing.T) {
	c, err := NewFileSource(filepath.Join("..", "..", "..", "data", "seeds", "catalog.json")).Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.Validate())
}
