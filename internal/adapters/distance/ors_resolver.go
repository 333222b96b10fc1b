package distance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"rental-quote-service/internal/apperr"
	"rental-quote-service/internal/domain"
	"rental-quote-service/internal/logx"
	"rental-quote-service/internal/platform/obs"
	"rental-quote-service/internal/ports"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.openrouteservice.org"
	defaultProfile = "driving-car"

	// Great-circle fallback: straight-line distance times a road factor,
	// driven at a nominal average speed.
	roadFactor            = 1.3
	estimateMetersPerSecs = 20.1168 // 45 mph
)

var errNoBranches = errors.New("no branches configured")

// ORSOptions configures an ORSResolver. Zero values take defaults.
type ORSOptions struct {
	APIKey            string
	BaseURL           string
	Profile           string
	Timeout           time.Duration
	RetryBackoff      time.Duration
	RequestsPerMinute int
	GeocodeCache      ports.GeocodeCache
	HTTPClient        *http.Client
	Logger            logx.Logger
}

// ORSResolver implements DistanceResolver using OpenRouteService.
//
// One resolution geocodes the destination (and any branch without
// coordinates), then issues a single matrix call with every branch as a
// source. Geocodes are memoized in the optional GeocodeCache; distances are
// never cached here.
//
// The resolver is safe for concurrent use.
type ORSResolver struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	profile      string
	retryBackoff time.Duration
	limiter      *rate.Limiter
	geocodeCache ports.GeocodeCache
	logger       logx.Logger
	now          func() time.Time
}

func NewORSResolver(opts ORSOptions) (*ORSResolver, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}

	r := &ORSResolver{
		session:      opts.HTTPClient,
		apiKey:       opts.APIKey,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		profile:      opts.Profile,
		retryBackoff: opts.RetryBackoff,
		geocodeCache: opts.GeocodeCache,
		logger:       opts.Logger,
		now:          time.Now,
	}
	if r.session == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		r.session = &http.Client{Timeout: timeout}
	}
	if r.baseURL == "" {
		r.baseURL = defaultBaseURL
	}
	if r.profile == "" {
		r.profile = defaultProfile
	}
	if r.retryBackoff <= 0 {
		r.retryBackoff = 250 * time.Millisecond
	}
	if r.logger == nil {
		r.logger = logx.Nop()
	}

	rpm := opts.RequestsPerMinute
	if rpm <= 0 {
		r.limiter = rate.NewLimiter(rate.Inf, 1)
	} else {
		r.limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60), max(1, rpm/10))
	}

	return r, nil
}

// Resolve returns the distance from the nearest branch to destination.
func (o *ORSResolver) Resolve(
	ctx context.Context,
	origins []domain.Branch,
	destination domain.DeliveryLocation,
) (_ domain.DistanceResult, err error) {
	defer obs.Time(ctx, o.logger, "ors.Resolve")(&err)

	if len(origins) == 0 {
		return domain.DistanceResult{}, &apperr.ProviderError{Op: "resolve", Err: errNoBranches}
	}
	if destination.Empty() {
		return domain.DistanceResult{}, &apperr.InvalidAddressError{Address: destination.Raw}
	}

	coords, err := o.coordinates(ctx, origins, destination)
	if err != nil {
		return domain.DistanceResult{}, fmt.Errorf("resolve distance: %w", err)
	}

	branches := make([]domain.Branch, len(origins))
	copy(branches, origins)
	for i := range branches {
		if branches[i].Location == nil {
			c := coords[domain.NormalizeAddress(branches[i].Address)]
			branches[i].Location = &c
		}
	}
	destCoord := coords[destination.Normalized]

	cells, err := o.fetchMatrixColumn(ctx, branches, destCoord)
	if err != nil {
		return domain.DistanceResult{}, fmt.Errorf("resolve distance: %w", err)
	}

	best, ok := nearest(branches, cells)
	if !ok {
		o.logger.Warn("no routable branch, using great-circle estimate",
			logx.String("req_id", obs.RequestID(ctx)),
			logx.String("destination", destination.Normalized),
		)
		return o.estimate(branches, destCoord), nil
	}

	return domain.DistanceResult{
		Branch:          copyBranch(branches[best]),
		DistanceMeters:  cells[best].meters,
		DurationSeconds: cells[best].seconds,
		ComputedAt:      o.now(),
	}, nil
}

// coordinates returns coordinates keyed by normalized address for the
// destination and every branch that lacks a stored location.
func (o *ORSResolver) coordinates(
	ctx context.Context,
	origins []domain.Branch,
	destination domain.DeliveryLocation,
) (map[string]domain.Coordinates, error) {
	needed := []string{destination.Normalized}
	for _, b := range origins {
		if b.Location == nil {
			norm := domain.NormalizeAddress(b.Address)
			if norm == "" {
				return nil, fmt.Errorf("branch %q has neither coordinates nor address", b.ID)
			}
			needed = append(needed, norm)
		}
	}

	hits := map[string]domain.Coordinates{}
	if o.geocodeCache != nil {
		cached, err := o.geocodeCache.GetMany(ctx, needed)
		if err != nil {
			o.logger.Warn("geocode cache read failed", logx.Err(err))
		} else {
			hits = cached
		}
	}

	misses := make([]string, 0, len(needed))
	for _, a := range needed {
		if _, ok := hits[a]; !ok {
			misses = append(misses, a)
		}
	}

	fresh, err := o.geocodeMany(ctx, misses)
	if err != nil {
		return nil, err
	}
	if _, ok := fresh[destination.Normalized]; !ok {
		if _, ok := hits[destination.Normalized]; !ok {
			return nil, &apperr.InvalidAddressError{Address: destination.Raw}
		}
	}

	if o.geocodeCache != nil && len(fresh) > 0 {
		if err := o.geocodeCache.PutMany(ctx, fresh); err != nil {
			o.logger.Warn("geocode cache write failed", logx.Err(err))
		}
	}

	out := make(map[string]domain.Coordinates, len(hits)+len(fresh))
	for k, v := range hits {
		out[k] = v
	}
	for k, v := range fresh {
		out[k] = v
	}

	for _, a := range needed[1:] {
		if _, ok := out[a]; !ok {
			return nil, &apperr.ProviderError{Op: "geocode", Err: fmt.Errorf("no coordinates for branch address %q", a)}
		}
	}
	return out, nil
}

// nearest picks the routable cell with the smallest distance; ties go to
// the lowest branch id.
func nearest(branches []domain.Branch, cells []matrixCell) (int, bool) {
	idx := make([]int, 0, len(cells))
	for i, c := range cells {
		if c.ok {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return 0, false
	}
	sort.Slice(idx, func(a, b int) bool {
		ca, cb := cells[idx[a]], cells[idx[b]]
		if ca.meters != cb.meters {
			return ca.meters < cb.meters
		}
		return branches[idx[a]].ID < branches[idx[b]].ID
	})
	return idx[0], true
}

func (o *ORSResolver) estimate(branches []domain.Branch, dest domain.Coordinates) domain.DistanceResult {
	best := -1
	bestMeters := math.Inf(1)
	for i, b := range branches {
		d := b.Location.GreatCircleMeters(dest)
		if d < bestMeters || (d == bestMeters && branches[i].ID < branches[best].ID) {
			best, bestMeters = i, d
		}
	}
	meters := bestMeters * roadFactor
	return domain.DistanceResult{
		Branch:          copyBranch(branches[best]),
		DistanceMeters:  int(math.Round(meters)),
		DurationSeconds: int(math.Round(meters / estimateMetersPerSecs)),
		IsEstimate:      true,
		ComputedAt:      o.now(),
	}
}

func copyBranch(b domain.Branch) domain.Branch {
	if b.Location != nil {
		c := *b.Location
		b.Location = &c
	}
	return b
}
