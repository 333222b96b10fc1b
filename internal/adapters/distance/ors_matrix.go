package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"rental-quote-service/internal/apperr"
	"rental-quote-service/internal/domain"
	"rental-quote-service/internal/platform/obs"
)

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
	Sources      []int       `json:"sources"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// matrixCell is one branch -> destination metric. ok is false when the
// routing engine found no route.
type matrixCell struct {
	meters  int
	seconds int
	ok      bool
}

// fetchMatrixColumn retrieves distance and duration from every branch to a
// single destination in one /v2/matrix call. Each branch must have a location.
func (o *ORSResolver) fetchMatrixColumn(
	ctx context.Context,
	branches []domain.Branch,
	destination domain.Coordinates,
) (_ []matrixCell, err error) {
	defer obs.Time(ctx, o.logger, "ors.matrix")(&err)

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	locations := make([][]float64, 0, len(branches)+1)
	sources := make([]int, 0, len(branches))
	for i, b := range branches {
		locations = append(locations, b.Location.CoordsToList())
		sources = append(sources, i)
	}
	locations = append(locations, destination.CoordsToList())

	payload, err := json.Marshal(matrixRequest{
		Locations:    locations,
		Destinations: []int{len(branches)},
		Metrics:      []string{"distance", "duration"},
		Sources:      sources,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, &apperr.ProviderError{Op: "matrix", Err: err}
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, &apperr.ProviderError{Op: "matrix", Err: fmt.Errorf("decode matrix response: %w", err)}
	}

	if len(mr.Distances) != len(branches) || len(mr.Durations) != len(branches) {
		return nil, &apperr.ProviderError{Op: "matrix", Err: fmt.Errorf(
			"expected %d source rows; got distances=%d durations=%d",
			len(branches), len(mr.Distances), len(mr.Durations),
		)}
	}

	cells := make([]matrixCell, len(branches))
	for i := range branches {
		if len(mr.Distances[i]) != 1 || len(mr.Durations[i]) != 1 {
			return nil, &apperr.ProviderError{Op: "matrix", Err: fmt.Errorf("row %d: expected 1 destination column", i)}
		}
		m, s := mr.Distances[i][0], mr.Durations[i][0]
		if m == nil || s == nil {
			continue
		}
		// ORS returns float metrics; round to nearest integer for domain consistency.
		cells[i] = matrixCell{
			meters:  int(math.Round(*m)),
			seconds: int(math.Round(*s)),
			ok:      true,
		}
	}

	return cells, nil
}
