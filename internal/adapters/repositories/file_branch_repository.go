package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"rental-quote-service/internal/domain"
	"sort"
	"strings"
	"sync"
)

type BranchSeed struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Lon     *float64 `json:"lon,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
}

// LoadBranchesJSON reads and validates a branch directory file.
func LoadBranchesJSON(path string) ([]domain.Branch, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load branches: read %q: %w", path, err)
	}

	var data []BranchSeed
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("load branches: parse json: %w", err)
	}

	seen := make(map[string]struct{}, len(data))
	out := make([]domain.Branch, 0, len(data))
	for i, item := range data {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return nil, fmt.Errorf("load branches: item %d: id cannot be empty", i+1)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("load branches: duplicate id %q", id)
		}
		seen[id] = struct{}{}

		br := domain.Branch{ID: id, Name: item.Name, Address: strings.TrimSpace(item.Address)}
		if item.Lon != nil && item.Lat != nil {
			br.Location = &domain.Coordinates{Lon: *item.Lon, Lat: *item.Lat}
		}
		if br.Location == nil && br.Address == "" {
			return nil, fmt.Errorf("load branches: branch %q needs an address or coordinates", id)
		}
		out = append(out, br)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FileBranchRepository serves a branch directory loaded once from JSON.
type FileBranchRepository struct {
	path string

	once     sync.Once
	branches []domain.Branch
	err      error
}

func NewFileBranchRepository(path string) *FileBranchRepository {
	return &FileBranchRepository{path: path}
}

func (r *FileBranchRepository) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.once.Do(func() {
		r.branches, r.err = LoadBranchesJSON(r.path)
	})
	if r.err != nil {
		return nil, r.err
	}
	return append([]domain.Branch(nil), r.branches...), nil
}
