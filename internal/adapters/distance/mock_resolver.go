package distance

import (
	"context"
	"rental-quote-service/internal/apperr"
	"rental-quote-service/internal/domain"
	"sync"
	"sync/atomic"
	"time"
)

// MockResolver serves canned results keyed by normalized address.
type MockResolver struct {
	mu      sync.RWMutex
	results map[string]domain.DistanceResult
	err     error

	// Gate, when set, blocks every call until it is closed or the context ends.
	Gate <-chan struct{}
	// Delay simulates provider latency.
	Delay time.Duration

	calls atomic.Int64
}

func NewMockResolver(results map[string]domain.DistanceResult) *MockResolver {
	m := &MockResolver{results: make(map[string]domain.DistanceResult, len(results))}
	for addr, r := range results {
		m.results[domain.NormalizeAddress(addr)] = r
	}
	return m
}

// SetError makes every subsequent call fail with err (nil clears it).
func (m *MockResolver) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockResolver) Set(address string, r domain.DistanceResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[domain.NormalizeAddress(address)] = r
}

// Calls returns how many times Resolve was invoked.
func (m *MockResolver) Calls() int { return int(m.calls.Load()) }

func (m *MockResolver) Resolve(
	ctx context.Context,
	origins []domain.Branch,
	destination domain.DeliveryLocation,
) (domain.DistanceResult, error) {
	m.calls.Add(1)

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return domain.DistanceResult{}, &apperr.ProviderError{Op: "mock", Err: ctx.Err()}
		}
	}

	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return domain.DistanceResult{}, &apperr.ProviderError{Op: "mock", Err: ctx.Err()}
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return domain.DistanceResult{}, m.err
	}
	r, ok := m.results[destination.Normalized]
	if !ok {
		return domain.DistanceResult{}, &apperr.InvalidAddressError{Address: destination.Raw}
	}
	return r, nil
}
