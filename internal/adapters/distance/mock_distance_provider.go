package distance

import (
	"context"
	"sync"
	"transport-ops-service/internal/domain"
)

// MockRouteProvider returns a fixed distance, or Err, and records every call.
type MockRouteProvider struct {
	Meters float64
	Err    error

	mu    sync.Mutex
	calls [][]domain.Coordinates
}

func NewMockRouteProvider(meters float64) *MockRouteProvider {
	return &MockRouteProvider{Meters: meters}
}

func (p *MockRouteProvider) RouteDistance(ctx context.Context, coords []domain.Coordinates) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cp := make([]domain.Coordinates, len(coords))
	copy(cp, coords)
	p.calls = append(p.calls, cp)

	if p.Err != nil {
		return 0, p.Err
	}
	return p.Meters, nil
}

func (p *MockRouteProvider) Calls() [][]domain.Coordinates {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
