package geocode

import (
	"context"
	"sync"
	"transport-ops-service/internal/domain"
	"transport-ops-service/internal/ports"
)

// MockGeocoder resolves from a fixed table and records every batch it receives.
type MockGeocoder struct {
	Known map[string]domain.Coordinates
	Err   error

	mu      sync.Mutex
	batches [][]string
}

func NewMockGeocoder(known map[string]domain.Coordinates) *MockGeocoder {
	return &MockGeocoder{Known: known}
}

func (m *MockGeocoder) Resolve(ctx context.Context, keys []string) (map[string]ports.GeocodeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	batch := make([]string, len(keys))
	copy(batch, keys)
	m.batches = append(m.batches, batch)

	if m.Err != nil {
		return nil, m.Err
	}

	out := make(map[string]ports.GeocodeResult, len(keys))
	for _, k := range keys {
		c, ok := m.Known[k]
		out[k] = ports.GeocodeResult{Coordinates: c, Found: ok}
	}
	return out, nil
}

func (m *MockGeocoder) Batches() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches
}
