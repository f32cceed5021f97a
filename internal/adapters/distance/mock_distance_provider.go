package distance

import (
	"context"
	"fmt"
	"sync/atomic"
	"temple-locator-service/internal/domain"
	"temple-locator-service/internal/ports"
)

type MockPair struct {
	From, To domain.Coordinates
	Meters   int
	Seconds  int
}

// MockDistanceProvider answers from a fixed table and errors on unknown pairs.
type MockDistanceProvider struct {
	m     map[string]ports.DistanceResult
	calls atomic.Int64
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[string]ports.DistanceResult, len(pairs))
	for _, p := range pairs {
		m[pairKey(p.From, p.To)] = ports.DistanceResult{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockDistanceProvider{m: m}
}

func (p *MockDistanceProvider) GetDistance(ctx context.Context, origin, destination domain.Coordinates) (ports.DistanceResult, error) {
	p.calls.Add(1)

	if err := ctx.Err(); err != nil {
		return ports.DistanceResult{}, err
	}

	r, ok := p.m[pairKey(origin, destination)]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("missing pair %v -> %v", origin, destination)
	}

	return r, nil
}

// Calls reports how many lookups were made.
func (p *MockDistanceProvider) Calls() int64 { return p.calls.Load() }

func pairKey(a, b domain.Coordinates) string {
	return fmt.Sprintf("%.6f,%.6f|%.6f,%.6f", a.Lat, a.Lng, b.Lat, b.Lng)
}
