package geocode

import (
	"context"
	"errors"
	"testing"
	"transport-ops-service/internal/domain"
)

type mapCache struct {
	m       map[string]domain.Coordinates
	readErr error
	puts    int
}

func (c *mapCache) GetMany(ctx context.Context, keys []string) (map[string]domain.Coordinates, error) {
	if c.readErr != nil {
		return nil, c.readErr
	}
	out := map[string]domain.Coordinates{}
	for _, k := range keys {
		if v, ok := c.m[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (c *mapCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	c.puts++
	for k, v := range results {
		c.m[k] = v
	}
	return nil
}

func TestCachedGeocoderOnlyLooksUpMisses(t *testing.T) {
	cache := &mapCache{m: map[string]domain.Coordinates{"WN50LR": {Lon: -2.66, Lat: 53.53}}}
	inner := NewMockGeocoder(map[string]domain.Coordinates{"WS138NF": {Lon: -1.82, Lat: 52.68}})
	g := NewCachedGeocoder(inner, cache)

	got, err := g.Resolve(context.Background(), []string{"WN50LR", "WS138NF", "ZZ11ZZ"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	batches := inner.Batches()
	if len(batches) != 1 || len(batches[0]) != 2 {
		t.Fatalf("inner batches = %v, want one batch of the 2 misses", batches)
	}
	if !got["WN50LR"].Found || !got["WS138NF"].Found || got["ZZ11ZZ"].Found {
		t.Fatalf("unexpected results %+v", got)
	}
	if _, cached := cache.m["ZZ11ZZ"]; cached {
		t.Fatal("not-found postcodes must not be cached")
	}
	if _, cached := cache.m["WS138NF"]; !cached {
		t.Fatal("fresh result should be cached")
	}

	// Second call is served entirely from cache apart from the unknown key.
	if _, err := g.Resolve(context.Background(), []string{"WS138NF"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.Batches()) != 1 {
		t.Fatalf("cache hit should not reach the inner geocoder")
	}
}

func TestCachedGeocoderDegradesOnCacheFailure(t *testing.T) {
	cache := &mapCache{m: map[string]domain.Coordinates{}, readErr: errors.New("cache down")}
	inner := NewMockGeocoder(map[string]domain.Coordinates{"WN50LR": {Lon: -2.66, Lat: 53.53}})

	got, err := NewCachedGeocoder(inner, cache).Resolve(context.Background(), []string{"WN50LR"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got["WN50LR"].Found {
		t.Fatal("expected lookup to fall through to inner geocoder")
	}
}

func TestCachedGeocoderPropagatesTransportError(t *testing.T) {
	inner := NewMockGeocoder(nil)
	inner.Err = errors.New("unreachable")

	if _, err := NewCachedGeocoder(inner, nil).Resolve(context.Background(), []string{"WN50LR"}); err == nil {
		t.Fatal("expected error")
	}
}
