package geocode

import (
	"context"
	"fmt"
	"transport-ops-service/internal/domain"
	"transport-ops-service/internal/platform/logger"
	"transport-ops-service/internal/ports"
)

// CachedGeocoder checks a persistent cache before delegating to the wrapped
// geocoder. Only found postcodes are cached; cache failures are logged and the
// lookup falls through to the network.
type CachedGeocoder struct {
	next  ports.Geocoder
	cache ports.GeocodeCache
}

func NewCachedGeocoder(next ports.Geocoder, cache ports.GeocodeCache) *CachedGeocoder {
	return &CachedGeocoder{next: next, cache: cache}
}

func (c *CachedGeocoder) Resolve(ctx context.Context, keys []string) (map[string]ports.GeocodeResult, error) {
	uniq := uniqueKeys(keys)
	out := make(map[string]ports.GeocodeResult, len(uniq))
	if len(uniq) == 0 {
		return out, nil
	}

	hits := map[string]domain.Coordinates{}
	if c.cache != nil {
		var err error
		hits, err = c.cache.GetMany(ctx, uniq)
		if err != nil {
			logger.Warn("geocode cache read failed", "err", err)
			hits = map[string]domain.Coordinates{}
		}
	}

	misses := make([]string, 0, len(uniq))
	for _, k := range uniq {
		if coord, ok := hits[k]; ok {
			out[k] = ports.GeocodeResult{Coordinates: coord, Found: true}
			continue
		}
		misses = append(misses, k)
	}

	if len(misses) == 0 {
		return out, nil
	}

	fresh, err := c.next.Resolve(ctx, misses)
	if err != nil {
		return nil, fmt.Errorf("cached geocoder: %w", err)
	}

	toCache := make(map[string]domain.Coordinates, len(fresh))
	for _, k := range misses {
		r, ok := fresh[k]
		if !ok {
			r = ports.GeocodeResult{Found: false}
		}
		out[k] = r
		if r.Found {
			toCache[k] = r.Coordinates
		}
	}

	if c.cache != nil && len(toCache) > 0 {
		if err := c.cache.PutMany(ctx, toCache); err != nil {
			logger.Warn("geocode cache write failed", "err", err)
		}
	}

	return out, nil
}
