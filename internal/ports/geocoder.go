package ports

import (
	"context"
	"transport-ops-service/internal/domain"
)

// Outcome of looking up a single postcode key.
type GeocodeResult struct {
	Coordinates domain.Coordinates
	Found       bool
}

// Contract for resolving canonical postcode keys to coordinates.
type Geocoder interface {
	// Resolve every key in one logical batch. The result holds an entry for every
	// submitted key; a key that does not exist is reported with Found=false.
	// Errors are reserved for transport failures.
	Resolve(ctx context.Context, keys []string) (map[string]GeocodeResult, error)
}

// Persistent store of previously resolved postcodes.
type GeocodeCache interface {
	GetMany(ctx context.Context, keys []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
