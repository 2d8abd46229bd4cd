package ports

import (
	"context"
	"transport-ops-service/internal/domain"
)

// Contract for retrieving the road distance of an ordered path.
type RouteDistanceProvider interface {
	// Return the total drivable distance in meters visiting coords in order.
	RouteDistance(ctx context.Context, coords []domain.Coordinates) (float64, error)
}
