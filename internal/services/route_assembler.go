package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"transport-ops-service/internal/domain"
	"transport-ops-service/internal/platform/obs"
	"transport-ops-service/internal/ports"
)

const metersPerMile = 1609.344

// Layouts accepted for planned stop times entered as local wall-clock values.
var plannedTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// RouteAssembler turns an ordered list of stop drafts into geocoded stops and a
// road distance. It performs no persistence and never retries.
type RouteAssembler struct {
	Geocoder ports.Geocoder
	Distance ports.RouteDistanceProvider
	// Location planned local times are interpreted in. Nil means UTC.
	Location *time.Location
}

func NewRouteAssembler(g ports.Geocoder, d ports.RouteDistanceProvider, loc *time.Location) *RouteAssembler {
	return &RouteAssembler{Geocoder: g, Distance: d, Location: loc}
}

type normalizedDraft struct {
	draft   domain.StopDraft
	key     string
	display string
	planned *time.Time
}

// Assemble validates, geocodes and measures a route.
//
// The first draft is the collection point and the last the delivery point.
// Blank stop rows are dropped. Geocoding is all-or-nothing: every postcode that
// does not resolve is reported in a single GeocodingError and no routing call is made.
func (a *RouteAssembler) Assemble(
	ctx context.Context,
	drafts []domain.StopDraft,
) (_ *domain.RouteResult, err error) {
	defer obs.Time(ctx, "route.Assemble")(&err)

	if a.Geocoder == nil || a.Distance == nil {
		return nil, errors.New("assemble route: geocoder and distance provider are required")
	}

	norm, err := a.normalize(drafts)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(norm))
	displayByKey := make(map[string]string, len(norm))
	for _, n := range norm {
		if _, ok := displayByKey[n.key]; ok {
			continue
		}
		displayByKey[n.key] = n.display
		keys = append(keys, n.key)
	}

	results, err := a.Geocoder.Resolve(ctx, keys)
	if err != nil {
		return nil, &domain.GeocodingError{Err: err}
	}

	var missing []string
	for _, k := range keys {
		if r, ok := results[k]; !ok || !r.Found {
			missing = append(missing, displayByKey[k])
		}
	}
	if len(missing) > 0 {
		return nil, &domain.GeocodingError{Missing: missing}
	}

	stops := make([]domain.ResolvedStop, 0, len(norm))
	for i, n := range norm {
		coord := results[n.key].Coordinates
		lat, lon := coord.Lat, coord.Lon
		stops = append(stops, domain.ResolvedStop{
			Sequence:       i + 1,
			Postcode:       n.display,
			DisplayName:    n.draft.DisplayName,
			PlannedTimeUTC: n.planned,
			Latitude:       &lat,
			Longitude:      &lon,
		})
	}

	route := &domain.RouteResult{Stops: stops}
	coords, missingStop := route.Path()
	if missingStop != "" {
		return nil, &domain.GeocodingError{Missing: []string{missingStop}}
	}

	meters, err := a.Distance.RouteDistance(ctx, coords)
	if err != nil {
		var re *domain.RoutingError
		if errors.As(err, &re) {
			return nil, err
		}
		return nil, &domain.RoutingError{Msg: "routing service unavailable", Err: err}
	}
	if meters < 0 || math.IsNaN(meters) || math.IsInf(meters, 0) {
		return nil, &domain.RoutingError{Msg: fmt.Sprintf("invalid distance %v", meters)}
	}

	miles := metersToMiles(meters)
	route.TotalDistanceMiles = &miles
	return route, nil
}

// normalize canonicalises postcodes and planned times, rejecting input that
// cannot form a route before any network call is made.
func (a *RouteAssembler) normalize(drafts []domain.StopDraft) ([]normalizedDraft, error) {
	loc := a.Location
	if loc == nil {
		loc = time.UTC
	}

	out := make([]normalizedDraft, 0, len(drafts))
	for i, d := range drafts {
		key := domain.PostcodeKey(d.Postcode)
		if key == "" {
			continue
		}

		planned, err := parsePlannedTime(d.PlannedLocalTime, loc)
		if err != nil {
			return nil, domain.NewValidationError("stop %d: %v", i+1, err)
		}

		out = append(out, normalizedDraft{
			draft:   d,
			key:     key,
			display: domain.PostcodeDisplay(d.Postcode),
			planned: planned,
		})
	}

	if len(out) < 2 {
		return nil, domain.NewValidationError("a route needs a collection and a delivery postcode (got %d)", len(out))
	}
	return out, nil
}

// parsePlannedTime interprets a wall-clock value in loc and returns the UTC
// instant. Values that already carry an offset are taken as absolute.
func parsePlannedTime(raw *string, loc *time.Location) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	s := strings.TrimSpace(*raw)

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		utc := t.UTC()
		return &utc, nil
	}

	for _, layout := range plannedTimeLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		// Wall-clock values skipped by a DST transition are normalized forward
		// by the time package; they must not be accepted.
		if t.In(loc).Format(layout) != s {
			return nil, fmt.Errorf("planned time %q does not exist in %s", s, loc)
		}
		utc := t.UTC()
		return &utc, nil
	}
	return nil, fmt.Errorf("invalid planned time %q: expected YYYY-MM-DDTHH:MM", s)
}

func metersToMiles(meters float64) float64 {
	return math.Round(meters/metersPerMile*10) / 10
}
