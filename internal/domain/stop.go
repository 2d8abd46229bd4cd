package domain

import "time"

// StopDraft is a stop as entered by the user, before any lookup.
// The first draft is the collection point and the last is the delivery point.
type StopDraft struct {
	Postcode         string
	DisplayName      *string
	PlannedLocalTime *string
}

// ResolvedStop is a geocoded stop ready to be persisted.
// Sequence is 1-based and contiguous across a route.
type ResolvedStop struct {
	Sequence       int
	Postcode       string
	DisplayName    *string
	PlannedTimeUTC *time.Time
	Latitude       *float64
	Longitude      *float64
}

// Coordinates returns the stop position, or false when either axis is missing.
func (s ResolvedStop) Coordinates() (Coordinates, bool) {
	if s.Latitude == nil || s.Longitude == nil {
		return Coordinates{}, false
	}
	return Coordinates{Lon: *s.Longitude, Lat: *s.Latitude}, true
}
