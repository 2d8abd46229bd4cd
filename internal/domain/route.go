package domain

// RouteResult is the output of route assembly.
// Stops[0] is the collection point, Stops[len-1] the delivery point and
// everything between is a waypoint in traversal order.
type RouteResult struct {
	Stops              []ResolvedStop
	TotalDistanceMiles *float64
}

// Path returns the ordered stop coordinates. The second value is the display
// postcode of the first stop without a position, if any.
func (r *RouteResult) Path() ([]Coordinates, string) {
	path := make([]Coordinates, 0, len(r.Stops))
	for _, s := range r.Stops {
		c, ok := s.Coordinates()
		if !ok {
			return nil, s.Postcode
		}
		path = append(path, c)
	}
	return path, ""
}
