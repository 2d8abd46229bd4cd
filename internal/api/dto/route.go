package dto

import "time"

type StopDraftRequest struct {
	Postcode         string  `json:"postcode"`
	DisplayName      *string `json:"display_name"`
	PlannedLocalTime *string `json:"planned_local_time"`
}

type PlanRouteRequest struct {
	Stops []StopDraftRequest `json:"stops"`
}

type ResolvedStopResponse struct {
	Sequence       int        `json:"sequence"`
	Postcode       string     `json:"postcode"`
	DisplayName    *string    `json:"display_name"`
	PlannedTimeUTC *time.Time `json:"planned_time_utc"`
	Latitude       *float64   `json:"latitude"`
	Longitude      *float64   `json:"longitude"`
}

type RouteResponse struct {
	JobID              string                 `json:"job_id,omitempty"`
	Stops              []ResolvedStopResponse `json:"stops"`
	TotalDistanceMiles *float64               `json:"total_distance_miles"`
}
