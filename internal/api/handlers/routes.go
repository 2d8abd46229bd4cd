package handlers

import (
	"net/http"
	"transport-ops-service/internal/api/dto"
	"transport-ops-service/internal/domain"
	"transport-ops-service/internal/services"
)

// RouteHandler exposes route planning for ad-hoc previews and for jobs.
type RouteHandler struct {
	Routes *services.RouteService
}

// Plan assembles a route without saving it.
func (h *RouteHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req dto.PlanRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	route, err := h.Routes.Plan(r.Context(), toDrafts(req.Stops))
	if err != nil {
		writeDomainError(w, r, "plan route", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toRouteResponse("", route))
}

// PutJobRoute assembles a route and replaces the job's stored stops.
func (h *RouteHandler) PutJobRoute(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")

	var req dto.PlanRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	route, err := h.Routes.PlanJobRoute(r.Context(), jobID, toDrafts(req.Stops))
	if err != nil {
		writeDomainError(w, r, "plan job route", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toRouteResponse(jobID, route))
}

func (h *RouteHandler) GetJobRoute(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")

	route, err := h.Routes.JobRoute(r.Context(), jobID)
	if err != nil {
		writeDomainError(w, r, "get job route", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toRouteResponse(jobID, route))
}

func toDrafts(stops []dto.StopDraftRequest) []domain.StopDraft {
	out := make([]domain.StopDraft, 0, len(stops))
	for _, s := range stops {
		out = append(out, domain.StopDraft{
			Postcode:         s.Postcode,
			DisplayName:      s.DisplayName,
			PlannedLocalTime: s.PlannedLocalTime,
		})
	}
	return out
}

func toRouteResponse(jobID string, route *domain.RouteResult) dto.RouteResponse {
	res := dto.RouteResponse{
		JobID:              jobID,
		Stops:              make([]dto.ResolvedStopResponse, 0, len(route.Stops)),
		TotalDistanceMiles: route.TotalDistanceMiles,
	}
	for _, s := range route.Stops {
		res.Stops = append(res.Stops, dto.ResolvedStopResponse{
			Sequence:       s.Sequence,
			Postcode:       s.Postcode,
			DisplayName:    s.DisplayName,
			PlannedTimeUTC: s.PlannedTimeUTC,
			Latitude:       s.Latitude,
			Longitude:      s.Longitude,
		})
	}
	return res
}
