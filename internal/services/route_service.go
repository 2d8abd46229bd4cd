package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"transport-ops-service/internal/domain"
	"transport-ops-service/internal/platform/logger"
	"transport-ops-service/internal/ports"
)

// RouteService assembles a job's route and persists it only once the whole
// pipeline has succeeded.
type RouteService struct {
	Assembler *RouteAssembler
	Routes    ports.RouteRepository
	Events    ports.EventPublisher
}

type routePlannedEvent struct {
	JobID              string   `json:"job_id"`
	Stops              int      `json:"stops"`
	TotalDistanceMiles *float64 `json:"total_distance_miles"`
}

func (s *RouteService) Plan(ctx context.Context, drafts []domain.StopDraft) (*domain.RouteResult, error) {
	return s.Assembler.Assemble(ctx, drafts)
}

// PlanJobRoute assembles the route and replaces the job's stored stops.
func (s *RouteService) PlanJobRoute(ctx context.Context, jobID string, drafts []domain.StopDraft) (*domain.RouteResult, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, domain.NewValidationError("job id is required")
	}

	route, err := s.Assembler.Assemble(ctx, drafts)
	if err != nil {
		return nil, err
	}

	if err := s.Routes.SaveRoute(ctx, jobID, route); err != nil {
		return nil, fmt.Errorf("plan job route: %w", err)
	}

	if s.Events != nil {
		evt := routePlannedEvent{JobID: jobID, Stops: len(route.Stops), TotalDistanceMiles: route.TotalDistanceMiles}
		if err := s.Events.Publish(ctx, ports.EventRoutePlanned, jobID, evt); err != nil {
			logger.Warn("publish route planned failed", "job_id", jobID, "err", err)
		}
	}

	return route, nil
}

func (s *RouteService) JobRoute(ctx context.Context, jobID string) (*domain.RouteResult, error) {
	route, err := s.Routes.GetRoute(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("job route: %w", err)
	}
	return route, nil
}
