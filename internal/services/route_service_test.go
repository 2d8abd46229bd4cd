package services

import (
	"context"
	"errors"
	"testing"
	"time"
	"transport-ops-service/internal/adapters/distance"
	"transport-ops-service/internal/adapters/events"
	"transport-ops-service/internal/adapters/geocode"
	"transport-ops-service/internal/adapters/repositories"
	"transport-ops-service/internal/domain"
	"transport-ops-service/internal/ports"
)

func newRouteFixture(router *distance.MockRouteProvider) (*repositories.MemoryStore, *events.RecordingPublisher, *RouteService) {
	store := repositories.NewMemoryStore()
	store.PutJob("job-1", "", syncMonday, repositories.JobStatusPlanned)
	pub := &events.RecordingPublisher{}
	svc := &RouteService{
		Assembler: NewRouteAssembler(geocode.NewMockGeocoder(knownPostcodes), router, time.UTC),
		Routes:    store,
		Events:    pub,
	}
	return store, pub, svc
}

func TestPlanJobRoutePersists(t *testing.T) {
	ctx := context.Background()
	_, pub, svc := newRouteFixture(distance.NewMockRouteProvider(16093.44))

	if _, err := svc.PlanJobRoute(ctx, "job-1", drafts("WN5 0LR", "WS13 8NF")); err != nil {
		t.Fatalf("PlanJobRoute: %v", err)
	}

	got, err := svc.JobRoute(ctx, "job-1")
	if err != nil {
		t.Fatalf("JobRoute: %v", err)
	}
	if len(got.Stops) != 2 || *got.TotalDistanceMiles != 10 {
		t.Fatalf("unexpected stored route: %+v", got)
	}
	if evts := pub.Events(); len(evts) != 1 || evts[0].Event != ports.EventRoutePlanned {
		t.Fatalf("events = %+v", evts)
	}
}

func TestPlanJobRouteSavesNothingOnFailure(t *testing.T) {
	ctx := context.Background()
	router := distance.NewMockRouteProvider(0)
	router.Err = &domain.RoutingError{Msg: "no route"}
	_, pub, svc := newRouteFixture(router)

	_, err := svc.PlanJobRoute(ctx, "job-1", drafts("WN5 0LR", "WS13 8NF"))
	var re *domain.RoutingError
	if !errors.As(err, &re) {
		t.Fatalf("expected RoutingError, got %v", err)
	}

	got, _ := svc.JobRoute(ctx, "job-1")
	if len(got.Stops) != 0 {
		t.Fatalf("failed plan persisted stops: %+v", got)
	}
	if len(pub.Events()) != 0 {
		t.Fatal("no event expected")
	}
}

func TestPlanJobRouteUnknownJob(t *testing.T) {
	_, _, svc := newRouteFixture(distance.NewMockRouteProvider(1))

	_, err := svc.PlanJobRoute(context.Background(), "job-404", drafts("WN5 0LR", "WS13 8NF"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
