package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
	_ "time/tzdata"
	"transport-ops-service/internal/adapters/distance"
	"transport-ops-service/internal/adapters/geocode"
	"transport-ops-service/internal/domain"
)

var knownPostcodes = map[string]domain.Coordinates{
	"WN50LR":  {Lon: -2.6832, Lat: 53.5412},
	"WS138NF": {Lon: -1.8281, Lat: 52.6934},
	"M11AE":   {Lon: -2.2374, Lat: 53.4808},
}

func strPtr(s string) *string { return &s }

func drafts(postcodes ...string) []domain.StopDraft {
	out := make([]domain.StopDraft, 0, len(postcodes))
	for _, p := range postcodes {
		out = append(out, domain.StopDraft{Postcode: p})
	}
	return out
}

func TestAssembleSharedCollectionAndDelivery(t *testing.T) {
	geo := geocode.NewMockGeocoder(knownPostcodes)
	router := distance.NewMockRouteProvider(160934.4)
	a := NewRouteAssembler(geo, router, time.UTC)

	got, err := a.Assemble(context.Background(), drafts("wn5 0lr", "WS138NF", "wn50lr"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Stops) != 3 {
		t.Fatalf("got %d stops, want 3", len(got.Stops))
	}
	for i, s := range got.Stops {
		if s.Sequence != i+1 {
			t.Fatalf("stop %d has sequence %d", i, s.Sequence)
		}
		if s.Latitude == nil || s.Longitude == nil {
			t.Fatalf("stop %d missing coordinates", i)
		}
	}
	if got.Stops[0].Postcode != "WN5 0LR" || got.Stops[2].Postcode != "WN5 0LR" {
		t.Fatalf("unexpected display postcodes: %q, %q", got.Stops[0].Postcode, got.Stops[2].Postcode)
	}
	if got.TotalDistanceMiles == nil || *got.TotalDistanceMiles != 100 {
		t.Fatalf("total distance = %v, want 100", got.TotalDistanceMiles)
	}

	batches := geo.Batches()
	if len(batches) != 1 {
		t.Fatalf("geocoder called %d times, want 1", len(batches))
	}
	if want := []string{"WN50LR", "WS138NF"}; !reflect.DeepEqual(batches[0], want) {
		t.Fatalf("geocode batch = %v, want %v", batches[0], want)
	}

	calls := router.Calls()
	if len(calls) != 1 || len(calls[0]) != 3 {
		t.Fatalf("routing calls = %v, want one call with 3 points", calls)
	}
	if calls[0][0] != calls[0][2] {
		t.Fatalf("collection and delivery should share coordinates: %v", calls[0])
	}
}

func TestAssembleReportsEveryMissingPostcode(t *testing.T) {
	geo := geocode.NewMockGeocoder(knownPostcodes)
	router := distance.NewMockRouteProvider(1000)
	a := NewRouteAssembler(geo, router, time.UTC)

	_, err := a.Assemble(context.Background(), drafts("zz1 1zz", "WS13 8NF", "xx99xx"))

	var ge *domain.GeocodingError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GeocodingError, got %v", err)
	}
	if want := []string{"ZZ1 1ZZ", "XX9 9XX"}; !reflect.DeepEqual(ge.Missing, want) {
		t.Fatalf("missing = %v, want %v", ge.Missing, want)
	}
	if len(router.Calls()) != 0 {
		t.Fatal("routing must not be called when geocoding fails")
	}
}

func TestAssembleValidation(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	tests := []struct {
		name   string
		loc    *time.Location
		drafts []domain.StopDraft
	}{
		{"empty", time.UTC, nil},
		{"single stop", time.UTC, drafts("WN5 0LR")},
		{"blank rows dropped", time.UTC, drafts("WN5 0LR", "   ", "")},
		{"bad planned time", time.UTC, []domain.StopDraft{
			{Postcode: "WN5 0LR", PlannedLocalTime: strPtr("tomorrow")},
			{Postcode: "WS13 8NF"},
		}},
		{"planned time in spring-forward gap", london, []domain.StopDraft{
			{Postcode: "WN5 0LR", PlannedLocalTime: strPtr("2026-03-29T01:30")},
			{Postcode: "WS13 8NF"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geo := geocode.NewMockGeocoder(knownPostcodes)
			a := NewRouteAssembler(geo, distance.NewMockRouteProvider(1), tt.loc)

			_, err := a.Assemble(context.Background(), tt.drafts)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(geo.Batches()) != 0 {
				t.Fatal("validation errors must be raised before geocoding")
			}
		})
	}
}

func TestAssembleRoutingFailure(t *testing.T) {
	router := distance.NewMockRouteProvider(0)
	router.Err = errors.New("connection refused")
	a := NewRouteAssembler(geocode.NewMockGeocoder(knownPostcodes), router, time.UTC)

	_, err := a.Assemble(context.Background(), drafts("WN5 0LR", "M1 1AE"))
	var re *domain.RoutingError
	if !errors.As(err, &re) {
		t.Fatalf("expected RoutingError, got %v", err)
	}
}

func TestAssembleGeocoderTransportFailure(t *testing.T) {
	geo := geocode.NewMockGeocoder(knownPostcodes)
	geo.Err = errors.New("status 503")
	a := NewRouteAssembler(geo, distance.NewMockRouteProvider(1), time.UTC)

	_, err := a.Assemble(context.Background(), drafts("WN5 0LR", "M1 1AE"))
	var ge *domain.GeocodingError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GeocodingError, got %v", err)
	}
}

func TestAssemblePlannedTimeRoundTrip(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	a := NewRouteAssembler(geocode.NewMockGeocoder(knownPostcodes), distance.NewMockRouteProvider(5000), london)

	winter, summer := "2026-01-15T08:30", "2026-07-15T14:45"
	got, err := a.Assemble(context.Background(), []domain.StopDraft{
		{Postcode: "WN5 0LR", PlannedLocalTime: &winter, DisplayName: strPtr("Depot")},
		{Postcode: "M1 1AE"},
		{Postcode: "WS13 8NF", PlannedLocalTime: &summer},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := got.Stops[0].PlannedTimeUTC
	if first == nil || first.Location() != time.UTC || first.Hour() != 8 {
		t.Fatalf("winter time should equal UTC, got %v", first)
	}
	last := got.Stops[2].PlannedTimeUTC
	if last == nil || last.Hour() != 13 {
		t.Fatalf("summer time should be an hour behind in UTC, got %v", last)
	}
	if got.Stops[1].PlannedTimeUTC != nil {
		t.Fatal("stop without a planned time should stay nil")
	}

	for i, want := range map[int]string{0: winter, 2: summer} {
		back := got.Stops[i].PlannedTimeUTC.In(london).Format("2006-01-02T15:04")
		if back != want {
			t.Fatalf("stop %d round trip = %q, want %q", i, back, want)
		}
	}
	if got.Stops[0].DisplayName == nil || *got.Stops[0].DisplayName != "Depot" {
		t.Fatal("display name not carried through")
	}
}

func TestMetersToMiles(t *testing.T) {
	tests := []struct {
		meters float64
		want   float64
	}{
		{0, 0},
		{1609.344, 1},
		{16093.44, 10},
		{2414.016, 1.5},
		{1000, 0.6},
	}
	for _, tt := range tests {
		if got := metersToMiles(tt.meters); got != tt.want {
			t.Errorf("metersToMiles(%v) = %v, want %v", tt.meters, got, tt.want)
		}
	}
}
