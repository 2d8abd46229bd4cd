package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakePostcodesAPI answers bulk lookups for known postcodes; "NOPOS" postcodes
// resolve without a position and "OMIT" postcodes are left out of the response.
func fakePostcodesAPI(t *testing.T, known map[string][2]float64, requests *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*requests++
		if r.Method != http.MethodPost || r.URL.Path != "/postcodes" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		var req bulkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(req.Postcodes) > maxBulkLookup {
			t.Errorf("chunk of %d exceeds limit", len(req.Postcodes))
		}

		type item struct {
			Query  string         `json:"query"`
			Result map[string]any `json:"result"`
		}
		resp := struct {
			Status int    `json:"status"`
			Result []item `json:"result"`
		}{Status: 200}

		for _, pc := range req.Postcodes {
			switch {
			case pc == "OMIT":
				continue
			case pc == "NOPOS":
				resp.Result = append(resp.Result, item{Query: pc, Result: map[string]any{"postcode": pc, "latitude": nil, "longitude": nil}})
			default:
				ll, ok := known[pc]
				if !ok {
					resp.Result = append(resp.Result, item{Query: pc})
					continue
				}
				resp.Result = append(resp.Result, item{Query: pc, Result: map[string]any{"postcode": pc, "latitude": ll[0], "longitude": ll[1]}})
			}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPostcodesIOResolve(t *testing.T) {
	requests := 0
	srv := fakePostcodesAPI(t, map[string][2]float64{
		"WN50LR":  {53.5370, -2.6647},
		"WS138NF": {52.6870, -1.8255},
	}, &requests)

	g := NewPostcodesIOGeocoder(srv.URL, 0)
	got, err := g.Resolve(context.Background(), []string{"wn5 0lr", "WS138NF", "WN50LR", "ZZ99ZZ", "NOPOS", "OMIT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if requests != 1 {
		t.Fatalf("requests = %d, want 1 batch", requests)
	}
	if len(got) != 5 {
		t.Fatalf("got %d results, want one per unique key: %v", len(got), got)
	}

	wn := got["WN50LR"]
	if !wn.Found || wn.Coordinates.Lat != 53.5370 || wn.Coordinates.Lon != -2.6647 {
		t.Errorf("WN50LR = %+v", wn)
	}
	for _, k := range []string{"ZZ99ZZ", "NOPOS", "OMIT"} {
		r, ok := got[k]
		if !ok {
			t.Errorf("%s missing from results", k)
			continue
		}
		if r.Found {
			t.Errorf("%s should be not found", k)
		}
	}
}

func TestPostcodesIOResolveChunks(t *testing.T) {
	requests := 0
	known := map[string][2]float64{}
	keys := make([]string, 0, 150)
	for i := 0; i < 150; i++ {
		k := fmt.Sprintf("AB%dCD", i)
		known[k] = [2]float64{50, -1}
		keys = append(keys, k)
	}
	srv := fakePostcodesAPI(t, known, &requests)

	got, err := NewPostcodesIOGeocoder(srv.URL, 0).Resolve(context.Background(), keys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requests != 2 {
		t.Fatalf("requests = %d, want 2", requests)
	}
	if len(got) != 150 {
		t.Fatalf("got %d results, want 150", len(got))
	}
}

func TestPostcodesIOTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := NewPostcodesIOGeocoder(srv.URL, 0).Resolve(context.Background(), []string{"WN50LR"}); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestPostcodesIORejectsOutOfRangeCoordinates(t *testing.T) {
	requests := 0
	srv := fakePostcodesAPI(t, map[string][2]float64{"WN50LR": {153.5, -2.6}}, &requests)

	if _, err := NewPostcodesIOGeocoder(srv.URL, 0).Resolve(context.Background(), []string{"WN50LR"}); err == nil {
		t.Fatal("expected error for latitude outside [-90, 90]")
	}
}
