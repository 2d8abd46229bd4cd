package geocode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"transport-ops-service/internal/domain"
	"transport-ops-service/internal/platform/obs"
	"transport-ops-service/internal/ports"
)

// postcodes.io accepts at most 100 postcodes per bulk lookup.
const maxBulkLookup = 100

// PostcodesIOGeocoder resolves UK postcodes with the postcodes.io bulk lookup.
type PostcodesIOGeocoder struct {
	session *http.Client
	baseURL string
}

func NewPostcodesIOGeocoder(baseURL string, timeout time.Duration) *PostcodesIOGeocoder {
	if baseURL == "" {
		baseURL = "https://api.postcodes.io"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PostcodesIOGeocoder{
		session: &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type bulkRequest struct {
	Postcodes []string `json:"postcodes"`
}

type bulkResponse struct {
	Status int `json:"status"`
	Result []struct {
		Query  string `json:"query"`
		Result *struct {
			Postcode  string   `json:"postcode"`
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		} `json:"result"`
	} `json:"result"`
}

// Resolve looks up every key, one request per chunk of 100.
func (g *PostcodesIOGeocoder) Resolve(
	ctx context.Context,
	keys []string,
) (_ map[string]ports.GeocodeResult, err error) {
	defer obs.Time(ctx, "postcodes.Resolve")(&err)

	uniq := uniqueKeys(keys)
	out := make(map[string]ports.GeocodeResult, len(uniq))

	for start := 0; start < len(uniq); start += maxBulkLookup {
		end := min(start+maxBulkLookup, len(uniq))

		found, err := g.lookupChunk(ctx, uniq[start:end])
		if err != nil {
			return nil, fmt.Errorf("postcodes lookup: %w", err)
		}
		for k, v := range found {
			out[k] = v
		}
	}

	// The contract requires an entry per submitted key.
	for _, k := range uniq {
		if _, ok := out[k]; !ok {
			out[k] = ports.GeocodeResult{Found: false}
		}
	}

	return out, nil
}

func (g *PostcodesIOGeocoder) lookupChunk(ctx context.Context, keys []string) (map[string]ports.GeocodeResult, error) {
	payload, err := json.Marshal(bulkRequest{Postcodes: keys})
	if err != nil {
		return nil, fmt.Errorf("marshal bulk request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/postcodes", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status: %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var decoded bulkResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode bulk response: %w", err)
	}

	out := make(map[string]ports.GeocodeResult, len(keys))
	for _, item := range decoded.Result {
		key := domain.PostcodeKey(item.Query)
		r := item.Result
		// Terminated or non-geographic postcodes come back without a position.
		if r == nil || r.Latitude == nil || r.Longitude == nil {
			out[key] = ports.GeocodeResult{Found: false}
			continue
		}
		c := domain.Coordinates{Lon: *r.Longitude, Lat: *r.Latitude}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("postcode %s: %w", key, err)
		}
		out[key] = ports.GeocodeResult{Coordinates: c, Found: true}
	}

	return out, nil
}

// uniqueKeys canonicalises and de-duplicates keys, keeping first-seen order.
func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	uniq := make([]string, 0, len(keys))
	for _, k := range keys {
		k = domain.PostcodeKey(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	return uniq
}
