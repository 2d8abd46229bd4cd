package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"transport-ops-service/internal/domain"
	"transport-ops-service/internal/platform/obs"
)

// ORSRouteProvider implements RouteDistanceProvider using the OpenRouteService
// directions endpoint. One provider, one attempt per call.
//
// The provider is safe for concurrent use.
type ORSRouteProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
}

// ORSOptions overrides provider defaults; zero values keep the default.
type ORSOptions struct {
	BaseURL string
	Profile string
	Timeout time.Duration
}

func NewORSRouteProvider(apiKey string, opts ORSOptions) (*ORSRouteProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSRouteProvider{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		profile: "driving-car",
	}
	if opts.BaseURL != "" {
		provider.baseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.Profile != "" {
		provider.profile = opts.Profile
	}
	if opts.Timeout > 0 {
		provider.session.Timeout = opts.Timeout
	}

	return provider, nil
}

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
	Units       string      `json:"units"`
}

type directionsResponse struct {
	Routes []struct {
		Summary *struct {
			// ORS omits zero-valued fields, e.g. when every point is the same.
			Distance *float64 `json:"distance"`
			Duration *float64 `json:"duration"`
		} `json:"summary"`
	} `json:"routes"`
}

type orsErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// RouteDistance returns the drivable distance in meters through coords in order.
func (o *ORSRouteProvider) RouteDistance(
	ctx context.Context,
	coords []domain.Coordinates,
) (_ float64, err error) {
	defer obs.Time(ctx, "ors.RouteDistance")(&err)

	if len(coords) < 2 {
		return 0, &domain.RoutingError{Msg: fmt.Sprintf("at least 2 coordinates required, got %d", len(coords))}
	}

	points := make([][]float64, 0, len(coords))
	for _, c := range coords {
		points = append(points, c.CoordsToList())
	}

	payload, err := json.Marshal(directionsRequest{Coordinates: points, Units: "m"})
	if err != nil {
		return 0, fmt.Errorf("marshal directions request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s", o.baseURL, o.profile)
	req, err := o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}

	resp, err := o.do(req)
	if err != nil {
		if code, ok := statusCode(err); ok && (code == http.StatusNotFound || code == http.StatusBadRequest) {
			return 0, &domain.RoutingError{Msg: "no drivable route between stops", Err: describeORSError(err)}
		}
		return 0, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return 0, &domain.RoutingError{Msg: "malformed directions response", Err: err}
	}

	if len(dr.Routes) == 0 {
		return 0, &domain.RoutingError{Msg: "no drivable route between stops"}
	}

	summary := dr.Routes[0].Summary
	if summary == nil {
		return 0, &domain.RoutingError{Msg: "malformed directions response"}
	}
	meters := summary.Distance
	if meters == nil {
		return 0, nil
	}
	if *meters < 0 {
		return 0, &domain.RoutingError{Msg: fmt.Sprintf("negative distance %v in directions response", *meters)}
	}

	return *meters, nil
}

// describeORSError surfaces the ORS error message when the body carries one.
func describeORSError(err error) error {
	var he *httpStatusError
	if !errors.As(err, &he) {
		return err
	}
	var body orsErrorBody
	if jerr := json.Unmarshal([]byte(he.Body), &body); jerr == nil && body.Error.Message != "" {
		return fmt.Errorf("ORS error %d: %s", body.Error.Code, body.Error.Message)
	}
	return err
}
