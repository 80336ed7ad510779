package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/mdrp-sim/go-engine/internal/logger"
	"github.com/mdrp-sim/go-engine/internal/sim/objects"
)

// OSRMClient talks to an OSRM-compatible routing service over HTTP,
// matching the URL and response shape of spec.md §6. Requests are
// capped by a token-bucket limiter (golang.org/x/time/rate) and
// retried with exponential backoff (cenkalti/backoff/v5) before
// falling back to a direct two-stop route — ported from
// services/osrm_service.py's bare except-then-fallback, with an added
// bounded retry so one slow response doesn't immediately degrade
// every in-flight leg to the straight line.
type OSRMClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	MaxRetries int
	Logger     *logger.Logger
}

// NewOSRMClient builds a client with the given base URL, request
// timeout, rate limit (requests/sec and burst), and retry budget.
func NewOSRMClient(baseURL string, timeout time.Duration, rps float64, burst, maxRetries int, log *logger.Logger) *OSRMClient {
	return &OSRMClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		Limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		MaxRetries: maxRetries,
		Logger:     log,
	}
}

type osrmResponse struct {
	Routes []struct {
		Legs []struct {
			Steps []struct {
				Maneuver struct {
					Location [2]float64 `json:"location"`
				} `json:"maneuver"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

func (c *OSRMClient) GetRoute(ctx context.Context, origin, dest objects.Location) (*objects.Route, error) {
	route, err := backoff.Retry(ctx, func() (*objects.Route, error) {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		return c.fetchRoute(ctx, origin, dest)
	}, backoff.WithMaxTries(uint(maxInt(1, c.MaxRetries))))

	if err != nil {
		if c.Logger != nil {
			c.Logger.Warn("osrm: falling back to direct route after transport failure")
		}
		return fallbackRoute(origin, dest), nil
	}
	return route, nil
}

func (c *OSRMClient) fetchRoute(ctx context.Context, origin, dest objects.Location) (*objects.Route, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?alternatives=false&steps=true",
		c.BaseURL, origin.Lng, origin.Lat, dest.Lng, dest.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return nil, fmt.Errorf("osrm: unexpected status %d", resp.StatusCode)
	}

	var decoded osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}

	if len(decoded.Routes) == 0 || len(decoded.Routes[0].Legs) == 0 {
		return fallbackRoute(origin, dest), nil
	}

	steps := decoded.Routes[0].Legs[0].Steps
	stops := make([]*objects.Stop, 0, len(steps))
	for ix, step := range steps {
		lng, lat := step.Maneuver.Location[0], step.Maneuver.Location[1]
		stops = append(stops, &objects.Stop{
			Location: objects.Location{Lat: lat, Lng: lng},
			Position: ix,
		})
	}

	return &objects.Route{Stops: stops, Orders: map[int64]*objects.Order{}}, nil
}

func fallbackRoute(origin, dest objects.Location) *objects.Route {
	return &objects.Route{
		Orders: map[int64]*objects.Order{},
		Stops: []*objects.Stop{
			{Location: origin, Position: 0},
			{Location: dest, Position: 1},
		},
	}
}

func (c *OSRMClient) EstimateRouteProperties(ctx context.Context, origin objects.Location, route *objects.Route, vehicle objects.Vehicle) (float64, int64, error) {
	stops := append([]*objects.Stop{{Location: origin}}, route.Stops...)

	var distance float64
	var seconds int64

	for i := 0; i < len(stops)-1; i++ {
		d := objects.Haversine(stops[i].Location, stops[i+1].Location)
		distance += d
		seconds += int64(d / vehicle.AverageVelocity())
	}

	return distance, seconds, nil
}

func (c *OSRMClient) EstimateForVehicles(ctx context.Context, origin objects.Location, route *objects.Route, vehicles []objects.Vehicle) (map[objects.Vehicle]int64, error) {
	distance, _, err := c.EstimateRouteProperties(ctx, origin, route, objects.VehicleCar)
	if err != nil {
		return nil, err
	}

	out := make(map[objects.Vehicle]int64, len(vehicles))
	for _, v := range vehicles {
		out[v] = int64(distance / v.AverageVelocity())
	}
	return out, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
