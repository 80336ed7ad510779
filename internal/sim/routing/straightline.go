package routing

import (
	"context"

	"github.com/mdrp-sim/go-engine/internal/sim/objects"
)

// StraightLineClient is a dependency-free Client that always returns
// the direct two-stop route, for unit tests and the S1-S6 scenarios
// in spec.md §8 where no live OSRM instance is reachable.
type StraightLineClient struct{}

func (StraightLineClient) GetRoute(_ context.Context, origin, dest objects.Location) (*objects.Route, error) {
	return fallbackRoute(origin, dest), nil
}

func (StraightLineClient) EstimateRouteProperties(_ context.Context, origin objects.Location, route *objects.Route, vehicle objects.Vehicle) (float64, int64, error) {
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

func (StraightLineClient) EstimateForVehicles(_ context.Context, origin objects.Location, route *objects.Route, vehicles []objects.Vehicle) (map[objects.Vehicle]int64, error) {
	distance, _, err := StraightLineClient{}.EstimateRouteProperties(context.Background(), origin, route, objects.VehicleCar)
	if err != nil {
		return nil, err
	}
	out := make(map[objects.Vehicle]int64, len(vehicles))
	for _, v := range vehicles {
		out[v] = int64(distance / v.AverageVelocity())
	}
	return out, nil
}
