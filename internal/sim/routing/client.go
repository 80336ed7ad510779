// Package routing is the routing-engine client boundary: a thin
// interface the courier movement policies and the dispatcher's
// matching policy consume, fixed by spec.md §4.4/§6, with a concrete
// OSRM-backed implementation and an in-memory straight-line
// implementation for tests.
package routing

import (
	"context"

	"github.com/mdrp-sim/go-engine/internal/sim/objects"
)

// Client is the routing-engine boundary. Implementations never return
// an error that should stop the simulation: on any transport failure
// they fall back to a direct two-stop route internally and return
// nil, logging the failure themselves.
type Client interface {
	// GetRoute returns a polyline (as a sequence of Stops) between
	// origin and dest.
	GetRoute(ctx context.Context, origin, dest objects.Location) (*objects.Route, error)

	// EstimateRouteProperties sums pairwise leg estimates between
	// successive stops of route, prepending origin, returning total
	// distance (meters) and time (simulated seconds).
	EstimateRouteProperties(ctx context.Context, origin objects.Location, route *objects.Route, vehicle objects.Vehicle) (distance float64, seconds int64, err error)

	// EstimateForVehicles batch-estimates the same route for several
	// candidate vehicles at once, used by the bundled matching policy
	// to compare pick-up/drop-off time across a courier's possible
	// vehicle types without issuing one request per candidate —
	// recovered from OSRMService.update_estimate_time_for_vehicles
	// (see SPEC_FULL.md §10).
	EstimateForVehicles(ctx context.Context, origin objects.Location, route *objects.Route, vehicles []objects.Vehicle) (seconds map[objects.Vehicle]int64, err error)
}
