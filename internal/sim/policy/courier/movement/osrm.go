package movement

import (
	"context"

	"github.com/mdrp-sim/go-engine/internal/sim/objects"
	"github.com/mdrp-sim/go-engine/internal/sim/routing"
	"github.com/mdrp-sim/go-engine/internal/sim/vtime"
)

// OSRMPolicy moves a courier leg by leg along the route the routing
// client returns, at the vehicle's plain average velocity. Ported
// from the implied "osrm" entry of COURIER_MOVEMENT_POLICIES_MAP —
// the static-speed sibling of OSRMDynamicPolicy, which applies the
// time-of-day coefficient table.
type OSRMPolicy struct {
	Client routing.Client
}

func (m OSRMPolicy) Execute(ctx context.Context, p *vtime.Proc, origin, destination objects.Location, mover Mover) error {
	route, err := m.Client.GetRoute(ctx, origin, destination)
	if err != nil {
		return err
	}

	for i := 0; i < len(route.Stops)-1; i++ {
		from, to := route.Stops[i].Location, route.Stops[i+1].Location
		distance := objects.Haversine(from, to)
		seconds := int64(distance / mover.VehicleKind().AverageVelocity())

		if err := p.Timeout(seconds); err != nil {
			return err
		}
		mover.SetLocation(to)
	}

	return nil
}
