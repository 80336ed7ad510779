package movement

import (
	"context"

	"github.com/mdrp-sim/go-engine/internal/sim/objects"
	"github.com/mdrp-sim/go-engine/internal/sim/routing"
	"github.com/mdrp-sim/go-engine/internal/sim/vtime"
)

// speedCoeff is the time-of-day speed coefficient table ported
// verbatim from policies/courier/movement/osrm_dynamic.py, indexed by
// the simulated hour (0-23). Scenario S6 in spec.md §8 depends on the
// exact values at hours 12 and 22.
var speedCoeff = [24]float64{
	1, 1, 1, 1, 1, 1, 1, 1, 1, // hours 0-8
	1.13, // 9
	1.04, // 10
	1.0,  // 11
	0.91, // 12
	0.90, // 13
	0.93, // 14
	0.95, // 15
	1.02, // 16
	1.0,  // 17
	0.91, // 18
	0.87, // 19
	0.88, // 20
	0.99, // 21
	1.23, // 22
	1.23, // 23
}

// OSRMDynamicPolicy moves a courier leg by leg, adjusting the
// vehicle's average velocity by the simulated hour's speed
// coefficient — ported from policies/courier/movement/osrm_dynamic.py.
type OSRMDynamicPolicy struct {
	Client routing.Client
}

func (m OSRMDynamicPolicy) Execute(ctx context.Context, p *vtime.Proc, origin, destination objects.Location, mover Mover) error {
	route, err := m.Client.GetRoute(ctx, origin, destination)
	if err != nil {
		return err
	}

	for i := 0; i < len(route.Stops)-1; i++ {
		from, to := route.Stops[i].Location, route.Stops[i+1].Location
		distance := objects.Haversine(from, to)

		hour := secondsToHourOfDay(p.Env().Now())
		velocity := mover.VehicleKind().AverageVelocity() * speedCoeff[hour]
		seconds := int64(distance / velocity)

		if err := p.Timeout(seconds); err != nil {
			return err
		}
		mover.SetLocation(to)
	}

	return nil
}

func secondsToHourOfDay(now int64) int {
	h := (now / 3600) % 24
	if h < 0 {
		h += 24
	}
	return int(h)
}
