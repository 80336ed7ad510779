// Package movement holds the policies that move a courier from its
// current location to a destination, one simulated leg at a time.
package movement

import (
	"context"

	"github.com/mdrp-sim/go-engine/internal/sim/objects"
	"github.com/mdrp-sim/go-engine/internal/sim/routing"
	"github.com/mdrp-sim/go-engine/internal/sim/vtime"
)

// Mover is the minimal courier surface a movement policy needs: a
// current location it may update leg by leg, and a vehicle to
// compute travel time with.
type Mover interface {
	CurrentLocation() objects.Location
	SetLocation(objects.Location)
	VehicleKind() objects.Vehicle
}

// Policy drives a courier from origin to destination over simulated
// time, yielding a timeout per route leg and updating the courier's
// location as each leg completes.
type Policy interface {
	Execute(ctx context.Context, p *vtime.Proc, origin, destination objects.Location, mover Mover) error
}

// Policies is the closed set of movement policies selectable by
// configuration.
func Policies(client routing.Client) map[string]Policy {
	return map[string]Policy{
		"osrm":         OSRMPolicy{Client: client},
		"osrm_dynamic": OSRMDynamicPolicy{Client: client},
	}
}
