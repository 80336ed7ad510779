package demandmanagement

import "github.com/mdrp-sim/go-engine/internal/sim/objects"

// YesDemandManagementPolicy rejects an order whose pick-up to drop-off
// span exceeds the dispatcher's current congestion radius, ported
// from yes_demand_management.py.
type YesDemandManagementPolicy struct{}

func (YesDemandManagementPolicy) Execute(pickUp, dropOff objects.Location, currentRadius float64) bool {
	span := objects.Haversine(pickUp, dropOff)
	return span <= currentRadius
}
