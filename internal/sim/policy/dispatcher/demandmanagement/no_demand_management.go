package demandmanagement

import "github.com/mdrp-sim/go-engine/internal/sim/objects"

// NoDemandManagementPolicy admits every order unconditionally, ported
// from no_demand_management.py.
type NoDemandManagementPolicy struct{}

func (NoDemandManagementPolicy) Execute(pickUp, dropOff objects.Location, currentRadius float64) bool {
	return true
}
