// Package demandmanagement holds the policies the dispatcher consults
// to admit or reject a newly placed order based on current congestion,
// ported from policies/dispatcher/demand_management/*.py.
package demandmanagement

import "github.com/mdrp-sim/go-engine/internal/sim/objects"

// Policy decides whether an order spanning pickUp -> dropOff should be
// admitted, given the dispatcher's current congestion radius.
type Policy interface {
	Execute(pickUp, dropOff objects.Location, currentRadius float64) bool
}

// Policies is the closed set of demand-management policies selectable
// by configuration, mirroring DISPATCHER_DEMAND_MANAGEMENT_POLICIES_MAP.
func Policies() map[string]Policy {
	return map[string]Policy{
		"no_demand_management":  NoDemandManagementPolicy{},
		"yes_demand_management": YesDemandManagementPolicy{},
	}
}
