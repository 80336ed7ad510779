// Package prepositioning holds the policies that decide which idle
// couriers to relocate, and where, on each prepositioning loop tick.
package prepositioning

import "github.com/mdrp-sim/go-engine/internal/sim/objects"

// IdleCourier is the minimal courier surface the prepositioning
// policy needs: an identity and a current location.
type IdleCourier struct {
	CourierID int64
	Location  objects.Location
}

// Policy returns a prepositioning Notification per courier it decides
// to relocate; couriers it leaves alone are simply absent from the
// result.
type Policy interface {
	Execute(idle []IdleCourier) []objects.Notification
}

// Policies is the closed set of prepositioning policies selectable by
// configuration.
func Policies(zones []objects.Location) map[string]Policy {
	return map[string]Policy{
		"none":            NonePolicy{},
		"zone_balancing":  ZoneBalancingPolicy{Zones: zones},
	}
}
