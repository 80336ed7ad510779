// Package movementeval holds the policies an idle courier consults
// periodically to decide whether, and where, to reposition itself.
package movementeval

import "github.com/mdrp-sim/go-engine/internal/sim/objects"

// Policy returns a destination the idle courier should move to, or
// nil to stay put.
type Policy interface {
	Execute(current objects.Location) *objects.Location
}

// Policies is the closed set of movement-evaluation policies
// selectable by configuration.
func Policies() map[string]Policy {
	return map[string]Policy{
		"still":     StillPolicy{},
		"neighbors": NeighborsPolicy{},
	}
}
