// Package cancellation holds the policies the dispatcher consults
// when a cancel_order_event arrives, to decide whether the
// cancellation should still be honored.
package cancellation

import "github.com/mdrp-sim/go-engine/internal/sim/objects"

// Policy reports whether a cancellation request for order should be
// honored, given the order's current lifecycle state.
type Policy interface {
	Execute(order *objects.Order) (allow bool)
}

// Policies is the closed set of dispatcher cancellation policies
// selectable by configuration.
func Policies() map[string]Policy {
	return map[string]Policy{
		"immediate": ImmediatePolicy{},
		"locked":    LockedPolicy{},
	}
}
