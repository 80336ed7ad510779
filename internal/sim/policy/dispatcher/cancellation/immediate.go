package cancellation

import "github.com/mdrp-sim/go-engine/internal/sim/objects"

// ImmediatePolicy honors any cancellation request for an order that
// has not yet been picked up, matching spec.md §4.5 invariant 3.
type ImmediatePolicy struct{}

func (ImmediatePolicy) Execute(order *objects.Order) bool {
	return order.State < objects.OrderPickedUp
}
