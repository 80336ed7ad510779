package cancellation

import "github.com/mdrp-sim/go-engine/internal/sim/objects"

// LockedPolicy never honors a cancellation once the order has been
// scheduled to a courier, useful for scenarios that want to measure
// fulfillment without cancellation noise.
type LockedPolicy struct{}

func (LockedPolicy) Execute(order *objects.Order) bool {
	return order.State < objects.OrderScheduled
}
