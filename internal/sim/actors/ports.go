// Package actors implements the Courier and User state machines of
// spec.md §4.2/§4.3. Both actors talk to the dispatcher only through
// narrow interfaces defined here, so this package never imports
// internal/sim/dispatcher — dispatcher imports actors instead, to
// hold *Courier/*User in its registries. This keeps the
// courier/user <-> dispatcher relationship a non-owning reference in
// both directions, per spec.md §4.6 / §9 "Circular references".
package actors

import "github.com/mdrp-sim/go-engine/internal/sim/objects"

// CourierDispatcherPort is everything a Courier needs to report to
// the dispatcher.
type CourierDispatcherPort interface {
	CourierIdleEvent(c *Courier)
	CourierMovingEvent(c *Courier)
	CourierPickingUpEvent(c *Courier)
	CourierDroppingOffEvent(c *Courier)
	CourierLogOffEvent(c *Courier)
	OrdersInStoreEvent(orders map[int64]*objects.Order)
	OrdersPickedUpEvent(orders map[int64]*objects.Order)
	OrdersDroppedOffEvent(orders map[int64]*objects.Order, c *Courier)
	NotificationAcceptedEvent(n objects.Notification, c *Courier)
	NotificationRejectedEvent(n objects.Notification, c *Courier)
}

// UserDispatcherPort is everything a User needs to report to the
// dispatcher.
type UserDispatcherPort interface {
	OrderSubmittedEvent(o *objects.Order)
	CancelOrderEvent(orderID int64)
	SaveLostOrder(o *objects.Order)
}
