package actors

import (
	"github.com/mdrp-sim/go-engine/internal/sim/actor"
	"github.com/mdrp-sim/go-engine/internal/sim/objects"
	"github.com/mdrp-sim/go-engine/internal/sim/policy/user/cancellation"
	"github.com/mdrp-sim/go-engine/internal/sim/vtime"
)

// User places one order and watches it for cancellation, ported from
// the User class in the Python reference.
type User struct {
	actor.Actor

	Dispatcher UserDispatcherPort
	Policy     cancellation.Policy
}

// SubmitOrderEvent reports a newly placed order to the dispatcher and
// spawns the cancellation watcher. order.State is left to the
// dispatcher to progress; the watcher only ever reads it.
func (u *User) SubmitOrderEvent(order *objects.Order) {
	u.Dispatcher.OrderSubmittedEvent(order)
	u.State = u.Env.Process(func(p *vtime.Proc) {
		u.cancelEvent(p, order)
	})
}

// cancelEvent waits out the user's patience; if the order has not
// reached picked_up by then, it asks the dispatcher to cancel it. The
// dispatcher interrupts this watcher directly once the order is
// picked up (see dispatcher.OrdersPickedUpEvent), which short-circuits
// the wait with vtime.ErrInterrupted.
func (u *User) cancelEvent(p *vtime.Proc, order *objects.Order) {
	u.Condition = "waiting"
	elapsed, err := u.Policy.Execute(p)
	if err != nil || !elapsed {
		return
	}
	if order.State >= objects.OrderPickedUp {
		return
	}
	u.Dispatcher.CancelOrderEvent(order.OrderID)
}

// SaveLostOrder records an order the dispatcher rejected outright
// (demand management or admission control), never spawning a watcher
// for it.
func (u *User) SaveLostOrder(order *objects.Order) {
	u.Dispatcher.SaveLostOrder(order)
}
