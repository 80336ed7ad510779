package dispatcher

import (
	"github.com/mdrp-sim/go-engine/internal/sim/actors"
	"github.com/mdrp-sim/go-engine/internal/sim/objects"
)

// registries holds every mutable order/courier bucket the dispatcher
// owns. All of it is mutated only from dispatcher event handlers and
// the buffering/prepositioning loops, which run on the single virtual
// thread (spec.md §5 "Shared resources"), so none of it needs locking.
type registries struct {
	allCouriers  map[int64]*actors.Courier
	idleCouriers map[int64]*actors.Courier
	notified     map[int64]int // courier id -> count of outstanding notifications (invariant 2, checked against >1 by checkInvariants)

	buffered   map[int64]*objects.Order // placed, not yet offered or awaiting re-offer
	scheduled  map[int64]*objects.Order // offered and accepted by a courier
	fulfilled  map[int64]*objects.Order
	canceled   map[int64]*objects.Order
	lost       map[int64]*objects.Order // admission-rejected, never placed with a courier

	orderCourier map[int64]int64       // order id -> assigned courier id, for cancellation routing
	orderUser    map[int64]*actors.User // order id -> owning user, to interrupt its cancellation watcher
}

func newRegistries() *registries {
	return &registries{
		allCouriers:  map[int64]*actors.Courier{},
		idleCouriers: map[int64]*actors.Courier{},
		notified:     map[int64]int{},
		buffered:     map[int64]*objects.Order{},
		scheduled:    map[int64]*objects.Order{},
		fulfilled:    map[int64]*objects.Order{},
		canceled:     map[int64]*objects.Order{},
		lost:         map[int64]*objects.Order{},
		orderCourier: map[int64]int64{},
		orderUser:    map[int64]*actors.User{},
	}
}

// bufferedSlice returns the currently buffered orders in a stable
// order (ascending order id), since matching policies enumerate
// orders deterministically and Go map iteration is not.
func (r *registries) bufferedSlice() []*objects.Order {
	out := make([]*objects.Order, 0, len(r.buffered))
	for _, o := range r.buffered {
		out = append(out, o)
	}
	sortOrdersByID(out)
	return out
}

func (r *registries) idleCourierSlice() []*actors.Courier {
	out := make([]*actors.Courier, 0, len(r.idleCouriers))
	for _, c := range r.idleCouriers {
		if r.notified[c.CourierID] == 0 {
			out = append(out, c)
		}
	}
	sortCouriersByID(out)
	return out
}

func sortOrdersByID(orders []*objects.Order) {
	for i := 1; i < len(orders); i++ {
		for j := i; j > 0 && orders[j-1].OrderID > orders[j].OrderID; j-- {
			orders[j-1], orders[j] = orders[j], orders[j-1]
		}
	}
}

func sortCouriersByID(couriers []*actors.Courier) {
	for i := 1; i < len(couriers); i++ {
		for j := i; j > 0 && couriers[j-1].CourierID > couriers[j].CourierID; j-- {
			couriers[j-1], couriers[j] = couriers[j], couriers[j-1]
		}
	}
}
