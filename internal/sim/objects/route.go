package objects

// Route is an ordered plan of Stops assigned to one courier. Route is
// the single owner of the Order values it carries; Stops reference
// orders only by id so a Stop never needs its own copy of an Order
// that could drift out of sync with the dispatcher's registries.
type Route struct {
	Stops  []*Stop
	Orders map[int64]*Order
}

// NewSingleOrderRoute builds the two-stop [PICK_UP, DROP_OFF] route
// the greedy matching policy assigns to a freshly matched order.
func NewSingleOrderRoute(order *Order) *Route {
	return &Route{
		Orders: map[int64]*Order{order.OrderID: order},
		Stops: []*Stop{
			{Location: order.PickUpAt, Position: 0, Type: StopPickUp, OrderIDs: []int64{order.OrderID}},
			{Location: order.DropOffAt, Position: 1, Type: StopDropOff, OrderIDs: []int64{order.OrderID}},
		},
	}
}

// Append adds the stops and orders of other onto the end of r,
// renumbering positions, used when a courier already executing a
// route accepts another notification (the instruction is appended
// rather than replacing the active route).
func (r *Route) Append(other *Route) {
	base := len(r.Stops)
	for i, s := range other.Stops {
		s.Position = base + i
		r.Stops = append(r.Stops, s)
	}
	for id, o := range other.Orders {
		r.Orders[id] = o
	}
}

// RemoveOrder strips every stop referencing orderID from the route
// (used on cancellation of an accepted order) and reports whether the
// route is now empty of any stop.
func (r *Route) RemoveOrder(orderID int64) (empty bool) {
	delete(r.Orders, orderID)

	kept := r.Stops[:0]
	for _, s := range r.Stops {
		s.OrderIDs = removeID(s.OrderIDs, orderID)
		if s.Type != StopPreposition && len(s.OrderIDs) == 0 {
			continue
		}
		kept = append(kept, s)
	}
	r.Stops = kept

	for i, s := range r.Stops {
		s.Position = i
	}

	return len(r.Stops) == 0
}

func removeID(ids []int64, target int64) []int64 {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// UnvisitedStops returns the stops not yet marked visited, in order.
func (r *Route) UnvisitedStops() []*Stop {
	var out []*Stop
	for _, s := range r.Stops {
		if !s.Visited {
			out = append(out, s)
		}
	}
	return out
}
