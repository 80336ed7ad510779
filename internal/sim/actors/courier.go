package actors

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"github.com/mdrp-sim/go-engine/internal/logger"
	"github.com/mdrp-sim/go-engine/internal/sim/actor"
	"github.com/mdrp-sim/go-engine/internal/sim/objects"
	"github.com/mdrp-sim/go-engine/internal/sim/policy/courier/acceptance"
	"github.com/mdrp-sim/go-engine/internal/sim/policy/courier/movement"
	"github.com/mdrp-sim/go-engine/internal/sim/policy/courier/movementeval"
	"github.com/mdrp-sim/go-engine/internal/sim/vtime"
)

// Courier is one delivery worker: an idle loop that occasionally
// relocates, interrupted by incoming notifications, alternating with
// route execution (moving, picking up, dropping off) once a
// notification is accepted. Ported from the Courier class in the
// Python reference.
//
// Every field below is only ever touched from the courier's own
// goroutine or from a notification-handling goroutine that never runs
// concurrently with it (the engine interrupts and waits for the
// previous goroutine to suspend before either one observes shared
// state — see vtime.Env.Interrupt), so Courier carries no mutex.
type Courier struct {
	actor.Actor

	Dispatcher     CourierDispatcherPort
	Acceptance     acceptance.Policy
	Movement       movement.Policy
	MovementEval   movementeval.Policy
	RNG            *rand.Rand
	Log            *logger.Logger

	CourierID      int64
	Location       objects.Location
	Vehicle        objects.Vehicle
	OnTime         int64
	OffTime        int64
	AcceptanceRate float64
	WaitToMove     int64 // COURIER_WAIT_TO_MOVE: idle seconds between relocation checks

	ActiveRoute         *objects.Route
	FulfilledOrders     []int64
	RejectedOrders      []int64
	AcceptedNotifications []objects.Notification

	UtilizationTime           int64
	Earnings                  float64
	GuaranteedCompensation    bool
	GuaranteedEarningsPerHour float64
	EarningsPerOrder          float64

	logOffRequested bool
	routeRunning    bool // guards re-entrant execute-active-route, see Open Question #3
}

// CurrentLocation, SetLocation and VehicleKind satisfy movement.Mover.
func (c *Courier) CurrentLocation() objects.Location { return c.Location }
func (c *Courier) SetLocation(l objects.Location)     { c.Location = l }
func (c *Courier) VehicleKind() objects.Vehicle        { return c.Vehicle }

// Start puts the courier on shift: schedules its forced log-off at
// OffTime and enters the idle loop.
func (c *Courier) Start() {
	c.Env.Schedule(c.OffTime-c.Env.Now(), vtime.PriorityNormal, func() {
		c.requestLogOff()
	})
	c.State = c.Env.Process(c.idleState)
}

// requestLogOff marks the courier for log-off. If it is currently
// idle this interrupts the idle loop immediately; if it is mid-route,
// log-off is deferred until the active route finishes, per spec.md
// §4.2 "courier log-off is deferred while carrying an active order".
func (c *Courier) requestLogOff() {
	c.logOffRequested = true
	if c.ActiveRoute == nil {
		c.Interrupt()
	}
}

// ForceLogOff requests an immediate log-off regardless of shift end,
// used by World to close out any courier still on shift when the run
// ends (a courier whose OffTime lies past the last simulated second
// has not yet logged off on its own).
func (c *Courier) ForceLogOff() {
	c.requestLogOff()
}

func (c *Courier) idleState(p *vtime.Proc) {
	c.Condition = "idle"
	c.Dispatcher.CourierIdleEvent(c)

	for {
		if c.logOffRequested {
			break
		}
		if err := p.Timeout(c.WaitToMove); err != nil {
			break
		}
		if dest := c.MovementEval.Execute(c.Location); dest != nil {
			c.Condition = "moving"
			movingStart := p.Env().Now()
			c.Dispatcher.CourierMovingEvent(c)
			if err := c.Movement.Execute(context.Background(), p, c.Location, *dest, c); err != nil {
				break
			}
			c.Location = *dest
			c.UtilizationTime += p.Env().Now() - movingStart
			c.Condition = "idle"
			c.Dispatcher.CourierIdleEvent(c)
		}
	}

	// Only a direct log-off request (requestLogOff, which sets
	// logOffRequested before interrupting) should end the idle loop in
	// a log-off. An interruption caused by an arriving notification
	// (NotificationEvent) must leave the condition/state transition to
	// resumeAfterNotification, which runs after this goroutine exits.
	if c.logOffRequested {
		c.logOff()
	}
}

func (c *Courier) logOff() {
	c.Condition = "logged_off"
	c.calculateEarnings()
	c.Dispatcher.CourierLogOffEvent(c)
	if c.Log != nil {
		c.Log.Debug("courier logged off",
			zap.Int64("courier_id", c.CourierID),
			zap.Float64("earnings", c.Earnings),
			zap.Bool("guaranteed_compensation", c.GuaranteedCompensation),
		)
	}
}

// NotificationEvent is called by the dispatcher to offer a
// notification to this courier. It runs as its own process, separate
// from c.State, mirroring the Python reference's
// env.process(courier.notification_event(...)) — this lets it
// interrupt the courier's current state (idle or picking up) to run
// the acceptance policy without waiting for that state to yield on
// its own.
func (c *Courier) NotificationEvent(n objects.Notification) {
	c.Env.Process(func(p *vtime.Proc) {
		wasIdle := c.Condition == "idle"
		if wasIdle || c.Condition == "picking_up" {
			c.Interrupt()
		}

		accept, err := c.Acceptance.Execute(p, c.RNG, c.AcceptanceRate)
		if err != nil {
			return
		}

		if !accept {
			c.RejectedOrders = append(c.RejectedOrders, routeOrderIDs(n)...)
			c.Dispatcher.NotificationRejectedEvent(n, c)
			c.resumeAfterNotification(wasIdle)
			return
		}

		c.acceptNotification(n)
		c.Dispatcher.NotificationAcceptedEvent(n, c)
		c.resumeAfterNotification(wasIdle)
	})
}

func routeOrderIDs(n objects.Notification) []int64 {
	if n.Route == nil {
		return nil
	}
	ids := make([]int64, 0, len(n.Route.Orders))
	for id := range n.Route.Orders {
		ids = append(ids, id)
	}
	return ids
}

func (c *Courier) acceptNotification(n objects.Notification) {
	c.AcceptedNotifications = append(c.AcceptedNotifications, n)
	switch n.Type {
	case objects.NotificationPrepositioning:
		c.ActiveRoute = &objects.Route{
			Orders: map[int64]*objects.Order{},
			Stops:  []*objects.Stop{{Location: *n.Destination, Type: objects.StopPreposition}},
		}
	default:
		if c.ActiveRoute == nil {
			c.ActiveRoute = n.Route
		} else {
			c.ActiveRoute.Append(n.Route)
		}
	}
}

// resumeAfterNotification restarts (or leaves running) the proc
// appropriate to the courier's post-decision state. If the route
// proc is already executing (routeRunning), this is a deliberate
// no-op: the Python reference's equivalent call would re-enter
// _execute_active_route, which we resolve as a no-op per
// SPEC_FULL.md Open Question #3.
func (c *Courier) resumeAfterNotification(wasIdle bool) {
	if c.logOffRequested && c.ActiveRoute == nil {
		c.State = c.Env.Process(func(p *vtime.Proc) { c.logOff() })
		return
	}
	if c.ActiveRoute != nil {
		if !c.routeRunning {
			c.State = c.Env.Process(c.executeActiveRoute)
		}
		return
	}
	if wasIdle {
		c.State = c.Env.Process(c.idleState)
	}
}

// executeActiveRoute walks the active route stop by stop: move to the
// stop's location, then pick up or drop off. Ported from
// _execute_active_route / _moving_state / _picking_up_state /
// _dropping_off_state.
func (c *Courier) executeActiveRoute(p *vtime.Proc) {
	c.routeRunning = true
	defer func() { c.routeRunning = false }()

	// An interruption with ActiveRoute cleared comes from
	// Dispatcher.CancelOrderEvent emptying the route: fall through to
	// the log-off / idle transition below instead of stopping here.
route:
	for {
		stops := c.ActiveRoute.UnvisitedStops()
		if len(stops) == 0 {
			break
		}
		stop := stops[0]

		c.Condition = "moving"
		movingStart := p.Env().Now()
		c.Dispatcher.CourierMovingEvent(c)
		if err := c.Movement.Execute(context.Background(), p, c.Location, stop.Location, c); err != nil {
			if c.ActiveRoute != nil {
				return
			}
			break route
		}
		c.Location = stop.Location
		c.UtilizationTime += p.Env().Now() - movingStart

		switch stop.Type {
		case objects.StopPickUp:
			c.Condition = "picking_up"
			serviceStart := p.Env().Now()
			c.Dispatcher.CourierPickingUpEvent(c)
			orders := c.ordersForStop(stop)
			c.Dispatcher.OrdersInStoreEvent(orders)

			service, readyBy := maxPickUpServiceTime(orders), maxReadyTime(orders)
			waiting := readyBy - p.Env().Now()
			if waiting < 0 {
				waiting = 0
			}
			if err := p.Timeout(service + waiting); err != nil {
				if c.ActiveRoute != nil {
					return
				}
				break route
			}
			c.UtilizationTime += p.Env().Now() - serviceStart
			c.Dispatcher.OrdersPickedUpEvent(orders)

		case objects.StopDropOff:
			c.Condition = "dropping_off"
			serviceStart := p.Env().Now()
			c.Dispatcher.CourierDroppingOffEvent(c)
			orders := c.ordersForStop(stop)

			if err := p.Timeout(maxDropOffServiceTime(orders)); err != nil {
				if c.ActiveRoute != nil {
					return
				}
				break route
			}
			c.UtilizationTime += p.Env().Now() - serviceStart
			for id := range orders {
				c.FulfilledOrders = append(c.FulfilledOrders, id)
			}
			c.Dispatcher.OrdersDroppedOffEvent(orders, c)
		}

		stop.Visited = true
		if empty := routeEmptyOfUnvisited(c.ActiveRoute); empty {
			c.ActiveRoute = nil
			break
		}
	}

	if c.logOffRequested {
		c.logOff()
		return
	}
	c.State = c.Env.Process(c.idleState)
}

func (c *Courier) ordersForStop(stop *objects.Stop) map[int64]*objects.Order {
	orders := make(map[int64]*objects.Order, len(stop.OrderIDs))
	for _, id := range stop.OrderIDs {
		if o, ok := c.ActiveRoute.Orders[id]; ok {
			orders[id] = o
		}
	}
	return orders
}

func maxPickUpServiceTime(orders map[int64]*objects.Order) int64 {
	var max int64
	for _, o := range orders {
		if o.PickUpServiceTime > max {
			max = o.PickUpServiceTime
		}
	}
	return max
}

func maxDropOffServiceTime(orders map[int64]*objects.Order) int64 {
	var max int64
	for _, o := range orders {
		if o.DropOffServiceTime > max {
			max = o.DropOffServiceTime
		}
	}
	return max
}

func maxReadyTime(orders map[int64]*objects.Order) int64 {
	var max int64
	first := true
	for _, o := range orders {
		if first || o.ReadyTime > max {
			max = o.ReadyTime
			first = false
		}
	}
	return max
}

func routeEmptyOfUnvisited(r *objects.Route) bool {
	return len(r.UnvisitedStops()) == 0
}

// calculateEarnings runs once at log-off: the courier is paid the
// guaranteed hourly rate for the whole shift if it exceeds delivery
// earnings and delivery earnings are positive, otherwise delivery
// earnings (ported from Courier._calculate_earnings). Resolves Open
// Question #1: when delivery earnings are zero, guaranteed
// compensation is never applied — earnings is zero either way.
func (c *Courier) calculateEarnings() {
	deliveryEarnings := c.EarningsPerOrder * float64(len(c.FulfilledOrders))
	guaranteedEarnings := c.GuaranteedEarningsPerHour * (float64(c.OffTime-c.OnTime) / 3600.0)

	if guaranteedEarnings > deliveryEarnings && deliveryEarnings > 0 {
		c.GuaranteedCompensation = true
		c.Earnings = guaranteedEarnings
	} else {
		c.GuaranteedCompensation = false
		c.Earnings = deliveryEarnings
	}
}
