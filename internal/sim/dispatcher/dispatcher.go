// Package dispatcher implements the matching/prepositioning broker
// between couriers and orders, ported from the Dispatcher class in
// the Python reference (actors/dispatcher.py, not present in
// original_source/ — rebuilt from spec.md §4.5/§5 prose).
package dispatcher

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"github.com/mdrp-sim/go-engine/internal/config"
	"github.com/mdrp-sim/go-engine/internal/logger"
	"github.com/mdrp-sim/go-engine/internal/sim/actor"
	"github.com/mdrp-sim/go-engine/internal/sim/actors"
	"github.com/mdrp-sim/go-engine/internal/sim/objects"
	"github.com/mdrp-sim/go-engine/internal/sim/policy/dispatcher/buffering"
	"github.com/mdrp-sim/go-engine/internal/sim/policy/dispatcher/cancellation"
	"github.com/mdrp-sim/go-engine/internal/sim/policy/dispatcher/demandmanagement"
	"github.com/mdrp-sim/go-engine/internal/sim/policy/dispatcher/matching"
	"github.com/mdrp-sim/go-engine/internal/sim/policy/dispatcher/prepositioning"
	"github.com/mdrp-sim/go-engine/internal/sim/policy/dispatcher/prepositioningeval"
	"github.com/mdrp-sim/go-engine/internal/sim/routing"
	"github.com/mdrp-sim/go-engine/internal/sim/vtime"
)

// Tracer receives one structured record per dispatcher event, to be
// assembled onto the JSON-lines trace sink (internal/sim/trace).
type Tracer interface {
	Trace(event string, fields map[string]any)
}

// Dispatcher is the single broker actor: it owns every order/courier
// registry and runs the buffering/matching and prepositioning loops
// as their own processes.
type Dispatcher struct {
	actor.Actor

	Log    *logger.Logger
	Trace  Tracer
	RNG    *rand.Rand
	Client routing.Client

	Config config.DispatcherConfig
	Demand config.DemandConfig

	Buffering          buffering.Policy
	Matching           matching.Policy
	Cancellation       cancellation.Policy
	Prepositioning     prepositioning.Policy
	PrepositioningEval prepositioningeval.Policy
	DemandManagement   demandmanagement.Policy

	reg *registries

	currentRadius  float64
	lastOrderTime  int64
	haveLastOrder  bool
}

// New builds a dispatcher with empty registries and currentRadius
// seeded at the configured limit radius.
func New(env *vtime.Env, cfg config.DispatcherConfig, demand config.DemandConfig, client routing.Client, log *logger.Logger, rng *rand.Rand, trace Tracer) *Dispatcher {
	return &Dispatcher{
		Actor:         actor.Actor{Env: env},
		Log:           log,
		Trace:         trace,
		RNG:           rng,
		Client:        client,
		Config:        cfg,
		Demand:        demand,
		reg:           newRegistries(),
		currentRadius: demand.LimitRadius,
	}
}

// Start installs the policy set (resolved by the caller from
// configuration) and launches the buffering/matching and
// prepositioning loops.
func (d *Dispatcher) Start(buf buffering.Policy, match matching.Policy, cancel cancellation.Policy, prepo prepositioning.Policy, prepoEval prepositioningeval.Policy, demand demandmanagement.Policy) {
	d.Buffering, d.Matching, d.Cancellation = buf, match, cancel
	d.Prepositioning, d.PrepositioningEval, d.DemandManagement = prepo, prepoEval, demand

	d.Env.Process(d.bufferingLoop)
	d.Env.Process(d.prepositioningLoop)
}

func (d *Dispatcher) trace(event string, fields map[string]any) {
	if d.Trace != nil {
		d.Trace.Trace(event, fields)
	}
}

// RegisterUser associates an order with the User watching it, so
// OrdersPickedUpEvent can interrupt that user's cancellation watcher.
func (d *Dispatcher) RegisterUser(orderID int64, u *actors.User) {
	d.reg.orderUser[orderID] = u
}

// RegisterCourier adds a newly created courier to the courier
// registry, independent of CourierIdleEvent (which tracks idleness,
// not existence) so metrics can always enumerate every courier that
// ever worked the shift.
func (d *Dispatcher) RegisterCourier(c *actors.Courier) {
	d.reg.allCouriers[c.CourierID] = c
}

// Couriers returns every courier ever registered, for end-of-run
// metric computation.
func (d *Dispatcher) Couriers() map[int64]*actors.Courier { return d.reg.allCouriers }

// Fulfilled, Canceled and Lost expose the terminal order registries
// for end-of-run metric computation and warm-up filtering.
func (d *Dispatcher) Fulfilled() map[int64]*objects.Order { return d.reg.fulfilled }
func (d *Dispatcher) Canceled() map[int64]*objects.Order  { return d.reg.canceled }
func (d *Dispatcher) Lost() map[int64]*objects.Order      { return d.reg.lost }

// ---- Public synchronous event handlers (spec.md §4.5) ----

func (d *Dispatcher) OrderSubmittedEvent(order *objects.Order) {
	d.updateCongestionRadius()
	d.reg.buffered[order.OrderID] = order
	d.trace("order_submitted", map[string]any{"order_id": order.OrderID})
	d.checkInvariants()
}

// CancelOrderEvent handles a user's (or operator's) cancellation
// request. Per invariant 3: if the order is already scheduled with a
// courier, the courier's active route is updated in place, and the
// courier is interrupted back to idle if the route becomes empty.
func (d *Dispatcher) CancelOrderEvent(orderID int64) {
	now := d.Env.Now()

	if order, ok := d.reg.buffered[orderID]; ok {
		if !d.Cancellation.Execute(order) {
			return
		}
		delete(d.reg.buffered, orderID)
		d.cancel(order, now)
		d.checkInvariants()
		return
	}

	order, ok := d.reg.scheduled[orderID]
	if !ok {
		return
	}
	if !d.Cancellation.Execute(order) {
		return
	}

	courierID, ok := d.reg.orderCourier[orderID]
	if ok {
		if courier, ok := d.reg.allCouriers[courierID]; ok && courier.ActiveRoute != nil {
			if empty := courier.ActiveRoute.RemoveOrder(orderID); empty {
				courier.ActiveRoute = nil
				courier.Interrupt()
			}
		}
	}
	delete(d.reg.scheduled, orderID)
	delete(d.reg.orderCourier, orderID)
	d.cancel(order, now)
	d.checkInvariants()
}

func (d *Dispatcher) cancel(order *objects.Order, now int64) {
	t := now
	order.State = objects.OrderCanceled
	order.CancellationTime = &t
	d.reg.canceled[order.OrderID] = order
	d.trace("order_canceled", map[string]any{"order_id": order.OrderID})
}

// SaveLostOrder records an order that never reached a courier because
// it was rejected by demand management and not substituted (spec.md
// §4.3/§4.5).
func (d *Dispatcher) SaveLostOrder(order *objects.Order) {
	d.reg.lost[order.OrderID] = order
	d.trace("order_lost", map[string]any{"order_id": order.OrderID})
	d.checkInvariants()
}

func (d *Dispatcher) CourierIdleEvent(c *actors.Courier) {
	d.reg.idleCouriers[c.CourierID] = c
	delete(d.reg.notified, c.CourierID)
	d.trace("courier_idle", map[string]any{"courier_id": c.CourierID})
	d.checkInvariants()
}

func (d *Dispatcher) CourierMovingEvent(c *actors.Courier) {
	delete(d.reg.idleCouriers, c.CourierID)
	d.trace("courier_moving", map[string]any{"courier_id": c.CourierID})
}

func (d *Dispatcher) CourierPickingUpEvent(c *actors.Courier) {
	d.trace("courier_picking_up", map[string]any{"courier_id": c.CourierID})
}

func (d *Dispatcher) CourierDroppingOffEvent(c *actors.Courier) {
	d.trace("courier_dropping_off", map[string]any{"courier_id": c.CourierID})
}

func (d *Dispatcher) CourierLogOffEvent(c *actors.Courier) {
	delete(d.reg.idleCouriers, c.CourierID)
	delete(d.reg.notified, c.CourierID)
	d.trace("courier_log_off", map[string]any{"courier_id": c.CourierID, "earnings": c.Earnings})
	d.checkInvariants()
}

func (d *Dispatcher) OrdersInStoreEvent(orders map[int64]*objects.Order) {
	now := d.Env.Now()
	for _, o := range orders {
		t := now
		o.InStoreTime = &t
		o.State = objects.OrderPickingUp
	}
}

func (d *Dispatcher) OrdersPickedUpEvent(orders map[int64]*objects.Order) {
	now := d.Env.Now()
	for id, o := range orders {
		t := now
		o.State = objects.OrderPickedUp
		o.PickUpTime = &t
		if u, ok := d.reg.orderUser[id]; ok {
			u.Interrupt()
		}
	}
}

func (d *Dispatcher) OrdersDroppedOffEvent(orders map[int64]*objects.Order, c *actors.Courier) {
	now := d.Env.Now()
	for id, o := range orders {
		t := now
		o.State = objects.OrderDroppedOff
		o.DropOffTime = &t
		delete(d.reg.scheduled, id)
		delete(d.reg.orderCourier, id)
		d.reg.fulfilled[id] = o
	}
	d.trace("orders_dropped_off", map[string]any{"courier_id": c.CourierID, "count": len(orders)})
	d.checkInvariants()
}

func (d *Dispatcher) NotificationAcceptedEvent(n objects.Notification, c *actors.Courier) {
	delete(d.reg.notified, c.CourierID)
	if n.Type != objects.NotificationPickUpDropOff || n.Route == nil {
		return
	}
	now := d.Env.Now()
	for id, o := range n.Route.Orders {
		t := now
		o.State = objects.OrderScheduled
		o.AcceptanceTime = &t
		delete(d.reg.buffered, id)
		d.reg.scheduled[id] = o
		d.reg.orderCourier[id] = c.CourierID
	}
	d.trace("notification_accepted", map[string]any{"courier_id": c.CourierID})
	d.checkInvariants()
}

func (d *Dispatcher) NotificationRejectedEvent(n objects.Notification, c *actors.Courier) {
	delete(d.reg.notified, c.CourierID)
	if n.Type != objects.NotificationPickUpDropOff || n.Route == nil {
		return
	}
	for id, o := range n.Route.Orders {
		d.reg.buffered[id] = o
	}
	d.trace("notification_rejected", map[string]any{"courier_id": c.CourierID})
	d.checkInvariants()
}

// EvaluateDemandManagement is World's admission gate for a freshly
// placed order, consulting the configured policy with the
// dispatcher's own congestion signal.
func (d *Dispatcher) EvaluateDemandManagement(pickUp, dropOff objects.Location) bool {
	return d.DemandManagement.Execute(pickUp, dropOff, d.currentRadius)
}

// updateCongestionRadius maintains currentRadius as an EWMA that
// shrinks the allowed pick-up/drop-off span as orders arrive closer
// together in time, resolving Open Question #4.
func (d *Dispatcher) updateCongestionRadius() {
	const smoothing = 0.2
	now := d.Env.Now()

	gap := int64(60)
	if d.haveLastOrder {
		if g := now - d.lastOrderTime; g > 0 {
			gap = g
		} else {
			gap = 1
		}
	}
	d.lastOrderTime = now
	d.haveLastOrder = true

	densityPerMinute := 60.0 / float64(gap)
	threshold := d.Demand.DensityThreshold
	if threshold <= 0 {
		threshold = 1
	}
	target := d.Demand.LimitRadius / (1 + densityPerMinute/threshold)

	d.currentRadius = smoothing*target + (1-smoothing)*d.currentRadius
}

// ---- Asynchronous loops (spec.md §4.5) ----

func (d *Dispatcher) bufferingLoop(p *vtime.Proc) {
	for {
		if err := d.Buffering.Execute(p); err != nil {
			return
		}
		d.runMatching(p)
	}
}

func (d *Dispatcher) runMatching(p *vtime.Proc) {
	orders := d.reg.bufferedSlice()
	if len(orders) == 0 {
		return
	}

	idle := d.reg.idleCourierSlice()
	if len(idle) == 0 {
		return
	}

	candidates := make([]matching.Courier, len(idle))
	for i, c := range idle {
		candidates[i] = matching.Courier{CourierID: c.CourierID, Location: c.Location, Vehicle: c.Vehicle}
	}

	notifications, metric, err := d.Matching.Execute(context.Background(), orders, candidates, d.Client, d.Config.ProspectsMaxDistance)
	if err != nil {
		if d.Log != nil {
			d.Log.Warn("matching policy failed", zap.Error(err))
		}
		return
	}

	d.trace("matching_tick", map[string]any{
		"orders":   metric.Orders,
		"couriers": metric.Couriers,
		"matches":  metric.Matches,
	})

	for _, n := range notifications {
		courier, ok := d.reg.allCouriers[n.CourierID]
		if !ok || courier.Condition != "idle" || d.reg.notified[n.CourierID] > 0 {
			// Policy precondition violation (spec.md §7): drop and log,
			// never fatal.
			if d.Log != nil {
				d.Log.Warn("matching policy offered a non-idle or already-notified courier",
					zap.Int64("courier_id", n.CourierID))
			}
			continue
		}
		d.reg.notified[n.CourierID]++
		// An order leaves buffered the moment it's offered, not only on
		// acceptance (:NotificationAcceptedEvent): acceptance policies may
		// perform cooperative waits (spec.md §9), and a second matching
		// tick reading a still-buffered offered order could offer it to
		// another idle courier, violating invariant 2. NotificationRejectedEvent
		// restores it.
		if n.Route != nil {
			for id := range n.Route.Orders {
				delete(d.reg.buffered, id)
			}
		}
		d.trace("notification_sent", map[string]any{"courier_id": n.CourierID, "type": n.Type.String()})
		d.checkInvariants()
		courier.NotificationEvent(n)
	}
}

func (d *Dispatcher) prepositioningLoop(p *vtime.Proc) {
	for {
		if err := d.PrepositioningEval.Execute(p); err != nil {
			return
		}

		idle := d.reg.idleCourierSlice()
		if len(idle) == 0 {
			continue
		}
		views := make([]prepositioning.IdleCourier, len(idle))
		for i, c := range idle {
			views[i] = prepositioning.IdleCourier{CourierID: c.CourierID, Location: c.Location}
		}

		for _, n := range d.Prepositioning.Execute(views) {
			courier, ok := d.reg.allCouriers[n.CourierID]
			if !ok || courier.Condition != "idle" || d.reg.notified[n.CourierID] > 0 {
				continue
			}
			d.reg.notified[n.CourierID]++
			d.trace("notification_sent", map[string]any{"courier_id": n.CourierID, "type": n.Type.String()})
			d.checkInvariants()
			courier.NotificationEvent(n)
		}
	}
}
