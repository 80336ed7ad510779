package matching

import (
	"context"
	"time"

	"github.com/mdrp-sim/go-engine/internal/sim/objects"
	"github.com/mdrp-sim/go-engine/internal/sim/routing"
)

// bundleRadius is the maximum pick-up distance (meters) between two
// orders for them to be considered for the same bundle.
const bundleRadius = 150.0

// BundledPolicy groups orders whose pick-ups are close together into
// a single multi-stop route for one courier, then matches bundles the
// same way GreedyPolicy matches single orders. Recovered from
// OSRMService.update_estimate_time_for_vehicles (see SPEC_FULL.md
// §10) via Client.EstimateForVehicles, which a single-order policy has
// no reason to call.
type BundledPolicy struct{}

type bundle struct {
	orders []*objects.Order
}

func (BundledPolicy) Execute(ctx context.Context, orders []*objects.Order, couriers []Courier, client routing.Client, maxDistance float64) ([]objects.Notification, objects.MatchingMetric, error) {
	start := time.Now()

	bundles := buildBundles(orders)
	notified := make(map[int]bool, len(couriers))
	var notifications []objects.Notification

	for _, b := range bundles {
		route := bundleRoute(b)

		best := -1
		var bestSeconds int64
		for ci, courier := range couriers {
			if notified[ci] {
				continue
			}
			if objects.Haversine(courier.Location, b.orders[0].PickUpAt) > maxDistance {
				continue
			}
			estimates, err := client.EstimateForVehicles(ctx, courier.Location, route, []objects.Vehicle{courier.Vehicle})
			if err != nil {
				continue
			}
			seconds := estimates[courier.Vehicle] + bundleServiceSeconds(b)
			if best == -1 || seconds < bestSeconds {
				best = ci
				bestSeconds = seconds
			}
		}
		if best == -1 {
			continue
		}

		notifications = append(notifications, objects.Notification{
			CourierID: couriers[best].CourierID,
			Type:      objects.NotificationPickUpDropOff,
			Route:     route,
		})
		notified[best] = true
	}

	metric := objects.MatchingMetric{
		Orders:              len(orders),
		Couriers:            len(couriers),
		Matches:             len(notifications),
		Routes:              len(bundles),
		MatchingTimeSeconds: time.Since(start).Seconds(),
	}
	return notifications, metric, nil
}

// buildBundles greedily groups orders two at a time if their pick-ups
// are within bundleRadius of each other, leaving the rest as
// single-order bundles.
func buildBundles(orders []*objects.Order) []bundle {
	used := make([]bool, len(orders))
	var bundles []bundle

	for i, order := range orders {
		if used[i] {
			continue
		}
		used[i] = true
		b := bundle{orders: []*objects.Order{order}}

		for j := i + 1; j < len(orders); j++ {
			if used[j] {
				continue
			}
			if objects.Haversine(order.PickUpAt, orders[j].PickUpAt) <= bundleRadius {
				used[j] = true
				b.orders = append(b.orders, orders[j])
				break
			}
		}
		bundles = append(bundles, b)
	}
	return bundles
}

func bundleRoute(b bundle) *objects.Route {
	route := &objects.Route{Orders: map[int64]*objects.Order{}}
	pos := 0
	for _, o := range b.orders {
		route.Orders[o.OrderID] = o
		route.Stops = append(route.Stops, &objects.Stop{
			Location: o.PickUpAt, Position: pos, Type: objects.StopPickUp, OrderIDs: []int64{o.OrderID},
		})
		pos++
	}
	for _, o := range b.orders {
		route.Stops = append(route.Stops, &objects.Stop{
			Location: o.DropOffAt, Position: pos, Type: objects.StopDropOff, OrderIDs: []int64{o.OrderID},
		})
		pos++
	}
	return route
}

func bundleServiceSeconds(b bundle) int64 {
	var total int64
	for _, o := range b.orders {
		total += o.PickUpServiceTime + o.DropOffServiceTime
	}
	return total
}
