package matching

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mdrp-sim/go-engine/internal/sim/objects"
	"github.com/mdrp-sim/go-engine/internal/sim/routing"
)

// estimateConcurrency bounds how many EstimateRouteProperties calls
// run at once, so a tick with many prospect pairs doesn't open one
// OSRM request per pair simultaneously.
const estimateConcurrency = 8

// GreedyPolicy matches each order to the unnotified prospect courier
// with the least estimated total time, ported from
// GreedyMatchingPolicy.execute.
type GreedyPolicy struct{}

type prospect struct {
	orderIx, courierIx int
	seconds            int64
}

func (GreedyPolicy) Execute(ctx context.Context, orders []*objects.Order, couriers []Courier, client routing.Client, maxDistance float64) ([]objects.Notification, objects.MatchingMetric, error) {
	start := time.Now()

	prospects := buildProspects(orders, couriers, maxDistance)
	estimated := estimateProspects(ctx, orders, couriers, client, prospects)

	var notifications []objects.Notification
	notified := make(map[int]bool, len(couriers))

	for orderIx, order := range orders {
		best := -1
		var bestSeconds int64
		for _, est := range estimated {
			if est.orderIx != orderIx || notified[est.courierIx] {
				continue
			}
			if best == -1 || est.seconds < bestSeconds {
				best = est.courierIx
				bestSeconds = est.seconds
			}
		}
		if best == -1 {
			continue
		}

		notifications = append(notifications, objects.Notification{
			CourierID: couriers[best].CourierID,
			Type:      objects.NotificationPickUpDropOff,
			Route:     objects.NewSingleOrderRoute(order),
		})
		notified[best] = true
	}

	metric := objects.MatchingMetric{
		Orders:              len(orders),
		Couriers:            len(couriers),
		Matches:             len(notifications),
		Routes:              len(orders),
		Constraints:         0,
		Variables:           0,
		RoutingTime:         0,
		MatchingTimeSeconds: time.Since(start).Seconds(),
	}
	return notifications, metric, nil
}

func buildProspects(orders []*objects.Order, couriers []Courier, maxDistance float64) []prospect {
	var out []prospect
	for oi, order := range orders {
		for ci, courier := range couriers {
			if objects.Haversine(courier.Location, order.PickUpAt) <= maxDistance {
				out = append(out, prospect{orderIx: oi, courierIx: ci})
			}
		}
	}
	return out
}

// estimateProspects resolves a travel-time estimate for every
// prospect pair concurrently, bounded by estimateConcurrency: each
// call is an independent routing request, so up to
// estimateConcurrency estimates run at once rather than one after
// another. A pair
// whose estimate errors is dropped from the result rather than
// aborting the whole batch.
func estimateProspects(ctx context.Context, orders []*objects.Order, couriers []Courier, client routing.Client, prospects []prospect) []prospect {
	resolved := make([]*prospect, len(prospects))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(estimateConcurrency)

	for i, p := range prospects {
		i, p := i, p
		group.Go(func() error {
			order, courier := orders[p.orderIx], couriers[p.courierIx]
			route := objects.NewSingleOrderRoute(order)
			_, seconds, err := client.EstimateRouteProperties(gctx, courier.Location, route, courier.Vehicle)
			if err != nil {
				return nil
			}
			seconds += order.PickUpServiceTime + order.DropOffServiceTime
			resolved[i] = &prospect{orderIx: p.orderIx, courierIx: p.courierIx, seconds: seconds}
			return nil
		})
	}
	group.Wait()

	out := make([]prospect, 0, len(prospects))
	for _, p := range resolved {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}
