// Package matching holds the policies the dispatcher's buffering loop
// hands a batch of unassigned orders and idle couriers to, producing
// Notifications to send and a MatchingMetric to trace. Ported from
// policies/dispatcher/matching/greedy.py.
package matching

import (
	"context"

	"github.com/mdrp-sim/go-engine/internal/sim/objects"
	"github.com/mdrp-sim/go-engine/internal/sim/routing"
)

// Courier is the minimal courier surface a matching policy needs.
type Courier struct {
	CourierID int64
	Location  objects.Location
	Vehicle   objects.Vehicle
}

// Policy matches unassigned orders to idle couriers.
type Policy interface {
	Execute(ctx context.Context, orders []*objects.Order, couriers []Courier, client routing.Client, maxDistance float64) ([]objects.Notification, objects.MatchingMetric, error)
}

// Policies is the closed set of matching policies selectable by
// configuration.
func Policies() map[string]Policy {
	return map[string]Policy{
		"greedy":  GreedyPolicy{},
		"bundled": BundledPolicy{},
	}
}
