package matching_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mdrp-sim/go-engine/internal/sim/objects"
	"github.com/mdrp-sim/go-engine/internal/sim/policy/dispatcher/matching"
	"github.com/mdrp-sim/go-engine/internal/sim/routing"
)

func TestGreedyPolicy_MatchesClosestCourier(t *testing.T) {
	order := &objects.Order{
		OrderID:   1,
		PickUpAt:  objects.Location{Lat: 0, Lng: 0},
		DropOffAt: objects.Location{Lat: 0.01, Lng: 0.01},
	}
	couriers := []matching.Courier{
		{CourierID: 1, Location: objects.Location{Lat: 0.001, Lng: 0.001}, Vehicle: objects.VehicleCar},
		{CourierID: 2, Location: objects.Location{Lat: 0.0001, Lng: 0.0001}, Vehicle: objects.VehicleCar},
	}

	notifications, metric, err := matching.GreedyPolicy{}.Execute(
		context.Background(), []*objects.Order{order}, couriers, routing.StraightLineClient{}, 5000)

	require.NoError(t, err)
	require.Len(t, notifications, 1)
	require.Equal(t, int64(2), notifications[0].CourierID, "closer courier 2 should win the match")
	require.Equal(t, 1, metric.Matches)
}

func TestGreedyPolicy_NoProspectsWithinRange(t *testing.T) {
	order := &objects.Order{
		OrderID:   1,
		PickUpAt:  objects.Location{Lat: 0, Lng: 0},
		DropOffAt: objects.Location{Lat: 0.01, Lng: 0.01},
	}
	couriers := []matching.Courier{
		{CourierID: 1, Location: objects.Location{Lat: 10, Lng: 10}, Vehicle: objects.VehicleCar},
	}

	notifications, metric, err := matching.GreedyPolicy{}.Execute(
		context.Background(), []*objects.Order{order}, couriers, routing.StraightLineClient{}, 100)

	require.NoError(t, err)
	require.Empty(t, notifications)
	require.Equal(t, 0, metric.Matches)
}

func TestGreedyPolicy_ManyProspectsResolveConcurrently(t *testing.T) {
	var orders []*objects.Order
	for i := int64(0); i < 10; i++ {
		orders = append(orders, &objects.Order{
			OrderID:   i,
			PickUpAt:  objects.Location{Lat: 0, Lng: 0},
			DropOffAt: objects.Location{Lat: 0.01, Lng: 0.01},
		})
	}
	var couriers []matching.Courier
	for i := int64(0); i < 10; i++ {
		couriers = append(couriers, matching.Courier{
			CourierID: i, Location: objects.Location{Lat: 0.0001 * float64(i), Lng: 0}, Vehicle: objects.VehicleCar,
		})
	}

	notifications, metric, err := matching.GreedyPolicy{}.Execute(
		context.Background(), orders, couriers, routing.StraightLineClient{}, 50000)

	require.NoError(t, err)
	require.Len(t, notifications, 10)
	require.Equal(t, 10, metric.Matches)
}
