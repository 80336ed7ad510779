package metrics_test

import (
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mdrp-sim/go-engine/internal/sim/actor"
	"github.com/mdrp-sim/go-engine/internal/sim/actors"
	"github.com/mdrp-sim/go-engine/internal/sim/metrics"
	"github.com/mdrp-sim/go-engine/internal/sim/objects"
	"github.com/mdrp-sim/go-engine/internal/sim/world"
)

func sampleResult() world.Result {
	order := &objects.Order{OrderID: 1, PlacementTime: 0, State: objects.OrderDroppedOff}
	dropOff := int64(100)
	order.DropOffTime = &dropOff

	courier := &actors.Courier{
		Actor:            actor.Actor{Condition: "logged_off"},
		CourierID:        1,
		OnTime:           0,
		OffTime:          3600,
		UtilizationTime:  1800,
		EarningsPerOrder: 2.5,
		Earnings:         2.5,
		FulfilledOrders:  []int64{1},
		AcceptedNotifications: []objects.Notification{
			{CourierID: 1, Route: objects.NewSingleOrderRoute(order)},
		},
	}

	return world.Result{
		Couriers:  map[int64]*actors.Courier{1: courier},
		Fulfilled: map[int64]*objects.Order{1: order},
		Canceled:  map[int64]*objects.Order{},
		Lost:      map[int64]*objects.Order{},
	}
}

func TestBuildCourierRows(t *testing.T) {
	rows := metrics.BuildCourierRows(sampleResult())
	require.Len(t, rows, 1)

	row := rows[0]
	require.Equal(t, int64(1), row.CourierID)
	require.Equal(t, 1, row.FulfilledOrders)
	require.True(t, row.CourierUtilization.Equal(decimal.NewFromFloat(0.5))) // 1800/3600 = 0.5
	require.Equal(t, "0.5", row.CourierUtilization.String())
}

func TestBuildOrderRows(t *testing.T) {
	rows := metrics.BuildOrderRows(sampleResult())
	require.Len(t, rows, 1)
	require.Equal(t, int64(1), rows[0].OrderID)
	require.Equal(t, "dropped_off", rows[0].State)
	require.NotNil(t, rows[0].DropOffTime)
}

func TestWriteCourierCSV(t *testing.T) {
	path := t.TempDir() + "/couriers.csv"
	require.NoError(t, metrics.WriteCourierCSV(path, metrics.BuildCourierRows(sampleResult())))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "courier_id")
	require.Contains(t, string(data), "1,0,3600,1")
}

func TestWriteOrderCSV(t *testing.T) {
	path := t.TempDir() + "/orders.csv"
	require.NoError(t, metrics.WriteOrderCSV(path, metrics.BuildOrderRows(sampleResult())))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "order_id")
	require.Contains(t, string(data), "dropped_off")
}
