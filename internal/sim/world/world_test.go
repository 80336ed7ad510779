package world_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mdrp-sim/go-engine/internal/config"
	"github.com/mdrp-sim/go-engine/internal/logger"
	"github.com/mdrp-sim/go-engine/internal/sim/objects"
	"github.com/mdrp-sim/go-engine/internal/sim/routing"
	"github.com/mdrp-sim/go-engine/internal/sim/world"
	"github.com/mdrp-sim/go-engine/internal/sim/world/fixturesource"
)

func scenarioConfig() *config.Config {
	cfg := config.Default()
	cfg.Simulation.SimulateFrom = 0
	cfg.Simulation.SimulateUntil = 3600
	cfg.Simulation.WarmUpTime = 0
	cfg.Simulation.CreateCouriersFrom = 0
	cfg.Simulation.CreateCouriersUntil = 3600
	cfg.Simulation.CreateUsersFrom = 0
	cfg.Simulation.CreateUsersUntil = 3600
	cfg.Routing.Kind = "straight_line"
	return cfg
}

// S1: a single courier on shift and a single order placed within
// range is accepted immediately under the absolute acceptance policy,
// matched on the first buffering tick, picked up, and dropped off.
// Courier at (0,0), pick-up 0.00025 deg north (~27.8m, 2s at the car's
// 11.1 m/s), drop-off a further 0.00045 deg north (~50m, 4s). With a
// 1-second buffering interval the first matching tick lands at t=1,
// one second after placement, so pick_up_time = submission(0) +
// dispatch(1) + travel(2) + pick_up_service(10) = 13 - the spec's
// "submission + 3 + 10" with the 3 seconds split between dispatch
// latency and travel rather than pure travel, since this engine's
// buffering loop can never offer an order in the same instant it was
// placed (world.go's advanceTo-before-tick ordering).
func TestWorld_SingleCourierSingleOrder(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Dispatcher.BufferingIntervalSeconds = 1
	cfg.Courier.AcceptancePolicy = "absolute"
	source := fixturesource.New()

	source.AddCourier(0, world.CourierRow{
		CourierID: 1, Vehicle: "car", OnLat: 0, OnLng: 0, OnTime: 0, OffTime: 3600,
	})
	source.AddOrder(0, world.OrderRow{
		OrderID: 100, PickUpLat: 0.00025, PickUpLng: 0, DropOffLat: 0.00070, DropOffLng: 0,
		PlacementTime: 0, ReadyTime: 0, ExpectedDropOffTime: 1800,
		PickUpServiceTime: 10, DropOffServiceTime: 10,
	})

	w, err := world.New(cfg, source, routing.StraightLineClient{}, logger.NewDev(), nil)
	require.NoError(t, err)

	result, err := w.Run()
	require.NoError(t, err)

	require.Len(t, result.Couriers, 1)
	require.Equal(t, "logged_off", result.Couriers[1].Condition)
	require.Equal(t, []int64{100}, result.Couriers[1].FulfilledOrders)
	require.Equal(t, int64(26), result.Couriers[1].UtilizationTime)

	order, fulfilled := result.Fulfilled[100]
	require.True(t, fulfilled, "order must be fulfilled")
	require.NotNil(t, order.PickUpTime)
	require.Equal(t, int64(13), *order.PickUpTime)
	require.NotNil(t, order.DropOffTime)
	require.Equal(t, int64(27), *order.DropOffTime)
	require.Equal(t, objects.OrderDroppedOff, order.State)
}

// S2: a courier is on shift under the uniform acceptance policy with
// MinAcceptanceRate 0 (its acceptance rate is still a random draw in
// [0, 1)), and the user's patience (5s) is shorter than the default
// 30s buffering interval, so the order cancels at t=5, before the
// first matching tick at t=30, and no notification is ever sent.
// Expected: the order is never fulfilled, ends up canceled, and the
// courier's fulfilled-orders list stays empty.
func TestWorld_NotificationRejectedCancelsOnPatience(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Courier.AcceptancePolicy = "uniform"
	cfg.Courier.MinAcceptanceRate = 0
	cfg.Policies.UserPatienceSeconds = 5
	source := fixturesource.New()

	source.AddCourier(0, world.CourierRow{
		CourierID: 1, Vehicle: "car", OnLat: 0, OnLng: 0, OnTime: 0, OffTime: 3600,
	})
	source.AddOrder(0, world.OrderRow{
		OrderID: 1, PickUpLat: 0, PickUpLng: 0, DropOffLat: 0.01, DropOffLng: 0.01,
		PlacementTime: 0, ReadyTime: 0, ExpectedDropOffTime: 1800,
	})

	w, err := world.New(cfg, source, routing.StraightLineClient{}, logger.NewDev(), nil)
	require.NoError(t, err)

	result, err := w.Run()
	require.NoError(t, err)

	_, fulfilled := result.Fulfilled[1]
	require.False(t, fulfilled, "order must never be fulfilled")
	_, canceled := result.Canceled[1]
	require.True(t, canceled, "order must be canceled by the user's patience policy")
	require.Empty(t, result.Couriers[1].FulfilledOrders)
}

// S3: the courier's off_time falls during the pick-up service window
// (courier at (0,0), pick-up 2s away, pick_up_service_time 100s wide,
// off_time 50s lands inside [3, 103)). Log-off must defer until the
// active route finishes: the order still completes, the courier logs
// off only after drop-off, and earnings are computed exactly once
// (the deterministic calculateEarnings formula run a second time would
// still be idempotent, but a second run driven by the wrong trigger
// would be a bug this guards against by construction - there's only
// one path to logOff left once ActiveRoute is non-nil).
func TestWorld_LogOffDeferredDuringPickUp(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Dispatcher.BufferingIntervalSeconds = 1
	cfg.Courier.AcceptancePolicy = "absolute"
	source := fixturesource.New()

	source.AddCourier(0, world.CourierRow{
		CourierID: 1, Vehicle: "car", OnLat: 0, OnLng: 0, OnTime: 0, OffTime: 50,
	})
	source.AddOrder(0, world.OrderRow{
		OrderID: 100, PickUpLat: 0.00025, PickUpLng: 0, DropOffLat: 0.00070, DropOffLng: 0,
		PlacementTime: 0, ReadyTime: 0, ExpectedDropOffTime: 1800,
		PickUpServiceTime: 100, DropOffServiceTime: 10,
	})

	w, err := world.New(cfg, source, routing.StraightLineClient{}, logger.NewDev(), nil)
	require.NoError(t, err)

	result, err := w.Run()
	require.NoError(t, err)

	courier := result.Couriers[1]
	require.Equal(t, "logged_off", courier.Condition)
	require.Equal(t, []int64{100}, courier.FulfilledOrders)

	order, fulfilled := result.Fulfilled[100]
	require.True(t, fulfilled, "order must still complete despite off_time falling mid pick-up")
	require.NotNil(t, order.DropOffTime)
	require.Greater(t, *order.DropOffTime, courier.OffTime, "log-off must be deferred past drop-off")

	require.False(t, courier.GuaranteedCompensation)
	require.Equal(t, cfg.Courier.EarningsPerOrder, courier.Earnings, "earnings computed exactly once off a single fulfilled order")
}

// S4: the order's original pick-up/drop-off span exceeds the
// dispatcher's congestion radius, so yes_demand_management rejects it
// outright; substitution_prob 1.0 makes the coin flip
// (rng.Float64() < 1.0) always pass, so the order is resubmitted
// unconditionally at its alternate pick-up (no second admission
// check, per the unconditional-substitution fix) and fulfills
// normally from there.
func TestWorld_DemandManagementSubstitutes(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Dispatcher.BufferingIntervalSeconds = 1
	cfg.Courier.AcceptancePolicy = "absolute"
	cfg.Dispatcher.DemandManagementPolicy = "yes_demand_management"
	cfg.Demand.LimitRadius = 1
	cfg.Demand.SubstitutionProb = 1.0
	source := fixturesource.New()

	source.AddCourier(0, world.CourierRow{
		CourierID: 1, Vehicle: "car", OnLat: 0, OnLng: 0, OnTime: 0, OffTime: 3600,
	})
	source.AddOrder(0, world.OrderRow{
		OrderID: 100, PickUpLat: 5, PickUpLng: 5, DropOffLat: 0.00070, DropOffLng: 0,
		AltPickUpLat: 0.00025, AltPickUpLng: 0,
		PlacementTime: 0, ReadyTime: 0, ExpectedDropOffTime: 1800,
		PickUpServiceTime: 10, DropOffServiceTime: 10,
	})

	w, err := world.New(cfg, source, routing.StraightLineClient{}, logger.NewDev(), nil)
	require.NoError(t, err)

	result, err := w.Run()
	require.NoError(t, err)

	_, lost := result.Lost[100]
	require.False(t, lost, "substituted order must not be lost")
	order, fulfilled := result.Fulfilled[100]
	require.True(t, fulfilled, "substituted order must fulfill from its alternate pick-up")
	require.Equal(t, 0.00025, order.PickUpAt.Lat, "order must have been submitted at the alternate pick-up")
}

// S5: as S4, but substitution_prob 0 makes the coin flip
// (rng.Float64() < 0) always fail, so the order is given up as lost
// and recorded only in the dispatcher's lost-orders registry.
func TestWorld_DemandManagementDropsWithoutSubstitution(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Dispatcher.DemandManagementPolicy = "yes_demand_management"
	cfg.Demand.LimitRadius = 1
	cfg.Demand.SubstitutionProb = 0
	source := fixturesource.New()

	source.AddCourier(0, world.CourierRow{
		CourierID: 1, Vehicle: "car", OnLat: 0, OnLng: 0, OnTime: 0, OffTime: 3600,
	})
	source.AddOrder(0, world.OrderRow{
		OrderID: 100, PickUpLat: 5, PickUpLng: 5, DropOffLat: 0.00070, DropOffLng: 0,
		AltPickUpLat: 0.00025, AltPickUpLng: 0,
		PlacementTime: 0, ReadyTime: 0, ExpectedDropOffTime: 1800,
		PickUpServiceTime: 10, DropOffServiceTime: 10,
	})

	w, err := world.New(cfg, source, routing.StraightLineClient{}, logger.NewDev(), nil)
	require.NoError(t, err)

	result, err := w.Run()
	require.NoError(t, err)

	_, lost := result.Lost[100]
	require.True(t, lost, "order must appear only in lost-orders")
	_, fulfilled := result.Fulfilled[100]
	require.False(t, fulfilled)
	_, canceled := result.Canceled[100]
	require.False(t, canceled)
}

// S6: the same route (courier at (0,0), pick-up and drop-off both
// 0.01 deg north so the drop-off leg costs zero travel time) is run
// twice under the osrm_dynamic movement policy, once starting at
// hour 12 (speed coefficient 0.91) and once at hour 22 (1.23).
// Pick-up/drop-off service times are zeroed so utilization_time
// isolates the single travel leg. The faster hour must finish that
// leg in less simulated time, at a ratio approximating 1.23/0.91.
func TestWorld_TimeOfDaySpeedCoefficient(t *testing.T) {
	run := func(simulateFrom int64) int64 {
		cfg := scenarioConfig()
		cfg.Simulation.SimulateFrom = simulateFrom
		cfg.Simulation.SimulateUntil = simulateFrom + 3600
		cfg.Simulation.CreateCouriersFrom = simulateFrom
		cfg.Simulation.CreateCouriersUntil = simulateFrom + 3600
		cfg.Simulation.CreateUsersFrom = simulateFrom
		cfg.Simulation.CreateUsersUntil = simulateFrom + 3600
		cfg.Dispatcher.BufferingIntervalSeconds = 1
		cfg.Courier.AcceptancePolicy = "absolute"
		cfg.Courier.MovementPolicy = "osrm_dynamic"
		source := fixturesource.New()

		source.AddCourier(simulateFrom, world.CourierRow{
			CourierID: 1, Vehicle: "car", OnLat: 0, OnLng: 0, OnTime: simulateFrom, OffTime: simulateFrom + 3600,
		})
		source.AddOrder(simulateFrom, world.OrderRow{
			OrderID: 100, PickUpLat: 0.01, PickUpLng: 0, DropOffLat: 0.01, DropOffLng: 0,
			PlacementTime: simulateFrom, ReadyTime: simulateFrom, ExpectedDropOffTime: simulateFrom + 1800,
		})

		w, err := world.New(cfg, source, routing.StraightLineClient{}, logger.NewDev(), nil)
		require.NoError(t, err)
		result, err := w.Run()
		require.NoError(t, err)
		return result.Couriers[1].UtilizationTime
	}

	hour12 := run(12 * 3600)
	hour22 := run(22 * 3600)

	require.Positive(t, hour12)
	require.Positive(t, hour22)

	ratio := float64(hour12) / float64(hour22)
	expected := 1.23 / 0.91
	require.InDelta(t, expected, ratio, 0.05, "hour-22 leg must run faster than hour-12 by roughly the speed-coefficient ratio")
}

// Generic robustness check: no couriers on shift at all means every
// order is eventually canceled or lost, never silently dropped from
// the result, independent of the S1-S6 spec scenarios above.
func TestWorld_NoCouriersEveryOrderAccountedFor(t *testing.T) {
	cfg := scenarioConfig()
	source := fixturesource.New()

	source.AddOrder(5, world.OrderRow{
		OrderID: 1, PickUpLat: 0, PickUpLng: 0, DropOffLat: 0.02, DropOffLng: 0.02,
		PlacementTime: 5, ReadyTime: 5, ExpectedDropOffTime: 1200,
	})

	w, err := world.New(cfg, source, routing.StraightLineClient{}, logger.NewDev(), nil)
	require.NoError(t, err)

	result, err := w.Run()
	require.NoError(t, err)
	require.Empty(t, result.Couriers)

	_, canceled := result.Canceled[1]
	_, lost := result.Lost[1]
	require.True(t, canceled || lost, "order placed with no couriers on shift must end up canceled or lost")
}

// Idempotence (spec.md §8 property 6): running the same configuration
// and fixture data twice with the same random seed must produce the
// same fulfillment outcome.
func TestWorld_IdempotentWithSameSeed(t *testing.T) {
	build := func() (world.Result, error) {
		cfg := scenarioConfig()
		source := fixturesource.New()
		source.AddCourier(0, world.CourierRow{
			CourierID: 1, Vehicle: "bike", OnLat: 0, OnLng: 0, OnTime: 0, OffTime: 3600,
		})
		source.AddOrder(10, world.OrderRow{
			OrderID: 100, PickUpLat: 0, PickUpLng: 0, DropOffLat: 0.01, DropOffLng: 0.01,
			PlacementTime: 10, ReadyTime: 10, ExpectedDropOffTime: 1800,
		})
		w, err := world.New(cfg, source, routing.StraightLineClient{}, logger.NewDev(), nil)
		if err != nil {
			return world.Result{}, err
		}
		return w.Run()
	}

	first, err := build()
	require.NoError(t, err)
	second, err := build()
	require.NoError(t, err)

	require.Equal(t, len(first.Fulfilled), len(second.Fulfilled))
	require.Equal(t, len(first.Canceled), len(second.Canceled))
	require.Equal(t, len(first.Lost), len(second.Lost))
}
