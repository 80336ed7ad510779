// Package metrics builds the post-run per-courier and per-order
// report, ported from Courier.calculate_metrics in the Python
// reference (kept in courier.py, restructured here as a pure function
// of a world.Result rather than a method tangled up with earnings
// calculation). Money fields use shopspring/decimal instead of bare
// float64 so repeated runs with the same seed produce byte-identical
// output (spec.md §8 property 6, idempotence).
package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mdrp-sim/go-engine/internal/sim/actors"
	"github.com/mdrp-sim/go-engine/internal/sim/objects"
	"github.com/mdrp-sim/go-engine/internal/sim/world"
)

// CourierRow is one line of the per-courier report.
type CourierRow struct {
	CourierID                     int64
	OnTime                        int64
	OffTime                       int64
	FulfilledOrders               int
	Earnings                      decimal.Decimal
	UtilizationTime               int64
	AcceptedNotifications         int
	GuaranteedCompensation        bool
	CourierUtilization            decimal.Decimal
	CourierDeliveryEarnings       decimal.Decimal
	CourierCompensation           decimal.Decimal
	CourierOrdersDeliveredPerHour decimal.Decimal
	CourierBundlesPickedPerHour   decimal.Decimal
}

// OrderRow is one line of the per-order report.
type OrderRow struct {
	OrderID          int64
	State            string
	PlacementTime    int64
	AcceptanceTime   *int64
	InStoreTime      *int64
	PickUpTime       *int64
	DropOffTime      *int64
	CancellationTime *int64
}

// BuildCourierRows computes one CourierRow per courier in result,
// following Courier.calculate_metrics exactly: utilization is
// utilization_time over the shift length, delivery earnings is the
// nominal per-order rate applied to every fulfilled order regardless
// of which compensation scheme was actually paid, and bundles/orders
// per hour are both normalized over shift length in hours.
func BuildCourierRows(result world.Result) []CourierRow {
	rows := make([]CourierRow, 0, len(result.Couriers))
	for _, c := range result.Couriers {
		rows = append(rows, buildCourierRow(c))
	}
	return rows
}

func buildCourierRow(c *actors.Courier) CourierRow {
	shiftSeconds := c.OffTime - c.OnTime
	hours := decimal.NewFromInt(shiftSeconds).Div(decimal.NewFromInt(3600))

	deliveryEarnings := decimal.NewFromFloat(c.EarningsPerOrder).Mul(decimal.NewFromInt(int64(len(c.FulfilledOrders))))
	earnings := decimal.NewFromFloat(c.Earnings)

	utilization := decimal.Zero
	if shiftSeconds > 0 {
		utilization = decimal.NewFromInt(c.UtilizationTime).Div(decimal.NewFromInt(shiftSeconds))
	}

	ordersPerHour := decimal.Zero
	bundlesPerHour := decimal.Zero
	if !hours.IsZero() {
		ordersPerHour = decimal.NewFromInt(int64(len(c.FulfilledOrders))).Div(hours)
		bundlesPerHour = decimal.NewFromInt(int64(countBundles(c))).Div(hours)
	}

	return CourierRow{
		CourierID:                     c.CourierID,
		OnTime:                        c.OnTime,
		OffTime:                       c.OffTime,
		FulfilledOrders:               len(c.FulfilledOrders),
		Earnings:                      earnings,
		UtilizationTime:               c.UtilizationTime,
		AcceptedNotifications:         len(c.AcceptedNotifications),
		GuaranteedCompensation:        c.GuaranteedCompensation,
		CourierUtilization:            utilization,
		CourierDeliveryEarnings:       deliveryEarnings,
		CourierCompensation:           earnings,
		CourierOrdersDeliveredPerHour: ordersPerHour,
		CourierBundlesPickedPerHour:   bundlesPerHour,
	}
}

// countBundles counts accepted pick-up/drop-off notifications that
// carried more than one order in their route, i.e. routes the bundled
// matching policy (or a future multi-order policy) produced.
func countBundles(c *actors.Courier) int {
	n := 0
	for _, notification := range c.AcceptedNotifications {
		if notification.Route != nil && len(notification.Route.Orders) > 1 {
			n++
		}
	}
	return n
}

// BuildOrderRows flattens the fulfilled and canceled registries (both
// already filtered of the warm-up window by world.Result) into one
// row per order, per spec.md §6 "per-order metrics".
func BuildOrderRows(result world.Result) []OrderRow {
	rows := make([]OrderRow, 0, len(result.Fulfilled)+len(result.Canceled))
	for _, o := range result.Fulfilled {
		rows = append(rows, buildOrderRow(o))
	}
	for _, o := range result.Canceled {
		rows = append(rows, buildOrderRow(o))
	}
	return rows
}

func buildOrderRow(o *objects.Order) OrderRow {
	return OrderRow{
		OrderID:          o.OrderID,
		State:            o.State.String(),
		PlacementTime:    o.PlacementTime,
		AcceptanceTime:   o.AcceptanceTime,
		InStoreTime:      o.InStoreTime,
		PickUpTime:       o.PickUpTime,
		DropOffTime:      o.DropOffTime,
		CancellationTime: o.CancellationTime,
	}
}

// WriteCourierCSV and WriteOrderCSV serialize the report rows to the
// given paths, one header row followed by one row per courier/order.
func WriteCourierCSV(path string, rows []CourierRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("metrics: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"courier_id", "on_time", "off_time", "fulfilled_orders", "earnings",
		"utilization_time", "accepted_notifications", "guaranteed_compensation",
		"courier_utilization", "courier_delivery_earnings", "courier_compensation",
		"courier_orders_delivered_per_hour", "courier_bundles_picked_per_hour",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			strconv.FormatInt(r.CourierID, 10),
			strconv.FormatInt(r.OnTime, 10),
			strconv.FormatInt(r.OffTime, 10),
			strconv.Itoa(r.FulfilledOrders),
			r.Earnings.String(),
			strconv.FormatInt(r.UtilizationTime, 10),
			strconv.Itoa(r.AcceptedNotifications),
			strconv.FormatBool(r.GuaranteedCompensation),
			r.CourierUtilization.String(),
			r.CourierDeliveryEarnings.String(),
			r.CourierCompensation.String(),
			r.CourierOrdersDeliveredPerHour.String(),
			r.CourierBundlesPickedPerHour.String(),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}

func WriteOrderCSV(path string, rows []OrderRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("metrics: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"order_id", "state", "placement_time", "acceptance_time",
		"in_store_time", "pick_up_time", "drop_off_time", "cancellation_time",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			strconv.FormatInt(r.OrderID, 10),
			r.State,
			strconv.FormatInt(r.PlacementTime, 10),
			optionalInt(r.AcceptanceTime),
			optionalInt(r.InStoreTime),
			optionalInt(r.PickUpTime),
			optionalInt(r.DropOffTime),
			optionalInt(r.CancellationTime),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}

func optionalInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
