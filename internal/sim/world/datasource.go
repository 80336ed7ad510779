// Package world drives the simulation clock: each virtual second it
// asks a DataSource for newly placed orders and newly started
// couriers, wires them into Users and Couriers, and at the end of the
// run collects the dispatcher's registries into final metrics.
package world

import (
	"context"

	"github.com/mdrp-sim/go-engine/internal/sim/objects"
)

// OrderRow is one row the data source returns for orders placed at a
// given instant, per spec.md §6.
type OrderRow struct {
	OrderID             int64
	PickUpLat           float64
	PickUpLng           float64
	DropOffLat          float64
	DropOffLng          float64
	AltPickUpLat        float64
	AltPickUpLng        float64
	PlacementTime       int64
	ExpectedDropOffTime int64
	PreparationTime     int64
	ReadyTime           int64
	PickUpServiceTime   int64
	DropOffServiceTime  int64
}

// CourierRow is one row the data source returns for couriers whose
// shift starts at a given instant, per spec.md §6.
type CourierRow struct {
	CourierID int64
	Vehicle   string
	OnLat     float64
	OnLng     float64
	OnTime    int64
	OffTime   int64
}

// DataSource is the tabular store World queries once per virtual
// second.
type DataSource interface {
	OrdersPlacedAt(ctx context.Context, instant int64, instanceID int64) ([]OrderRow, error)
	CouriersOnShiftAt(ctx context.Context, instant int64, instanceID int64) ([]CourierRow, error)
	Close() error
}

func (r OrderRow) pickUpLocation() objects.Location {
	return objects.Location{Lat: r.PickUpLat, Lng: r.PickUpLng}
}

func (r OrderRow) dropOffLocation() objects.Location {
	return objects.Location{Lat: r.DropOffLat, Lng: r.DropOffLng}
}

func (r OrderRow) altPickUpLocation() objects.Location {
	return objects.Location{Lat: r.AltPickUpLat, Lng: r.AltPickUpLng}
}
