// Package fixturesource is an in-memory world.DataSource keyed by
// simulated second, used by the S1-S6 scenario tests and anywhere a
// live Postgres instance isn't available.
package fixturesource

import (
	"context"

	"github.com/mdrp-sim/go-engine/internal/sim/world"
)

type Source struct {
	Orders   map[int64][]world.OrderRow
	Couriers map[int64][]world.CourierRow
}

func New() *Source {
	return &Source{
		Orders:   map[int64][]world.OrderRow{},
		Couriers: map[int64][]world.CourierRow{},
	}
}

func (s *Source) AddOrder(instant int64, row world.OrderRow) {
	s.Orders[instant] = append(s.Orders[instant], row)
}

func (s *Source) AddCourier(instant int64, row world.CourierRow) {
	s.Couriers[instant] = append(s.Couriers[instant], row)
}

func (s *Source) OrdersPlacedAt(_ context.Context, instant int64, _ int64) ([]world.OrderRow, error) {
	return s.Orders[instant], nil
}

func (s *Source) CouriersOnShiftAt(_ context.Context, instant int64, _ int64) ([]world.CourierRow, error) {
	return s.Couriers[instant], nil
}

func (s *Source) Close() error { return nil }
