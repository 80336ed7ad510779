// Package pgdatasource is the Postgres-backed world.DataSource,
// querying the order/courier fixture tables the Python reference
// loaded from CSV into a warehouse (spec.md §6). Ported from the
// pgxpool connection-pool pattern in the oms repository's postgres
// order/cart repositories.
package pgdatasource

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mdrp-sim/go-engine/internal/sim/world"
)

// Source is a pgxpool-backed world.DataSource. It runs no migrations
// of its own: the orders/couriers tables are expected to already
// exist in the target database, populated by whatever scenario
// loader the operator ran beforehand.
type Source struct {
	pool *pgxpool.Pool
}

// New connects to dsn and verifies the pool is reachable.
func New(ctx context.Context, dsn string) (*Source, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgdatasource: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgdatasource: ping: %w", err)
	}
	return &Source{pool: pool}, nil
}

func (s *Source) OrdersPlacedAt(ctx context.Context, instant int64, instanceID int64) ([]world.OrderRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT order_id, pick_up_lat, pick_up_lng, drop_off_lat, drop_off_lng,
		       pick_up_lat2, pick_up_lng2, placement_time, expected_drop_off_time,
		       preparation_time, ready_time, pick_up_service_time, drop_off_service_time
		FROM orders
		WHERE placement_time = $1 AND instance_id = $2
		ORDER BY order_id`, instant, instanceID)
	if err != nil {
		return nil, fmt.Errorf("pgdatasource: orders placed at %d: %w", instant, err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (world.OrderRow, error) {
		var r world.OrderRow
		err := row.Scan(
			&r.OrderID, &r.PickUpLat, &r.PickUpLng, &r.DropOffLat, &r.DropOffLng,
			&r.AltPickUpLat, &r.AltPickUpLng, &r.PlacementTime, &r.ExpectedDropOffTime,
			&r.PreparationTime, &r.ReadyTime, &r.PickUpServiceTime, &r.DropOffServiceTime,
		)
		return r, err
	})
}

func (s *Source) CouriersOnShiftAt(ctx context.Context, instant int64, instanceID int64) ([]world.CourierRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT courier_id, vehicle, on_lat, on_lng, on_time, off_time
		FROM couriers
		WHERE on_time = $1 AND instance_id = $2
		ORDER BY courier_id`, instant, instanceID)
	if err != nil {
		return nil, fmt.Errorf("pgdatasource: couriers on shift at %d: %w", instant, err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (world.CourierRow, error) {
		var r world.CourierRow
		err := row.Scan(&r.CourierID, &r.Vehicle, &r.OnLat, &r.OnLng, &r.OnTime, &r.OffTime)
		return r, err
	})
}

func (s *Source) Close() error {
	s.pool.Close()
	return nil
}
