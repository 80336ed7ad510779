package dispatcher

import (
	"fmt"
	"sort"

	"github.com/mdrp-sim/go-engine/internal/sim/objects"
)

// InvariantViolation is the panic value raised by checkInvariants when
// a registry invariant (spec.md §8) is broken. cmd/run.go recovers it
// at the top level, logs Dump's location, fires the optional alert,
// and exits non-zero.
type InvariantViolation struct {
	Reason string
	Dump   map[string]any
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("dispatcher: registry invariant violated: %s", v.Reason)
}

// checkInvariants enforces spec.md §8 properties 1 (an order occupies
// exactly one registry) and 3 (a courier never has more than one
// outstanding notification) after every registry-mutating operation,
// gated on DISPATCHER_STRICT_INVARIANTS (config.DispatcherConfig.StrictInvariants).
// A violation is a programming bug, not a condition the simulation can
// run through, so it dumps the registries via the trace sink and
// panics.
func (d *Dispatcher) checkInvariants() {
	if !d.Config.StrictInvariants {
		return
	}
	if reason := d.findInvariantViolation(); reason != "" {
		d.dumpAndPanic(reason)
	}
}

func (d *Dispatcher) findInvariantViolation() string {
	owner := map[int64]string{}
	buckets := []struct {
		name   string
		orders map[int64]*objects.Order
	}{
		{"buffered", d.reg.buffered},
		{"scheduled", d.reg.scheduled},
		{"canceled", d.reg.canceled},
		{"fulfilled", d.reg.fulfilled},
	}
	for _, b := range buckets {
		for id := range b.orders {
			if prior, ok := owner[id]; ok {
				return fmt.Sprintf("property 1: order %d present in both %s and %s registries", id, prior, b.name)
			}
			owner[id] = b.name
		}
	}

	for courierID, count := range d.reg.notified {
		if count > 1 {
			return fmt.Sprintf("property 3: courier %d has %d outstanding notifications", courierID, count)
		}
	}

	return ""
}

func (d *Dispatcher) dumpAndPanic(reason string) {
	dump := map[string]any{
		"reason":    reason,
		"buffered":  orderIDs(d.reg.buffered),
		"scheduled": orderIDs(d.reg.scheduled),
		"canceled":  orderIDs(d.reg.canceled),
		"fulfilled": orderIDs(d.reg.fulfilled),
		"lost":      orderIDs(d.reg.lost),
		"notified":  d.reg.notified,
	}
	d.trace("registry_invariant_violation", dump)
	panic(&InvariantViolation{Reason: reason, Dump: dump})
}

func orderIDs(orders map[int64]*objects.Order) []int64 {
	ids := make([]int64, 0, len(orders))
	for id := range orders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
