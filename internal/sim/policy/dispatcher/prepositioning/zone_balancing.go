package prepositioning

import "github.com/mdrp-sim/go-engine/internal/sim/objects"

// ZoneBalancingPolicy relocates each idle courier toward its nearest
// configured demand zone, spreading supply across the service area
// rather than letting it drift with wherever couriers last dropped
// off. Zones are an operator-supplied list of known demand hotspots
// (e.g. commercial districts), not computed from live order density.
type ZoneBalancingPolicy struct {
	Zones []objects.Location
}

func (z ZoneBalancingPolicy) Execute(idle []IdleCourier) []objects.Notification {
	if len(z.Zones) == 0 {
		return nil
	}

	var out []objects.Notification
	for _, courier := range idle {
		nearest := z.Zones[0]
		best := objects.Haversine(courier.Location, nearest)
		for _, zone := range z.Zones[1:] {
			if d := objects.Haversine(courier.Location, zone); d < best {
				best, nearest = d, zone
			}
		}
		if best == 0 {
			continue
		}
		dest := nearest
		out = append(out, objects.Notification{
			CourierID:   courier.CourierID,
			Type:        objects.NotificationPrepositioning,
			Destination: &dest,
		})
	}
	return out
}
