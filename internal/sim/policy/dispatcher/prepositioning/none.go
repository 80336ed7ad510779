package prepositioning

import "github.com/mdrp-sim/go-engine/internal/sim/objects"

// NonePolicy never relocates an idle courier, the simulator's default.
type NonePolicy struct{}

func (NonePolicy) Execute(idle []IdleCourier) []objects.Notification {
	return nil
}
