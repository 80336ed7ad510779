package movementeval

import "github.com/mdrp-sim/go-engine/internal/sim/objects"

// StillPolicy never relocates an idle courier, ported from
// StillMoveEvalPolicy.
type StillPolicy struct{}

func (StillPolicy) Execute(current objects.Location) *objects.Location {
	return nil
}
