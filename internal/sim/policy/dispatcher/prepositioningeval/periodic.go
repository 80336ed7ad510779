package prepositioningeval

import "github.com/mdrp-sim/go-engine/internal/sim/vtime"

// PeriodicPolicy wakes the prepositioning loop every IntervalSeconds.
type PeriodicPolicy struct {
	IntervalSeconds int64
}

func (p PeriodicPolicy) Execute(proc *vtime.Proc) error {
	return proc.Timeout(p.IntervalSeconds)
}
