package buffering

import "github.com/mdrp-sim/go-engine/internal/sim/vtime"

// PeriodicPolicy wakes the matching loop every IntervalSeconds,
// mirroring the Python reference's fixed BUFFERING_PERIOD.
type PeriodicPolicy struct {
	IntervalSeconds int64
}

func (p PeriodicPolicy) Execute(proc *vtime.Proc) error {
	return proc.Timeout(p.IntervalSeconds)
}
