package cancellation

import "github.com/mdrp-sim/go-engine/internal/sim/vtime"

// PatiencePolicy waits a fixed duration, ported from
// policies/user/cancellation.py's default patience policy.
type PatiencePolicy struct {
	Seconds int64
}

func (p PatiencePolicy) Execute(proc *vtime.Proc) (bool, error) {
	if err := proc.Timeout(p.Seconds); err != nil {
		return false, nil
	}
	return true, nil
}
