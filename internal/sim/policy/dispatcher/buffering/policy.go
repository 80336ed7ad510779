// Package buffering holds the policies that decide how often the
// dispatcher's matching loop wakes to batch buffered orders, per
// spec.md §4.5 "Buffering/matching loop".
package buffering

import "github.com/mdrp-sim/go-engine/internal/sim/vtime"

// Policy blocks the calling process for one buffering interval. An
// ErrInterrupted return means the dispatcher's matching loop is being
// torn down and should stop rather than matching again.
type Policy interface {
	Execute(p *vtime.Proc) error
}

// Policies is the closed set of buffering policies selectable by
// configuration.
func Policies(intervalSeconds int64) map[string]Policy {
	return map[string]Policy{
		"periodic": PeriodicPolicy{IntervalSeconds: intervalSeconds},
	}
}
