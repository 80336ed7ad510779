// Package prepositioningeval holds the policies that decide how often
// the dispatcher's prepositioning loop wakes to evaluate idle
// couriers, per spec.md §4.5 "Prepositioning loop".
package prepositioningeval

import "github.com/mdrp-sim/go-engine/internal/sim/vtime"

// Policy blocks the calling process for one prepositioning
// evaluation interval.
type Policy interface {
	Execute(p *vtime.Proc) error
}

// Policies is the closed set of prepositioning-evaluation policies
// selectable by configuration.
func Policies(intervalSeconds int64) map[string]Policy {
	return map[string]Policy{
		"periodic": PeriodicPolicy{IntervalSeconds: intervalSeconds},
	}
}
