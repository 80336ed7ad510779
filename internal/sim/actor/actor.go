// Package actor holds the common shape shared by every long-lived
// simulated entity (couriers, users, the dispatcher): a
// scheduler handle, a string-tagged condition, and a handle to the
// currently running top-level state so it can be interrupted.
package actor

import "github.com/mdrp-sim/go-engine/internal/sim/vtime"

// Actor is embedded by every entity that runs as a vtime.Proc.
type Actor struct {
	Env       *vtime.Env
	Condition string
	State     *vtime.Proc
}

// Interrupt raises an interruption at the actor's current state, if
// one is running. A no-op if the actor has no active state or it has
// already finished.
func (a *Actor) Interrupt() {
	if a.State == nil {
		return
	}
	a.Env.Interrupt(a.State)
}
