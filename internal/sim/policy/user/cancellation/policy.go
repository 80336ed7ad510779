// Package cancellation holds the policies a User consults to decide
// how long to wait for an order to be picked up before giving up on
// it.
package cancellation

import "github.com/mdrp-sim/go-engine/internal/sim/vtime"

// Policy waits out a user's patience for a placed order and reports
// whether the wait elapsed without interruption (interruption means
// the order was picked up first, see actors.User).
type Policy interface {
	Execute(p *vtime.Proc) (elapsed bool, err error)
}

// Policies is the closed set of user cancellation policies selectable
// by configuration.
func Policies(patienceSeconds int64) map[string]Policy {
	return map[string]Policy{
		"patience": PatiencePolicy{Seconds: patienceSeconds},
	}
}
