// Package acceptance holds the policies a courier consults to decide
// whether to accept an incoming Notification. Each policy is itself a
// process: it may consume simulated time before returning its
// decision, so Execute takes the scheduler's active Proc and runs on
// its goroutine rather than being a plain function.
package acceptance

import (
	"math/rand"

	"github.com/mdrp-sim/go-engine/internal/sim/vtime"
)

// Policy decides whether a courier with the given acceptance rate
// accepts a notification. It may call p.Timeout to model a
// deliberation delay before returning. rng is the courier's own
// deterministic random source (threaded from World's seed, so repeat
// runs with the same seed are idempotent per spec.md §8 property 6).
type Policy interface {
	Execute(p *vtime.Proc, rng *rand.Rand, acceptanceRate float64) (accept bool, err error)
}

// Policies is the closed set of acceptance policies selectable by
// configuration, mirroring the Python reference's
// COURIER_ACCEPTANCE_POLICIES_MAP.
func Policies() map[string]Policy {
	return map[string]Policy{
		"uniform":  UniformPolicy{},
		"absolute": AbsolutePolicy{},
	}
}
