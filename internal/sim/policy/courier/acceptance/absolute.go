package acceptance

import (
	"math/rand"

	"github.com/mdrp-sim/go-engine/internal/sim/vtime"
)

// AbsolutePolicy always accepts, regardless of acceptance rate. Used
// by scenario S1 in spec.md §8 ("accepted immediately under absolute
// acceptance").
type AbsolutePolicy struct{}

func (AbsolutePolicy) Execute(p *vtime.Proc, rng *rand.Rand, acceptanceRate float64) (bool, error) {
	return true, nil
}
