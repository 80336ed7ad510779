package acceptance

import (
	"math/rand"

	"github.com/mdrp-sim/go-engine/internal/sim/vtime"
)

// UniformPolicy accepts with probability equal to the courier's own
// acceptance rate, as a single Bernoulli trial.
type UniformPolicy struct{}

func (UniformPolicy) Execute(p *vtime.Proc, rng *rand.Rand, acceptanceRate float64) (bool, error) {
	return rng.Float64() < acceptanceRate, nil
}
