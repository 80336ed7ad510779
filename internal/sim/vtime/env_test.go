package vtime_test

import (
	"testing"

	"github.com/mdrp-sim/go-engine/internal/sim/vtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeoutAdvancesClock(t *testing.T) {
	env := vtime.NewEnv(0)
	var observed int64

	env.Process(func(p *vtime.Proc) {
		require.NoError(t, p.Timeout(5))
		observed = p.Env().Now()
	})

	env.Run(-1)
	assert.EqualValues(t, 5, observed)
}

func TestFIFOAtEqualTime(t *testing.T) {
	env := vtime.NewEnv(0)
	var order []int

	for i := 0; i < 3; i++ {
		i := i
		env.Process(func(p *vtime.Proc) {
			order = append(order, i)
		})
	}

	env.Run(-1)
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestInterruptDuringTimeout(t *testing.T) {
	env := vtime.NewEnv(0)
	var interrupted bool
	var target *vtime.Proc

	target = env.Process(func(p *vtime.Proc) {
		err := p.Timeout(100)
		interrupted = err == vtime.ErrInterrupted
	})

	env.Process(func(p *vtime.Proc) {
		require.NoError(t, p.Timeout(1))
		p.Env().Interrupt(target)
	})

	env.Run(-1)
	assert.True(t, interrupted)
	assert.EqualValues(t, 1, env.Now())
}

func TestScheduleCallback(t *testing.T) {
	env := vtime.NewEnv(0)
	var fired int64 = -1

	env.Schedule(10, vtime.PriorityNormal, func() {
		fired = env.Now()
	})

	env.Run(-1)
	assert.EqualValues(t, 10, fired)
}

func TestUrgentBeforeNormalAtSameTime(t *testing.T) {
	env := vtime.NewEnv(0)
	var order []string

	env.Schedule(5, vtime.PriorityNormal, func() { order = append(order, "normal") })
	env.Schedule(5, vtime.PriorityUrgent, func() { order = append(order, "urgent") })

	env.Run(-1)
	assert.Equal(t, []string{"urgent", "normal"}, order)
}
