package vtime

import "container/heap"

// Env is a single-threaded, cooperative virtual-time scheduler. All
// "concurrency" among Procs is interleaved by Env at explicit
// suspension points (Proc.Timeout); at most one goroutine ever
// executes application code at any instant, so registry mutations in
// callers (e.g. the dispatcher) need no locking of their own.
type Env struct {
	now   int64
	queue eventQueue
	seq   uint64
}

// NewEnv creates a scheduler whose clock starts at startSecond.
func NewEnv(startSecond int64) *Env {
	e := &Env{now: startSecond}
	heap.Init(&e.queue)
	return e
}

// Now returns the current simulated second.
func (e *Env) Now() int64 { return e.now }

func (e *Env) push(ev *event) {
	e.seq++
	ev.seq = e.seq
	heap.Push(&e.queue, ev)
}

// Schedule runs fn as a plain callback, on the scheduler's own
// goroutine, after delay simulated seconds. fn must not block.
func (e *Env) Schedule(delay int64, priority Priority, fn func()) {
	if delay < 0 {
		delay = 0
	}
	e.push(&event{
		time:     e.now + delay,
		priority: priority,
		kind:     kindCallback,
		callback: fn,
	})
}

// Process starts fn as a new cooperative process and returns its
// handle. fn begins executing on the scheduler's next tick (ahead of
// any plain Normal-priority event scheduled for the same instant),
// mirroring simpy's Process/Initialize ordering.
func (e *Env) Process(fn func(p *Proc)) *Proc {
	p := &Proc{
		env:    e,
		resume: make(chan resumeMsg),
		done:   make(chan struct{}),
	}

	go func() {
		msg := <-p.resume
		if !msg.interrupted {
			p.run(fn)
		}
		p.finished = true
		p.done <- struct{}{}
	}()

	kickoff := &event{
		time:     e.now,
		priority: PriorityUrgent,
		kind:     kindWake,
		proc:     p,
	}
	p.pending = kickoff
	e.push(kickoff)

	return p
}

// Interrupt delivers an interruption to p at its current suspension
// point. p must currently be suspended (blocked inside Timeout, or
// waiting for its first resumption) — true of every Proc this
// simulator interrupts, since the interrupting code always runs from
// a different goroutine that is itself the only one currently active.
// Interrupt blocks until p reaches its next suspension point or
// finishes, exactly like simpy's synchronous interrupt() call.
func (e *Env) Interrupt(p *Proc) {
	if p == nil || p.finished {
		return
	}
	if p.pending != nil {
		p.pending.canceled = true
		p.pending = nil
	}
	p.resume <- resumeMsg{interrupted: true}
	<-p.done
	p.repanic()
}

// Run drains the event queue, advancing Now() as it goes, until the
// queue is empty or the next event's time exceeds until (pass a
// negative until to run to exhaustion).
func (e *Env) Run(until int64) {
	for e.queue.Len() > 0 {
		next := e.queue[0]
		if until >= 0 && next.time > until {
			return
		}

		ev := heap.Pop(&e.queue).(*event)
		if ev.canceled {
			continue
		}
		e.now = ev.time

		switch ev.kind {
		case kindWake:
			ev.proc.resume <- resumeMsg{}
			<-ev.proc.done
			ev.proc.repanic()
		case kindCallback:
			ev.callback()
		}
	}
}
