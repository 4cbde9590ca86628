package kernel

import (
	"fmt"

	"vex/hal"
	"vex/vexos/systime"
)

// endOfSlice is the voluntary-termination trap. It unwinds the task's
// activation back to the dispatch point in runSlice.
type endOfSlice struct{}

// Now returns the current system tick. Like every kernel service a task
// calls, it is a preemption point: a pending interrupt is taken here, so a
// task busy-waiting on Now is preempted on the next tick after its slice
// expires.
func (s *Sched) Now() systime.Time {
	s.poll()
	return s.clock.Now()
}

// Logf writes one diagnostic line to the serial transport. Preemption
// point.
func (s *Sched) Logf(format string, args ...any) {
	s.poll()
	fmt.Fprintf(s.con, format+"\n", args...)
}

// Yield ends the running task's slice: the trap discards the activation
// frame and returns control to the dispatch point, and no task is current
// until the next timer-driven selection. Must be called from a task.
func (s *Sched) Yield() {
	panic(endOfSlice{})
}

// poll is the CPU's interrupt check, run at every preemption point by
// whichever context holds the token.
func (s *Sched) poll() {
	s.checkStop()
	if !s.m.PendingIRQ() {
		return
	}
	s.irqEntry()
}

// checkStop ends the running slice when the scheduler's context has been
// cancelled, so Run can unwind on the host. Irrelevant on hardware.
func (s *Sched) checkStop() {
	if s.runCtx == nil || s.runCtx.Err() == nil || s.current == nil {
		return
	}
	panic(endOfSlice{})
}

// irqEntry is the interrupt entry path: acknowledge exactly one interrupt,
// advance system time on a timer tick, retire the acknowledged identifier,
// then complete whatever context switch the tick decided. A spurious
// acknowledge is not retired.
func (s *Sched) irqEntry() {
	running := s.current

	id := s.ic.Acknowledge()
	switch id {
	case hal.IRQPrivateTimer:
		s.m.Timer().ClearInterrupt()
		s.clock.Tick()
	case hal.IRQSpurious:
		return
	}
	s.ic.EndOfInterrupt(id)

	if s.current != running {
		s.switchFrom(running)
	}
}

// switchFrom completes a context switch after interrupt exit: restore the
// chosen task's register file, hand it the CPU token, and park the
// preempted context until its own context is restored later.
func (s *Sched) switchFrom(running *task) {
	s.restore(s.current)
	s.giveToTask(s.current)

	if running != nil {
		<-running.resume
		return
	}
	<-s.gate
}
