package kernel

import (
	"context"
	"fmt"
)

// switchTo is the switch decision, invoked as each task's periodic systime
// event with the task's identifier as argument. Requesting the task that is
// already running refreshes its last-run time and does nothing else.
// Otherwise the current task's registers are saved into its slot and the
// current-task pointer moves; the actual control transfer completes on the
// interrupt exit path once end-of-interrupt has been signalled.
func (s *Sched) switchTo(arg uint32) {
	t := &s.tasks[TaskID(arg)]
	now := s.clock.Now()
	if s.current == t {
		t.lastRun = now
		return
	}

	if s.current != nil {
		fmt.Fprintf(s.con, "Switching context! Time %d; %d --> %d\n", now, s.current.id, t.id)
		s.save(s.current)
	} else {
		fmt.Fprintf(s.con, "Switching context! Time %d; (idle) --> %d\n", now, t.id)
	}
	t.lastRun = now
	s.current = t
}

// Run begins executing the first task added and dispatches forever; task
// activation from then on is driven entirely by timer interrupts. Returns
// only when ctx is cancelled (on hardware this loop never exits). Task
// goroutines parked in their slots are abandoned on return; a scheduler is
// for process lifetime.
func (s *Sched) Run(ctx context.Context) error {
	s.runCtx = ctx
	if s.count > 0 {
		s.current = &s.tasks[0]
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if t := s.current; t != nil {
			s.giveToTask(t)
			<-s.gate
			continue
		}
		if err := s.m.WaitInterrupt(ctx); err != nil {
			return err
		}
		s.poll()
	}
}

// giveToTask hands the CPU token to a task goroutine, starting it on first
// activation.
func (s *Sched) giveToTask(t *task) {
	if !t.live {
		t.live = true
		go s.taskMain(t)
	}
	t.resume <- struct{}{}
}

func (s *Sched) taskMain(t *task) {
	for {
		<-t.resume
		s.runSlice(t)
		s.gate <- struct{}{}
	}
}

// runSlice activates the task's entry with a fresh frame in its own mode
// and stack region, and turns a voluntary yield (or a plain return) into
// the trap exit: privileged mode, frame discarded, control back at the
// return address recorded at activation.
func (s *Sched) runSlice(t *task) {
	s.cpu.R = [13]uint32{}
	s.cpu.SP = stackTop(t.id)
	s.cpu.LR = dispatchPC
	s.cpu.PC = entryPC(t.id)
	s.cpu.Mode = ModeSys

	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(endOfSlice); !ok {
					panic(r)
				}
			}
		}()
		t.entry()
	}()

	s.cpu.Mode = ModeSvc
	s.cpu.SP = stackTop(t.id)
	s.cpu.PC = dispatchPC
	s.current = nil
}
