// Package kernel implements the preemptive scheduler: a fixed task table,
// the switch decision driven by systime events, and the context-switch and
// trap layer that moves the emulated core between tasks.
//
// Concurrency model: there is exactly one CPU token. At any instant either
// the dispatch loop or one task goroutine holds it; interrupts are serviced
// by the token holder at preemption points (every kernel service call a task
// makes). All kernel and systime state is therefore single-writer and needs
// no locks; only the hal register blocks are internally locked.
package kernel

import (
	"context"
	"errors"
	"io"

	"vex/hal"
	"vex/vexos/systime"
)

// MaxTasks is the task table capacity.
const MaxTasks = 10

// TaskID identifies a task; it equals the task's table index.
type TaskID uint8

// Entry is a task body: a zero-argument procedure that runs forever or ends
// its slice with Yield (returning normally counts as a yield).
type Entry func()

// ErrTooManyTasks is returned when the task table is full.
var ErrTooManyTasks = errors.New("kernel: too many tasks")

type task struct {
	id      TaskID
	entry   Entry
	period  systime.Time
	lastRun systime.Time
	ctx     Context

	resume chan struct{}
	live   bool
}

// Sched owns the task table, the current-task pointer and the live register
// file. One per machine; create with New, register tasks, then Run.
type Sched struct {
	m     *hal.Machine
	ic    hal.IntController
	clock *systime.Clock
	con   io.Writer

	cpu   CPU
	tasks [MaxTasks]task
	count uint8

	current *task

	runCtx context.Context
	gate   chan struct{}
}

// New returns a scheduler for the given machine and clock. Diagnostics go
// out the machine's UART.
func New(m *hal.Machine, clock *systime.Clock) *Sched {
	return &Sched{
		m:     m,
		ic:    m.GIC(),
		clock: clock,
		con:   m.UART(),
		gate:  make(chan struct{}),
	}
}

// AddTask appends a task and registers its periodic switch event. The new
// task first becomes due one period from now. Fails with ErrTooManyTasks
// when the table is full and with systime.ErrNoEventSlots when the event
// table is; neither failure modifies prior state. Registration only makes
// sense before Run.
func (s *Sched) AddTask(entry Entry, period systime.Time) error {
	if s.count >= MaxTasks {
		return ErrTooManyTasks
	}
	id := TaskID(s.count)
	if err := s.clock.Schedule(s.clock.Now()+period, period, s.switchTo, uint32(id)); err != nil {
		return err
	}
	s.tasks[id] = task{
		id:     id,
		entry:  entry,
		period: period,
		resume: make(chan struct{}),
	}
	s.count++
	return nil
}
