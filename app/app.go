// Package app is the composition root: it brings up the board, registers
// the stock workloads, and starts the scheduler.
package app

import (
	"context"
	"fmt"

	"vex/hal"
	"vex/internal/buildinfo"
	"vex/vexos/kernel"
	"vex/vexos/systime"
	"vex/vexos/tasks"
)

// TimerIntervalMillis is the tick period programmed into the private
// timer; one interrupt per interval advances system time by one.
const TimerIntervalMillis = 1

// Config selects optional workloads.
type Config struct {
	// Echo runs the serial echo task alongside the busy workers.
	Echo bool
}

// Boot configures the serial line, the interrupt controller and the tick
// timer, then returns a scheduler with the stock workloads registered.
func Boot(m *hal.Machine, cfg Config) (*kernel.Sched, error) {
	u := m.UART()
	if err := u.Configure(hal.UARTConfig{DataBits: 8, StopBits: 1, Baudrate: 9600}); err != nil {
		return nil, fmt.Errorf("uart: %w", err)
	}
	u.WriteString("vex " + buildinfo.Short() + "\n")

	gic := m.GIC()
	gic.Init()
	gic.Enable(hal.IRQPrivateTimer)
	gic.Enable(hal.IRQUart0)

	if err := m.Timer().Init(TimerIntervalMillis); err != nil {
		return nil, fmt.Errorf("timer: %w", err)
	}

	s := kernel.New(m, systime.NewClock())
	if err := s.AddTask(tasks.Busywork(s, "task0", 1000), 5000); err != nil {
		return nil, err
	}
	if err := s.AddTask(tasks.Busywork(s, "task1", 1000), 2000); err != nil {
		return nil, err
	}
	if cfg.Echo {
		if err := s.AddTask(tasks.Echo(s, u), 50); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Run boots the machine and dispatches until ctx is cancelled.
func Run(ctx context.Context, m *hal.Machine, cfg Config) error {
	s, err := Boot(m, cfg)
	if err != nil {
		return err
	}
	return s.Run(ctx)
}
