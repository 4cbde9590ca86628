// Package tasks holds the workloads that ship with the image: busy-wait
// workers that run out their slice and return, and a serial echo that
// yields explicitly when its FIFO runs dry.
package tasks

import (
	"errors"

	"vex/hal"
	"vex/vexos/kernel"
	"vex/vexos/systime"
)

// Busywork returns the classic demo worker: announce entry with the
// current systime, burn CPU for hold ticks, announce exit and return. The
// return ends the slice, so the core sits idle until the task's periodic
// event next selects it.
func Busywork(s *kernel.Sched, name string, hold systime.Time) kernel.Entry {
	return func() {
		start := s.Now()
		s.Logf("Entering %s... systime %d", name, start)
		for !systime.Due(s.Now(), start+hold) {
		}
		s.Logf("Exiting %s...", name)
	}
}

// Echo drains the UART receive FIFO back out the transmit side and yields
// when the FIFO runs dry. A byte received with a line error is dropped
// after a diagnostic.
func Echo(s *kernel.Sched, u *hal.UART) kernel.Entry {
	return func() {
		for {
			b, err := u.ReadByte()
			switch {
			case err == nil:
				if b == '\r' {
					b = '\n'
				}
				u.WriteByte(b)
			case errors.Is(err, hal.ErrNoData):
				s.Yield()
			case errors.Is(err, hal.ErrReceiveError):
				s.Logf("uart: receive error, byte dropped")
			}
		}
	}
}
