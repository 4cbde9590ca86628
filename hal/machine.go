package hal

import (
	"context"
	"time"
)

// Machine assembles the board: GIC, private timer and UART, plus the clock
// pump the host runner drives. Device registers are internally locked
// because the pump goroutine and the executing context touch them; kernel
// state above this boundary stays single-writer.
type Machine struct {
	gic   *GIC
	timer *PrivateTimer
	uart  *UART
}

// NewMachine wires up the board at reset.
func NewMachine() *Machine {
	gic := NewGIC()
	return &Machine{
		gic:   gic,
		timer: NewPrivateTimer(gic, IRQPrivateTimer),
		uart:  NewUART(gic, IRQUart0),
	}
}

func (m *Machine) GIC() *GIC            { return m.gic }
func (m *Machine) Timer() *PrivateTimer { return m.timer }
func (m *Machine) UART() *UART          { return m.uart }

// Advance runs the hardware clocks forward by d of simulated wall time.
func (m *Machine) Advance(d time.Duration) {
	cycles := uint64(d) * PeriphClockHz / uint64(time.Second)
	m.timer.Advance(cycles)
}

// PendingIRQ reports whether the CPU sees an asserted interrupt.
func (m *Machine) PendingIRQ() bool { return m.gic.PendingIRQ() }

// WaitInterrupt blocks until an interrupt is deliverable, like a WFI
// instruction. Returns early with the context's error on cancellation.
func (m *Machine) WaitInterrupt(ctx context.Context) error {
	for {
		if m.gic.PendingIRQ() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.gic.Raised():
		}
	}
}
