package hal

import "sync"

// Cortex-A9 private timer register offsets.
const (
	ptimerLoad    = 0x00
	ptimerCounter = 0x04
	ptimerControl = 0x08
	ptimerISR     = 0x0C
)

// Control register bits.
const (
	ptimerCtrlEnable     = 1 << 0
	ptimerCtrlAutoReload = 1 << 1
	ptimerCtrlIRQEnable  = 1 << 2
	ptimerCtrlPrescShift = 8
	ptimerCtrlPrescMask  = 0xFF << ptimerCtrlPrescShift
)

// PeriphClockHz is the peripheral clock feeding the private timer.
const PeriphClockHz = 100_000_000

// PrivateTimer models the per-core down-counter with auto-reload. Once armed
// it runs for process lifetime; each expiry latches IRQPrivateTimer pending
// in the GIC and reloads.
type PrivateTimer struct {
	mu sync.Mutex

	load    uint32
	counter uint32
	control uint32
	isr     uint32

	gic  *GIC
	line uint32
}

// NewPrivateTimer returns a timer wired to the given interrupt line.
func NewPrivateTimer(gic *GIC, line uint32) *PrivateTimer {
	return &PrivateTimer{gic: gic, line: line}
}

// Init arms the timer to assert its interrupt every intervalMillis
// milliseconds, choosing the smallest prescaler that makes the load value
// representable. Fails with ErrInvalidInterval when the interval is zero or
// beyond the counter's range.
func (t *PrivateTimer) Init(intervalMillis uint32) error {
	if intervalMillis == 0 {
		return ErrInvalidInterval
	}

	cycles := uint64(intervalMillis) * (PeriphClockHz / 1000)
	prescaler := uint64(0)
	for ; prescaler <= 0xFF; prescaler++ {
		if cycles/(prescaler+1) <= 1<<32 {
			break
		}
	}
	if prescaler > 0xFF {
		return ErrInvalidInterval
	}

	load := uint32(cycles/(prescaler+1) - 1)
	t.WriteReg(ptimerLoad, load)
	t.WriteReg(ptimerControl,
		uint32(prescaler)<<ptimerCtrlPrescShift|
			ptimerCtrlIRQEnable|ptimerCtrlAutoReload|ptimerCtrlEnable)
	return nil
}

// ClearInterrupt acknowledges the timer's interrupt condition
// (write-1-to-clear on the ISR register).
func (t *PrivateTimer) ClearInterrupt() {
	t.WriteReg(ptimerISR, 1)
}

// Advance steps the timer by n peripheral clock cycles. Called by the host
// clock pump.
func (t *PrivateTimer) Advance(n uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.control&ptimerCtrlEnable == 0 {
		return
	}

	prescale := uint64(t.control>>ptimerCtrlPrescShift&0xFF) + 1
	n /= prescale
	for n > 0 {
		step := uint64(t.counter) + 1
		if step > n {
			t.counter -= uint32(n)
			return
		}
		n -= step

		t.isr |= 1
		if t.control&ptimerCtrlIRQEnable != 0 && t.gic != nil {
			t.gic.SetPending(t.line)
		}
		if t.control&ptimerCtrlAutoReload == 0 {
			t.counter = 0
			return
		}
		t.counter = t.load
	}
}

// ReadReg reads a 32-bit timer register.
func (t *PrivateTimer) ReadReg(off uint32) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch off {
	case ptimerLoad:
		return t.load
	case ptimerCounter:
		return t.counter
	case ptimerControl:
		return t.control
	case ptimerISR:
		return t.isr
	}
	return 0
}

// WriteReg writes a 32-bit timer register. Writing the load register also
// reloads the counter, as on hardware.
func (t *PrivateTimer) WriteReg(off, v uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch off {
	case ptimerLoad:
		t.load = v
		t.counter = v
	case ptimerCounter:
		t.counter = v
	case ptimerControl:
		t.control = v
	case ptimerISR:
		t.isr &^= v & 1
	}
}
