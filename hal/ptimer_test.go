package hal

import (
	"errors"
	"testing"
)

func TestTimerInitProgramsLoadAndControl(t *testing.T) {
	tm := NewPrivateTimer(nil, IRQPrivateTimer)
	if err := tm.Init(1); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if v := tm.ReadReg(ptimerLoad); v != 99_999 {
		t.Fatalf("load = %d, want 99999", v)
	}
	if v := tm.ReadReg(ptimerCounter); v != 99_999 {
		t.Fatalf("counter not reloaded on load write: %d", v)
	}
	ctl := tm.ReadReg(ptimerControl)
	want := uint32(ptimerCtrlEnable | ptimerCtrlAutoReload | ptimerCtrlIRQEnable)
	if ctl != want {
		t.Fatalf("control = %#x, want %#x", ctl, want)
	}
}

func TestTimerInitPicksPrescalerForLongIntervals(t *testing.T) {
	tm := NewPrivateTimer(nil, IRQPrivateTimer)
	// 60 s needs 6e9 cycles, one past the counter's range at prescaler 0.
	if err := tm.Init(60_000); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if p := tm.ReadReg(ptimerControl) >> ptimerCtrlPrescShift & 0xFF; p != 1 {
		t.Fatalf("prescaler = %d, want 1", p)
	}
	if v := tm.ReadReg(ptimerLoad); v != 3_000_000_000-1 {
		t.Fatalf("load = %d, want %d", v, uint32(3_000_000_000-1))
	}
}

func TestTimerInitRejectsUnrepresentableIntervals(t *testing.T) {
	tm := NewPrivateTimer(nil, IRQPrivateTimer)
	if err := tm.Init(0); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("init(0) = %v, want ErrInvalidInterval", err)
	}
	if err := tm.Init(20_000_000); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("init(20000000) = %v, want ErrInvalidInterval", err)
	}
}

func TestTimerExpiryLatchesInterruptAndReloads(t *testing.T) {
	g := newEnabledGIC(IRQPrivateTimer)
	tm := NewPrivateTimer(g, IRQPrivateTimer)
	if err := tm.Init(1); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	tm.Advance(99_999)
	if g.PendingIRQ() {
		t.Fatal("interrupt asserted before expiry")
	}
	if v := tm.ReadReg(ptimerCounter); v != 0 {
		t.Fatalf("counter = %d, want 0", v)
	}

	tm.Advance(1)
	if !g.PendingIRQ() {
		t.Fatal("expiry did not assert the interrupt")
	}
	if v := tm.ReadReg(ptimerISR); v&1 == 0 {
		t.Fatal("ISR bit not set on expiry")
	}
	if v := tm.ReadReg(ptimerCounter); v != 99_999 {
		t.Fatalf("counter not reloaded: %d", v)
	}

	tm.ClearInterrupt()
	if v := tm.ReadReg(ptimerISR); v&1 != 0 {
		t.Fatal("ISR bit survived write-1-to-clear")
	}
}

func TestTimerExpiresOncePerInterval(t *testing.T) {
	fired := 0
	g := newEnabledGIC(IRQPrivateTimer)
	tm := NewPrivateTimer(g, IRQPrivateTimer)
	if err := tm.Init(1); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		tm.Advance(100_000)
		if id := g.Acknowledge(); id == IRQPrivateTimer {
			fired++
			g.EndOfInterrupt(id)
		}
	}
	if fired != 5 {
		t.Fatalf("fired %d times over 5 intervals", fired)
	}
}

func TestDisabledTimerIgnoresAdvance(t *testing.T) {
	g := newEnabledGIC(IRQPrivateTimer)
	tm := NewPrivateTimer(g, IRQPrivateTimer)
	tm.Advance(1 << 40)
	if g.PendingIRQ() {
		t.Fatal("disarmed timer asserted an interrupt")
	}
}
