package hal

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAdvanceDrivesTimerTicks(t *testing.T) {
	m := NewMachine()
	m.GIC().Init()
	m.GIC().Enable(IRQPrivateTimer)
	if err := m.Timer().Init(1); err != nil {
		t.Fatalf("timer init failed: %v", err)
	}

	m.Advance(999 * time.Microsecond)
	if m.PendingIRQ() {
		t.Fatal("interrupt before a full interval elapsed")
	}
	m.Advance(time.Microsecond)
	if !m.PendingIRQ() {
		t.Fatal("no interrupt after a full interval")
	}
}

func TestWaitInterruptWakesOnPending(t *testing.T) {
	m := NewMachine()
	m.GIC().Init()
	m.GIC().Enable(IRQPrivateTimer)

	go func() {
		time.Sleep(10 * time.Millisecond)
		m.GIC().SetPending(IRQPrivateTimer)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.WaitInterrupt(ctx); err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if !m.PendingIRQ() {
		t.Fatal("woke without a deliverable interrupt")
	}
}

func TestWaitInterruptHonorsCancellation(t *testing.T) {
	m := NewMachine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.WaitInterrupt(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("wait = %v, want context.Canceled", err)
	}
}
