package systime

import "testing"

func TestTickMonotonic(t *testing.T) {
	c := NewClock()
	for i := 1; i <= 1000; i++ {
		c.Tick()
		if got := c.Now(); got != Time(i) {
			t.Fatalf("expected tick %d, got %d", i, got)
		}
	}
}

func TestPeriodicEventFiresOncePerPeriod(t *testing.T) {
	c := NewClock()
	var fired []Time
	err := c.Schedule(3, 4, func(arg uint32) {
		fired = append(fired, c.Now())
	}, 0)
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	for i := 0; i < 20; i++ {
		c.Tick()
	}

	want := []Time{3, 7, 11, 15, 19}
	if len(fired) != len(want) {
		t.Fatalf("expected %d fires, got %d (%v)", len(want), len(fired), fired)
	}
	for i, at := range want {
		if fired[i] != at {
			t.Fatalf("fire %d: expected tick %d, got %d", i, at, fired[i])
		}
	}
}

func TestOneShotFreesSlot(t *testing.T) {
	c := NewClock()
	fires := 0
	if err := c.Schedule(1, 0, func(uint32) { fires++ }, 0); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		c.Tick()
	}
	if fires != 1 {
		t.Fatalf("expected one-shot to fire once, fired %d times", fires)
	}
	if c.mask != 0 {
		t.Fatalf("expected empty occupancy after one-shot, mask %#x", c.mask)
	}
}

func TestPeriodicRescheduledBeforeInvoke(t *testing.T) {
	c := NewClock()
	var atDuringCallback Time
	if err := c.Schedule(2, 10, func(uint32) {
		atDuringCallback = c.table[0].at
	}, 0); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	c.Tick()
	c.Tick()
	if atDuringCallback != 12 {
		t.Fatalf("expected event rescheduled to 12 before callback, got %d", atDuringCallback)
	}
}

func TestSingleFirePerTickContention(t *testing.T) {
	c := NewClock()
	var fired []uint32
	cb := func(arg uint32) { fired = append(fired, arg) }

	if err := c.Schedule(5, 0, cb, 1); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	if err := c.Schedule(5, 0, cb, 2); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		c.Tick()
	}
	if len(fired) != 1 || fired[0] != 1 {
		t.Fatalf("expected only slot 0 to fire at tick 5, got %v", fired)
	}

	c.Tick()
	if len(fired) != 2 || fired[1] != 2 {
		t.Fatalf("expected slot 1 to fire on the next tick, got %v", fired)
	}
}

func TestScheduleCapacity(t *testing.T) {
	c := NewClock()
	for i := 0; i < maxEvents; i++ {
		if err := c.Schedule(Time(100+i), 0, func(uint32) {}, uint32(i)); err != nil {
			t.Fatalf("schedule %d failed: %v", i, err)
		}
	}

	before := c.table
	if err := c.Schedule(999, 0, func(uint32) {}, 99); err != ErrNoEventSlots {
		t.Fatalf("expected ErrNoEventSlots, got %v", err)
	}
	if c.mask != 0xFFFF {
		t.Fatalf("expected full occupancy, mask %#x", c.mask)
	}
	for i := range before {
		if c.table[i].at != before[i].at || c.table[i].arg != before[i].arg {
			t.Fatalf("slot %d modified by failed schedule", i)
		}
	}
}

func TestDueWraparound(t *testing.T) {
	if !Due(10, 0xFFFFFFF0) {
		t.Fatal("deadline before wrap should be due after wrap")
	}
	if Due(0xFFFFFFF0, 10) {
		t.Fatal("deadline after wrap should not be due before wrap")
	}
	if !Due(7, 7) {
		t.Fatal("deadline equal to now should be due")
	}
}

func TestEventFiresAcrossCounterWrap(t *testing.T) {
	c := NewClock()
	c.now = ^Time(0)

	var firedAt []Time
	if err := c.Schedule(1, 0, func(uint32) {
		firedAt = append(firedAt, c.Now())
	}, 0); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	c.Tick() // now wraps to 0
	if len(firedAt) != 0 {
		t.Fatalf("event fired early at wrap: %v", firedAt)
	}
	c.Tick()
	if len(firedAt) != 1 || firedAt[0] != 1 {
		t.Fatalf("expected fire at tick 1 after wrap, got %v", firedAt)
	}
}
