// Package systime keeps the monotonic system tick and a fixed table of
// time-triggered callbacks. All mutation happens on the interrupt path (Tick
// is called once per timer interrupt, Schedule at init or from callbacks);
// task-level code only reads, so no locking is needed.
package systime

import "errors"

// Time is a system tick count. It wraps after exhausting 32 bits; use Due
// for comparisons, never direct ordering operators.
type Time uint32

// Callback is a scheduled event's action. The argument is an opaque machine
// word carried from Schedule.
type Callback func(arg uint32)

// ErrNoEventSlots is returned when the event table is full.
var ErrNoEventSlots = errors.New("systime: no event slots available")

const maxEvents = 16

type event struct {
	at     Time
	period Time
	cb     Callback
	arg    uint32
}

// Clock is the process-wide tick counter plus event table. The zero value
// is ready at tick 0 with no events.
type Clock struct {
	table [maxEvents]event
	mask  uint16
	now   Time
}

// NewClock returns a clock at tick 0.
func NewClock() *Clock {
	return &Clock{}
}

// Now returns the current tick.
func (c *Clock) Now() Time {
	return c.now
}

// Tick advances the clock by one tick and fires at most one due event, the
// lowest occupied slot first. Firing one event per tick is a deliberate
// property the scheduler is written against: simultaneously due events in
// higher slots fire on subsequent ticks. A periodic event is rescheduled to
// now+period before its callback runs; a one-shot's slot is freed before its
// callback runs, so a callback can never re-enter itself within one tick.
func (c *Clock) Tick() {
	c.now++

	for slot := 0; slot < maxEvents; slot++ {
		bit := uint16(1) << slot
		if c.mask&bit == 0 {
			continue
		}
		e := &c.table[slot]
		if !Due(c.now, e.at) {
			continue
		}

		if e.period != 0 {
			e.at = c.now + e.period
		} else {
			c.mask &^= bit
		}
		e.cb(e.arg)
		break
	}
}

// Schedule registers a callback to fire once the tick reaches at, repeating
// every period ticks when period is non-zero. Fails with ErrNoEventSlots
// when the table is full, leaving it unmodified.
func (c *Clock) Schedule(at, period Time, cb Callback, arg uint32) error {
	for slot := 0; slot < maxEvents; slot++ {
		bit := uint16(1) << slot
		if c.mask&bit != 0 {
			continue
		}
		c.table[slot] = event{at: at, period: period, cb: cb, arg: arg}
		c.mask |= bit
		return nil
	}
	return ErrNoEventSlots
}

// Due reports whether a deadline has been reached. The signed-difference
// compare stays correct across counter wraparound for deadlines within half
// the counter range, which a plain now >= at comparison does not.
func Due(now, at Time) bool {
	return int32(now-at) >= 0
}
