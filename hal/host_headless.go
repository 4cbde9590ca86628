package hal

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	Hz      int
	Ticks   uint64
}

// RunHeadless pumps the machine clocks from a wall-clock ticker, without a
// window. Stops after cfg.Ticks pump beats (0 = run until cancelled).
func RunHeadless(ctx context.Context, m *Machine, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 1000
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	var beats uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			m.Advance(d)
			beats++
			if cfg.Ticks > 0 && beats >= cfg.Ticks {
				return nil
			}
		}
	}
}
