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
	// Ticks stops the run after that many ticks; zero runs until ctx ends.
	Ticks uint64
	// StepBudget is the number of app steps per tick.
	StepBudget int
	Host       HostConfig
}

// RunHeadless runs the app without opening a window. The frame clock
// advances by exactly 1/Hz per tick.
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	if cfg.StepBudget <= 0 {
		cfg.StepBudget = 1
	}

	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	h := newHost(cfg.Host, newFixedTime(d))
	return runTicks(ctx, h, newApp(h), d, cfg)
}

func runTicks(ctx context.Context, h *hostHAL, step func() error, d time.Duration, cfg HeadlessConfig) error {
	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			for i := 0; i < cfg.StepBudget; i++ {
				h.t.step(1)
				if step != nil {
					if err := step(); err != nil {
						return err
					}
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				h.logger.WriteLineString(fmt.Sprintf("hal: headless: %d ticks, %d frames presented", tick, h.surface.presented()))
				return nil
			}
		}
	}
}
