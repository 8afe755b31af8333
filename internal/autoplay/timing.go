package autoplay

import (
	"fmt"
	"time"
)

const DefaultStep = 2000 * time.Millisecond

// Timing paces one step: the selected cell stays highlighted for Highlight,
// then the click happens, then the loop idles for Dead.
type Timing struct {
	Highlight time.Duration
	Dead      time.Duration
}

// SplitStep gives half of step (rounded down to the millisecond) to the
// highlight and the rest to the dead phase.
func SplitStep(step time.Duration) Timing {
	highlight := (step / 2).Truncate(time.Millisecond)
	return Timing{Highlight: highlight, Dead: step - highlight}
}

// NewTiming resolves step and optional per-phase overrides. A zero step
// means [DefaultStep]; a dead phase that is not overridden gets what the
// highlight leaves of step.
func NewTiming(step time.Duration, highlight, dead *time.Duration) (Timing, error) {
	if step == 0 {
		step = DefaultStep
	}
	if step < 0 {
		return Timing{}, fmt.Errorf("negative step period %s", step)
	}

	t := SplitStep(step)
	if highlight != nil {
		if *highlight < 0 {
			return Timing{}, fmt.Errorf("negative highlight duration %s", *highlight)
		}
		t.Highlight = *highlight
		t.Dead = max(step-t.Highlight, 0)
	}
	if dead != nil {
		if *dead < 0 {
			return Timing{}, fmt.Errorf("negative dead duration %s", *dead)
		}
		t.Dead = *dead
	}
	return t, nil
}

func (t Timing) Step() time.Duration {
	return t.Highlight + t.Dead
}
