package game

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

var SystemClock Clock = systemClock{}

// Stopwatch is the timer behind StartTimer and StopTimer. It runs at most
// once: later Start calls are ignored, as are Stop calls before Start.
type Stopwatch struct {
	clock     Clock
	startedAt time.Time
	stoppedAt time.Time
}

func NewStopwatch(clock Clock) *Stopwatch {
	if clock == nil {
		clock = SystemClock
	}
	return &Stopwatch{clock: clock}
}

func (w *Stopwatch) Start() {
	if !w.startedAt.IsZero() {
		return
	}
	w.startedAt = w.clock.Now()
}

func (w *Stopwatch) Stop() {
	if w.startedAt.IsZero() || !w.stoppedAt.IsZero() {
		return
	}
	w.stoppedAt = w.clock.Now()
}

func (w *Stopwatch) Running() bool {
	return !w.startedAt.IsZero() && w.stoppedAt.IsZero()
}

func (w *Stopwatch) Elapsed() time.Duration {
	switch {
	case w.startedAt.IsZero():
		return 0
	case w.stoppedAt.IsZero():
		return w.clock.Now().Sub(w.startedAt)
	default:
		return w.stoppedAt.Sub(w.startedAt)
	}
}

// Seconds is the elapsed time in whole seconds, as shown on the counter.
func (w *Stopwatch) Seconds() int {
	return int(w.Elapsed() / time.Second)
}
