// Package autoplay drives a game with random clicks. It picks uniformly
// among covered unflagged cells and makes no attempt at deduction; the
// selection step is the place to plug in a smarter player.
package autoplay

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vancomm/minesweeper/internal/game"
	"github.com/vancomm/minesweeper/internal/mines"
)

var Log = logrus.New()

// Game is what the driver needs from a table. The driver only reads
// through Snapshot and only mutates through Act.
type Game interface {
	Snapshot() game.Snapshot
	Act(game.Action) ([]game.Effect, error)
	Highlight(*mines.Point)
	Changed()
}

type Reason uint8

const (
	Stopped Reason = iota + 1
	Cancelled
	Exhausted
	GameOver
	InvalidBoard
)

func (r Reason) String() string {
	switch r {
	case Stopped:
		return "stopped"
	case Cancelled:
		return "cancelled"
	case Exhausted:
		return "no cells left"
	case GameOver:
		return "game over"
	case InvalidBoard:
		return "invalid board"
	default:
		return "unknown"
	}
}

var (
	ErrAlreadyRunning = errors.New("autoplay already running")
	ErrGameOver       = errors.New("game already ended")
)

type Driver struct {
	game    Game
	rnd     *rand.Rand
	sleeper Sleeper

	mu      sync.Mutex
	running bool
	stop    bool
	cancel  context.CancelFunc
	done    chan struct{}
}

type Option func(*Driver)

func WithSleeper(s Sleeper) Option {
	return func(d *Driver) { d.sleeper = s }
}

func New(g Game, r *rand.Rand, opts ...Option) *Driver {
	d := &Driver{
		game:    g,
		rnd:     r,
		sleeper: TimerSleeper{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

/*
Start launches the loop in its own goroutine. ctx bounds the whole run, so
it should outlive the request that started it.

Starting on a malformed board or a finished game fails. Starting while a
run is active succeeds without starting a second one.
*/
func (d *Driver) Start(ctx context.Context, t Timing) error {
	runCtx, done, err := d.begin(ctx, t)
	if errors.Is(err, ErrAlreadyRunning) {
		Log.Info("autoplay already running")
		return nil
	}
	if err != nil {
		return err
	}
	go d.loop(runCtx, t, done)
	return nil
}

// Run is Start in the calling goroutine. It returns when the loop exits.
func (d *Driver) Run(ctx context.Context, t Timing) (Reason, error) {
	runCtx, done, err := d.begin(ctx, t)
	if err != nil {
		return 0, err
	}
	return d.loop(runCtx, t, done), nil
}

func (d *Driver) begin(ctx context.Context, t Timing) (context.Context, chan struct{}, error) {
	snap := d.game.Snapshot()
	if err := snap.Board.Validate(); err != nil {
		Log.WithError(err).Error("cannot start autoplay")
		return nil, nil, err
	}
	if snap.State.Terminal() {
		Log.WithField("state", snap.State.String()).Info("cannot start autoplay: game already ended")
		return nil, nil, ErrGameOver
	}

	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return nil, nil, ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	d.running = true
	d.stop = false
	d.cancel = cancel
	d.done = make(chan struct{})
	done := d.done
	d.mu.Unlock()

	Log.WithFields(logrus.Fields{
		"highlight": t.Highlight.String(),
		"dead":      t.Dead.String(),
	}).Info("starting autoplay")
	d.game.Changed()

	return runCtx, done, nil
}

func (d *Driver) loop(ctx context.Context, t Timing, done chan struct{}) (reason Reason) {
	defer func() {
		d.game.Highlight(nil)

		d.mu.Lock()
		d.cancel()
		d.running = false
		d.stop = false
		d.cancel = nil
		d.done = nil
		d.mu.Unlock()

		close(done)
		d.game.Changed()
		Log.WithField("reason", reason.String()).Info("autoplay cleanup complete")
	}()

	for {
		snap := d.game.Snapshot()
		if snap.Board.Validate() != nil {
			return InvalidBoard
		}
		if snap.State.Terminal() {
			return GameOver
		}
		if d.stopRequested() {
			return Stopped
		}
		if ctx.Err() != nil {
			return Cancelled
		}

		hidden := snap.Board.Hidden()
		if len(hidden) == 0 {
			return Exhausted
		}
		p := d.pick(hidden)
		Log.WithField("cell", p.String()).Debug("autoplay selected cell")

		d.game.Highlight(&p)
		if err := d.sleeper.Sleep(ctx, t.Highlight); err != nil {
			return Cancelled
		}
		d.game.Highlight(nil)

		// Rejections are logged by the table; the next iteration sees the
		// fresh state either way.
		_, _ = d.game.Act(game.SimulatedReveal(p.Row, p.Col))

		if err := d.sleeper.Sleep(ctx, t.Dead); err != nil {
			return Cancelled
		}
	}
}

func (d *Driver) pick(cells []mines.Point) mines.Point {
	return cells[d.rnd.IntN(len(cells))]
}

// Stop asks the loop to exit at its next iteration boundary.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running && !d.stop {
		d.stop = true
		Log.Info("stopping autoplay")
	}
}

// Cancel stops the loop immediately, interrupting any pause, and waits for
// its cleanup to finish.
func (d *Driver) Cancel() {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.stop = d.running
	d.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

func (d *Driver) stopRequested() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stop
}

// Sleeper suspends the loop between steps.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type TimerSleeper struct{}

func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
