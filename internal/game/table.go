package game

import (
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vancomm/minesweeper/internal/mines"
)

// Autoplayer is the part of the autoplay driver a Table controls.
type Autoplayer interface {
	// Stop asks the driver to halt at its next step boundary.
	Stop()
	// Cancel halts the driver and waits for it to finish.
	Cancel()
	Running() bool
}

// Snapshot is a read-only view of a Table. Board and History are never
// mutated after the snapshot is taken.
type Snapshot struct {
	Difficulty     mines.Difficulty
	Board          *mines.Board
	State          State
	MineCount      int
	FlagCount      int
	ElapsedSeconds int
	History        []HistoryEntry
	Highlight      *mines.Point
	Autoplaying    bool
}

/*
Table owns the current Session and serializes every action on it. It is
the only mutation path: manual input and the autoplay driver both go
through [Table.Act].
*/
type Table struct {
	mu        sync.Mutex
	session   *Session
	highlight *mines.Point
	rnd       *rand.Rand
	clock     Clock
	touched   time.Time

	autoplay Autoplayer

	subMu       sync.Mutex
	nextSub     int
	subscribers map[int]chan struct{}
}

func NewTable(d mines.Difficulty, r *rand.Rand, clock Clock) (*Table, error) {
	if clock == nil {
		clock = SystemClock
	}
	session, err := NewSession(d, r, clock)
	if err != nil {
		return nil, err
	}
	return newTable(session, r, clock), nil
}

// NewTableWithSession wraps an existing session, e.g. one built on a fixed
// mine layout.
func NewTableWithSession(session *Session, r *rand.Rand) *Table {
	return newTable(session, r, session.clock)
}

func newTable(session *Session, r *rand.Rand, clock Clock) *Table {
	return &Table{
		session:     session,
		rnd:         r,
		clock:       clock,
		touched:     clock.Now(),
		subscribers: make(map[int]chan struct{}),
	}
}

func (t *Table) SetAutoplay(a Autoplayer) {
	t.mu.Lock()
	t.autoplay = a
	t.mu.Unlock()
}

func (t *Table) autoplayer() Autoplayer {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.autoplay
}

// Act decides and applies a, then notifies subscribers if anything
// changed. Reaching won or lost stops the autoplay driver.
func (t *Table) Act(a Action) ([]Effect, error) {
	t.mu.Lock()
	t.touched = t.clock.Now()
	wasTerminal := t.session.State.Terminal()

	effects, err := Decide(t.session, a)
	if err != nil {
		t.mu.Unlock()
		Log.WithError(err).WithField("action", a.String()).Warn("action rejected")
		return nil, err
	}
	t.session.Apply(effects...)

	state := t.session.State
	autoplay := t.autoplay
	t.mu.Unlock()

	if len(effects) == 0 {
		return nil, nil
	}

	Log.WithFields(logrus.Fields{
		"action":  a.String(),
		"effects": effectNames(effects),
	}).Debug("applied action")

	if !wasTerminal && state.Terminal() {
		fields := logrus.Fields{"state": state.String(), "cell": a.Point.String()}
		if a.Simulated {
			Log.WithFields(fields).Info("game ended by autoplay")
		} else {
			Log.WithFields(fields).Info("game ended")
		}
		if autoplay != nil {
			autoplay.Stop()
		}
	}

	t.notify()
	return effects, nil
}

// NewGame cancels autoplay and replaces the session with a fresh one.
func (t *Table) NewGame(d mines.Difficulty) error {
	if a := t.autoplayer(); a != nil {
		a.Cancel()
	}

	t.mu.Lock()
	session, err := NewSession(d, t.rnd, t.clock)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	t.session = session
	t.highlight = nil
	t.touched = t.clock.Now()
	t.mu.Unlock()

	Log.WithFields(logrus.Fields{
		"difficulty": d.Name,
		"size":       d.Size(),
		"mines":      d.Mines,
	}).Info("new game")

	t.notify()
	return nil
}

// Restart starts a new game with the current difficulty.
func (t *Table) Restart() error {
	t.mu.Lock()
	d := t.session.Difficulty
	t.mu.Unlock()
	return t.NewGame(d)
}

func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	s := t.session
	snap := Snapshot{
		Difficulty:     s.Difficulty,
		Board:          s.Board,
		State:          s.State,
		MineCount:      s.MineCount,
		FlagCount:      s.FlagCount,
		ElapsedSeconds: s.ElapsedSeconds(),
		History:        slices.Clone(s.History),
	}
	if t.highlight != nil {
		p := *t.highlight
		snap.Highlight = &p
	}
	autoplay := t.autoplay
	t.mu.Unlock()

	if autoplay != nil {
		snap.Autoplaying = autoplay.Running()
	}
	return snap
}

// Highlight marks the cell the autoplay driver is about to click; nil
// clears it.
func (t *Table) Highlight(p *mines.Point) {
	t.mu.Lock()
	if p != nil {
		c := *p
		p = &c
	}
	t.highlight = p
	t.mu.Unlock()
	t.notify()
}

// IdleSince is the time of the last action or new game.
func (t *Table) IdleSince() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.touched
}

// Subscribe returns a channel that receives a value whenever the table
// changes. Notifications coalesce; call the returned func to unsubscribe.
func (t *Table) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	t.subMu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subscribers[id] = ch
	t.subMu.Unlock()

	return ch, func() {
		t.subMu.Lock()
		delete(t.subscribers, id)
		t.subMu.Unlock()
	}
}

// Changed notifies subscribers, e.g. after the autoplay driver starts or
// stops.
func (t *Table) Changed() {
	t.notify()
}

func (t *Table) notify() {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	for _, ch := range t.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
