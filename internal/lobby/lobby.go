// Package lobby keeps the live tables of a server process.
package lobby

import (
	"context"
	"errors"
	"hash/maphash"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vancomm/minesweeper/internal/autoplay"
	"github.com/vancomm/minesweeper/internal/game"
	"github.com/vancomm/minesweeper/internal/mines"
)

var Log = logrus.New()

var (
	ErrNotFound = errors.New("table not found")
	ErrClosed   = errors.New("lobby closed")
)

// Entry is one table and the driver that can autoplay it.
type Entry struct {
	ID     uuid.UUID
	Table  *game.Table
	Driver *autoplay.Driver

	ctx context.Context
}

// StartAutoplay starts the driver on a context owned by the lobby, so the
// run outlives the request that started it.
func (e *Entry) StartAutoplay(t autoplay.Timing) error {
	return e.Driver.Start(e.ctx, t)
}

type Lobby struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*Entry
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc

	clock   game.Clock
	newRand func() *rand.Rand
	sleeper autoplay.Sleeper
}

type Option func(*Lobby)

func WithClock(c game.Clock) Option {
	return func(l *Lobby) { l.clock = c }
}

// WithRand sets the source of per-table random generators.
func WithRand(f func() *rand.Rand) Option {
	return func(l *Lobby) { l.newRand = f }
}

func WithSleeper(s autoplay.Sleeper) Option {
	return func(l *Lobby) { l.sleeper = s }
}

func New(opts ...Option) *Lobby {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Lobby{
		entries: make(map[uuid.UUID]*Entry),
		ctx:     ctx,
		cancel:  cancel,
		clock:   game.SystemClock,
		newRand: createRand,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

// Create deals a new table with difficulty d.
func (l *Lobby) Create(d mines.Difficulty) (*Entry, error) {
	table, err := game.NewTable(d, l.newRand(), l.clock)
	if err != nil {
		return nil, err
	}

	var opts []autoplay.Option
	if l.sleeper != nil {
		opts = append(opts, autoplay.WithSleeper(l.sleeper))
	}
	driver := autoplay.New(table, l.newRand(), opts...)
	table.SetAutoplay(driver)

	e := &Entry{
		ID:     uuid.New(),
		Table:  table,
		Driver: driver,
		ctx:    l.ctx,
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, ErrClosed
	}
	l.entries[e.ID] = e
	count := len(l.entries)
	l.mu.Unlock()

	Log.WithFields(logrus.Fields{
		"table":  e.ID.String(),
		"size":   d.Size(),
		"mines":  d.Mines,
		"tables": count,
	}).Info("created table")

	return e, nil
}

func (l *Lobby) Get(id uuid.UUID) (*Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// Remove drops a table and cancels its driver.
func (l *Lobby) Remove(id uuid.UUID) error {
	l.mu.Lock()
	e, ok := l.entries[id]
	delete(l.entries, id)
	l.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	e.Driver.Cancel()
	Log.WithField("table", id.String()).Info("removed table")
	return nil
}

func (l *Lobby) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Sweep evicts tables nobody has touched for ttl and returns how many went.
func (l *Lobby) Sweep(ttl time.Duration) int {
	deadline := l.clock.Now().Add(-ttl)

	l.mu.Lock()
	var evicted []*Entry
	for id, e := range l.entries {
		if e.Table.IdleSince().Before(deadline) {
			evicted = append(evicted, e)
			delete(l.entries, id)
		}
	}
	l.mu.Unlock()

	for _, e := range evicted {
		e.Driver.Cancel()
		Log.WithField("table", e.ID.String()).Info("evicted idle table")
	}
	return len(evicted)
}

// Janitor sweeps every interval until ctx is done.
func (l *Lobby) Janitor(ctx context.Context, interval, ttl time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := l.Sweep(ttl); n > 0 {
				Log.WithFields(logrus.Fields{
					"evicted": n,
					"tables":  l.Len(),
				}).Debug("sweep complete")
			}
		}
	}
}

// Close cancels every driver and refuses new tables.
func (l *Lobby) Close() {
	l.mu.Lock()
	l.closed = true
	entries := make([]*Entry, 0, len(l.entries))
	for _, e := range l.entries {
		entries = append(entries, e)
	}
	l.mu.Unlock()

	l.cancel()
	for _, e := range entries {
		e.Driver.Cancel()
	}
	Log.WithField("tables", len(entries)).Info("lobby closed")
}
