package lobby

import (
	"context"
	"math/rand/v2"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vancomm/minesweeper/internal/autoplay"
	"github.com/vancomm/minesweeper/internal/game"
	"github.com/vancomm/minesweeper/internal/mines"
)

func TestMain(m *testing.M) {
	for _, log := range []*logrus.Logger{Log, game.Log, autoplay.Log} {
		log.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
		})
	}
	os.Exit(m.Run())
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// blockingSleeper parks the driver until its context is cancelled.
type blockingSleeper struct {
	entered chan struct{}
	once    sync.Once
}

func (s *blockingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.once.Do(func() { close(s.entered) })
	<-ctx.Done()
	return ctx.Err()
}

func seeded() func() *rand.Rand {
	var seed uint64
	return func() *rand.Rand {
		seed++
		return rand.New(rand.NewPCG(seed, 2))
	}
}

func newTestLobby(clock game.Clock, sleeper autoplay.Sleeper) *Lobby {
	opts := []Option{WithClock(clock), WithRand(seeded())}
	if sleeper != nil {
		opts = append(opts, WithSleeper(sleeper))
	}
	return New(opts...)
}

func easy(t *testing.T) mines.Difficulty {
	t.Helper()
	d, err := mines.Preset(mines.Easy)
	require.NoError(t, err)
	return d
}

func TestCreateAndGet(t *testing.T) {
	l := newTestLobby(&fakeClock{now: time.Now()}, nil)
	defer l.Close()

	e, err := l.Create(easy(t))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, 1, l.Len())

	got, err := l.Get(e.ID)
	require.NoError(t, err)
	assert.Same(t, e, got)

	_, err = l.Get(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.Create(mines.Difficulty{Rows: 2, Cols: 2, Mines: 4})
	assert.ErrorIs(t, err, mines.ErrTooManyMines)
	assert.Equal(t, 1, l.Len())
}

func TestRemove(t *testing.T) {
	l := newTestLobby(&fakeClock{now: time.Now()}, nil)
	defer l.Close()

	e, err := l.Create(easy(t))
	require.NoError(t, err)
	require.NoError(t, l.Remove(e.ID))
	assert.ErrorIs(t, l.Remove(e.ID), ErrNotFound)
	assert.Zero(t, l.Len())
}

func TestSweepEvictsIdleTables(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	sleeper := &blockingSleeper{entered: make(chan struct{})}
	l := newTestLobby(clock, sleeper)
	defer l.Close()

	stale, err := l.Create(easy(t))
	require.NoError(t, err)
	require.NoError(t, stale.StartAutoplay(autoplay.SplitStep(autoplay.DefaultStep)))
	<-sleeper.entered

	clock.Advance(30 * time.Minute)
	fresh, err := l.Create(easy(t))
	require.NoError(t, err)

	clock.Advance(45 * time.Minute)
	_, err = fresh.Table.Act(game.Flag(0, 0))
	require.NoError(t, err)

	assert.Equal(t, 1, l.Sweep(time.Hour))
	assert.False(t, stale.Driver.Running(), "eviction cancels autoplay")

	_, err = l.Get(stale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestCloseCancelsDrivers(t *testing.T) {
	sleeper := &blockingSleeper{entered: make(chan struct{})}
	l := newTestLobby(&fakeClock{now: time.Now()}, sleeper)

	e, err := l.Create(easy(t))
	require.NoError(t, err)
	require.NoError(t, e.StartAutoplay(autoplay.SplitStep(autoplay.DefaultStep)))
	<-sleeper.entered

	l.Close()
	assert.False(t, e.Driver.Running())

	_, err = l.Create(easy(t))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestJanitorStopsWithContext(t *testing.T) {
	l := newTestLobby(&fakeClock{now: time.Now()}, nil)
	defer l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- l.Janitor(ctx, time.Millisecond, time.Hour) }()
	cancel()
	assert.NoError(t, <-done)
}
