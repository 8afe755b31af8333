package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
	"github.com/vancomm/minesweeper/internal/mines"
)

// Session is a single game from a fresh board to won or lost. A new game is
// a new Session.
type Session struct {
	Difficulty mines.Difficulty
	Board      *mines.Board
	State      State
	MineCount  int
	FlagCount  int
	History    []HistoryEntry

	clock Clock
	timer *Stopwatch
}

func NewSession(d mines.Difficulty, r *rand.Rand, clock Clock) (*Session, error) {
	board, err := d.NewBoard(r)
	if err != nil {
		return nil, err
	}
	return NewSessionWithBoard(d, board, clock), nil
}

// NewSessionWithBoard starts a session on a prepared board.
func NewSessionWithBoard(d mines.Difficulty, board *mines.Board, clock Clock) *Session {
	if clock == nil {
		clock = SystemClock
	}
	return &Session{
		Difficulty: d,
		Board:      board,
		State:      Ready,
		MineCount:  board.Mines,
		FlagCount:  board.FlagCount(),
		clock:      clock,
		timer:      NewStopwatch(clock),
	}
}

func (s *Session) ElapsedSeconds() int {
	return s.timer.Seconds()
}

func (s *Session) TimerRunning() bool {
	return s.timer.Running()
}

/*
Decide computes the effects of a on s without changing s.

Actions on a finished session yield no effects and no error. Actions off
the board yield [mines.ErrOutOfBounds], actions on a malformed board
[mines.ErrMalformedBoard]; both come with no effects.
*/
func Decide(s *Session, a Action) ([]Effect, error) {
	if s.State.Terminal() {
		return nil, nil
	}

	if err := s.Board.Validate(); err != nil {
		Log.WithError(err).WithField("action", a.String()).Error("refusing action on malformed board")
		return nil, err
	}

	cell, ok := s.Board.At(a.Row, a.Col)
	if !ok {
		return nil, fmt.Errorf("%s on %s board: %w", a, s.Board.Size(), mines.ErrOutOfBounds)
	}

	var effects []Effect

	switch a.Click {
	case RightClick:
		next, flags := mines.ToggleFlag(s.Board, a.Row, a.Col)
		if next != s.Board {
			effects = append(effects, SetBoard{next}, SetFlagCount{flags})
		}

	case DoubleClick:
		next, outcome := mines.ChordReveal(s.Board, a.Row, a.Col)
		if next != s.Board {
			effects = append(effects, SetBoard{next})
		}
		effects = appendOutcome(effects, outcome)

	case LeftClick:
		if a.Simulated {
			effects = append(effects, AddHistory{NewHistoryEntry(s.clock.Now(), cell)})
		}
		if s.State == Ready {
			effects = append(effects, SetState{Playing}, StartTimer{})
		}
		next, outcome := mines.RevealSingle(s.Board, a.Row, a.Col)
		effects = append(effects, SetBoard{next})
		effects = appendOutcome(effects, outcome)

	default:
		return nil, fmt.Errorf("unknown click %s", a.Click)
	}

	return effects, nil
}

func appendOutcome(effects []Effect, outcome mines.Outcome) []Effect {
	switch outcome {
	case mines.Won:
		return append(effects, SetState{Won}, StopTimer{})
	case mines.Lost:
		return append(effects, SetState{Lost}, StopTimer{})
	default:
		return effects
	}
}

// Apply dispatches effects onto s in order.
func (s *Session) Apply(effects ...Effect) {
	for _, e := range effects {
		switch e := e.(type) {
		case SetBoard:
			s.Board = e.Board
		case SetFlagCount:
			s.FlagCount = e.Count
		case SetState:
			if !s.State.advances(e.State) {
				Log.WithFields(logrus.Fields{
					"from": s.State.String(),
					"to":   e.State.String(),
				}).Warn("ignoring backward game state transition")
				continue
			}
			s.State = e.State
		case StartTimer:
			s.timer.Start()
		case StopTimer:
			s.timer.Stop()
		case AddHistory:
			s.History = append(s.History, e.Entry)
		default:
			Log.Errorf("unknown effect %T", e)
		}
	}
}
