package game

import "github.com/vancomm/minesweeper/internal/mines"

// Effect is one step of the result of [Decide]. Effects must be applied in
// the order they were emitted.
type Effect interface {
	effect()
	String() string
}

type SetBoard struct {
	Board *mines.Board
}

type SetFlagCount struct {
	Count int
}

type SetState struct {
	State State
}

type StartTimer struct{}

type StopTimer struct{}

type AddHistory struct {
	Entry HistoryEntry
}

func (SetBoard) effect()     {}
func (SetFlagCount) effect() {}
func (SetState) effect()     {}
func (StartTimer) effect()   {}
func (StopTimer) effect()    {}
func (AddHistory) effect()   {}

func (SetBoard) String() string     { return "setBoard" }
func (SetFlagCount) String() string { return "setFlagCount" }
func (SetState) String() string     { return "setGameState" }
func (StartTimer) String() string   { return "startTimer" }
func (StopTimer) String() string    { return "stopTimer" }
func (AddHistory) String() string   { return "addSimulationHistory" }

func effectNames(effects []Effect) []string {
	names := make([]string, len(effects))
	for i, e := range effects {
		names[i] = e.String()
	}
	return names
}
