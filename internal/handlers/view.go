package handlers

import (
	"github.com/vancomm/minesweeper/internal/game"
	"github.com/vancomm/minesweeper/internal/mines"
)

// CellView is a cell as the player may see it: covered cells carry no mine
// or count until the game is over.
type CellView struct {
	Row           int  `json:"row"`
	Col           int  `json:"col"`
	IsMine        bool `json:"isMine"`
	IsRevealed    bool `json:"isRevealed"`
	IsFlagged     bool `json:"isFlagged"`
	NeighborMines int  `json:"neighborMines"`
}

type GameView struct {
	ID             string              `json:"id"`
	Difficulty     string              `json:"difficulty"`
	Size           string              `json:"size"`
	Rows           int                 `json:"rows"`
	Cols           int                 `json:"cols"`
	State          game.State          `json:"gameState"`
	MineCount      int                 `json:"mineCount"`
	FlagCount      int                 `json:"flagCount"`
	ElapsedSeconds int                 `json:"elapsedSeconds"`
	Board          [][]CellView        `json:"board"`
	Highlight      *mines.Point        `json:"highlight"`
	Autoplaying    bool                `json:"autoplaying"`
	History        []game.HistoryEntry `json:"history"`
}

func NewGameView(id string, snap game.Snapshot) GameView {
	v := GameView{
		ID:             id,
		Difficulty:     snap.Difficulty.Name,
		Size:           snap.Difficulty.Size(),
		State:          snap.State,
		MineCount:      snap.MineCount,
		FlagCount:      snap.FlagCount,
		ElapsedSeconds: snap.ElapsedSeconds,
		Highlight:      snap.Highlight,
		Autoplaying:    snap.Autoplaying,
		History:        snap.History,
	}
	if v.History == nil {
		v.History = make([]game.HistoryEntry, 0)
	}
	if snap.Board == nil {
		return v
	}

	v.Rows, v.Cols = snap.Board.Rows, snap.Board.Cols
	exposed := snap.State.Terminal()
	v.Board = make([][]CellView, len(snap.Board.Cells))
	for r, row := range snap.Board.Cells {
		v.Board[r] = make([]CellView, len(row))
		for c, cell := range row {
			cv := CellView{
				Row:        cell.Row,
				Col:        cell.Col,
				IsRevealed: cell.IsRevealed,
				IsFlagged:  cell.IsFlagged,
			}
			if exposed || cell.IsRevealed {
				cv.IsMine = cell.IsMine
				cv.NeighborMines = cell.NeighborMines
			}
			v.Board[r][c] = cv
		}
	}
	return v
}
