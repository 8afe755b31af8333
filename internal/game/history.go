package game

import (
	"strconv"
	"time"

	"github.com/vancomm/minesweeper/internal/mines"
)

const (
	CellMine  = "mine"
	CellEmpty = "empty"

	ResultBoom = "BOOM!"
	ResultSafe = "safe"
)

// HistoryEntry records one simulated click, described by the state of the
// cell before the click.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Row       int       `json:"row"`
	Col       int       `json:"col"`
	CellType  string    `json:"cellType"`
	Result    string    `json:"result"`
}

func NewHistoryEntry(at time.Time, cell mines.Cell) HistoryEntry {
	entry := HistoryEntry{
		Timestamp: at,
		Row:       cell.Row,
		Col:       cell.Col,
		CellType:  CellType(cell),
		Result:    ResultSafe,
	}
	if cell.IsMine {
		entry.Result = ResultBoom
	}
	return entry
}

// CellType is "mine", "empty" or "number-N".
func CellType(cell mines.Cell) string {
	switch {
	case cell.IsMine:
		return CellMine
	case cell.NeighborMines == 0:
		return CellEmpty
	default:
		return "number-" + strconv.Itoa(cell.NeighborMines)
	}
}
