package mines

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

type Point struct {
	Row int `json:"row" schema:"row,required"`
	Col int `json:"col" schema:"col,required"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Col)
}

type Cell struct {
	Row           int  `json:"row"`
	Col           int  `json:"col"`
	IsMine        bool `json:"isMine"`
	IsRevealed    bool `json:"isRevealed"`
	IsFlagged     bool `json:"isFlagged"`
	NeighborMines int  `json:"neighborMines"`
}

// Board is a rows x cols grid. Boards handed out by the engine are
// snapshots: every mutating operation works on a copy.
type Board struct {
	Rows  int      `json:"rows"`
	Cols  int      `json:"cols"`
	Mines int      `json:"mines"`
	Cells [][]Cell `json:"cells"`
}

// NewBoard allocates a board and places mines by rejection sampling.
func NewBoard(rows, cols, mines int, r *rand.Rand) (*Board, error) {
	if err := checkDimensions(rows, cols, mines); err != nil {
		return nil, err
	}

	b := allocate(rows, cols)
	b.Mines = mines

	placed := 0
	for placed < mines {
		row, col := r.IntN(rows), r.IntN(cols)
		if b.Cells[row][col].IsMine {
			continue
		}
		b.Cells[row][col].IsMine = true
		placed++
	}

	b.countNeighbors()
	return b, nil
}

// NewBoardWithMines builds a board with mines at exactly the given points.
// Duplicates are collapsed.
func NewBoardWithMines(rows, cols int, mines []Point) (*Board, error) {
	if err := checkDimensions(rows, cols, 0); err != nil {
		return nil, err
	}

	b := allocate(rows, cols)
	for _, p := range mines {
		if !b.InBounds(p.Row, p.Col) {
			return nil, fmt.Errorf("mine at %s: %w", p, ErrOutOfBounds)
		}
		if !b.Cells[p.Row][p.Col].IsMine {
			b.Cells[p.Row][p.Col].IsMine = true
			b.Mines++
		}
	}
	if b.Mines >= rows*cols {
		return nil, fmt.Errorf("%d mines on %dx%d: %w", b.Mines, rows, cols, ErrTooManyMines)
	}

	b.countNeighbors()
	return b, nil
}

func checkDimensions(rows, cols, mines int) error {
	if rows <= 0 || cols <= 0 || mines < 0 {
		return fmt.Errorf("%dx%d with %d mines: %w", rows, cols, mines, ErrInvalidDimensions)
	}
	if mines >= rows*cols {
		return fmt.Errorf("%d mines on %dx%d: %w", mines, rows, cols, ErrTooManyMines)
	}
	return nil
}

func allocate(rows, cols int) *Board {
	cells := make([][]Cell, rows)
	for row := range rows {
		cells[row] = make([]Cell, cols)
		for col := range cols {
			cells[row][col] = Cell{Row: row, Col: col}
		}
	}
	return &Board{Rows: rows, Cols: cols, Cells: cells}
}

func (b *Board) countNeighbors() {
	for row := range b.Rows {
		for col := range b.Cols {
			cell := &b.Cells[row][col]
			if cell.IsMine {
				cell.NeighborMines = 0
				continue
			}
			count := 0
			for _, n := range b.Neighbors(row, col) {
				if b.Cells[n.Row][n.Col].IsMine {
					count++
				}
			}
			cell.NeighborMines = count
		}
	}
}

func (b *Board) InBounds(row, col int) bool {
	return 0 <= row && row < b.Rows && 0 <= col && col < b.Cols
}

// At returns the cell at row, col. ok is false when the point is off the
// board.
func (b *Board) At(row, col int) (cell Cell, ok bool) {
	if b == nil || !b.InBounds(row, col) {
		return Cell{}, false
	}
	return b.Cells[row][col], true
}

// Neighbors lists the in-bounds points of the 8-neighborhood of row, col.
func (b *Board) Neighbors(row, col int) []Point {
	points := make([]Point, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if b.InBounds(row+dr, col+dc) {
				points = append(points, Point{row + dr, col + dc})
			}
		}
	}
	return points
}

// Validate reports ErrMalformedBoard for nil, empty or ragged boards.
func (b *Board) Validate() error {
	if b == nil {
		return fmt.Errorf("nil board: %w", ErrMalformedBoard)
	}
	if b.Rows <= 0 || b.Cols <= 0 || len(b.Cells) != b.Rows {
		return fmt.Errorf("board %dx%d has %d rows: %w", b.Rows, b.Cols, len(b.Cells), ErrMalformedBoard)
	}
	for i, row := range b.Cells {
		if len(row) != b.Cols {
			return fmt.Errorf("row %d has %d cells, want %d: %w", i, len(row), b.Cols, ErrMalformedBoard)
		}
	}
	return nil
}

// Clone returns a deep copy that shares no cell storage with b.
func (b *Board) Clone() *Board {
	c := &Board{Rows: b.Rows, Cols: b.Cols, Mines: b.Mines}
	c.Cells = make([][]Cell, len(b.Cells))
	for i, row := range b.Cells {
		c.Cells[i] = make([]Cell, len(row))
		copy(c.Cells[i], row)
	}
	return c
}

func (b *Board) TotalCells() int {
	return b.Rows * b.Cols
}

// Size is the "<rows>x<cols>" label scores are grouped by.
func (b *Board) Size() string {
	return FormatSize(b.Rows, b.Cols)
}

func FormatSize(rows, cols int) string {
	return strconv.Itoa(rows) + "x" + strconv.Itoa(cols)
}

func (b *Board) RevealedCount() int {
	return b.count(func(c Cell) bool { return c.IsRevealed })
}

func (b *Board) FlagCount() int {
	return b.count(func(c Cell) bool { return c.IsFlagged })
}

func (b *Board) count(pred func(Cell) bool) int {
	n := 0
	for _, row := range b.Cells {
		for _, cell := range row {
			if pred(cell) {
				n++
			}
		}
	}
	return n
}

// Hidden lists cells that are neither revealed nor flagged, row-major.
func (b *Board) Hidden() []Point {
	points := make([]Point, 0)
	for _, row := range b.Cells {
		for _, cell := range row {
			if !cell.IsRevealed && !cell.IsFlagged {
				points = append(points, Point{cell.Row, cell.Col})
			}
		}
	}
	return points
}

/*
String renders the board for debugging:

	- covered
	F flagged
	* revealed mine
	. revealed zero
	1-8 revealed number
*/
func (b *Board) String() string {
	var sb strings.Builder
	for _, row := range b.Cells {
		for i, cell := range row {
			if i > 0 {
				sb.WriteByte(' ')
			}
			switch {
			case cell.IsFlagged:
				sb.WriteByte('F')
			case !cell.IsRevealed:
				sb.WriteByte('-')
			case cell.IsMine:
				sb.WriteByte('*')
			case cell.NeighborMines == 0:
				sb.WriteByte('.')
			default:
				sb.WriteString(strconv.Itoa(cell.NeighborMines))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
