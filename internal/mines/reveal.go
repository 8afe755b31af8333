package mines

type Outcome uint8

const (
	None Outcome = iota
	Won
	Lost
)

func (o Outcome) String() string {
	switch o {
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "none"
	}
}

// RevealSingle opens the cell at row, col. The returned board is b itself
// when nothing changed; otherwise it is a fresh snapshot.
func RevealSingle(b *Board, row, col int) (*Board, Outcome) {
	cell, ok := b.At(row, col)
	if !ok || cell.IsRevealed || cell.IsFlagged {
		return b, None
	}

	next := b.Clone()
	if cell.IsMine {
		next.revealMines()
		return next, Lost
	}

	next.floodFill(row, col)
	return next, next.outcome()
}

// ChordReveal opens the covered unflagged neighbors of a revealed number
// whose flagged neighbor count matches it. The first mine among them ends
// the chord: later neighbors stay covered.
func ChordReveal(b *Board, row, col int) (*Board, Outcome) {
	cell, ok := b.At(row, col)
	if !ok || !cell.IsRevealed || cell.IsMine || cell.NeighborMines == 0 {
		return b, None
	}

	neighbors := b.Neighbors(row, col)
	flagged := 0
	targets := make([]Point, 0, len(neighbors))
	for _, n := range neighbors {
		c := b.Cells[n.Row][n.Col]
		if c.IsFlagged {
			flagged++
		} else if !c.IsRevealed {
			targets = append(targets, n)
		}
	}
	if flagged != cell.NeighborMines || len(targets) == 0 {
		return b, None
	}

	next := b.Clone()
	for _, p := range targets {
		if next.Cells[p.Row][p.Col].IsMine {
			next.revealMines()
			return next, Lost
		}
		next.floodFill(p.Row, p.Col)
	}
	return next, next.outcome()
}

// ToggleFlag flips the flag on a covered cell and returns the board-wide
// flag count.
func ToggleFlag(b *Board, row, col int) (*Board, int) {
	cell, ok := b.At(row, col)
	if !ok || cell.IsRevealed {
		return b, b.FlagCount()
	}

	next := b.Clone()
	next.Cells[row][col].IsFlagged = !cell.IsFlagged
	return next, next.FlagCount()
}

/*
floodFill reveals row, col and, for every zero it reveals, all of its
covered unflagged non-mine neighbors. It mutates b in place and must only
be called on a private copy.

A cell is marked revealed when pushed, so each cell enters the stack at
most once and the stack never holds more than rows*cols points.
*/
func (b *Board) floodFill(row, col int) {
	if !b.revealable(row, col) {
		return
	}

	b.Cells[row][col].IsRevealed = true
	stack := []Point{{row, col}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if b.Cells[p.Row][p.Col].NeighborMines != 0 {
			continue
		}
		for _, n := range b.Neighbors(p.Row, p.Col) {
			if b.revealable(n.Row, n.Col) {
				b.Cells[n.Row][n.Col].IsRevealed = true
				stack = append(stack, n)
			}
		}
	}
}

func (b *Board) revealable(row, col int) bool {
	c := b.Cells[row][col]
	return !c.IsRevealed && !c.IsFlagged && !c.IsMine
}

func (b *Board) revealMines() {
	for i := range b.Cells {
		for j := range b.Cells[i] {
			if b.Cells[i][j].IsMine {
				b.Cells[i][j].IsRevealed = true
			}
		}
	}
}

// outcome is Won once every safe cell is open.
func (b *Board) outcome() Outcome {
	if b.RevealedCount() == b.TotalCells()-b.Mines {
		return Won
	}
	return None
}
