package mines

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wallLayout is a 9x9 board with 10 mines: a wall down column 6 plus
// (0, 8). Everything left of the wall is one zero region.
func wallLayout(t *testing.T) *Board {
	t.Helper()
	points := []Point{{0, 8}}
	for row := range 9 {
		points = append(points, Point{row, 6})
	}
	b, err := NewBoardWithMines(9, 9, points)
	require.NoError(t, err)
	return b
}

func TestRevealSingleFloodFill(t *testing.T) {
	b := wallLayout(t)

	next, outcome := RevealSingle(b, 0, 0)
	assert.Equal(t, None, outcome)
	assert.NotSame(t, b, next)
	assert.Zero(t, b.RevealedCount(), "previous snapshot must not change")

	for row := range next.Rows {
		for col := range next.Cols {
			cell := next.Cells[row][col]
			switch {
			case col <= 4:
				assert.True(t, cell.IsRevealed)
				assert.Zero(t, cell.NeighborMines)
			case col == 5:
				assert.True(t, cell.IsRevealed)
				assert.Positive(t, cell.NeighborMines)
			default:
				assert.Falsef(t, cell.IsRevealed, "cell (%d, %d)", row, col)
			}
		}
	}
	assert.Equal(t, 2, next.Cells[0][5].NeighborMines)
	assert.Equal(t, 3, next.Cells[4][5].NeighborMines)
	assert.Equal(t, 54, next.RevealedCount())
}

func TestRevealSingleIdempotent(t *testing.T) {
	b := wallLayout(t)
	once, _ := RevealSingle(b, 0, 0)
	twice, outcome := RevealSingle(once, 0, 0)
	assert.Same(t, once, twice)
	assert.Equal(t, None, outcome)
	assert.Equal(t, once.String(), twice.String())
}

func TestRevealSingleMine(t *testing.T) {
	b := wallLayout(t)
	b, _ = ToggleFlag(b, 0, 6)
	b, _ = ToggleFlag(b, 0, 0)

	next, outcome := RevealSingle(b, 8, 6)
	assert.Equal(t, Lost, outcome)
	for row := range next.Rows {
		for col := range next.Cols {
			cell := next.Cells[row][col]
			assert.Equal(t, cell.IsMine, cell.IsRevealed, "cell (%d, %d)", row, col)
		}
	}
	assert.Equal(t, 2, next.FlagCount())
}

func TestRevealSingleFlagged(t *testing.T) {
	b := wallLayout(t)
	flagged, count := ToggleFlag(b, 0, 0)
	assert.Equal(t, 1, count)

	next, outcome := RevealSingle(flagged, 0, 0)
	assert.Same(t, flagged, next)
	assert.Equal(t, None, outcome)
	assert.True(t, next.Cells[0][0].IsFlagged)
	assert.False(t, next.Cells[0][0].IsRevealed)
}

func TestRevealSingleStopsAtFlags(t *testing.T) {
	b, err := NewBoardWithMines(1, 5, []Point{{0, 4}})
	require.NoError(t, err)
	b, _ = ToggleFlag(b, 0, 1)

	next, _ := RevealSingle(b, 0, 0)
	assert.True(t, next.Cells[0][0].IsRevealed)
	assert.False(t, next.Cells[0][1].IsRevealed)
	assert.False(t, next.Cells[0][2].IsRevealed)
}

func TestRevealSingleOutOfRange(t *testing.T) {
	b := wallLayout(t)
	next, outcome := RevealSingle(b, 9, 0)
	assert.Same(t, b, next)
	assert.Equal(t, None, outcome)
}

func TestRevealAllSafeCellsWins(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 10 {
		b, err := NewBoard(9, 9, 10, r)
		require.NoError(t, err)

		safe := make([]Point, 0)
		for _, row := range b.Cells {
			for _, cell := range row {
				if !cell.IsMine {
					safe = append(safe, Point{cell.Row, cell.Col})
				}
			}
		}

		won := false
		for _, p := range safe {
			if b.Cells[p.Row][p.Col].IsRevealed {
				continue
			}
			require.False(t, won, "won before every safe cell was open")
			var outcome Outcome
			b, outcome = RevealSingle(b, p.Row, p.Col)
			require.NotEqual(t, Lost, outcome)
			won = outcome == Won
			assert.Equal(t, won, b.RevealedCount() == b.TotalCells()-b.Mines)
		}
		assert.True(t, won)
	}
}

func TestToggleFlag(t *testing.T) {
	b := wallLayout(t)

	b, count := ToggleFlag(b, 1, 1)
	assert.Equal(t, 1, count)
	b, count = ToggleFlag(b, 2, 2)
	assert.Equal(t, 2, count)
	b, count = ToggleFlag(b, 1, 1)
	assert.Equal(t, 1, count)

	opened, _ := RevealSingle(b, 0, 0)
	same, count := ToggleFlag(opened, 0, 0)
	assert.Same(t, opened, same)
	assert.Equal(t, opened.FlagCount(), count)
}

// chordLayout:
//
//	row 0: 1 M 1
//	row 1: 1 1 1
//	row 2: . . .
func chordLayout(t *testing.T) *Board {
	t.Helper()
	b, err := NewBoardWithMines(3, 3, []Point{{0, 1}})
	require.NoError(t, err)
	b, _ = RevealSingle(b, 1, 1)
	return b
}

func TestChordReveal(t *testing.T) {
	b := chordLayout(t)
	require.True(t, b.Cells[1][1].IsRevealed)
	require.Equal(t, 1, b.Cells[1][1].NeighborMines)

	// No flags placed: count mismatch.
	next, outcome := ChordReveal(b, 1, 1)
	assert.Same(t, b, next)
	assert.Equal(t, None, outcome)

	b, _ = ToggleFlag(b, 0, 1)
	next, outcome = ChordReveal(b, 1, 1)
	assert.Equal(t, Won, outcome)
	assert.Equal(t, 8, next.RevealedCount())
	assert.False(t, next.Cells[0][1].IsRevealed)
}

func TestChordRevealWrongFlag(t *testing.T) {
	b := chordLayout(t)
	b, _ = ToggleFlag(b, 0, 0)

	next, outcome := ChordReveal(b, 1, 1)
	assert.Equal(t, Lost, outcome)
	assert.True(t, next.Cells[0][1].IsRevealed)
	assert.True(t, next.Cells[0][0].IsFlagged)
}

func TestChordRevealStopsAtFirstMine(t *testing.T) {
	// Mines at (0,0) and (0,2); target (1,1) shows 2. Flag (0,0) and the
	// safe (1,0): the flag count matches but the chord walks into (0,2).
	b, err := NewBoardWithMines(3, 3, []Point{{0, 0}, {0, 2}})
	require.NoError(t, err)
	b, _ = RevealSingle(b, 1, 1)
	b, _ = ToggleFlag(b, 0, 0)
	b, _ = ToggleFlag(b, 1, 0)

	next, outcome := ChordReveal(b, 1, 1)
	assert.Equal(t, Lost, outcome)
	assert.True(t, next.Cells[0][1].IsRevealed, "neighbors before the mine are opened")
	assert.True(t, next.Cells[0][2].IsRevealed)
	assert.False(t, next.Cells[1][2].IsRevealed, "neighbors after the mine stay covered")
	assert.False(t, next.Cells[2][2].IsRevealed)
}

func TestChordRevealIgnored(t *testing.T) {
	b := chordLayout(t)

	// Covered target.
	next, _ := ChordReveal(b, 0, 0)
	assert.Same(t, b, next)

	// Revealed zero.
	opened, _ := RevealSingle(b, 2, 2)
	require.Zero(t, opened.Cells[2][2].NeighborMines)
	next, _ = ChordReveal(opened, 2, 2)
	assert.Same(t, opened, next)

	// Off the board.
	next, _ = ChordReveal(b, -1, 0)
	assert.Same(t, b, next)
}
