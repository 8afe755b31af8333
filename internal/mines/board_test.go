package mines

import (
	"math/rand/v2"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	Log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	os.Exit(m.Run())
}

func countMines(b *Board) int {
	return b.count(func(c Cell) bool { return c.IsMine })
}

func TestNewBoard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		rows, cols, mines int
	}{
		{name: "9x9(10)", rows: 9, cols: 9, mines: 10},
		{name: "16x16(40)", rows: 16, cols: 16, mines: 40},
		{name: "16x30(99)", rows: 16, cols: 30, mines: 99},
		{name: "5x5(24)", rows: 5, cols: 5, mines: 24},
		{name: "1x1(0)", rows: 1, cols: 1, mines: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			r := rand.New(rand.NewPCG(1, 2))
			for range 20 {
				b, err := NewBoard(test.rows, test.cols, test.mines, r)
				require.NoError(t, err)
				require.NoError(t, b.Validate())
				assert.Equal(t, test.mines, countMines(b))
				assert.Equal(t, test.mines, b.Mines)
				assert.Zero(t, b.RevealedCount())
				assert.Zero(t, b.FlagCount())
			}
		})
	}
}

func TestNewBoardNeighborCounts(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	b, err := NewBoard(16, 30, 99, r)
	require.NoError(t, err)

	for row := range b.Rows {
		for col := range b.Cols {
			cell := b.Cells[row][col]
			assert.Equal(t, row, cell.Row)
			assert.Equal(t, col, cell.Col)
			if cell.IsMine {
				assert.Zero(t, cell.NeighborMines)
				continue
			}
			want := 0
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					rr, cc := row+dr, col+dc
					if rr >= 0 && rr < b.Rows && cc >= 0 && cc < b.Cols && b.Cells[rr][cc].IsMine {
						want++
					}
				}
			}
			assert.Equalf(t, want, cell.NeighborMines, "cell (%d, %d)", row, col)
		}
	}
}

func TestNewBoardRejects(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	_, err := NewBoard(3, 3, 9, r)
	assert.ErrorIs(t, err, ErrTooManyMines)

	_, err = NewBoard(3, 3, 10, r)
	assert.ErrorIs(t, err, ErrTooManyMines)

	_, err = NewBoard(0, 3, 1, r)
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = NewBoard(3, 3, -1, r)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestNewBoardWithMines(t *testing.T) {
	b, err := NewBoardWithMines(3, 3, []Point{{0, 0}, {0, 0}, {2, 2}})
	require.NoError(t, err)
	assert.Equal(t, 2, b.Mines)
	assert.Equal(t, 2, b.Cells[1][1].NeighborMines)
	assert.Equal(t, 1, b.Cells[0][1].NeighborMines)
	assert.Equal(t, 0, b.Cells[0][2].NeighborMines)

	_, err = NewBoardWithMines(3, 3, []Point{{3, 0}})
	assert.ErrorIs(t, err, ErrOutOfBounds)

	all := make([]Point, 0, 4)
	for row := range 2 {
		for col := range 2 {
			all = append(all, Point{row, col})
		}
	}
	_, err = NewBoardWithMines(2, 2, all)
	assert.ErrorIs(t, err, ErrTooManyMines)
}

func TestAt(t *testing.T) {
	b, err := NewBoardWithMines(2, 3, []Point{{1, 2}})
	require.NoError(t, err)

	cell, ok := b.At(1, 2)
	assert.True(t, ok)
	assert.True(t, cell.IsMine)

	for _, p := range []Point{{-1, 0}, {0, -1}, {2, 0}, {0, 3}} {
		_, ok := b.At(p.Row, p.Col)
		assert.Falsef(t, ok, "%s should be out of range", p)
	}

	var nilBoard *Board
	_, ok = nilBoard.At(0, 0)
	assert.False(t, ok)
}

func TestNeighbors(t *testing.T) {
	b, err := NewBoardWithMines(3, 3, nil)
	require.NoError(t, err)

	assert.Len(t, b.Neighbors(0, 0), 3)
	assert.Len(t, b.Neighbors(0, 1), 5)
	assert.Len(t, b.Neighbors(1, 1), 8)
	assert.NotContains(t, b.Neighbors(1, 1), Point{1, 1})
}

func TestValidate(t *testing.T) {
	var nilBoard *Board
	assert.ErrorIs(t, nilBoard.Validate(), ErrMalformedBoard)
	assert.ErrorIs(t, (&Board{}).Validate(), ErrMalformedBoard)

	b, err := NewBoardWithMines(2, 2, nil)
	require.NoError(t, err)
	b.Cells[1] = b.Cells[1][:1]
	assert.ErrorIs(t, b.Validate(), ErrMalformedBoard)
}

func TestClone(t *testing.T) {
	b, err := NewBoardWithMines(2, 2, []Point{{0, 0}})
	require.NoError(t, err)

	c := b.Clone()
	c.Cells[1][1].IsRevealed = true
	assert.False(t, b.Cells[1][1].IsRevealed)
	assert.Equal(t, b.Mines, c.Mines)
}

func TestString(t *testing.T) {
	b, err := NewBoardWithMines(2, 3, []Point{{0, 0}})
	require.NoError(t, err)
	b.Cells[0][0].IsRevealed = true
	b.Cells[0][1].IsFlagged = true
	b.Cells[1][2].IsRevealed = true
	b.Cells[1][1].IsRevealed = true

	assert.Equal(t, "* F -\n- 1 .\n", b.String())
}

func TestDifficulty(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		want       Difficulty
		err        error
	}{
		{name: "easy", want: Difficulty{Easy, 9, 9, 10}},
		{name: "MEDIUM", want: Difficulty{Medium, 16, 16, 40}},
		{name: "hard", want: Difficulty{Hard, 16, 30, 99}},
		{name: "custom", rows: 10, cols: 10, want: Difficulty{Custom, 10, 10, 20}},
		{name: "custom", rows: 7, cols: 9, want: Difficulty{Custom, 7, 9, 12}},
		{name: "insane", err: ErrUnknownDifficulty},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d, err := ParseDifficulty(test.name, test.rows, test.cols)
			if test.err != nil {
				assert.ErrorIs(t, err, test.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, d)
		})
	}

	assert.Equal(t, "16x30", presets[Hard].Size())
}
