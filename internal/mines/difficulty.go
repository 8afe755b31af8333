package mines

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

const (
	Easy   = "easy"
	Medium = "medium"
	Hard   = "hard"
	Custom = "custom"

	// CustomMineDensity is the share of cells that are mines on custom boards.
	CustomMineDensity = 0.2
)

type Difficulty struct {
	Name  string `json:"name"`
	Rows  int    `json:"rows"`
	Cols  int    `json:"cols"`
	Mines int    `json:"mines"`
}

var presets = map[string]Difficulty{
	Easy:   {Name: Easy, Rows: 9, Cols: 9, Mines: 10},
	Medium: {Name: Medium, Rows: 16, Cols: 16, Mines: 40},
	Hard:   {Name: Hard, Rows: 16, Cols: 30, Mines: 99},
}

func Preset(name string) (Difficulty, error) {
	d, ok := presets[strings.ToLower(name)]
	if !ok {
		return Difficulty{}, fmt.Errorf("%q: %w", name, ErrUnknownDifficulty)
	}
	return d, nil
}

// CustomDifficulty places floor(rows*cols*0.2) mines.
func CustomDifficulty(rows, cols int) Difficulty {
	return Difficulty{
		Name:  Custom,
		Rows:  rows,
		Cols:  cols,
		Mines: int(float64(rows*cols) * CustomMineDensity),
	}
}

// ParseDifficulty resolves a preset name, or "custom" with the given
// dimensions.
func ParseDifficulty(name string, rows, cols int) (Difficulty, error) {
	if strings.EqualFold(name, Custom) {
		return CustomDifficulty(rows, cols), nil
	}
	return Preset(name)
}

func (d Difficulty) Size() string {
	return FormatSize(d.Rows, d.Cols)
}

func (d Difficulty) NewBoard(r *rand.Rand) (*Board, error) {
	return NewBoard(d.Rows, d.Cols, d.Mines, r)
}
