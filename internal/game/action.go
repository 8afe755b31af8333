package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vancomm/minesweeper/internal/mines"
)

type Click uint8

const (
	LeftClick Click = iota + 1
	RightClick
	DoubleClick
)

func (c Click) String() string {
	switch c {
	case LeftClick:
		return "reveal"
	case RightClick:
		return "flag"
	case DoubleClick:
		return "chord"
	default:
		return fmt.Sprintf("Click(%d)", uint8(c))
	}
}

var ErrBadClick = errors.New("move must be one of 'reveal', 'flag', 'chord'")

// ParseClick accepts the move names used over HTTP and websocket.
func ParseClick(s string) (Click, error) {
	switch strings.ToLower(s) {
	case "reveal", "open", "o":
		return LeftClick, nil
	case "flag", "f":
		return RightClick, nil
	case "chord", "c":
		return DoubleClick, nil
	}
	return 0, ErrBadClick
}

type Action struct {
	Click Click
	mines.Point
	// Simulated marks clicks issued by the autoplay driver.
	Simulated bool
}

func Reveal(row, col int) Action {
	return Action{Click: LeftClick, Point: mines.Point{Row: row, Col: col}}
}

func SimulatedReveal(row, col int) Action {
	return Action{Click: LeftClick, Point: mines.Point{Row: row, Col: col}, Simulated: true}
}

func Flag(row, col int) Action {
	return Action{Click: RightClick, Point: mines.Point{Row: row, Col: col}}
}

func Chord(row, col int) Action {
	return Action{Click: DoubleClick, Point: mines.Point{Row: row, Col: col}}
}

func (a Action) String() string {
	if a.Simulated {
		return "simulated " + a.Click.String() + " " + a.Point.String()
	}
	return a.Click.String() + " " + a.Point.String()
}
