package game

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

type State uint8

const (
	Ready State = iota
	Playing
	Won
	Lost
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

func (s State) Terminal() bool {
	return s == Won || s == Lost
}

// State implements [encoding.TextMarshaler]
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "ready":
		*s = Ready
	case "playing":
		*s = Playing
	case "won":
		*s = Won
	case "lost":
		*s = Lost
	default:
		return fmt.Errorf("unknown game state %q", text)
	}
	return nil
}

// advances reports whether moving from s to next goes forward along
// ready -> playing -> won|lost.
func (s State) advances(next State) bool {
	switch s {
	case Ready:
		return next != Ready
	case Playing:
		return next.Terminal()
	default:
		return false
	}
}
