package mines

import "errors"

var (
	ErrInvalidDimensions = errors.New("board dimensions must be positive")
	ErrTooManyMines      = errors.New("mine count must be less than the number of cells")
	ErrOutOfBounds       = errors.New("cell coordinates out of range")
	ErrMalformedBoard    = errors.New("malformed board")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)
