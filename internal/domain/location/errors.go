package location

import "errors"

var (
	ErrInvalidSector  = errors.New("unknown sector name")
	ErrNegativeWeight = errors.New("edge distance must be non-negative")
)
