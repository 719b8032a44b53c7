package stitch

import "errors"

var (
	// ErrUnknownDirection is returned for the zero Direction or any value
	// outside the four compass directions.
	ErrUnknownDirection = errors.New("unknown direction")

	// ErrShiftRange is returned when the shift does not fit inside the
	// buffer's shift axis.
	ErrShiftRange = errors.New("shift out of range")

	// ErrTileShape is returned when a shifted buffer cannot be cut into
	// full tiles.
	ErrTileShape = errors.New("buffer cannot be tiled")

	// ErrShapeMismatch is returned when two buffers that must line up
	// have different dimensions.
	ErrShapeMismatch = errors.New("buffer shape mismatch")

	// ErrDirectionMismatch is returned when parts of different sequences
	// are combined.
	ErrDirectionMismatch = errors.New("direction mismatch")
)
